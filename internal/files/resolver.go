package files

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// DefaultLegacyRoots are the relative directories older deployments wrote
// uploads into.
var DefaultLegacyRoots = []string{"uploads", "../uploads", "public/uploads"}

// LocalResolver finds the filesystem copy of a stored document.
type LocalResolver struct {
	// StorageRoot is the primary configured upload directory.
	StorageRoot string
	// LegacyRoots are probed after the primary root, in order.
	LegacyRoots []string
}

// NotFoundError lists every location that was probed.
type NotFoundError struct {
	StoredPath string
	Tried      []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %q (tried %s)", ErrLocalFileNotFound, e.StoredPath, strings.Join(e.Tried, ", "))
}

func (e *NotFoundError) Unwrap() error { return ErrLocalFileNotFound }

// NewLocalResolver creates a resolver rooted at storageRoot. A nil legacyRoots
// uses DefaultLegacyRoots.
func NewLocalResolver(storageRoot string, legacyRoots []string) *LocalResolver {
	if legacyRoots == nil {
		legacyRoots = DefaultLegacyRoots
	}
	return &LocalResolver{StorageRoot: storageRoot, LegacyRoots: legacyRoots}
}

// Candidates returns the ordered list of paths probed for storedPath.
func (r *LocalResolver) Candidates(storedPath string) []string {
	normalized := strings.ReplaceAll(storedPath, `\`, "/")
	if normalized == "" {
		return nil
	}
	base := path.Base(normalized)
	if base == "." || base == "/" || base == ".." {
		return nil
	}

	var candidates []string
	seen := map[string]bool{}
	add := func(p string) {
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			candidates = append(candidates, p)
		}
	}

	native := filepath.FromSlash(normalized)
	relative := !filepath.IsAbs(native) && !strings.Contains(normalized, "..")
	if filepath.IsAbs(native) {
		add(native)
	}
	if r.StorageRoot != "" {
		add(filepath.Join(r.StorageRoot, base))
		if relative {
			add(filepath.Join(r.StorageRoot, native))
		}
	}
	// Relative paths are also tried from the working directory.
	if relative {
		add(native)
	}
	for _, root := range r.LegacyRoots {
		add(filepath.Join(root, base))
	}
	return candidates
}

// Resolve returns the first candidate that exists as a regular file.
// It returns a *NotFoundError wrapping ErrLocalFileNotFound otherwise.
func (r *LocalResolver) Resolve(storedPath string) (string, error) {
	candidates := r.Candidates(storedPath)
	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err == nil && info.Mode().IsRegular() {
			return candidate, nil
		}
	}
	return "", &NotFoundError{StoredPath: storedPath, Tried: candidates}
}
