package files

import (
	"regexp"
	"strings"
)

const maxFilenameLength = 100

var (
	unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_\s-]`)
	whitespaceRun       = regexp.MustCompile(`\s+`)
)

// SanitizeFilename derives an ASCII-safe filename stem from a free-text title.
// The result only contains [A-Za-z0-9_-], is at most 100 characters long and
// falls back to defaultStem when nothing usable is left.
func SanitizeFilename(title, defaultStem string) string {
	name := unsafeFilenameChars.ReplaceAllString(title, "")
	name = whitespaceRun.ReplaceAllString(name, "_")
	if len(name) > maxFilenameLength {
		name = name[:maxFilenameLength]
	}
	if name == "" {
		return defaultStem
	}
	return name
}

// AttachmentDisposition builds the Content-Disposition value for a download.
func AttachmentDisposition(stem, ext string) string {
	return `attachment; filename="` + stem + "." + strings.TrimPrefix(ext, ".") + `"`
}

// InlineDisposition builds the Content-Disposition value for in-browser viewing.
func InlineDisposition(stem, ext string) string {
	return `inline; filename="` + stem + "." + strings.TrimPrefix(ext, ".") + `"`
}
