package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))
}

func TestLocalResolver_Resolve(t *testing.T) {
	t.Run("absolute path that exists is returned as-is", func(t *testing.T) {
		dir := t.TempDir()
		abs := filepath.Join(dir, "paper.pdf")
		writeFile(t, abs)

		r := NewLocalResolver(t.TempDir(), []string{})
		got, err := r.Resolve(abs)
		require.NoError(t, err)
		assert.Equal(t, abs, got)
	})

	t.Run("base name found in storage root", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "1700000000-paper.docx"))

		r := NewLocalResolver(root, []string{})
		got, err := r.Resolve(`uploads\1700000000-paper.docx`)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(root, "1700000000-paper.docx"), got)
	})

	t.Run("absolute path missing falls back to roots by base name", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "paper.pdf"))

		r := NewLocalResolver(root, []string{})
		got, err := r.Resolve("/srv/old-host/uploads/paper.pdf")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(root, "paper.pdf"), got)
	})

	t.Run("legacy roots are probed in order", func(t *testing.T) {
		primary := t.TempDir()
		legacyA := t.TempDir()
		legacyB := t.TempDir()
		writeFile(t, filepath.Join(legacyB, "paper.pdf"))

		r := NewLocalResolver(primary, []string{legacyA, legacyB})
		got, err := r.Resolve("uploads/paper.pdf")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(legacyB, "paper.pdf"), got)
	})

	t.Run("nested relative path resolves from the working directory", func(t *testing.T) {
		work := t.TempDir()
		writeFile(t, filepath.Join(work, "uploads", "submissions", "hive.docx"))

		wd, err := os.Getwd()
		require.NoError(t, err)
		require.NoError(t, os.Chdir(work))
		t.Cleanup(func() { os.Chdir(wd) })

		r := NewLocalResolver(t.TempDir(), []string{"uploads"})
		got, err := r.Resolve(`uploads\submissions\hive.docx`)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join("uploads", "submissions", "hive.docx"), got)
	})

	t.Run("parent segments are not joined as-is", func(t *testing.T) {
		r := NewLocalResolver("", []string{})
		assert.Empty(t, r.Candidates("../secret/x.pdf"))
	})

	t.Run("directories do not count", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(root, "paper.pdf"), 0o755))

		r := NewLocalResolver(root, []string{})
		_, err := r.Resolve("paper.pdf")
		assert.ErrorIs(t, err, ErrLocalFileNotFound)
	})

	t.Run("not found lists every candidate", func(t *testing.T) {
		root := t.TempDir()
		legacy := t.TempDir()

		r := NewLocalResolver(root, []string{legacy})
		_, err := r.Resolve("uploads/missing.pdf")
		require.ErrorIs(t, err, ErrLocalFileNotFound)

		var nf *NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, []string{
			filepath.Join(root, "missing.pdf"),
			filepath.Join(root, "uploads", "missing.pdf"),
			filepath.Join("uploads", "missing.pdf"),
			filepath.Join(legacy, "missing.pdf"),
		}, nf.Tried)
	})

	t.Run("empty stored path", func(t *testing.T) {
		r := NewLocalResolver(t.TempDir(), nil)
		_, err := r.Resolve("")
		assert.ErrorIs(t, err, ErrLocalFileNotFound)
	})
}
