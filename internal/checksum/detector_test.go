package checksum

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestCalculate(t *testing.T) {
	t.Parallel()

	project := t.TempDir()
	writeFile(t, project, "main.go", "package main\n\nfunc main() {}\n")
	writeFile(t, project, "lib/util.py", "def noop():\n    pass\n")
	writeFile(t, project, "README.md", "not a source file\n")
	writeFile(t, project, ".hidden.go", "package hidden\n")
	writeFile(t, project, ".git/objects/blob.go", "package blob\n")

	cs, err := NewDetector(project).Calculate()
	require.NoError(t, err)

	require.Equal(t, 2, cs.TotalFiles)
	require.Equal(t, 5, cs.TotalLines)
	require.Contains(t, cs.FileHashes, "main.go")
	require.Contains(t, cs.FileHashes, filepath.Join("lib", "util.py"))
	require.NotContains(t, cs.FileHashes, "README.md")
	require.NotEmpty(t, cs.Hash)
}

func TestCalculateStableHash(t *testing.T) {
	t.Parallel()

	project := t.TempDir()
	writeFile(t, project, "a.go", "package a\n")
	writeFile(t, project, "b.go", "package b\n")

	d := NewDetector(project)
	first, err := d.Calculate()
	require.NoError(t, err)
	second, err := d.Calculate()
	require.NoError(t, err)
	require.Equal(t, first.Hash, second.Hash)
}

func TestStale(t *testing.T) {
	t.Parallel()

	project := t.TempDir()
	weftDir := t.TempDir()
	writeFile(t, project, "main.go", "package main\n")

	d := NewDetector(project)

	// No snapshot yet.
	stale, err := d.Stale(weftDir)
	require.NoError(t, err)
	require.True(t, stale)

	_, err = d.Save(weftDir)
	require.NoError(t, err)

	stale, err = d.Stale(weftDir)
	require.NoError(t, err)
	require.False(t, stale)

	// Any source change flips the verdict.
	writeFile(t, project, "main.go", "package main\n\nfunc changed() {}\n")
	stale, err = d.Stale(weftDir)
	require.NoError(t, err)
	require.True(t, stale)
}

func TestLoadSavedRoundTrip(t *testing.T) {
	t.Parallel()

	project := t.TempDir()
	weftDir := t.TempDir()
	writeFile(t, project, "main.go", "package main\n")

	saved, err := NewDetector(project).Save(weftDir)
	require.NoError(t, err)

	loaded, err := LoadSaved(weftDir)
	require.NoError(t, err)
	require.Equal(t, saved.Hash, loaded.Hash)
	require.Equal(t, saved.TotalFiles, loaded.TotalFiles)
	require.Equal(t, saved.FileHashes, loaded.FileHashes)
}
