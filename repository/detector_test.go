package repository

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectProjectFindsGoModRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("module github.com/example/widget\n\ngo 1.23\n"), 0o644))
	sub := filepath.Join(root, "internal", "pkg")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	file := filepath.Join(sub, "widget.go")
	require.NoError(t, os.WriteFile(file, []byte("package pkg\n"), 0o644))

	d := New()
	project, err := d.DetectProject(file)
	require.NoError(t, err)

	assert.Equal(t, "go", project.Type)
	assert.Equal(t, "github.com/example/widget", project.Name)
	assert.Equal(t, filepath.ToSlash(filepath.Join("internal", "pkg", "widget.go")), project.RelativePath)
}

func TestDetectProjectUnknownWhenNoMarkerPresent(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "scratch.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	d := New()
	project, err := d.DetectProject(file)
	require.NoError(t, err)
	assert.Equal(t, "unknown", project.Type)
}
