package index

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/ceindex/repository"
)

func TestAnalyzeGoModuleParsesManifestAndGlobsSources(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte(
		"module github.com/example/widget\n\ngo 1.23\n\nrequire github.com/stretchr/testify v1.9.0\n",
	), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "internal"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte("package main\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "internal", "util.go"), []byte("package internal\n"), 0o644))

	info, err := NewPackageAnalyzer().AnalyzeGoModule(filepath.Join(root, "go.mod"))
	require.NoError(t, err)

	assert.Equal(t, "widget", info.Name)
	assert.Equal(t, "github.com/example/widget", info.ModulePath)
	assert.Contains(t, info.Requires, "github.com/stretchr/testify@v1.9.0")
	assert.ElementsMatch(t, []string{"main.go", filepath.Join("internal", "util.go")}, info.Files)
}

func TestAnalyzeGoModuleMissingFileReturnsError(t *testing.T) {
	_, err := NewPackageAnalyzer().AnalyzeGoModule(filepath.Join(t.TempDir(), "go.mod"))
	assert.Error(t, err)
}

func TestBuildIndexMapsRequiredModulesToGomodVersions(t *testing.T) {
	info := &PackageInfo{Manager: "gomod", Requires: []string{
		"github.com/stretchr/testify@v1.9.0",
		"github.com/pkg/errors@v0.9.1",
	}}
	idx := NewPackageAnalyzer().BuildIndex(info)

	pv, ok := idx.Lookup("github.com/stretchr/testify")
	require.True(t, ok)
	assert.Equal(t, PackageVersion{Manager: "gomod", Version: "v1.9.0"}, pv)
}

func TestAnalyzeDispatchesByProjectType(t *testing.T) {
	analyzer := NewPackageAnalyzer()

	t.Run("nil project falls back to the widest glob with no manager tag", func(t *testing.T) {
		info, err := analyzer.Analyze(nil)
		require.NoError(t, err)
		assert.Equal(t, &PackageInfo{SourceGlobs: []string{"**/*"}}, info)
	})

	t.Run("unrecognized project type falls back to name-derived metadata", func(t *testing.T) {
		info, err := analyzer.Analyze(&repository.Project{Type: "ruby", Name: "widget-gem", RootPath: t.TempDir()})
		require.NoError(t, err)
		assert.Equal(t, &PackageInfo{Name: "widget-gem", ModulePath: "widget-gem", SourceGlobs: []string{"**/*"}}, info)
	})

	t.Run("go project delegates to AnalyzeGoModule instead of the generic glob path", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte(
			"module github.com/example/widget\n\ngo 1.23\n",
		), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte("package main\n"), 0o644))

		info, err := analyzer.Analyze(&repository.Project{Type: "go", RootPath: root, Name: "widget"})
		require.NoError(t, err)
		assert.Equal(t, "github.com/example/widget", info.ModulePath)
		assert.Equal(t, "gomod", info.Manager)
	})

	t.Run("javascript project globs package sources with the npm manager tag", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(root, "index.js"), []byte("console.log(1)\n"), 0o644))
		require.NoError(t, os.MkdirAll(filepath.Join(root, "lib"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(root, "lib", "util.js"), []byte("module.exports = {}\n"), 0o644))

		info, err := analyzer.Analyze(&repository.Project{Type: "javascript", RootPath: root, Name: "widget-ui"})
		require.NoError(t, err)
		assert.Equal(t, "npm", info.Manager)
		assert.Equal(t, "widget-ui", info.ModulePath)
		assert.ElementsMatch(t, []string{"index.js", filepath.Join("lib", "util.js")}, info.Files)
	})
}

func TestPackageIndexLookupMatchesLongestPrefixForSubpackages(t *testing.T) {
	idx := PackageIndex{
		"github.com/stretchr/testify": {Manager: "gomod", Version: "v1.9.0"},
	}
	pv, ok := idx.Lookup("github.com/stretchr/testify/assert")
	require.True(t, ok)
	assert.Equal(t, "v1.9.0", pv.Version)
}

func TestPackageIndexLookupMissReturnsFalse(t *testing.T) {
	idx := PackageIndex{"github.com/stretchr/testify": {Manager: "gomod", Version: "v1.9.0"}}
	_, ok := idx.Lookup("github.com/google/uuid")
	assert.False(t, ok)
}
