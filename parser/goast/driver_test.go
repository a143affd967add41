package goast

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ceparser "github.com/viant/ceindex/parser"
)

func TestSupportsOnlyGo(t *testing.T) {
	d := New()
	assert.True(t, d.Supports("go"))
	assert.False(t, d.Supports("java"))
	assert.False(t, d.Supports("javascript"))
}

func TestParseValidSourceReturnsFullTree(t *testing.T) {
	d := New()
	src := ceparser.SourceFile{Path: "a.go", Language: "go", Content: []byte("package a\n\nfunc F() {}\n")}

	tree, err := d.Parse(context.Background(), src)
	require.NoError(t, err)
	require.NotNil(t, tree.Go)
	assert.False(t, tree.HasErrors)
	assert.Equal(t, "go", tree.Language)
	assert.NotNil(t, tree.FileSet)
}

func TestParseRecoverableSyntaxErrorReturnsPartialTreeWithoutFailing(t *testing.T) {
	d := New()
	src := ceparser.SourceFile{Path: "broken.go", Language: "go", Content: []byte("package a\n\nfunc F( {\n")}

	tree, err := d.Parse(context.Background(), src)
	require.NoError(t, err, "a recoverable syntax error should surface as an ERROR span, not fail the whole file")
	require.NotNil(t, tree)
	assert.True(t, tree.HasErrors)
	assert.NotEmpty(t, tree.ErrorSpans)
}

func TestParseUnparseableSourceReturnsError(t *testing.T) {
	d := New()
	src := ceparser.SourceFile{Path: "notgo.go", Language: "go", Content: []byte("this is not go source at all !!!")}

	tree, err := d.Parse(context.Background(), src)
	require.Error(t, err)
	require.NotNil(t, tree)
	assert.True(t, tree.HasErrors)
}

func TestParseIncrementalReparsesFromScratch(t *testing.T) {
	d := New()
	src := ceparser.SourceFile{Path: "a.go", Language: "go", Content: []byte("package a\n")}

	first, err := d.Parse(context.Background(), src)
	require.NoError(t, err)

	second, err := d.ParseIncremental(context.Background(), src, first, nil)
	require.NoError(t, err)
	assert.False(t, second.HasErrors)
}
