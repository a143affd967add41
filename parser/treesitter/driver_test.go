package treesitter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ceparser "github.com/viant/ceindex/parser"
)

func TestSupportsRegisteredLanguages(t *testing.T) {
	d := New()
	assert.True(t, d.Supports("java"))
	assert.True(t, d.Supports("javascript"))
	assert.False(t, d.Supports("python"))
}

func TestParseUnsupportedLanguageReturnsError(t *testing.T) {
	d := New()
	_, err := d.Parse(context.Background(), ceparser.SourceFile{Path: "a.py", Language: "python", Content: []byte("x = 1")})
	require.Error(t, err)
}

func TestParseValidJavaScriptHasNoErrorSpans(t *testing.T) {
	d := New()
	src := ceparser.SourceFile{Path: "a.js", Language: "javascript", Content: []byte("function f() { return 1; }\n")}

	tree, err := d.Parse(context.Background(), src)
	require.NoError(t, err)
	require.NotNil(t, tree.TS)
	assert.False(t, tree.HasErrors)
	assert.Empty(t, tree.ErrorSpans)
}

func TestParseMalformedJavaScriptCollectsErrorSpans(t *testing.T) {
	d := New()
	src := ceparser.SourceFile{Path: "bad.js", Language: "javascript", Content: []byte("function f( { return; }\n")}

	tree, err := d.Parse(context.Background(), src)
	require.NoError(t, err)
	assert.True(t, tree.HasErrors)
	assert.NotEmpty(t, tree.ErrorSpans)
}

func TestParseIncrementalFallsBackToFullParseWithoutPrevTree(t *testing.T) {
	d := New()
	src := ceparser.SourceFile{Path: "a.js", Language: "javascript", Content: []byte("const x = 1;\n")}

	tree, err := d.ParseIncremental(context.Background(), src, nil, nil)
	require.NoError(t, err)
	assert.False(t, tree.HasErrors)
}

func TestParseIncrementalReusesPriorTreeAfterEdit(t *testing.T) {
	d := New()
	original := []byte("const x = 1;\n")
	first, err := d.Parse(context.Background(), ceparser.SourceFile{Path: "a.js", Language: "javascript", Content: original})
	require.NoError(t, err)

	edited := []byte("const xy = 1;\n")
	second, err := d.ParseIncremental(context.Background(), ceparser.SourceFile{Path: "a.js", Language: "javascript", Content: edited}, first, []ceparser.Edit{
		{StartByte: 7, OldEndByte: 8, NewEndByte: 9},
	})
	require.NoError(t, err)
	require.NotNil(t, second.TS)
	assert.False(t, second.HasErrors)
}
