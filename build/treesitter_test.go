package build

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/ceindex/ir"
	"github.com/viant/ceindex/parser"
	"github.com/viant/ceindex/parser/treesitter"
)

const jsSource = `class LoginHandler {
  constructor() {
    this.attempts = 0;
  }

  handle() {
    return authenticate(this.attempts);
  }
}

function authenticate(n) {
  return n < 3;
}
`

func buildJSFixture(t *testing.T) (*ir.Snapshot, *ir.GlobalContext, *BuildResult) {
	t.Helper()
	driver := treesitter.New()
	tree, err := driver.Parse(context.Background(), parser.SourceFile{Path: "auth.js", Language: "javascript", Content: []byte(jsSource)})
	require.NoError(t, err)

	snap := ir.NewSnapshot("repo1", "snap1")
	builder := NewBuilder("repo1", nil)
	result, err := builder.BuildFile(snap, tree, "auth.js")
	require.NoError(t, err)

	ctx := ir.NewGlobalContext()
	NewResolver("repo1").Resolve(snap, ctx, []*BuildResult{result})
	return snap, ctx, result
}

func TestBuildTreeSitterFileEmitsClassAndMethodNodes(t *testing.T) {
	snap, _, _ := buildJSFixture(t)

	var class, method, fn *ir.Node
	for _, n := range snap.Nodes() {
		switch {
		case n.Kind == ir.KindClass && n.Name == "LoginHandler":
			class = n
		case n.Kind == ir.KindMethod && n.Name == "handle":
			method = n
		case n.Kind == ir.KindFunction && n.Name == "authenticate":
			fn = n
		}
	}
	require.NotNil(t, class, "LoginHandler class should become a Class node")
	require.NotNil(t, method, "handle should become a Method node")
	require.NotNil(t, fn, "authenticate should become a Function node")
	assert.Equal(t, class.ID, method.ParentID, "handle's CONTAINS parent should be the LoginHandler class")
}

func TestBuildTreeSitterConstructorFieldBecomesField(t *testing.T) {
	snap, _, _ := buildJSFixture(t)

	var field *ir.Node
	for _, n := range snap.Nodes() {
		if n.Kind == ir.KindField && n.Name == "attempts" {
			field = n
		}
	}
	require.NotNil(t, field, "this.attempts = 0 inside the constructor should emit a Field node, not a Write")
}

func TestBuildTreeSitterFileFunctionParamHasDefinitionOccurrence(t *testing.T) {
	snap, _, _ := buildJSFixture(t)

	var param *ir.Node
	for _, n := range snap.Nodes() {
		if n.Kind == ir.KindParameter && n.Name == "n" {
			param = n
		}
	}
	require.NotNil(t, param, "authenticate's n parameter should become a Parameter node")
	_, ok := snap.DefinitionOccurrence(param.FQN)
	assert.True(t, ok, "every named node, including parameters, must have a Definition occurrence (§3)")
}
