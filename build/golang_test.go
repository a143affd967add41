package build

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/ceindex/ir"
	"github.com/viant/ceindex/parser"
	"github.com/viant/ceindex/parser/goast"
)

const source = `package auth

type LoginHandler struct {
	attempts int
}

func (h *LoginHandler) Handle() bool {
	return authenticate(h.attempts)
}

func authenticate(n int) bool {
	return n < 3
}
`

func buildFixture(t *testing.T) (*ir.Snapshot, *ir.GlobalContext, *BuildResult) {
	t.Helper()
	driver := goast.New()
	tree, err := driver.Parse(context.Background(), parser.SourceFile{Path: "auth.go", Language: "go", Content: []byte(source)})
	require.NoError(t, err)
	require.False(t, tree.HasErrors)

	snap := ir.NewSnapshot("repo1", "snap1")
	builder := NewBuilder("repo1", nil)
	result, err := builder.BuildFile(snap, tree, "auth.go")
	require.NoError(t, err)

	ctx := ir.NewGlobalContext()
	NewResolver("repo1").Resolve(snap, ctx, []*BuildResult{result})
	return snap, ctx, result
}

func TestBuildGoFileEmitsClassAndMethodNodes(t *testing.T) {
	snap, _, _ := buildFixture(t)

	var class, method, fn *ir.Node
	for _, n := range snap.Nodes() {
		switch {
		case n.Kind == ir.KindClass && n.Name == "LoginHandler":
			class = n
		case n.Kind == ir.KindMethod && n.Name == "Handle":
			method = n
		case n.Kind == ir.KindFunction && n.Name == "authenticate":
			fn = n
		}
	}
	require.NotNil(t, class, "LoginHandler struct should become a Class node")
	require.NotNil(t, method, "Handle should become a Method node")
	require.NotNil(t, fn, "authenticate should become a Function node")

	assert.Equal(t, class.ID, method.ParentID, "Handle's CONTAINS parent should be the LoginHandler class, not the file")
}

func TestBuildGoFileEveryNodeHasOneDefinitionOccurrence(t *testing.T) {
	snap, _, _ := buildFixture(t)

	for _, n := range snap.Nodes() {
		if n.Name == "" || n.FQN == "" {
			continue
		}
		def, ok := snap.DefinitionOccurrence(n.FQN)
		assert.True(t, ok, "node %s (%s) should have exactly one Definition occurrence", n.FQN, n.Kind)
		if ok {
			assert.True(t, def.Roles.Has(ir.RoleDefinition))
		}
	}
}

func TestBuildGoFileResolvesCallsToLocalFunction(t *testing.T) {
	snap, _, _ := buildFixture(t)

	var method, fn *ir.Node
	for _, n := range snap.Nodes() {
		switch {
		case n.Kind == ir.KindMethod && n.Name == "Handle":
			method = n
		case n.Kind == ir.KindFunction && n.Name == "authenticate":
			fn = n
		}
	}
	require.NotNil(t, method)
	require.NotNil(t, fn)

	calls := snap.EdgesFrom(method.ID, ir.EdgeCalls)
	require.Len(t, calls, 1, "Handle's one call site should resolve to exactly one CALLS edge")
	assert.Equal(t, fn.ID, calls[0].TargetID, "the CALLS edge should be rewritten to target the real authenticate Node, not a placeholder")
}

func TestBuildGoFileStableIDsAcrossRebuilds(t *testing.T) {
	snap1, _, _ := buildFixture(t)
	snap2, _, _ := buildFixture(t)

	ids1 := snap1.SortedNodeIDs()
	ids2 := snap2.SortedNodeIDs()
	assert.Equal(t, ids1, ids2, "two builds of identical content must yield identical node ids (§8 property 1)")
}
