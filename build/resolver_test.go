package build

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/ceindex/ir"
)

func TestResolveBuildsAcyclicTopoOrder(t *testing.T) {
	ctx := ir.NewGlobalContext()
	// c.go depends on b.go, which depends on a.go: a has no deps, so it
	// comes first in a dependency-ordered (dependents-after-dependency) walk.
	ctx.AddFileDependency("c.go", "b.go")
	ctx.AddFileDependency("b.go", "a.go")

	snap := ir.NewSnapshot("repo1", "snap1")
	NewResolver("repo1").Resolve(snap, ctx, nil)

	require.Empty(t, ctx.Cycles, "an acyclic dependency graph should report no cycles")
	require.Len(t, ctx.TopoOrder, 3)
}

func TestResolveReportsCycle(t *testing.T) {
	ctx := ir.NewGlobalContext()
	ctx.AddFileDependency("a.go", "b.go")
	ctx.AddFileDependency("b.go", "c.go")
	ctx.AddFileDependency("c.go", "a.go")

	snap := ir.NewSnapshot("repo1", "snap1")
	NewResolver("repo1").Resolve(snap, ctx, nil)

	require.NotEmpty(t, ctx.Cycles, "a.go -> b.go -> c.go -> a.go is a cycle and should be reported, not silently broken")
}

func TestBindTypeNameSynthesizesUnknownNodeForUnresolvedName(t *testing.T) {
	snap := ir.NewSnapshot("repo1", "snap1")
	ctx := ir.NewGlobalContext()
	r := NewResolver("repo1")

	id, external := r.bindTypeName(snap, ctx, "", "NoSuchType")
	assert.True(t, external)

	n, ok := snap.Node(id)
	require.True(t, ok)
	assert.Equal(t, ir.KindUnknown, n.Kind)
}

func TestBindTypeNamePrefersSameModuleOverGlobal(t *testing.T) {
	snap := ir.NewSnapshot("repo1", "snap1")
	ctx := ir.NewGlobalContext()
	snap.AddNode(&ir.Node{ID: "local", FQN: "pkg.Widget", Kind: ir.KindClass})
	snap.AddNode(&ir.Node{ID: "global", FQN: "Widget", Kind: ir.KindClass})
	ctx.IndexNode("pkg.Widget", "local")
	ctx.IndexNode("Widget", "global")

	r := NewResolver("repo1")
	id, external := r.bindTypeName(snap, ctx, "pkg", "Widget")
	assert.False(t, external)
	assert.Equal(t, "local", id)
}
