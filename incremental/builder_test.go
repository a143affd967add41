package incremental

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/ceindex/build"
	"github.com/viant/ceindex/ir"
	"github.com/viant/ceindex/parser"
	"github.com/viant/ceindex/parser/goast"
)

func newOverlayBuilderFixture() (*OverlayIRBuilder, *ir.Snapshot, *ir.GlobalContext) {
	reg := parser.NewRegistry(goast.New())
	ob := NewOverlayIRBuilder(reg, build.NewBuilder("repo1", nil), build.NewResolver("repo1"), nil)
	snap := ir.NewSnapshot("repo1", "snap1")
	gctx := ir.NewGlobalContext()
	return ob, snap, gctx
}

func TestRebuildAddsNodesForNewFile(t *testing.T) {
	ob, snap, gctx := newOverlayBuilderFixture()
	src := []byte("package a\n\nfunc F() {}\n")

	require.NoError(t, ob.Rebuild(context.Background(), snap, gctx, "a.go", src, 1))

	var found bool
	for _, n := range snap.Nodes() {
		if n.Kind == ir.KindFunction && n.Name == "F" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestRebuildIsNoOpWhenContentUnchanged(t *testing.T) {
	ob, snap, gctx := newOverlayBuilderFixture()
	src := []byte("package a\n\nfunc F() {}\n")

	require.NoError(t, ob.Rebuild(context.Background(), snap, gctx, "a.go", src, 1))
	before := len(snap.Nodes())

	require.NoError(t, ob.Rebuild(context.Background(), snap, gctx, "a.go", src, 2))
	assert.Len(t, snap.Nodes(), before, "re-rebuilding with byte-identical content should be a no-op")
}

func TestRebuildReflectsEditedContent(t *testing.T) {
	ob, snap, gctx := newOverlayBuilderFixture()
	require.NoError(t, ob.Rebuild(context.Background(), snap, gctx, "a.go", []byte("package a\n\nfunc F() {}\n"), 1))
	require.NoError(t, ob.Rebuild(context.Background(), snap, gctx, "a.go", []byte("package a\n\nfunc G() {}\n"), 2))

	var hasF, hasG bool
	for _, n := range snap.Nodes() {
		if n.Kind == ir.KindFunction {
			switch n.Name {
			case "F":
				hasF = true
			case "G":
				hasG = true
			}
		}
	}
	assert.True(t, hasG, "the rebuilt file should contribute its new function")
	assert.False(t, hasF, "RemoveFile should have dropped the stale function before rebuilding")
}
