package index

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/ceindex/ir"
)

func newSymbolFixture() (*ir.Snapshot, *ir.GlobalContext) {
	snap := ir.NewSnapshot("repo1", "snap1")
	snap.AddNode(&ir.Node{ID: "n1", FQN: "auth.LoginHandler.Handle", Name: "Handle", Kind: ir.KindMethod})
	snap.AddNode(&ir.Node{ID: "n2", FQN: "auth.authenticate", Name: "authenticate", Kind: ir.KindFunction})
	ctx := ir.NewGlobalContext()
	ctx.IndexNode("auth.LoginHandler.Handle", "n1")
	ctx.IndexNode("auth.authenticate", "n2")
	return snap, ctx
}

func TestSnapshotSymbolIndexLookupExactFQNHitsGlobalContext(t *testing.T) {
	snap, ctx := newSymbolFixture()
	idx := NewSnapshotSymbolIndex(snap, ctx)

	results, err := idx.Lookup(context.Background(), "auth.authenticate", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "n2", results[0].NodeID)
	assert.Equal(t, 1.0, results[0].Score)
}

func TestSnapshotSymbolIndexLookupFallsBackToSuffixScan(t *testing.T) {
	snap, ctx := newSymbolFixture()
	idx := NewSnapshotSymbolIndex(snap, ctx)

	results, err := idx.Lookup(context.Background(), "Handle", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "n1", results[0].NodeID)
	assert.Equal(t, 0.8, results[0].Score, "a dotted-suffix match should score below an exact match")
}

func TestSnapshotSymbolIndexLookupRespectsLimit(t *testing.T) {
	snap, ctx := newSymbolFixture()
	idx := NewSnapshotSymbolIndex(snap, ctx)

	results, err := idx.Lookup(context.Background(), "auth", 1)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSnapshotSymbolIndexUpsertDeleteAreReadOnly(t *testing.T) {
	snap, ctx := newSymbolFixture()
	idx := NewSnapshotSymbolIndex(snap, ctx)

	assert.ErrorIs(t, idx.Upsert(context.Background(), nil), ErrReadOnlyIndex)
	assert.ErrorIs(t, idx.Delete(context.Background(), nil), ErrReadOnlyIndex)
}
