package index

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/ceindex/ir"
)

func newGraphFixture() *ir.Snapshot {
	snap := ir.NewSnapshot("repo1", "snap1")
	for _, id := range []string{"a", "b", "c", "d"} {
		snap.AddNode(&ir.Node{ID: id, FQN: id, Kind: ir.KindFunction})
	}
	snap.AddEdge(&ir.Edge{ID: "e1", Kind: ir.EdgeCalls, SourceID: "a", TargetID: "b"})
	snap.AddEdge(&ir.Edge{ID: "e2", Kind: ir.EdgeCalls, SourceID: "b", TargetID: "c"})
	snap.AddEdge(&ir.Edge{ID: "e3", Kind: ir.EdgeCalls, SourceID: "c", TargetID: "d"})
	return snap
}

func TestSnapshotGraphIndexForwardNeighborsRespectsDepthBound(t *testing.T) {
	snap := newGraphFixture()
	idx := NewSnapshotGraphIndex(snap)

	results, err := idx.Neighbors(context.Background(), "a", 2, true)
	require.NoError(t, err)

	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.NodeID
	}
	assert.ElementsMatch(t, []string{"b", "c"}, ids, "d is 3 hops away and should be excluded by maxDepth=2")
}

func TestSnapshotGraphIndexScoreDecaysWithDistance(t *testing.T) {
	snap := newGraphFixture()
	idx := NewSnapshotGraphIndex(snap)

	results, err := idx.Neighbors(context.Background(), "a", 3, true)
	require.NoError(t, err)

	scores := map[string]float64{}
	for _, r := range results {
		scores[r.NodeID] = r.Score
	}
	assert.Greater(t, scores["b"], scores["c"], "closer neighbors should score higher")
	assert.Greater(t, scores["c"], scores["d"])
}

func TestSnapshotGraphIndexReverseNeighborsFollowsCallersInward(t *testing.T) {
	snap := newGraphFixture()
	idx := NewSnapshotGraphIndex(snap)

	results, err := idx.Neighbors(context.Background(), "c", 1, false)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "b", results[0].NodeID, "c's only caller is b")
}

func TestSnapshotGraphIndexUpsertDeleteAreReadOnly(t *testing.T) {
	idx := NewSnapshotGraphIndex(newGraphFixture())
	assert.ErrorIs(t, idx.Upsert(context.Background(), nil), ErrReadOnlyIndex)
	assert.ErrorIs(t, idx.Delete(context.Background(), nil), ErrReadOnlyIndex)
}
