package index

import (
	"context"

	"github.com/viant/ceindex/ir"
)

// SnapshotGraphIndex implements GraphIndex as a bounded BFS over a
// Snapshot's CALLS edges (CONTAINS and REFERENCES are not followed), grounded on the same
// reachability query shape the resolver's cycle detection (build/
// resolver.go) already performs for the module DAG, generalized here to
// run over the symbol graph instead of the file graph (§4.F "forward/
// reverse-reachability BFS with depth bound and cycle detection").
type SnapshotGraphIndex struct {
	snap *ir.Snapshot
}

// NewSnapshotGraphIndex wraps a built Snapshot.
func NewSnapshotGraphIndex(snap *ir.Snapshot) *SnapshotGraphIndex {
	return &SnapshotGraphIndex{snap: snap}
}

// Neighbors returns every node reachable from nodeID within maxDepth hops,
// following CALLS edges outward when forward is true and inward (callers)
// otherwise. Score decays with distance so closer neighbors rank higher
// once fused with the other index ports.
func (g *SnapshotGraphIndex) Neighbors(ctx context.Context, nodeID string, maxDepth int, forward bool) ([]ScoredResult, error) {
	visited := map[string]int{nodeID: 0}
	queue := []string{nodeID}
	var results []ScoredResult

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		depth := visited[cur]
		if depth >= maxDepth {
			continue
		}
		var edges []*ir.Edge
		if forward {
			edges = g.snap.EdgesFrom(cur, ir.EdgeCalls)
		} else {
			edges = g.snap.EdgesTo(cur, ir.EdgeCalls)
		}
		for _, e := range edges {
			next := e.TargetID
			if !forward {
				next = e.SourceID
			}
			if next == "" {
				continue
			}
			if _, seen := visited[next]; seen {
				continue
			}
			visited[next] = depth + 1
			queue = append(queue, next)
			results = append(results, ScoredResult{NodeID: next, Score: 1.0 / float64(depth+2), Source: "graph"})
		}
	}
	return results, nil
}

// Upsert and Delete satisfy the GraphIndex port's write operations
// (§4.G/§6) but are no-ops returning ErrReadOnlyIndex: this adapter walks
// a Snapshot's edges directly rather than owning independently mutable
// storage.
func (g *SnapshotGraphIndex) Upsert(ctx context.Context, chunks Chunks) error {
	return ErrReadOnlyIndex
}

func (g *SnapshotGraphIndex) Delete(ctx context.Context, chunkIDs []string) error {
	return ErrReadOnlyIndex
}
