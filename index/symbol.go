package index

import (
	"context"
	"strings"

	"github.com/viant/ceindex/ir"
)

// SnapshotSymbolIndex implements SymbolIndex directly over an
// ir.GlobalContext's fqnIndex, avoiding a redundant copy of the symbol
// table into a separate store: the resolver (§4.D) already builds the
// index this port needs.
type SnapshotSymbolIndex struct {
	snap *ir.Snapshot
	ctx  *ir.GlobalContext
}

// NewSnapshotSymbolIndex wraps a built Snapshot/GlobalContext pair.
func NewSnapshotSymbolIndex(snap *ir.Snapshot, ctx *ir.GlobalContext) *SnapshotSymbolIndex {
	return &SnapshotSymbolIndex{snap: snap, ctx: ctx}
}

// Lookup does an exact FQN match first, falling back to a suffix/substring
// scan over every node's FQN for fuzzy identifier search.
func (s *SnapshotSymbolIndex) Lookup(ctx context.Context, fqnOrName string, limit int) ([]ScoredResult, error) {
	var results []ScoredResult
	if ids := s.ctx.Lookup(fqnOrName); len(ids) > 0 {
		for _, id := range ids {
			results = append(results, ScoredResult{NodeID: id, Score: 1.0, Source: "symbol"})
		}
		return capResults(results, limit), nil
	}

	needle := strings.ToLower(fqnOrName)
	for _, n := range s.snap.Nodes() {
		fqn := strings.ToLower(n.FQN)
		switch {
		case fqn == needle:
			results = append(results, ScoredResult{NodeID: n.ID, Score: 1.0, Source: "symbol"})
		case strings.HasSuffix(fqn, "."+needle):
			results = append(results, ScoredResult{NodeID: n.ID, Score: 0.8, Source: "symbol"})
		case strings.Contains(fqn, needle):
			results = append(results, ScoredResult{NodeID: n.ID, Score: 0.5, Source: "symbol"})
		}
	}
	return capResults(results, limit), nil
}

// Upsert and Delete satisfy the SymbolIndex port's write operations
// (§4.G/§6) but are no-ops returning ErrReadOnlyIndex: this adapter is a
// live view over a Snapshot's fqnIndex, not an independently mutable
// store (§3 "Nodes... never mutated thereafter").
func (s *SnapshotSymbolIndex) Upsert(ctx context.Context, chunks Chunks) error {
	return ErrReadOnlyIndex
}

func (s *SnapshotSymbolIndex) Delete(ctx context.Context, chunkIDs []string) error {
	return ErrReadOnlyIndex
}

func capResults(results []ScoredResult, limit int) []ScoredResult {
	if limit > 0 && len(results) > limit {
		return results[:limit]
	}
	return results
}
