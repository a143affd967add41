package index

import "context"

// ScoredResult is one hit returned by any of the four index ports (§4.G),
// normalized to a common shape so package retrieval's fusion stage (§4.K)
// can combine ranks across heterogeneous sources without per-source
// special-casing.
type ScoredResult struct {
	ChunkID string
	NodeID  string
	Score   float64
	Source  string // "lexical", "vector", "symbol", "graph"
}

// LexicalIndex is the full-text/BM25 search port (§4.G.1). Index, Upsert,
// and Delete are the three write operations §4.G and §6 require of every
// adapter ("index(docs), upsert(docs), delete(ids)"); Upsert differs from
// Index only in that it is expected to replace rows sharing a chunk id
// rather than require a fresh batch, which gorm's Save already gives us.
type LexicalIndex interface {
	Index(ctx context.Context, chunks Chunks) error
	Upsert(ctx context.Context, chunks Chunks) error
	Delete(ctx context.Context, chunkIDs []string) error
	Search(ctx context.Context, query string, limit int) ([]ScoredResult, error)
}

// VectorIndex is the embedding similarity search port (§4.G.2).
type VectorIndex interface {
	Index(ctx context.Context, chunks Chunks, embed func(text string) ([]float32, error)) error
	Upsert(ctx context.Context, chunks Chunks, embed func(text string) ([]float32, error)) error
	Delete(ctx context.Context, chunkIDs []string) error
	Search(ctx context.Context, queryVector []float32, limit int) ([]ScoredResult, error)
}

// SymbolIndex is the exact/fuzzy FQN and identifier lookup port (§4.G.3),
// backed directly by ir.GlobalContext's fqnIndex rather than a separate
// store. Upsert/Delete are no-ops returning ErrReadOnlyIndex: a Snapshot's
// Nodes are immutable once built (§3 "Nodes and edges are created during
// IR build, never mutated thereafter"), so mutation here would mean
// rebuilding the snapshot, not patching rows in place.
type SymbolIndex interface {
	Lookup(ctx context.Context, fqnOrName string, limit int) ([]ScoredResult, error)
	Upsert(ctx context.Context, chunks Chunks) error
	Delete(ctx context.Context, chunkIDs []string) error
}

// GraphIndex is the graph reachability port (§4.G.4): forward/reverse
// neighbor queries bounded by depth; SnapshotGraphIndex follows CALLS edges
// only. Upsert/
// Delete share SymbolIndex's read-only rationale: the graph view is
// derived live from Snapshot edges.
type GraphIndex interface {
	Neighbors(ctx context.Context, nodeID string, maxDepth int, forward bool) ([]ScoredResult, error)
	Upsert(ctx context.Context, chunks Chunks) error
	Delete(ctx context.Context, chunkIDs []string) error
}

// ErrReadOnlyIndex is returned by Upsert/Delete on adapters that present a
// live, derived view over a Snapshot rather than an independently
// mutable store.
var ErrReadOnlyIndex = errReadOnly{}

type errReadOnly struct{}

func (errReadOnly) Error() string {
	return "index: this adapter is a read-only view over a snapshot; rebuild the snapshot instead of upserting/deleting"
}

// HealthChecker is implemented by any adapter capable of a lightweight
// liveness probe, used by retrieval.Orchestrator.HealthCheck's
// health-check aggregation (SPEC_FULL §6 supplemented feature).
type HealthChecker interface {
	Ping(ctx context.Context) error
}
