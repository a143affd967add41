// orchestrator.go implements §4.J: choosing which index ports a query
// fans out to, issuing the searches concurrently, and isolating any
// single port's failure so it never aborts the others (§5 "Failures are
// isolated per index: an exception from one search becomes an empty list
// with an error record, never aborts the others").
package retrieval

import (
	"context"
	"sync"

	"github.com/sourcegraph/conc"

	"github.com/viant/ceindex/ceerrors"
	"github.com/viant/ceindex/index"
)

// IndexSet names which of the four ports a query should fan out to.
type IndexSet struct {
	Lexical, Vector, Symbol, Graph bool
}

// defaultIndexSet maps intent to its default port subset (§4.J step 1):
// Code/Concept -> {lexical, vector}; Symbol -> {symbol, lexical};
// Flow -> {graph, symbol}; Balanced (the spec's "Overview" catch-all,
// §4.H's fifth class) -> {vector, lexical}.
func defaultIndexSet(intent Intent) IndexSet {
	switch intent {
	case IntentCode, IntentConcept:
		return IndexSet{Lexical: true, Vector: true}
	case IntentSymbol:
		return IndexSet{Symbol: true, Lexical: true}
	case IntentFlow:
		return IndexSet{Graph: true, Symbol: true}
	default: // IntentBalanced
		return IndexSet{Vector: true, Lexical: true}
	}
}

// Orchestrator fans a query out across every wired index port
// concurrently (§4.J "parallel fan-out").
type Orchestrator struct {
	Lexical index.LexicalIndex
	Vector  index.VectorIndex
	Symbol  index.SymbolIndex
	Graph   index.GraphIndex

	Embed func(text string) ([]float32, error)
}

// RawHits holds each port's results, tagged by source, before fusion.
type RawHits struct {
	Lexical []index.ScoredResult
	Vector  []index.ScoredResult
	Symbol  []index.ScoredResult
	Graph   []index.ScoredResult

	// Errors records a recovered IndexUnavailable failure per port name
	// (§7 "an error entry is recorded in MultiIndexResult.errors").
	Errors map[string]error
}

// Search queries every selected, wired port concurrently, scoping results
// to scope.ChunkIDs when scope is Focused, and never fails the call as a
// whole because one port errored (§8 property 9 "port isolation"). When
// explicit is the zero IndexSet, the intent's default set is used (§4.J
// step 1 "If the caller supplied an explicit index set, honour it.
// Otherwise, map intent to a default set").
func (o *Orchestrator) Search(ctx context.Context, query string, classification Classification, scope Scope, explicit IndexSet, limit int) *RawHits {
	set := explicit
	if set == (IndexSet{}) {
		set = defaultIndexSet(classification.Intent)
	}

	hits := &RawHits{Errors: make(map[string]error)}
	var mu sync.Mutex
	recordErr := func(name string, err error) {
		mu.Lock()
		hits.Errors[name] = ceerrors.IndexUnavailable(err, name)
		mu.Unlock()
	}

	var wg conc.WaitGroup
	fetchLimit := limit * 2 // §4.J step 2 "search(query, limit × 2)"

	if set.Lexical && o.Lexical != nil {
		wg.Go(func() {
			res, err := o.Lexical.Search(ctx, query, fetchLimit)
			if err != nil {
				recordErr("lexical", err)
				return
			}
			hits.Lexical = scopeFilter(res, scope)
		})
	}
	if set.Vector && o.Vector != nil && o.Embed != nil {
		wg.Go(func() {
			vec, err := o.Embed(query)
			if err != nil {
				recordErr("vector", err)
				return
			}
			res, err := o.Vector.Search(ctx, vec, fetchLimit)
			if err != nil {
				recordErr("vector", err)
				return
			}
			hits.Vector = scopeFilter(res, scope)
		})
	}
	if set.Symbol && o.Symbol != nil {
		wg.Go(func() {
			res, err := o.Symbol.Lookup(ctx, query, fetchLimit)
			if err != nil {
				recordErr("symbol", err)
				return
			}
			hits.Symbol = scopeFilter(res, scope)
		})
	}
	// Graph expansion requires seed symbol ids from the intent's
	// symbol_names; skip it when none exist (§4.J step 2).
	if set.Graph && o.Graph != nil && len(classification.SymbolNames) > 0 {
		for _, seed := range classification.SymbolNames {
			seed := seed
			wg.Go(func() {
				seedID := seed
				if o.Symbol != nil {
					if found, err := o.Symbol.Lookup(ctx, seed, 1); err == nil && len(found) > 0 && found[0].NodeID != "" {
						seedID = found[0].NodeID
					}
				}
				res, err := o.Graph.Neighbors(ctx, seedID, 2, true)
				if err != nil {
					recordErr("graph", err)
					return
				}
				mu.Lock()
				hits.Graph = append(hits.Graph, scopeFilter(res, scope)...)
				mu.Unlock()
			})
		}
	}

	wg.Wait()

	if limit > 0 {
		hits.Lexical = truncate(hits.Lexical, limit)
		hits.Vector = truncate(hits.Vector, limit)
		hits.Symbol = truncate(hits.Symbol, limit)
		hits.Graph = truncate(hits.Graph, limit)
	}
	return hits
}

// scopeFilter keeps results whose chunk id is in scope.ChunkIDs; a result
// with no chunk id (e.g. a bare graph-neighbor NodeID) is kept
// conservatively, matching §4.J step 3's "unmapped chunks are kept
// conservatively".
func scopeFilter(results []index.ScoredResult, scope Scope) []index.ScoredResult {
	if scope.Type != ScopeFocused || len(scope.ChunkIDs) == 0 {
		return results
	}
	out := results[:0:0]
	for _, r := range results {
		if r.ChunkID == "" || scope.Includes(r.ChunkID) {
			out = append(out, r)
		}
	}
	return out
}

func truncate(results []index.ScoredResult, limit int) []index.ScoredResult {
	if len(results) > limit {
		return results[:limit]
	}
	return results
}

// HealthCheck fans out a liveness probe to every wired port implementing
// index.HealthChecker, returning a per-port error map (SPEC_FULL §6
// supplemented feature, "health-check aggregation").
func (o *Orchestrator) HealthCheck(ctx context.Context) map[string]error {
	type named struct {
		name string
		hc   index.HealthChecker
	}
	var checkers []named
	if hc, ok := o.Lexical.(index.HealthChecker); ok {
		checkers = append(checkers, named{"lexical", hc})
	}
	if hc, ok := o.Vector.(index.HealthChecker); ok {
		checkers = append(checkers, named{"vector", hc})
	}
	if hc, ok := o.Symbol.(index.HealthChecker); ok {
		checkers = append(checkers, named{"symbol", hc})
	}
	if hc, ok := o.Graph.(index.HealthChecker); ok {
		checkers = append(checkers, named{"graph", hc})
	}

	results := make(map[string]error, len(checkers))
	var mu sync.Mutex
	var wg conc.WaitGroup
	for _, c := range checkers {
		c := c
		wg.Go(func() {
			err := c.hc.Ping(ctx)
			mu.Lock()
			results[c.name] = err
			mu.Unlock()
		})
	}
	wg.Wait()
	return results
}
