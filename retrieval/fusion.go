// fusion.go implements §4.K: reciprocal-rank fusion across the four index
// ports, an intent-conditioned per-strategy weight profile, and a bounded
// consensus boost that rewards chunks multiple independent strategies
// agree on. Every constant and formula here is taken verbatim from
// spec §4.K rather than approximated.
package retrieval

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/viant/ceindex/index"
)

// RRFConfig carries the per-strategy k constant and consensus-boost
// parameters; all fields are plain values supplied by package config, no
// hidden defaults computed here (§6).
type RRFConfig struct {
	KLexical float64 // RRF rank-discount constant for the lexical strategy
	KVector  float64 // ...for the vector strategy
	KSymbol  float64 // ...for the symbol strategy
	KGraph   float64 // ...for the graph strategy

	Beta      float64 // consensus scaling factor (β)
	MaxFactor float64 // upper bound on the consensus multiplier
	Q0        float64 // quality half-life constant (q₀)
}

// DefaultRRFConfig mirrors §4.K's stated typical values: lexical and
// vector use k=70, symbol and graph use k=50; β=0.3, max_factor=1.5,
// q₀=10.
func DefaultRRFConfig() RRFConfig {
	return RRFConfig{
		KLexical: 70, KVector: 70, KSymbol: 50, KGraph: 50,
		Beta: 0.3, MaxFactor: 1.5, Q0: 10,
	}
}

// WeightProfile is the per-intent, per-strategy contribution to a fused
// score (§4.K "weight profile over strategies... summing to 1").
type WeightProfile struct {
	Vector, Lexical, Symbol, Graph float64
}

// normalized returns p scaled so its four weights sum to 1, matching
// §4.K's "the profile is normalised to sum to 1 after any boosting
// adjustments" — here applied unconditionally so operator-supplied
// profiles from package config never silently skew total mass.
func (p WeightProfile) normalized() WeightProfile {
	sum := p.Vector + p.Lexical + p.Symbol + p.Graph
	if sum <= 0 {
		return WeightProfile{Vector: 0.25, Lexical: 0.25, Symbol: 0.25, Graph: 0.25}
	}
	return WeightProfile{
		Vector:  p.Vector / sum,
		Lexical: p.Lexical / sum,
		Symbol:  p.Symbol / sum,
		Graph:   p.Graph / sum,
	}
}

// profiles is the built-in default weight table (§4.K "Examples: Symbol
// intent emphasises symbol (0.5); Flow intent emphasises graph (0.5);
// Concept intent emphasises vector (0.7)"); package config overrides this
// via FuseWithProfiles.
var profiles = map[Intent]WeightProfile{
	IntentSymbol:   {Symbol: 0.5, Lexical: 0.3, Vector: 0.1, Graph: 0.1},
	IntentFlow:     {Graph: 0.5, Symbol: 0.25, Lexical: 0.15, Vector: 0.1},
	IntentConcept:  {Vector: 0.7, Lexical: 0.15, Symbol: 0.05, Graph: 0.1},
	IntentCode:     {Lexical: 0.4, Vector: 0.4, Symbol: 0.1, Graph: 0.1},
	IntentBalanced: {Vector: 0.25, Lexical: 0.25, Symbol: 0.25, Graph: 0.25},
}

// Cutoffs is the intent-specific result-length cap (§4.K "Cutoff. After
// sorting by final descending, truncate to the intent-specific top-K").
var Cutoffs = map[Intent]int{
	IntentSymbol:   20,
	IntentFlow:     15,
	IntentConcept:  60,
	IntentCode:     40,
	IntentBalanced: 40,
}

// ChunkMeta supplies the out-of-band signals priority() blends in: the
// RepoMap-style importance score (§9 "some importance in [0,1]... default
// to 0 when absent") and the structural facts (byte size, path depth) the
// feature vector records for a future learning-to-rank consumer (§4.K
// "Feature vector... chunk size, file depth").
type ChunkMeta struct {
	Importance float64
	Size       int
	FileDepth  int
}

// FeatureVector records the per-strategy contribution feeding a hit's
// final score, emitted per surviving chunk as the stable contract for a
// future learning-to-rank ranker (§4.K "its schema is part of the core's
// stable output").
type FeatureVector struct {
	LexicalRank, VectorRank, SymbolRank, GraphRank int // 0 = not present, else 1-based rank
	LexicalRRF, VectorRRF, SymbolRRF, GraphRRF     float64
	LexicalWeight, VectorWeight, SymbolWeight, GraphWeight float64

	Sources         int
	BestRank        int
	AvgRank         float64
	ConsensusFactor float64
	ChunkSize       int
	FileDepth       int
}

// SearchHit is one fused, scored result ready for context packing.
type SearchHit struct {
	ChunkID string
	NodeID  string

	// FinalScore is final(c) = S(c) * consensus_factor(c) (§4.K).
	FinalScore float64
	// Priority is priority(c), the blend final/importance/symbol-confidence
	// fusion emits for context packing to sort on (§4.K).
	Priority float64

	Features    FeatureVector
	Explanation string
}

// Fuse combines RawHits into ranked SearchHits using weighted RRF plus a
// bounded consensus boost (§4.K), using the built-in default weight
// profiles and no importance/confidence metadata. Callers wiring a config
// package's tuned profiles or chunk metadata should use FuseWithProfiles.
func Fuse(hits *RawHits, intent Intent, cfg RRFConfig) []SearchHit {
	return FuseWithProfiles(hits, intent, cfg, profiles, nil)
}

// FuseWithProfiles is Fuse parameterized over an explicit profile table
// and chunk metadata, the seam package config's Config.RRFConfig/Profiles
// plug into (§6 "all are plain values, no hidden environment lookups
// inside the core"). meta may be nil; a missing entry defaults to zero
// importance/confidence per §9's "default to 0 when absent".
func FuseWithProfiles(hits *RawHits, intent Intent, cfg RRFConfig, profileTable map[Intent]WeightProfile, meta map[string]ChunkMeta) []SearchHit {
	profile := profileTable[intent]
	if profile == (WeightProfile{}) {
		profile = profileTable[IntentBalanced]
	}
	profile = profile.normalized()

	type accum struct {
		chunkID, nodeID string
		score           float64
		ranks           []int // every rank this chunk received, for avg_rank
		features        FeatureVector
	}
	byChunk := make(map[string]*accum)

	get := func(key string) *accum {
		a, ok := byChunk[key]
		if !ok {
			a = &accum{}
			byChunk[key] = a
		}
		return a
	}

	add := func(results []index.ScoredResult, weight, k float64, setRank func(*FeatureVector, int), setRRF func(*FeatureVector, float64), setWeight func(*FeatureVector, float64)) {
		for i, r := range results {
			key := r.ChunkID
			if key == "" {
				key = r.NodeID
			}
			if key == "" {
				continue
			}
			a := get(key)
			a.chunkID = r.ChunkID
			if a.nodeID == "" {
				a.nodeID = r.NodeID
			}
			rank := i // 0-based rank per §4.K "rank(hit) = position in strategy's list (0-based)"
			rrf := 1.0 / (k + float64(rank))
			a.score += weight * rrf
			a.ranks = append(a.ranks, rank)
			setRank(&a.features, rank+1)
			setRRF(&a.features, rrf)
			setWeight(&a.features, weight)
		}
	}

	add(hits.Lexical, profile.Lexical, cfg.KLexical,
		func(f *FeatureVector, r int) { f.LexicalRank = r },
		func(f *FeatureVector, v float64) { f.LexicalRRF = v },
		func(f *FeatureVector, w float64) { f.LexicalWeight = w })
	add(hits.Vector, profile.Vector, cfg.KVector,
		func(f *FeatureVector, r int) { f.VectorRank = r },
		func(f *FeatureVector, v float64) { f.VectorRRF = v },
		func(f *FeatureVector, w float64) { f.VectorWeight = w })
	add(hits.Symbol, profile.Symbol, cfg.KSymbol,
		func(f *FeatureVector, r int) { f.SymbolRank = r },
		func(f *FeatureVector, v float64) { f.SymbolRRF = v },
		func(f *FeatureVector, w float64) { f.SymbolWeight = w })
	add(hits.Graph, profile.Graph, cfg.KGraph,
		func(f *FeatureVector, r int) { f.GraphRank = r },
		func(f *FeatureVector, v float64) { f.GraphRRF = v },
		func(f *FeatureVector, w float64) { f.GraphWeight = w })

	// symbol_confidence(c): the normalised score the symbol strategy itself
	// returned for c, else 0 (§4.K "priority score").
	symbolConfidence := make(map[string]float64, len(hits.Symbol))
	for _, r := range hits.Symbol {
		key := r.ChunkID
		if key == "" {
			key = r.NodeID
		}
		symbolConfidence[key] = r.Score
	}

	out := make([]SearchHit, 0, len(byChunk))
	for key, a := range byChunk {
		n := countSources(a.features)
		avgRank := avg(a.ranks)
		bestRank := minRank(a.ranks)

		consensusRaw := 1 + cfg.Beta*(math.Sqrt(float64(n))-1)
		quality := 1 / (1 + avgRank/cfg.Q0)
		factor := consensusRaw * (0.5 + 0.5*quality)
		if factor > cfg.MaxFactor {
			factor = cfg.MaxFactor
		}
		if factor < 1.0 {
			factor = 1.0
		}

		final := a.score * factor

		m := meta[key]
		priority := 0.55*final + 0.30*m.Importance + 0.15*symbolConfidence[key]

		a.features.Sources = n
		a.features.BestRank = bestRank
		a.features.AvgRank = avgRank
		a.features.ConsensusFactor = factor
		a.features.ChunkSize = m.Size
		a.features.FileDepth = m.FileDepth

		out = append(out, SearchHit{
			ChunkID:     a.chunkID,
			NodeID:      a.nodeID,
			FinalScore:  final,
			Priority:    priority,
			Features:    a.features,
			Explanation: explain(a.features, factor),
		})
	}

	// Final ordering is a total order on final(c); ties break by
	// (−n, best_rank, chunk_id) so tied chunks are stably ordered (§5).
	sort.Slice(out, func(i, j int) bool {
		if out[i].FinalScore != out[j].FinalScore {
			return out[i].FinalScore > out[j].FinalScore
		}
		if out[i].Features.Sources != out[j].Features.Sources {
			return out[i].Features.Sources > out[j].Features.Sources
		}
		if out[i].Features.BestRank != out[j].Features.BestRank {
			return out[i].Features.BestRank < out[j].Features.BestRank
		}
		return out[i].ChunkID < out[j].ChunkID
	})
	return out
}

func avg(ranks []int) float64 {
	if len(ranks) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ranks {
		sum += r
	}
	return float64(sum) / float64(len(ranks))
}

func minRank(ranks []int) int {
	if len(ranks) == 0 {
		return 0
	}
	m := ranks[0]
	for _, r := range ranks[1:] {
		if r < m {
			m = r
		}
	}
	return m
}

func countSources(f FeatureVector) int {
	n := 0
	if f.LexicalRank > 0 {
		n++
	}
	if f.VectorRank > 0 {
		n++
	}
	if f.SymbolRank > 0 {
		n++
	}
	if f.GraphRank > 0 {
		n++
	}
	return n
}

func explain(f FeatureVector, factor float64) string {
	var parts []string
	add := func(label string, rank int) {
		if rank > 0 {
			parts = append(parts, label)
		}
	}
	add("symbol", f.SymbolRank)
	add("lexical", f.LexicalRank)
	add("vector", f.VectorRank)
	add("graph", f.GraphRank)
	if len(parts) == 0 {
		return "no strategy agreed on this chunk"
	}
	base := "matched by " + strings.Join(parts, "+") + ", rank " + strconv.Itoa(f.BestRank+1) + "/" + strconv.Itoa(f.Sources)
	if factor > 1.0 {
		return base + ", consensus " + strconv.FormatFloat(factor, 'f', 2, 64) + "x"
	}
	return base
}

// ApplyCutoff truncates an already-sorted (descending by FinalScore) hit
// list to the intent-specific top-K (§4.K "Cutoff"). Cutoffs is the
// built-in default table; package config may supply its own via the
// cutoff parameter.
func ApplyCutoff(hits []SearchHit, cutoff int) []SearchHit {
	if cutoff <= 0 || len(hits) <= cutoff {
		return hits
	}
	return hits[:cutoff]
}
