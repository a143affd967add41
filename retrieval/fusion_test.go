package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/ceindex/index"
)

func TestFuseConsensusFactorWithinBounds(t *testing.T) {
	cfg := DefaultRRFConfig()
	hits := &RawHits{
		Lexical: []index.ScoredResult{{ChunkID: "c1", Score: 0.9}, {ChunkID: "c2", Score: 0.5}},
		Vector:  []index.ScoredResult{{ChunkID: "c1", Score: 0.8}},
		Symbol:  []index.ScoredResult{{ChunkID: "c1", Score: 0.7}},
		Graph:   []index.ScoredResult{{ChunkID: "c1", Score: 0.6}},
	}
	out := FuseWithProfiles(hits, IntentBalanced, cfg, profiles, nil)
	var c1 *SearchHit
	for i := range out {
		if out[i].ChunkID == "c1" {
			c1 = &out[i]
		}
	}
	require.NotNil(t, c1, "expected c1 in fused output")
	assert.GreaterOrEqual(t, c1.Features.ConsensusFactor, 1.0)
	assert.LessOrEqual(t, c1.Features.ConsensusFactor, cfg.MaxFactor)
	assert.Equal(t, 4, c1.Features.Sources)
}

func TestFuseSingleStrategyHasNoConsensusBoost(t *testing.T) {
	cfg := DefaultRRFConfig()
	hits := &RawHits{Lexical: []index.ScoredResult{{ChunkID: "solo", Score: 0.5}}}
	out := FuseWithProfiles(hits, IntentBalanced, cfg, profiles, nil)
	require.Len(t, out, 1)
	assert.Equal(t, 1.0, out[0].Features.ConsensusFactor)
}

func TestFuseOrdersByFinalScoreDescending(t *testing.T) {
	cfg := DefaultRRFConfig()
	hits := &RawHits{
		Lexical: []index.ScoredResult{{ChunkID: "best", Score: 1.0}, {ChunkID: "worst", Score: 0.1}},
	}
	out := FuseWithProfiles(hits, IntentBalanced, cfg, profiles, nil)
	require.Len(t, out, 2)
	assert.Equal(t, "best", out[0].ChunkID)
	assert.Equal(t, "worst", out[1].ChunkID)
}

func TestFuseTieBreaksByChunkID(t *testing.T) {
	cfg := DefaultRRFConfig()
	hits := &RawHits{
		Lexical: []index.ScoredResult{{ChunkID: "zzz"}},
		Vector:  []index.ScoredResult{{ChunkID: "aaa"}},
	}
	out := FuseWithProfiles(hits, IntentBalanced, cfg, profiles, nil)
	require.Len(t, out, 2)
	assert.Equal(t, "aaa", out[0].ChunkID, "the lexicographically smaller chunk id should win an exact tie")
}

func TestApplyCutoffTruncatesToTopK(t *testing.T) {
	hits := make([]SearchHit, 30)
	for i := range hits {
		hits[i] = SearchHit{ChunkID: string(rune('a' + i))}
	}
	got := ApplyCutoff(hits, Cutoffs[IntentSymbol])
	assert.Len(t, got, Cutoffs[IntentSymbol])
}

func TestApplyCutoffNoopWhenUnderLimit(t *testing.T) {
	hits := []SearchHit{{ChunkID: "a"}, {ChunkID: "b"}}
	got := ApplyCutoff(hits, 20)
	assert.Len(t, got, 2)
}

func TestWeightProfileNormalizes(t *testing.T) {
	p := WeightProfile{Lexical: 2, Vector: 2}.normalized()
	sum := p.Lexical + p.Vector + p.Symbol + p.Graph
	assert.InDelta(t, 1.0, sum, 0.001)
}
