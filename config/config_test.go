package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/ceindex/retrieval"
)

func TestDefaultMatchesRetrievalPackageDefaults(t *testing.T) {
	c := Default()
	base := retrieval.DefaultRRFConfig()

	assert.Equal(t, base.KLexical, c.Fusion.KLexical)
	assert.Equal(t, base.Beta, c.Fusion.Beta)
	assert.Equal(t, base.MaxFactor, c.Fusion.MaxFactor)
	assert.Equal(t, retrieval.DefaultTopK, c.Scope.DefaultTopK)
	assert.Equal(t, retrieval.DefaultChunkCap, c.Scope.ChunkCap)
}

func TestCutoffFallsBackToBalanced(t *testing.T) {
	c := Default()

	assert.Equal(t, c.Fusion.Cutoffs["symbol"], c.Cutoff("symbol"))
	assert.Equal(t, c.Fusion.Cutoffs["balanced"], c.Cutoff("unknown-intent"))
}

func TestWeightProfilesProjectsIntoRetrievalIntentKeys(t *testing.T) {
	c := Default()
	profiles := c.WeightProfiles()

	require.Contains(t, profiles, retrieval.IntentSymbol)
	symbolProfile := profiles[retrieval.IntentSymbol]
	assert.Equal(t, c.Fusion.Profiles["symbol"].Lexical, symbolProfile.Lexical)
	assert.Equal(t, c.Fusion.Profiles["symbol"].Symbol, symbolProfile.Symbol)
}

func TestRRFConfigProjection(t *testing.T) {
	c := Default()
	rrf := c.RRFConfig()

	assert.Equal(t, c.Fusion.KLexical, rrf.KLexical)
	assert.Equal(t, c.Fusion.KVector, rrf.KVector)
	assert.Equal(t, c.Fusion.Beta, rrf.Beta)
	assert.Equal(t, c.Fusion.Q0, rrf.Q0)
}

func TestPackOptionsProjection(t *testing.T) {
	c := Default()
	opts := c.PackOptions()

	assert.Equal(t, c.Context.TokensPerChar, opts.TokensPerChar)
	assert.Equal(t, c.Context.OverlapThreshold, opts.OverlapThreshold)
	assert.Equal(t, c.Context.DropOnFullOverlap, opts.DropOnFullOverlap)
}
