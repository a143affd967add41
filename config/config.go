// Package config implements §6: the typed configuration surface for the
// fusion, context-packing, scope, and incremental-rebuild defaults. All
// fields are plain values loaded once at startup — no hidden environment
// lookups inside the core packages (retrieval, index, build, incremental)
// themselves; only cmd/ceindex touches viper/cobra to populate a Config.
package config

import "github.com/viant/ceindex/retrieval"

// WeightProfile is one intent's per-strategy contribution to fused
// ranking, loaded from config instead of retrieval's package-level
// defaults so an operator can retune without a rebuild.
type WeightProfile struct {
	Lexical float64 `mapstructure:"lexical" yaml:"lexical"`
	Vector  float64 `mapstructure:"vector" yaml:"vector"`
	Symbol  float64 `mapstructure:"symbol" yaml:"symbol"`
	Graph   float64 `mapstructure:"graph" yaml:"graph"`
}

// FusionConfig carries §4.K's per-strategy RRF constants, consensus-boost
// parameters, and the per-intent weight/cutoff tables.
type FusionConfig struct {
	KLexical float64 `mapstructure:"k_lexical" yaml:"k_lexical"`
	KVector  float64 `mapstructure:"k_vector" yaml:"k_vector"`
	KSymbol  float64 `mapstructure:"k_symbol" yaml:"k_symbol"`
	KGraph   float64 `mapstructure:"k_graph" yaml:"k_graph"`

	Beta      float64 `mapstructure:"beta" yaml:"beta"`
	MaxFactor float64 `mapstructure:"max_factor" yaml:"max_factor"`
	Q0        float64 `mapstructure:"q0" yaml:"q0"`

	Cutoffs  map[string]int           `mapstructure:"cutoffs" yaml:"cutoffs"`
	Profiles map[string]WeightProfile `mapstructure:"profiles" yaml:"profiles"`
}

// ContextConfig carries §4.L's token-budget packing defaults.
type ContextConfig struct {
	BudgetTokens      int     `mapstructure:"budget_tokens" yaml:"budget_tokens"`
	TokensPerChar     float64 `mapstructure:"tokens_per_char" yaml:"tokens_per_char"`
	OverlapThreshold  float64 `mapstructure:"overlap_threshold" yaml:"overlap_threshold"`
	OverlapPenalty    float64 `mapstructure:"overlap_penalty" yaml:"overlap_penalty"`
	DropOnFullOverlap bool    `mapstructure:"drop_on_full_overlap" yaml:"drop_on_full_overlap"`
	TrimmedMaxTokens  int     `mapstructure:"trimmed_max_tokens" yaml:"trimmed_max_tokens"`
}

// ScopeConfig carries §4.I's scope-selection defaults.
type ScopeConfig struct {
	DefaultTopK int `mapstructure:"default_top_k" yaml:"default_top_k"`
	ChunkCap    int `mapstructure:"chunk_cap" yaml:"chunk_cap"`
}

// IncrementalConfig carries §4.M's change-detection defaults.
type IncrementalConfig struct {
	HashAlgorithm string `mapstructure:"hash_algorithm" yaml:"hash_algorithm"`
	MTimeStrategy string `mapstructure:"mtime_strategy" yaml:"mtime_strategy"` // "trust" or "verify"
}

// Config is the full, typed configuration surface.
type Config struct {
	Fusion      FusionConfig      `mapstructure:"fusion" yaml:"fusion"`
	Context     ContextConfig     `mapstructure:"context" yaml:"context"`
	Scope       ScopeConfig       `mapstructure:"scope" yaml:"scope"`
	Incremental IncrementalConfig `mapstructure:"incremental" yaml:"incremental"`

	IndexDSN string `mapstructure:"index_dsn" yaml:"index_dsn"`
}

// Default returns the system defaults called out in §6, matching
// retrieval.DefaultRRFConfig/Cutoffs/profiles so Config and the
// package-level retrieval defaults never silently drift apart.
func Default() *Config {
	base := retrieval.DefaultRRFConfig()
	return &Config{
		Fusion: FusionConfig{
			KLexical: base.KLexical, KVector: base.KVector, KSymbol: base.KSymbol, KGraph: base.KGraph,
			Beta: base.Beta, MaxFactor: base.MaxFactor, Q0: base.Q0,
			Cutoffs: map[string]int{
				"symbol":   retrieval.Cutoffs[retrieval.IntentSymbol],
				"flow":     retrieval.Cutoffs[retrieval.IntentFlow],
				"concept":  retrieval.Cutoffs[retrieval.IntentConcept],
				"code":     retrieval.Cutoffs[retrieval.IntentCode],
				"balanced": retrieval.Cutoffs[retrieval.IntentBalanced],
			},
			Profiles: map[string]WeightProfile{
				"symbol":   {Symbol: 0.5, Lexical: 0.3, Vector: 0.1, Graph: 0.1},
				"flow":     {Graph: 0.5, Symbol: 0.25, Lexical: 0.15, Vector: 0.1},
				"concept":  {Vector: 0.7, Lexical: 0.15, Symbol: 0.05, Graph: 0.1},
				"code":     {Lexical: 0.4, Vector: 0.4, Symbol: 0.1, Graph: 0.1},
				"balanced": {Vector: 0.25, Lexical: 0.25, Symbol: 0.25, Graph: 0.25},
			},
		},
		Context: ContextConfig{
			BudgetTokens:      8000,
			TokensPerChar:     retrieval.DefaultTokensPerChar,
			OverlapThreshold:  retrieval.DefaultOverlapThresh,
			OverlapPenalty:    retrieval.DefaultOverlapPenalty,
			DropOnFullOverlap: true,
			TrimmedMaxTokens:  retrieval.DefaultTrimmedMaxTok,
		},
		Scope: ScopeConfig{
			DefaultTopK: retrieval.DefaultTopK,
			ChunkCap:    retrieval.DefaultChunkCap,
		},
		Incremental: IncrementalConfig{
			HashAlgorithm: "fnv32",
			MTimeStrategy: "verify",
		},
		IndexDSN: "ceindex.db",
	}
}

// RRFConfig projects Config's fusion settings into the retrieval package's
// own config type, the boundary where the typed config surface hands
// values to the core.
func (c *Config) RRFConfig() retrieval.RRFConfig {
	return retrieval.RRFConfig{
		KLexical: c.Fusion.KLexical, KVector: c.Fusion.KVector,
		KSymbol: c.Fusion.KSymbol, KGraph: c.Fusion.KGraph,
		Beta: c.Fusion.Beta, MaxFactor: c.Fusion.MaxFactor, Q0: c.Fusion.Q0,
	}
}

// Cutoff returns the configured top-K cutoff for an intent, falling back
// to the "balanced" entry when intent has no specific override.
func (c *Config) Cutoff(intent string) int {
	if v, ok := c.Fusion.Cutoffs[intent]; ok {
		return v
	}
	return c.Fusion.Cutoffs["balanced"]
}

// WeightProfiles projects Config's string-keyed profile table into
// retrieval.Intent-keyed form for FuseWithProfiles.
func (c *Config) WeightProfiles() map[retrieval.Intent]retrieval.WeightProfile {
	out := make(map[retrieval.Intent]retrieval.WeightProfile, len(c.Fusion.Profiles))
	for k, v := range c.Fusion.Profiles {
		out[retrieval.Intent(k)] = retrieval.WeightProfile{
			Lexical: v.Lexical,
			Vector:  v.Vector,
			Symbol:  v.Symbol,
			Graph:   v.Graph,
		}
	}
	return out
}

// PackOptions projects Config's context-packing settings into
// retrieval.PackOptions.
func (c *Config) PackOptions() retrieval.PackOptions {
	return retrieval.PackOptions{
		TokensPerChar:     c.Context.TokensPerChar,
		OverlapThreshold:  c.Context.OverlapThreshold,
		OverlapPenalty:    c.Context.OverlapPenalty,
		DropOnFullOverlap: c.Context.DropOnFullOverlap,
		TrimmedMaxTokens:  c.Context.TrimmedMaxTokens,
	}
}
