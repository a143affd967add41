package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/viant/ceindex/config"
	"github.com/viant/ceindex/index"
	"github.com/viant/ceindex/retrieval"
)

func newQueryCmd() *cobra.Command {
	var seed string
	var limit int
	cmd := &cobra.Command{
		Use:   "query <path> <text>",
		Short: "Answer a natural-language query with ranked, packed source context",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args[0], args[1], seed, limit)
		},
	}
	cmd.Flags().StringVar(&seed, "seed", "", "Seed node id for the graph index port (e.g. a symbol from a prior result)")
	cmd.Flags().IntVar(&limit, "limit", 20, "Per-port result limit before fusion")
	return cmd
}

func runQuery(cmd *cobra.Command, root, queryText, seed string, limit int) error {
	ctx := context.Background()
	cfg := config.Default()
	if budget := viper.GetInt("context.budget_tokens"); budget > 0 {
		cfg.Context.BudgetTokens = budget
	}

	res, err := buildSnapshot(ctx, root)
	if err != nil {
		return fmt.Errorf("building snapshot: %w", err)
	}
	chunks := buildChunks(res.RepoID, res.Snapshot, res.Sources)
	byID := make(map[string]*index.Chunk, len(chunks))
	for _, c := range chunks {
		byID[c.ID] = c
	}

	dsn := viper.GetString("index_dsn")
	lexical, err := index.NewSQLiteLexicalIndex(dsn)
	if err != nil {
		return fmt.Errorf("opening lexical index: %w", err)
	}
	vector, err := index.NewSQLiteVectorIndex(dsn)
	if err != nil {
		return fmt.Errorf("opening vector index: %w", err)
	}
	symbol := index.NewSnapshotSymbolIndex(res.Snapshot, res.Context)
	graph := index.NewSnapshotGraphIndex(res.Snapshot)

	classification := retrieval.Classify(queryText)
	scope := retrieval.SelectScopeWithLimits(res.Snapshot, classification, chunks, cfg.Scope.DefaultTopK, cfg.Scope.ChunkCap)
	if err := scope.Validate(res.Snapshot); err != nil {
		fmt.Printf("scope warning: %v (falling back to full repo)\n", err)
		scope = retrieval.Scope{Type: retrieval.ScopeFullRepo}
	}
	if seed != "" {
		classification.SymbolNames = append(classification.SymbolNames, seed)
	}

	orch := &retrieval.Orchestrator{
		Lexical: lexical,
		Vector:  vector,
		Symbol:  symbol,
		Graph:   graph,
		Embed:   hashEmbed,
	}
	raw := orch.Search(ctx, queryText, classification, scope, retrieval.IndexSet{}, limit)
	for name, searchErr := range raw.Errors {
		fmt.Printf("index warning: %s: %v\n", name, searchErr)
	}

	meta := make(map[string]retrieval.ChunkMeta, len(byID))
	for id, c := range byID {
		meta[id] = retrieval.ChunkMeta{Importance: c.ImportanceScore, Size: len(c.Content), FileDepth: strings.Count(c.Path, "/")}
	}
	hits := retrieval.FuseWithProfiles(raw, classification.Intent, cfg.RRFConfig(), cfg.WeightProfiles(), meta)
	hits = retrieval.ApplyCutoff(hits, cfg.Cutoff(string(classification.Intent)))

	fetch := func(ids []string) (map[string]*index.Chunk, error) {
		out := make(map[string]*index.Chunk, len(ids))
		for _, id := range ids {
			if c, ok := byID[id]; ok {
				out[id] = c
			}
		}
		return out, nil
	}

	packed, err := retrieval.PackContextWithOptions(hits, fetch, cfg.Context.BudgetTokens, cfg.PackOptions())
	if err != nil {
		fmt.Printf("context warning: %v\n", err)
	}
	if packed == nil {
		return nil
	}

	fmt.Printf("intent=%s scope=%s dropped=%d tokens=%d utilisation=%.2f\n",
		classification.Intent, scope.Type, packed.DroppedCount, packed.TotalTokens, packed.Utilisation)
	fmt.Println(retrieval.Render(packed))
	return nil
}
