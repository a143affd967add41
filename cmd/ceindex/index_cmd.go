package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/viant/ceindex/index"
)

func newIndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index <path>",
		Short: "Build a structural index over a repository",
		Long:  "index walks a repository, builds its structural IR, extracts chunks, and populates the lexical and vector index stores.",
		Args:  cobra.ExactArgs(1),
		RunE:  runIndex,
	}
	return cmd
}

func runIndex(cmd *cobra.Command, args []string) error {
	root := args[0]
	ctx := context.Background()

	res, err := buildSnapshot(ctx, root)
	if err != nil {
		return fmt.Errorf("building snapshot: %w", err)
	}

	chunks := buildChunks(res.RepoID, res.Snapshot, res.Sources)

	dsn := viper.GetString("index_dsn")
	lexical, err := index.NewSQLiteLexicalIndex(dsn)
	if err != nil {
		return fmt.Errorf("opening lexical index: %w", err)
	}
	if err := lexical.Index(ctx, chunks); err != nil {
		return fmt.Errorf("indexing lexical chunks: %w", err)
	}

	vector, err := index.NewSQLiteVectorIndex(dsn)
	if err != nil {
		return fmt.Errorf("opening vector index: %w", err)
	}
	if err := vector.Index(ctx, chunks, hashEmbed); err != nil {
		return fmt.Errorf("indexing vector chunks: %w", err)
	}

	fmt.Printf("indexed %d files, %d nodes, %d chunks (repo=%s, snapshot=%s)\n",
		len(res.Sources), len(res.Snapshot.Nodes()), len(chunks), res.RepoID, res.SnapshotID)
	return nil
}
