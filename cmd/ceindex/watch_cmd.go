package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/viant/afs"

	"github.com/viant/ceindex/build"
	"github.com/viant/ceindex/incremental"
)

// newWatchCmd drives the incremental layer (§4.M): an initial full build,
// then a poll loop that re-walks only the files the Tracker reports
// changed plus their reverse-dependency closure, printing what got rebuilt
// instead of re-running the full pipeline on every edit.
func newWatchCmd() *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "watch <path>",
		Short: "Incrementally rebuild the index as files under <path> change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), args[0], interval)
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 2*time.Second, "Poll interval for change detection")
	return cmd
}

func runWatch(ctx context.Context, root string, interval time.Duration) error {
	res, err := buildSnapshot(ctx, root)
	if err != nil {
		return fmt.Errorf("building initial snapshot: %w", err)
	}
	fmt.Printf("watching %s (repo=%s, snapshot=%s, %d files)\n", root, res.RepoID, res.SnapshotID, len(res.Sources))

	fs := afs.New()
	tracker := incremental.NewTracker(fs)
	overlay := incremental.NewLocalOverlay(fs, root)
	registry := newRegistry()
	builder := build.NewBuilder(res.RepoID, build.DefaultConfig())
	resolver := build.NewResolver(res.RepoID)
	overlayBuilder := incremental.NewOverlayIRBuilder(registry, builder, resolver, fs)

	for path, content := range res.Sources {
		tracker.Changed(path, content, time.Now().Unix())
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := pollOnce(ctx, root, res, tracker, overlay, overlayBuilder); err != nil {
				fmt.Printf("poll error: %v\n", err)
			}
		}
	}
}

// pollOnce re-walks root and rebuilds every changed file plus its dependents
// through the overlay builder, updating the watch command's in-memory
// snapshot. Chunks are not rebuilt, and a separate `query` run builds its
// own snapshot from scratch.
func pollOnce(ctx context.Context, root string, res *buildResult, tracker *incremental.Tracker, overlay *incremental.LocalOverlay, ob *incremental.OverlayIRBuilder) error {
	var rebuilt []string
	err := filepath.WalkDir(root, func(p string, d os.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() {
			return walkErr
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			rel = p
		}
		rel = filepath.ToSlash(rel)
		content, err := overlay.Read(ctx, p)
		if err != nil {
			return nil // transient read failure; picked up on next poll
		}
		if !tracker.Changed(rel, content, time.Now().Unix()) {
			return nil
		}
		res.Sources[rel] = content
		if err := ob.Rebuild(ctx, res.Snapshot, res.Context, rel, content, time.Now().Unix()); err != nil {
			return err
		}
		rebuilt = append(rebuilt, rel)
		return nil
	})
	if err != nil {
		return err
	}
	if len(rebuilt) == 0 {
		return nil
	}
	fmt.Printf("rebuilt %d file(s): %s\n", len(rebuilt), strings.Join(rebuilt, ", "))
	return nil
}
