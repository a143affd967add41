package incremental

import (
	"context"
	"sort"

	"github.com/viant/afs"

	"github.com/viant/ceindex/build"
	"github.com/viant/ceindex/ir"
	"github.com/viant/ceindex/parser"
)

// OverlayIRBuilder rebuilds only the files affected by a change, instead of
// re-walking an entire snapshot, by combining Tracker's change detection
// with DependentsOf's reverse-dependency closure and a full re-run of the
// cross-file resolver (§4.D still needs every file re-indexed into
// GlobalContext, but package build itself only re-walks the affected set).
type OverlayIRBuilder struct {
	Registry *parser.Registry
	Builder  *build.Builder
	Resolver *build.Resolver

	tracker *Tracker
	sources map[string][]byte
}

// NewOverlayIRBuilder wires a parser.Registry and build.Builder/Resolver
// pair, matching the same trio cmd/ceindex uses for a full build, but
// invoked per-file instead of per-repository.
func NewOverlayIRBuilder(registry *parser.Registry, builder *build.Builder, resolver *build.Resolver, fs afs.Service) *OverlayIRBuilder {
	return &OverlayIRBuilder{
		Registry: registry,
		Builder:  builder,
		Resolver: resolver,
		tracker:  NewTracker(fs),
		sources:  make(map[string][]byte),
	}
}

// Rebuild re-walks path plus every file that transitively depends on it
// (via ctx's file-dependency graph from the prior full build), merging the
// fresh contributions into snap/ctx in place: snap keeps its snapshot id,
// and nodes of files outside the affected set are left untouched (§4.M).
//
// content is path's current bytes (overlay or on-disk); modTime is used
// only for Tracker bookkeeping, not for change detection itself (content
// hash is authoritative).
func (o *OverlayIRBuilder) Rebuild(ctx context.Context, snap *ir.Snapshot, gctx *ir.GlobalContext, path string, content []byte, modTime int64) error {
	if !o.tracker.Changed(path, content, modTime) {
		return nil
	}
	o.sources[path] = content

	affected := append([]string{path}, DependentsOf(gctx, path)...)
	sort.Strings(affected)

	results := make([]*build.BuildResult, 0, len(affected))
	for _, p := range affected {
		src, ok := o.sources[p]
		if !ok {
			// A dependent we've never parsed in this session; nothing to
			// re-walk without its bytes, so leave its existing IR as-is.
			continue
		}
		language := parser.LanguageForPath(p)
		tree, err := o.Registry.Parse(ctx, parser.SourceFile{Path: p, Language: language, Content: src})
		if err != nil {
			return err
		}
		snap.RemoveFile(p)
		res, err := o.Builder.BuildFile(snap, tree, p)
		if err != nil {
			return err
		}
		results = append(results, res)
	}

	o.Resolver.Resolve(snap, gctx, results)
	return nil
}
