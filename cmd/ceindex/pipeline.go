package main

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"github.com/viant/ceindex/build"
	"github.com/viant/ceindex/index"
	"github.com/viant/ceindex/ir"
	"github.com/viant/ceindex/parser"
	"github.com/viant/ceindex/parser/goast"
	"github.com/viant/ceindex/parser/treesitter"
	"github.com/viant/ceindex/repository"
)

// parseWorkers bounds the parse fan-out pool to the host's parallelism,
// matching the teacher's lack of a hardcoded worker count in favor of
// GOMAXPROCS-derived sizing.
func parseWorkers() int {
	if n := runtime.GOMAXPROCS(0); n > 1 {
		return n
	}
	return 1
}

// newRegistry wires the two parser technologies the teacher and pack
// demonstrate: native go/ast for Go, tree-sitter for Java/JavaScript.
func newRegistry() *parser.Registry {
	return parser.NewRegistry(goast.New(), treesitter.New())
}

// buildResult bundles everything a rebuilt snapshot needs downstream.
type buildResult struct {
	RepoID     string
	SnapshotID string
	Snapshot   *ir.Snapshot
	Context    *ir.GlobalContext
	Sources    map[string][]byte
}

// buildSnapshot walks root, parses every file its extension maps to a
// supported language, and builds+resolves one Snapshot, mirroring what
// the teacher's analyzer.AnalyzeDir does at package granularity but
// across an entire repository.
func buildSnapshot(ctx context.Context, root string) (*buildResult, error) {
	det := repository.New()
	repo, err := det.DetectRepository(root)
	repoID := ""
	if err == nil && repo != nil && repo.Info != nil {
		repoID = repo.Info.Name
	}
	if repoID == "" {
		repoID = filepath.Base(root)
	}

	reg := newRegistry()
	builder := build.NewBuilder(repoID, build.DefaultConfig())
	resolver := build.NewResolver(repoID)

	snapshotID := uuid.New().String()
	snap := ir.NewSnapshot(repoID, snapshotID)
	gctx := ir.NewGlobalContext()

	sources := make(map[string][]byte)
	var relPaths []string

	err = filepath.WalkDir(root, func(p string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			switch d.Name() {
			case ".git", "node_modules", "vendor", "target", "dist", "build":
				return filepath.SkipDir
			}
			return nil
		}
		lang := parser.LanguageForPath(p)
		if lang == "" || lang == "typescript" || lang == "python" {
			// typescript/python are named but no port is wired for them yet
			// (§ Non-goals scope the initial language set to Go/Java/JS).
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			rel = p
		}
		rel = filepath.ToSlash(rel)
		content, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		sources[rel] = content
		relPaths = append(relPaths, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(relPaths)

	// §4.A parsing has no shared mutable state across files, so it fans out
	// over a bounded worker pool (§5 "Files are the unit of parallelism").
	// §4.B's IR build mutates the shared Snapshot/GlobalContext directly, so
	// it stays on the main goroutine and, once every parse has finished,
	// merges the parsed trees in sorted path order.
	trees := make([]*parser.Tree, len(relPaths))
	pool := pool.New().WithMaxGoroutines(parseWorkers())
	for i, rel := range relPaths {
		i, rel := i, rel
		pool.Go(func() {
			content := sources[rel]
			lang := parser.LanguageForPath(rel)
			tree, err := reg.Parse(ctx, parser.SourceFile{Path: rel, Language: lang, Content: content})
			if err != nil {
				// §7 ParseError: recovered, not surfaced — the file is simply
				// skipped, but it's worth a debug trace when chasing a gap
				// between the repo's file count and the built snapshot's.
				logDebug("parse failed, skipping file", "path", rel, "error", err)
				return
			}
			if tree.HasErrors {
				logDebug("parsed with recovered ERROR nodes", "path", rel, "error_spans", len(tree.ErrorSpans))
			}
			trees[i] = tree
		})
	}
	pool.Wait()

	var results []*build.BuildResult
	for i, rel := range relPaths {
		if trees[i] == nil {
			continue
		}
		res, err := builder.BuildFile(snap, trees[i], rel)
		if err != nil {
			logDebug("build failed, skipping file", "path", rel, "error", err)
			continue
		}
		results = append(results, res)
	}
	resolver.Resolve(snap, gctx, results)
	for _, cyc := range gctx.Cycles {
		logDebug("module dependency cycle detected", "files", strings.Join(cyc, " -> "))
	}

	attachUnifiedSymbols(snap, root, repo)

	return &buildResult{
		RepoID:     repoID,
		SnapshotID: snapshotID,
		Snapshot:   snap,
		Context:    gctx,
		Sources:    sources,
	}, nil
}

// attachUnifiedSymbols tags every local declaration node and every
// resolver-synthesized ExternalFunction node with an ir.UnifiedSymbol
// (§3 "UnifiedSymbol"), so cross-language joins and the owning-package tag
// §4.G's "Package metadata" section requires are actually populated instead
// of index.PackageAnalyzer/ir.UnifiedSymbol sitting unwired. The manifest
// PackageAnalyzer.Analyze reads is chosen from repo.Info.Type (go.mod,
// pom.xml, package.json, ... per repository.Detector's own marker list),
// not hardcoded to go.mod regardless of what kind of project was detected.
func attachUnifiedSymbols(snap *ir.Snapshot, root string, repo *repository.Repository) {
	var project *repository.Project
	if repo != nil {
		project = repo.Info
	}

	analyzer := index.NewPackageAnalyzer()
	info, err := analyzer.Analyze(project)
	if err != nil {
		logDebug("package manifest analysis failed, skipping unified-symbol tagging", "root", root, "error", err)
		return
	}
	modulePath := info.ModulePath
	if modulePath == "" && project != nil && project.GoModule != nil {
		modulePath = project.GoModule.Mod.Path
	}
	pkgIdx := analyzer.BuildIndex(info)

	for _, n := range snap.Nodes() {
		switch n.Kind {
		case ir.KindModule, ir.KindClass, ir.KindInterface, ir.KindEnum, ir.KindFunction, ir.KindMethod:
			if modulePath == "" {
				continue
			}
			ir.AttachSymbol(n, schemeForPath(n.Span.FilePath), info.Manager, modulePath, "")
		case ir.KindExternalFunction:
			pkgPath, _ := n.Attr("package")
			path, _ := pkgPath.(string)
			manager, version := "unknown", ""
			if pv, ok := pkgIdx.Lookup(path); ok {
				manager, version = pv.Manager, pv.Version
			}
			ir.AttachSymbol(n, "go", manager, path, version)
		}
	}
}

// schemeForPath derives a UnifiedSymbol scheme tag from a node's file path,
// falling back to "go" for synthetic nodes with no real source file.
func schemeForPath(path string) string {
	if lang := parser.LanguageForPath(path); lang != "" {
		return lang
	}
	return "go"
}

// buildChunks builds the full chunk set for a snapshot, used to populate
// both the lexical and vector index ports.
func buildChunks(repoID string, snap *ir.Snapshot, sources map[string][]byte) index.Chunks {
	cb := index.NewChunkBuilder(repoID)
	return cb.BuildAll(snap, sources)
}

// hashEmbed is a placeholder embedding function used when no real
// embedding model is configured: it derives a low-dimensional vector from
// character trigram hashes, enough to exercise SQLiteVectorIndex's
// storage/cosine-similarity path end to end without a network call. A
// production deployment wires a real embedding API here instead.
func hashEmbed(text string) ([]float32, error) {
	const dims = 64
	vec := make([]float32, dims)
	text = strings.ToLower(text)
	for i := 0; i+2 < len(text); i++ {
		h := uint32(2166136261)
		for _, c := range text[i : i+3] {
			h ^= uint32(c)
			h *= 16777619
		}
		vec[h%dims] += 1
	}
	var sumSquares float64
	for _, v := range vec {
		sumSquares += float64(v) * float64(v)
	}
	if sumSquares == 0 {
		return vec, nil
	}
	norm := float32(math.Sqrt(sumSquares))
	for i := range vec {
		vec[i] /= norm
	}
	return vec, nil
}
