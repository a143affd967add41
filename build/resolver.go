// Resolver implements §4.D: the cross-file pass that runs once every file
// in a snapshot has been built. It binds the provisional CALLS/IMPORTS/
// INHERITS edges each goast/tsWalker left behind, ties methods to
// receivers declared in a different file of the same package, builds the
// module dependency DAG, and runs Kahn's topological sort with explicit
// cycle reporting — generalizing the teacher's repository.Detector +
// inspector.Factory two-stage "discover, then wire" flow into one explicit
// resolver stage shared by every language.
package build

import (
	"strings"

	"github.com/viant/ceindex/ir"
)

// Resolver binds cross-file references after every BuildResult for a
// snapshot has been collected.
type Resolver struct {
	RepoID string
}

// NewResolver creates a Resolver for repoID.
func NewResolver(repoID string) *Resolver {
	return &Resolver{RepoID: repoID}
}

// Resolve indexes every node's FQN into ctx, then rewrites each result's
// provisional edges in place against snap and ctx, and finally computes the
// module dependency DAG's topological order and cycle set (§4.D steps
// 1-6).
func (r *Resolver) Resolve(snap *ir.Snapshot, ctx *ir.GlobalContext, results []*BuildResult) {
	// Rebuilt from scratch on every pass: an incremental Resolve reuses the
	// same GlobalContext across many calls (§4.M), and snap.RemoveFile may
	// have dropped nodes a stale entry would otherwise still point to (e.g.
	// E5's rename scenario, where a.py's old FQN must stop resolving).
	ctx.ResetIndex()
	for _, n := range snap.Nodes() {
		if n.FQN != "" {
			ctx.IndexNode(n.FQN, n.ID)
		}
		// Module nodes are reconstructed with the same stable ID by every file
		// in the package, so giving them a Definition occurrence here (once
		// per unique node, after snap.AddNode has already deduped by ID)
		// keeps §3's "exactly one Definition occurrence" invariant instead of
		// emitting one per contributing file.
		if n.Kind == ir.KindModule && n.FQN != "" {
			if _, ok := snap.DefinitionOccurrence(n.FQN); !ok {
				snap.AddOccurrence(&ir.Occurrence{SymbolID: n.FQN, FilePath: ir.ExternalFilePath, Span: n.Span, Roles: ir.RoleDefinition})
			}
		}
	}

	for _, res := range results {
		r.resolveUnboundMethods(snap, ctx, res)
		r.resolveInherits(snap, ctx, res)
		r.resolveCalls(snap, ctx, res)
		r.resolveImports(snap, ctx, res)
	}

	r.buildModuleGraph(ctx)
}

// resolveUnboundMethods finds the receiver type anywhere in the package
// (any file, since all files are indexed by now) and wires the Method's
// CONTAINS edge and ParentID, falling back to leaving the method parentless
// (still reachable by FQN) when the receiver type genuinely isn't declared
// anywhere in the snapshot.
func (r *Resolver) resolveUnboundMethods(snap *ir.Snapshot, ctx *ir.GlobalContext, res *BuildResult) {
	for _, um := range res.Unbound {
		ownerFQN := joinFQN(res.ModuleFQN, um.ReceiverName)
		ids := ctx.Lookup(ownerFQN)
		if len(ids) == 0 {
			continue
		}
		ownerID := ids[0]
		if method, ok := snap.Node(um.MethodNodeID); ok {
			method.ParentID = ownerID
		}
		snap.AddEdge(&ir.Edge{ID: ir.EdgeID(ir.EdgeContains, ownerID, um.MethodNodeID, 0), Kind: ir.EdgeContains, SourceID: ownerID, TargetID: um.MethodNodeID})
	}
}

// resolveInherits rewrites each provisional INHERITS edge's target once the
// base type is found, first within the declaring module, then globally;
// unresolved base types are rebound to a synthetic Unknown node rather than
// left dangling (§4.F "unknown node").
func (r *Resolver) resolveInherits(snap *ir.Snapshot, ctx *ir.GlobalContext, res *BuildResult) {
	for _, ref := range res.Inherits {
		edge := findEdge(snap, ref.EdgeID)
		if edge == nil {
			continue
		}
		targetID, external := r.bindTypeName(snap, ctx, res.ModuleFQN, ref.TypeName)
		edge.TargetID = targetID
		edge.External = external
	}
}

// resolveCalls rewrites each ProvisionalCall's edge target once the callee
// is found: same-module first, then an import-alias-qualified external
// package, then a bare global lookup, finally a synthetic
// ExternalFunction/Unknown node (§4.F "binding rules").
func (r *Resolver) resolveCalls(snap *ir.Snapshot, ctx *ir.GlobalContext, res *BuildResult) {
	for _, pc := range res.Provisional {
		edge := findEdge(snap, pc.EdgeID)
		if edge == nil {
			continue
		}
		if pc.ImportAlias != "" {
			pkgPath := ""
			for _, imp := range res.Imports {
				if imp.Alias == pc.ImportAlias {
					pkgPath = imp.ImportPath
					break
				}
			}
			edge.TargetID = r.externalFunctionID(snap, pkgPath, pc.CalleeName)
			edge.External = true
			continue
		}
		targetID, external := r.bindTypeName(snap, ctx, res.ModuleFQN, pc.CalleeName)
		edge.TargetID = targetID
		edge.External = external
	}
}

// bindTypeName looks up name first qualified by moduleFQN (same-package),
// then as a bare global FQN, finally synthesizing an Unknown node so every
// edge always has a concrete target (§4.F).
func (r *Resolver) bindTypeName(snap *ir.Snapshot, ctx *ir.GlobalContext, moduleFQN, name string) (string, bool) {
	if name == "" {
		return r.unknownID(snap, "anonymous"), true
	}
	if ids := ctx.Lookup(joinFQN(moduleFQN, name)); len(ids) > 0 {
		return ids[0], false
	}
	if ids := ctx.Lookup(name); len(ids) > 0 {
		return ids[0], false
	}
	// dotted names may reference another in-snapshot module's exported
	// symbol, e.g. "pkg.Type"; strip one segment at a time (§4.D "progressive
	// path-component stripping").
	parts := strings.Split(name, ".")
	for len(parts) > 1 {
		parts = parts[:len(parts)-1]
		if ids := ctx.Lookup(strings.Join(parts, ".")); len(ids) > 0 {
			return ids[0], true
		}
	}
	return r.unknownID(snap, name), true
}

func (r *Resolver) unknownID(snap *ir.Snapshot, name string) string {
	fqn := "unknown." + name
	id := ir.NodeID(r.RepoID, ir.KindUnknown, ir.ExternalFilePath, fqn)
	if _, ok := snap.Node(id); !ok {
		snap.AddNode(&ir.Node{ID: id, Kind: ir.KindUnknown, FQN: fqn, Name: name, Span: ir.Span{FilePath: ir.ExternalFilePath}})
	}
	return id
}

func (r *Resolver) externalFunctionID(snap *ir.Snapshot, pkgPath, name string) string {
	fqn := pkgPath + "." + name
	id := ir.NodeID(r.RepoID, ir.KindExternalFunction, ir.ExternalFilePath, fqn)
	if _, ok := snap.Node(id); !ok {
		n := &ir.Node{ID: id, Kind: ir.KindExternalFunction, FQN: fqn, Name: name, Span: ir.Span{FilePath: ir.ExternalFilePath}}
		n.SetAttr("package", pkgPath)
		snap.AddNode(n)
	}
	return id
}

// resolveImports records file-level dependency edges for the module graph
// and tags IMPORTS edges with whether the target resolved inside this
// snapshot (a sibling module) or stays external (a third-party package),
// per §4.D steps 3-5.
func (r *Resolver) resolveImports(snap *ir.Snapshot, ctx *ir.GlobalContext, res *BuildResult) {
	for _, imp := range res.Imports {
		edge := findEdge(snap, imp.EdgeID)
		if edge == nil {
			continue
		}
		localModuleFQN := pathHintToModuleFQN(imp.ImportPath)
		if localModuleFQN == "" {
			continue
		}
		ids := ctx.Lookup(localModuleFQN)
		if len(ids) == 0 {
			continue
		}
		for _, id := range ids {
			if n, ok := snap.Node(id); ok && n.Kind == ir.KindModule {
				edge.TargetID = n.ID
				edge.External = false
				for _, e := range snap.EdgesFrom(n.ID, ir.EdgeContains) {
					if f, ok := snap.Node(e.TargetID); ok && f.Kind == ir.KindFile && f.Name != res.RelPath {
						ctx.AddFileDependency(res.RelPath, f.Name)
					}
				}
				break
			}
		}
	}
}

// pathHintToModuleFQN guesses whether an import path could refer to an
// in-repo module by taking its last path component as a module FQN
// fragment; module FQNs are dotted directory paths (ModuleFQNForPath), so
// this only matches when the snapshot's own module happens to share that
// trailing segment — true cross-package-boundary resolution (distinct
// go.mod modules) is out of scope for a single-snapshot build.
func pathHintToModuleFQN(importPath string) string {
	if importPath == "" || strings.Contains(importPath, ".") && strings.Count(importPath, "/") == 0 {
		return "" // empty, or a dotted path with no slash
	}
	trimmed := strings.Trim(importPath, "/")
	return trimmed[strings.LastIndex(trimmed, "/")+1:]
}

func findEdge(snap *ir.Snapshot, id string) *ir.Edge {
	for _, e := range snap.Edges() {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// buildModuleGraph runs Kahn's algorithm over ctx's file dependency edges,
// producing a topological order over the acyclic portion and reporting any
// remaining cycles explicitly rather than silently breaking them (§3, §4.D
// "Kahn's topological sort").
func (r *Resolver) buildModuleGraph(ctx *ir.GlobalContext) {
	files := ctx.AllFiles()
	// inDegree counts each file's own dependencies, so a file is emitted only
	// after every file it depends on.
	inDegree := make(map[string]int, len(files))
	dependents := make(map[string][]string, len(files))
	for _, f := range files {
		for dep := range ctx.FileDependencies(f) {
			inDegree[f]++
			dependents[dep] = append(dependents[dep], f)
		}
	}

	queue := make([]string, 0, len(files))
	for _, f := range files {
		if inDegree[f] == 0 {
			queue = append(queue, f)
		}
	}
	var order []string
	visited := make(map[string]bool)
	for len(queue) > 0 {
		f := queue[0]
		queue = queue[1:]
		if visited[f] {
			continue
		}
		visited[f] = true
		order = append(order, f)
		for _, d := range dependents[f] {
			inDegree[d]--
			if inDegree[d] == 0 {
				queue = append(queue, d)
			}
		}
	}
	ctx.TopoOrder = order

	if len(order) == len(files) {
		return
	}
	remaining := make(map[string]bool)
	for _, f := range files {
		if !visited[f] {
			remaining[f] = true
		}
	}
	ctx.Cycles = findCycles(remaining, ctx)
}

// findCycles runs DFS with a recursion stack over the files left
// unvisited by Kahn's pass (the cyclic subgraph), reporting each distinct
// cycle found as the file-path sequence that closes it.
func findCycles(remaining map[string]bool, ctx *ir.GlobalContext) [][]string {
	var cycles [][]string
	visited := make(map[string]bool)
	recStack := make(map[string]bool)
	var stack []string

	var dfs func(f string)
	dfs = func(f string) {
		visited[f] = true
		recStack[f] = true
		stack = append(stack, f)
		for dep := range ctx.FileDependencies(f) {
			if !remaining[dep] {
				continue
			}
			if recStack[dep] {
				cycle := extractCycle(stack, dep)
				cycles = append(cycles, cycle)
				continue
			}
			if !visited[dep] {
				dfs(dep)
			}
		}
		stack = stack[:len(stack)-1]
		recStack[f] = false
	}

	for f := range remaining {
		if !visited[f] {
			dfs(f)
		}
	}
	return cycles
}

func extractCycle(stack []string, closesAt string) []string {
	for i, f := range stack {
		if f == closesAt {
			cycle := append([]string{}, stack[i:]...)
			return append(cycle, closesAt)
		}
	}
	return []string{closesAt}
}
