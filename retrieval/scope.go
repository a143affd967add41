// scope.go implements §4.I: narrowing a query to a subset of the
// snapshot's chunks before the multi-index fan-out runs, avoiding a
// full-repo scan on every query.
package retrieval

import (
	"sort"
	"strings"

	"github.com/viant/ceindex/ceerrors"
	"github.com/viant/ceindex/index"
	"github.com/viant/ceindex/ir"
)

// ScopeType distinguishes an unrestricted search from one narrowed to a
// focused node subset (§4.I "scope_type ∈ {FullRepo, Focused}").
type ScopeType string

const (
	ScopeFullRepo ScopeType = "FullRepo"
	ScopeFocused  ScopeType = "Focused"
)

// DefaultTopK and DefaultChunkCap mirror §6's scope defaults (top-K 20,
// chunk cap 500); package config overrides both via SelectScopeWithLimits.
const (
	DefaultTopK     = 20
	DefaultChunkCap = 500
)

// Scope is the selector's output: a scope type plus the focus node ids and
// chunk ids it expanded to (§4.I "ScopeResult").
type Scope struct {
	Type       ScopeType
	FocusNodes []string
	ChunkIDs   map[string]bool
}

// SelectScope selects a Scope using the built-in defaults (top-K 20, chunk
// cap 500). chunks supplies the node->chunk and importance data the
// fallback path and chunk-id expansion need.
func SelectScope(snap *ir.Snapshot, classification Classification, chunks index.Chunks) Scope {
	return SelectScopeWithLimits(snap, classification, chunks, DefaultTopK, DefaultChunkCap)
}

// SelectScopeWithLimits is SelectScope parameterized over config's top-K
// and chunk-cap (§6 "Scope: default top-K 20, chunk cap 500").
func SelectScopeWithLimits(snap *ir.Snapshot, classification Classification, chunks index.Chunks, topK, chunkCap int) Scope {
	if snap == nil {
		return Scope{Type: ScopeFullRepo}
	}

	nodesByChunk, importance := chunkIndex(chunks)

	focus := selectFocusNodes(snap, classification, importance, topK)
	if len(focus) == 0 {
		// No hint resolved and no importance-ranked fallback produced
		// anything (e.g. an empty repo) — default to the full repo (§4.I
		// step 2's implicit fallback, §7 ScopeStale-adjacent behavior).
		return Scope{Type: ScopeFullRepo}
	}

	expanded := expandContains(snap, focus)
	chunkIDs := collectChunkIDs(expanded, nodesByChunk, importance, chunkCap)

	return Scope{Type: ScopeFocused, FocusNodes: expanded, ChunkIDs: chunkIDs}
}

// chunkIndex builds node id -> chunk ids and node id -> importance lookups
// from the chunk set SelectScope was handed.
func chunkIndex(chunks index.Chunks) (map[string][]string, map[string]float64) {
	byNode := make(map[string][]string)
	importance := make(map[string]float64)
	for _, c := range chunks {
		if c.NodeID == "" {
			continue
		}
		byNode[c.NodeID] = append(byNode[c.NodeID], c.ID)
		if c.ImportanceScore > importance[c.NodeID] {
			importance[c.NodeID] = c.ImportanceScore
		}
	}
	return byNode, importance
}

// selectFocusNodes implements §4.I step 2's presence-ordered hint
// resolution, falling back to intent-driven defaults when no hint
// resolves to anything in the snapshot.
func selectFocusNodes(snap *ir.Snapshot, c Classification, importance map[string]float64, topK int) []string {
	if ids := matchSymbolNames(snap, c.SymbolNames); len(ids) > 0 {
		return ids
	}
	if ids := matchFilePaths(snap, c.FilePaths); len(ids) > 0 {
		return ids
	}
	if ids := matchModulePaths(snap, c.ModulePaths); len(ids) > 0 {
		return ids
	}

	switch c.Intent {
	case IntentBalanced:
		return entryPointNodes(snap)
	default: // Symbol, Code, Flow, Concept all fall back to importance top-K
		return topKByImportance(snap, importance, topK)
	}
}

// matchSymbolNames resolves explicit symbol_names hints: exact FQN/name
// matches first, then FQN-substring matches (§4.I "exact then
// FQN-substring matches").
func matchSymbolNames(snap *ir.Snapshot, names []string) []string {
	if len(names) == 0 {
		return nil
	}
	var exact, substr []string
	seen := map[string]bool{}
	for _, n := range snap.Nodes() {
		for _, name := range names {
			if n.Name == name || n.FQN == name {
				if !seen[n.ID] {
					seen[n.ID] = true
					exact = append(exact, n.ID)
				}
			} else if strings.Contains(n.FQN, name) {
				if !seen[n.ID] {
					seen[n.ID] = true
					substr = append(substr, n.ID)
				}
			}
		}
	}
	sort.Strings(exact)
	sort.Strings(substr)
	if len(exact) > 0 {
		return exact
	}
	return substr
}

// matchFilePaths resolves explicit file_paths hints to every node
// declared in a matching file (§4.I "nodes at those paths").
func matchFilePaths(snap *ir.Snapshot, paths []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, p := range paths {
		for _, id := range snap.NodesInFile(p) {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
		// the hint may be a suffix/substring rather than the exact
		// repo-relative path snap indexed nodes under.
		for _, n := range snap.Nodes() {
			if n.Span.FilePath != "" && strings.Contains(n.Span.FilePath, p) && !seen[n.ID] {
				seen[n.ID] = true
				out = append(out, n.ID)
			}
		}
	}
	sort.Strings(out)
	return out
}

// matchModulePaths resolves explicit module_paths hints to Module-kind
// nodes whose FQN or file path matches (§4.I "module-kind nodes with
// matching paths or FQNs").
func matchModulePaths(snap *ir.Snapshot, modules []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, n := range snap.Nodes() {
		if n.Kind != ir.KindModule && n.Kind != ir.KindFile {
			continue
		}
		for _, m := range modules {
			if n.FQN == m || strings.Contains(n.Span.FilePath, m) {
				if !seen[n.ID] {
					seen[n.ID] = true
					out = append(out, n.ID)
				}
			}
		}
	}
	sort.Strings(out)
	return out
}

// entryPointNodes approximates §4.I's "entry-point and depth-≤2 nodes"
// fallback for the Balanced/Overview intent: top-level declarations (no
// parent, or one containment hop from a File/Module node).
func entryPointNodes(snap *ir.Snapshot) []string {
	var out []string
	for _, n := range snap.Nodes() {
		depth := containmentDepth(snap, n)
		if depth <= 2 {
			out = append(out, n.ID)
		}
	}
	sort.Strings(out)
	return out
}

func containmentDepth(snap *ir.Snapshot, n *ir.Node) int {
	depth := 0
	cur := n
	for cur.ParentID != "" && depth < 64 {
		parent, ok := snap.Node(cur.ParentID)
		if !ok {
			break
		}
		cur = parent
		depth++
	}
	return depth
}

// topKByImportance implements the Symbol/Code/Flow/Concept default
// fallback: the topK highest-importance nodes (§4.I "top-K by
// importance").
func topKByImportance(snap *ir.Snapshot, importance map[string]float64, topK int) []string {
	type scored struct {
		id    string
		score float64
	}
	all := make([]scored, 0, len(snap.Nodes()))
	for id := range snap.Nodes() {
		all = append(all, scored{id: id, score: importance[id]})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].score != all[j].score {
			return all[i].score > all[j].score
		}
		return all[i].id < all[j].id
	})
	if topK > 0 && len(all) > topK {
		all = all[:topK]
	}
	out := make([]string, len(all))
	for i, s := range all {
		out[i] = s.id
	}
	return out
}

// expandContains walks each focus node's CONTAINS subtree, returning the
// union of focus nodes and every node they transitively contain (§4.I
// step 3).
func expandContains(snap *ir.Snapshot, focus []string) []string {
	seen := make(map[string]bool, len(focus))
	queue := append([]string(nil), focus...)
	for _, id := range focus {
		seen[id] = true
	}
	var out []string
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		out = append(out, id)
		for _, e := range snap.EdgesFrom(id, ir.EdgeContains) {
			if !seen[e.TargetID] {
				seen[e.TargetID] = true
				queue = append(queue, e.TargetID)
			}
		}
	}
	sort.Strings(out)
	return out
}

// collectChunkIDs gathers the chunk ids associated with the expanded node
// set, truncating to cap by importance when oversized (§4.I step 4).
func collectChunkIDs(nodeIDs []string, nodesByChunk map[string][]string, importance map[string]float64, cap_ int) map[string]bool {
	type entry struct {
		id    string
		score float64
	}
	var all []entry
	seen := map[string]bool{}
	for _, nid := range nodeIDs {
		for _, cid := range nodesByChunk[nid] {
			if seen[cid] {
				continue
			}
			seen[cid] = true
			all = append(all, entry{id: cid, score: importance[nid]})
		}
	}
	if cap_ > 0 && len(all) > cap_ {
		sort.Slice(all, func(i, j int) bool {
			if all[i].score != all[j].score {
				return all[i].score > all[j].score
			}
			return all[i].id < all[j].id
		})
		all = all[:cap_]
	}
	out := make(map[string]bool, len(all))
	for _, e := range all {
		out[e.id] = true
	}
	return out
}

// Validate reports an error if scope names focus nodes that no longer
// exist in snap, which happens when an incremental rebuild (§4.M) removed
// the file a prior query's hint pinned to — the caller should re-derive
// the scope from a fresh Classification rather than silently searching
// nothing (§7 ScopeStale).
func (s Scope) Validate(snap *ir.Snapshot) error {
	if s.Type == ScopeFullRepo {
		return nil
	}
	for _, id := range s.FocusNodes {
		if _, ok := snap.Node(id); !ok {
			return ceerrors.ScopeStale("focus node no longer present: " + id)
		}
	}
	return nil
}

// Includes reports whether a candidate chunk id falls inside the scope;
// a FullRepo scope includes everything.
func (s Scope) Includes(chunkID string) bool {
	if s.Type == ScopeFullRepo || len(s.ChunkIDs) == 0 {
		return true
	}
	return s.ChunkIDs[chunkID]
}
