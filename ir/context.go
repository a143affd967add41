package ir

// GlobalContext is the per-snapshot resolution table built by the
// cross-file resolver (§4.D): FQN -> (Node, file); file -> dependency set;
// topological order over the module graph.
type GlobalContext struct {
	// fqnIndex maps a FQN to the node ids that declare it. Most FQNs map to
	// exactly one id; overloads/multiple-dispatch produce more than one and
	// the caller disambiguates by Signature (§3 "FQNs are unique within a
	// snapshot except where the language admits overloads").
	fqnIndex map[string][]string

	// fileDeps maps a file path to the set of file paths it imports from.
	fileDeps map[string]map[string]bool

	// TopoOrder is the precomputed topological order over the module DAG's
	// acyclic portion (§4.D "Kahn's topological sort").
	TopoOrder []string

	// Cycles lists file-path cycles detected in the module graph (§3
	// "cycles are detected and reported, not silently broken").
	Cycles [][]string
}

// NewGlobalContext creates an empty GlobalContext.
func NewGlobalContext() *GlobalContext {
	return &GlobalContext{
		fqnIndex: make(map[string][]string),
		fileDeps: make(map[string]map[string]bool),
	}
}

// IndexNode records a FQN -> node id binding; O(1) lookup per §4.D.
func (g *GlobalContext) IndexNode(fqn, nodeID string) {
	for _, id := range g.fqnIndex[fqn] {
		if id == nodeID {
			return
		}
	}
	g.fqnIndex[fqn] = append(g.fqnIndex[fqn], nodeID)
}

// ResetIndex clears the FQN lookup table so a caller re-indexing every node
// in a snapshot (as the resolver does on every full or incremental pass)
// starts from empty instead of accumulating duplicate/stale bindings across
// repeated Resolve calls over the same GlobalContext (§4.M incremental
// rebuilds reuse one GlobalContext across many Resolve passes).
func (g *GlobalContext) ResetIndex() {
	g.fqnIndex = make(map[string][]string)
}

// Lookup returns the node ids declared under a FQN, O(1).
func (g *GlobalContext) Lookup(fqn string) []string { return g.fqnIndex[fqn] }

// AddFileDependency records that `file` imports from `dependsOn`.
func (g *GlobalContext) AddFileDependency(file, dependsOn string) {
	if g.fileDeps[file] == nil {
		g.fileDeps[file] = make(map[string]bool)
	}
	g.fileDeps[file][dependsOn] = true
}

// FileDependencies returns the files `file` depends on, O(1).
func (g *GlobalContext) FileDependencies(file string) map[string]bool {
	return g.fileDeps[file]
}

// AllFiles returns every file path that appears as a dependency-graph node,
// i.e. has outgoing or incoming dependencies.
func (g *GlobalContext) AllFiles() []string {
	seen := make(map[string]bool)
	for f, deps := range g.fileDeps {
		seen[f] = true
		for d := range deps {
			seen[d] = true
		}
	}
	out := make([]string, 0, len(seen))
	for f := range seen {
		out = append(out, f)
	}
	return out
}
