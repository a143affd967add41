package ir

import "sort"

// Snapshot is the unit of versioning: an immutable (repo_id, snapshot_id)
// IR + index set (§3). Incremental updates (incremental.OverlayIRBuilder)
// modify a Snapshot in place and keep its snapshot id; Nodes/Edges whose
// ids are unchanged stay as they were (§4.M).
type Snapshot struct {
	RepoID     string
	SnapshotID string
	Local      bool // marks an overlay snapshot tagged "local" (§4.M); nothing in this module sets it

	nodes      map[string]*Node
	edges      []*Edge
	occurrences []*Occurrence
	occByFile  map[string][]int // file path -> indices into occurrences
	occBySym   map[string][]int // symbol id -> indices into occurrences
	signatures map[string]*Signature // node id -> signature

	nodesByFile map[string][]string // file path -> node ids declared in that file, in source order
}

// NewSnapshot creates an empty, mutable-during-build Snapshot.
func NewSnapshot(repoID, snapshotID string) *Snapshot {
	return &Snapshot{
		RepoID:      repoID,
		SnapshotID:  snapshotID,
		nodes:       make(map[string]*Node),
		occByFile:   make(map[string][]int),
		occBySym:    make(map[string][]int),
		signatures:  make(map[string]*Signature),
		nodesByFile: make(map[string][]string),
	}
}

// AddNode inserts a Node, indexing it by its declaring file.
func (s *Snapshot) AddNode(n *Node) {
	s.nodes[n.ID] = n
	if n.Span.FilePath != "" {
		s.nodesByFile[n.Span.FilePath] = append(s.nodesByFile[n.Span.FilePath], n.ID)
	}
}

// Node looks up a node by id.
func (s *Snapshot) Node(id string) (*Node, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

// Nodes returns all nodes; callers must not mutate the returned map.
func (s *Snapshot) Nodes() map[string]*Node { return s.nodes }

// NodesInFile returns node ids declared in the given file, in source order.
func (s *Snapshot) NodesInFile(path string) []string { return s.nodesByFile[path] }

// AddEdge appends an edge.
func (s *Snapshot) AddEdge(e *Edge) { s.edges = append(s.edges, e) }

// Edges returns all edges.
func (s *Snapshot) Edges() []*Edge { return s.edges }

// EdgesFrom returns edges whose SourceID matches, optionally filtered by kind.
func (s *Snapshot) EdgesFrom(sourceID string, kind EdgeKind) []*Edge {
	var out []*Edge
	for _, e := range s.edges {
		if e.SourceID == sourceID && (kind == "" || e.Kind == kind) {
			out = append(out, e)
		}
	}
	return out
}

// EdgesTo returns edges whose TargetID matches, optionally filtered by kind.
func (s *Snapshot) EdgesTo(targetID string, kind EdgeKind) []*Edge {
	var out []*Edge
	for _, e := range s.edges {
		if e.TargetID == targetID && (kind == "" || e.Kind == kind) {
			out = append(out, e)
		}
	}
	return out
}

// AddOccurrence appends an occurrence and maintains the file/symbol indexes.
func (s *Snapshot) AddOccurrence(o *Occurrence) {
	idx := len(s.occurrences)
	s.occurrences = append(s.occurrences, o)
	if !o.IsExternal() {
		s.occByFile[o.FilePath] = append(s.occByFile[o.FilePath], idx)
	}
	s.occBySym[o.SymbolID] = append(s.occBySym[o.SymbolID], idx)
}

// OccurrencesInFile returns occurrences for a real on-disk file path.
func (s *Snapshot) OccurrencesInFile(path string) []*Occurrence {
	idxs := s.occByFile[path]
	out := make([]*Occurrence, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, s.occurrences[i])
	}
	return out
}

// OccurrencesForSymbol supports find-references (§4.C).
func (s *Snapshot) OccurrencesForSymbol(symbolID string) []*Occurrence {
	idxs := s.occBySym[symbolID]
	out := make([]*Occurrence, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, s.occurrences[i])
	}
	return out
}

// DefinitionOccurrence returns the first Definition-role occurrence for a
// symbol; it does not check that this occurrence is the only one.
func (s *Snapshot) DefinitionOccurrence(symbolID string) (*Occurrence, bool) {
	for _, o := range s.OccurrencesForSymbol(symbolID) {
		if o.Roles.Has(RoleDefinition) {
			return o, true
		}
	}
	return nil, false
}

// SetSignature attaches a Signature to a callable Node.
func (s *Snapshot) SetSignature(nodeID string, sig *Signature) { s.signatures[nodeID] = sig }

// Signature fetches a node's Signature, if any.
func (s *Snapshot) Signature(nodeID string) (*Signature, bool) {
	sig, ok := s.signatures[nodeID]
	return sig, ok
}

// RemoveFile purges every node, edge, occurrence, and signature previously
// contributed by path, so an incremental rebuild (§4.M) can re-add that
// file's fresh contribution without leaving stale entries from the old
// version behind.
func (s *Snapshot) RemoveFile(path string) {
	stale := s.nodesByFile[path]
	if len(stale) == 0 {
		delete(s.occByFile, path)
		return
	}
	staleSet := make(map[string]bool, len(stale))
	for _, id := range stale {
		staleSet[id] = true
		delete(s.nodes, id)
		delete(s.signatures, id)
	}
	delete(s.nodesByFile, path)

	keptEdges := s.edges[:0:0]
	for _, e := range s.edges {
		if staleSet[e.SourceID] || staleSet[e.TargetID] {
			continue
		}
		keptEdges = append(keptEdges, e)
	}
	s.edges = keptEdges

	keptOcc := s.occurrences[:0:0]
	newOccByFile := make(map[string][]int)
	newOccBySym := make(map[string][]int)
	for _, o := range s.occurrences {
		if o.FilePath == path {
			continue
		}
		idx := len(keptOcc)
		keptOcc = append(keptOcc, o)
		if !o.IsExternal() {
			newOccByFile[o.FilePath] = append(newOccByFile[o.FilePath], idx)
		}
		newOccBySym[o.SymbolID] = append(newOccBySym[o.SymbolID], idx)
	}
	s.occurrences = keptOcc
	s.occByFile = newOccByFile
	s.occBySym = newOccBySym
}

// SortedNodeIDs returns every node id in deterministic sorted order, used to
// make snapshot diffing and test assertions order-independent.
func (s *Snapshot) SortedNodeIDs() []string {
	ids := make([]string, 0, len(s.nodes))
	for id := range s.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
