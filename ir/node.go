// Package ir defines the structural intermediate representation: the typed
// Node/Edge graph plus occurrences, signatures, and unified symbols that the
// build pipeline (package build) produces and the retrieval pipeline
// (package retrieval) queries.
package ir

// Kind identifies the declaration or structural unit a Node represents.
type Kind string

const (
	KindFile      Kind = "File"
	KindModule    Kind = "Module"
	KindClass     Kind = "Class"
	KindInterface Kind = "Interface"
	KindFunction  Kind = "Function"
	KindMethod    Kind = "Method"
	KindField     Kind = "Field"
	KindVariable  Kind = "Variable"
	KindParameter Kind = "Parameter"
	KindImport    Kind = "Import"
	KindEnum      Kind = "Enum"

	// KindExternalFunction and KindUnknown are synthesized by the resolver
	// (§4.D, §4.F) for CALLS/IMPORTS targets that resolve to a package
	// outside the snapshot, or that can't be bound to any node at all.
	KindExternalFunction Kind = "ExternalFunction"
	KindUnknown          Kind = "Unknown"
)

// VarKind tags Variable nodes per §4.B.
type VarKind string

const (
	VarKindParameter VarKind = "parameter"
	VarKindLocal     VarKind = "local"
)

// Span locates a region of source text.
type Span struct {
	FilePath    string
	StartLine   int
	EndLine     int
	StartColumn int
	EndColumn   int
	StartByte   int
	EndByte     int
}

// ExternalFilePath marks occurrences and nodes with no real on-disk file,
// e.g. synthesized ExternalFunction/Unknown nodes (§4.F).
const ExternalFilePath = "<external>"

// Node is a declaration or structural unit. Nodes are immutable after
// construction within a Snapshot (§3 "Nodes are immutable after
// construction within a snapshot").
type Node struct {
	ID           string
	Kind         Kind
	FQN          string
	Name         string
	Span         Span
	ParentID     string // "" when the node has no containing scope
	DeclaredType *TypeRef
	Doc          string
	Attrs        map[string]any
}

// Attr fetches an attribute value, returning ok=false when absent.
func (n *Node) Attr(key string) (any, bool) {
	if n.Attrs == nil {
		return nil, false
	}
	v, ok := n.Attrs[key]
	return v, ok
}

// SetAttr assigns an attribute, allocating the bag lazily.
func (n *Node) SetAttr(key string, value any) {
	if n.Attrs == nil {
		n.Attrs = make(map[string]any)
	}
	n.Attrs[key] = value
}
