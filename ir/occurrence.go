package ir

// Role is a bitset tagging the nature of a textual mention of a symbol.
type Role uint8

const (
	RoleDefinition Role = 1 << iota
	RoleReference
	RoleImport
	RoleRead
	RoleWrite
	RoleCall
)

func (r Role) Has(role Role) bool { return r&role != 0 }

// Occurrence is a textual mention of a symbol in source (§3). Invariant:
// every Node with a name has exactly one Occurrence with RoleDefinition.
type Occurrence struct {
	SymbolID string // canonical FQN
	FilePath string
	Span     Span
	Roles    Role

	// Narrowed is the branch-local refined type the type/narrowing
	// analyzer (§4.E) attaches to a Read occurrence when the variable's
	// type is narrower at this point than at its declaration. Nil for
	// every occurrence the narrowing pass doesn't touch.
	Narrowed *TypeRef
}

// IsExternal reports whether this occurrence has no real on-disk location,
// i.e. it refers to an unresolved import (§4.C "External symbols... are
// excluded from file-scoped queries").
func (o *Occurrence) IsExternal() bool {
	return o.FilePath == "" || o.FilePath == ExternalFilePath
}
