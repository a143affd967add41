// Package build implements the structural IR builder (§4.B), occurrence
// generator (§4.C), cross-file resolver (§4.D), type/narrowing analyzer
// (§4.E), and data-flow/call-graph construction (§4.F). It walks a
// parser.Tree once with an explicit scope stack, generalizing the
// teacher's per-language inspector packages (inspector/golang walks
// go/ast with an implicit recursive scope; analyzer.Analyzer walks
// tree-sitter nodes with an explicit linage.Scope) into a single builder
// that emits ir.Node/ir.Edge/ir.Occurrence/ir.Signature.
package build

import (
	"fmt"
	"path"
	"strings"

	"github.com/viant/ceindex/ir"
	"github.com/viant/ceindex/parser"
)

// Config holds builder options, generalizing the teacher's graph.Config /
// info.Config (IncludeUnexported, SkipTests, RecursivePackages).
type Config struct {
	IncludeUnexported bool
	SkipTests         bool
}

// DefaultConfig mirrors the teacher's info.DefaultConfig defaults.
func DefaultConfig() *Config {
	return &Config{IncludeUnexported: true, SkipTests: false}
}

// Builder constructs per-file IR contributions and merges them into a
// shared Snapshot.
type Builder struct {
	RepoID string
	Config *Config
}

// NewBuilder creates a Builder for repoID using cfg (DefaultConfig() when nil).
func NewBuilder(repoID string, cfg *Config) *Builder {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Builder{RepoID: repoID, Config: cfg}
}

// ModuleFQNForPath derives a module FQN from a file's repo-relative path by
// stripping the root prefix (the caller already passes a root-relative
// path) and replacing separators with dots (§4.B "Scope and FQN").
// Package init files (conventionally index/__init__-style entry points)
// contribute their parent directory's FQN.
func ModuleFQNForPath(relPath string) string {
	dir := path.Dir(filepathToSlash(relPath))
	base := path.Base(filepathToSlash(relPath))
	if isPackageInitFile(base) {
		// init files contribute the parent directory's FQN, not their own.
		dir = path.Dir(dir)
	}
	if dir == "." || dir == "/" {
		return ""
	}
	return strings.ReplaceAll(strings.Trim(dir, "/"), "/", ".")
}

func isPackageInitFile(base string) bool {
	switch base {
	case "__init__.py", "index.js", "index.ts", "mod.rs":
		return true
	default:
		return false
	}
}

func filepathToSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

// BuildResult holds everything one file contributes, returned so the
// caller merges it into a shared Snapshot and GlobalContext (§4.D runs
// after all files in a snapshot are built).
type BuildResult struct {
	RelPath     string
	ModuleFQN   string
	Imports     []ImportRef // raw imports awaiting cross-file resolution
	Provisional []ProvisionalCall
	Inherits    []ProvisionalRef    // INHERITS edges awaiting a cross-file base-type lookup
	Unbound     []UnboundMethod     // methods whose receiver type wasn't declared in this file
}

// ProvisionalRef is an edge whose target is known only by name, awaiting
// resolution against the package-wide symbol table (§4.D).
type ProvisionalRef struct {
	EdgeID   string
	Kind     ir.EdgeKind
	TypeName string
}

// UnboundMethod is a Method node built against a receiver type that this
// file didn't itself declare (common in Go, where methods live in a
// different file of the same package than their receiver struct). The
// resolver binds MethodNodeID's CONTAINS edge once the owning type is found
// anywhere in the package (§4.D).
type UnboundMethod struct {
	MethodNodeID string
	ReceiverName string
}

// ImportRef is an unresolved import recorded by BuildFile for the resolver.
type ImportRef struct {
	EdgeID     string
	ImportPath string
	Alias      string
}

// ProvisionalCall is a CALLS edge whose callee could not be bound within
// the file alone (§4.B "emits provisional CALLS edges with a placeholder
// target to be rewritten by the resolver").
type ProvisionalCall struct {
	EdgeID       string
	CalleeName   string // bare identifier or qualified ident.Name
	ImportAlias  string // non-empty when CalleeName was qualified by an import alias
}

// BuildFile parses and walks a single file's tree, adding Nodes/Edges/
// Occurrences/Signatures to snap, and returns the cross-file work the
// resolver (§4.D) still needs to do.
func (b *Builder) BuildFile(snap *ir.Snapshot, tree *parser.Tree, relPath string) (*BuildResult, error) {
	switch {
	case tree.Go != nil:
		return b.buildGoFile(snap, tree, relPath)
	case tree.TS != nil:
		return b.buildTreeSitterFile(snap, tree, relPath)
	default:
		return nil, fmt.Errorf("build: tree for %s has neither a Go nor tree-sitter backing", relPath)
	}
}
