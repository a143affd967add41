// Package parser defines the Parser port (§6, §4.A): drive a per-language
// concrete-syntax grammar and expose a uniform Tree. Errors produce a tree
// with ERROR spans rather than failing; downstream components in package
// build tolerate these (§4.A).
package parser

import (
	"context"
	"go/ast"
	"go/token"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/viant/ceindex/ir"
)

// SourceFile is the input to Parse: a file's path, language tag, and bytes.
type SourceFile struct {
	Path     string
	Language string
	Content  []byte
}

// Edit describes a single incremental source edit, mirroring tree-sitter's
// InputEdit so ParseIncremental can reuse unmodified subtrees (§4.A).
type Edit struct {
	StartByte  int
	OldEndByte int
	NewEndByte int
}

// Tree is the uniform parse result. Exactly one of Go/TS is populated,
// selected by Language — the teacher demonstrates both a native go/ast walk
// (inspector/golang) and a tree-sitter walk (analyzer/, inspector/java,
// inspector/jsx) for different languages rather than forcing one grammar
// technology to cover every language, which this type preserves.
type Tree struct {
	Language string
	Path     string
	Source   []byte

	Go      *ast.File
	FileSet *token.FileSet // set alongside Go

	TS *sitter.Tree // set for non-Go languages

	// HasErrors and ErrorSpans record parse recovery per §4.A: the tree is
	// still returned, with ERROR nodes noted here instead of failing outright.
	HasErrors  bool
	ErrorSpans []ir.Span
}

// Port is the parser contract consumed by package build (§6 "Parser port").
type Port interface {
	// Supports reports whether this port can parse the given language tag.
	Supports(language string) bool
	// Parse parses a SourceFile into a Tree.
	Parse(ctx context.Context, src SourceFile) (*Tree, error)
	// ParseIncremental reuses prev's unmodified subtrees where edits permit.
	ParseIncremental(ctx context.Context, src SourceFile, prev *Tree, edits []Edit) (*Tree, error)
}
