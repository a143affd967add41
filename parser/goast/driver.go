// Package goast adapts Go's standard library parser to the parser.Port
// contract, generalizing the teacher's inspector/golang.Inspector parse
// step (go/parser.ParseFile with parser.ParseComments) behind the port
// interface.
package goast

import (
	"context"
	"fmt"
	goparser "go/parser"
	"go/token"

	"github.com/viant/ceindex/ir"
	ceparser "github.com/viant/ceindex/parser"
)

// Driver parses Go source via go/parser. It has no incremental reuse
// strategy (go/parser always reparses a file in full) — ParseIncremental
// simply reparses, which is correct but not work-saving; true incremental
// reuse is left to the tree-sitter Driver for other languages (§SPEC_FULL
// "DOMAIN STACK").
type Driver struct{}

// New creates a Go AST driver.
func New() *Driver { return &Driver{} }

func (d *Driver) Supports(language string) bool { return language == "go" }

func (d *Driver) Parse(ctx context.Context, src ceparser.SourceFile) (*ceparser.Tree, error) {
	fset := token.NewFileSet()
	path := src.Path
	if path == "" {
		path = "source.go"
	}
	astFile, err := goparser.ParseFile(fset, path, src.Content, goparser.ParseComments)
	tree := &ceparser.Tree{
		Language: "go",
		Path:     src.Path,
		Source:   src.Content,
		Go:       astFile,
		FileSet:  fset,
	}
	if err != nil {
		// go/parser returns a partial *ast.File alongside scanner.ErrorList
		// on recoverable syntax errors; surface that as an ERROR span per
		// §4.A rather than failing the whole file.
		tree.HasErrors = true
		tree.ErrorSpans = append(tree.ErrorSpans, ir.Span{FilePath: src.Path})
		if astFile == nil || astFile.Name == nil || astFile.Name.Name == "" {
			return tree, fmt.Errorf("goast: failed to parse %s: %w", src.Path, err)
		}
	}
	return tree, nil
}

func (d *Driver) ParseIncremental(ctx context.Context, src ceparser.SourceFile, prev *ceparser.Tree, edits []ceparser.Edit) (*ceparser.Tree, error) {
	return d.Parse(ctx, src)
}
