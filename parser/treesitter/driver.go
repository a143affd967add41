// Package treesitter adapts github.com/smacker/go-tree-sitter grammars to
// the parser.Port contract, generalizing the teacher's per-language
// tree-sitter setup (inspector/java.Inspector, inspector/jsx.Inspector, and
// analyzer.Analyzer) into one driver keyed by a language->grammar map so
// new languages are added by registering a sitter.Language rather than
// writing a new inspector package.
package treesitter

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"

	"github.com/viant/ceindex/ir"
	ceparser "github.com/viant/ceindex/parser"
)

// Driver parses source via tree-sitter grammars and supports true
// incremental reparse by feeding prior edits into sitter.Tree.Edit before
// reparsing, reusing unmodified subtrees (§4.A).
type Driver struct {
	languages map[string]*sitter.Language
}

// New creates a tree-sitter Driver with the standard grammar set wired:
// Java and JavaScript/JSX, matching the teacher's inspector/java and
// inspector/jsx packages.
func New() *Driver {
	return &Driver{
		languages: map[string]*sitter.Language{
			"java":       java.GetLanguage(),
			"javascript": javascript.GetLanguage(),
		},
	}
}

// Register adds or overrides a language->grammar binding, letting callers
// extend the driver with additional tree-sitter grammars (e.g. Python,
// Rust) without modifying this package.
func (d *Driver) Register(language string, lang *sitter.Language) {
	d.languages[language] = lang
}

func (d *Driver) Supports(language string) bool {
	_, ok := d.languages[language]
	return ok
}

func (d *Driver) Parse(ctx context.Context, src ceparser.SourceFile) (*ceparser.Tree, error) {
	lang, ok := d.languages[src.Language]
	if !ok {
		return nil, fmt.Errorf("treesitter: unsupported language %q", src.Language)
	}
	p := sitter.NewParser()
	p.SetLanguage(lang)
	tsTree, err := p.ParseCtx(ctx, nil, src.Content)
	if err != nil {
		return nil, fmt.Errorf("treesitter: failed to parse %s: %w", src.Path, err)
	}
	tree := &ceparser.Tree{
		Language: src.Language,
		Path:     src.Path,
		Source:   src.Content,
		TS:       tsTree,
	}
	collectErrorSpans(tsTree.RootNode(), src.Path, &tree.ErrorSpans)
	tree.HasErrors = len(tree.ErrorSpans) > 0
	return tree, nil
}

// ParseIncremental applies edits to prev's tree so tree-sitter can reuse
// unmodified subtrees, then reparses against the new content (§4.A
// "parse(Source, prev_tree, edit_range) -> Tree reuses unmodified
// subtrees").
func (d *Driver) ParseIncremental(ctx context.Context, src ceparser.SourceFile, prev *ceparser.Tree, edits []ceparser.Edit) (*ceparser.Tree, error) {
	lang, ok := d.languages[src.Language]
	if !ok {
		return nil, fmt.Errorf("treesitter: unsupported language %q", src.Language)
	}
	if prev == nil || prev.TS == nil {
		return d.Parse(ctx, src)
	}
	for _, e := range edits {
		prev.TS.Edit(sitter.EditInput{
			StartIndex:  uint32(e.StartByte),
			OldEndIndex: uint32(e.OldEndByte),
			NewEndIndex: uint32(e.NewEndByte),
		})
	}
	p := sitter.NewParser()
	p.SetLanguage(lang)
	tsTree, err := p.ParseCtx(ctx, prev.TS, src.Content)
	if err != nil {
		return nil, fmt.Errorf("treesitter: failed to reparse %s: %w", src.Path, err)
	}
	tree := &ceparser.Tree{
		Language: src.Language,
		Path:     src.Path,
		Source:   src.Content,
		TS:       tsTree,
	}
	collectErrorSpans(tsTree.RootNode(), src.Path, &tree.ErrorSpans)
	tree.HasErrors = len(tree.ErrorSpans) > 0
	return tree, nil
}

// collectErrorSpans walks the tree recording every ERROR node's span,
// realizing §4.A's "tree with ERROR nodes rather than failing" contract.
func collectErrorSpans(n *sitter.Node, path string, out *[]ir.Span) {
	if n == nil {
		return
	}
	if n.IsError() || n.IsMissing() {
		start := n.StartPoint()
		end := n.EndPoint()
		*out = append(*out, ir.Span{
			FilePath:    path,
			StartLine:   int(start.Row) + 1,
			StartColumn: int(start.Column),
			EndLine:     int(end.Row) + 1,
			EndColumn:   int(end.Column),
			StartByte:   int(n.StartByte()),
			EndByte:     int(n.EndByte()),
		})
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		collectErrorSpans(n.Child(i), path, out)
	}
}
