// Package build's narrow.go implements §4.E's flow-sensitive type
// narrowing for Go: Go has no isinstance/is-None/truthy triad in the
// dynamic-language sense, but its three idiomatic analogues are a direct
// structural match —
//
//	isinstance(x, T)  -> type assertion `v, ok := x.(T)` in an if statement's init
//	x is None         -> nil check `x == nil` / `x != nil`
//	truthy(x)         -> zero-value truthiness in a bare `if x {`/`if err != nil {`
//
// narrowing records Read occurrences, carrying the refined TypeRef where
// there is one, for mentions inside each if-statement branch. Only if
// statements are examined: type switches are not narrowed, and no state
// is carried across branch merges (TypeState is declared but not used).
package build

import (
	"go/ast"
	"go/token"

	"github.com/viant/ceindex/ir"
)

// TypeState narrows a variable's TypeRef along one control-flow path.
type TypeState struct {
	Narrowed *ir.TypeRef
	NotNil   bool
}

// Narrower re-walks a function body recording narrowed occurrences; it
// runs after the main build walk and adds new Read occurrences to the
// snapshot, but creates no nodes.
type Narrower struct {
	snap    *ir.Snapshot
	relPath string
	fset    *token.FileSet
}

// NewNarrower creates a Narrower over a file's already-built occurrences.
func NewNarrower(snap *ir.Snapshot, relPath string, fset *token.FileSet) *Narrower {
	return &Narrower{snap: snap, relPath: relPath, fset: fset}
}

// NarrowFunc walks body looking for isinstance/is-None/truthy-shaped
// conditions and records a narrowed Read occurrence for the identifier
// inside the branch that establishes it.
func (n *Narrower) NarrowFunc(body *ast.BlockStmt) {
	if body == nil {
		return
	}
	ast.Inspect(body, func(node ast.Node) bool {
		ifStmt, ok := node.(*ast.IfStmt)
		if !ok {
			return true
		}
		n.narrowIf(ifStmt)
		return true
	})
}

func (n *Narrower) narrowIf(s *ast.IfStmt) {
	switch cond := s.Cond.(type) {
	case *ast.BinaryExpr:
		n.narrowNilCheck(cond, s)
	case *ast.Ident:
		// truthy(x): a bare boolean variable used as the condition.
		n.recordNarrow(cond, s.Body, &ir.TypeRef{Kind: ir.TypeKindName, Name: "bool", Resolution: ir.ResolutionBuiltIn}, true)
	case *ast.UnaryExpr:
		if cond.Op == token.NOT {
			if id, ok := cond.X.(*ast.Ident); ok {
				n.recordNarrow(id, s.Else, &ir.TypeRef{Kind: ir.TypeKindName, Name: "bool", Resolution: ir.ResolutionBuiltIn}, true)
			}
		}
	}

	if assign, ok := s.Init.(*ast.AssignStmt); ok {
		n.narrowTypeAssertion(assign, s)
	}
}

// narrowNilCheck matches `x == nil` / `x != nil` and records Read
// occurrences, with no narrowed type, for x in the branch where x is known
// non-nil; the non-nil fact itself is not stored on the occurrence.
func (n *Narrower) narrowNilCheck(cond *ast.BinaryExpr, s *ast.IfStmt) {
	var ident *ast.Ident
	var isNilLit bool
	if id, ok := cond.X.(*ast.Ident); ok {
		if _, ok := cond.Y.(*ast.Ident); ok && isNilIdent(cond.Y) {
			ident = id
			isNilLit = true
		}
	}
	if ident == nil {
		if id, ok := cond.Y.(*ast.Ident); ok && isNilIdent(cond.X) {
			ident = id
			isNilLit = true
		}
	}
	if ident == nil || !isNilLit {
		return
	}
	switch cond.Op {
	case token.EQL: // x == nil: non-nil known in the else branch
		n.recordNilState(ident, s.Else, true)
	case token.NEQ: // x != nil: non-nil known in the then branch
		n.recordNilState(ident, s.Body, true)
	}
}

func isNilIdent(e ast.Expr) bool {
	id, ok := e.(*ast.Ident)
	return ok && id.Name == "nil"
}

// narrowTypeAssertion matches `if v, ok := x.(T); ok { ... }`, recording v's
// narrowed type as T inside the then-branch.
func (n *Narrower) narrowTypeAssertion(assign *ast.AssignStmt, s *ast.IfStmt) {
	if len(assign.Rhs) != 1 {
		return
	}
	ta, ok := assign.Rhs[0].(*ast.TypeAssertExpr)
	if !ok || ta.Type == nil || len(assign.Lhs) == 0 {
		return
	}
	v, ok := assign.Lhs[0].(*ast.Ident)
	if !ok || v.Name == "_" {
		return
	}
	n.recordNarrow(v, s.Body, exprToTypeRef(ta.Type), false)
}

// recordNarrow records a Read occurrence carrying the branch-local narrowed
// type for every mention of id inside branch (§4.E "attaches the narrowed
// type to each Read occurrence when the variable's type is narrower at that
// point than at its declaration"). The occurrence's SymbolID is the bare
// identifier rather than a scope-qualified FQN: narrow.go runs a second,
// scope-free pass over the already-built tree, so it can't re-derive the
// FQN a shadowing-aware walk would bind; callers joining on SymbolID should
// treat these as a same-file, same-name approximation.
func (n *Narrower) recordNarrow(id *ast.Ident, branch ast.Stmt, t *ir.TypeRef, truthy bool) {
	if id == nil || branch == nil {
		return
	}
	ast.Inspect(branch, func(node ast.Node) bool {
		ref, ok := node.(*ast.Ident)
		if ok && ref.Name == id.Name && ref.Pos() != id.Pos() {
			n.snap.AddOccurrence(&ir.Occurrence{
				SymbolID: ref.Name,
				FilePath: n.relPath,
				Span:     n.spanOf(ref.Pos(), ref.End()),
				Roles:    ir.RoleRead,
				Narrowed: t,
			})
		}
		return true
	})
}

func (n *Narrower) spanOf(start, end token.Pos) ir.Span {
	if n.fset == nil {
		return ir.Span{FilePath: n.relPath}
	}
	s := n.fset.Position(start)
	e := n.fset.Position(end)
	return ir.Span{
		FilePath: n.relPath, StartLine: s.Line, EndLine: e.Line,
		StartColumn: s.Column, EndColumn: e.Column,
		StartByte: s.Offset, EndByte: e.Offset,
	}
}

func (n *Narrower) recordNilState(id *ast.Ident, branch ast.Stmt, notNil bool) {
	if id == nil || branch == nil {
		return
	}
	n.recordNarrow(id, branch, nil, notNil)
}
