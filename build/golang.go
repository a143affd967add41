package build

import (
	"go/ast"
	"go/token"
	"strconv"
	"strings"

	"github.com/viant/ceindex/ir"
	"github.com/viant/ceindex/parser"
)

// buildGoFile walks a go/ast.File in source order with an explicit scope
// stack (module -> class -> function -> block), generalizing the teacher's
// inspector/golang package (which recovers the same declarations via an
// implicit recursive walk over ast.Decls/ast.Fields/ast.Stmt) into the
// shared build.Scope/ir.Snapshot model (§4.B).
func (b *Builder) buildGoFile(snap *ir.Snapshot, tree *parser.Tree, relPath string) (*BuildResult, error) {
	fset := tree.FileSet
	astFile := tree.Go
	moduleFQN := ModuleFQNForPath(relPath)

	result := &BuildResult{RelPath: relPath, ModuleFQN: moduleFQN}

	moduleNode := &ir.Node{
		ID:   ir.NodeID(b.RepoID, ir.KindModule, "", moduleFQN),
		Kind: ir.KindModule,
		FQN:  moduleFQN,
		Name: moduleFQN,
	}
	snap.AddNode(moduleNode)

	fileNode := &ir.Node{
		ID:   ir.NodeID(b.RepoID, ir.KindFile, relPath, moduleFQN+"#"+relPath),
		Kind: ir.KindFile,
		FQN:  moduleFQN + "#" + relPath,
		Name: relPath,
		Span: fileSpan(fset, astFile, relPath),
	}
	snap.AddNode(fileNode)
	snap.AddEdge(&ir.Edge{ID: ir.EdgeID(ir.EdgeContains, moduleNode.ID, fileNode.ID, 0), Kind: ir.EdgeContains, SourceID: moduleNode.ID, TargetID: fileNode.ID})
	snap.AddOccurrence(&ir.Occurrence{SymbolID: fileNode.FQN, FilePath: relPath, Span: fileNode.Span, Roles: ir.RoleDefinition})

	moduleScope := &Scope{Kind: "module", FQN: moduleFQN, NodeID: moduleNode.ID, Symbols: make(map[string]*ir.Node)}
	fileScope := moduleScope.Child("file", "", fileNode.ID)
	fileScope.FQN = moduleFQN

	w := &goWalker{
		b:       b,
		snap:    snap,
		fset:    fset,
		relPath: relPath,
		result:  result,
		aliases: make(map[string]string),
	}

	w.buildImports(astFile, fileScope)

	callIdx := 0
	for _, decl := range astFile.Decls {
		switch d := decl.(type) {
		case *ast.GenDecl:
			w.buildGenDecl(d, fileScope)
		case *ast.FuncDecl:
			w.buildFuncDecl(d, fileScope, &callIdx)
		}
	}

	return result, nil
}

type goWalker struct {
	b       *Builder
	snap    *ir.Snapshot
	fset    *token.FileSet
	relPath string
	result  *BuildResult
	aliases map[string]string // import alias/name -> import path, for qualified call resolution
}

func fileSpan(fset *token.FileSet, f *ast.File, relPath string) ir.Span {
	if f == nil {
		return ir.Span{FilePath: relPath}
	}
	start := fset.Position(f.Pos())
	end := fset.Position(f.End())
	return ir.Span{
		FilePath: relPath, StartLine: start.Line, EndLine: end.Line,
		StartColumn: start.Column, EndColumn: end.Column,
		StartByte: start.Offset, EndByte: end.Offset,
	}
}

func (w *goWalker) spanOf(start, end token.Pos) ir.Span {
	s := w.fset.Position(start)
	e := w.fset.Position(end)
	return ir.Span{
		FilePath: w.relPath, StartLine: s.Line, EndLine: e.Line,
		StartColumn: s.Column, EndColumn: e.Column,
		StartByte: s.Offset, EndByte: e.Offset,
	}
}

func (w *goWalker) addNode(kind ir.Kind, fqn, name string, span ir.Span, parentID string) *ir.Node {
	n := &ir.Node{ID: ir.NodeID(w.b.RepoID, kind, w.relPath, fqn), Kind: kind, FQN: fqn, Name: name, Span: span, ParentID: parentID}
	w.snap.AddNode(n)
	return n
}

func (w *goWalker) contains(parentID, childID string, occ int) {
	w.snap.AddEdge(&ir.Edge{ID: ir.EdgeID(ir.EdgeContains, parentID, childID, occ), Kind: ir.EdgeContains, SourceID: parentID, TargetID: childID})
}

func (w *goWalker) define(fqn string, span ir.Span, extraRoles ir.Role) {
	w.snap.AddOccurrence(&ir.Occurrence{SymbolID: fqn, FilePath: w.relPath, Span: span, Roles: ir.RoleDefinition | extraRoles})
}

func (w *goWalker) reference(fqn string, span ir.Span, roles ir.Role) {
	w.snap.AddOccurrence(&ir.Occurrence{SymbolID: fqn, FilePath: w.relPath, Span: span, Roles: roles})
}

// buildImports emits an Import node and a provisional IMPORTS edge per
// ast.ImportSpec, deferring path resolution to the cross-file resolver
// (§4.D), matching the teacher's inspector/golang/imports.go extraction.
func (w *goWalker) buildImports(f *ast.File, fileScope *Scope) {
	for i, spec := range f.Imports {
		importPath := strings.Trim(spec.Path.Value, `"`)
		alias := ""
		if spec.Name != nil {
			alias = spec.Name.Name
		}
		name := alias
		if name == "" {
			parts := strings.Split(importPath, "/")
			name = parts[len(parts)-1]
		}
		if name != "_" && name != "." {
			w.aliases[name] = importPath
		}
		fqn := fileScope.FQN + "#" + w.relPath + ".import." + strconv.Itoa(i) + "." + name
		span := w.spanOf(spec.Pos(), spec.End())
		node := w.addNode(ir.KindImport, fqn, name, span, fileScope.NodeID)
		node.SetAttr("importPath", importPath)
		w.contains(fileScope.NodeID, node.ID, i)
		w.define(fqn, span, ir.RoleImport)

		edge := &ir.Edge{ID: ir.EdgeID(ir.EdgeImports, fileScope.NodeID, "", i), Kind: ir.EdgeImports, SourceID: fileScope.NodeID, External: true}
		edge.SetAttr("importPath", importPath)
		edge.SetAttr("alias", alias)
		w.snap.AddEdge(edge)
		w.result.Imports = append(w.result.Imports, ImportRef{EdgeID: edge.ID, ImportPath: importPath, Alias: name})
	}
}

// buildGenDecl handles top-level const/var/type declarations.
func (w *goWalker) buildGenDecl(d *ast.GenDecl, fileScope *Scope) {
	switch d.Tok {
	case token.CONST, token.VAR:
		for si, spec := range d.Specs {
			vs, ok := spec.(*ast.ValueSpec)
			if !ok {
				continue
			}
			var typeRef *ir.TypeRef
			if vs.Type != nil {
				typeRef = exprToTypeRef(vs.Type)
			}
			for ni, name := range vs.Names {
				if name.Name == "_" {
					continue
				}
				fqn := joinFQN(fileScope.FQN, name.Name)
				span := w.spanOf(name.Pos(), name.End())
				node := w.addNode(ir.KindVariable, fqn, name.Name, span, fileScope.NodeID)
				node.DeclaredType = typeRef
				if d.Tok == token.CONST {
					node.SetAttr("const", true)
				}
				w.contains(fileScope.NodeID, node.ID, si*100+ni)
				w.define(fqn, span, 0)
				fileScope.Declare(name.Name, node)
			}
		}
	case token.TYPE:
		for si, spec := range d.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			w.buildTypeSpec(ts, fileScope, si)
		}
	}
}

func joinFQN(scopeFQN, name string) string {
	if scopeFQN == "" {
		return name
	}
	return scopeFQN + "." + name
}

func (w *goWalker) buildTypeSpec(ts *ast.TypeSpec, fileScope *Scope, declIdx int) {
	name := ts.Name.Name
	fqn := joinFQN(fileScope.FQN, name)
	span := w.spanOf(ts.Pos(), ts.End())

	switch t := ts.Type.(type) {
	case *ast.StructType:
		node := w.addNode(ir.KindClass, fqn, name, span, fileScope.NodeID)
		w.contains(fileScope.NodeID, node.ID, declIdx)
		w.define(fqn, span, 0)
		fileScope.Declare(name, node)
		classScope := fileScope.Child("class", name, node.ID)

		fieldIdx := 0
		if t.Fields != nil {
			for _, field := range t.Fields.List {
				typeRef := exprToTypeRef(field.Type)
				if len(field.Names) == 0 {
					embName := exprToString(field.Type)
					baseName := strings.TrimPrefix(embName, "*")
					fieldFQN := joinFQN(fqn, lastSegment(baseName))
					fspan := w.spanOf(field.Pos(), field.End())
					fnode := w.addNode(ir.KindField, fieldFQN, lastSegment(baseName), fspan, node.ID)
					fnode.DeclaredType = typeRef
					fnode.SetAttr("embedded", true)
					w.contains(node.ID, fnode.ID, fieldIdx)
					w.define(fieldFQN, fspan, 0)
					classScope.Declare(lastSegment(baseName), fnode)
					fieldIdx++

					edge := &ir.Edge{ID: ir.EdgeID(ir.EdgeInherits, node.ID, "", fieldIdx), Kind: ir.EdgeInherits, SourceID: node.ID, External: true}
					w.snap.AddEdge(edge)
					w.result.Inherits = append(w.result.Inherits, ProvisionalRef{EdgeID: edge.ID, Kind: ir.EdgeInherits, TypeName: baseName})
					continue
				}
				for _, fname := range field.Names {
					fieldFQN := joinFQN(fqn, fname.Name)
					fspan := w.spanOf(fname.Pos(), fname.End())
					fnode := w.addNode(ir.KindField, fieldFQN, fname.Name, fspan, node.ID)
					fnode.DeclaredType = typeRef
					w.contains(node.ID, fnode.ID, fieldIdx)
					w.define(fieldFQN, fspan, 0)
					classScope.Declare(fname.Name, fnode)
					fieldIdx++
				}
			}
		}

	case *ast.InterfaceType:
		node := w.addNode(ir.KindInterface, fqn, name, span, fileScope.NodeID)
		w.contains(fileScope.NodeID, node.ID, declIdx)
		w.define(fqn, span, 0)
		fileScope.Declare(name, node)

		methodIdx := 0
		if t.Methods != nil {
			for _, m := range t.Methods.List {
				if len(m.Names) == 0 {
					embName := exprToString(m.Type)
					edge := &ir.Edge{ID: ir.EdgeID(ir.EdgeInherits, node.ID, "", methodIdx), Kind: ir.EdgeInherits, SourceID: node.ID, External: true}
					w.snap.AddEdge(edge)
					w.result.Inherits = append(w.result.Inherits, ProvisionalRef{EdgeID: edge.ID, Kind: ir.EdgeInherits, TypeName: embName})
					methodIdx++
					continue
				}
				ft, _ := m.Type.(*ast.FuncType)
				for _, mname := range m.Names {
					methodFQN := joinFQN(fqn, mname.Name)
					mspan := w.spanOf(m.Pos(), m.End())
					mnode := w.addNode(ir.KindMethod, methodFQN, mname.Name, mspan, node.ID)
					w.contains(node.ID, mnode.ID, methodIdx)
					w.define(methodFQN, mspan, 0)
					if ft != nil {
						sig := buildSignature(ft, ir.CallableMethod)
						sig.Canonical = canonicalSignature(mname.Name, sig)
						w.snap.SetSignature(mnode.ID, sig)
					}
					methodIdx++
				}
			}
		}

	default:
		node := w.addNode(ir.KindClass, fqn, name, span, fileScope.NodeID)
		node.SetAttr("underlying", exprToString(ts.Type))
		node.SetAttr("alias", ts.Assign.IsValid())
		w.contains(fileScope.NodeID, node.ID, declIdx)
		w.define(fqn, span, 0)
		fileScope.Declare(name, node)
	}
}

func lastSegment(s string) string {
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// buildSignature converts a *ast.FuncType into an ir.Signature (§3).
func buildSignature(ft *ast.FuncType, kind ir.CallableKind) *ir.Signature {
	sig := &ir.Signature{Kind: kind}
	if ft.Params != nil {
		for _, f := range ft.Params.List {
			typeRef := exprToTypeRef(f.Type)
			if len(f.Names) == 0 {
				sig.Parameters = append(sig.Parameters, &ir.Parameter{Type: typeRef})
				continue
			}
			for _, n := range f.Names {
				sig.Parameters = append(sig.Parameters, &ir.Parameter{Name: n.Name, Type: typeRef})
			}
		}
	}
	if ft.Results != nil && len(ft.Results.List) > 0 {
		if len(ft.Results.List) == 1 && len(ft.Results.List[0].Names) == 0 {
			sig.Return = exprToTypeRef(ft.Results.List[0].Type)
		} else {
			members := make([]*ir.TypeRef, 0, len(ft.Results.List))
			for _, r := range ft.Results.List {
				n := len(r.Names)
				if n == 0 {
					n = 1
				}
				for i := 0; i < n; i++ {
					members = append(members, exprToTypeRef(r.Type))
				}
			}
			sig.Return = &ir.TypeRef{Kind: ir.TypeKindGeneric, Name: "tuple", Members: members, Resolution: ir.ResolutionRaw}
		}
	}
	return sig
}

// buildFuncDecl handles a top-level func or method declaration, binding
// receiver methods against the file's own scope and falling back to an
// UnboundMethod record when the receiver type lives in another file of the
// same package (common in Go; §4.D resolves these against the package-wide
// symbol table once every file has been built).
func (w *goWalker) buildFuncDecl(fd *ast.FuncDecl, fileScope *Scope, callIdx *int) {
	name := fd.Name.Name
	span := w.spanOf(fd.Pos(), fd.End())

	if fd.Recv == nil {
		fqn := joinFQN(fileScope.FQN, name)
		kind := ir.KindFunction
		node := w.addNode(kind, fqn, name, span, fileScope.NodeID)
		w.contains(fileScope.NodeID, node.ID, stableOrdinal(fd))
		w.define(fqn, span, 0)
		fileScope.Declare(name, node)

		callKind := ir.CallableFunction
		if strings.HasPrefix(name, "New") {
			callKind = ir.CallableConstructor
		}
		sig := buildSignature(fd.Type, callKind)
		sig.Canonical = canonicalSignature(name, sig)
		w.snap.SetSignature(node.ID, sig)
		node.SetAttr("controlFlow", computeControlFlowSummary(fd.Body))

		funcScope := fileScope.Child("function", name, node.ID)
		w.bindParams(funcScope, fd.Type, node.ID, fqn)
		if fd.Body != nil {
			w.walkBody(fd.Body, funcScope, callIdx)
			NewNarrower(w.snap, w.relPath, w.fset).NarrowFunc(fd.Body)
		}
		return
	}

	recvField := fd.Recv.List[0]
	recvTypeName := strings.TrimPrefix(exprToString(recvField.Type), "*")
	recvVarName := ""
	if len(recvField.Names) > 0 {
		recvVarName = recvField.Names[0].Name
	}

	classNode, found := fileScope.Lookup(recvTypeName)
	methodFQN := joinFQN(joinFQN(fileScope.FQN, recvTypeName), name)
	methodNode := w.addNode(ir.KindMethod, methodFQN, name, span, "")
	w.define(methodFQN, span, 0)

	sig := buildSignature(fd.Type, ir.CallableMethod)
	sig.Canonical = canonicalSignature(name, sig)
	w.snap.SetSignature(methodNode.ID, sig)
	node := methodNode
	node.SetAttr("controlFlow", computeControlFlowSummary(fd.Body))
	node.SetAttr("receiver", recvTypeName)

	var classScope *Scope
	if found {
		methodNode.ParentID = classNode.ID
		w.contains(classNode.ID, methodNode.ID, stableOrdinal(fd))
		classScope = fileScope.Child("class", recvTypeName, classNode.ID)
	} else {
		w.result.Unbound = append(w.result.Unbound, UnboundMethod{MethodNodeID: methodNode.ID, ReceiverName: recvTypeName})
		classScope = fileScope.Child("class", recvTypeName, "")
	}

	funcScope := classScope.Child("function", name, methodNode.ID)
	if recvVarName != "" && recvVarName != "_" {
		recvNode := &ir.Node{ID: ir.NodeID(w.b.RepoID, ir.KindParameter, w.relPath, methodFQN+"."+recvVarName), Kind: ir.KindParameter, FQN: methodFQN + "." + recvVarName, Name: recvVarName, Span: w.spanOf(recvField.Pos(), recvField.End())}
		recvNode.SetAttr("varKind", ir.VarKindParameter)
		recvNode.SetAttr("receiver", true)
		w.snap.AddNode(recvNode)
		w.contains(methodNode.ID, recvNode.ID, 0)
		w.define(recvNode.FQN, recvNode.Span, 0)
		funcScope.Declare(recvVarName, recvNode)
		funcScope.Declare("self", recvNode)
	}
	w.bindParams(funcScope, fd.Type, methodNode.ID, methodFQN)
	if fd.Body != nil {
		w.walkBody(fd.Body, funcScope, callIdx)
		NewNarrower(w.snap, w.relPath, w.fset).NarrowFunc(fd.Body)
	}
}

// stableOrdinal derives a deterministic disambiguator for sibling CONTAINS
// edges from a declaration's byte offset rather than a shared counter,
// since methods may be appended to a class scope across multiple decls.
func stableOrdinal(fd *ast.FuncDecl) int {
	return int(fd.Pos())
}

func (w *goWalker) bindParams(funcScope *Scope, ft *ast.FuncType, funcNodeID, funcFQN string) {
	if ft.Params == nil {
		return
	}
	idx := 0
	for _, field := range ft.Params.List {
		typeRef := exprToTypeRef(field.Type)
		for _, pname := range field.Names {
			if pname.Name == "_" {
				idx++
				continue
			}
			pfqn := funcFQN + "." + pname.Name
			pspan := w.spanOf(pname.Pos(), pname.End())
			pnode := &ir.Node{ID: ir.NodeID(w.b.RepoID, ir.KindParameter, w.relPath, pfqn), Kind: ir.KindParameter, FQN: pfqn, Name: pname.Name, Span: pspan, ParentID: funcNodeID, DeclaredType: typeRef}
			pnode.SetAttr("varKind", ir.VarKindParameter)
			w.snap.AddNode(pnode)
			w.contains(funcNodeID, pnode.ID, idx)
			w.define(pfqn, pspan, 0)
			funcScope.Declare(pname.Name, pnode)
			idx++
		}
	}
}

// computeControlFlowSummary approximates cyclomatic complexity by counting
// branch points, matching the teacher's statement.go walk style but folded
// into a single summary rather than a full CFG.
func computeControlFlowSummary(body *ast.BlockStmt) ir.ControlFlowSummary {
	summary := ir.ControlFlowSummary{CyclomaticComplexity: 1}
	if body == nil {
		return summary
	}
	ast.Inspect(body, func(n ast.Node) bool {
		switch s := n.(type) {
		case *ast.IfStmt:
			summary.BranchCount++
			summary.CyclomaticComplexity++
		case *ast.ForStmt, *ast.RangeStmt:
			summary.HasLoop = true
			summary.CyclomaticComplexity++
		case *ast.CaseClause:
			summary.BranchCount++
			summary.CyclomaticComplexity++
		case *ast.CommClause:
			summary.BranchCount++
			summary.CyclomaticComplexity++
		case *ast.DeferStmt:
			if isRecoverCall(s.Call) {
				summary.HasTry = true
			}
		case *ast.BinaryExpr:
			if s.Op == token.LAND || s.Op == token.LOR {
				summary.CyclomaticComplexity++
			}
		}
		return true
	})
	return summary
}

func isRecoverCall(call *ast.CallExpr) bool {
	id, ok := call.Fun.(*ast.Ident)
	return ok && id.Name == "recover"
}

// walkBody walks a function/method body emitting CALLS/READS/WRITES edges
// and Reference/Read/Write/Call occurrences, generalizing the teacher's
// expression.go/statement.go recursive descent into a single ast.Inspect
// pass scoped by the block's enclosing funcScope.
func (w *goWalker) walkBody(body *ast.BlockStmt, scope *Scope, callIdx *int) {
	ast.Inspect(body, func(n ast.Node) bool {
		switch s := n.(type) {
		case *ast.DeclStmt:
			if gd, ok := s.Decl.(*ast.GenDecl); ok && (gd.Tok == token.VAR || gd.Tok == token.CONST) {
				w.declareLocalVars(gd, scope)
			}
		case *ast.AssignStmt:
			w.handleAssign(s, scope)
			w.emitReads(s.Rhs, scope)
		case *ast.CallExpr:
			w.handleCall(s, scope, callIdx)
		case *ast.ReturnStmt:
			w.emitReads(s.Results, scope)
		case *ast.Ident:
			if local, ok := scope.Lookup(s.Name); ok {
				w.reference(local.FQN, w.spanOf(s.Pos(), s.End()), ir.RoleReference)
			}
		}
		return true
	})
}

// emitReads records a READS edge (§4.F "RHS and expression positions
// produce READS") from the enclosing function to every locally-scoped
// identifier appearing in exprs, skipping the assignment target positions
// handleAssign already covers via WRITES.
func (w *goWalker) emitReads(exprs []ast.Expr, scope *Scope) {
	fn := scope.EnclosingFunction()
	if fn == nil {
		return
	}
	for _, expr := range exprs {
		ast.Inspect(expr, func(n ast.Node) bool {
			id, ok := n.(*ast.Ident)
			if !ok {
				return true
			}
			local, ok := scope.Lookup(id.Name)
			if !ok {
				return true
			}
			span := w.spanOf(id.Pos(), id.End())
			edge := &ir.Edge{ID: ir.EdgeID(ir.EdgeReads, fn.NodeID, local.ID, int(id.Pos())), Kind: ir.EdgeReads, SourceID: fn.NodeID, TargetID: local.ID, Span: &span}
			w.snap.AddEdge(edge)
			return true
		})
	}
}

func (w *goWalker) declareLocalVars(gd *ast.GenDecl, scope *Scope) {
	for _, spec := range gd.Specs {
		vs, ok := spec.(*ast.ValueSpec)
		if !ok {
			continue
		}
		var typeRef *ir.TypeRef
		if vs.Type != nil {
			typeRef = exprToTypeRef(vs.Type)
		}
		for _, name := range vs.Names {
			if name.Name == "_" {
				continue
			}
			fn := scope.EnclosingFunction()
			parentID := ""
			if fn != nil {
				parentID = fn.NodeID
			}
			fqn := joinFQN(scope.FQN, name.Name)
			span := w.spanOf(name.Pos(), name.End())
			vnode := &ir.Node{ID: ir.NodeID(w.b.RepoID, ir.KindVariable, w.relPath, fqn+"@"+strconv.Itoa(int(name.Pos()))), Kind: ir.KindVariable, FQN: fqn, Name: name.Name, Span: span, ParentID: parentID, DeclaredType: typeRef}
			vnode.SetAttr("varKind", ir.VarKindLocal)
			w.snap.AddNode(vnode)
			if parentID != "" {
				w.contains(parentID, vnode.ID, int(name.Pos()))
			}
			w.define(fqn, span, 0)
			scope.Declare(name.Name, vnode)
		}
	}
}

// handleAssign emits WRITES for LHS identifiers and, for `:=` with new
// names, declares local Variable nodes (§4.B local variables, §4.F WRITES).
func (w *goWalker) handleAssign(as *ast.AssignStmt, scope *Scope) {
	fn := scope.EnclosingFunction()
	parentID := ""
	if fn != nil {
		parentID = fn.NodeID
	}
	for _, lhs := range as.Lhs {
		ident, ok := lhs.(*ast.Ident)
		if !ok || ident.Name == "_" {
			continue
		}
		span := w.spanOf(ident.Pos(), ident.End())
		if as.Tok == token.DEFINE {
			if _, exists := scope.Symbols[ident.Name]; !exists {
				fqn := joinFQN(scope.FQN, ident.Name)
				vnode := &ir.Node{ID: ir.NodeID(w.b.RepoID, ir.KindVariable, w.relPath, fqn+"@"+strconv.Itoa(int(ident.Pos()))), Kind: ir.KindVariable, FQN: fqn, Name: ident.Name, Span: span, ParentID: parentID}
				vnode.SetAttr("varKind", ir.VarKindLocal)
				w.snap.AddNode(vnode)
				if parentID != "" {
					w.contains(parentID, vnode.ID, int(ident.Pos()))
				}
				w.define(fqn, span, ir.RoleWrite)
				if parentID != "" {
					w.snap.AddEdge(&ir.Edge{ID: ir.EdgeID(ir.EdgeWrites, parentID, vnode.ID, int(ident.Pos())), Kind: ir.EdgeWrites, SourceID: parentID, TargetID: vnode.ID, Span: &span})
				}
				scope.Declare(ident.Name, vnode)
				continue
			}
		}
		if vnode, ok := scope.Lookup(ident.Name); ok {
			w.reference(vnode.FQN, span, ir.RoleWrite)
			if parentID != "" {
				w.snap.AddEdge(&ir.Edge{ID: ir.EdgeID(ir.EdgeWrites, parentID, vnode.ID, int(ident.Pos())), Kind: ir.EdgeWrites, SourceID: parentID, TargetID: vnode.ID, Span: &span})
			}
		}
	}
}

// handleCall resolves a CallExpr against the local scope, the import alias
// table, or a receiver-method pattern, emitting a bound CALLS edge when
// possible and a ProvisionalCall otherwise (§4.F "binding rules").
func (w *goWalker) handleCall(ce *ast.CallExpr, scope *Scope, callIdx *int) {
	var calleeName, importAlias string
	var recvExpr ast.Expr

	switch fn := ce.Fun.(type) {
	case *ast.Ident:
		calleeName = fn.Name
	case *ast.SelectorExpr:
		calleeName = fn.Sel.Name
		if xid, ok := fn.X.(*ast.Ident); ok {
			if _, isImport := w.aliases[xid.Name]; isImport {
				importAlias = xid.Name
			} else {
				recvExpr = fn.X
			}
		} else {
			recvExpr = fn.X
		}
	default:
		return
	}
	if calleeName == "" {
		return
	}

	*callIdx++
	span := w.spanOf(ce.Pos(), ce.End())
	callerFn := scope.EnclosingFunction()
	callerID := ""
	if callerFn != nil {
		callerID = callerFn.NodeID
	}

	if recvExpr != nil {
		if xid, ok := recvExpr.(*ast.Ident); ok {
			if recvNode, ok := scope.Lookup(xid.Name); ok && recvNode.DeclaredType != nil {
				targetFQN := joinFQN(strings.TrimPrefix(recvNode.DeclaredType.Name, "*"), calleeName)
				w.reference(targetFQN, span, ir.RoleCall)
				edge := &ir.Edge{ID: ir.EdgeID(ir.EdgeCalls, callerID, "", *callIdx), Kind: ir.EdgeCalls, SourceID: callerID, External: true}
				w.snap.AddEdge(edge)
				w.result.Provisional = append(w.result.Provisional, ProvisionalCall{EdgeID: edge.ID, CalleeName: targetFQN})
				return
			}
		}
		w.reference(calleeName, span, ir.RoleCall)
		edge := &ir.Edge{ID: ir.EdgeID(ir.EdgeCalls, callerID, "", *callIdx), Kind: ir.EdgeCalls, SourceID: callerID, External: true}
		w.snap.AddEdge(edge)
		w.result.Provisional = append(w.result.Provisional, ProvisionalCall{EdgeID: edge.ID, CalleeName: calleeName})
		return
	}

	if local, ok := scope.Lookup(calleeName); ok && importAlias == "" {
		w.reference(local.FQN, span, ir.RoleCall)
		w.snap.AddEdge(&ir.Edge{ID: ir.EdgeID(ir.EdgeCalls, callerID, local.ID, *callIdx), Kind: ir.EdgeCalls, SourceID: callerID, TargetID: local.ID})
		return
	}

	w.reference(calleeName, span, ir.RoleCall)
	edge := &ir.Edge{ID: ir.EdgeID(ir.EdgeCalls, callerID, "", *callIdx), Kind: ir.EdgeCalls, SourceID: callerID, External: importAlias != ""}
	w.snap.AddEdge(edge)
	w.result.Provisional = append(w.result.Provisional, ProvisionalCall{EdgeID: edge.ID, CalleeName: calleeName, ImportAlias: importAlias})
}
