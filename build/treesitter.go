package build

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/viant/ceindex/ir"
	"github.com/viant/ceindex/parser"
)

// buildTreeSitterFile walks a tree-sitter concrete syntax tree for Java or
// JavaScript, generalizing the teacher's analyzer.Analyzer node-type switch
// (class_declaration/method_declaration/field_declaration/call_expression)
// and inspector/java, inspector/jsx's extraction into the shared
// build.Scope/ir.Snapshot model (§4.B). Unlike go/ast, tree-sitter nodes
// carry no symbol table, so every lookup here is name-based against the
// scope stack built as the walk descends.
func (b *Builder) buildTreeSitterFile(snap *ir.Snapshot, tree *parser.Tree, relPath string) (*BuildResult, error) {
	moduleFQN := ModuleFQNForPath(relPath)
	result := &BuildResult{RelPath: relPath, ModuleFQN: moduleFQN}

	moduleNode := &ir.Node{ID: ir.NodeID(b.RepoID, ir.KindModule, "", moduleFQN), Kind: ir.KindModule, FQN: moduleFQN, Name: moduleFQN}
	snap.AddNode(moduleNode)

	root := tree.TS.RootNode()
	fileNode := &ir.Node{
		ID:   ir.NodeID(b.RepoID, ir.KindFile, relPath, moduleFQN+"#"+relPath),
		Kind: ir.KindFile, FQN: moduleFQN + "#" + relPath, Name: relPath,
		Span: tsSpan(root, relPath),
	}
	snap.AddNode(fileNode)
	snap.AddEdge(&ir.Edge{ID: ir.EdgeID(ir.EdgeContains, moduleNode.ID, fileNode.ID, 0), Kind: ir.EdgeContains, SourceID: moduleNode.ID, TargetID: fileNode.ID})
	snap.AddOccurrence(&ir.Occurrence{SymbolID: fileNode.FQN, FilePath: relPath, Span: fileNode.Span, Roles: ir.RoleDefinition})

	moduleScope := &Scope{Kind: "module", FQN: moduleFQN, NodeID: moduleNode.ID, Symbols: make(map[string]*ir.Node)}
	fileScope := moduleScope.Child("file", "", fileNode.ID)
	fileScope.FQN = moduleFQN

	tw := &tsWalker{b: b, snap: snap, relPath: relPath, source: tree.Source, result: result}
	tw.walkChildren(root, fileScope, 0)
	return result, nil
}

type tsWalker struct {
	b       *Builder
	snap    *ir.Snapshot
	relPath string
	source  []byte
	result  *BuildResult
	callIdx int
}

func tsSpan(n *sitter.Node, relPath string) ir.Span {
	start, end := n.StartPoint(), n.EndPoint()
	return ir.Span{
		FilePath: relPath, StartLine: int(start.Row) + 1, EndLine: int(end.Row) + 1,
		StartColumn: int(start.Column), EndColumn: int(end.Column),
		StartByte: int(n.StartByte()), EndByte: int(n.EndByte()),
	}
}

func (w *tsWalker) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return string(w.source[n.StartByte():n.EndByte()])
}

func (w *tsWalker) addNode(kind ir.Kind, fqn, name string, n *sitter.Node, parentID string) *ir.Node {
	node := &ir.Node{ID: ir.NodeID(w.b.RepoID, kind, w.relPath, fqn), Kind: kind, FQN: fqn, Name: name, Span: tsSpan(n, w.relPath), ParentID: parentID}
	w.snap.AddNode(node)
	return node
}

func (w *tsWalker) contains(parentID, childID string, occ int) {
	w.snap.AddEdge(&ir.Edge{ID: ir.EdgeID(ir.EdgeContains, parentID, childID, occ), Kind: ir.EdgeContains, SourceID: parentID, TargetID: childID})
}

func (w *tsWalker) define(fqn string, n *sitter.Node, extraRoles ir.Role) {
	w.snap.AddOccurrence(&ir.Occurrence{SymbolID: fqn, FilePath: w.relPath, Span: tsSpan(n, w.relPath), Roles: ir.RoleDefinition | extraRoles})
}

func (w *tsWalker) reference(fqn string, n *sitter.Node, roles ir.Role) {
	w.snap.AddOccurrence(&ir.Occurrence{SymbolID: fqn, FilePath: w.relPath, Span: tsSpan(n, w.relPath), Roles: roles})
}

func fieldByName(n *sitter.Node, name string) *sitter.Node {
	return n.ChildByFieldName(name)
}

// walkChildren dispatches each child node to a handler by grammar node
// type, descending into children whose node type isn't itself a construct
// this builder recognizes. Java and JavaScript name the same constructs
// differently (method_declaration/constructor_declaration vs.
// method_definition), so each case lists both grammars' spellings.
func (w *tsWalker) walkChildren(n *sitter.Node, scope *Scope, depth int) {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "import_declaration", "import_statement":
			w.handleImport(child, scope, i)
		case "class_declaration", "class_body", "interface_declaration":
			if child.Type() == "class_body" {
				w.walkChildren(child, scope, depth)
				continue
			}
			w.handleClass(child, scope, i)
		case "method_declaration", "function_declaration", "constructor_declaration", "method_definition":
			w.handleCallable(child, scope, i)
		case "field_declaration", "public_field_definition", "property_declaration", "field_definition":
			w.handleField(child, scope, i)
		case "call_expression", "method_invocation":
			w.handleCall(child, scope)
			w.walkChildren(child, scope, depth+1)
		case "assignment_expression":
			w.handleAssignment(child, scope)
			w.walkChildren(child, scope, depth+1)
		case "variable_declarator", "local_variable_declaration":
			w.handleLocalVar(child, scope)
			w.walkChildren(child, scope, depth+1)
		case "return_statement":
			w.handleReturn(child, scope)
			w.walkChildren(child, scope, depth+1)
		default:
			w.walkChildren(child, scope, depth+1)
		}
	}
}

func (w *tsWalker) handleImport(n *sitter.Node, scope *Scope, idx int) {
	raw := strings.Trim(w.text(n), "; \t")
	raw = strings.TrimPrefix(raw, "import ")
	name := raw
	if i := strings.LastIndexAny(raw, "./"); i >= 0 {
		name = raw[i+1:]
	}
	name = strings.Trim(name, "\"'{}* \t")
	fqn := scope.FQN + "#" + w.relPath + ".import." + name
	node := w.addNode(ir.KindImport, fqn, name, n, scope.NodeID)
	node.SetAttr("raw", raw)
	w.contains(scope.NodeID, node.ID, idx)
	w.define(fqn, n, ir.RoleImport)

	edge := &ir.Edge{ID: ir.EdgeID(ir.EdgeImports, scope.NodeID, "", idx), Kind: ir.EdgeImports, SourceID: scope.NodeID, External: true}
	edge.SetAttr("importPath", raw)
	w.snap.AddEdge(edge)
	w.result.Imports = append(w.result.Imports, ImportRef{EdgeID: edge.ID, ImportPath: raw, Alias: name})
}

// handleClass handles class_declaration/interface_declaration, including
// the extends/implements clause as an INHERITS edge and recursing into the
// class body with a new "class" scope (§4.B, §4.F INHERITS).
func (w *tsWalker) handleClass(n *sitter.Node, scope *Scope, idx int) {
	nameNode := fieldByName(n, "name")
	name := w.text(nameNode)
	if name == "" {
		return
	}
	kind := ir.KindClass
	if n.Type() == "interface_declaration" {
		kind = ir.KindInterface
	}
	fqn := joinFQN(scope.FQN, name)
	node := w.addNode(kind, fqn, name, n, scope.NodeID)
	w.contains(scope.NodeID, node.ID, idx)
	w.define(fqn, n, 0)
	scope.Declare(name, node)
	classScope := scope.Child("class", name, node.ID)

	if sc := fieldByName(n, "superclass"); sc != nil {
		w.emitInherit(node.ID, extractTypeName(w.text(sc)))
	}
	if itf := fieldByName(n, "interfaces"); itf != nil {
		for _, t := range splitTypeList(w.text(itf)) {
			w.emitInherit(node.ID, t)
		}
	}

	if body := fieldByName(n, "body"); body != nil {
		w.walkChildren(body, classScope, 0)
	}
}

func extractTypeName(s string) string {
	s = strings.TrimSpace(strings.TrimPrefix(s, "extends"))
	s = strings.TrimSpace(strings.TrimPrefix(s, "class"))
	if i := strings.IndexAny(s, "(<"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func splitTypeList(s string) []string {
	s = strings.TrimSpace(strings.TrimPrefix(s, "implements"))
	var out []string
	for _, p := range strings.Split(s, ",") {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func (w *tsWalker) emitInherit(classNodeID, typeName string) {
	if typeName == "" {
		return
	}
	edge := &ir.Edge{ID: ir.EdgeID(ir.EdgeInherits, classNodeID, "", len(w.result.Inherits)), Kind: ir.EdgeInherits, SourceID: classNodeID, External: true}
	w.snap.AddEdge(edge)
	w.result.Inherits = append(w.result.Inherits, ProvisionalRef{EdgeID: edge.ID, Kind: ir.EdgeInherits, TypeName: typeName})
}

func (w *tsWalker) handleCallable(n *sitter.Node, scope *Scope, idx int) {
	nameNode := fieldByName(n, "name")
	name := w.text(nameNode)
	if name == "" {
		name = "constructor"
	}
	class := scope.EnclosingClass()
	fqn := joinFQN(scope.FQN, name)
	kind := ir.KindFunction
	callKind := ir.CallableFunction
	parentID := scope.NodeID
	if class != nil {
		kind = ir.KindMethod
		callKind = ir.CallableMethod
		parentID = class.NodeID
	}
	if n.Type() == "constructor_declaration" || name == "constructor" {
		callKind = ir.CallableConstructor
	}

	node := w.addNode(kind, fqn, name, n, parentID)
	w.contains(parentID, node.ID, idx)
	w.define(fqn, n, 0)
	scope.Declare(name, node)

	sig := &ir.Signature{Kind: callKind}
	if params := fieldByName(n, "parameters"); params != nil {
		sig.Parameters = w.extractParams(params)
	}
	if ret := fieldByName(n, "type"); ret != nil {
		sig.Return = &ir.TypeRef{Kind: ir.TypeKindName, Name: strings.TrimSpace(w.text(ret)), Resolution: ir.ResolutionRaw}
	}
	sig.Canonical = canonicalSignature(name, sig)
	w.snap.SetSignature(node.ID, sig)
	node.SetAttr("controlFlow", w.controlFlowSummary(n))

	funcScope := scope.Child("function", name, node.ID)
	if params := fieldByName(n, "parameters"); params != nil {
		w.declareParams(params, funcScope, node.ID, fqn)
	}
	if body := fieldByName(n, "body"); body != nil {
		w.walkChildren(body, funcScope, 0)
		if class != nil && (name == "constructor" || n.Type() == "constructor_declaration") {
			w.scanConstructorFields(body, class, funcScope)
		}
	}
}

func (w *tsWalker) extractParams(params *sitter.Node) []*ir.Parameter {
	var out []*ir.Parameter
	for i := 0; i < int(params.ChildCount()); i++ {
		p := params.Child(i)
		if p == nil || p.Type() == "(" || p.Type() == ")" || p.Type() == "," {
			continue
		}
		nameNode := fieldByName(p, "name")
		if nameNode == nil {
			nameNode = p
		}
		typeRef := &ir.TypeRef{Kind: ir.TypeKindUnknown, Resolution: ir.ResolutionRaw}
		if t := fieldByName(p, "type"); t != nil {
			typeRef = &ir.TypeRef{Kind: ir.TypeKindName, Name: strings.TrimSpace(w.text(t)), Resolution: ir.ResolutionRaw}
		}
		out = append(out, &ir.Parameter{Name: w.text(nameNode), Type: typeRef})
	}
	return out
}

func (w *tsWalker) declareParams(params *sitter.Node, scope *Scope, funcNodeID, funcFQN string) {
	idx := 0
	for i := 0; i < int(params.ChildCount()); i++ {
		p := params.Child(i)
		if p == nil || p.Type() == "(" || p.Type() == ")" || p.Type() == "," {
			continue
		}
		nameNode := fieldByName(p, "name")
		if nameNode == nil {
			nameNode = p
		}
		name := w.text(nameNode)
		if name == "" {
			continue
		}
		typeRef := &ir.TypeRef{Kind: ir.TypeKindUnknown, Resolution: ir.ResolutionRaw}
		if t := fieldByName(p, "type"); t != nil {
			typeRef = &ir.TypeRef{Kind: ir.TypeKindName, Name: strings.TrimSpace(w.text(t)), Resolution: ir.ResolutionRaw}
		}
		pfqn := funcFQN + "." + name
		pnode := &ir.Node{ID: ir.NodeID(w.b.RepoID, ir.KindParameter, w.relPath, pfqn), Kind: ir.KindParameter, FQN: pfqn, Name: name, Span: tsSpan(nameNode, w.relPath), ParentID: funcNodeID, DeclaredType: typeRef}
		pnode.SetAttr("varKind", ir.VarKindParameter)
		w.snap.AddNode(pnode)
		w.contains(funcNodeID, pnode.ID, idx)
		w.define(pfqn, nameNode, 0)
		scope.Declare(name, pnode)
		idx++
	}
}

func (w *tsWalker) handleField(n *sitter.Node, scope *Scope, idx int) {
	class := scope.EnclosingClass()
	if class == nil {
		return
	}
	var declarator *sitter.Node
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c != nil && (c.Type() == "variable_declarator" || c.Type() == "property_identifier" || c.Type() == "identifier") {
			declarator = c
			break
		}
	}
	nameNode := fieldByName(n, "declarator")
	if nameNode == nil {
		nameNode = declarator
	}
	if nameNode == nil {
		return
	}
	if nn := fieldByName(nameNode, "name"); nn != nil {
		nameNode = nn
	}
	name := w.text(nameNode)
	if name == "" {
		return
	}
	fqn := joinFQN(class.FQN, name)
	fnode := w.addNode(ir.KindField, fqn, name, n, class.NodeID)
	if t := fieldByName(n, "type"); t != nil {
		fnode.DeclaredType = &ir.TypeRef{Kind: ir.TypeKindName, Name: strings.TrimSpace(w.text(t)), Resolution: ir.ResolutionRaw}
	}
	w.contains(class.NodeID, fnode.ID, idx)
	w.define(fqn, n, 0)
	class.Declare(name, fnode)
}

// scanConstructorFields recognizes Go's closest JS/Java analogue of a
// constructor self-field assignment, `this.x = ...`, binding a synthetic
// Field node when the class body didn't already declare it (common in
// JavaScript classes that declare fields only via constructor assignment).
func (w *tsWalker) scanConstructorFields(body *sitter.Node, class *Scope, scope *Scope) {
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n.Type() == "assignment_expression" {
			left := fieldByName(n, "left")
			if left != nil && left.Type() == "member_expression" {
				obj := fieldByName(left, "object")
				prop := fieldByName(left, "property")
				if obj != nil && prop != nil && (w.text(obj) == "this" || w.text(obj) == "self") {
					name := w.text(prop)
					if _, exists := class.Symbols[name]; !exists {
						fqn := joinFQN(class.FQN, name)
						fnode := w.addNode(ir.KindField, fqn, name, left, class.NodeID)
						fnode.SetAttr("fromConstructor", true)
						w.contains(class.NodeID, fnode.ID, len(class.Symbols))
						w.define(fqn, left, 0)
						class.Declare(name, fnode)
					}
				}
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			if c := n.Child(i); c != nil {
				walk(c)
			}
		}
	}
	walk(body)
}

func (w *tsWalker) handleLocalVar(n *sitter.Node, scope *Scope) {
	nameNode := fieldByName(n, "name")
	if nameNode == nil {
		return
	}
	name := w.text(nameNode)
	if name == "" {
		return
	}
	fqn := joinFQN(scope.FQN, name)
	fn := scope.EnclosingFunction()
	parentID := ""
	if fn != nil {
		parentID = fn.NodeID
	}
	vnode := &ir.Node{ID: ir.NodeID(w.b.RepoID, ir.KindVariable, w.relPath, fqn+"@"+sitterPosKey(n)), Kind: ir.KindVariable, FQN: fqn, Name: name, Span: tsSpan(n, w.relPath), ParentID: parentID}
	vnode.SetAttr("varKind", ir.VarKindLocal)
	w.snap.AddNode(vnode)
	if parentID != "" {
		w.contains(parentID, vnode.ID, int(n.StartByte()))
	}
	w.define(fqn, n, 0)
	scope.Declare(name, vnode)
	if parentID != "" {
		if value := fieldByName(n, "value"); value != nil {
			w.emitReads(value, scope, parentID)
		}
	}
}

func sitterPosKey(n *sitter.Node) string {
	p := n.StartPoint()
	return strings.Join([]string{itoa(int(p.Row)), itoa(int(p.Column))}, ":")
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}

// handleAssignment implements §4.F's LHS->WRITES / RHS->READS split for the
// tree-sitter drivers: the assignment's identifier target produces a WRITES
// edge from the enclosing function, and every locally-scoped identifier on
// the right-hand side produces a READS edge.
func (w *tsWalker) handleAssignment(n *sitter.Node, scope *Scope) {
	fn := scope.EnclosingFunction()
	callerID := ""
	if fn != nil {
		callerID = fn.NodeID
	}
	left := fieldByName(n, "left")
	if left != nil && left.Type() == "identifier" {
		name := w.text(left)
		if target, ok := scope.Lookup(name); ok {
			w.reference(target.FQN, left, ir.RoleWrite)
			if callerID != "" {
				span := tsSpan(left, w.relPath)
				w.snap.AddEdge(&ir.Edge{ID: ir.EdgeID(ir.EdgeWrites, callerID, target.ID, int(left.StartByte())), Kind: ir.EdgeWrites, SourceID: callerID, TargetID: target.ID, Span: &span})
			}
		}
	}
	if callerID == "" {
		return
	}
	if right := fieldByName(n, "right"); right != nil {
		w.emitReads(right, scope, callerID)
	}
}

// emitReads walks every identifier under n that binds to a locally-scoped
// symbol and records a READS edge from callerID (§4.F).
func (w *tsWalker) emitReads(n *sitter.Node, scope *Scope, callerID string) {
	if n == nil {
		return
	}
	if n.Type() == "identifier" {
		if local, ok := scope.Lookup(w.text(n)); ok {
			span := tsSpan(n, w.relPath)
			w.snap.AddEdge(&ir.Edge{ID: ir.EdgeID(ir.EdgeReads, callerID, local.ID, int(n.StartByte())), Kind: ir.EdgeReads, SourceID: callerID, TargetID: local.ID, Span: &span})
		}
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if c := n.Child(i); c != nil {
			w.emitReads(c, scope, callerID)
		}
	}
}

// handleReturn emits READS edges for every locally-scoped identifier in a
// return statement's expression(s) (§4.F "expression positions produce
// READS").
func (w *tsWalker) handleReturn(n *sitter.Node, scope *Scope) {
	fn := scope.EnclosingFunction()
	if fn == nil {
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if c := n.Child(i); c != nil && c.Type() != "return" && c.Type() != ";" {
			w.emitReads(c, scope, fn.NodeID)
		}
	}
}

func (w *tsWalker) handleCall(n *sitter.Node, scope *Scope) {
	w.callIdx++
	fnExpr := fieldByName(n, "function")
	if fnExpr == nil {
		fnExpr = fieldByName(n, "name")
	}
	if fnExpr == nil {
		return
	}
	var calleeName string
	var recvName string
	switch fnExpr.Type() {
	case "identifier":
		calleeName = w.text(fnExpr)
	case "member_expression", "field_access":
		obj := fieldByName(fnExpr, "object")
		if obj == nil {
			obj = fieldByName(fnExpr, "field")
		}
		prop := fieldByName(fnExpr, "property")
		if prop == nil {
			prop = fieldByName(fnExpr, "name")
		}
		calleeName = w.text(prop)
		recvName = w.text(obj)
	default:
		calleeName = w.text(fnExpr)
	}
	if calleeName == "" {
		return
	}

	callerFn := scope.EnclosingFunction()
	callerID := ""
	if callerFn != nil {
		callerID = callerFn.NodeID
	}

	if recvName != "" && recvName != "this" && recvName != "self" {
		if recv, ok := scope.Lookup(recvName); ok && recv.DeclaredType != nil {
			targetFQN := joinFQN(recv.DeclaredType.Name, calleeName)
			w.reference(targetFQN, n, ir.RoleCall)
			edge := &ir.Edge{ID: ir.EdgeID(ir.EdgeCalls, callerID, "", w.callIdx), Kind: ir.EdgeCalls, SourceID: callerID, External: true}
			w.snap.AddEdge(edge)
			w.result.Provisional = append(w.result.Provisional, ProvisionalCall{EdgeID: edge.ID, CalleeName: targetFQN})
			return
		}
	}
	if (recvName == "this" || recvName == "self") && scope.EnclosingClass() != nil {
		targetFQN := joinFQN(scope.EnclosingClass().FQN, calleeName)
		w.reference(targetFQN, n, ir.RoleCall)
		edge := &ir.Edge{ID: ir.EdgeID(ir.EdgeCalls, callerID, "", w.callIdx), Kind: ir.EdgeCalls, SourceID: callerID}
		w.snap.AddEdge(edge)
		w.result.Provisional = append(w.result.Provisional, ProvisionalCall{EdgeID: edge.ID, CalleeName: targetFQN})
		return
	}

	if local, ok := scope.Lookup(calleeName); ok {
		w.reference(local.FQN, n, ir.RoleCall)
		w.snap.AddEdge(&ir.Edge{ID: ir.EdgeID(ir.EdgeCalls, callerID, local.ID, w.callIdx), Kind: ir.EdgeCalls, SourceID: callerID, TargetID: local.ID})
		return
	}
	w.reference(calleeName, n, ir.RoleCall)
	edge := &ir.Edge{ID: ir.EdgeID(ir.EdgeCalls, callerID, "", w.callIdx), Kind: ir.EdgeCalls, SourceID: callerID, External: true}
	w.snap.AddEdge(edge)
	w.result.Provisional = append(w.result.Provisional, ProvisionalCall{EdgeID: edge.ID, CalleeName: calleeName})
}

func (w *tsWalker) controlFlowSummary(n *sitter.Node) ir.ControlFlowSummary {
	summary := ir.ControlFlowSummary{CyclomaticComplexity: 1}
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch n.Type() {
		case "if_statement":
			summary.BranchCount++
			summary.CyclomaticComplexity++
		case "for_statement", "for_in_statement", "while_statement", "enhanced_for_statement":
			summary.HasLoop = true
			summary.CyclomaticComplexity++
		case "switch_case", "switch_label":
			summary.BranchCount++
			summary.CyclomaticComplexity++
		case "catch_clause", "try_statement":
			summary.HasTry = true
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			if c := n.Child(i); c != nil {
				walk(c)
			}
		}
	}
	walk(n)
	return summary
}
