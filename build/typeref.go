package build

import (
	"go/ast"
	"strings"

	"github.com/viant/ceindex/ir"
)

var goBuiltins = map[string]bool{
	"bool": true, "string": true, "error": true,
	"int": true, "int8": true, "int16": true, "int32": true, "int64": true,
	"uint": true, "uint8": true, "uint16": true, "uint32": true, "uint64": true, "uintptr": true,
	"float32": true, "float64": true, "complex64": true, "complex128": true,
	"byte": true, "rune": true, "any": true,
}

// exprToString renders a type expression back to source-like text, used for
// Content/Canonical strings and for embedded-field/base-class names.
func exprToString(expr ast.Expr) string {
	switch t := expr.(type) {
	case nil:
		return ""
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return "*" + exprToString(t.X)
	case *ast.SelectorExpr:
		return exprToString(t.X) + "." + t.Sel.Name
	case *ast.ArrayType:
		if t.Len == nil {
			return "[]" + exprToString(t.Elt)
		}
		return "[...]" + exprToString(t.Elt)
	case *ast.MapType:
		return "map[" + exprToString(t.Key) + "]" + exprToString(t.Value)
	case *ast.InterfaceType:
		if t.Methods == nil || len(t.Methods.List) == 0 {
			return "interface{}"
		}
		return "interface{...}"
	case *ast.Ellipsis:
		return "..." + exprToString(t.Elt)
	case *ast.FuncType:
		return "func(...)"
	case *ast.ChanType:
		return "chan " + exprToString(t.Value)
	case *ast.IndexExpr:
		return exprToString(t.X) + "[" + exprToString(t.Index) + "]"
	case *ast.IndexListExpr:
		parts := make([]string, len(t.Indices))
		for i, idx := range t.Indices {
			parts[i] = exprToString(idx)
		}
		return exprToString(t.X) + "[" + strings.Join(parts, ", ") + "]"
	case *ast.BinaryExpr: // union-style type constraint `T1 | T2`
		return exprToString(t.X) + " | " + exprToString(t.Y)
	case *ast.ParenExpr:
		return "(" + exprToString(t.X) + ")"
	default:
		return ""
	}
}

// exprToTypeRef builds the structural ir.TypeRef §3 describes (Name,
// Union, Generic, Callable, Unknown) from a Go type expression.
func exprToTypeRef(expr ast.Expr) *ir.TypeRef {
	switch t := expr.(type) {
	case nil:
		return &ir.TypeRef{Kind: ir.TypeKindUnknown, Resolution: ir.ResolutionRaw}
	case *ast.Ident:
		res := ir.ResolutionRaw
		if goBuiltins[t.Name] {
			res = ir.ResolutionBuiltIn
		}
		return &ir.TypeRef{Kind: ir.TypeKindName, Name: t.Name, Resolution: res}
	case *ast.StarExpr:
		inner := exprToTypeRef(t.X)
		inner.Name = "*" + inner.Name
		return inner
	case *ast.SelectorExpr:
		return &ir.TypeRef{Kind: ir.TypeKindName, Name: exprToString(t), Resolution: ir.ResolutionExternal}
	case *ast.ArrayType:
		return &ir.TypeRef{Kind: ir.TypeKindGeneric, Name: "slice", Members: []*ir.TypeRef{exprToTypeRef(t.Elt)}, Resolution: ir.ResolutionRaw}
	case *ast.MapType:
		return &ir.TypeRef{Kind: ir.TypeKindGeneric, Name: "map", Members: []*ir.TypeRef{exprToTypeRef(t.Key), exprToTypeRef(t.Value)}, Resolution: ir.ResolutionRaw}
	case *ast.IndexExpr:
		return &ir.TypeRef{Kind: ir.TypeKindGeneric, Name: exprToString(t.X), Members: []*ir.TypeRef{exprToTypeRef(t.Index)}, Resolution: ir.ResolutionRaw}
	case *ast.IndexListExpr:
		members := make([]*ir.TypeRef, len(t.Indices))
		for i, idx := range t.Indices {
			members[i] = exprToTypeRef(idx)
		}
		return &ir.TypeRef{Kind: ir.TypeKindGeneric, Name: exprToString(t.X), Members: members, Resolution: ir.ResolutionRaw}
	case *ast.BinaryExpr:
		return &ir.TypeRef{Kind: ir.TypeKindUnion, Members: []*ir.TypeRef{exprToTypeRef(t.X), exprToTypeRef(t.Y)}, Resolution: ir.ResolutionRaw}
	case *ast.FuncType:
		params := make([]*ir.TypeRef, 0)
		if t.Params != nil {
			for _, f := range t.Params.List {
				n := len(f.Names)
				if n == 0 {
					n = 1
				}
				for i := 0; i < n; i++ {
					params = append(params, exprToTypeRef(f.Type))
				}
			}
		}
		var ret *ir.TypeRef
		if t.Results != nil && len(t.Results.List) > 0 {
			ret = exprToTypeRef(t.Results.List[0].Type)
		}
		return &ir.TypeRef{Kind: ir.TypeKindCallable, Params: params, Return: ret, Resolution: ir.ResolutionRaw}
	case *ast.InterfaceType:
		return &ir.TypeRef{Kind: ir.TypeKindName, Name: exprToString(t), Resolution: ir.ResolutionRaw}
	default:
		return &ir.TypeRef{Kind: ir.TypeKindUnknown, Resolution: ir.ResolutionRaw}
	}
}

// canonicalSignature renders a canonical string form, e.g.
// "func Open(a int, b string) error".
func canonicalSignature(name string, sig *ir.Signature) string {
	var b strings.Builder
	b.WriteString("func ")
	b.WriteString(name)
	b.WriteString("(")
	for i, p := range sig.Parameters {
		if i > 0 {
			b.WriteString(", ")
		}
		if p.Name != "" {
			b.WriteString(p.Name)
			b.WriteString(" ")
		}
		b.WriteString(typeRefString(p.Type))
	}
	b.WriteString(")")
	if sig.Return != nil {
		b.WriteString(" ")
		b.WriteString(typeRefString(sig.Return))
	}
	return b.String()
}

func typeRefString(t *ir.TypeRef) string {
	if t == nil {
		return ""
	}
	switch t.Kind {
	case ir.TypeKindUnion:
		parts := make([]string, len(t.Members))
		for i, m := range t.Members {
			parts[i] = typeRefString(m)
		}
		return strings.Join(parts, " | ")
	case ir.TypeKindGeneric:
		parts := make([]string, len(t.Members))
		for i, m := range t.Members {
			parts[i] = typeRefString(m)
		}
		return t.Name + "[" + strings.Join(parts, ", ") + "]"
	case ir.TypeKindCallable:
		parts := make([]string, len(t.Params))
		for i, p := range t.Params {
			parts[i] = typeRefString(p)
		}
		ret := ""
		if t.Return != nil {
			ret = " " + typeRefString(t.Return)
		}
		return "func(" + strings.Join(parts, ", ") + ")" + ret
	case ir.TypeKindUnknown:
		return "unknown"
	default:
		return t.Name
	}
}
