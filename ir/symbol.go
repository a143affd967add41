package ir

import "strings"

// DescriptorSuffix distinguishes SCIP-style descriptor kinds.
const (
	DescriptorModule   = "."
	DescriptorClass    = "#"
	DescriptorCallable = "()."
)

// UnifiedSymbol is an SCIP-style language-independent reference that lets
// cross-language joins match symbols by package identity rather than
// language-local FQN alone (§3).
type UnifiedSymbol struct {
	Scheme     string // language tag, e.g. "go", "java", "js"
	Manager    string // package manager, e.g. "gomod", "maven", "npm"
	Package    string
	Version    string
	Descriptor string // path with kind suffix: "." module, "#" class, "()." callable

	Kind Kind   // back-link to the language-local kind
	FQN  string // back-link to the language-local FQN
}

// String renders the SCIP-style identifier:
// scheme manager package version descriptor
func (u *UnifiedSymbol) String() string {
	var b strings.Builder
	b.WriteString(u.Scheme)
	b.WriteString(" ")
	b.WriteString(u.Manager)
	b.WriteString(" ")
	b.WriteString(u.Package)
	b.WriteString(" ")
	b.WriteString(u.Version)
	b.WriteString(" ")
	b.WriteString(u.Descriptor)
	return b.String()
}

// NewModuleSymbol builds the UnifiedSymbol for a Module-kind node.
func NewModuleSymbol(scheme, manager, pkg, version, fqn string) *UnifiedSymbol {
	return &UnifiedSymbol{
		Scheme: scheme, Manager: manager, Package: pkg, Version: version,
		Descriptor: fqn + DescriptorModule, Kind: KindModule, FQN: fqn,
	}
}

// NewClassSymbol builds the UnifiedSymbol for a Class/Interface/Enum node.
func NewClassSymbol(scheme, manager, pkg, version string, kind Kind, fqn string) *UnifiedSymbol {
	return &UnifiedSymbol{
		Scheme: scheme, Manager: manager, Package: pkg, Version: version,
		Descriptor: fqn + DescriptorClass, Kind: kind, FQN: fqn,
	}
}

// NewCallableSymbol builds the UnifiedSymbol for a Function/Method node.
func NewCallableSymbol(scheme, manager, pkg, version string, kind Kind, fqn string) *UnifiedSymbol {
	return &UnifiedSymbol{
		Scheme: scheme, Manager: manager, Package: pkg, Version: version,
		Descriptor: fqn + DescriptorCallable, Kind: kind, FQN: fqn,
	}
}

// AttrUnifiedSymbol is the Node.Attrs key a Node's *UnifiedSymbol is stored
// under, keeping the cross-language join table out of Node's fixed fields
// (§9 "Dynamic attribute bags").
const AttrUnifiedSymbol = "unified_symbol"

// AttachSymbol builds the right UnifiedSymbol shape for n.Kind and stores
// it in n's attribute bag.
func AttachSymbol(n *Node, scheme, manager, pkg, version string) *UnifiedSymbol {
	var sym *UnifiedSymbol
	switch n.Kind {
	case KindModule:
		sym = NewModuleSymbol(scheme, manager, pkg, version, n.FQN)
	case KindClass, KindInterface, KindEnum:
		sym = NewClassSymbol(scheme, manager, pkg, version, n.Kind, n.FQN)
	case KindFunction, KindMethod, KindExternalFunction:
		sym = NewCallableSymbol(scheme, manager, pkg, version, n.Kind, n.FQN)
	default:
		return nil
	}
	n.SetAttr(AttrUnifiedSymbol, sym)
	return sym
}

// SymbolFor returns the UnifiedSymbol AttachSymbol stored on n, if any.
func SymbolFor(n *Node) (*UnifiedSymbol, bool) {
	v, ok := n.Attr(AttrUnifiedSymbol)
	if !ok {
		return nil, false
	}
	sym, ok := v.(*UnifiedSymbol)
	return sym, ok
}
