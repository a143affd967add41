package build

import "github.com/viant/ceindex/ir"

// Scope is an explicit scope-stack frame (module -> class -> function ->
// block), generalizing the teacher's inspector/golang AST walk (which
// threads a similar scope concept implicitly through recursive processing)
// into an explicit stack per §4.B.
type Scope struct {
	Kind    string // "module", "class", "function", "block"
	FQN     string
	NodeID  string
	Parent  *Scope
	Symbols map[string]*ir.Node // name -> node visible in this scope
}

// Child pushes a new scope whose FQN extends the parent's by name,
// realizing §4.B's "FQN by joining the scope chain".
func (s *Scope) Child(kind, name, nodeID string) *Scope {
	fqn := name
	if s != nil && s.FQN != "" && name != "" {
		fqn = s.FQN + "." + name
	} else if s != nil && name == "" {
		fqn = s.FQN
	}
	return &Scope{Kind: kind, FQN: fqn, NodeID: nodeID, Parent: s, Symbols: make(map[string]*ir.Node)}
}

// Lookup resolves an identifier up the scope chain, innermost first.
func (s *Scope) Lookup(name string) (*ir.Node, bool) {
	for cur := s; cur != nil; cur = cur.Parent {
		if n, ok := cur.Symbols[name]; ok {
			return n, true
		}
	}
	return nil, false
}

// Declare binds name to a node in this scope.
func (s *Scope) Declare(name string, n *ir.Node) {
	if s.Symbols == nil {
		s.Symbols = make(map[string]*ir.Node)
	}
	s.Symbols[name] = n
}

// EnclosingClass returns the nearest ancestor "class" scope, used to bind
// `self`/receiver field and method lookups (§4.F "self.field").
func (s *Scope) EnclosingClass() *Scope {
	for cur := s; cur != nil; cur = cur.Parent {
		if cur.Kind == "class" {
			return cur
		}
	}
	return nil
}

// EnclosingFunction returns the nearest ancestor "function" scope.
func (s *Scope) EnclosingFunction() *Scope {
	for cur := s; cur != nil; cur = cur.Parent {
		if cur.Kind == "function" {
			return cur
		}
	}
	return nil
}
