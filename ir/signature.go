package ir

// TypeKind distinguishes the structural shape of a TypeRef (§3 Signature).
type TypeKind string

const (
	TypeKindName     TypeKind = "Name"
	TypeKindUnion    TypeKind = "Union"
	TypeKindGeneric  TypeKind = "Generic"
	TypeKindCallable TypeKind = "Callable"
	TypeKindUnknown  TypeKind = "Unknown"
)

// ResolutionLevel records how confidently a TypeRef is bound.
type ResolutionLevel string

const (
	ResolutionRaw      ResolutionLevel = "Raw"      // source text, unparsed further
	ResolutionBuiltIn  ResolutionLevel = "BuiltIn"   // language built-in type
	ResolutionLocal    ResolutionLevel = "Local"     // bound to a project Node
	ResolutionExternal ResolutionLevel = "External"  // bound to a package symbol
)

// TypeRef is a structural type expression: Name, Union[T...],
// Generic[Base, Args...], Callable[[Args], R], or Unknown.
type TypeRef struct {
	Kind       TypeKind
	Name       string     // for Name; also the generic base name when Kind==Generic
	Members    []*TypeRef // Union members, or Generic type arguments
	Params     []*TypeRef // Callable parameter types
	Return     *TypeRef   // Callable return type
	Resolution ResolutionLevel
	NodeID     string // set when Resolution==Local
	Package    string // set when Resolution==External
}

// CallableKind distinguishes the flavor of a callable Signature.
type CallableKind string

const (
	CallableFunction    CallableKind = "function"
	CallableMethod      CallableKind = "method"
	CallableConstructor CallableKind = "constructor"
	CallableStatic      CallableKind = "static"
)

// Parameter is an ordered, named, typed callable parameter or result.
type Parameter struct {
	Name string
	Type *TypeRef
}

// Signature is the callable shape of a Function/Method node (§3).
type Signature struct {
	Parameters []*Parameter
	Return     *TypeRef
	Kind       CallableKind
	Canonical  string // canonical string form, e.g. "func Open(a int, b string) error"
}

// ControlFlowSummary captures §4.B's "control-flow summary over the body".
type ControlFlowSummary struct {
	CyclomaticComplexity int
	HasLoop               bool
	HasTry                bool
	BranchCount           int
}
