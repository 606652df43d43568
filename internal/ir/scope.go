package ir

// SymbolKind classifies named declarations.
type SymbolKind uint8

const (
	SymVar SymbolKind = iota
	SymFunc
	SymType
	SymParam
	SymImport
)

func (k SymbolKind) String() string {
	switch k {
	case SymVar:
		return "var"
	case SymFunc:
		return "func"
	case SymType:
		return "type"
	case SymParam:
		return "param"
	case SymImport:
		return "import"
	}
	return "unknown"
}

// Symbol is one named entry in a scope.
type Symbol struct {
	Kind     SymbolKind
	Type     *Type // optional declared or inferred type
	Exported bool
	// Predicate is set on type-guard functions ("x is T" returns).
	Predicate *Predicate
}

// Scope is one link of the scope chain. Children point at parents only;
// lookup walks outward and the nearest scope wins.
type Scope struct {
	parent *Scope
	names  map[string]*Symbol
}

// NewScope creates a scope chained to parent (nil for a module root).
func NewScope(parent *Scope) *Scope {
	return &Scope{parent: parent, names: make(map[string]*Symbol)}
}

// Declare binds a name in this scope, shadowing outer bindings.
func (s *Scope) Declare(name string, sym *Symbol) {
	s.names[name] = sym
}

// Lookup resolves a name through the chain, nearest scope first.
func (s *Scope) Lookup(name string) (*Symbol, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if sym, ok := cur.names[name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// LookupLocal resolves a name in this scope only.
func (s *Scope) LookupLocal(name string) (*Symbol, bool) {
	sym, ok := s.names[name]
	return sym, ok
}
