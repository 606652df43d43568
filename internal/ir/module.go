package ir

import "strait/internal/source"

// ResolutionKind classifies how an import specifier resolved.
type ResolutionKind uint8

const (
	// ResolutionUnresolved is the initial state; it must not survive IR
	// building.
	ResolutionUnresolved ResolutionKind = iota
	// ResolutionLocal points at a project source file.
	ResolutionLocal
	// ResolutionExternal points at an external namespace, excluded from
	// graph recursion.
	ResolutionExternal
)

// Resolution is the resolved target of an import specifier.
type Resolution struct {
	Kind ResolutionKind
	// Path is the absolute, slash-normalized file path for local imports.
	Path string
	// Namespace is the external namespace handle for external imports.
	Namespace string
}

// ImportBinding is one imported name, optionally aliased.
type ImportBinding struct {
	Name  string
	Alias string // empty when not aliased
	Span  source.Span
}

// Import is one import declaration of a module.
type Import struct {
	Specifier string
	Bindings  []ImportBinding
	Resolved  Resolution
	Span      source.Span
}

// ExportKind classifies exports.
type ExportKind uint8

const (
	// ExportDirect exports a declaration in the same module.
	ExportDirect ExportKind = iota
	// ExportNamed re-exports a local binding under a (possibly different)
	// name.
	ExportNamed
	// ExportForward re-exports a name from another module.
	ExportForward
)

// Export is one exported name of a module.
type Export struct {
	Kind ExportKind
	// Name is the name visible to importers.
	Name string
	// LocalName is the binding inside this module (ExportDirect,
	// ExportNamed) or the original name in the origin module
	// (ExportForward).
	LocalName string
	// Origin is the import specifier of the origin module for
	// ExportForward.
	Origin string
	// OriginPath is the resolved absolute path of the origin module,
	// filled during graph building.
	OriginPath string
	Span       source.Span
}

// Module is one compiled source file. Built once, immutable afterwards,
// owned by the graph's module list.
type Module struct {
	// Path is the absolute, slash-normalized source path.
	Path string
	// RelPath is the path relative to the source root, extension stripped;
	// namespace and container names derive from it.
	RelPath string
	// Namespace holds the derived target namespace segments (without the
	// root namespace).
	Namespace []string
	// Container is the derived target container type name.
	Container string

	File    source.FileID
	Imports []*Import
	Exports []*Export
	Body    []*Stmt
	Scope   *Scope
}

// ExportedNames returns the visible export names in declaration order.
func (m *Module) ExportedNames() []string {
	out := make([]string, 0, len(m.Exports))
	for _, e := range m.Exports {
		out = append(out, e.Name)
	}
	return out
}

// FindExport returns the export with the given visible name.
func (m *Module) FindExport(name string) (*Export, bool) {
	for _, e := range m.Exports {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}
