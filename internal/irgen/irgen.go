// Package irgen lowers parsed syntax trees into the IR, module by module.
// Cross-module references resolve against the precomputed graph's export
// maps, never by re-entering another module's builder, so modules can be
// lowered independently once their dependencies are done.
package irgen

import (
	"fmt"

	"strait/internal/diag"
	"strait/internal/ir"
	"strait/internal/loader"
	"strait/internal/modgraph"
	"strait/internal/resolver"
	"strait/internal/source"
	"strait/internal/tsast"
)

// Builder lowers a resolved module graph.
type Builder struct {
	graph    *modgraph.Result
	oracle   loader.Oracle
	fileSet  *source.FileSet
	reporter diag.Reporter

	// aliases indexes type-alias declarations across the whole graph:
	// path -> name -> declaration node. Non-structural aliases expand
	// inline at every reference.
	aliases map[string]map[string]*tsast.Node
}

// New creates a Builder over a resolved graph.
func New(graph *modgraph.Result, oracle loader.Oracle, fileSet *source.FileSet, reporter diag.Reporter) *Builder {
	b := &Builder{
		graph:    graph,
		oracle:   oracle,
		fileSet:  fileSet,
		reporter: reporter,
		aliases:  make(map[string]map[string]*tsast.Node),
	}
	for _, info := range graph.Modules {
		byName := make(map[string]*tsast.Node)
		for _, stmt := range info.Tree.List {
			if stmt.Kind == tsast.KindTypeAliasDecl {
				byName[stmt.Name.Text] = stmt
			}
		}
		b.aliases[info.Path] = byName
	}
	return b
}

// Build lowers every module in graph order and returns them with a path
// index. Modules are immutable once returned.
func (b *Builder) Build() ([]*ir.Module, map[string]*ir.Module) {
	modules := make([]*ir.Module, 0, len(b.graph.Modules))
	byPath := make(map[string]*ir.Module, len(b.graph.Modules))
	for _, info := range b.graph.Modules {
		mod := b.buildModule(info)
		modules = append(modules, mod)
		byPath[mod.Path] = mod
	}
	return modules, byPath
}

func (b *Builder) buildModule(info *modgraph.ModuleInfo) *ir.Module {
	return b.BuildModule(info, b.reporter)
}

// BuildModule lowers a single graph module through its own reporter. The
// Builder is read-only after New, so callers may lower modules concurrently
// and merge per-module diagnostics in graph order afterwards.
func (b *Builder) BuildModule(info *modgraph.ModuleInfo, reporter diag.Reporter) *ir.Module {
	mod := &ir.Module{
		Path:      info.Path,
		RelPath:   info.RelPath,
		Namespace: resolver.NamespaceSegments(info.RelPath),
		Container: resolver.ContainerName(info.RelPath),
		File:      info.File,
		Imports:   info.Imports,
		Exports:   info.Exports,
		Scope:     ir.NewScope(nil),
	}

	mb := &moduleBuilder{Builder: b, reporter: reporter, info: info, mod: mod}
	mb.declareModuleScope()

	for _, stmt := range info.Tree.List {
		switch stmt.Kind {
		case tsast.KindImportDecl, tsast.KindExportNamed, tsast.KindExportFrom:
			// Handled by the graph; nothing lowers.
		default:
			if lowered := mb.lowerTopLevel(stmt); lowered != nil {
				mod.Body = append(mod.Body, lowered)
			}
		}
	}
	return mod
}

// moduleBuilder carries per-module lowering state.
type moduleBuilder struct {
	*Builder
	// reporter shadows the Builder's so concurrent lowerings stay
	// independent.
	reporter diag.Reporter
	info     *modgraph.ModuleInfo
	mod      *ir.Module
	scope    *ir.Scope // current scope during body lowering

	// exported holds local names made visible through an export clause
	// (`export { name }`), which declarations must honor alongside inline
	// export modifiers.
	exported map[string]bool

	// fn tracks the enclosing function while lowering bodies.
	fn *fnState
}

// fnState tracks properties of the function currently being lowered.
type fnState struct {
	generator bool
	sawYield  bool
	// bidirectional is set when a yield's own value feeds an enclosing
	// expression.
	bidirectional bool
	typeParams    map[string]bool
	parent        *fnState
}

func (mb *moduleBuilder) errorf(code diag.Code, span source.Span, format string, args ...any) {
	mb.reporter.Report(diag.NewError(code, span, fmt.Sprintf(format, args...)))
}

func (mb *moduleBuilder) warnf(code diag.Code, span source.Span, format string, args ...any) {
	mb.reporter.Report(diag.NewWarning(code, span, fmt.Sprintf(format, args...)))
}

// declareModuleScope seeds the module scope with imports and top-level
// declarations so forward references resolve.
func (mb *moduleBuilder) declareModuleScope() {
	mb.scope = mb.mod.Scope

	for _, imp := range mb.info.Imports {
		for _, binding := range imp.Bindings {
			name := binding.Alias
			if name == "" {
				name = binding.Name
			}
			sym := &ir.Symbol{Kind: ir.SymImport}
			if imp.Resolved.Kind == ir.ResolutionLocal {
				if sig, ok := mb.oracle.SignatureOf(imp.Resolved.Path, binding.Name); ok && sig.Predicate() {
					sym.Predicate = mb.predicateOf(sig)
				}
			}
			mb.scope.Declare(name, sym)
		}
	}

	mb.exported = make(map[string]bool)
	for _, exp := range mb.info.Exports {
		if exp.Kind == ir.ExportForward {
			continue // LocalName lives in the origin module
		}
		mb.exported[exp.LocalName] = true
	}

	for _, stmt := range mb.info.Tree.List {
		switch stmt.Kind {
		case tsast.KindFuncDecl:
			sym := &ir.Symbol{Kind: ir.SymFunc, Exported: mb.isExported(stmt, stmt.Name.Text)}
			if sig, ok := mb.oracle.SignatureOf(mb.mod.Path, stmt.Name.Text); ok && sig.Predicate() {
				sym.Predicate = mb.predicateOf(sig)
			}
			mb.scope.Declare(stmt.Name.Text, sym)
		case tsast.KindVarStmt:
			for _, decl := range stmt.List {
				sym := &ir.Symbol{Kind: ir.SymVar, Exported: mb.isExported(stmt, decl.Name.Text)}
				if decl.Type != nil {
					sym.Type = mb.lowerType(decl.Type)
				}
				mb.scope.Declare(decl.Name.Text, sym)
			}
		case tsast.KindInterfaceDecl, tsast.KindTypeAliasDecl:
			mb.scope.Declare(stmt.Name.Text, &ir.Symbol{
				Kind:     ir.SymType,
				Exported: mb.isExported(stmt, stmt.Name.Text),
			})
		}
	}
}

// isExported reports whether a declaration is visible outside the module,
// either through an inline export modifier or a named export clause.
func (mb *moduleBuilder) isExported(stmt *tsast.Node, name string) bool {
	return stmt.Has(tsast.FlagExport) || mb.exported[name]
}

func (mb *moduleBuilder) predicateOf(sig *loader.Signature) *ir.Predicate {
	if !sig.Predicate() {
		return nil
	}
	idx := sig.PredicateParam
	if idx < 0 {
		idx = 0
	}
	return &ir.Predicate{
		ParamIndex: idx,
		Target:     mb.lowerType(sig.PredicateType),
	}
}

// originOf resolves the defining module path of an imported name, for
// oracle lookups.
func (mb *moduleBuilder) originOf(name string) (string, string, bool) {
	for _, imp := range mb.info.Imports {
		if imp.Resolved.Kind != ir.ResolutionLocal {
			continue
		}
		for _, binding := range imp.Bindings {
			local := binding.Alias
			if local == "" {
				local = binding.Name
			}
			if local == name {
				if exp, declPath, ok := mb.graph.Export(imp.Resolved.Path, binding.Name); ok {
					return declPath, exp.LocalName, true
				}
				return imp.Resolved.Path, binding.Name, true
			}
		}
	}
	return "", "", false
}

// pushFn / popFn maintain the function state stack.
func (mb *moduleBuilder) pushFn(generator bool, typeParams map[string]bool) {
	mb.fn = &fnState{generator: generator, typeParams: typeParams, parent: mb.fn}
}

func (mb *moduleBuilder) popFn() *fnState {
	state := mb.fn
	mb.fn = state.parent
	return state
}

func (mb *moduleBuilder) inTypeParamScope(name string) bool {
	for s := mb.fn; s != nil; s = s.parent {
		if s.typeParams != nil && s.typeParams[name] {
			return true
		}
	}
	return false
}
