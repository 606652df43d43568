// Package emit renders built modules as target source text: one namespace
// per module, one static container class per file, with support types
// (per-arity unions, runtime helpers) synthesized once per run.
package emit

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"sync/atomic"

	"strait/internal/diag"
	"strait/internal/ir"
	"strait/internal/resolver"
	"strait/internal/source"
)

// Options configures one emission run.
type Options struct {
	RootNamespace string
	Mode          resolver.RuntimeMode
	// EntryPath is the source-root-relative, extension-stripped path of the
	// module expected to export the entry function. Empty for library
	// output, where no entry point is required.
	EntryPath string
	// ExternalLibs maps specifier prefixes to target namespaces; it mirrors
	// the graph configuration and validates external references.
	ExternalLibs    map[string]string
	UnionArityLimit int
}

// EntryPoint describes the executable entry of the output.
type EntryPoint struct {
	Namespace string
	Container string
	Method    string
	Async     bool
}

// Output is the result of a successful emission.
type Output struct {
	// Files maps a target-relative output path to its text. Two runs over
	// the same input produce byte-identical content.
	Files map[string]string
	// Entry is nil for library output.
	Entry *EntryPoint
}

// Emitter renders one run. Modules are read-only; all mutable state is
// per-run bookkeeping for support synthesis.
type Emitter struct {
	modules  []*ir.Module
	byPath   map[string]*ir.Module
	res      *resolver.Resolver
	opts     Options
	reporter diag.Reporter

	// needsTypeOf marks that a runtime type-name helper was referenced.
	// Atomic because modules may render concurrently.
	needsTypeOf atomic.Bool
}

// New prepares an emitter over built modules.
func New(modules []*ir.Module, byPath map[string]*ir.Module, opts Options, reporter diag.Reporter) *Emitter {
	return &Emitter{
		modules:  modules,
		byPath:   byPath,
		res: resolver.New(resolver.Options{
			RootNamespace:   opts.RootNamespace,
			Mode:            opts.Mode,
			UnionArityLimit: opts.UnionArityLimit,
		}),
		opts:     opts,
		reporter: reporter,
	}
}

// RenderedModule is one module's rendered text plus the support-file
// requirements it contributed, which callers caching text must replay.
type RenderedModule struct {
	Path string
	Text string
	// UnionArities lists the union support arities this module's types
	// rendered through, sorted.
	UnionArities []int
	// NeedsTypeOf marks a reference to the runtime type-name helper.
	NeedsTypeOf bool
}

// Emit renders every module plus the shared support file. Diagnostics go
// through the reporter; the output is still returned for successfully
// rendered files so callers can decide severity policy.
func (e *Emitter) Emit() *Output {
	files := make(map[string]string, len(e.modules)+1)
	for _, mod := range e.modules {
		r := e.RenderModule(mod, e.reporter)
		files[r.Path] = r.Text
	}
	return e.Finish(files)
}

// RenderModule renders one module through the given reporter. Modules are
// read-only, so callers may render them concurrently with per-module
// reporters; Finish must run after every module has rendered.
func (e *Emitter) RenderModule(mod *ir.Module, reporter diag.Reporter) RenderedModule {
	if reporter == nil {
		reporter = e.reporter
	}
	fe := &fileEmitter{Emitter: e, reporter: reporter, mod: mod, arities: make(map[int]bool)}
	fe.collectLocalNames()
	text := fe.emitFile()

	arities := make([]int, 0, len(fe.arities))
	for n := range fe.arities {
		arities = append(arities, n)
	}
	sort.Ints(arities)
	return RenderedModule{
		Path:         outputPath(mod),
		Text:         text,
		UnionArities: arities,
		NeedsTypeOf:  fe.usedTypeOf,
	}
}

// NoteSupport replays a previously rendered module's support requirements,
// so cache hits still synthesize the union and helper types they rely on.
func (e *Emitter) NoteSupport(arities []int, needsTypeOf bool) {
	for _, n := range arities {
		e.res.NoteUnionArity(n)
	}
	if needsTypeOf {
		e.needsTypeOf.Store(true)
	}
}

// Finish adds the shared support file and entry descriptor to the rendered
// module files. Support synthesis depends on every module having rendered,
// so this is the run's sequential tail.
func (e *Emitter) Finish(files map[string]string) *Output {
	out := &Output{Files: files}
	if support := e.emitSupport(); support != "" {
		out.Files[supportPath] = support
	}
	out.Entry = e.findEntry()
	return out
}

// outputPath derives the target-relative path of a module's output file.
func outputPath(mod *ir.Module) string {
	return mod.RelPath + ".cs"
}

// supportPath is the shared support file. The .g.cs suffix marks it as
// generated alongside generated module files for tools that care.
const supportPath = "Support.g.cs"

// findEntry locates the exported entry function of the entry module.
func (e *Emitter) findEntry() *EntryPoint {
	if e.opts.EntryPath == "" {
		return nil
	}
	var mod *ir.Module
	for _, m := range e.modules {
		if m.RelPath == e.opts.EntryPath {
			mod = m
			break
		}
	}
	if mod == nil {
		e.reporter.Report(diag.NewError(diag.MetaMissingEntryPoint, source.Span{},
			fmt.Sprintf("entry module %q is not part of the build", e.opts.EntryPath)))
		return nil
	}
	for _, stmt := range mod.Body {
		if stmt.Kind != ir.StmtFunc {
			continue
		}
		fn := stmt.Data.(ir.FuncData)
		if fn.Name != "main" || !fn.Exported {
			continue
		}
		return &EntryPoint{
			Namespace: e.res.NamespaceOf(mod),
			Container: mod.Container,
			Method:    resolver.Ident(fn.Name),
			Async:     fn.Async,
		}
	}
	e.reporter.Report(diag.NewError(diag.MetaMissingEntryPoint, source.Span{},
		fmt.Sprintf("entry module %q does not export a function named %q", mod.RelPath, "main")))
	return nil
}

// internalf reports a 6000-range invariant violation. These indicate IR
// shapes an earlier stage should have rejected.
func (fe *fileEmitter) internalf(code diag.Code, span source.Span, format string, args ...any) {
	fe.reporter.Report(diag.NewError(code, span, fmt.Sprintf(format, args...)))
}

// fileEmitter renders one module file.
type fileEmitter struct {
	*Emitter
	// reporter shadows the Emitter's so concurrent renders stay
	// independent.
	reporter diag.Reporter
	mod      *ir.Module
	buf      strings.Builder

	// localTypes holds names of types declared in this container; they
	// render bare.
	localTypes map[string]bool
	// imported maps local binding names to fully-qualified target names.
	imported map[string]string

	// arities and usedTypeOf record this module's support contributions.
	arities    map[int]bool
	usedTypeOf bool
}

// collectLocalNames builds the qualification maps before any text renders.
func (fe *fileEmitter) collectLocalNames() {
	fe.localTypes = make(map[string]bool)
	fe.imported = make(map[string]string)

	for _, stmt := range fe.mod.Body {
		switch stmt.Kind {
		case ir.StmtInterface:
			fe.localTypes[stmt.Data.(ir.InterfaceData).Name] = true
		case ir.StmtTypeAlias:
			fe.localTypes[stmt.Data.(ir.TypeAliasData).Name] = true
		}
	}

	for _, imp := range fe.mod.Imports {
		for _, binding := range imp.Bindings {
			local := binding.Alias
			if local == "" {
				local = binding.Name
			}
			switch imp.Resolved.Kind {
			case ir.ResolutionLocal:
				target, ok := fe.byPath[imp.Resolved.Path]
				if !ok {
					fe.reporter.Report(diag.NewError(diag.ResUnresolvedReference, binding.Span,
						fmt.Sprintf("import %q resolves to a module outside the build", binding.Name)))
					continue
				}
				name := binding.Name
				declMod := target
				if exp, found := target.FindExport(binding.Name); found {
					name = exp.LocalName
					if exp.Kind == ir.ExportForward {
						if chased, declPath := chaseForward(fe.byPath, target, exp); chased != "" {
							if m, ok := fe.byPath[declPath]; ok {
								name, declMod = chased, m
							}
						}
					}
				}
				fe.imported[local] = fe.res.Qualified(declMod, name)
			case ir.ResolutionExternal:
				fe.imported[local] = fe.externalTarget(imp.Resolved, binding)
			}
		}
	}
}

// chaseForward follows a forwarding export to its concrete declaration.
func chaseForward(byPath map[string]*ir.Module, mod *ir.Module, exp *ir.Export) (string, string) {
	seen := map[string]bool{}
	name := exp.LocalName
	cur := exp
	curPath := mod.Path
	for cur.Kind == ir.ExportForward {
		if cur.OriginPath == "" || seen[cur.OriginPath] {
			return "", ""
		}
		seen[cur.OriginPath] = true
		next, ok := byPath[cur.OriginPath]
		if !ok {
			return "", ""
		}
		curPath = next.Path
		found, ok := next.FindExport(cur.LocalName)
		if !ok {
			return "", ""
		}
		cur = found
		name = cur.LocalName
	}
	return name, curPath
}

// externalTarget maps an external import binding to its qualified name:
// the configured namespace plus pascal-cased specifier segments.
func (fe *fileEmitter) externalTarget(res ir.Resolution, binding ir.ImportBinding) string {
	ns := res.Namespace
	if len(fe.opts.ExternalLibs) > 0 {
		known := false
		for _, lib := range fe.opts.ExternalLibs {
			if lib == res.Namespace {
				known = true
				break
			}
		}
		if !known {
			fe.reporter.Report(diag.NewError(diag.ExternUnknownNamespace, binding.Span,
				fmt.Sprintf("external namespace %q is not declared in the manifest", res.Namespace)))
		}
	}
	for _, seg := range strings.Split(path.Clean(res.Path), "/") {
		if seg == "" || seg == "." {
			continue
		}
		ns += "." + resolver.PascalSegment(seg)
	}
	return ns + "." + resolver.Ident(binding.Name)
}

func (fe *fileEmitter) emitFile() string {
	fe.buf.Reset()
	fe.rawf("// Generated by strait from %s.ts. Do not edit.\n", fe.mod.RelPath)
	fe.rawf("using System;\n")
	fe.rawf("using System.Collections.Generic;\n")
	fe.rawf("using System.Threading.Tasks;\n\n")
	fe.rawf("namespace %s\n{\n", fe.res.NamespaceOf(fe.mod))

	ctx := Context{Module: fe.mod, Indent: 1}
	fe.linef(ctx, "public static class %s", fe.mod.Container)
	fe.linef(ctx, "{")

	inner := ctx.Indented()
	for i, stmt := range fe.mod.Body {
		if i > 0 {
			fe.rawf("\n")
		}
		fe.emitDecl(inner, stmt)
	}

	fe.emitSynthClasses(inner)

	fe.linef(ctx, "}")
	fe.rawf("}\n")
	return fe.buf.String()
}

// emitSynthClasses renders the nominal classes promoted from anonymous
// structural types, sorted by name for deterministic output.
func (fe *fileEmitter) emitSynthClasses(ctx Context) {
	synths := collectStructural(fe.mod)
	names := make([]string, 0, len(synths))
	for name := range synths {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fe.rawf("\n")
		fe.emitFieldClass(ctx, name, synths[name].Fields)
	}
}

func (fe *fileEmitter) rawf(format string, args ...any) {
	fmt.Fprintf(&fe.buf, format, args...)
}

// linef writes one indented line.
func (fe *fileEmitter) linef(ctx Context, format string, args ...any) {
	fe.buf.WriteString(ctx.Pad())
	fmt.Fprintf(&fe.buf, format, args...)
	fe.buf.WriteByte('\n')
}

// typeCtx builds the resolver rendering context for the current scope.
func (fe *fileEmitter) typeCtx(ctx Context) resolver.TypeCtx {
	return resolver.TypeCtx{
		TypeParams: ctx.TypeParams,
		LookupType: func(name string) (string, bool) {
			if fe.localTypes[name] {
				return resolver.Ident(name), true
			}
			if qualified, ok := fe.imported[name]; ok {
				return qualified, true
			}
			return "", false
		},
		OnUnionArity: func(n int) {
			fe.arities[n] = true
		},
	}
}

// typeText renders a type, downgrading resolver failures to internal
// diagnostics so emission stays total.
func (fe *fileEmitter) typeText(ctx Context, t *ir.Type, span source.Span) string {
	fe.warnWideUnions(t, span)
	text, err := fe.res.TypeText(t, fe.typeCtx(ctx))
	if err != nil {
		fe.internalf(diag.InternalUnhandledType, span, "%v", err)
		return "object"
	}
	return text
}

// warnWideUnions reports the deliberate precision loss when a union exceeds
// the per-arity support limit and renders as the top type.
func (fe *fileEmitter) warnWideUnions(t *ir.Type, span source.Span) {
	if t == nil {
		return
	}
	switch t.Kind {
	case ir.TypeUnion:
		members := t.Data.(ir.UnionTypeData).Members
		present := 0
		for _, m := range members {
			if !m.IsAbsence() {
				present++
			}
		}
		if present > fe.res.UnionArityLimit() {
			fe.reporter.Report(diag.NewWarning(diag.TypeUnionArityExceeded, span,
				fmt.Sprintf("union of %d members exceeds the supported arity %d and maps to object",
					present, fe.res.UnionArityLimit())))
		}
		for _, m := range members {
			fe.warnWideUnions(m, span)
		}
	case ir.TypeArray:
		fe.warnWideUnions(t.Data.(ir.ArrayTypeData).Elem, span)
	case ir.TypeTuple:
		for _, e := range t.Data.(ir.TupleTypeData).Elems {
			fe.warnWideUnions(e, span)
		}
	case ir.TypeRef:
		for _, a := range t.Data.(ir.RefTypeData).Args {
			fe.warnWideUnions(a, span)
		}
	case ir.TypeFunc:
		d := t.Data.(ir.FuncTypeData)
		for _, p := range d.Params {
			fe.warnWideUnions(p.Type, span)
		}
		fe.warnWideUnions(d.Return, span)
	case ir.TypeDict:
		fe.warnWideUnions(t.Data.(ir.DictTypeData).Value, span)
	case ir.TypeStructural:
		for _, f := range t.Data.(ir.StructuralTypeData).Fields {
			fe.warnWideUnions(f.Type, span)
		}
	}
}
