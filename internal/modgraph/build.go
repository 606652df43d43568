// Package modgraph resolves the import graph from an entry file: it visits
// modules depth-first, resolves every specifier, computes a deterministic
// module order, detects cycles, and precomputes the export maps later
// stages resolve cross-module references against.
package modgraph

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"strait/internal/diag"
	"strait/internal/ir"
	"strait/internal/loader"
	"strait/internal/source"
	"strait/internal/tsast"
)

// Options configures resolution.
type Options struct {
	// ProjectRoot anchors diagnostics-friendly relative paths.
	ProjectRoot string
	// SourceRoot is the directory module namespaces derive from.
	SourceRoot string
	// ExternalRoots maps reserved specifier prefixes to external target
	// namespaces. Matching specifiers resolve without recursion.
	ExternalRoots map[string]string
}

// ModuleInfo is one resolved module before IR building.
type ModuleInfo struct {
	Path    string // absolute, slash-normalized
	RelPath string // relative to SourceRoot, extension stripped
	File    source.FileID
	Tree    *tsast.Node
	Imports []*ir.Import
	Exports []*ir.Export
}

// Result is the resolved module graph.
type Result struct {
	// Modules is in deterministic depth-first post-order: dependencies
	// precede dependents except inside cycles.
	Modules []*ModuleInfo
	Entry   *ModuleInfo
	// Cycles lists strongly connected groups of mutually importing module
	// paths, each sorted.
	Cycles [][]string
	ByPath map[string]*ModuleInfo
}

type builder struct {
	loader   *loader.Loader
	opts     Options
	reporter diag.Reporter

	visited  map[string]bool
	order    []*ModuleInfo
	byPath   map[string]*ModuleInfo
	extRoots []string // sorted prefixes, longest first
}

// Build resolves the graph from entryPath. Diagnostics accumulate through
// the reporter; a nil Result is returned only when the entry itself cannot
// be loaded.
func Build(entryPath string, ld *loader.Loader, opts Options, reporter diag.Reporter) (*Result, error) {
	b := &builder{
		loader:   ld,
		opts:     opts,
		reporter: reporter,
		visited:  make(map[string]bool),
		byPath:   make(map[string]*ModuleInfo),
	}
	for prefix := range opts.ExternalRoots {
		b.extRoots = append(b.extRoots, prefix)
	}
	sort.Slice(b.extRoots, func(i, j int) bool {
		if len(b.extRoots[i]) != len(b.extRoots[j]) {
			return len(b.extRoots[i]) > len(b.extRoots[j])
		}
		return b.extRoots[i] < b.extRoots[j]
	})

	abs, err := filepath.Abs(entryPath)
	if err != nil {
		return nil, fmt.Errorf("resolve entry %s: %w", entryPath, err)
	}
	entryKey := filepath.ToSlash(abs)

	entry := b.visit(entryKey, source.Span{})
	if entry == nil {
		return nil, fmt.Errorf("entry module %s could not be loaded", entryPath)
	}

	res := &Result{
		Modules: b.order,
		Entry:   entry,
		ByPath:  b.byPath,
	}
	res.Cycles = findCycles(res)
	b.reportCycles(res)
	b.resolveForwards(res)
	return res, nil
}

// visit loads one module and recurses into its local imports depth-first.
func (b *builder) visit(absPath string, importSpan source.Span) *ModuleInfo {
	if b.visited[absPath] {
		return b.byPath[absPath]
	}
	b.visited[absPath] = true

	pf, err := b.loader.Parse(absPath)
	if err != nil {
		b.reporter.Report(diag.NewError(diag.ResUnresolvedImport, importSpan,
			fmt.Sprintf("cannot load module %q: %v", absPath, err)))
		return nil
	}

	mod := &ModuleInfo{
		Path:    pf.Path,
		RelPath: b.relPath(pf.Path),
		File:    pf.FileID,
		Tree:    pf.Tree,
	}
	b.byPath[pf.Path] = mod

	b.scanImports(mod)
	b.scanExports(mod)

	// Recurse after scanning so the visit order is the source order of the
	// import declarations.
	for _, imp := range mod.Imports {
		if imp.Resolved.Kind == ir.ResolutionLocal {
			b.visit(imp.Resolved.Path, imp.Span)
		}
	}
	for _, exp := range mod.Exports {
		if exp.Kind == ir.ExportForward && exp.OriginPath != "" {
			b.visit(exp.OriginPath, exp.Span)
		}
	}

	b.order = append(b.order, mod)
	return mod
}

func (b *builder) relPath(absPath string) string {
	root, err := filepath.Abs(b.opts.SourceRoot)
	if err != nil {
		root = b.opts.SourceRoot
	}
	rel, err := filepath.Rel(root, filepath.FromSlash(absPath))
	if err != nil {
		rel = filepath.Base(filepath.FromSlash(absPath))
	}
	rel = filepath.ToSlash(rel)
	return strings.TrimSuffix(rel, path.Ext(rel))
}

func (b *builder) scanImports(mod *ModuleInfo) {
	for _, stmt := range mod.Tree.List {
		if stmt.Kind != tsast.KindImportDecl {
			continue
		}
		imp := &ir.Import{Specifier: stmt.Text, Span: stmt.Span}
		for _, spec := range stmt.List {
			binding := ir.ImportBinding{Name: spec.Text, Span: spec.Span}
			if spec.Name != nil {
				binding.Alias = spec.Name.Text
			}
			imp.Bindings = append(imp.Bindings, binding)
		}
		imp.Resolved = b.resolveSpecifier(mod, stmt.Text, stmt.Span)
		mod.Imports = append(mod.Imports, imp)
	}
}

// resolveSpecifier maps an import specifier to either an external namespace
// or an absolute local path. Local specifiers must carry the source
// extension: no extension guessing.
func (b *builder) resolveSpecifier(mod *ModuleInfo, spec string, span source.Span) ir.Resolution {
	for _, prefix := range b.extRoots {
		if strings.HasPrefix(spec, prefix) {
			return ir.Resolution{
				Kind:      ir.ResolutionExternal,
				Namespace: b.opts.ExternalRoots[prefix],
				Path:      strings.TrimPrefix(spec, prefix),
			}
		}
	}

	if !strings.HasPrefix(spec, "./") && !strings.HasPrefix(spec, "../") {
		b.reporter.Report(diag.NewError(diag.ResUnresolvedImport, span,
			fmt.Sprintf("cannot resolve import %q: not a relative path or a registered external root", spec)))
		return ir.Resolution{Kind: ir.ResolutionUnresolved}
	}

	if path.Ext(spec) != ".ts" {
		b.reporter.Report(diag.NewError(diag.ResMissingExtension, span,
			fmt.Sprintf("import %q must name the source file extension", spec)).
			WithHint(fmt.Sprintf("write %q", spec+".ts")))
		return ir.Resolution{Kind: ir.ResolutionUnresolved}
	}

	dir := path.Dir(mod.Path)
	resolved := path.Clean(path.Join(dir, spec))
	return ir.Resolution{Kind: ir.ResolutionLocal, Path: resolved}
}

func (b *builder) scanExports(mod *ModuleInfo) {
	seen := make(map[string]source.Span)
	add := func(exp *ir.Export) {
		if prev, dup := seen[exp.Name]; dup {
			b.reporter.Report(diag.NewError(diag.ResAmbiguousReExport, exp.Span,
				fmt.Sprintf("module exports %q more than once", exp.Name)).
				WithNote(prev, "previous export"))
			return
		}
		seen[exp.Name] = exp.Span
		mod.Exports = append(mod.Exports, exp)
	}

	for _, stmt := range mod.Tree.List {
		switch stmt.Kind {
		case tsast.KindFuncDecl, tsast.KindInterfaceDecl, tsast.KindTypeAliasDecl:
			if stmt.Has(tsast.FlagExport) {
				add(&ir.Export{
					Kind:      ir.ExportDirect,
					Name:      stmt.Name.Text,
					LocalName: stmt.Name.Text,
					Span:      stmt.Name.Span,
				})
			}
		case tsast.KindVarStmt:
			if stmt.Has(tsast.FlagExport) {
				for _, decl := range stmt.List {
					add(&ir.Export{
						Kind:      ir.ExportDirect,
						Name:      decl.Name.Text,
						LocalName: decl.Name.Text,
						Span:      decl.Name.Span,
					})
				}
			}
		case tsast.KindExportNamed:
			for _, spec := range stmt.List {
				name := spec.Text
				if spec.Name != nil {
					name = spec.Name.Text
				}
				add(&ir.Export{
					Kind:      ir.ExportNamed,
					Name:      name,
					LocalName: spec.Text,
					Span:      spec.Span,
				})
			}
		case tsast.KindExportFrom:
			resolution := b.resolveSpecifier(mod, stmt.Text, stmt.Span)
			for _, spec := range stmt.List {
				name := spec.Text
				if spec.Name != nil {
					name = spec.Name.Text
				}
				exp := &ir.Export{
					Kind:      ir.ExportForward,
					Name:      name,
					LocalName: spec.Text,
					Origin:    stmt.Text,
					Span:      spec.Span,
				}
				if resolution.Kind == ir.ResolutionLocal {
					exp.OriginPath = resolution.Path
				}
				add(exp)
			}
		}
	}
}

// resolveForwards verifies every forwarding export lands on a concrete
// declaration once the full graph is known.
func (b *builder) resolveForwards(res *Result) {
	for _, mod := range res.Modules {
		for _, exp := range mod.Exports {
			if exp.Kind != ir.ExportForward {
				continue
			}
			if exp.OriginPath == "" {
				continue // resolution already failed with its own diagnostic
			}
			origin, ok := res.ByPath[exp.OriginPath]
			if !ok {
				continue // load failure already reported
			}
			if _, ok := origin.findExport(exp.LocalName); !ok {
				b.reporter.Report(diag.NewError(diag.ResUnknownReExport, exp.Span,
					fmt.Sprintf("module %q does not export %q", exp.Origin, exp.LocalName)))
			}
		}
	}
}

func (m *ModuleInfo) findExport(name string) (*ir.Export, bool) {
	for _, e := range m.Exports {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}

// Export resolves a visible export of the module at path, following
// forwarding chains to the defining module. The second return is the path
// of the module that concretely declares the name.
func (r *Result) Export(modPath, name string) (*ir.Export, string, bool) {
	seen := make(map[string]bool)
	for {
		if seen[modPath] {
			return nil, "", false // forwarding cycle
		}
		seen[modPath] = true
		mod, ok := r.ByPath[modPath]
		if !ok {
			return nil, "", false
		}
		exp, ok := mod.findExport(name)
		if !ok {
			return nil, "", false
		}
		if exp.Kind != ir.ExportForward {
			return exp, modPath, true
		}
		if exp.OriginPath == "" {
			return nil, "", false
		}
		modPath, name = exp.OriginPath, exp.LocalName
	}
}
