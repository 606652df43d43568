// Package driver runs the whole pipeline: load and resolve the module
// graph, lower modules to IR, render target text, and collect diagnostics
// in a deterministic order. Lowering and rendering fan out per module
// through an errgroup; graph discovery stays sequential because imports are
// only known after parsing.
package driver

import (
	"context"
	"crypto/sha256"
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"strait/internal/diag"
	"strait/internal/emit"
	"strait/internal/ir"
	"strait/internal/irgen"
	"strait/internal/loader"
	"strait/internal/modgraph"
	"strait/internal/project"
	"strait/internal/resolver"
	"strait/internal/source"
)

// Options configures one run.
type Options struct {
	// EntryFile is the absolute path of the module the graph grows from.
	EntryFile string
	// ProjectRoot anchors relative diagnostic paths.
	ProjectRoot string
	// SourceRoot is the directory namespaces derive from.
	SourceRoot string
	// RootNamespace prefixes every emitted namespace.
	RootNamespace string
	// Runtime is the target flavor, "native" or "managed".
	Runtime string
	// EntryRel is the source-root-relative, extension-stripped entry
	// module; empty for library output.
	EntryRel string
	// ExternalRoots maps reserved specifier prefixes to namespaces.
	ExternalRoots map[string]string
	// UnionArityLimit overrides the union support cutoff; zero keeps the
	// default.
	UnionArityLimit int

	// Jobs caps per-module parallelism; zero means GOMAXPROCS.
	Jobs int
	// MaxDiagnostics caps the merged bag; zero means a generous default.
	MaxDiagnostics int
	// CheckOnly stops after IR lowering.
	CheckOnly bool
	// Cache, when non-nil, stores rendered text keyed by content hashes.
	Cache *DiskCache
}

// Result is everything a run produced.
type Result struct {
	// Files maps output-relative paths to rendered text. Nil when
	// CheckOnly was set.
	Files map[string]string
	// Entry is the executable entry descriptor, nil for libraries.
	Entry *emit.EntryPoint
	// Bag holds every diagnostic, sorted and deduplicated.
	Bag *diag.Bag
	// FileSet resolves diagnostic spans for rendering.
	FileSet *source.FileSet
	// Modules is the lowered IR in graph order.
	Modules []*ir.Module
	// Order lists module relative paths in graph order.
	Order []string
	// Cycles lists mutually importing module groups.
	Cycles [][]string
	// CacheHits counts modules whose text was replayed from the cache.
	CacheHits int
}

const defaultMaxDiagnostics = 256

// Run executes the pipeline.
func Run(ctx context.Context, opts Options) (*Result, error) {
	maxDiags := opts.MaxDiagnostics
	if maxDiags <= 0 {
		maxDiags = defaultMaxDiagnostics
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	bag := diag.NewBag(maxDiags)
	reporter := diag.BagReporter{Bag: bag}

	fileSet := source.NewFileSetWithBase(opts.SourceRoot)
	ld := loader.New(fileSet, reporter)

	graph, err := modgraph.Build(opts.EntryFile, ld, modgraph.Options{
		ProjectRoot:   opts.ProjectRoot,
		SourceRoot:    opts.SourceRoot,
		ExternalRoots: opts.ExternalRoots,
	}, reporter)
	if err != nil {
		return nil, fmt.Errorf("resolve module graph: %w", err)
	}

	res := &Result{Bag: bag, FileSet: fileSet, Cycles: graph.Cycles}
	for _, info := range graph.Modules {
		res.Order = append(res.Order, info.RelPath)
	}

	modules, byPath, err := lowerModules(ctx, graph, ld, fileSet, bag, jobs)
	if err != nil {
		return nil, err
	}
	res.Modules = modules

	if opts.CheckOnly || bag.HasErrors() {
		finishBag(bag)
		return res, nil
	}

	mode, _ := resolver.ParseRuntimeMode(opts.Runtime)
	emitter := emit.New(modules, byPath, emit.Options{
		RootNamespace:   opts.RootNamespace,
		Mode:            mode,
		EntryPath:       opts.EntryRel,
		ExternalLibs:    opts.ExternalRoots,
		UnionArityLimit: opts.UnionArityLimit,
	}, reporter)

	files, hits, err := renderModules(ctx, emitter, modules, fileSet, bag, jobs, opts)
	if err != nil {
		return nil, err
	}
	res.CacheHits = hits

	out := emitter.Finish(files)
	res.Files = out.Files
	res.Entry = out.Entry

	finishBag(bag)
	return res, nil
}

// lowerModules builds IR for every graph module, fanning out per module.
// Each goroutine reports into its own bag; bags merge in graph order so the
// result is independent of scheduling.
func lowerModules(ctx context.Context, graph *modgraph.Result, ld *loader.Loader, fileSet *source.FileSet, bag *diag.Bag, jobs int) ([]*ir.Module, map[string]*ir.Module, error) {
	builder := irgen.New(graph, ld.Oracle(), fileSet, diag.NopReporter{})

	modules := make([]*ir.Module, len(graph.Modules))
	bags := make([]*diag.Bag, len(graph.Modules))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, info := range graph.Modules {
		i, info := i, info
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			local := diag.NewBag(bag.Cap())
			modules[i] = builder.BuildModule(info, diag.BagReporter{Bag: local})
			bags[i] = local
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	byPath := make(map[string]*ir.Module, len(modules))
	for i, mod := range modules {
		bag.Merge(bags[i])
		byPath[mod.Path] = mod
	}
	return modules, byPath, nil
}

// renderModules renders every module, consulting the disk cache first. The
// module map is read-only during the fan-out; the shared support file is
// synthesized afterwards by Finish.
func renderModules(ctx context.Context, emitter *emit.Emitter, modules []*ir.Module, fileSet *source.FileSet, bag *diag.Bag, jobs int, opts Options) (map[string]string, int, error) {
	keys := moduleKeys(modules, fileSet, opts)

	rendered := make([]emit.RenderedModule, len(modules))
	bags := make([]*diag.Bag, len(modules))
	hits := make([]bool, len(modules))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, mod := range modules {
		i, mod := i, mod
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if cached, ok := lookupCache(opts.Cache, keys[i], mod); ok {
				rendered[i] = cached
				hits[i] = true
				return nil
			}
			local := diag.NewBag(bag.Cap())
			rendered[i] = emitter.RenderModule(mod, diag.BagReporter{Bag: local})
			bags[i] = local
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	files := make(map[string]string, len(modules)+1)
	hitCount := 0
	for i := range modules {
		r := rendered[i]
		files[r.Path] = r.Text
		if hits[i] {
			hitCount++
			emitter.NoteSupport(r.UnionArities, r.NeedsTypeOf)
			continue
		}
		bag.Merge(bags[i])
		// Only clean renders are worth replaying.
		if opts.Cache != nil && !bags[i].HasErrors() {
			storeCache(opts.Cache, keys[i], r)
		}
	}
	return files, hitCount, nil
}

func finishBag(bag *diag.Bag) {
	bag.Sort()
	bag.Dedup()
}

// optionsFingerprint hashes the options that change emitted text, so cache
// entries never cross runs with different settings.
func optionsFingerprint(opts Options) project.Digest {
	h := sha256.New()
	fmt.Fprintf(h, "schema=%d\n", cacheSchemaVersion)
	fmt.Fprintf(h, "ns=%s\n", opts.RootNamespace)
	fmt.Fprintf(h, "runtime=%s\n", opts.Runtime)
	fmt.Fprintf(h, "entry=%s\n", opts.EntryRel)
	fmt.Fprintf(h, "arity=%d\n", opts.UnionArityLimit)
	prefixes := make([]string, 0, len(opts.ExternalRoots))
	for p := range opts.ExternalRoots {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)
	for _, p := range prefixes {
		fmt.Fprintf(h, "ext=%s->%s\n", p, opts.ExternalRoots[p])
	}
	var out project.Digest
	copy(out[:], h.Sum(nil))
	return out
}

// moduleKeys derives each module's cache key: its content hash combined
// with every dependency's content hash (dependencies precede dependents in
// graph order) and the run's option fingerprint.
func moduleKeys(modules []*ir.Module, fileSet *source.FileSet, opts Options) []project.Digest {
	fingerprint := optionsFingerprint(opts)
	byPath := make(map[string]project.Digest, len(modules))
	keys := make([]project.Digest, len(modules))

	for i, mod := range modules {
		var content project.Digest
		if f := fileSet.Get(mod.File); f != nil {
			content = f.Hash
		}
		deps := make([]project.Digest, 0, len(mod.Imports)+1)
		deps = append(deps, fingerprint)
		for _, imp := range mod.Imports {
			if imp.Resolved.Kind != ir.ResolutionLocal {
				continue
			}
			// Modules inside a cycle see a zero digest for unprocessed
			// members, which simply keys them pessimistically.
			deps = append(deps, byPath[imp.Resolved.Path])
		}
		key := project.Combine(content, deps...)
		byPath[mod.Path] = key
		keys[i] = key
	}
	return keys
}
