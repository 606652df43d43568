// Package resolver is the cross-cutting naming and type-mapping service:
// it derives target namespaces and container names, escapes identifiers,
// renders IR types as target type syntax, and plans generic specialization.
package resolver

import (
	"sort"
	"strings"
	"sync"

	"strait/internal/ir"
)

// RuntimeMode selects between the two target runtime flavors, which differ
// in array and structural-support code.
type RuntimeMode uint8

const (
	// ModeNative maps arrays to fixed native arrays (T[]).
	ModeNative RuntimeMode = iota
	// ModeManaged maps arrays to growable managed lists (List<T>).
	ModeManaged
)

func (m RuntimeMode) String() string {
	switch m {
	case ModeNative:
		return "native"
	case ModeManaged:
		return "managed"
	}
	return "unknown"
}

// ParseRuntimeMode maps a manifest string to a RuntimeMode.
func ParseRuntimeMode(s string) (RuntimeMode, bool) {
	switch s {
	case "", "native":
		return ModeNative, true
	case "managed":
		return ModeManaged, true
	}
	return ModeNative, false
}

// Options configures a Resolver.
type Options struct {
	RootNamespace string
	Mode          RuntimeMode
	// UnionArityLimit is the largest member count rendered as a tagged
	// union support type; larger unions fall back to the untyped top type.
	UnionArityLimit int
}

// DefaultUnionArityLimit is the documented cutoff between tagged-union
// support types and the untyped fallback. Pragmatic, not principled: the
// manifest can override it.
const DefaultUnionArityLimit = 8

// Resolver renders names and types for one emission run. It records which
// union arities were used so support types can be synthesized once per
// arity and shared.
type Resolver struct {
	opts Options

	// mu guards unionArities; type rendering may run from concurrent
	// per-module emitters.
	mu           sync.Mutex
	unionArities map[int]bool
}

func New(opts Options) *Resolver {
	if opts.RootNamespace == "" {
		opts.RootNamespace = "Strait"
	}
	if opts.UnionArityLimit <= 0 {
		opts.UnionArityLimit = DefaultUnionArityLimit
	}
	return &Resolver{
		opts:         opts,
		unionArities: make(map[int]bool),
	}
}

// Mode returns the configured runtime mode.
func (r *Resolver) Mode() RuntimeMode {
	return r.opts.Mode
}

// RootNamespace returns the configured root namespace.
func (r *Resolver) RootNamespace() string {
	return r.opts.RootNamespace
}

// UnionArityLimit returns the configured cutoff.
func (r *Resolver) UnionArityLimit() int {
	return r.opts.UnionArityLimit
}

// UnionArities returns every arity rendered during the run, sorted.
func (r *Resolver) UnionArities() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, 0, len(r.unionArities))
	for n := range r.unionArities {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// NoteUnionArity marks an arity as rendered, so the per-arity support type
// synthesizes even when the rendering itself was replayed from a cache.
func (r *Resolver) NoteUnionArity(n int) {
	r.mu.Lock()
	r.unionArities[n] = true
	r.mu.Unlock()
}

// NamespaceOf returns the full target namespace of a module: the root
// namespace plus the module's derived path segments.
func (r *Resolver) NamespaceOf(m *ir.Module) string {
	parts := make([]string, 0, len(m.Namespace)+1)
	parts = append(parts, r.opts.RootNamespace)
	parts = append(parts, m.Namespace...)
	return strings.Join(parts, ".")
}

// Qualified returns the globally unambiguous name of a member declared in
// module m: Root.Segments.Container.Member.
func (r *Resolver) Qualified(m *ir.Module, member string) string {
	return r.NamespaceOf(m) + "." + m.Container + "." + Ident(member)
}

// QualifiedType returns the globally unambiguous name of a type declared
// in module m.
func (r *Resolver) QualifiedType(m *ir.Module, name string) string {
	return r.NamespaceOf(m) + "." + m.Container + "." + Ident(name)
}
