package modgraph

import (
	"fmt"
	"sort"
	"strings"

	"strait/internal/diag"
	"strait/internal/ir"
)

// findCycles runs Tarjan's strongly-connected-components algorithm over
// the local-import edges and returns every component with more than one
// member, or with a self edge. Cycles are reported, never fatal.
func findCycles(res *Result) [][]string {
	index := 0
	indices := make(map[string]int)
	lowlink := make(map[string]int)
	onStack := make(map[string]bool)
	var stack []string
	var cycles [][]string

	edges := func(path string) []string {
		mod, ok := res.ByPath[path]
		if !ok {
			return nil
		}
		var out []string
		for _, imp := range mod.Imports {
			if imp.Resolved.Kind == ir.ResolutionLocal {
				if _, known := res.ByPath[imp.Resolved.Path]; known {
					out = append(out, imp.Resolved.Path)
				}
			}
		}
		return out
	}

	var strongConnect func(v string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range edges(v) {
			if _, seen := indices[w]; !seen {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var comp []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				comp = append(comp, w)
				if w == v {
					break
				}
			}
			if len(comp) > 1 || hasSelfEdge(res, comp[0]) {
				sort.Strings(comp)
				cycles = append(cycles, comp)
			}
		}
	}

	// Iterate in module order so component discovery is deterministic.
	for _, mod := range res.Modules {
		if _, seen := indices[mod.Path]; !seen {
			strongConnect(mod.Path)
		}
	}

	sort.Slice(cycles, func(i, j int) bool {
		return cycles[i][0] < cycles[j][0]
	})
	return cycles
}

func hasSelfEdge(res *Result, path string) bool {
	mod, ok := res.ByPath[path]
	if !ok {
		return false
	}
	for _, imp := range mod.Imports {
		if imp.Resolved.Kind == ir.ResolutionLocal && imp.Resolved.Path == path {
			return true
		}
	}
	return false
}

// reportCycles emits one warning per cycle group, carrying every member as
// a related location.
func (b *builder) reportCycles(res *Result) {
	for _, group := range res.Cycles {
		first, ok := res.ByPath[group[0]]
		if !ok {
			continue
		}
		d := diag.NewWarning(diag.ResImportCycle, first.Tree.Span,
			fmt.Sprintf("import cycle between %s", strings.Join(group, ", ")))
		for _, member := range group[1:] {
			if mod, ok := res.ByPath[member]; ok {
				d = d.WithNote(mod.Tree.Span, fmt.Sprintf("%s participates in the cycle", member))
			}
		}
		b.reporter.Report(d)
	}
}
