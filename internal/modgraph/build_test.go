package modgraph

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"strait/internal/diag"
	"strait/internal/ir"
	"strait/internal/loader"
	"strait/internal/source"
)

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func buildGraph(t *testing.T, dir, entry string, opts Options) (*Result, *diag.Bag) {
	t.Helper()
	bag := diag.NewBag(64)
	ld := loader.New(source.NewFileSetWithBase(dir), diag.BagReporter{Bag: bag})
	if opts.SourceRoot == "" {
		opts.SourceRoot = dir
	}
	if opts.ProjectRoot == "" {
		opts.ProjectRoot = dir
	}
	res, err := Build(filepath.Join(dir, entry), ld, opts, diag.BagReporter{Bag: bag})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return res, bag
}

func hasCode(bag *diag.Bag, code diag.Code) bool {
	for _, d := range bag.Items() {
		if d.Code == code {
			return true
		}
	}
	return false
}

func TestMissingExtensionRejected(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"main.ts":  `import { helper } from "./utils";` + "\n" + `export function main(): void {}`,
		"utils.ts": `export function helper(): void {}`,
	})
	_, bag := buildGraph(t, dir, "main.ts", Options{})
	if !hasCode(bag, diag.ResMissingExtension) {
		t.Fatalf("expected ResMissingExtension, got %v", bag.Items())
	}
}

func TestExtensionResolves(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"main.ts":  `import { helper } from "./utils.ts";` + "\n" + `export function main(): void { helper(); }`,
		"utils.ts": `export function helper(): void {}`,
	})
	res, bag := buildGraph(t, dir, "main.ts", Options{})
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	if len(res.Modules) != 2 {
		t.Fatalf("module count = %d, want 2", len(res.Modules))
	}
	// Depth-first post-order: the dependency come first.
	if !strings.HasSuffix(res.Modules[0].Path, "utils.ts") {
		t.Fatalf("order[0] = %s, want utils.ts first", res.Modules[0].Path)
	}
	if res.Entry == nil || !strings.HasSuffix(res.Entry.Path, "main.ts") {
		t.Fatal("entry module not identified")
	}
}

func TestExternalRootExcludedFromRecursion(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"main.ts": `import { log } from "std:console";` + "\n" + `export function main(): void { log("hi"); }`,
	})
	res, bag := buildGraph(t, dir, "main.ts", Options{
		ExternalRoots: map[string]string{"std:": "Strait.Std"},
	})
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	if len(res.Modules) != 1 {
		t.Fatalf("module count = %d, want 1", len(res.Modules))
	}
	imp := res.Modules[0].Imports[0]
	if imp.Resolved.Kind != ir.ResolutionExternal || imp.Resolved.Namespace != "Strait.Std" {
		t.Fatalf("resolution = %+v", imp.Resolved)
	}
}

func TestCycleDetection(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"a.ts": `import { b } from "./b.ts";` + "\n" + `export const a: number = 1;`,
		"b.ts": `import { c } from "./c.ts";` + "\n" + `export const b: number = 2;`,
		"c.ts": `import { a } from "./a.ts";` + "\n" + `import { d } from "./d.ts";` + "\n" + `export const c: number = 3;`,
		"d.ts": `export const d: number = 4;`,
	})
	res, bag := buildGraph(t, dir, "a.ts", Options{})
	if len(res.Cycles) != 1 {
		t.Fatalf("cycle groups = %d, want 1", len(res.Cycles))
	}
	group := res.Cycles[0]
	if len(group) != 3 {
		t.Fatalf("cycle group size = %d, want 3 (%v)", len(group), group)
	}
	for _, member := range group {
		if strings.HasSuffix(member, "d.ts") {
			t.Fatal("d.ts must not be part of the cycle group")
		}
	}
	// A cycle is reported but never an error by itself.
	if bag.HasErrors() {
		t.Fatalf("cycle must not be an error: %v", bag.Items())
	}
	if !hasCode(bag, diag.ResImportCycle) {
		t.Fatal("cycle warning missing")
	}
}

func TestForwardExportResolution(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"main.ts": `export { helper as util } from "./utils.ts";`,
		"utils.ts": `export function helper(): void {}
export function other(): void {}`,
	})
	res, bag := buildGraph(t, dir, "main.ts", Options{})
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	exp, declPath, ok := res.Export(res.Entry.Path, "util")
	if !ok {
		t.Fatal("forwarded export not resolvable")
	}
	if exp.Kind != ir.ExportDirect || exp.Name != "helper" {
		t.Fatalf("resolved export = %+v", exp)
	}
	if !strings.HasSuffix(declPath, "utils.ts") {
		t.Fatalf("declaring module = %s", declPath)
	}
}

func TestUnknownReExportRejected(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"main.ts":  `export { missing } from "./utils.ts";`,
		"utils.ts": `export function helper(): void {}`,
	})
	_, bag := buildGraph(t, dir, "main.ts", Options{})
	if !hasCode(bag, diag.ResUnknownReExport) {
		t.Fatalf("expected ResUnknownReExport, got %v", bag.Items())
	}
}

func TestDuplicateExportRejected(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"main.ts": `export function f(): void {}
export { g as f } from "./utils.ts";`,
		"utils.ts": `export function g(): void {}`,
	})
	_, bag := buildGraph(t, dir, "main.ts", Options{})
	if !hasCode(bag, diag.ResAmbiguousReExport) {
		t.Fatalf("expected ResAmbiguousReExport, got %v", bag.Items())
	}
}

func TestDeterministicOrder(t *testing.T) {
	files := map[string]string{
		"main.ts": `import { a } from "./lib/a.ts";
import { b } from "./lib/b.ts";
export function main(): void {}`,
		"lib/a.ts": `export const a: number = 1;`,
		"lib/b.ts": `export const b: number = 2;`,
	}
	dir := writeProject(t, files)
	first, _ := buildGraph(t, dir, "main.ts", Options{})
	second, _ := buildGraph(t, dir, "main.ts", Options{})
	if len(first.Modules) != len(second.Modules) {
		t.Fatal("module counts differ between runs")
	}
	for i := range first.Modules {
		if first.Modules[i].Path != second.Modules[i].Path {
			t.Fatalf("order differs at %d: %s vs %s", i, first.Modules[i].Path, second.Modules[i].Path)
		}
	}
	if !strings.HasSuffix(first.Modules[0].Path, "lib/a.ts") {
		t.Fatalf("order[0] = %s, want lib/a.ts", first.Modules[0].Path)
	}
}
