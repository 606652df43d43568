package emit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"strait/internal/diag"
	"strait/internal/ir"
	"strait/internal/irgen"
	"strait/internal/loader"
	"strait/internal/modgraph"
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

func render(t *testing.T, files map[string]string, entry string, opts Options) (*Output, *diag.Bag) {
	t.Helper()
	dir := writeProject(t, files)
	bag := diag.NewBag(64)
	rep := diag.BagReporter{Bag: bag}
	fs := source.NewFileSetWithBase(dir)
	ld := loader.New(fs, rep)
	graph, err := modgraph.Build(filepath.Join(dir, entry), ld, modgraph.Options{
		ProjectRoot: dir,
		SourceRoot:  dir,
	}, rep)
	if err != nil {
		t.Fatalf("Build graph: %v", err)
	}
	modules, byPath := irgen.New(graph, ld.Oracle(), fs, rep).Build()
	if opts.RootNamespace == "" {
		opts.RootNamespace = "Demo"
	}
	out := New(modules, byPath, opts, rep).Emit()
	return out, bag
}

func fileText(t *testing.T, out *Output, path string) string {
	t.Helper()
	text, ok := out.Files[path]
	if !ok {
		t.Fatalf("output file %q missing; have %v", path, keys(out.Files))
	}
	return text
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func hasCode(bag *diag.Bag, code diag.Code) bool {
	for _, d := range bag.Items() {
		if d.Code == code {
			return true
		}
	}
	return false
}

func TestIntegerLiteralsWiden(t *testing.T) {
	out, bag := render(t, map[string]string{
		"main.ts": `export const answer: number = 42;
export const half: number = 0.5;
`,
	}, "main.ts", Options{})
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	text := fileText(t, out, "main.cs")
	if !strings.Contains(text, "public static readonly double answer = 42.0;") {
		t.Fatalf("integer literal not widened:\n%s", text)
	}
	if !strings.Contains(text, "public static readonly double half = 0.5;") {
		t.Fatalf("fractional literal changed:\n%s", text)
	}
}

func TestUnionArityBoundary(t *testing.T) {
	out, bag := render(t, map[string]string{
		"main.ts": `export function pick(v: "a" | "b" | "c" | "d" | "e" | "f" | "g" | "h"): void {
}
export function wide(v: "a" | "b" | "c" | "d" | "e" | "f" | "g" | "h" | "i"): void {
}
`,
	}, "main.ts", Options{})
	text := fileText(t, out, "main.cs")
	if !strings.Contains(text, "Union8<") {
		t.Fatalf("eight-member union did not use the support type:\n%s", text)
	}
	if !strings.Contains(text, "wide(object v)") {
		t.Fatalf("nine-member union did not fall back to object:\n%s", text)
	}
	if !hasCode(bag, diag.TypeUnionArityExceeded) {
		t.Fatal("missing arity-exceeded warning")
	}
	support := fileText(t, out, "Support.g.cs")
	if !strings.Contains(support, "public sealed class Union8<") {
		t.Fatalf("support file lacks Union8:\n%s", support)
	}
	if strings.Contains(support, "Union9<") {
		t.Fatalf("support file synthesized a union past the limit:\n%s", support)
	}
}

func TestTypeofNarrowingCasts(t *testing.T) {
	out, bag := render(t, map[string]string{
		"main.ts": `export function describe(x: number | string): string {
	if (typeof x === "string") {
		return x;
	}
	return "num";
}
`,
	}, "main.ts", Options{})
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	text := fileText(t, out, "main.cs")
	if !strings.Contains(text, "if (x is string)") {
		t.Fatalf("typeof guard not rewritten to a type test:\n%s", text)
	}
	if !strings.Contains(text, "return ((string)x);") {
		t.Fatalf("narrowed reference not cast:\n%s", text)
	}
}

func TestNegatedGuardRefinesElse(t *testing.T) {
	out, bag := render(t, map[string]string{
		"main.ts": `export function describe(x: number | string): string {
	if (typeof x !== "string") {
		return "num";
	} else {
		return x;
	}
}
`,
	}, "main.ts", Options{})
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	text := fileText(t, out, "main.cs")
	if !strings.Contains(text, "if (!(x is string))") {
		t.Fatalf("negated guard not rewritten:\n%s", text)
	}
	thenPart := text[:strings.Index(text, "else")]
	if strings.Contains(thenPart, "((string)x)") {
		t.Fatalf("cast leaked into the unrefined branch:\n%s", text)
	}
	elsePart := text[strings.Index(text, "else"):]
	if !strings.Contains(elsePart, "return ((string)x);") {
		t.Fatalf("else branch not refined:\n%s", text)
	}
}

func TestPlainGeneratorIsIteratorMethod(t *testing.T) {
	out, bag := render(t, map[string]string{
		"main.ts": `export function* counter(limit: number): Generator<number, void, void> {
	let i = 0;
	while (i < limit) {
		yield i;
		i = i + 1;
	}
}
`,
	}, "main.ts", Options{})
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	text := fileText(t, out, "main.cs")
	if !strings.Contains(text, "public static IEnumerable<double> counter(double limit)") {
		t.Fatalf("generator header wrong:\n%s", text)
	}
	if !strings.Contains(text, "yield return i;") {
		t.Fatalf("yield not rewritten:\n%s", text)
	}
	if strings.Contains(text, "_Exchange") {
		t.Fatalf("plain generator desugared bidirectionally:\n%s", text)
	}
}

func TestBidirectionalGeneratorTrio(t *testing.T) {
	out, bag := render(t, map[string]string{
		"main.ts": `export function* echo(): Generator<number, void, string> {
	const reply = yield 1;
	yield 2;
}
`,
	}, "main.ts", Options{})
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	text := fileText(t, out, "main.cs")
	for _, want := range []string{
		"public sealed class Echo_Exchange",
		"public sealed class Echo_Iterator",
		"internal static IEnumerable<Echo_Exchange> Echo_Core(Echo_Exchange __exchange)",
		"public static Echo_Iterator echo()",
		"public bool Next(string sent, out double value)",
		"yield return __exchange;",
		"var reply = __exchange.Sent;",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("missing %q in:\n%s", want, text)
		}
	}
}

func TestAbsenceInGenericContextUsesDefault(t *testing.T) {
	out, bag := render(t, map[string]string{
		"main.ts": `export function reset<T>(fallback: T | null): T {
	const slot: T = null;
	return slot;
}
`,
	}, "main.ts", Options{})
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	text := fileText(t, out, "main.cs")
	if !strings.Contains(text, "public static T reset<T>(T fallback)") {
		t.Fatalf("nullable type parameter not folded to the bare parameter:\n%s", text)
	}
	if !strings.Contains(text, "T slot = default;") {
		t.Fatalf("absence literal not rewritten to default:\n%s", text)
	}
	if strings.Contains(text, "T?") {
		t.Fatalf("nullable sugar leaked into a generic context:\n%s", text)
	}
	if strings.Contains(text, "= null;") {
		t.Fatalf("null literal assigned to a type parameter:\n%s", text)
	}
}

func TestInterfaceEmitsInstantiableClass(t *testing.T) {
	out, bag := render(t, map[string]string{
		"main.ts": `export interface Point {
	x: number;
	y: number;
}
export const origin: Point = { x: 0, y: 0 };
`,
	}, "main.ts", Options{})
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	text := fileText(t, out, "main.cs")
	if !strings.Contains(text, "public sealed class Point") {
		t.Fatalf("interface did not emit as a class:\n%s", text)
	}
	if !strings.Contains(text, "new Point { x = 0.0, y = 0.0 }") {
		t.Fatalf("annotated literal did not construct the declared type:\n%s", text)
	}
}

func TestImportedCallQualifies(t *testing.T) {
	out, bag := render(t, map[string]string{
		"util.ts": `export function add(a: number, b: number): number {
	return a + b;
}
`,
		"main.ts": `import { add } from "./util.ts";
export const three: number = add(1, 2);
`,
	}, "main.ts", Options{})
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	text := fileText(t, out, "main.cs")
	if !strings.Contains(text, "Demo.Util.add(1.0, 2.0)") {
		t.Fatalf("imported call not fully qualified:\n%s", text)
	}
}

func TestEntryPointResolution(t *testing.T) {
	files := map[string]string{
		"main.ts": `export function main(): void {
}
`,
	}

	out, bag := render(t, files, "main.ts", Options{EntryPath: "main"})
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	if out.Entry == nil {
		t.Fatal("entry point not found")
	}
	if out.Entry.Method != "main" || out.Entry.Container != "Main" {
		t.Fatalf("entry = %+v", out.Entry)
	}

	out, bag = render(t, map[string]string{
		"main.ts": `export function helper(): void {
}
`,
	}, "main.ts", Options{EntryPath: "main"})
	if out.Entry != nil {
		t.Fatalf("entry = %+v, want nil", out.Entry)
	}
	if !hasCode(bag, diag.MetaMissingEntryPoint) {
		t.Fatal("missing entry-point diagnostic")
	}
}

func TestExportClauseMakesDeclarationsPublic(t *testing.T) {
	out, bag := render(t, map[string]string{
		"main.ts": `function main(): void {
}
const limit: number = 10;
export { main, limit };
`,
	}, "main.ts", Options{EntryPath: "main"})
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	text := fileText(t, out, "main.cs")
	if !strings.Contains(text, "public static void main()") {
		t.Fatalf("clause-exported function not public:\n%s", text)
	}
	if !strings.Contains(text, "public static readonly double limit = 10.0;") {
		t.Fatalf("clause-exported const not public:\n%s", text)
	}
	if out.Entry == nil {
		t.Fatal("clause-exported entry function not found")
	}
	if out.Entry.Method != "main" {
		t.Fatalf("entry = %+v", out.Entry)
	}
}

func TestOutputIsDeterministic(t *testing.T) {
	files := map[string]string{
		"main.ts": `export interface Box {
	label: string;
}
export function wrap(v: number | string): Box {
	const b = { label: "x" };
	return { label: "y" };
}
`,
	}
	first, _ := render(t, files, "main.ts", Options{})
	second, _ := render(t, files, "main.ts", Options{})
	if len(first.Files) != len(second.Files) {
		t.Fatalf("file sets differ: %v vs %v", keys(first.Files), keys(second.Files))
	}
	for path, text := range first.Files {
		if second.Files[path] != text {
			t.Fatalf("output for %q differs between runs", path)
		}
	}
}

func TestUntypedInterfaceFieldFallsBack(t *testing.T) {
	// A parse-failed member can reach emission with a nil type when the
	// caller renders despite earlier errors.
	mod := &ir.Module{
		Path:      "main",
		RelPath:   "main",
		Container: "Main",
		Body: []*ir.Stmt{{Kind: ir.StmtInterface, Data: ir.InterfaceData{
			Name:     "Broken",
			Fields:   []ir.StructuralField{{Name: "x"}},
			Exported: true,
		}}},
	}
	bag := diag.NewBag(8)
	rep := diag.BagReporter{Bag: bag}
	out := New([]*ir.Module{mod}, map[string]*ir.Module{"main": mod},
		Options{RootNamespace: "Demo"}, rep).Emit()
	text := fileText(t, out, "main.cs")
	if !strings.Contains(text, "public object x;") {
		t.Fatalf("untyped field did not fall back to object:\n%s", text)
	}
}

func TestTypeofOutsideGuardUsesHelper(t *testing.T) {
	out, bag := render(t, map[string]string{
		"main.ts": `export function kind(x: unknown): string {
	const k = typeof x;
	return k;
}
`,
	}, "main.ts", Options{})
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	text := fileText(t, out, "main.cs")
	if !strings.Contains(text, "Ops.TypeOf(x)") {
		t.Fatalf("typeof not routed through the helper:\n%s", text)
	}
	support := fileText(t, out, "Support.g.cs")
	if !strings.Contains(support, "public static string TypeOf(object value)") {
		t.Fatalf("support file lacks the helper:\n%s", support)
	}
}
