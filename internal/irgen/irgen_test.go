package irgen

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"strait/internal/diag"
	"strait/internal/ir"
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

func buildModules(t *testing.T, dir, entry string) ([]*ir.Module, *diag.Bag) {
	t.Helper()
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
	modules, _ := New(graph, ld.Oracle(), fs, rep).Build()
	return modules, bag
}

func hasCode(bag *diag.Bag, code diag.Code) bool {
	for _, d := range bag.Items() {
		if d.Code == code {
			return true
		}
	}
	return false
}

func findFunc(t *testing.T, mod *ir.Module, name string) ir.FuncData {
	t.Helper()
	for _, stmt := range mod.Body {
		if stmt.Kind != ir.StmtFunc {
			continue
		}
		fn := stmt.Data.(ir.FuncData)
		if fn.Name == name {
			return fn
		}
	}
	t.Fatalf("function %q not found in %s", name, mod.RelPath)
	return ir.FuncData{}
}

func firstVar(t *testing.T, stmts []*ir.Stmt) ir.VarData {
	t.Helper()
	for _, stmt := range stmts {
		if stmt.Kind == ir.StmtVar {
			return stmt.Data.(ir.VarData)
		}
	}
	t.Fatal("no var statement found")
	return ir.VarData{}
}

func TestAnonStructuralNameIsStable(t *testing.T) {
	files := map[string]string{
		"main.ts": `export function main(): void {
	const p = { x: 1, y: 2 };
}`,
	}
	namePattern := regexp.MustCompile(`^Anon_\d+_\d+$`)

	var names []string
	for run := 0; run < 2; run++ {
		dir := writeProject(t, files)
		modules, bag := buildModules(t, dir, "main.ts")
		if bag.HasErrors() {
			t.Fatalf("unexpected diagnostics: %v", bag.Items())
		}
		fn := findFunc(t, modules[0], "main")
		v := firstVar(t, fn.Body)
		if v.Init == nil || v.Init.Kind != ir.ExprObject {
			t.Fatal("initializer is not an object literal")
		}
		data := v.Init.Data.(ir.ObjectData)
		if data.Struct.Kind != ir.TypeStructural {
			t.Fatalf("struct type kind = %s", data.Struct.Kind)
		}
		name := data.Struct.Data.(ir.StructuralTypeData).SynthName
		if !namePattern.MatchString(name) {
			t.Fatalf("synthesized name %q does not match Anon_<line>_<col>", name)
		}
		names = append(names, name)
	}
	if names[0] != names[1] {
		t.Fatalf("synthesized names differ between runs: %q vs %q", names[0], names[1])
	}
}

func TestAnnotatedLiteralSkipsSynthesis(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"main.ts": `interface Point { x: number; y: number; }
export function main(): void {
	const p: Point = { x: 1, y: 2 };
}`,
	})
	modules, bag := buildModules(t, dir, "main.ts")
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	fn := findFunc(t, modules[0], "main")
	v := firstVar(t, fn.Body)
	data := v.Init.Data.(ir.ObjectData)
	if data.Struct.Kind != ir.TypeRef {
		t.Fatalf("annotated literal type kind = %s, want Ref", data.Struct.Kind)
	}
	if data.Struct.Data.(ir.RefTypeData).Name != "Point" {
		t.Fatal("annotated literal should keep its declared type")
	}
}

func TestIneligibleObjectMembersRejected(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"method", `const o = { greet() { return 1; } };`},
		{"accessor", `const o = { get x() { return 1; } };`},
		{"spread", `const o = { ...other };`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeProject(t, map[string]string{
				"main.ts": `const other = { a: 1 };` + "\n" + tt.src + "\n" + `export function main(): void {}`,
			})
			_, bag := buildModules(t, dir, "main.ts")
			if !hasCode(bag, diag.LangStructuralIneligible) {
				t.Fatalf("expected LangStructuralIneligible, got %v", bag.Items())
			}
		})
	}
}

func TestLambdaInfersFromCallContext(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"main.ts": `function apply(f: (n: number) => number): number { return f(1); }
export function main(): void {
	apply(n => n * 2);
}`,
	})
	_, bag := buildModules(t, dir, "main.ts")
	if bag.HasErrors() {
		t.Fatalf("contextual lambda typing failed: %v", bag.Items())
	}
}

func TestLambdaWithoutContextRejected(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"main.ts": `const f = n => n * 2;
export function main(): void {}`,
	})
	_, bag := buildModules(t, dir, "main.ts")
	if !hasCode(bag, diag.TypeLambdaNoContext) {
		t.Fatalf("expected TypeLambdaNoContext, got %v", bag.Items())
	}
}

func TestGeneratorShapes(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"main.ts": `export function* counter(): number {
	yield 1;
	yield 2;
}
export function* echo(): number {
	const reply = yield 1;
	yield reply;
}
export function plain(): number { return 1; }
export function main(): void {}`,
	})
	modules, bag := buildModules(t, dir, "main.ts")
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	mod := modules[0]
	if got := findFunc(t, mod, "counter").Generator; got != ir.GenPlain {
		t.Fatalf("counter shape = %d, want GenPlain", got)
	}
	if got := findFunc(t, mod, "echo").Generator; got != ir.GenBidirectional {
		t.Fatalf("echo shape = %d, want GenBidirectional", got)
	}
	if got := findFunc(t, mod, "plain").Generator; got != ir.GenNone {
		t.Fatalf("plain shape = %d, want GenNone", got)
	}
}

func TestYieldOutsideGeneratorRejected(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"main.ts": `export function main(): void {
	yield 1;
}`,
	})
	_, bag := buildModules(t, dir, "main.ts")
	if !hasCode(bag, diag.LangUnsupportedExpr) {
		t.Fatalf("expected LangUnsupportedExpr, got %v", bag.Items())
	}
}

func narrowOf(t *testing.T, fn ir.FuncData) *ir.Narrowing {
	t.Helper()
	for _, stmt := range fn.Body {
		if stmt.Kind == ir.StmtIf {
			return stmt.Data.(ir.IfData).Narrow
		}
	}
	t.Fatal("no if statement found")
	return nil
}

func TestTypeofNarrowing(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"main.ts": `export function describe(value: string | number): string {
	if (typeof value === "string") {
		return value;
	}
	return "number";
}
export function main(): void {}`,
	})
	modules, bag := buildModules(t, dir, "main.ts")
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	narrow := narrowOf(t, findFunc(t, modules[0], "describe"))
	if narrow == nil {
		t.Fatal("typeof guard did not narrow")
	}
	if narrow.Kind != ir.NarrowTypeof || narrow.Name != "value" || narrow.Negated {
		t.Fatalf("narrowing = %+v", narrow)
	}
	if narrow.Target.Kind != ir.TypePrimitive ||
		narrow.Target.Data.(ir.PrimitiveType).Prim != ir.PrimString {
		t.Fatalf("narrow target = %+v, want string", narrow.Target)
	}
}

func TestNegatedTypeofFlipsBranch(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"main.ts": `export function f(value: string | number): void {
	if (typeof value !== "string") {
		return;
	}
}
export function main(): void {}`,
	})
	modules, bag := buildModules(t, dir, "main.ts")
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	narrow := narrowOf(t, findFunc(t, modules[0], "f"))
	if narrow == nil || !narrow.Negated {
		t.Fatalf("narrowing = %+v, want negated", narrow)
	}
}

func TestPredicateNarrowing(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"main.ts": `interface Cat { meow: boolean; }
function isCat(pet: unknown): pet is Cat { return true; }
export function handle(pet: unknown): void {
	if (isCat(pet)) {
		const c = pet;
	}
}
export function main(): void {}`,
	})
	modules, bag := buildModules(t, dir, "main.ts")
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	narrow := narrowOf(t, findFunc(t, modules[0], "handle"))
	if narrow == nil {
		t.Fatal("predicate guard did not narrow")
	}
	if narrow.Kind != ir.NarrowPredicate || narrow.Name != "pet" {
		t.Fatalf("narrowing = %+v", narrow)
	}
	if narrow.Target.Kind != ir.TypeRef || narrow.Target.Data.(ir.RefTypeData).Name != "Cat" {
		t.Fatalf("narrow target = %+v, want Cat", narrow.Target)
	}
}

func TestImportedPredicateNarrows(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"guards.ts": `export interface Cat { meow: boolean; }
export function isCat(pet: unknown): pet is Cat { return true; }`,
		"main.ts": `import { isCat } from "./guards.ts";
export function handle(pet: unknown): void {
	if (isCat(pet)) {
		const c = pet;
	}
}
export function main(): void {}`,
	})
	modules, bag := buildModules(t, dir, "main.ts")
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	var entry *ir.Module
	for _, m := range modules {
		if m.RelPath == "main" {
			entry = m
		}
	}
	if entry == nil {
		t.Fatal("entry module not built")
	}
	narrow := narrowOf(t, findFunc(t, entry, "handle"))
	if narrow == nil || narrow.Kind != ir.NarrowPredicate {
		t.Fatalf("narrowing = %+v", narrow)
	}
}

func TestTruthyNarrowingOnNullable(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"main.ts": `export function f(name: string | null): void {
	if (name) {
		const n = name;
	}
}
export function main(): void {}`,
	})
	modules, bag := buildModules(t, dir, "main.ts")
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	narrow := narrowOf(t, findFunc(t, modules[0], "f"))
	if narrow == nil || narrow.Kind != ir.NarrowTruthy {
		t.Fatalf("narrowing = %+v, want truthy", narrow)
	}
	if narrow.Target.Kind != ir.TypePrimitive ||
		narrow.Target.Data.(ir.PrimitiveType).Prim != ir.PrimString {
		t.Fatalf("narrow target = %+v, want string", narrow.Target)
	}
}

func TestAliasExpandsInline(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"main.ts": `type ID = string | number;
export function lookup(id: ID): void {}
export function main(): void {}`,
	})
	modules, bag := buildModules(t, dir, "main.ts")
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	fn := findFunc(t, modules[0], "lookup")
	if fn.Params[0].Type.Kind != ir.TypeUnion {
		t.Fatalf("param type = %s, want the expanded union", fn.Params[0].Type.Kind)
	}
}

func TestGenericAliasSubstitutes(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"main.ts": `type Pair<T> = [T, T];
export function f(p: Pair<number>): void {}
export function main(): void {}`,
	})
	modules, bag := buildModules(t, dir, "main.ts")
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	fn := findFunc(t, modules[0], "f")
	typ := fn.Params[0].Type
	if typ.Kind != ir.TypeTuple {
		t.Fatalf("param type = %s, want Tuple", typ.Kind)
	}
	elems := typ.Data.(ir.TupleTypeData).Elems
	if len(elems) != 2 || elems[0].Kind != ir.TypePrimitive {
		t.Fatalf("tuple elems = %+v", elems)
	}
}

func TestStructuralAliasStaysNominal(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"main.ts": `type Point = { x: number; y: number; };
export function f(p: Point): void {}
export function main(): void {}`,
	})
	modules, bag := buildModules(t, dir, "main.ts")
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	mod := modules[0]
	fn := findFunc(t, mod, "f")
	if fn.Params[0].Type.Kind != ir.TypeRef {
		t.Fatalf("param type = %s, want a nominal reference", fn.Params[0].Type.Kind)
	}
	found := false
	for _, stmt := range mod.Body {
		if stmt.Kind == ir.StmtTypeAlias && stmt.Data.(ir.TypeAliasData).Name == "Point" {
			found = true
		}
	}
	if !found {
		t.Fatal("structural alias must survive as a declaration")
	}
}

func TestDictAliasExpands(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"main.ts": `type Env = { [key: string]: string };
export function f(env: Env): void {}
export function main(): void {}`,
	})
	modules, bag := buildModules(t, dir, "main.ts")
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	fn := findFunc(t, modules[0], "f")
	if fn.Params[0].Type.Kind != ir.TypeDict {
		t.Fatalf("param type = %s, want Dict", fn.Params[0].Type.Kind)
	}
}

func TestRecursiveAliasRejected(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"main.ts": `type Tree = Tree | number;
export function f(t: Tree): void {}
export function main(): void {}`,
	})
	_, bag := buildModules(t, dir, "main.ts")
	if !hasCode(bag, diag.LangUnsupportedType) {
		t.Fatalf("expected LangUnsupportedType, got %v", bag.Items())
	}
}

func TestIntersectionWarns(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"main.ts": `interface A { a: number; }
interface B { b: number; }
export function f(x: A & B): void {}
export function main(): void {}`,
	})
	_, bag := buildModules(t, dir, "main.ts")
	if !hasCode(bag, diag.TypeIntersectionCollapse) {
		t.Fatalf("expected TypeIntersectionCollapse warning, got %v", bag.Items())
	}
	if bag.HasErrors() {
		t.Fatalf("intersection must warn, not fail: %v", bag.Items())
	}
}

func TestNestedFunctionDeclRejected(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"main.ts": `export function main(): void {
	function inner(): void {}
}`,
	})
	_, bag := buildModules(t, dir, "main.ts")
	if !hasCode(bag, diag.LangUnsupportedStmt) {
		t.Fatalf("expected LangUnsupportedStmt, got %v", bag.Items())
	}
}

func TestImportedIdentCarriesOrigin(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"utils.ts": `export function helper(): number { return 1; }`,
		"main.ts": `import { helper as h } from "./utils.ts";
export function main(): void {
	h();
}`,
	})
	modules, bag := buildModules(t, dir, "main.ts")
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	var entry *ir.Module
	for _, m := range modules {
		if m.RelPath == "main" {
			entry = m
		}
	}
	fn := findFunc(t, entry, "main")
	call := fn.Body[0].Data.(ir.ExprStmtData).Expr.Data.(ir.CallData)
	ident := call.Callee.Data.(ir.IdentData)
	if ident.Name != "h" || ident.ImportName != "helper" || ident.ImportPath == "" {
		t.Fatalf("ident = %+v, want aliased import resolved to its origin", ident)
	}
}
