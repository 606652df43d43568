package resolver

import (
	"fmt"
	"testing"

	"strait/internal/ir"
	"strait/internal/source"
)

func prim(p ir.Primitive) *ir.Type {
	return ir.NewPrimitive(p, source.Span{})
}

func ref(name string, args ...*ir.Type) *ir.Type {
	return &ir.Type{Kind: ir.TypeRef, Data: ir.RefTypeData{Name: name, Args: args}}
}

func union(members ...*ir.Type) *ir.Type {
	return &ir.Type{Kind: ir.TypeUnion, Data: ir.UnionTypeData{Members: members}}
}

func mustText(t *testing.T, r *Resolver, typ *ir.Type, ctx TypeCtx) string {
	t.Helper()
	text, err := r.TypeText(typ, ctx)
	if err != nil {
		t.Fatalf("TypeText: %v", err)
	}
	return text
}

func TestPrimitiveMapping(t *testing.T) {
	r := New(Options{})
	tests := []struct {
		prim ir.Primitive
		want string
	}{
		{ir.PrimNumber, "double"},
		{ir.PrimString, "string"},
		{ir.PrimBoolean, "bool"},
		{ir.PrimVoid, "void"},
		{ir.PrimAny, "object"},
		{ir.PrimUnknown, "object"},
	}
	for _, tt := range tests {
		if got := mustText(t, r, prim(tt.prim), TypeCtx{}); got != tt.want {
			t.Fatalf("%s -> %q, want %q", tt.prim, got, tt.want)
		}
	}
}

func TestArrayModes(t *testing.T) {
	native := New(Options{Mode: ModeNative})
	managed := New(Options{Mode: ModeManaged})
	arr := &ir.Type{Kind: ir.TypeArray, Data: ir.ArrayTypeData{Elem: prim(ir.PrimNumber)}}
	if got := mustText(t, native, arr, TypeCtx{}); got != "double[]" {
		t.Fatalf("native array = %q", got)
	}
	if got := mustText(t, managed, arr, TypeCtx{}); got != "List<double>" {
		t.Fatalf("managed array = %q", got)
	}
}

func TestTupleNesting(t *testing.T) {
	r := New(Options{})
	pair := &ir.Type{Kind: ir.TypeTuple, Data: ir.TupleTypeData{
		Elems: []*ir.Type{prim(ir.PrimNumber), prim(ir.PrimString)},
	}}
	if got := mustText(t, r, pair, TypeCtx{}); got != "(double, string)" {
		t.Fatalf("pair = %q", got)
	}

	var elems []*ir.Type
	for i := 0; i < 9; i++ {
		elems = append(elems, prim(ir.PrimNumber))
	}
	nine := &ir.Type{Kind: ir.TypeTuple, Data: ir.TupleTypeData{Elems: elems}}
	want := "(double, double, double, double, double, double, (double, double, double))"
	if got := mustText(t, r, nine, TypeCtx{}); got != want {
		t.Fatalf("nine-tuple = %q, want %q", got, want)
	}
}

func TestUnionArityBoundary(t *testing.T) {
	r := New(Options{})

	mk := func(n int) *ir.Type {
		members := make([]*ir.Type, 0, n)
		for i := 0; i < n; i++ {
			members = append(members, ref(fmt.Sprintf("T%d", i)))
		}
		return union(members...)
	}

	got8 := mustText(t, r, mk(8), TypeCtx{})
	if got8 != "Union8<T0, T1, T2, T3, T4, T5, T6, T7>" {
		t.Fatalf("8 members = %q", got8)
	}
	got9 := mustText(t, r, mk(9), TypeCtx{})
	if got9 != "object" {
		t.Fatalf("9 members = %q, want object fallback", got9)
	}
	arities := r.UnionArities()
	if len(arities) != 1 || arities[0] != 8 {
		t.Fatalf("recorded arities = %v, want [8]", arities)
	}
}

func TestUnionArityLimitConfigurable(t *testing.T) {
	r := New(Options{UnionArityLimit: 3})
	members := []*ir.Type{ref("A"), ref("B"), ref("C"), ref("D")}
	if got := mustText(t, r, union(members...), TypeCtx{}); got != "object" {
		t.Fatalf("4 members over limit 3 = %q", got)
	}
	if got := mustText(t, r, union(members[:3]...), TypeCtx{}); got != "Union3<A, B, C>" {
		t.Fatalf("3 members = %q", got)
	}
}

func TestNullableSugar(t *testing.T) {
	r := New(Options{})
	nullable := union(prim(ir.PrimString), prim(ir.PrimNull))
	if got := mustText(t, r, nullable, TypeCtx{}); got != "string?" {
		t.Fatalf("string|null = %q", got)
	}

	// Inside a generic type-parameter context the sugar is suppressed.
	tp := union(ref("T"), prim(ir.PrimUndefined))
	ctx := TypeCtx{TypeParams: map[string]bool{"T": true}}
	if got := mustText(t, r, tp, ctx); got != "T" {
		t.Fatalf("T|undefined in generic context = %q", got)
	}
}

func TestUnionWithAbsenceMember(t *testing.T) {
	r := New(Options{})
	u := union(prim(ir.PrimString), prim(ir.PrimNumber), prim(ir.PrimNull))
	if got := mustText(t, r, u, TypeCtx{}); got != "Union2<string, double>?" {
		t.Fatalf("string|number|null = %q", got)
	}
}

func TestFuncTypeMapping(t *testing.T) {
	r := New(Options{})
	fn := &ir.Type{Kind: ir.TypeFunc, Data: ir.FuncTypeData{
		Params: []ir.FuncTypeParam{{Name: "a", Type: prim(ir.PrimNumber)}},
		Return: prim(ir.PrimString),
	}}
	if got := mustText(t, r, fn, TypeCtx{}); got != "Func<double, string>" {
		t.Fatalf("func = %q", got)
	}
	action := &ir.Type{Kind: ir.TypeFunc, Data: ir.FuncTypeData{
		Params: []ir.FuncTypeParam{{Name: "a", Type: prim(ir.PrimNumber)}},
		Return: prim(ir.PrimVoid),
	}}
	if got := mustText(t, r, action, TypeCtx{}); got != "Action<double>" {
		t.Fatalf("action = %q", got)
	}
}

func TestIdentEscaping(t *testing.T) {
	if got := Ident("class"); got != "@class" {
		t.Fatalf("Ident(class) = %q", got)
	}
	if got := Ident("ordinary"); got != "ordinary" {
		t.Fatalf("Ident(ordinary) = %q", got)
	}
}

func TestNamespaceDerivation(t *testing.T) {
	segs := NamespaceSegments("geo/2d-shapes/circle")
	if len(segs) != 2 || segs[0] != "Geo" || segs[1] != "_2dShapes" {
		t.Fatalf("segments = %v", segs)
	}
	if got := ContainerName("geo/2d-shapes/circle"); got != "Circle" {
		t.Fatalf("container = %q", got)
	}
}

func TestQualifiedNames(t *testing.T) {
	r := New(Options{RootNamespace: "Acme"})
	m := &ir.Module{Namespace: []string{"Geo"}, Container: "Shapes"}
	if got := r.Qualified(m, "area"); got != "Acme.Geo.Shapes.area" {
		t.Fatalf("qualified = %q", got)
	}
}

func TestSpecializationPlan(t *testing.T) {
	r := New(Options{})
	structural := &ir.Type{Kind: ir.TypeStructural, Data: ir.StructuralTypeData{
		Fields: []ir.StructuralField{{Name: "x", Type: prim(ir.PrimNumber)}},
	}}
	plan := r.PlanSpecialization("makePoint", []ir.TypeParam{
		{Name: "T", Default: structural},
		{Name: "U"},
	})
	if !plan.Parametric {
		t.Fatal("parametric emission should stay preferred")
	}
	if len(plan.Synthesized) != 1 {
		t.Fatalf("synthesized = %d, want 1", len(plan.Synthesized))
	}
	if plan.Synthesized[0].Name != "MakePoint_TDefault" {
		t.Fatalf("closed name = %q", plan.Synthesized[0].Name)
	}

	simple := r.PlanSpecialization("id", []ir.TypeParam{{Name: "T", Default: ref("string")}})
	if len(simple.Synthesized) != 0 {
		t.Fatal("nominal default must not synthesize a closed type")
	}
}
