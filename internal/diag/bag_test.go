package diag

import (
	"testing"

	"strait/internal/source"
)

func TestBagCapAndErrors(t *testing.T) {
	b := NewBag(2)
	if !b.Add(NewWarning(TypeUnionArityExceeded, source.Span{}, "w")) {
		t.Fatal("first add rejected")
	}
	if b.HasErrors() {
		t.Fatal("warning counted as error")
	}
	if !b.Add(NewError(ResMissingExtension, source.Span{}, "e")) {
		t.Fatal("second add rejected")
	}
	if b.Add(NewError(ResMissingExtension, source.Span{}, "overflow")) {
		t.Fatal("cap not enforced")
	}
	if !b.HasErrors() {
		t.Fatal("error not detected")
	}
}

func TestBagSortDeterministic(t *testing.T) {
	mk := func() *Bag {
		b := NewBag(10)
		b.Add(NewError(ResUnresolvedImport, source.Span{File: 1, Start: 5, End: 6}, "b"))
		b.Add(NewWarning(ResImportCycle, source.Span{File: 0, Start: 9, End: 12}, "c"))
		b.Add(NewError(ResMissingExtension, source.Span{File: 0, Start: 9, End: 12}, "a"))
		b.Sort()
		return b
	}
	first, second := mk(), mk()
	for i := range first.Items() {
		if first.Items()[i].Code != second.Items()[i].Code {
			t.Fatalf("sort order differs at %d", i)
		}
	}
	items := first.Items()
	if items[0].Code != ResMissingExtension {
		t.Fatalf("items[0] = %v, want error before warning at same span", items[0].Code)
	}
	if items[2].Code != ResUnresolvedImport {
		t.Fatalf("items[2] = %v, want file 1 last", items[2].Code)
	}
}

func TestMergeWidensCapBeyondSmallIntegerRange(t *testing.T) {
	const total = 70000 // past the uint16 range

	b := NewBag(4)
	other := NewBag(total)
	for i := 0; i < total; i++ {
		other.Add(NewWarning(TypeUnmappable, source.Span{Start: uint32(i)}, "w"))
	}
	b.Merge(other)
	if b.Len() != total {
		t.Fatalf("merged len = %d, want %d", b.Len(), total)
	}
	if b.Cap() < total {
		t.Fatalf("cap = %d after merge, must cover %d items", b.Cap(), total)
	}
}

func TestDedup(t *testing.T) {
	b := NewBag(10)
	sp := source.Span{File: 0, Start: 1, End: 2}
	b.Add(NewError(ResMissingExtension, sp, "x"))
	b.Add(NewError(ResMissingExtension, sp, "x again"))
	b.Dedup()
	if b.Len() != 1 {
		t.Fatalf("len = %d after dedup, want 1", b.Len())
	}
}

func TestCodePhases(t *testing.T) {
	tests := []struct {
		code Code
		want string
	}{
		{ResMissingExtension, "resolution"},
		{TypeLambdaNoContext, "types"},
		{IdentReservedWord, "identifiers"},
		{ExternUnknownNamespace, "interop"},
		{BuildCacheRead, "build"},
		{InternalUnhandledExpr, "internal"},
		{LangStructuralIneligible, "semantics"},
		{MetaMissingEntryPoint, "metadata"},
	}
	for _, tt := range tests {
		if got := tt.code.Phase(); got != tt.want {
			t.Fatalf("%s.Phase() = %q, want %q", tt.code, got, tt.want)
		}
	}
	if !InternalUnhandledExpr.Internal() {
		t.Fatal("internal range not flagged")
	}
	if ResMissingExtension.Internal() {
		t.Fatal("resolution code flagged internal")
	}
}
