package diagfmt

import (
	"strings"
	"testing"

	"strait/internal/diag"
	"strait/internal/source"
)

func spanOver(fs *source.FileSet, id source.FileID, needle string) source.Span {
	f := fs.Get(id)
	idx := strings.Index(string(f.Content), needle)
	if idx < 0 {
		panic("needle not found: " + needle)
	}
	return source.Span{File: id, Start: uint32(idx), End: uint32(idx + len(needle))}
}

func TestPrettyRendersLineAndCaret(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("main.ts", []byte("let x = 1;\nlet y = oops;\n"))

	bag := diag.NewBag(8)
	bag.Add(diag.NewError(diag.ResUnresolvedImport, spanOver(fs, id, "oops"), "unknown name"))

	var out strings.Builder
	Pretty(&out, bag, fs, PrettyOpts{ShowHints: true, ShowNotes: true})
	got := out.String()

	for _, want := range []string{
		"main.ts:2:9: ERROR STR1001: unknown name",
		"   2 | let y = oops;",
		"     |         ^~~~",
		"1 error",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestPrettyShowsHintAndNotes(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("main.ts", []byte("import { a } from \"./b\";\n"))

	d := diag.NewError(diag.ResMissingExtension, spanOver(fs, id, `"./b"`), "missing extension").
		WithHint(`write "./b.ts"`).
		WithNote(spanOver(fs, id, "import"), "imported here")

	bag := diag.NewBag(8)
	bag.Add(d)

	var out strings.Builder
	Pretty(&out, bag, fs, PrettyOpts{ShowHints: true, ShowNotes: true})
	got := out.String()

	if !strings.Contains(got, `hint: write "./b.ts"`) {
		t.Errorf("missing hint:\n%s", got)
	}
	if !strings.Contains(got, "note: main.ts:1:1: imported here") {
		t.Errorf("missing note:\n%s", got)
	}
}

func TestPrettyTruncatesAtMax(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("main.ts", []byte("aaa\nbbb\nccc\n"))

	bag := diag.NewBag(8)
	for i := uint32(0); i < 3; i++ {
		bag.Add(diag.NewWarning(diag.TypeUnionArityExceeded,
			source.Span{File: id, Start: i * 4, End: i*4 + 3}, "wide union"))
	}

	var out strings.Builder
	Pretty(&out, bag, fs, PrettyOpts{Max: 1})
	got := out.String()

	if !strings.Contains(got, "... and 2 more") {
		t.Errorf("missing truncation marker:\n%s", got)
	}
	if !strings.Contains(got, "3 warnings") {
		t.Errorf("summary should count the whole bag:\n%s", got)
	}
	if strings.Count(got, "wide union") != 1 {
		t.Errorf("want exactly one printed diagnostic:\n%s", got)
	}
}

func TestPrettyPlainWhenColorOff(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("main.ts", []byte("oops\n"))

	bag := diag.NewBag(8)
	bag.Add(diag.NewError(diag.ResUnresolvedImport, spanOver(fs, id, "oops"), "bad"))

	var out strings.Builder
	Pretty(&out, bag, fs, PrettyOpts{Color: false})
	if strings.Contains(out.String(), "\x1b[") {
		t.Errorf("color escapes leaked into plain output:\n%q", out.String())
	}
}
