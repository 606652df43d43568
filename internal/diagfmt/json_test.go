package diagfmt

import (
	"encoding/json"
	"strings"
	"testing"

	"strait/internal/diag"
	"strait/internal/source"
)

func TestWriteJSONRoundTrips(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("util/math.ts", []byte("export const x = oops;\n"))

	bag := diag.NewBag(8)
	bag.Add(diag.NewError(diag.ResUnresolvedReference, spanOver(fs, id, "oops"), "unknown name").
		WithNote(spanOver(fs, id, "x"), "declared here"))

	var out strings.Builder
	if err := WriteJSON(&out, bag, fs, JSONOpts{IncludeNotes: true}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var report struct {
		Diagnostics []struct {
			Severity string `json:"severity"`
			Code     string `json:"code"`
			Message  string `json:"message"`
			File     string `json:"file"`
			Line     uint32 `json:"line"`
			Col      uint32 `json:"col"`
			Notes    []struct {
				Message string `json:"message"`
			} `json:"notes"`
		} `json:"diagnostics"`
	}
	if err := json.Unmarshal([]byte(out.String()), &report); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(report.Diagnostics) != 1 {
		t.Fatalf("diagnostics = %d, want 1", len(report.Diagnostics))
	}
	d := report.Diagnostics[0]
	if d.Severity != "ERROR" || d.Code != "STR1030" {
		t.Errorf("severity/code = %s/%s", d.Severity, d.Code)
	}
	if d.File != "util/math.ts" || d.Line != 1 || d.Col != 18 {
		t.Errorf("position = %s:%d:%d", d.File, d.Line, d.Col)
	}
	if len(d.Notes) != 1 || d.Notes[0].Message != "declared here" {
		t.Errorf("notes = %v", d.Notes)
	}
}

func TestWriteJSONTruncates(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("main.ts", []byte("abc\n"))

	bag := diag.NewBag(8)
	for i := uint32(0); i < 3; i++ {
		bag.Add(diag.NewWarning(diag.TypeUnionArityExceeded,
			source.Span{File: id, Start: i, End: i + 1}, "wide"))
	}

	var out strings.Builder
	if err := WriteJSON(&out, bag, fs, JSONOpts{Max: 2}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	var report struct {
		Diagnostics []json.RawMessage `json:"diagnostics"`
		Truncated   int               `json:"truncated"`
	}
	if err := json.Unmarshal([]byte(out.String()), &report); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(report.Diagnostics) != 2 || report.Truncated != 1 {
		t.Errorf("diagnostics/truncated = %d/%d, want 2/1", len(report.Diagnostics), report.Truncated)
	}
}
