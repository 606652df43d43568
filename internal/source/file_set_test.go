package source

import "testing"

func TestAddVirtualAndResolve(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("main.ts", []byte("const a = 1;\nconst b = 2;\n"))

	start, end := fs.Resolve(Span{File: id, Start: 13, End: 18})
	if start.Line != 2 || start.Col != 1 {
		t.Fatalf("start = %d:%d, want 2:1", start.Line, start.Col)
	}
	if end.Line != 2 || end.Col != 6 {
		t.Fatalf("end = %d:%d, want 2:6", end.Line, end.Col)
	}
}

func TestResolveAtLineBoundaries(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("m.ts", []byte("ab\ncd\nef"))

	tests := []struct {
		off  uint32
		line uint32
		col  uint32
	}{
		{0, 1, 1},
		{1, 1, 2},
		{2, 1, 3}, // the newline itself still belongs to line 1
		{3, 2, 1}, // first byte after a newline starts the next line
		{4, 2, 2},
		{5, 2, 3},
		{6, 3, 1},
		{7, 3, 2},
	}
	for _, tt := range tests {
		got := fs.Position(Span{File: id, Start: tt.off, End: tt.off + 1})
		if got.Line != tt.line || got.Col != tt.col {
			t.Fatalf("offset %d = %d:%d, want %d:%d", tt.off, got.Line, got.Col, tt.line, tt.col)
		}
	}
}

func TestGetLine(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("m.ts", []byte("line one\nline two\nline three"))
	f := fs.Get(id)

	tests := []struct {
		line uint32
		want string
	}{
		{1, "line one"},
		{2, "line two"},
		{3, "line three"},
		{4, ""},
		{0, ""},
	}
	for _, tt := range tests {
		if got := f.GetLine(tt.line); got != tt.want {
			t.Fatalf("GetLine(%d) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func TestNormalizeCRLFAndBOM(t *testing.T) {
	fs := NewFileSet()
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte("a\r\nb\n")...)
	content, hadBOM := removeBOM(raw)
	if !hadBOM {
		t.Fatal("expected BOM to be stripped")
	}
	content, hadCRLF := normalizeCRLF(content)
	if !hadCRLF {
		t.Fatal("expected CRLF to be normalized")
	}
	id := fs.Add("m.ts", content, 0)
	if got := string(fs.Get(id).Content); got != "a\nb\n" {
		t.Fatalf("content = %q, want %q", got, "a\nb\n")
	}
}

func TestPositionIsStable(t *testing.T) {
	content := []byte("export const obj = {\n  a: 1,\n};\n")
	span := Span{Start: 19, End: 20}

	fs1 := NewFileSet()
	span.File = fs1.AddVirtual("m.ts", content)
	p1 := fs1.Position(span)

	fs2 := NewFileSet()
	span.File = fs2.AddVirtual("m.ts", content)
	p2 := fs2.Position(span)

	if p1 != p2 {
		t.Fatalf("positions differ across runs: %v vs %v", p1, p2)
	}
	if p1.Line != 1 || p1.Col != 20 {
		t.Fatalf("position = %d:%d, want 1:20", p1.Line, p1.Col)
	}
}
