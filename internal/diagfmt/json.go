package diagfmt

import (
	"encoding/json"
	"io"

	"strait/internal/diag"
	"strait/internal/source"
)

type jsonDiagnostic struct {
	Severity string     `json:"severity"`
	Code     string     `json:"code"`
	Message  string     `json:"message"`
	File     string     `json:"file,omitempty"`
	Line     uint32     `json:"line,omitempty"`
	Col      uint32     `json:"col,omitempty"`
	EndLine  uint32     `json:"endLine,omitempty"`
	EndCol   uint32     `json:"endCol,omitempty"`
	Hint     string     `json:"hint,omitempty"`
	Notes    []jsonNote `json:"notes,omitempty"`
}

type jsonNote struct {
	File    string `json:"file,omitempty"`
	Line    uint32 `json:"line,omitempty"`
	Col     uint32 `json:"col,omitempty"`
	Message string `json:"message"`
}

type jsonReport struct {
	Diagnostics []jsonDiagnostic `json:"diagnostics"`
	Truncated   int              `json:"truncated,omitempty"`
}

// WriteJSON writes diagnostics as one indented JSON document, for editor
// integrations and scripting.
func WriteJSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	items := bag.Items()
	shown := len(items)
	if opts.Max > 0 && shown > opts.Max {
		shown = opts.Max
	}

	report := jsonReport{
		Diagnostics: make([]jsonDiagnostic, 0, shown),
		Truncated:   len(items) - shown,
	}
	for _, d := range items[:shown] {
		jd := jsonDiagnostic{
			Severity: d.Severity.String(),
			Code:     d.Code.String(),
			Message:  d.Message,
			Hint:     d.Hint,
		}
		fillSpan(fs, d.Primary, opts.PathMode, &jd)
		if opts.IncludeNotes {
			for _, n := range d.Notes {
				note := jsonNote{Message: n.Msg}
				if file := fileFor(fs, n.Span); file != nil {
					pos := fs.Position(n.Span)
					note.File = displayPath(fs, file.Path, opts.PathMode)
					note.Line = pos.Line
					note.Col = pos.Col
				}
				jd.Notes = append(jd.Notes, note)
			}
		}
		report.Diagnostics = append(report.Diagnostics, jd)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func fillSpan(fs *source.FileSet, span source.Span, mode PathMode, jd *jsonDiagnostic) {
	file := fileFor(fs, span)
	if file == nil {
		return
	}
	start, end := fs.Resolve(span)
	jd.File = displayPath(fs, file.Path, mode)
	jd.Line = start.Line
	jd.Col = start.Col
	jd.EndLine = end.Line
	jd.EndCol = end.Col
}

func fileFor(fs *source.FileSet, span source.Span) *source.File {
	if fs == nil || span == (source.Span{}) {
		return nil
	}
	return fs.Get(span.File)
}
