package diag

import "strait/internal/source"

// Note attaches a related location to a diagnostic, e.g. every member of an
// import cycle.
type Note struct {
	Span source.Span
	Msg  string
}

// Diagnostic is one reported finding. Diagnostics are values: stages return
// them, they are never thrown.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Hint     string
	Notes    []Note
}

// WithNote returns a copy of the diagnostic with an extra related location.
func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	notes := make([]Note, len(d.Notes), len(d.Notes)+1)
	copy(notes, d.Notes)
	d.Notes = append(notes, Note{Span: sp, Msg: msg})
	return d
}

// WithHint returns a copy of the diagnostic carrying a remediation hint.
func (d Diagnostic) WithHint(hint string) Diagnostic {
	d.Hint = hint
	return d
}

func New(sev Severity, code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
	}
}

func NewError(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

func NewWarning(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevWarning, code, primary, msg)
}
