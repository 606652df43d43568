package diag

import "strait/internal/source"

// Reporter is the minimal contract phases use to hand off diagnostics.
// Implementations: BagReporter (collects into a Bag), NopReporter.
type Reporter interface {
	Report(d Diagnostic)
}

// BagReporter writes into a *Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d Diagnostic) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(d)
}

// NopReporter discards everything.
type NopReporter struct{}

func (NopReporter) Report(Diagnostic) {}

// Errorf is a convenience for the common error case.
func Errorf(r Reporter, code Code, primary source.Span, msg string) {
	if r == nil {
		return
	}
	r.Report(NewError(code, primary, msg))
}

// Warnf is a convenience for the common warning case.
func Warnf(r Reporter, code Code, primary source.Span, msg string) {
	if r == nil {
		return
	}
	r.Report(NewWarning(code, primary, msg))
}
