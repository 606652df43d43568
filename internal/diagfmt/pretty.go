// Package diagfmt renders accumulated diagnostics for humans and tools.
package diagfmt

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"strait/internal/diag"
	"strait/internal/source"
)

// Pretty writes diagnostics in a human-readable form. It walks bag.Items()
// in order (callers sort the bag first). Each diagnostic prints as
//
//	<path>:<line>:<col>: <SEV> <CODE>: <message>
//
// followed by the source line with a caret underline, the hint, and notes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := newPrinter(opts)
	items := bag.Items()
	shown := len(items)
	if opts.Max > 0 && shown > opts.Max {
		shown = opts.Max
	}

	for _, d := range items[:shown] {
		p.printDiagnostic(w, fs, d, opts)
	}
	if shown < len(items) {
		fmt.Fprintf(w, "... and %d more\n", len(items)-shown)
	}
	p.printSummary(w, items)
}

type printer struct {
	errColor  *color.Color
	warnColor *color.Color
	infoColor *color.Color
	codeColor *color.Color
	lineColor *color.Color
}

func newPrinter(opts PrettyOpts) *printer {
	p := &printer{
		errColor:  color.New(color.FgRed, color.Bold),
		warnColor: color.New(color.FgYellow, color.Bold),
		infoColor: color.New(color.FgCyan, color.Bold),
		codeColor: color.New(color.Faint),
		lineColor: color.New(color.FgBlue),
	}
	if !opts.Color {
		for _, c := range []*color.Color{p.errColor, p.warnColor, p.infoColor, p.codeColor, p.lineColor} {
			c.DisableColor()
		}
	}
	return p
}

func (p *printer) severityColor(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.errColor
	case diag.SevWarning:
		return p.warnColor
	default:
		return p.infoColor
	}
}

func (p *printer) printDiagnostic(w io.Writer, fs *source.FileSet, d diag.Diagnostic, opts PrettyOpts) {
	loc := locationText(fs, d.Primary, opts.PathMode)
	sev := p.severityColor(d.Severity).Sprint(d.Severity.String())
	code := p.codeColor.Sprint(d.Code.String())
	fmt.Fprintf(w, "%s: %s %s: %s\n", loc, sev, code, d.Message)

	p.printSpanContext(w, fs, d.Primary, d.Severity)

	if opts.ShowHints && d.Hint != "" {
		fmt.Fprintf(w, "  hint: %s\n", d.Hint)
	}
	if opts.ShowNotes {
		for _, n := range d.Notes {
			fmt.Fprintf(w, "  note: %s: %s\n", locationText(fs, n.Span, opts.PathMode), n.Msg)
		}
	}
}

// printSpanContext prints the offending source line with a caret underline:
//
//	  3 | import { x } from "./gone";
//	    |                   ^~~~~~~~
//
// The underline width follows the display width of the underlined text, so
// wide runes stay covered.
func (p *printer) printSpanContext(w io.Writer, fs *source.FileSet, span source.Span, sev diag.Severity) {
	if fs == nil || span == (source.Span{}) {
		return
	}
	file := fs.Get(span.File)
	if file == nil {
		return
	}
	start, end := fs.Resolve(span)
	line := file.GetLine(start.Line)
	if line == "" && start.Line == 0 {
		return
	}

	gutter := fmt.Sprintf("%4d", start.Line)
	fmt.Fprintf(w, "%s | %s\n", p.lineColor.Sprint(gutter), line)

	prefix, marked := splitAtColumns(line, start, end)
	pad := strings.Repeat(" ", runewidth.StringWidth(prefix))
	width := runewidth.StringWidth(marked)
	if width < 1 {
		width = 1
	}
	underline := "^" + strings.Repeat("~", width-1)
	fmt.Fprintf(w, "     | %s%s\n", pad, p.severityColor(sev).Sprint(underline))
}

// splitAtColumns slices a line at the span's 1-based columns: the text
// before the span and the underlined text. Spans crossing the line end
// underline through the last character.
func splitAtColumns(line string, start, end source.LineCol) (prefix, marked string) {
	runes := []rune(line)
	from := int(start.Col) - 1
	if from < 0 {
		from = 0
	}
	if from > len(runes) {
		from = len(runes)
	}
	to := len(runes)
	if end.Line == start.Line {
		to = int(end.Col) - 1
		if to < from {
			to = from
		}
		if to > len(runes) {
			to = len(runes)
		}
	}
	return string(runes[:from]), string(runes[from:to])
}

func (p *printer) printSummary(w io.Writer, items []diag.Diagnostic) {
	var errs, warns int
	for _, d := range items {
		switch d.Severity {
		case diag.SevError:
			errs++
		case diag.SevWarning:
			warns++
		}
	}
	if errs == 0 && warns == 0 {
		return
	}
	parts := make([]string, 0, 2)
	if errs > 0 {
		parts = append(parts, p.errColor.Sprint(plural(errs, "error")))
	}
	if warns > 0 {
		parts = append(parts, p.warnColor.Sprint(plural(warns, "warning")))
	}
	fmt.Fprintf(w, "%s\n", strings.Join(parts, ", "))
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// locationText formats a span's start position, "<unknown>" for files the
// set does not hold.
func locationText(fs *source.FileSet, span source.Span, mode PathMode) string {
	if fs == nil {
		return "<unknown>"
	}
	file := fs.Get(span.File)
	if file == nil {
		return "<unknown>"
	}
	pos := fs.Position(span)
	return fmt.Sprintf("%s:%d:%d", displayPath(fs, file.Path, mode), pos.Line, pos.Col)
}

func displayPath(fs *source.FileSet, path string, mode PathMode) string {
	switch mode {
	case PathModeAbsolute:
		return path
	case PathModeBasename:
		return filepath.Base(filepath.FromSlash(path))
	default:
		base := fs.BaseDir()
		if base == "" {
			return path
		}
		rel, err := filepath.Rel(base, filepath.FromSlash(path))
		if err != nil || strings.HasPrefix(rel, "..") {
			return path
		}
		return filepath.ToSlash(rel)
	}
}
