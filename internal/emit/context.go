package emit

import (
	"strings"

	"strait/internal/ir"
)

// Context carries the immutable emission state threaded through every
// render function. Updates copy; no render function ever mutates a context
// it received.
type Context struct {
	Module *ir.Module
	Indent int
	// TypeParams holds the generic parameters of the enclosing
	// declaration.
	TypeParams map[string]bool
	// Narrowed maps identifiers to their cast text inside a refined
	// branch.
	Narrowed map[string]string
	// AbsenceAsDefault makes null/undefined literals render as the
	// parametric empty value, for positions typed by a bare generic
	// parameter.
	AbsenceAsDefault bool
	// Generator is non-nil while emitting a bidirectional generator core.
	Generator *generatorFrame
}

const indentUnit = "    "

// Pad returns the current indentation prefix.
func (c Context) Pad() string {
	return strings.Repeat(indentUnit, c.Indent)
}

// Indented returns a copy one level deeper.
func (c Context) Indented() Context {
	c.Indent++
	return c
}

// WithTypeParams returns a copy with the given parameters added in scope.
func (c Context) WithTypeParams(params map[string]bool) Context {
	if len(params) == 0 {
		return c
	}
	merged := make(map[string]bool, len(c.TypeParams)+len(params))
	for name := range c.TypeParams {
		merged[name] = true
	}
	for name := range params {
		merged[name] = true
	}
	c.TypeParams = merged
	return c
}

// WithNarrow returns a copy where references to name render as cast.
func (c Context) WithNarrow(name, cast string) Context {
	narrowed := make(map[string]string, len(c.Narrowed)+1)
	for k, v := range c.Narrowed {
		narrowed[k] = v
	}
	narrowed[name] = cast
	c.Narrowed = narrowed
	return c
}

// WithoutNarrow returns a copy with the narrowing for name dropped, for
// branches the guard does not refine.
func (c Context) WithoutNarrow(name string) Context {
	if _, ok := c.Narrowed[name]; !ok {
		return c
	}
	narrowed := make(map[string]string, len(c.Narrowed))
	for k, v := range c.Narrowed {
		if k != name {
			narrowed[k] = v
		}
	}
	c.Narrowed = narrowed
	return c
}

// WithAbsenceDefault returns a copy that renders absence literals as the
// parametric empty value.
func (c Context) WithAbsenceDefault(on bool) Context {
	c.AbsenceAsDefault = on
	return c
}

// WithGenerator returns a copy carrying the bidirectional generator frame.
func (c Context) WithGenerator(frame *generatorFrame) Context {
	c.Generator = frame
	return c
}
