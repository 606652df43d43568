package ir

import "strait/internal/source"

// PatternKind enumerates binding pattern kinds. The supported source subset
// only binds simple identifiers, but patterns stay a first-class IR family
// so destructuring can be added without reshaping statements.
type PatternKind uint8

const (
	// PatIdent binds a single name.
	PatIdent PatternKind = iota
)

func (k PatternKind) String() string {
	switch k {
	case PatIdent:
		return "Ident"
	}
	return "Unknown"
}

// Pattern is an IR binding pattern node.
type Pattern struct {
	Kind PatternKind
	Span source.Span
	Data PatternData
}

// PatternData is the sealed payload interface for Pattern.
type PatternData interface {
	patternData()
}

// IdentPattern holds data for PatIdent.
type IdentPattern struct {
	Name string
}

func (IdentPattern) patternData() {}

// NewIdentPattern is a convenience constructor.
func NewIdentPattern(name string, span source.Span) *Pattern {
	return &Pattern{Kind: PatIdent, Span: span, Data: IdentPattern{Name: name}}
}

// Name returns the bound identifier for PatIdent patterns.
func (p *Pattern) Name() string {
	if p == nil {
		return ""
	}
	if d, ok := p.Data.(IdentPattern); ok {
		return d.Name
	}
	return ""
}
