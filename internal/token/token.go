package token

import "strait/internal/source"

// Token is a single source token with its location.
type Token struct {
	Kind Kind
	Span source.Span
	Text string
}

// IsKeyword reports whether the token is a language keyword.
func (t Token) IsKeyword() bool {
	return t.Kind >= KwImport && t.Kind <= KwSet
}

// IdentLike reports whether the token can act as an identifier in contexts
// where soft keywords ('from', 'of', 'as', 'is', 'get', 'set') are legal
// names.
func (t Token) IdentLike() bool {
	switch t.Kind {
	case Ident, KwFrom, KwOf, KwAs, KwIs, KwGet, KwSet, KwType:
		return true
	default:
		return false
	}
}
