package token

// Kind identifies a token class.
type Kind uint8

const (
	EOF Kind = iota
	Ident
	Number
	String

	// Keywords.
	KwImport
	KwExport
	KwFrom
	KwAs
	KwConst
	KwLet
	KwFunction
	KwInterface
	KwType
	KwIf
	KwElse
	KwWhile
	KwFor
	KwOf
	KwReturn
	KwBreak
	KwContinue
	KwYield
	KwAwait
	KwAsync
	KwTrue
	KwFalse
	KwNull
	KwUndefined
	KwTypeof
	KwIs
	KwGet
	KwSet

	// Punctuation and operators.
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Comma
	Semicolon
	Colon
	Dot
	Ellipsis
	Question
	Assign
	FatArrow
	Plus
	Minus
	Star
	Slash
	Percent
	Bang
	Lt
	Gt
	LtEq
	GtEq
	EqEqEq
	BangEqEq
	AndAnd
	OrOr
	Pipe
	Amp
)

var keywords = map[string]Kind{
	"import":    KwImport,
	"export":    KwExport,
	"from":      KwFrom,
	"as":        KwAs,
	"const":     KwConst,
	"let":       KwLet,
	"function":  KwFunction,
	"interface": KwInterface,
	"type":      KwType,
	"if":        KwIf,
	"else":      KwElse,
	"while":     KwWhile,
	"for":       KwFor,
	"of":        KwOf,
	"return":    KwReturn,
	"break":     KwBreak,
	"continue":  KwContinue,
	"yield":     KwYield,
	"await":     KwAwait,
	"async":     KwAsync,
	"true":      KwTrue,
	"false":     KwFalse,
	"null":      KwNull,
	"undefined": KwUndefined,
	"typeof":    KwTypeof,
	"is":        KwIs,
	"get":       KwGet,
	"set":       KwSet,
}

// LookupKeyword maps identifier text to a keyword kind, if any.
func LookupKeyword(text string) (Kind, bool) {
	k, ok := keywords[text]
	return k, ok
}

var kindNames = map[Kind]string{
	EOF:         "EOF",
	Ident:       "identifier",
	Number:      "number",
	String:      "string",
	KwImport:    "'import'",
	KwExport:    "'export'",
	KwFrom:      "'from'",
	KwAs:        "'as'",
	KwConst:     "'const'",
	KwLet:       "'let'",
	KwFunction:  "'function'",
	KwInterface: "'interface'",
	KwType:      "'type'",
	KwIf:        "'if'",
	KwElse:      "'else'",
	KwWhile:     "'while'",
	KwFor:       "'for'",
	KwOf:        "'of'",
	KwReturn:    "'return'",
	KwBreak:     "'break'",
	KwContinue:  "'continue'",
	KwYield:     "'yield'",
	KwAwait:     "'await'",
	KwAsync:     "'async'",
	KwTrue:      "'true'",
	KwFalse:     "'false'",
	KwNull:      "'null'",
	KwUndefined: "'undefined'",
	KwTypeof:    "'typeof'",
	KwIs:        "'is'",
	KwGet:       "'get'",
	KwSet:       "'set'",
	LParen:      "'('",
	RParen:      "')'",
	LBrace:      "'{'",
	RBrace:      "'}'",
	LBracket:    "'['",
	RBracket:    "']'",
	Comma:       "','",
	Semicolon:   "';'",
	Colon:       "':'",
	Dot:         "'.'",
	Ellipsis:    "'...'",
	Question:    "'?'",
	Assign:      "'='",
	FatArrow:    "'=>'",
	Plus:        "'+'",
	Minus:       "'-'",
	Star:        "'*'",
	Slash:       "'/'",
	Percent:     "'%'",
	Bang:        "'!'",
	Lt:          "'<'",
	Gt:          "'>'",
	LtEq:        "'<='",
	GtEq:        "'>='",
	EqEqEq:      "'==='",
	BangEqEq:    "'!=='",
	AndAnd:      "'&&'",
	OrOr:        "'||'",
	Pipe:        "'|'",
	Amp:         "'&'",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}
