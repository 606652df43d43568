// Package lexer tokenizes source files for the front end. It reports
// malformed input through diag rather than failing, so a broken file still
// produces a best-effort token stream for later recovery.
package lexer

import (
	"fmt"

	"fortio.org/safecast"

	"strait/internal/diag"
	"strait/internal/source"
	"strait/internal/token"
)

type Lexer struct {
	file     *source.File
	off      uint32
	limit    uint32
	reporter diag.Reporter
}

func New(file *source.File, reporter diag.Reporter) *Lexer {
	limit, err := safecast.Conv[uint32](len(file.Content))
	if err != nil {
		panic(fmt.Errorf("file content length overflow: %w", err))
	}
	return &Lexer{file: file, limit: limit, reporter: reporter}
}

// Tokenize scans the whole file. The returned slice always ends with an EOF
// token.
func Tokenize(file *source.File, reporter diag.Reporter) []token.Token {
	lx := New(file, reporter)
	toks := make([]token.Token, 0, len(file.Content)/4)
	for {
		tok := lx.Next()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks
		}
	}
}

func (lx *Lexer) eof() bool { return lx.off >= lx.limit }

func (lx *Lexer) peek() byte {
	if lx.eof() {
		return 0
	}
	return lx.file.Content[lx.off]
}

func (lx *Lexer) peekAt(n uint32) byte {
	if lx.off+n >= lx.limit {
		return 0
	}
	return lx.file.Content[lx.off+n]
}

func (lx *Lexer) span(start uint32) source.Span {
	return source.Span{File: lx.file.ID, Start: start, End: lx.off}
}

func (lx *Lexer) text(start uint32) string {
	return string(lx.file.Content[start:lx.off])
}

// Next returns the next significant token, skipping whitespace and
// comments. After EOF it keeps returning EOF.
func (lx *Lexer) Next() token.Token {
	lx.skipTrivia()
	start := lx.off
	if lx.eof() {
		return token.Token{Kind: token.EOF, Span: lx.span(start)}
	}

	ch := lx.peek()
	switch {
	case isIdentStart(ch):
		return lx.scanIdentOrKeyword()
	case isDigit(ch):
		return lx.scanNumber()
	case ch == '"' || ch == '\'':
		return lx.scanString(ch)
	case ch == '`':
		lx.reporter.Report(diag.NewError(diag.LangUnsupportedSyntax,
			source.Span{File: lx.file.ID, Start: start, End: start + 1},
			"template literals are not supported"))
		lx.off++
		return lx.Next()
	default:
		return lx.scanPunct()
	}
}

func (lx *Lexer) skipTrivia() {
	for !lx.eof() {
		ch := lx.peek()
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			lx.off++
		case ch == '/' && lx.peekAt(1) == '/':
			for !lx.eof() && lx.peek() != '\n' {
				lx.off++
			}
		case ch == '/' && lx.peekAt(1) == '*':
			start := lx.off
			lx.off += 2
			closed := false
			for !lx.eof() {
				if lx.peek() == '*' && lx.peekAt(1) == '/' {
					lx.off += 2
					closed = true
					break
				}
				lx.off++
			}
			if !closed {
				lx.reporter.Report(diag.NewError(diag.LangBadLexeme, lx.span(start), "unterminated block comment"))
			}
		default:
			return
		}
	}
}

func (lx *Lexer) scanIdentOrKeyword() token.Token {
	start := lx.off
	for !lx.eof() && isIdentContinue(lx.peek()) {
		lx.off++
	}
	text := lx.text(start)
	if kw, ok := token.LookupKeyword(text); ok {
		return token.Token{Kind: kw, Span: lx.span(start), Text: text}
	}
	return token.Token{Kind: token.Ident, Span: lx.span(start), Text: text}
}

func (lx *Lexer) scanNumber() token.Token {
	start := lx.off
	for !lx.eof() && isDigit(lx.peek()) {
		lx.off++
	}
	if lx.peek() == '.' && isDigit(lx.peekAt(1)) {
		lx.off++
		for !lx.eof() && isDigit(lx.peek()) {
			lx.off++
		}
	}
	if lx.peek() == 'e' || lx.peek() == 'E' {
		save := lx.off
		lx.off++
		if lx.peek() == '+' || lx.peek() == '-' {
			lx.off++
		}
		if !isDigit(lx.peek()) {
			lx.off = save
			lx.reporter.Report(diag.NewError(diag.LangBadLexeme, lx.span(start), "malformed exponent in numeric literal"))
		} else {
			for !lx.eof() && isDigit(lx.peek()) {
				lx.off++
			}
		}
	}
	return token.Token{Kind: token.Number, Span: lx.span(start), Text: lx.text(start)}
}

func (lx *Lexer) scanString(quote byte) token.Token {
	start := lx.off
	lx.off++ // opening quote
	var out []byte
	for {
		if lx.eof() || lx.peek() == '\n' {
			lx.reporter.Report(diag.NewError(diag.LangBadLexeme, lx.span(start), "unterminated string literal"))
			break
		}
		ch := lx.peek()
		if ch == quote {
			lx.off++
			break
		}
		if ch == '\\' {
			lx.off++
			esc := lx.peek()
			switch esc {
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			case 'r':
				out = append(out, '\r')
			case '\\', '\'', '"', '`':
				out = append(out, esc)
			case '0':
				out = append(out, 0)
			default:
				lx.reporter.Report(diag.NewError(diag.LangBadLexeme,
					source.Span{File: lx.file.ID, Start: lx.off - 1, End: lx.off + 1},
					fmt.Sprintf("unknown escape sequence '\\%c'", esc)))
				out = append(out, esc)
			}
			lx.off++
			continue
		}
		out = append(out, ch)
		lx.off++
	}
	return token.Token{Kind: token.String, Span: lx.span(start), Text: string(out)}
}

func (lx *Lexer) scanPunct() token.Token {
	start := lx.off
	ch := lx.peek()
	two := func(second byte, k token.Kind) (token.Token, bool) {
		if lx.peekAt(1) == second {
			lx.off += 2
			return token.Token{Kind: k, Span: lx.span(start), Text: lx.text(start)}, true
		}
		return token.Token{}, false
	}

	switch ch {
	case '(':
		return lx.one(token.LParen)
	case ')':
		return lx.one(token.RParen)
	case '{':
		return lx.one(token.LBrace)
	case '}':
		return lx.one(token.RBrace)
	case '[':
		return lx.one(token.LBracket)
	case ']':
		return lx.one(token.RBracket)
	case ',':
		return lx.one(token.Comma)
	case ';':
		return lx.one(token.Semicolon)
	case ':':
		return lx.one(token.Colon)
	case '?':
		return lx.one(token.Question)
	case '+':
		return lx.one(token.Plus)
	case '-':
		return lx.one(token.Minus)
	case '*':
		return lx.one(token.Star)
	case '/':
		return lx.one(token.Slash)
	case '%':
		return lx.one(token.Percent)
	case '.':
		if lx.peekAt(1) == '.' && lx.peekAt(2) == '.' {
			lx.off += 3
			return token.Token{Kind: token.Ellipsis, Span: lx.span(start), Text: "..."}
		}
		return lx.one(token.Dot)
	case '=':
		if lx.peekAt(1) == '=' && lx.peekAt(2) == '=' {
			lx.off += 3
			return token.Token{Kind: token.EqEqEq, Span: lx.span(start), Text: "==="}
		}
		if tok, ok := two('>', token.FatArrow); ok {
			return tok
		}
		return lx.one(token.Assign)
	case '!':
		if lx.peekAt(1) == '=' && lx.peekAt(2) == '=' {
			lx.off += 3
			return token.Token{Kind: token.BangEqEq, Span: lx.span(start), Text: "!=="}
		}
		return lx.one(token.Bang)
	case '<':
		if tok, ok := two('=', token.LtEq); ok {
			return tok
		}
		return lx.one(token.Lt)
	case '>':
		if tok, ok := two('=', token.GtEq); ok {
			return tok
		}
		return lx.one(token.Gt)
	case '&':
		if tok, ok := two('&', token.AndAnd); ok {
			return tok
		}
		return lx.one(token.Amp)
	case '|':
		if tok, ok := two('|', token.OrOr); ok {
			return tok
		}
		return lx.one(token.Pipe)
	}

	lx.reporter.Report(diag.NewError(diag.LangBadLexeme,
		source.Span{File: lx.file.ID, Start: start, End: start + 1},
		fmt.Sprintf("unexpected character %q", string(rune(ch)))))
	lx.off++
	return lx.Next()
}

func (lx *Lexer) one(k token.Kind) token.Token {
	start := lx.off
	lx.off++
	return token.Token{Kind: k, Span: lx.span(start), Text: lx.text(start)}
}

func isIdentStart(ch byte) bool {
	return ch == '_' || ch == '$' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentContinue(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
