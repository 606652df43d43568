// Package parser builds tsast syntax trees from token streams. It is the
// parsing half of the source-language front end; the rest of the pipeline
// treats its output as opaque and correct.
package parser

import (
	"fmt"

	"strait/internal/diag"
	"strait/internal/lexer"
	"strait/internal/source"
	"strait/internal/token"
	"strait/internal/tsast"
)

type Parser struct {
	toks     []token.Token
	pos      int
	fileID   source.FileID
	reporter diag.Reporter
}

// ParseFile lexes and parses one source file into a SourceFile node.
// Syntax errors are reported and recovered from; the returned tree covers
// whatever could be parsed.
func ParseFile(file *source.File, reporter diag.Reporter) *tsast.Node {
	toks := lexer.Tokenize(file, reporter)
	p := &Parser{toks: toks, fileID: file.ID, reporter: reporter}
	return p.parseSourceFile()
}

func (p *Parser) cur() token.Token { return p.toks[p.pos] }

func (p *Parser) peek() token.Token {
	if p.pos+1 < len(p.toks) {
		return p.toks[p.pos+1]
	}
	return p.toks[len(p.toks)-1]
}

func (p *Parser) at(k token.Kind) bool { return p.cur().Kind == k }

func (p *Parser) eat(k token.Kind) bool {
	if p.at(k) {
		p.pos++
		return true
	}
	return false
}

func (p *Parser) advance() token.Token {
	tok := p.cur()
	if tok.Kind != token.EOF {
		p.pos++
	}
	return tok
}

func (p *Parser) expect(k token.Kind) token.Token {
	if p.at(k) {
		return p.advance()
	}
	p.errorf(p.cur().Span, "expected %s, found %s", k, p.cur().Kind)
	return token.Token{Kind: k, Span: p.cur().Span}
}

func (p *Parser) errorf(sp source.Span, format string, args ...any) {
	p.reporter.Report(diag.NewError(diag.LangSyntaxError, sp, fmt.Sprintf(format, args...)))
}

// skipTo advances past the next statement boundary for error recovery.
func (p *Parser) skipTo(kinds ...token.Kind) {
	for !p.at(token.EOF) {
		k := p.cur().Kind
		for _, want := range kinds {
			if k == want {
				p.pos++
				return
			}
		}
		p.pos++
	}
}

func (p *Parser) span(from int) source.Span {
	start := p.toks[from].Span
	if p.pos > from {
		return start.Cover(p.toks[p.pos-1].Span)
	}
	return start
}

func (p *Parser) parseSourceFile() *tsast.Node {
	file := &tsast.Node{Kind: tsast.KindSourceFile}
	if len(p.toks) > 0 {
		file.Span = p.toks[0].Span.Cover(p.toks[len(p.toks)-1].Span)
	}
	for !p.at(token.EOF) {
		before := p.pos
		stmt := p.parseStatement()
		if stmt != nil {
			file.List = append(file.List, stmt)
		}
		if p.pos == before {
			// No progress; skip the offending token so parsing terminates.
			p.errorf(p.cur().Span, "unexpected %s", p.cur().Kind)
			p.pos++
		}
	}
	return file
}

func (p *Parser) parseStatement() *tsast.Node {
	switch p.cur().Kind {
	case token.KwImport:
		return p.parseImport()
	case token.KwExport:
		return p.parseExport()
	case token.KwConst, token.KwLet:
		return p.parseVarStmt(0)
	case token.KwFunction, token.KwAsync:
		if p.cur().Kind == token.KwAsync && p.peek().Kind != token.KwFunction {
			return p.parseExprStmt()
		}
		return p.parseFuncDecl(0)
	case token.KwInterface:
		return p.parseInterface(0)
	case token.KwType:
		if p.peek().Kind == token.Ident || p.peek().IdentLike() {
			return p.parseTypeAlias(0)
		}
		return p.parseExprStmt()
	case token.KwIf:
		return p.parseIf()
	case token.KwWhile:
		return p.parseWhile()
	case token.KwFor:
		return p.parseForOf()
	case token.KwReturn:
		return p.parseReturn()
	case token.KwBreak:
		from := p.pos
		p.advance()
		p.eat(token.Semicolon)
		return &tsast.Node{Kind: tsast.KindBreakStmt, Span: p.span(from)}
	case token.KwContinue:
		from := p.pos
		p.advance()
		p.eat(token.Semicolon)
		return &tsast.Node{Kind: tsast.KindContinueStmt, Span: p.span(from)}
	case token.LBrace:
		return p.parseBlock()
	default:
		return p.parseExprStmt()
	}
}

// parseIdent accepts identifiers plus soft keywords usable as names.
func (p *Parser) parseIdent() *tsast.Node {
	tok := p.cur()
	if !tok.IdentLike() {
		p.errorf(tok.Span, "expected identifier, found %s", tok.Kind)
		return &tsast.Node{Kind: tsast.KindIdent, Span: tok.Span, Text: ""}
	}
	p.advance()
	return &tsast.Node{Kind: tsast.KindIdent, Span: tok.Span, Text: tok.Text}
}

func (p *Parser) parseImport() *tsast.Node {
	from := p.pos
	p.expect(token.KwImport)
	node := &tsast.Node{Kind: tsast.KindImportDecl}
	p.expect(token.LBrace)
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		spec := &tsast.Node{Kind: tsast.KindImportSpec}
		name := p.parseIdent()
		spec.Text = name.Text
		spec.Span = name.Span
		if p.eat(token.KwAs) {
			spec.Name = p.parseIdent()
			spec.Span = spec.Span.Cover(spec.Name.Span)
		}
		node.List = append(node.List, spec)
		if !p.eat(token.Comma) {
			break
		}
	}
	p.expect(token.RBrace)
	p.expect(token.KwFrom)
	specTok := p.expect(token.String)
	node.Text = specTok.Text
	p.eat(token.Semicolon)
	node.Span = p.span(from)
	return node
}

func (p *Parser) parseExport() *tsast.Node {
	from := p.pos
	p.expect(token.KwExport)
	switch p.cur().Kind {
	case token.KwConst, token.KwLet:
		return p.parseVarStmt(tsast.FlagExport)
	case token.KwFunction, token.KwAsync:
		return p.parseFuncDecl(tsast.FlagExport)
	case token.KwInterface:
		return p.parseInterface(tsast.FlagExport)
	case token.KwType:
		return p.parseTypeAlias(tsast.FlagExport)
	case token.LBrace:
		node := &tsast.Node{Kind: tsast.KindExportNamed}
		p.expect(token.LBrace)
		for !p.at(token.RBrace) && !p.at(token.EOF) {
			spec := &tsast.Node{Kind: tsast.KindExportSpec}
			name := p.parseIdent()
			spec.Text = name.Text
			spec.Span = name.Span
			if p.eat(token.KwAs) {
				spec.Name = p.parseIdent()
				spec.Span = spec.Span.Cover(spec.Name.Span)
			}
			node.List = append(node.List, spec)
			if !p.eat(token.Comma) {
				break
			}
		}
		p.expect(token.RBrace)
		if p.eat(token.KwFrom) {
			specTok := p.expect(token.String)
			node.Kind = tsast.KindExportFrom
			node.Text = specTok.Text
		}
		p.eat(token.Semicolon)
		node.Span = p.span(from)
		return node
	default:
		p.errorf(p.cur().Span, "unsupported export form")
		p.skipTo(token.Semicolon, token.RBrace)
		return nil
	}
}

func (p *Parser) parseVarStmt(flags tsast.Flags) *tsast.Node {
	from := p.pos
	if p.at(token.KwConst) {
		flags |= tsast.FlagConst
	}
	p.advance() // const | let
	stmt := &tsast.Node{Kind: tsast.KindVarStmt, Flags: flags}
	for {
		decl := &tsast.Node{Kind: tsast.KindVarDecl, Flags: flags}
		decl.Name = p.parseIdent()
		decl.Span = decl.Name.Span
		if p.eat(token.Colon) {
			decl.Type = p.parseType()
		}
		if p.eat(token.Assign) {
			decl.Value = p.parseAssignExpr()
			if decl.Value != nil {
				decl.Span = decl.Span.Cover(decl.Value.Span)
			}
		}
		stmt.List = append(stmt.List, decl)
		if !p.eat(token.Comma) {
			break
		}
	}
	p.eat(token.Semicolon)
	stmt.Span = p.span(from)
	return stmt
}

func (p *Parser) parseFuncDecl(flags tsast.Flags) *tsast.Node {
	from := p.pos
	if p.eat(token.KwAsync) {
		flags |= tsast.FlagAsync
	}
	p.expect(token.KwFunction)
	if p.eat(token.Star) {
		flags |= tsast.FlagGenerator
	}
	fn := &tsast.Node{Kind: tsast.KindFuncDecl, Flags: flags}
	fn.Name = p.parseIdent()
	if p.at(token.Lt) {
		fn.TypeParams = p.parseTypeParams()
	}
	fn.Params = p.parseParams()
	if p.eat(token.Colon) {
		fn.Type = p.parseType()
	}
	fn.Body = p.parseBlock()
	fn.Span = p.span(from)
	return fn
}

func (p *Parser) parseParams() []*tsast.Node {
	p.expect(token.LParen)
	var params []*tsast.Node
	for !p.at(token.RParen) && !p.at(token.EOF) {
		param := &tsast.Node{Kind: tsast.KindParam}
		if p.at(token.Ellipsis) {
			p.errorf(p.cur().Span, "rest parameters are not supported")
			p.advance()
		}
		param.Name = p.parseIdent()
		param.Span = param.Name.Span
		if p.eat(token.Question) {
			param.Flags |= tsast.FlagOptional
		}
		if p.eat(token.Colon) {
			param.Type = p.parseType()
			param.Span = param.Span.Cover(param.Type.Span)
		}
		if p.eat(token.Assign) {
			param.Value = p.parseAssignExpr()
		}
		params = append(params, param)
		if !p.eat(token.Comma) {
			break
		}
	}
	p.expect(token.RParen)
	return params
}

func (p *Parser) parseTypeParams() []*tsast.Node {
	p.expect(token.Lt)
	var out []*tsast.Node
	for !p.at(token.Gt) && !p.at(token.EOF) {
		tp := &tsast.Node{Kind: tsast.KindTypeParam}
		tp.Name = p.parseIdent()
		tp.Span = tp.Name.Span
		if p.at(token.Ident) && p.cur().Text == "extends" {
			p.advance()
			tp.Type = p.parseType()
		}
		if p.eat(token.Assign) {
			tp.Value = p.parseType()
		}
		out = append(out, tp)
		if !p.eat(token.Comma) {
			break
		}
	}
	p.expect(token.Gt)
	return out
}

func (p *Parser) parseInterface(flags tsast.Flags) *tsast.Node {
	from := p.pos
	p.expect(token.KwInterface)
	node := &tsast.Node{Kind: tsast.KindInterfaceDecl, Flags: flags}
	node.Name = p.parseIdent()
	if p.at(token.Lt) {
		node.TypeParams = p.parseTypeParams()
	}
	p.expect(token.LBrace)
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		member := p.parseTypeMember()
		if member != nil {
			node.List = append(node.List, member)
		}
	}
	p.expect(token.RBrace)
	node.Span = p.span(from)
	return node
}

// parseTypeMember parses one interface/object-type member: a property
// signature, a method signature, or an index signature.
func (p *Parser) parseTypeMember() *tsast.Node {
	from := p.pos
	if p.at(token.LBracket) {
		// [key: string]: T
		p.advance()
		sig := &tsast.Node{Kind: tsast.KindIndexSig}
		sig.Name = p.parseIdent()
		p.expect(token.Colon)
		sig.Value = p.parseType() // key type
		p.expect(token.RBracket)
		p.expect(token.Colon)
		sig.Type = p.parseType()
		p.eat(token.Semicolon)
		p.eat(token.Comma)
		sig.Span = p.span(from)
		return sig
	}

	name := p.parseIdent()
	member := &tsast.Node{Name: name, Span: name.Span}
	if p.eat(token.Question) {
		member.Flags |= tsast.FlagOptional
	}
	switch {
	case p.at(token.LParen) || p.at(token.Lt):
		member.Kind = tsast.KindMethodSig
		if p.at(token.Lt) {
			member.TypeParams = p.parseTypeParams()
		}
		member.Params = p.parseParams()
		if p.eat(token.Colon) {
			member.Type = p.parseType()
		}
	case p.eat(token.Colon):
		member.Kind = tsast.KindPropSig
		member.Type = p.parseType()
	default:
		p.errorf(p.cur().Span, "expected ':' or '(' in member signature")
		p.skipTo(token.Semicolon, token.RBrace)
		return nil
	}
	p.eat(token.Semicolon)
	p.eat(token.Comma)
	member.Span = p.span(from)
	return member
}

func (p *Parser) parseTypeAlias(flags tsast.Flags) *tsast.Node {
	from := p.pos
	p.expect(token.KwType)
	node := &tsast.Node{Kind: tsast.KindTypeAliasDecl, Flags: flags}
	node.Name = p.parseIdent()
	if p.at(token.Lt) {
		node.TypeParams = p.parseTypeParams()
	}
	p.expect(token.Assign)
	node.Type = p.parseType()
	p.eat(token.Semicolon)
	node.Span = p.span(from)
	return node
}

func (p *Parser) parseBlock() *tsast.Node {
	from := p.pos
	p.expect(token.LBrace)
	block := &tsast.Node{Kind: tsast.KindBlock}
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		before := p.pos
		stmt := p.parseStatement()
		if stmt != nil {
			block.List = append(block.List, stmt)
		}
		if p.pos == before {
			p.errorf(p.cur().Span, "unexpected %s", p.cur().Kind)
			p.pos++
		}
	}
	p.expect(token.RBrace)
	block.Span = p.span(from)
	return block
}

func (p *Parser) parseIf() *tsast.Node {
	from := p.pos
	p.expect(token.KwIf)
	p.expect(token.LParen)
	node := &tsast.Node{Kind: tsast.KindIfStmt}
	node.Cond = p.parseExpr()
	p.expect(token.RParen)
	node.Body = p.parseStatement()
	if p.eat(token.KwElse) {
		node.Else = p.parseStatement()
	}
	node.Span = p.span(from)
	return node
}

func (p *Parser) parseWhile() *tsast.Node {
	from := p.pos
	p.expect(token.KwWhile)
	p.expect(token.LParen)
	node := &tsast.Node{Kind: tsast.KindWhileStmt}
	node.Cond = p.parseExpr()
	p.expect(token.RParen)
	node.Body = p.parseStatement()
	node.Span = p.span(from)
	return node
}

func (p *Parser) parseForOf() *tsast.Node {
	from := p.pos
	p.expect(token.KwFor)
	node := &tsast.Node{Kind: tsast.KindForOfStmt}
	if p.at(token.KwAwait) {
		p.advance()
		node.Flags |= tsast.FlagAwait
	}
	p.expect(token.LParen)
	if !p.eat(token.KwConst) && !p.eat(token.KwLet) {
		p.errorf(p.cur().Span, "for-of binding must be 'const' or 'let'")
	}
	node.Name = p.parseIdent()
	if !p.eat(token.KwOf) {
		p.errorf(p.cur().Span, "only for-of loops are supported")
		p.skipTo(token.RParen)
	} else {
		node.Value = p.parseExpr()
		p.expect(token.RParen)
	}
	node.Body = p.parseStatement()
	node.Span = p.span(from)
	return node
}

func (p *Parser) parseReturn() *tsast.Node {
	from := p.pos
	p.expect(token.KwReturn)
	node := &tsast.Node{Kind: tsast.KindReturnStmt}
	if !p.at(token.Semicolon) && !p.at(token.RBrace) && !p.at(token.EOF) {
		node.Value = p.parseExpr()
	}
	p.eat(token.Semicolon)
	node.Span = p.span(from)
	return node
}

func (p *Parser) parseExprStmt() *tsast.Node {
	from := p.pos
	expr := p.parseExpr()
	if expr == nil {
		p.skipTo(token.Semicolon, token.RBrace)
		return nil
	}
	p.eat(token.Semicolon)
	return &tsast.Node{Kind: tsast.KindExprStmt, Span: p.span(from), Value: expr}
}
