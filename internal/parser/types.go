package parser

import (
	"strait/internal/token"
	"strait/internal/tsast"
)

// parseType parses a full type, honoring union over intersection
// precedence: A | B & C parses as A | (B & C). Predicate types
// ('param is T') are only legal as full return annotations.
func (p *Parser) parseType() *tsast.Node {
	if p.cur().IdentLike() && p.peek().Kind == token.KwIs {
		from := p.pos
		name := p.parseIdent()
		p.expect(token.KwIs)
		target := p.parseType()
		pred := &tsast.Node{Kind: tsast.KindPredicateType, Name: name, Type: target}
		pred.Span = p.span(from)
		return pred
	}
	first := p.parseIntersectionType()
	if first == nil || !p.at(token.Pipe) {
		return first
	}
	union := &tsast.Node{Kind: tsast.KindUnionType, List: []*tsast.Node{first}, Span: first.Span}
	for p.eat(token.Pipe) {
		member := p.parseIntersectionType()
		if member == nil {
			break
		}
		union.List = append(union.List, member)
		union.Span = union.Span.Cover(member.Span)
	}
	return union
}

func (p *Parser) parseIntersectionType() *tsast.Node {
	first := p.parsePostfixType()
	if first == nil || !p.at(token.Amp) {
		return first
	}
	inter := &tsast.Node{Kind: tsast.KindIntersectionType, List: []*tsast.Node{first}, Span: first.Span}
	for p.eat(token.Amp) {
		member := p.parsePostfixType()
		if member == nil {
			break
		}
		inter.List = append(inter.List, member)
		inter.Span = inter.Span.Cover(member.Span)
	}
	return inter
}

// parsePostfixType handles array suffixes: T[], T[][].
func (p *Parser) parsePostfixType() *tsast.Node {
	t := p.parsePrimaryType()
	for t != nil && p.at(token.LBracket) && p.peek().Kind == token.RBracket {
		p.advance()
		end := p.expect(token.RBracket)
		arr := &tsast.Node{Kind: tsast.KindArrayType, Type: t}
		arr.Span = t.Span.Cover(end.Span)
		t = arr
	}
	return t
}

func (p *Parser) parsePrimaryType() *tsast.Node {
	tok := p.cur()
	switch tok.Kind {
	case token.KwNull:
		p.advance()
		return &tsast.Node{Kind: tsast.KindTypeRef, Span: tok.Span, Text: "null"}
	case token.KwUndefined:
		p.advance()
		return &tsast.Node{Kind: tsast.KindTypeRef, Span: tok.Span, Text: "undefined"}
	case token.Number, token.KwTrue, token.KwFalse:
		p.advance()
		lit := &tsast.Node{Kind: tsast.KindLiteralType, Span: tok.Span, Text: tok.Text}
		return lit
	case token.String:
		p.advance()
		lit := &tsast.Node{Kind: tsast.KindLiteralType, Span: tok.Span, Text: tok.Text}
		lit.Flags |= tsast.FlagShorthand // marks a string literal type
		return lit
	case token.LBracket:
		return p.parseTupleType()
	case token.LBrace:
		return p.parseObjectType()
	case token.LParen:
		return p.parseParenOrFuncType()
	default:
		if !tok.IdentLike() {
			p.errorf(tok.Span, "unexpected %s in type", tok.Kind)
			p.advance()
			return nil
		}
		name := p.parseIdent()
		ref := &tsast.Node{Kind: tsast.KindTypeRef, Span: name.Span, Text: name.Text}
		if p.at(token.Lt) {
			p.advance()
			for !p.at(token.Gt) && !p.at(token.EOF) {
				arg := p.parseType()
				if arg == nil {
					break
				}
				ref.TypeParams = append(ref.TypeParams, arg)
				if !p.eat(token.Comma) {
					break
				}
			}
			end := p.expect(token.Gt)
			ref.Span = ref.Span.Cover(end.Span)
		}
		return ref
	}
}

func (p *Parser) parseTupleType() *tsast.Node {
	from := p.pos
	p.expect(token.LBracket)
	tuple := &tsast.Node{Kind: tsast.KindTupleType}
	for !p.at(token.RBracket) && !p.at(token.EOF) {
		el := p.parseType()
		if el == nil {
			break
		}
		tuple.List = append(tuple.List, el)
		if !p.eat(token.Comma) {
			break
		}
	}
	p.expect(token.RBracket)
	tuple.Span = p.span(from)
	return tuple
}

func (p *Parser) parseObjectType() *tsast.Node {
	from := p.pos
	p.expect(token.LBrace)
	obj := &tsast.Node{Kind: tsast.KindObjectType}
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		member := p.parseTypeMember()
		if member != nil {
			obj.List = append(obj.List, member)
		}
	}
	p.expect(token.RBrace)
	obj.Span = p.span(from)
	return obj
}

// parseParenOrFuncType parses '(params) => T' or a parenthesized type.
func (p *Parser) parseParenOrFuncType() *tsast.Node {
	from := p.pos
	if p.scanAheadIsArrow() || p.scanParenIsParams() {
		params := p.parseParams()
		p.expect(token.FatArrow)
		ret := p.parseType()
		fn := &tsast.Node{Kind: tsast.KindFuncType, Params: params, Type: ret}
		fn.Span = p.span(from)
		return fn
	}
	p.expect(token.LParen)
	inner := p.parseType()
	p.expect(token.RParen)
	return inner
}

// scanParenIsParams detects '() =>' and '(name: ...' shapes that can only
// start a function type.
func (p *Parser) scanParenIsParams() bool {
	if p.peek().Kind == token.RParen {
		return true
	}
	if p.peek().IdentLike() && p.pos+2 < len(p.toks) {
		after := p.toks[p.pos+2].Kind
		return after == token.Colon || after == token.Question || after == token.Comma
	}
	return false
}
