package parser

import (
	"strait/internal/token"
	"strait/internal/tsast"
)

// Binary operator precedence, higher binds tighter.
var binaryPrec = map[token.Kind]int{
	token.OrOr:     1,
	token.AndAnd:   2,
	token.EqEqEq:   3,
	token.BangEqEq: 3,
	token.Lt:       4,
	token.Gt:       4,
	token.LtEq:     4,
	token.GtEq:     4,
	token.Plus:     5,
	token.Minus:    5,
	token.Star:     6,
	token.Slash:    6,
	token.Percent:  6,
}

func (p *Parser) parseExpr() *tsast.Node {
	return p.parseAssignExpr()
}

func (p *Parser) parseAssignExpr() *tsast.Node {
	if p.at(token.KwYield) {
		return p.parseYield()
	}
	if arrow := p.tryParseArrow(); arrow != nil {
		return arrow
	}
	left := p.parseTernary()
	if left == nil {
		return nil
	}
	if p.at(token.Assign) {
		opTok := p.advance()
		right := p.parseAssignExpr()
		node := &tsast.Node{Kind: tsast.KindAssign, Text: opTok.Text, Left: left, Right: right}
		node.Span = left.Span
		if right != nil {
			node.Span = node.Span.Cover(right.Span)
		}
		return node
	}
	return left
}

func (p *Parser) parseYield() *tsast.Node {
	from := p.pos
	p.expect(token.KwYield)
	node := &tsast.Node{Kind: tsast.KindYield}
	switch p.cur().Kind {
	case token.Semicolon, token.RParen, token.RBrace, token.RBracket, token.Comma, token.EOF:
		// bare yield
	default:
		node.Value = p.parseAssignExpr()
	}
	node.Span = p.span(from)
	return node
}

func (p *Parser) parseTernary() *tsast.Node {
	cond := p.parseBinary(0)
	if cond == nil || !p.at(token.Question) {
		return cond
	}
	p.advance()
	then := p.parseAssignExpr()
	p.expect(token.Colon)
	alt := p.parseAssignExpr()
	node := &tsast.Node{Kind: tsast.KindTernary, Cond: cond, Value: then, Else: alt}
	node.Span = cond.Span
	if alt != nil {
		node.Span = node.Span.Cover(alt.Span)
	}
	return node
}

func (p *Parser) parseBinary(minPrec int) *tsast.Node {
	left := p.parseUnary()
	for left != nil {
		prec, ok := binaryPrec[p.cur().Kind]
		if !ok || prec <= minPrec {
			return left
		}
		opTok := p.advance()
		right := p.parseBinary(prec)
		node := &tsast.Node{Kind: tsast.KindBinary, Text: opTok.Text, Left: left, Right: right}
		node.Span = left.Span
		if right != nil {
			node.Span = node.Span.Cover(right.Span)
		}
		left = node
	}
	return left
}

func (p *Parser) parseUnary() *tsast.Node {
	from := p.pos
	switch p.cur().Kind {
	case token.Bang, token.Minus, token.Plus:
		opTok := p.advance()
		operand := p.parseUnary()
		node := &tsast.Node{Kind: tsast.KindUnary, Text: opTok.Text, Value: operand}
		node.Span = p.span(from)
		return node
	case token.KwTypeof:
		p.advance()
		operand := p.parseUnary()
		node := &tsast.Node{Kind: tsast.KindUnary, Text: "typeof", Value: operand}
		node.Span = p.span(from)
		return node
	case token.KwAwait:
		p.advance()
		operand := p.parseUnary()
		node := &tsast.Node{Kind: tsast.KindAwaitExpr, Value: operand}
		node.Span = p.span(from)
		return node
	default:
		return p.parsePostfix()
	}
}

func (p *Parser) parsePostfix() *tsast.Node {
	expr := p.parsePrimary()
	for expr != nil {
		switch p.cur().Kind {
		case token.Dot:
			p.advance()
			name := p.parseIdent()
			node := &tsast.Node{Kind: tsast.KindMember, Value: expr, Text: name.Text}
			node.Span = expr.Span.Cover(name.Span)
			expr = node
		case token.LBracket:
			p.advance()
			index := p.parseExpr()
			end := p.expect(token.RBracket)
			node := &tsast.Node{Kind: tsast.KindIndex, Value: expr, List: []*tsast.Node{index}}
			node.Span = expr.Span.Cover(end.Span)
			expr = node
		case token.LParen:
			p.advance()
			node := &tsast.Node{Kind: tsast.KindCall, Value: expr}
			for !p.at(token.RParen) && !p.at(token.EOF) {
				arg := p.parseAssignExpr()
				if arg == nil {
					break
				}
				node.List = append(node.List, arg)
				if !p.eat(token.Comma) {
					break
				}
			}
			end := p.expect(token.RParen)
			node.Span = expr.Span.Cover(end.Span)
			expr = node
		default:
			return expr
		}
	}
	return expr
}

func (p *Parser) parsePrimary() *tsast.Node {
	tok := p.cur()
	switch tok.Kind {
	case token.Number:
		p.advance()
		return &tsast.Node{Kind: tsast.KindNumberLit, Span: tok.Span, Text: tok.Text}
	case token.String:
		p.advance()
		return &tsast.Node{Kind: tsast.KindStringLit, Span: tok.Span, Text: tok.Text}
	case token.KwTrue, token.KwFalse:
		p.advance()
		return &tsast.Node{Kind: tsast.KindBoolLit, Span: tok.Span, Text: tok.Text}
	case token.KwNull:
		p.advance()
		return &tsast.Node{Kind: tsast.KindNullLit, Span: tok.Span, Text: "null"}
	case token.KwUndefined:
		p.advance()
		return &tsast.Node{Kind: tsast.KindUndefinedLit, Span: tok.Span, Text: "undefined"}
	case token.LBrace:
		return p.parseObjectLit()
	case token.LBracket:
		return p.parseArrayLit()
	case token.LParen:
		from := p.pos
		p.advance()
		inner := p.parseExpr()
		end := p.expect(token.RParen)
		node := &tsast.Node{Kind: tsast.KindParen, Value: inner}
		node.Span = p.toks[from].Span.Cover(end.Span)
		return node
	default:
		if tok.IdentLike() {
			return p.parseIdent()
		}
		p.errorf(tok.Span, "unexpected %s in expression", tok.Kind)
		return nil
	}
}

func (p *Parser) parseObjectLit() *tsast.Node {
	from := p.pos
	p.expect(token.LBrace)
	obj := &tsast.Node{Kind: tsast.KindObjectLit}
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		prop := p.parseObjectMember()
		if prop != nil {
			obj.List = append(obj.List, prop)
		}
		if !p.eat(token.Comma) {
			break
		}
	}
	p.expect(token.RBrace)
	obj.Span = p.span(from)
	return obj
}

// parseObjectMember distinguishes plain properties, shorthand properties,
// method shorthand, accessors, and spread members. The latter three are
// kept in the tree; the IR builder rejects them for structural synthesis.
func (p *Parser) parseObjectMember() *tsast.Node {
	from := p.pos
	if p.at(token.Ellipsis) {
		p.advance()
		value := p.parseAssignExpr()
		return &tsast.Node{Kind: tsast.KindObjectSpread, Span: p.span(from), Value: value}
	}

	if (p.at(token.KwGet) || p.at(token.KwSet)) && p.peek().IdentLike() {
		accessor := p.advance()
		node := &tsast.Node{Kind: tsast.KindObjectAccessor, Text: accessor.Text}
		node.Name = p.parseIdent()
		node.Params = p.parseParams()
		if p.eat(token.Colon) {
			node.Type = p.parseType()
		}
		node.Body = p.parseBlock()
		node.Span = p.span(from)
		return node
	}

	name := p.parseIdent()
	switch p.cur().Kind {
	case token.Colon:
		p.advance()
		value := p.parseAssignExpr()
		node := &tsast.Node{Kind: tsast.KindObjectProp, Name: name, Value: value}
		node.Span = p.span(from)
		return node
	case token.LParen, token.Lt:
		node := &tsast.Node{Kind: tsast.KindObjectMethod, Name: name}
		if p.at(token.Lt) {
			node.TypeParams = p.parseTypeParams()
		}
		node.Params = p.parseParams()
		if p.eat(token.Colon) {
			node.Type = p.parseType()
		}
		node.Body = p.parseBlock()
		node.Span = p.span(from)
		return node
	default:
		node := &tsast.Node{Kind: tsast.KindObjectProp, Flags: tsast.FlagShorthand, Name: name}
		node.Value = &tsast.Node{Kind: tsast.KindIdent, Span: name.Span, Text: name.Text}
		node.Span = p.span(from)
		return node
	}
}

func (p *Parser) parseArrayLit() *tsast.Node {
	from := p.pos
	p.expect(token.LBracket)
	arr := &tsast.Node{Kind: tsast.KindArrayLit}
	for !p.at(token.RBracket) && !p.at(token.EOF) {
		el := p.parseAssignExpr()
		if el == nil {
			break
		}
		arr.List = append(arr.List, el)
		if !p.eat(token.Comma) {
			break
		}
	}
	p.expect(token.RBracket)
	arr.Span = p.span(from)
	return arr
}

// tryParseArrow speculatively parses an arrow function. On failure the
// parser position is restored and nil is returned, so the caller can parse
// the same tokens as an ordinary expression.
func (p *Parser) tryParseArrow() *tsast.Node {
	from := p.pos
	flags := tsast.Flags(0)

	if p.at(token.KwAsync) && (p.peek().Kind == token.LParen || p.peek().IdentLike()) {
		flags |= tsast.FlagAsync
		p.advance()
	}

	switch {
	case p.cur().IdentLike() && p.peek().Kind == token.FatArrow:
		// x => body
		name := p.parseIdent()
		p.expect(token.FatArrow)
		param := &tsast.Node{Kind: tsast.KindParam, Name: name, Span: name.Span}
		return p.finishArrow(from, flags, []*tsast.Node{param}, nil)
	case p.at(token.LParen):
		if !p.scanAheadIsArrow() {
			p.pos = from
			return nil
		}
		params := p.parseParams()
		var ret *tsast.Node
		if p.eat(token.Colon) {
			ret = p.parseType()
		}
		p.expect(token.FatArrow)
		return p.finishArrow(from, flags, params, ret)
	default:
		p.pos = from
		return nil
	}
}

func (p *Parser) finishArrow(from int, flags tsast.Flags, params []*tsast.Node, ret *tsast.Node) *tsast.Node {
	arrow := &tsast.Node{Kind: tsast.KindArrow, Flags: flags, Params: params, Type: ret}
	if p.at(token.LBrace) {
		arrow.Body = p.parseBlock()
	} else {
		arrow.Value = p.parseAssignExpr()
	}
	arrow.Span = p.span(from)
	return arrow
}

// scanAheadIsArrow checks whether the parenthesized group starting at the
// current '(' is followed by '=>' or ': Type =>'.
func (p *Parser) scanAheadIsArrow() bool {
	depth := 0
	i := p.pos
	for ; i < len(p.toks); i++ {
		switch p.toks[i].Kind {
		case token.LParen:
			depth++
		case token.RParen:
			depth--
			if depth == 0 {
				// After the group: '=>' directly, or ': Type =>'.
				if i+1 >= len(p.toks) {
					return false
				}
				next := p.toks[i+1].Kind
				if next == token.FatArrow {
					return true
				}
				if next == token.Colon {
					return p.scanTypeThenArrow(i + 2)
				}
				return false
			}
		case token.EOF:
			return false
		}
	}
	return false
}

// scanTypeThenArrow skips a type annotation starting at index i and reports
// whether it is followed by '=>'. Only bracket balancing is needed; the
// type itself is reparsed properly afterwards.
func (p *Parser) scanTypeThenArrow(i int) bool {
	depth := 0
	for ; i < len(p.toks); i++ {
		switch p.toks[i].Kind {
		case token.LParen, token.LBracket, token.LBrace, token.Lt:
			depth++
		case token.RParen, token.RBracket, token.RBrace, token.Gt:
			if depth == 0 {
				return false
			}
			depth--
		case token.FatArrow:
			if depth == 0 {
				return true
			}
		case token.Semicolon, token.EOF:
			return false
		}
	}
	return false
}
