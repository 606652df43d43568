package irgen

import (
	"strait/internal/diag"
	"strait/internal/ir"
	"strait/internal/resolver"
	"strait/internal/tsast"
)

// lowerTopLevel lowers one module-level statement. It returns nil when the
// statement produced only diagnostics or contributes nothing to emission.
func (mb *moduleBuilder) lowerTopLevel(n *tsast.Node) *ir.Stmt {
	switch n.Kind {
	case tsast.KindVarStmt:
		return mb.lowerVarStmt(n)
	case tsast.KindFuncDecl:
		return mb.lowerFuncDecl(n)
	case tsast.KindInterfaceDecl:
		return mb.lowerInterfaceDecl(n)
	case tsast.KindTypeAliasDecl:
		return mb.lowerTypeAliasDecl(n)
	default:
		mb.errorf(diag.LangUnsupportedStmt, n.Span,
			"%s is not supported at module level", n.Kind)
		return nil
	}
}

func (mb *moduleBuilder) lowerStmt(n *tsast.Node) *ir.Stmt {
	switch n.Kind {
	case tsast.KindVarStmt:
		return mb.lowerVarStmt(n)
	case tsast.KindExprStmt:
		expr := mb.lowerExpr(n.Value, exprCtx{})
		return &ir.Stmt{Kind: ir.StmtExpr, Span: n.Span, Data: ir.ExprStmtData{Expr: expr}}
	case tsast.KindReturnStmt:
		var value *ir.Expr
		if n.Value != nil {
			value = mb.lowerExpr(n.Value, exprCtx{used: true})
		}
		return &ir.Stmt{Kind: ir.StmtReturn, Span: n.Span, Data: ir.ReturnData{Value: value}}
	case tsast.KindIfStmt:
		return mb.lowerIf(n)
	case tsast.KindWhileStmt:
		cond := mb.lowerExpr(n.Cond, exprCtx{used: true})
		body := mb.lowerBody(n.Body)
		return &ir.Stmt{Kind: ir.StmtWhile, Span: n.Span, Data: ir.WhileData{Cond: cond, Body: body}}
	case tsast.KindForOfStmt:
		return mb.lowerForOf(n)
	case tsast.KindBreakStmt:
		return &ir.Stmt{Kind: ir.StmtBreak, Span: n.Span, Data: ir.BreakData{}}
	case tsast.KindContinueStmt:
		return &ir.Stmt{Kind: ir.StmtContinue, Span: n.Span, Data: ir.ContinueData{}}
	case tsast.KindBlock:
		saved := mb.scope
		mb.scope = ir.NewScope(saved)
		body := mb.lowerBlock(n)
		mb.scope = saved
		return &ir.Stmt{Kind: ir.StmtBlock, Span: n.Span, Data: ir.BlockData{Body: body}}
	case tsast.KindFuncDecl:
		mb.errorf(diag.LangUnsupportedStmt, n.Span,
			"nested function declarations are not supported; use an arrow function")
		return nil
	default:
		mb.errorf(diag.LangUnsupportedStmt, n.Span, "unsupported statement %s", n.Kind)
		return nil
	}
}

func (mb *moduleBuilder) lowerBlock(block *tsast.Node) []*ir.Stmt {
	out := make([]*ir.Stmt, 0, len(block.List))
	for _, stmt := range block.List {
		if lowered := mb.lowerStmt(stmt); lowered != nil {
			out = append(out, lowered)
		}
	}
	return out
}

// lowerBody lowers an if/while/for body, which may be a block or a single
// statement.
func (mb *moduleBuilder) lowerBody(n *tsast.Node) []*ir.Stmt {
	if n == nil {
		return nil
	}
	if n.Kind == tsast.KindBlock {
		saved := mb.scope
		mb.scope = ir.NewScope(saved)
		body := mb.lowerBlock(n)
		mb.scope = saved
		return body
	}
	if lowered := mb.lowerStmt(n); lowered != nil {
		return []*ir.Stmt{lowered}
	}
	return nil
}

// lowerVarStmt splits a multi-declarator statement into one StmtVar per
// declarator; the target language has no declarator lists with annotations.
func (mb *moduleBuilder) lowerVarStmt(n *tsast.Node) *ir.Stmt {
	var first *ir.Stmt
	var extra []*ir.Stmt
	for _, decl := range n.List {
		lowered := mb.lowerVarDecl(n, decl)
		if first == nil {
			first = lowered
		} else {
			extra = append(extra, lowered)
		}
	}
	if len(extra) == 0 {
		return first
	}
	all := append([]*ir.Stmt{first}, extra...)
	return &ir.Stmt{Kind: ir.StmtBlock, Span: n.Span, Data: ir.BlockData{Body: all}}
}

func (mb *moduleBuilder) lowerVarDecl(stmt, decl *tsast.Node) *ir.Stmt {
	data := ir.VarData{
		Pattern:  ir.NewIdentPattern(decl.Name.Text, decl.Name.Span),
		Const:    stmt.Has(tsast.FlagConst),
		Exported: mb.isExported(stmt, decl.Name.Text),
	}
	if decl.Type != nil {
		data.Type = mb.lowerType(decl.Type)
	}
	if decl.Value != nil {
		ctx := exprCtx{used: true, expected: data.Type}
		data.Init = mb.lowerExpr(decl.Value, ctx)
		if data.Type == nil && data.Init != nil {
			data.Type = data.Init.Type
		}
	}

	sym := &ir.Symbol{Kind: ir.SymVar, Type: data.Type, Exported: data.Exported}
	mb.scope.Declare(decl.Name.Text, sym)

	return &ir.Stmt{Kind: ir.StmtVar, Span: decl.Span, Data: data}
}

func (mb *moduleBuilder) lowerFuncDecl(n *tsast.Node) *ir.Stmt {
	typeParams := mb.lowerTypeParams(n.TypeParams)
	mb.pushFn(n.Has(tsast.FlagGenerator), resolver.TypeParamSet(typeParams))

	saved := mb.scope
	mb.scope = ir.NewScope(saved)

	params := mb.lowerParams(n.Params)

	var ret *ir.Type
	if n.Type != nil {
		ret = mb.lowerType(n.Type)
	}

	body := mb.lowerBlock(n.Body)
	mb.scope = saved
	state := mb.popFn()

	data := ir.FuncData{
		Name:       n.Name.Text,
		TypeParams: typeParams,
		Params:     params,
		Return:     ret,
		Body:       body,
		Async:      n.Has(tsast.FlagAsync),
		Generator:  generatorShape(n, state),
		Exported:   mb.isExported(n, n.Name.Text),
	}
	return &ir.Stmt{Kind: ir.StmtFunc, Span: n.Span, Data: data}
}

// generatorShape classifies a function after its body has been lowered:
// a generator whose yield results feed enclosing expressions needs the
// bidirectional desugaring.
func generatorShape(n *tsast.Node, state *fnState) ir.GeneratorShape {
	if !n.Has(tsast.FlagGenerator) {
		return ir.GenNone
	}
	if state.bidirectional {
		return ir.GenBidirectional
	}
	return ir.GenPlain
}

func (mb *moduleBuilder) lowerParams(list []*tsast.Node) []ir.Param {
	params := make([]ir.Param, 0, len(list))
	for _, p := range list {
		param := ir.Param{
			Pattern:  ir.NewIdentPattern(p.Name.Text, p.Name.Span),
			Optional: p.Has(tsast.FlagOptional),
		}
		if p.Type != nil {
			param.Type = mb.lowerType(p.Type)
		}
		if p.Value != nil {
			param.Default = mb.lowerExpr(p.Value, exprCtx{used: true, expected: param.Type})
		}
		mb.scope.Declare(p.Name.Text, &ir.Symbol{Kind: ir.SymParam, Type: param.Type})
		params = append(params, param)
	}
	return params
}

func (mb *moduleBuilder) lowerInterfaceDecl(n *tsast.Node) *ir.Stmt {
	data := ir.InterfaceData{
		Name:       n.Name.Text,
		TypeParams: mb.lowerTypeParams(n.TypeParams),
		Exported:   mb.isExported(n, n.Name.Text),
	}
	for _, m := range n.List {
		switch m.Kind {
		case tsast.KindPropSig:
			data.Fields = append(data.Fields, ir.StructuralField{
				Name:     m.Name.Text,
				Type:     mb.lowerType(m.Type),
				Optional: m.Has(tsast.FlagOptional),
			})
		case tsast.KindMethodSig:
			// A method signature carries into the target as a
			// function-typed property.
			fn := mb.methodSigType(m)
			data.Fields = append(data.Fields, ir.StructuralField{
				Name:     m.Name.Text,
				Type:     fn,
				Optional: m.Has(tsast.FlagOptional),
			})
		case tsast.KindIndexSig:
			mb.errorf(diag.LangUnsupportedType, m.Span,
				"index signatures belong in a dictionary type alias, not an interface")
		}
	}
	return &ir.Stmt{Kind: ir.StmtInterface, Span: n.Span, Data: data}
}

func (mb *moduleBuilder) methodSigType(m *tsast.Node) *ir.Type {
	params := make([]ir.FuncTypeParam, 0, len(m.Params))
	for _, p := range m.Params {
		fp := ir.FuncTypeParam{Optional: p.Has(tsast.FlagOptional)}
		if p.Name != nil {
			fp.Name = p.Name.Text
		}
		if p.Type != nil {
			fp.Type = mb.lowerType(p.Type)
		} else {
			fp.Type = ir.NewPrimitive(ir.PrimAny, p.Span)
		}
		params = append(params, fp)
	}
	ret := ir.NewPrimitive(ir.PrimVoid, m.Span)
	if m.Type != nil {
		ret = mb.lowerType(m.Type)
	}
	return &ir.Type{Kind: ir.TypeFunc, Span: m.Span, Data: ir.FuncTypeData{Params: params, Return: ret}}
}

// lowerTypeAliasDecl keeps aliases of property-only object types as nominal
// declarations; every other alias was expanded inline at its references and
// emits nothing itself.
func (mb *moduleBuilder) lowerTypeAliasDecl(n *tsast.Node) *ir.Stmt {
	if mb.aliasExpands(n) {
		return nil
	}
	target := mb.lowerType(n.Type)
	return &ir.Stmt{Kind: ir.StmtTypeAlias, Span: n.Span, Data: ir.TypeAliasData{
		Name:       n.Name.Text,
		TypeParams: mb.lowerTypeParams(n.TypeParams),
		Target:     target,
		Exported:   mb.isExported(n, n.Name.Text),
	}}
}

func (mb *moduleBuilder) lowerIf(n *tsast.Node) *ir.Stmt {
	cond := mb.lowerExpr(n.Cond, exprCtx{used: true})
	narrow := mb.detectNarrowing(n.Cond)

	then := mb.lowerBody(n.Body)
	var alt []*ir.Stmt
	if n.Else != nil {
		alt = mb.lowerBody(n.Else)
	}
	return &ir.Stmt{Kind: ir.StmtIf, Span: n.Span, Data: ir.IfData{
		Cond:   cond,
		Then:   then,
		Else:   alt,
		Narrow: narrow,
	}}
}

func (mb *moduleBuilder) lowerForOf(n *tsast.Node) *ir.Stmt {
	iterable := mb.lowerExpr(n.Value, exprCtx{used: true})

	saved := mb.scope
	mb.scope = ir.NewScope(saved)
	mb.scope.Declare(n.Name.Text, &ir.Symbol{Kind: ir.SymVar})
	body := mb.lowerBody(n.Body)
	mb.scope = saved

	return &ir.Stmt{Kind: ir.StmtForOf, Span: n.Span, Data: ir.ForOfData{
		Binding:  ir.NewIdentPattern(n.Name.Text, n.Name.Span),
		Iterable: iterable,
		Body:     body,
		Await:    n.Has(tsast.FlagAwait),
	}}
}

// detectNarrowing inspects an if condition for the guard shapes that narrow
// a binding: a type-guard call, a typeof comparison, or a truthiness check
// on a nullable value. Negation flips the refined branch.
func (mb *moduleBuilder) detectNarrowing(cond *tsast.Node) *ir.Narrowing {
	negated := false
	for cond != nil {
		switch {
		case cond.Kind == tsast.KindParen:
			cond = cond.Value
			continue
		case cond.Kind == tsast.KindUnary && cond.Text == "!":
			negated = !negated
			cond = cond.Value
			continue
		}
		break
	}
	if cond == nil {
		return nil
	}

	switch cond.Kind {
	case tsast.KindCall:
		return mb.narrowFromPredicate(cond, negated)
	case tsast.KindBinary:
		return mb.narrowFromTypeof(cond, negated)
	case tsast.KindIdent:
		return mb.narrowFromTruthy(cond, negated)
	}
	return nil
}

func (mb *moduleBuilder) narrowFromPredicate(call *tsast.Node, negated bool) *ir.Narrowing {
	pred := mb.predicateFor(call)
	if pred == nil {
		return nil
	}
	if pred.ParamIndex >= len(call.List) {
		return nil
	}
	arg := call.List[pred.ParamIndex]
	if arg.Kind != tsast.KindIdent {
		return nil
	}
	return &ir.Narrowing{
		Kind:    ir.NarrowPredicate,
		Name:    arg.Text,
		Target:  pred.Target,
		Negated: negated,
	}
}

var typeofPrimitives = map[string]ir.Primitive{
	"number":  ir.PrimNumber,
	"string":  ir.PrimString,
	"boolean": ir.PrimBoolean,
}

func (mb *moduleBuilder) narrowFromTypeof(bin *tsast.Node, negated bool) *ir.Narrowing {
	switch bin.Text {
	case "===":
	case "!==":
		negated = !negated
	default:
		return nil
	}
	left, right := bin.Left, bin.Right
	if left == nil || right == nil {
		return nil
	}
	if right.Kind == tsast.KindUnary && right.Text == "typeof" {
		left, right = right, left
	}
	if left.Kind != tsast.KindUnary || left.Text != "typeof" {
		return nil
	}
	if left.Value == nil || left.Value.Kind != tsast.KindIdent {
		return nil
	}
	if right.Kind != tsast.KindStringLit {
		return nil
	}
	prim, ok := typeofPrimitives[right.Text]
	if !ok {
		return nil
	}
	return &ir.Narrowing{
		Kind:    ir.NarrowTypeof,
		Name:    left.Value.Text,
		Target:  ir.NewPrimitive(prim, bin.Span),
		Negated: negated,
	}
}

// narrowFromTruthy narrows 'if (x)' when x is declared as a union with an
// absence member and exactly one present member.
func (mb *moduleBuilder) narrowFromTruthy(ident *tsast.Node, negated bool) *ir.Narrowing {
	sym, ok := mb.scope.Lookup(ident.Text)
	if !ok || sym.Type == nil || sym.Type.Kind != ir.TypeUnion {
		return nil
	}
	members := sym.Type.Data.(ir.UnionTypeData).Members
	var present *ir.Type
	sawAbsence := false
	for _, m := range members {
		if m.IsAbsence() {
			sawAbsence = true
			continue
		}
		if present != nil {
			return nil // more than one present member; truthiness narrows nothing useful
		}
		present = m
	}
	if !sawAbsence || present == nil {
		return nil
	}
	return &ir.Narrowing{
		Kind:    ir.NarrowTruthy,
		Name:    ident.Text,
		Target:  present,
		Negated: negated,
	}
}
