package irgen

import (
	"strait/internal/diag"
	"strait/internal/ir"
	"strait/internal/loader"
	"strait/internal/tsast"
)

// exprCtx threads the surrounding position's demands into lowering: used
// marks an expression whose value feeds an enclosing construct, and
// expected carries a contextual type for lambdas and object literals.
type exprCtx struct {
	used     bool
	expected *ir.Type
}

func (mb *moduleBuilder) lowerExpr(n *tsast.Node, ctx exprCtx) *ir.Expr {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case tsast.KindNumberLit:
		return &ir.Expr{Kind: ir.ExprLiteral, Span: n.Span,
			Type: ir.NewPrimitive(ir.PrimNumber, n.Span),
			Data: ir.LiteralData{Kind: ir.LitNumber, Text: n.Text}}
	case tsast.KindStringLit:
		return &ir.Expr{Kind: ir.ExprLiteral, Span: n.Span,
			Type: ir.NewPrimitive(ir.PrimString, n.Span),
			Data: ir.LiteralData{Kind: ir.LitString, Text: n.Text}}
	case tsast.KindBoolLit:
		return &ir.Expr{Kind: ir.ExprLiteral, Span: n.Span,
			Type: ir.NewPrimitive(ir.PrimBoolean, n.Span),
			Data: ir.LiteralData{Kind: ir.LitBool, Text: n.Text}}
	case tsast.KindNullLit:
		return &ir.Expr{Kind: ir.ExprLiteral, Span: n.Span,
			Type: ir.NewPrimitive(ir.PrimNull, n.Span),
			Data: ir.LiteralData{Kind: ir.LitNull, Text: "null"}}
	case tsast.KindUndefinedLit:
		return &ir.Expr{Kind: ir.ExprLiteral, Span: n.Span,
			Type: ir.NewPrimitive(ir.PrimUndefined, n.Span),
			Data: ir.LiteralData{Kind: ir.LitUndefined, Text: "undefined"}}

	case tsast.KindIdent:
		return mb.lowerIdent(n)

	case tsast.KindMember:
		obj := mb.lowerExpr(n.Value, exprCtx{used: true})
		return &ir.Expr{Kind: ir.ExprMember, Span: n.Span, Data: ir.MemberData{Object: obj, Name: n.Text}}

	case tsast.KindIndex:
		obj := mb.lowerExpr(n.Value, exprCtx{used: true})
		var idx *ir.Expr
		if len(n.List) > 0 {
			idx = mb.lowerExpr(n.List[0], exprCtx{used: true})
		}
		return &ir.Expr{Kind: ir.ExprIndex, Span: n.Span, Data: ir.IndexData{Object: obj, Index: idx}}

	case tsast.KindCall:
		return mb.lowerCall(n)

	case tsast.KindBinary:
		left := mb.lowerExpr(n.Left, exprCtx{used: true})
		right := mb.lowerExpr(n.Right, exprCtx{used: true})
		return &ir.Expr{Kind: ir.ExprBinary, Span: n.Span,
			Type: binaryType(n.Text, left, right, n),
			Data: ir.BinaryData{Op: n.Text, Left: left, Right: right}}

	case tsast.KindUnary:
		operand := mb.lowerExpr(n.Value, exprCtx{used: true})
		return &ir.Expr{Kind: ir.ExprUnary, Span: n.Span,
			Type: unaryType(n.Text, n),
			Data: ir.UnaryData{Op: n.Text, Operand: operand}}

	case tsast.KindAssign:
		target := mb.lowerExpr(n.Left, exprCtx{used: true})
		var expected *ir.Type
		if target != nil {
			expected = target.Type
		}
		value := mb.lowerExpr(n.Right, exprCtx{used: true, expected: expected})
		return &ir.Expr{Kind: ir.ExprAssign, Span: n.Span, Data: ir.AssignData{Target: target, Value: value}}

	case tsast.KindTernary:
		cond := mb.lowerExpr(n.Cond, exprCtx{used: true})
		then := mb.lowerExpr(n.Value, exprCtx{used: true, expected: ctx.expected})
		alt := mb.lowerExpr(n.Else, exprCtx{used: true, expected: ctx.expected})
		var typ *ir.Type
		if then != nil {
			typ = then.Type
		}
		return &ir.Expr{Kind: ir.ExprTernary, Span: n.Span, Type: typ,
			Data: ir.TernaryData{Cond: cond, Then: then, Else: alt}}

	case tsast.KindParen:
		return mb.lowerExpr(n.Value, ctx)

	case tsast.KindArrow:
		return mb.lowerArrow(n, ctx.expected)

	case tsast.KindObjectLit:
		return mb.lowerObject(n, ctx.expected)

	case tsast.KindArrayLit:
		return mb.lowerArray(n, ctx.expected)

	case tsast.KindYield:
		return mb.lowerYield(n, ctx)

	case tsast.KindAwaitExpr:
		operand := mb.lowerExpr(n.Value, exprCtx{used: true})
		return &ir.Expr{Kind: ir.ExprAwait, Span: n.Span, Data: ir.AwaitData{Operand: operand}}

	default:
		mb.errorf(diag.LangUnsupportedExpr, n.Span, "unsupported expression %s", n.Kind)
		return &ir.Expr{Kind: ir.ExprLiteral, Span: n.Span,
			Data: ir.LiteralData{Kind: ir.LitUndefined, Text: "undefined"}}
	}
}

func (mb *moduleBuilder) lowerIdent(n *tsast.Node) *ir.Expr {
	data := ir.IdentData{Name: n.Text}
	var typ *ir.Type
	if sym, ok := mb.scope.Lookup(n.Text); ok {
		typ = sym.Type
		if sym.Kind == ir.SymImport {
			mb.fillImportTarget(n.Text, &data)
		}
	}
	return &ir.Expr{Kind: ir.ExprIdent, Span: n.Span, Type: typ, Data: data}
}

func (mb *moduleBuilder) fillImportTarget(name string, data *ir.IdentData) {
	for _, imp := range mb.info.Imports {
		for _, binding := range imp.Bindings {
			local := binding.Alias
			if local == "" {
				local = binding.Name
			}
			if local != name {
				continue
			}
			switch imp.Resolved.Kind {
			case ir.ResolutionLocal:
				data.ImportName = binding.Name
				data.ImportPath = imp.Resolved.Path
				if exp, declPath, ok := mb.graph.Export(imp.Resolved.Path, binding.Name); ok {
					data.ImportName = exp.LocalName
					data.ImportPath = declPath
				}
			case ir.ResolutionExternal:
				data.ImportName = binding.Name
				data.ExternalNS = imp.Resolved.Namespace
			}
			return
		}
	}
}

func (mb *moduleBuilder) lowerCall(n *tsast.Node) *ir.Expr {
	callee := mb.lowerExpr(n.Value, exprCtx{used: true})
	sig, _ := mb.signatureFor(n.Value)

	args := make([]*ir.Expr, 0, len(n.List))
	for i, arg := range n.List {
		var expected *ir.Type
		if sig != nil && i < len(sig.Params) && sig.Params[i].Type != nil {
			expected = mb.lowerType(sig.Params[i].Type)
		}
		args = append(args, mb.lowerExpr(arg, exprCtx{used: true, expected: expected}))
	}

	data := ir.CallData{Callee: callee, Args: args}
	if sig.Predicate() {
		data.Predicate = mb.predicateOf(sig)
	}

	var typ *ir.Type
	if sig != nil && sig.Return != nil && sig.Return.Kind != tsast.KindPredicateType {
		typ = mb.lowerType(sig.Return)
	} else if sig.Predicate() {
		typ = ir.NewPrimitive(ir.PrimBoolean, n.Span)
	}
	return &ir.Expr{Kind: ir.ExprCall, Span: n.Span, Type: typ, Data: data}
}

// signatureFor resolves the declared signature of a call's callee when the
// callee is a plain identifier, following imports to the defining module.
func (mb *moduleBuilder) signatureFor(callee *tsast.Node) (*loader.Signature, string) {
	if callee == nil || callee.Kind != tsast.KindIdent {
		return nil, ""
	}
	name := callee.Text
	if declPath, localName, ok := mb.originOf(name); ok {
		if sig, found := mb.oracle.SignatureOf(declPath, localName); found {
			return sig, declPath
		}
		return nil, ""
	}
	if sig, found := mb.oracle.SignatureOf(mb.mod.Path, name); found {
		return sig, mb.mod.Path
	}
	return nil, ""
}

// predicateFor resolves the type-guard predicate of a call, used by
// narrowing detection.
func (mb *moduleBuilder) predicateFor(call *tsast.Node) *ir.Predicate {
	sig, _ := mb.signatureFor(call.Value)
	if !sig.Predicate() {
		return nil
	}
	return mb.predicateOf(sig)
}

func (mb *moduleBuilder) lowerArrow(n *tsast.Node, expected *ir.Type) *ir.Expr {
	var ctxFunc *ir.FuncTypeData
	if expected != nil && expected.Kind == ir.TypeFunc {
		d := expected.Data.(ir.FuncTypeData)
		ctxFunc = &d
	}

	saved := mb.scope
	mb.scope = ir.NewScope(saved)
	mb.pushFn(false, nil)

	params := make([]ir.Param, 0, len(n.Params))
	for i, p := range n.Params {
		param := ir.Param{
			Pattern:  ir.NewIdentPattern(p.Name.Text, p.Name.Span),
			Optional: p.Has(tsast.FlagOptional),
		}
		switch {
		case p.Type != nil:
			param.Type = mb.lowerType(p.Type)
		case ctxFunc != nil && i < len(ctxFunc.Params):
			param.Type = ctxFunc.Params[i].Type
		default:
			mb.errorf(diag.TypeLambdaNoContext, p.Span,
				"cannot infer the type of parameter %q; annotate it or give the lambda a typed context", p.Name.Text)
			param.Type = ir.NewPrimitive(ir.PrimAny, p.Span)
		}
		if p.Value != nil {
			param.Default = mb.lowerExpr(p.Value, exprCtx{used: true, expected: param.Type})
		}
		mb.scope.Declare(p.Name.Text, &ir.Symbol{Kind: ir.SymParam, Type: param.Type})
		params = append(params, param)
	}

	var ret *ir.Type
	switch {
	case n.Type != nil:
		ret = mb.lowerType(n.Type)
	case ctxFunc != nil:
		ret = ctxFunc.Return
	}

	data := ir.LambdaData{Params: params, Return: ret, Async: n.Has(tsast.FlagAsync)}
	if n.Body != nil {
		data.Body = mb.lowerBlock(n.Body)
	} else {
		data.ExprBody = mb.lowerExpr(n.Value, exprCtx{used: true, expected: ret})
		if ret == nil && data.ExprBody != nil {
			ret = data.ExprBody.Type
			data.Return = ret
		}
	}

	mb.popFn()
	mb.scope = saved

	ftParams := make([]ir.FuncTypeParam, 0, len(params))
	for _, p := range params {
		ftParams = append(ftParams, ir.FuncTypeParam{Name: p.Pattern.Name(), Type: p.Type, Optional: p.Optional})
	}
	retType := ret
	if retType == nil {
		retType = ir.NewPrimitive(ir.PrimVoid, n.Span)
	}
	typ := &ir.Type{Kind: ir.TypeFunc, Span: n.Span, Data: ir.FuncTypeData{Params: ftParams, Return: retType}}

	return &ir.Expr{Kind: ir.ExprLambda, Span: n.Span, Type: typ, Data: data}
}

func (mb *moduleBuilder) lowerArray(n *tsast.Node, expected *ir.Type) *ir.Expr {
	var elemExpected *ir.Type
	if expected != nil && expected.Kind == ir.TypeArray {
		elemExpected = expected.Data.(ir.ArrayTypeData).Elem
	}
	elems := make([]*ir.Expr, 0, len(n.List))
	for _, el := range n.List {
		elems = append(elems, mb.lowerExpr(el, exprCtx{used: true, expected: elemExpected}))
	}
	typ := expected
	if typ == nil && len(elems) > 0 && elems[0] != nil && elems[0].Type != nil {
		typ = &ir.Type{Kind: ir.TypeArray, Span: n.Span, Data: ir.ArrayTypeData{Elem: elems[0].Type}}
	}
	return &ir.Expr{Kind: ir.ExprArray, Span: n.Span, Type: typ, Data: ir.ArrayData{Elems: elems}}
}

func (mb *moduleBuilder) lowerYield(n *tsast.Node, ctx exprCtx) *ir.Expr {
	if mb.fn == nil || !mb.fn.generator {
		mb.errorf(diag.LangUnsupportedExpr, n.Span, "yield is only legal directly inside a generator function")
	} else {
		mb.fn.sawYield = true
		if ctx.used {
			mb.fn.bidirectional = true
		}
	}
	var value *ir.Expr
	if n.Value != nil {
		value = mb.lowerExpr(n.Value, exprCtx{used: true})
	}
	return &ir.Expr{Kind: ir.ExprYield, Span: n.Span, Data: ir.YieldData{Value: value, ValueUsed: ctx.used}}
}

func binaryType(op string, left, right *ir.Expr, n *tsast.Node) *ir.Type {
	switch op {
	case "===", "!==", "<", ">", "<=", ">=", "&&", "||":
		if op == "&&" || op == "||" {
			// Logical operators keep their operand type when both sides
			// agree; otherwise the result stays untyped.
			if left != nil && right != nil && left.Type != nil && right.Type != nil &&
				left.Type.Kind == right.Type.Kind {
				return left.Type
			}
			return nil
		}
		return ir.NewPrimitive(ir.PrimBoolean, n.Span)
	case "+":
		if isStringTyped(left) || isStringTyped(right) {
			return ir.NewPrimitive(ir.PrimString, n.Span)
		}
		return ir.NewPrimitive(ir.PrimNumber, n.Span)
	case "-", "*", "/", "%":
		return ir.NewPrimitive(ir.PrimNumber, n.Span)
	}
	return nil
}

func isStringTyped(e *ir.Expr) bool {
	if e == nil || e.Type == nil || e.Type.Kind != ir.TypePrimitive {
		return false
	}
	return e.Type.Data.(ir.PrimitiveType).Prim == ir.PrimString
}

func unaryType(op string, n *tsast.Node) *ir.Type {
	switch op {
	case "!":
		return ir.NewPrimitive(ir.PrimBoolean, n.Span)
	case "-", "+":
		return ir.NewPrimitive(ir.PrimNumber, n.Span)
	case "typeof":
		return ir.NewPrimitive(ir.PrimString, n.Span)
	}
	return nil
}
