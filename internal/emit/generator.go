package emit

import (
	"strait/internal/diag"
	"strait/internal/ir"
	"strait/internal/resolver"
)

// generatorFrame carries bidirectional-core state: the name of the exchange
// binding that yields write to and resumptions read from.
type generatorFrame struct {
	exchangeVar string
}

// emitGenerator dispatches on generator shape. Plain generators map onto
// the target's native iterator methods; bidirectional ones desugar into an
// exchange protocol because the target has no two-way yield.
func (fe *fileEmitter) emitGenerator(ctx Context, stmt *ir.Stmt, fn ir.FuncData) {
	if fn.Generator == ir.GenBidirectional && fn.Async {
		fe.reporter.Report(diag.NewError(diag.LangUnsupportedStmt, stmt.Span,
			"async generators that consume yielded values are not supported"))
		return
	}
	if fn.Generator == ir.GenBidirectional {
		fe.emitBidirectional(ctx, stmt, fn)
		return
	}
	fe.emitPlainGenerator(ctx, stmt, fn)
}

// generatorTypeArgs extracts the yield and resumption types from a
// Generator<Y, R, N> or AsyncGenerator<Y, R, N> return annotation.
func generatorTypeArgs(fn ir.FuncData) (elem, sent *ir.Type) {
	if fn.Return == nil || fn.Return.Kind != ir.TypeRef {
		return nil, nil
	}
	d := fn.Return.Data.(ir.RefTypeData)
	switch d.Name {
	case "Generator", "AsyncGenerator", "IterableIterator", "AsyncIterableIterator":
	default:
		return nil, nil
	}
	if len(d.Args) >= 1 {
		elem = d.Args[0]
	}
	if len(d.Args) >= 3 {
		sent = d.Args[2]
	}
	return elem, sent
}

func (fe *fileEmitter) annotatedText(ctx Context, t *ir.Type, stmt *ir.Stmt) string {
	if t == nil {
		return "object"
	}
	return fe.typeText(ctx, t, stmt.Span)
}

func (fe *fileEmitter) emitPlainGenerator(ctx Context, stmt *ir.Stmt, fn ir.FuncData) {
	elem, _ := generatorTypeArgs(fn)
	elemText := fe.annotatedText(ctx, elem, stmt)

	retText := "IEnumerable<" + elemText + ">"
	if fn.Async {
		retText = "async IAsyncEnumerable<" + elemText + ">"
	}
	constraints, err := fe.res.TypeParamConstraints(fn.TypeParams, fe.typeCtx(ctx))
	if err != nil {
		fe.internalf(diag.InternalUnhandledType, stmt.Span, "%v", err)
	}
	fe.linef(ctx, "%s static %s %s%s(%s)%s",
		visibility(fn.Exported), retText, resolver.Ident(fn.Name),
		fe.res.TypeParamsText(fn.TypeParams), fe.paramsText(ctx, fn.Params, stmt), constraints)
	fe.linef(ctx, "{")
	body := ctx.Indented()
	for _, s := range fn.Body {
		fe.emitStmt(body, s)
	}
	fe.linef(ctx, "}")
}

// emitBidirectional renders the exchange trio plus the factory carrying the
// source function's name:
//
//	<Name>_Exchange  mutable cell the core and driver communicate through
//	<Name>_Core      iterator method holding the translated body
//	<Name>_Iterator  public driver exposing Next(sent, out value)
func (fe *fileEmitter) emitBidirectional(ctx Context, stmt *ir.Stmt, fn ir.FuncData) {
	elem, sent := generatorTypeArgs(fn)
	elemText := fe.annotatedText(ctx, elem, stmt)
	sentText := fe.annotatedText(ctx, sent, stmt)

	pascal := resolver.PascalSegment(fn.Name)
	gen := fe.res.TypeParamsText(fn.TypeParams)
	constraints, err := fe.res.TypeParamConstraints(fn.TypeParams, fe.typeCtx(ctx))
	if err != nil {
		fe.internalf(diag.InternalUnhandledType, stmt.Span, "%v", err)
	}
	vis := visibility(fn.Exported)
	exchRef := pascal + "_Exchange" + gen
	iterRef := pascal + "_Iterator" + gen

	fe.linef(ctx, "%s sealed class %s_Exchange%s%s", vis, pascal, gen, constraints)
	fe.linef(ctx, "{")
	inner := ctx.Indented()
	fe.linef(inner, "public %s Value;", elemText)
	fe.linef(inner, "public %s Sent;", sentText)
	fe.linef(ctx, "}")
	fe.rawf("\n")

	fe.linef(ctx, "%s sealed class %s_Iterator%s%s", vis, pascal, gen, constraints)
	fe.linef(ctx, "{")
	fe.linef(inner, "private readonly %s _exchange;", exchRef)
	fe.linef(inner, "private readonly IEnumerator<%s> _core;", exchRef)
	fe.rawf("\n")
	fe.linef(inner, "public %s_Iterator(%s exchange, IEnumerator<%s> core)", pascal, exchRef, exchRef)
	fe.linef(inner, "{")
	inner2 := inner.Indented()
	fe.linef(inner2, "_exchange = exchange;")
	fe.linef(inner2, "_core = core;")
	fe.linef(inner, "}")
	fe.rawf("\n")
	fe.linef(inner, "public bool Next(%s sent, out %s value)", sentText, elemText)
	fe.linef(inner, "{")
	fe.linef(inner2, "_exchange.Sent = sent;")
	fe.linef(inner2, "if (!_core.MoveNext())")
	fe.linef(inner2, "{")
	inner3 := inner2.Indented()
	fe.linef(inner3, "value = default;")
	fe.linef(inner3, "return false;")
	fe.linef(inner2, "}")
	fe.linef(inner2, "value = _exchange.Value;")
	fe.linef(inner2, "return true;")
	fe.linef(inner, "}")
	fe.rawf("\n")
	fe.linef(inner, "public void Return()")
	fe.linef(inner, "{")
	fe.linef(inner2, "_core.Dispose();")
	fe.linef(inner, "}")
	fe.rawf("\n")
	fe.linef(inner, "public void Throw(Exception error)")
	fe.linef(inner, "{")
	fe.linef(inner2, "_core.Dispose();")
	fe.linef(inner2, "throw error;")
	fe.linef(inner, "}")
	fe.linef(ctx, "}")
	fe.rawf("\n")

	argNames := make([]string, 0, len(fn.Params))
	for _, p := range fn.Params {
		argNames = append(argNames, resolver.Ident(p.Pattern.Name()))
	}
	coreArgs := "__exchange"
	for _, a := range argNames {
		coreArgs += ", " + a
	}

	fe.linef(ctx, "%s static %s %s%s(%s)%s",
		vis, iterRef, resolver.Ident(fn.Name), gen, fe.paramsText(ctx, fn.Params, stmt), constraints)
	fe.linef(ctx, "{")
	fe.linef(inner, "var __exchange = new %s();", exchRef)
	fe.linef(inner, "return new %s(__exchange, %s_Core%s(%s).GetEnumerator());",
		iterRef, pascal, gen, coreArgs)
	fe.linef(ctx, "}")
	fe.rawf("\n")

	coreParams := exchRef + " __exchange"
	if rest := fe.paramsText(ctx, fn.Params, stmt); rest != "" {
		coreParams += ", " + rest
	}
	fe.linef(ctx, "internal static IEnumerable<%s> %s_Core%s(%s)%s",
		exchRef, pascal, gen, coreParams, constraints)
	fe.linef(ctx, "{")
	body := ctx.Indented().WithGenerator(&generatorFrame{exchangeVar: "__exchange"})
	for _, s := range fn.Body {
		fe.emitStmt(body, s)
	}
	fe.linef(ctx, "}")
}

// emitYieldInto translates one core yield into the exchange protocol. The
// driver writes Sent before resuming, so the read after the yield observes
// the value passed to Next.
func (fe *fileEmitter) emitYieldInto(ctx Context, yield *ir.Expr, target string) {
	frame := ctx.Generator
	if frame == nil {
		fe.internalf(diag.InternalUnhandledExpr, yield.Span,
			"exchange yield outside a generator core")
		return
	}
	data := yield.Data.(ir.YieldData)
	if data.Value != nil {
		fe.linef(ctx, "%s.Value = %s;", frame.exchangeVar, fe.exprText(ctx, data.Value))
	} else {
		fe.linef(ctx, "%s.Value = default;", frame.exchangeVar)
	}
	fe.linef(ctx, "yield return %s;", frame.exchangeVar)
	if target != "" {
		fe.linef(ctx, "var %s = %s.Sent;", target, frame.exchangeVar)
	}
}
