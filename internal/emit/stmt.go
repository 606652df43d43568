package emit

import (
	"strait/internal/diag"
	"strait/internal/ir"
	"strait/internal/resolver"
)

// emitStmt renders one statement inside a method body.
func (fe *fileEmitter) emitStmt(ctx Context, stmt *ir.Stmt) {
	switch stmt.Kind {
	case ir.StmtVar:
		fe.emitLocal(ctx, stmt)
	case ir.StmtExpr:
		fe.emitExprStmt(ctx, stmt)
	case ir.StmtReturn:
		fe.emitReturn(ctx, stmt)
	case ir.StmtIf:
		fe.emitIf(ctx, stmt)
	case ir.StmtWhile:
		data := stmt.Data.(ir.WhileData)
		fe.linef(ctx, "while (%s)", fe.exprText(ctx, data.Cond))
		fe.emitBraced(ctx, data.Body)
	case ir.StmtForOf:
		fe.emitForOf(ctx, stmt)
	case ir.StmtBreak:
		fe.linef(ctx, "break;")
	case ir.StmtContinue:
		fe.linef(ctx, "continue;")
	case ir.StmtBlock:
		fe.emitBraced(ctx, stmt.Data.(ir.BlockData).Body)
	default:
		fe.internalf(diag.InternalUnhandledStmt, stmt.Span,
			"%s statement reached body emission", stmt.Kind)
	}
}

func (fe *fileEmitter) emitBraced(ctx Context, body []*ir.Stmt) {
	fe.linef(ctx, "{")
	inner := ctx.Indented()
	for _, s := range body {
		fe.emitStmt(inner, s)
	}
	fe.linef(ctx, "}")
}

func (fe *fileEmitter) emitLocal(ctx Context, stmt *ir.Stmt) {
	v := stmt.Data.(ir.VarData)
	name := resolver.Ident(v.Pattern.Name())

	// A bidirectional yield in initializer position splits into the
	// exchange protocol before the declaration.
	if ctx.Generator != nil && v.Init != nil && v.Init.Kind == ir.ExprYield {
		fe.emitYieldInto(ctx, v.Init, name)
		return
	}

	typeText := "var"
	initCtx := ctx
	if v.Type != nil {
		typeText = fe.typeText(ctx, v.Type, stmt.Span)
		if isBareTypeParam(v.Type, ctx.TypeParams) {
			initCtx = ctx.WithAbsenceDefault(true)
		}
	}
	if v.Init != nil {
		fe.linef(ctx, "%s %s = %s;", typeText, name, fe.exprText(initCtx, v.Init))
	} else {
		if typeText == "var" {
			typeText = "object"
		}
		fe.linef(ctx, "%s %s = default;", typeText, name)
	}
}

func (fe *fileEmitter) emitExprStmt(ctx Context, stmt *ir.Stmt) {
	expr := stmt.Data.(ir.ExprStmtData).Expr
	if expr == nil {
		return
	}
	if ctx.Generator == nil && expr.Kind == ir.ExprYield {
		// Plain generator: a statement-level yield is the iterator element.
		data := expr.Data.(ir.YieldData)
		if data.Value != nil {
			fe.linef(ctx, "yield return %s;", fe.exprText(ctx, data.Value))
		} else {
			fe.linef(ctx, "yield return default;")
		}
		return
	}
	if ctx.Generator != nil && expr.Kind == ir.ExprYield {
		fe.emitYieldInto(ctx, expr, "")
		return
	}
	fe.linef(ctx, "%s;", fe.exprText(ctx, expr))
}

func (fe *fileEmitter) emitReturn(ctx Context, stmt *ir.Stmt) {
	data := stmt.Data.(ir.ReturnData)
	if data.Value == nil {
		fe.linef(ctx, "return;")
		return
	}
	fe.linef(ctx, "return %s;", fe.exprText(ctx, data.Value))
}

func (fe *fileEmitter) emitForOf(ctx Context, stmt *ir.Stmt) {
	data := stmt.Data.(ir.ForOfData)
	keyword := "foreach"
	if data.Await {
		keyword = "await foreach"
	}
	fe.linef(ctx, "%s (var %s in %s)", keyword,
		resolver.Ident(data.Binding.Name()), fe.exprText(ctx, data.Iterable))
	fe.emitBraced(ctx, data.Body)
}

// emitIf renders an if/else. When the condition narrows a binding, the
// refined branch gets cast-on-reference for that binding; negated guards
// refine the else branch instead.
func (fe *fileEmitter) emitIf(ctx Context, stmt *ir.Stmt) {
	data := stmt.Data.(ir.IfData)

	var condText string
	thenCtx, elseCtx := ctx, ctx

	if n := data.Narrow; n != nil {
		name := resolver.Ident(n.Name)
		targetText := fe.typeText(ctx, n.Target, stmt.Span)
		cast := "((" + targetText + ")" + name + ")"

		switch n.Kind {
		case ir.NarrowTypeof:
			condText = name + " is " + targetText
			if n.Negated {
				condText = "!(" + condText + ")"
			}
		case ir.NarrowTruthy:
			if n.Negated {
				condText = name + " == null"
			} else {
				condText = name + " != null"
			}
		default:
			// Predicate guards stay calls; negation is already part of the
			// condition expression.
			condText = fe.exprText(ctx, data.Cond)
		}

		if n.Negated {
			elseCtx = ctx.WithNarrow(n.Name, cast)
			thenCtx = ctx.WithoutNarrow(n.Name)
		} else {
			thenCtx = ctx.WithNarrow(n.Name, cast)
			elseCtx = ctx.WithoutNarrow(n.Name)
		}
	} else {
		condText = fe.exprText(ctx, data.Cond)
	}

	fe.linef(ctx, "if (%s)", condText)
	fe.linef(ctx, "{")
	inner := thenCtx.Indented()
	for _, s := range data.Then {
		fe.emitStmt(inner, s)
	}
	fe.linef(ctx, "}")

	if data.Else != nil {
		fe.linef(ctx, "else")
		fe.linef(ctx, "{")
		innerElse := elseCtx.Indented()
		for _, s := range data.Else {
			fe.emitStmt(innerElse, s)
		}
		fe.linef(ctx, "}")
	}
}
