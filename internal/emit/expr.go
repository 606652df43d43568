package emit

import (
	"strconv"
	"strings"

	"strait/internal/diag"
	"strait/internal/ir"
	"strait/internal/resolver"
)

// exprText renders one expression as target source text.
func (fe *fileEmitter) exprText(ctx Context, expr *ir.Expr) string {
	switch expr.Kind {
	case ir.ExprLiteral:
		return fe.literalText(ctx, expr.Data.(ir.LiteralData))
	case ir.ExprIdent:
		return fe.identText(ctx, expr.Data.(ir.IdentData))
	case ir.ExprMember:
		d := expr.Data.(ir.MemberData)
		return fe.operandText(ctx, d.Object) + "." + resolver.Ident(d.Name)
	case ir.ExprIndex:
		d := expr.Data.(ir.IndexData)
		return fe.operandText(ctx, d.Object) + "[" + fe.exprText(ctx, d.Index) + "]"
	case ir.ExprCall:
		return fe.callText(ctx, expr.Data.(ir.CallData))
	case ir.ExprBinary:
		d := expr.Data.(ir.BinaryData)
		return fe.operandText(ctx, d.Left) + " " + binaryOp(d.Op) + " " + fe.operandText(ctx, d.Right)
	case ir.ExprUnary:
		return fe.unaryText(ctx, expr.Data.(ir.UnaryData))
	case ir.ExprAssign:
		d := expr.Data.(ir.AssignData)
		return fe.exprText(ctx, d.Target) + " = " + fe.exprText(ctx, d.Value)
	case ir.ExprTernary:
		d := expr.Data.(ir.TernaryData)
		return fe.operandText(ctx, d.Cond) + " ? " + fe.operandText(ctx, d.Then) + " : " + fe.operandText(ctx, d.Else)
	case ir.ExprLambda:
		return fe.lambdaText(ctx, expr)
	case ir.ExprObject:
		return fe.objectText(ctx, expr)
	case ir.ExprArray:
		return fe.arrayText(ctx, expr)
	case ir.ExprAwait:
		return "await " + fe.operandText(ctx, expr.Data.(ir.AwaitData).Operand)
	case ir.ExprYield:
		// Statement-position yields are handled by statement emission;
		// anything else should have been rejected as bidirectional misuse.
		fe.internalf(diag.InternalUnhandledExpr, expr.Span,
			"yield reached expression emission")
		return "default"
	}
	fe.internalf(diag.InternalUnhandledExpr, expr.Span,
		"%s expression reached emission", expr.Kind)
	return "default"
}

// operandText parenthesizes composite operands so emitted precedence always
// matches IR structure.
func (fe *fileEmitter) operandText(ctx Context, expr *ir.Expr) string {
	switch expr.Kind {
	case ir.ExprBinary, ir.ExprTernary, ir.ExprAssign, ir.ExprLambda, ir.ExprAwait:
		return "(" + fe.exprText(ctx, expr) + ")"
	}
	return fe.exprText(ctx, expr)
}

func (fe *fileEmitter) literalText(ctx Context, d ir.LiteralData) string {
	switch d.Kind {
	case ir.LitNumber:
		return widenNumber(d.Text)
	case ir.LitString:
		return strconv.Quote(d.Text)
	case ir.LitBool:
		return d.Text
	case ir.LitNull, ir.LitUndefined:
		if ctx.AbsenceAsDefault {
			return "default"
		}
		return "null"
	}
	return d.Text
}

// widenNumber makes integer-looking lexemes render as floating literals,
// matching the single source numeric type.
func widenNumber(text string) string {
	if strings.ContainsAny(text, ".eExX") {
		return text
	}
	return text + ".0"
}

func (fe *fileEmitter) identText(ctx Context, d ir.IdentData) string {
	if cast, ok := ctx.Narrowed[d.Name]; ok {
		return cast
	}
	if qualified, ok := fe.imported[d.Name]; ok {
		return qualified
	}
	return resolver.Ident(d.Name)
}

func (fe *fileEmitter) callText(ctx Context, d ir.CallData) string {
	args := make([]string, 0, len(d.Args))
	for _, a := range d.Args {
		args = append(args, fe.exprText(ctx, a))
	}
	return fe.operandText(ctx, d.Callee) + "(" + strings.Join(args, ", ") + ")"
}

func (fe *fileEmitter) unaryText(ctx Context, d ir.UnaryData) string {
	switch d.Op {
	case "typeof":
		// General typeof outside a narrowing guard needs the runtime
		// type-name helper from the support file.
		fe.usedTypeOf = true
		fe.needsTypeOf.Store(true)
		return "Ops.TypeOf(" + fe.exprText(ctx, d.Operand) + ")"
	case "+":
		return "+" + fe.operandText(ctx, d.Operand)
	}
	return d.Op + fe.operandText(ctx, d.Operand)
}

func binaryOp(op string) string {
	switch op {
	case "===":
		return "=="
	case "!==":
		return "!="
	}
	return op
}

func (fe *fileEmitter) lambdaText(ctx Context, expr *ir.Expr) string {
	d := expr.Data.(ir.LambdaData)

	params := make([]string, 0, len(d.Params))
	for _, p := range d.Params {
		name := resolver.Ident(p.Pattern.Name())
		if p.Type != nil {
			params = append(params, fe.typeText(ctx, p.Type, expr.Span)+" "+name)
		} else {
			params = append(params, name)
		}
	}
	head := "(" + strings.Join(params, ", ") + ")"
	if d.Async {
		head = "async " + head
	}

	if d.ExprBody != nil {
		return head + " => " + fe.exprText(ctx, d.ExprBody)
	}

	// Block-bodied lambdas render into a detached buffer so statement
	// emission can reuse the normal indentation machinery.
	saved := fe.buf
	fe.buf = strings.Builder{}
	fe.rawf("%s =>\n", head)
	fe.linef(ctx, "{")
	inner := ctx.Indented()
	for _, s := range d.Body {
		fe.emitStmt(inner, s)
	}
	fe.buf.WriteString(ctx.Pad())
	fe.buf.WriteString("}")
	text := fe.buf.String()
	fe.buf = saved
	return text
}

func (fe *fileEmitter) objectText(ctx Context, expr *ir.Expr) string {
	d := expr.Data.(ir.ObjectData)

	name := "object"
	if d.Struct != nil {
		if d.Struct.Kind == ir.TypeStructural {
			if synth := d.Struct.Data.(ir.StructuralTypeData).SynthName; synth != "" {
				name = synth
			}
		} else {
			name = fe.typeText(ctx, d.Struct, expr.Span)
		}
	}

	if len(d.Props) == 0 {
		return "new " + name + "()"
	}
	parts := make([]string, 0, len(d.Props))
	for _, p := range d.Props {
		parts = append(parts, resolver.Ident(p.Name)+" = "+fe.exprText(ctx, p.Value))
	}
	return "new " + name + " { " + strings.Join(parts, ", ") + " }"
}

func (fe *fileEmitter) arrayText(ctx Context, expr *ir.Expr) string {
	d := expr.Data.(ir.ArrayData)

	elemText := "object"
	if expr.Type != nil && expr.Type.Kind == ir.TypeArray {
		elemText = fe.typeText(ctx, expr.Type.Data.(ir.ArrayTypeData).Elem, expr.Span)
	}

	elems := make([]string, 0, len(d.Elems))
	for _, e := range d.Elems {
		elems = append(elems, fe.exprText(ctx, e))
	}

	if fe.res.Mode() == resolver.ModeManaged {
		if len(elems) == 0 {
			return "new List<" + elemText + ">()"
		}
		return "new List<" + elemText + "> { " + strings.Join(elems, ", ") + " }"
	}
	if len(elems) == 0 {
		return "new " + elemText + "[0]"
	}
	return "new " + elemText + "[] { " + strings.Join(elems, ", ") + " }"
}
