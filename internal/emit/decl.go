package emit

import (
	"strings"

	"strait/internal/diag"
	"strait/internal/ir"
	"strait/internal/resolver"
)

func visibility(exported bool) string {
	if exported {
		return "public"
	}
	return "internal"
}

// emitDecl renders one module-level declaration inside the container.
func (fe *fileEmitter) emitDecl(ctx Context, stmt *ir.Stmt) {
	switch stmt.Kind {
	case ir.StmtVar:
		fe.emitField(ctx, stmt)
	case ir.StmtFunc:
		fe.emitFunc(ctx, stmt)
	case ir.StmtInterface:
		fe.emitInterface(ctx, stmt)
	case ir.StmtTypeAlias:
		fe.emitTypeAlias(ctx, stmt)
	case ir.StmtBlock:
		// A multi-declarator statement lowered to a block of fields.
		for _, inner := range stmt.Data.(ir.BlockData).Body {
			fe.emitDecl(ctx, inner)
		}
	default:
		fe.internalf(diag.InternalUnhandledStmt, stmt.Span,
			"%s statement reached container emission", stmt.Kind)
	}
}

// emitField renders a module-level variable as a static field.
func (fe *fileEmitter) emitField(ctx Context, stmt *ir.Stmt) {
	v := stmt.Data.(ir.VarData)
	typeText := fe.typeText(ctx, v.Type, stmt.Span)
	mod := "static"
	if v.Const {
		mod = "static readonly"
	}
	name := resolver.Ident(v.Pattern.Name())
	if v.Init != nil {
		init := fe.exprText(ctx, v.Init)
		fe.linef(ctx, "%s %s %s %s = %s;", visibility(v.Exported), mod, typeText, name, init)
	} else {
		fe.linef(ctx, "%s %s %s %s;", visibility(v.Exported), mod, typeText, name)
	}
}

func (fe *fileEmitter) emitFunc(ctx Context, stmt *ir.Stmt) {
	fn := stmt.Data.(ir.FuncData)
	fnCtx := ctx.WithTypeParams(resolver.TypeParamSet(fn.TypeParams))

	if fn.Generator != ir.GenNone {
		fe.emitGenerator(fnCtx, stmt, fn)
		return
	}

	retText := fe.returnTypeText(fnCtx, fn, stmt)
	constraints, err := fe.res.TypeParamConstraints(fn.TypeParams, fe.typeCtx(fnCtx))
	if err != nil {
		fe.internalf(diag.InternalUnhandledType, stmt.Span, "%v", err)
	}
	fe.linef(ctx, "%s static %s %s%s(%s)%s",
		visibility(fn.Exported), retText, resolver.Ident(fn.Name),
		fe.res.TypeParamsText(fn.TypeParams), fe.paramsText(fnCtx, fn.Params, stmt), constraints)
	fe.linef(ctx, "{")
	body := fnCtx.Indented()
	if isBareTypeParam(fn.Return, fnCtx.TypeParams) {
		body = body.WithAbsenceDefault(true)
	}
	for _, s := range fn.Body {
		fe.emitStmt(body, s)
	}
	fe.linef(ctx, "}")

	fe.emitSpecializations(ctx, fn.Name, fn.TypeParams)
}

// returnTypeText maps the declared return type, wrapping async functions
// in the target's task types.
func (fe *fileEmitter) returnTypeText(ctx Context, fn ir.FuncData, stmt *ir.Stmt) string {
	ret := fe.typeText(ctx, fn.Return, stmt.Span)
	if fn.Return == nil {
		ret = "void"
	}
	if fn.Async {
		if ret == "void" {
			return "async Task"
		}
		return "async Task<" + ret + ">"
	}
	return ret
}

// paramsText renders a parameter list.
func (fe *fileEmitter) paramsText(ctx Context, params []ir.Param, stmt *ir.Stmt) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		text := fe.typeText(ctx, p.Type, stmt.Span)
		piece := text + " " + resolver.Ident(p.Pattern.Name())
		switch {
		case p.Default != nil:
			piece += " = " + fe.exprText(ctx, p.Default)
		case p.Optional:
			if !strings.HasSuffix(text, "?") {
				piece = text + "? " + resolver.Ident(p.Pattern.Name())
			}
			piece += " = default"
		}
		parts = append(parts, piece)
	}
	return strings.Join(parts, ", ")
}

func (fe *fileEmitter) emitInterface(ctx Context, stmt *ir.Stmt) {
	data := stmt.Data.(ir.InterfaceData)
	// Source interfaces are shapes instantiated by object literals, so
	// they emit as classes with public fields rather than target
	// interfaces.
	fe.emitFieldClassDecl(ctx, data.Name, data.TypeParams, data.Fields, data.Exported, stmt)
	fe.emitSpecializations(ctx, data.Name, data.TypeParams)
}

func (fe *fileEmitter) emitTypeAlias(ctx Context, stmt *ir.Stmt) {
	data := stmt.Data.(ir.TypeAliasData)
	fields := structuralFields(data.Target)
	fe.emitFieldClassDecl(ctx, data.Name, data.TypeParams, fields, data.Exported, stmt)
	fe.emitSpecializations(ctx, data.Name, data.TypeParams)
}

func structuralFields(t *ir.Type) []ir.StructuralField {
	if t == nil || t.Kind != ir.TypeStructural {
		return nil
	}
	return t.Data.(ir.StructuralTypeData).Fields
}

// emitFieldClassDecl renders a named shape declaration with visibility and
// generic parameters.
func (fe *fileEmitter) emitFieldClassDecl(ctx Context, name string, typeParams []ir.TypeParam, fields []ir.StructuralField, exported bool, stmt *ir.Stmt) {
	inner := ctx.WithTypeParams(resolver.TypeParamSet(typeParams))
	constraints, err := fe.res.TypeParamConstraints(typeParams, fe.typeCtx(inner))
	if err != nil {
		fe.internalf(diag.InternalUnhandledType, stmt.Span, "%v", err)
	}
	fe.linef(ctx, "%s sealed class %s%s%s",
		visibility(exported), resolver.Ident(name), fe.res.TypeParamsText(typeParams), constraints)
	fe.linef(ctx, "{")
	body := inner.Indented()
	for _, f := range fields {
		fe.linef(body, "public %s %s;", fe.fieldTypeText(inner, f), resolver.Ident(f.Name))
	}
	fe.linef(ctx, "}")
}

// emitFieldClass renders a synthesized shape (no generics).
func (fe *fileEmitter) emitFieldClass(ctx Context, name string, fields []ir.StructuralField) {
	fe.linef(ctx, "public sealed class %s", name)
	fe.linef(ctx, "{")
	body := ctx.Indented()
	for _, f := range fields {
		fe.linef(body, "public %s %s;", fe.fieldTypeText(ctx, f), resolver.Ident(f.Name))
	}
	fe.linef(ctx, "}")
}

func (fe *fileEmitter) fieldTypeText(ctx Context, f ir.StructuralField) string {
	if f.Type == nil {
		// A parse failure can leave a member untyped when emission runs
		// despite earlier errors.
		return "object"
	}
	text := fe.typeText(ctx, f.Type, f.Type.Span)
	if f.Optional && !strings.HasSuffix(text, "?") && !ctx.TypeParams[refName(f.Type)] {
		text += "?"
	}
	return text
}

func refName(t *ir.Type) string {
	if t != nil && t.Kind == ir.TypeRef {
		return t.Data.(ir.RefTypeData).Name
	}
	return ""
}

// emitSpecializations renders the closed companion types the resolver
// planned for defaulted structural type parameters.
func (fe *fileEmitter) emitSpecializations(ctx Context, declName string, params []ir.TypeParam) {
	plan := fe.res.PlanSpecialization(declName, params)
	for _, spec := range plan.Synthesized {
		fe.rawf("\n")
		fe.emitFieldClass(ctx, spec.Name, structuralFields(spec.Default))
	}
}

// isBareTypeParam reports whether a type is a direct reference to a
// generic parameter in scope.
func isBareTypeParam(t *ir.Type, params map[string]bool) bool {
	if t == nil || t.Kind != ir.TypeRef || params == nil {
		return false
	}
	d := t.Data.(ir.RefTypeData)
	return len(d.Args) == 0 && params[d.Name]
}
