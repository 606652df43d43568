package irgen

import (
	"fmt"

	"strait/internal/diag"
	"strait/internal/ir"
	"strait/internal/source"
	"strait/internal/tsast"
)

// synthName derives the deterministic nominal name for an anonymous
// structural type from the literal's source position. Two runs over the
// same input produce the same name; moving the literal changes it.
func (mb *moduleBuilder) synthName(span source.Span) string {
	pos := mb.fileSet.Position(span)
	return fmt.Sprintf("Anon_%d_%d", pos.Line, pos.Col)
}

// lowerObject lowers an object literal. An annotated literal takes its
// declared type; an unannotated one is promoted to a synthesized nominal
// type, provided every member is a plain, shorthand, or arrow-valued
// property.
func (mb *moduleBuilder) lowerObject(n *tsast.Node, expected *ir.Type) *ir.Expr {
	var expectedFields []ir.StructuralField
	if expected != nil && expected.Kind == ir.TypeStructural {
		expectedFields = expected.Data.(ir.StructuralTypeData).Fields
	}

	props := make([]ir.ObjectProp, 0, len(n.List))
	fields := make([]ir.StructuralField, 0, len(n.List))
	eligible := true

	for _, m := range n.List {
		switch m.Kind {
		case tsast.KindObjectProp:
			fieldExpected := fieldType(expectedFields, m.Name.Text)
			value := mb.lowerExpr(m.Value, exprCtx{used: true, expected: fieldExpected})
			props = append(props, ir.ObjectProp{Name: m.Name.Text, Value: value})

			ft := fieldExpected
			if ft == nil && value != nil {
				ft = value.Type
			}
			if ft == nil {
				mb.errorf(diag.TypeUnmappable, m.Span,
					"cannot infer the type of property %q", m.Name.Text)
				ft = ir.NewPrimitive(ir.PrimAny, m.Span)
			}
			fields = append(fields, ir.StructuralField{Name: m.Name.Text, Type: ft})

		case tsast.KindObjectMethod:
			mb.errorf(diag.LangStructuralIneligible, m.Span,
				"method shorthand blocks structural promotion; use an arrow-valued property")
			eligible = false
		case tsast.KindObjectAccessor:
			mb.errorf(diag.LangStructuralIneligible, m.Span,
				"accessors block structural promotion")
			eligible = false
		case tsast.KindObjectSpread:
			mb.errorf(diag.LangStructuralIneligible, m.Span,
				"spread members block structural promotion")
			eligible = false
		}
	}

	var structType *ir.Type
	switch {
	case expected != nil:
		structType = expected
	case eligible:
		structType = &ir.Type{Kind: ir.TypeStructural, Span: n.Span, Data: ir.StructuralTypeData{
			Fields:    fields,
			SynthName: mb.synthName(n.Span),
		}}
	default:
		structType = ir.NewPrimitive(ir.PrimAny, n.Span)
	}

	return &ir.Expr{Kind: ir.ExprObject, Span: n.Span, Type: structType, Data: ir.ObjectData{
		Struct: structType,
		Props:  props,
	}}
}

func fieldType(fields []ir.StructuralField, name string) *ir.Type {
	for _, f := range fields {
		if f.Name == name {
			return f.Type
		}
	}
	return nil
}
