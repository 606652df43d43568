package irgen

import (
	"strait/internal/diag"
	"strait/internal/ir"
	"strait/internal/tsast"
)

var primitivesByName = map[string]ir.Primitive{
	"number":    ir.PrimNumber,
	"string":    ir.PrimString,
	"boolean":   ir.PrimBoolean,
	"void":      ir.PrimVoid,
	"null":      ir.PrimNull,
	"undefined": ir.PrimUndefined,
	"any":       ir.PrimAny,
	"unknown":   ir.PrimUnknown,
}

// typeEnv carries alias-expansion state through type lowering. Aliases of
// non-structural targets expand inline at every reference, because the
// target language has no cross-file type aliasing; subst maps alias type
// parameters to the reference's type arguments during an expansion.
type typeEnv struct {
	subst     map[string]*ir.Type
	expanding map[string]bool
}

func (mb *moduleBuilder) lowerType(n *tsast.Node) *ir.Type {
	return mb.lowerTypeEnv(n, typeEnv{})
}

func (mb *moduleBuilder) lowerTypeEnv(n *tsast.Node, env typeEnv) *ir.Type {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case tsast.KindTypeRef:
		return mb.lowerTypeRef(n, env)

	case tsast.KindArrayType:
		return &ir.Type{Kind: ir.TypeArray, Span: n.Span, Data: ir.ArrayTypeData{
			Elem: mb.lowerTypeEnv(n.Type, env),
		}}

	case tsast.KindTupleType:
		elems := make([]*ir.Type, 0, len(n.List))
		for _, el := range n.List {
			elems = append(elems, mb.lowerTypeEnv(el, env))
		}
		return &ir.Type{Kind: ir.TypeTuple, Span: n.Span, Data: ir.TupleTypeData{Elems: elems}}

	case tsast.KindUnionType:
		members := make([]*ir.Type, 0, len(n.List))
		for _, m := range n.List {
			members = append(members, mb.lowerTypeEnv(m, env))
		}
		return &ir.Type{Kind: ir.TypeUnion, Span: n.Span, Data: ir.UnionTypeData{Members: members}}

	case tsast.KindIntersectionType:
		members := make([]*ir.Type, 0, len(n.List))
		for _, m := range n.List {
			members = append(members, mb.lowerTypeEnv(m, env))
		}
		mb.warnf(diag.TypeIntersectionCollapse, n.Span,
			"intersection type maps to its first member; the remaining members are dropped")
		return &ir.Type{Kind: ir.TypeIntersection, Span: n.Span, Data: ir.IntersectionTypeData{Members: members}}

	case tsast.KindFuncType:
		return mb.lowerFuncType(n, env)

	case tsast.KindLiteralType:
		return &ir.Type{Kind: ir.TypeLiteral, Span: n.Span, Data: ir.LiteralTypeData{
			Text:     n.Text,
			IsString: n.Has(tsast.FlagShorthand),
		}}

	case tsast.KindObjectType:
		return mb.lowerObjectType(n, env)

	case tsast.KindPredicateType:
		// A predicate annotation types the function as boolean-returning;
		// the guard semantics live on the symbol, not in the type.
		return ir.NewPrimitive(ir.PrimBoolean, n.Span)

	default:
		mb.errorf(diag.LangUnsupportedType, n.Span, "unsupported type form %s", n.Kind)
		return ir.NewPrimitive(ir.PrimAny, n.Span)
	}
}

func (mb *moduleBuilder) lowerFuncType(n *tsast.Node, env typeEnv) *ir.Type {
	params := make([]ir.FuncTypeParam, 0, len(n.Params))
	for _, p := range n.Params {
		fp := ir.FuncTypeParam{Optional: p.Has(tsast.FlagOptional)}
		if p.Name != nil {
			fp.Name = p.Name.Text
		}
		if p.Type != nil {
			fp.Type = mb.lowerTypeEnv(p.Type, env)
		} else {
			fp.Type = ir.NewPrimitive(ir.PrimAny, p.Span)
		}
		params = append(params, fp)
	}
	var ret *ir.Type
	if n.Type != nil {
		ret = mb.lowerTypeEnv(n.Type, env)
	} else {
		ret = ir.NewPrimitive(ir.PrimVoid, n.Span)
	}
	return &ir.Type{Kind: ir.TypeFunc, Span: n.Span, Data: ir.FuncTypeData{Params: params, Return: ret}}
}

// lowerObjectType maps an inline object type. A lone index signature becomes
// a dictionary; property members become a structural type. Mixing the two,
// or declaring methods inline, has no target shape.
func (mb *moduleBuilder) lowerObjectType(n *tsast.Node, env typeEnv) *ir.Type {
	var index *tsast.Node
	var props []*tsast.Node
	for _, m := range n.List {
		switch m.Kind {
		case tsast.KindIndexSig:
			index = m
		case tsast.KindPropSig:
			props = append(props, m)
		case tsast.KindMethodSig:
			mb.errorf(diag.LangUnsupportedType, m.Span,
				"method signatures in inline object types are not supported; use a function-typed property")
		}
	}

	if index != nil {
		if len(props) > 0 {
			mb.errorf(diag.LangUnsupportedType, n.Span,
				"an object type cannot mix an index signature with named properties")
		}
		key := mb.lowerTypeEnv(index.Value, env)
		if key.Kind != ir.TypePrimitive {
			mb.errorf(diag.TypeUnmappable, index.Value.Span, "index signature key must be string or number")
		}
		return &ir.Type{Kind: ir.TypeDict, Span: n.Span, Data: ir.DictTypeData{
			Key:   key,
			Value: mb.lowerTypeEnv(index.Type, env),
		}}
	}

	fields := make([]ir.StructuralField, 0, len(props))
	for _, p := range props {
		fields = append(fields, ir.StructuralField{
			Name:     p.Name.Text,
			Type:     mb.lowerTypeEnv(p.Type, env),
			Optional: p.Has(tsast.FlagOptional),
		})
	}
	// Inline structural annotations promote to nominal types the same way
	// unannotated object literals do.
	return &ir.Type{Kind: ir.TypeStructural, Span: n.Span, Data: ir.StructuralTypeData{
		Fields:    fields,
		SynthName: mb.synthName(n.Span),
	}}
}

func (mb *moduleBuilder) lowerTypeRef(n *tsast.Node, env typeEnv) *ir.Type {
	name := n.Text

	if sub, ok := env.subst[name]; ok && len(n.TypeParams) == 0 {
		return sub
	}

	if prim, ok := primitivesByName[name]; ok {
		return ir.NewPrimitive(prim, n.Span)
	}

	if name == "Array" && len(n.TypeParams) == 1 {
		return &ir.Type{Kind: ir.TypeArray, Span: n.Span, Data: ir.ArrayTypeData{
			Elem: mb.lowerTypeEnv(n.TypeParams[0], env),
		}}
	}

	args := make([]*ir.Type, 0, len(n.TypeParams))
	for _, arg := range n.TypeParams {
		args = append(args, mb.lowerTypeEnv(arg, env))
	}

	if alias, declPath, ok := mb.findAlias(name); ok && mb.aliasExpands(alias) {
		return mb.expandAlias(n, alias, declPath, args, env)
	}

	return &ir.Type{Kind: ir.TypeRef, Span: n.Span, Data: ir.RefTypeData{Name: name, Args: args}}
}

// findAlias locates the type-alias declaration a reference names, in this
// module or through an import.
func (mb *moduleBuilder) findAlias(name string) (*tsast.Node, string, bool) {
	if alias, ok := mb.aliases[mb.mod.Path][name]; ok {
		return alias, mb.mod.Path, true
	}
	if declPath, localName, ok := mb.originOf(name); ok {
		if alias, ok := mb.aliases[declPath][localName]; ok {
			return alias, declPath, true
		}
	}
	return nil, "", false
}

// aliasExpands reports whether references to the alias expand inline.
// Aliases of object types with named properties become nominal declarations
// instead and keep their name.
func (mb *moduleBuilder) aliasExpands(alias *tsast.Node) bool {
	target := alias.Type
	if target == nil || target.Kind != tsast.KindObjectType {
		return true
	}
	for _, m := range target.List {
		if m.Kind == tsast.KindIndexSig {
			return true // dictionary alias
		}
	}
	return false
}

func (mb *moduleBuilder) expandAlias(ref, alias *tsast.Node, declPath string, args []*ir.Type, env typeEnv) *ir.Type {
	key := declPath + "#" + alias.Name.Text
	if env.expanding[key] {
		mb.errorf(diag.LangUnsupportedType, ref.Span,
			"type alias %q is recursive and cannot be expanded", alias.Name.Text)
		return ir.NewPrimitive(ir.PrimAny, ref.Span)
	}

	inner := typeEnv{
		subst:     make(map[string]*ir.Type, len(alias.TypeParams)),
		expanding: make(map[string]bool, len(env.expanding)+1),
	}
	for k := range env.expanding {
		inner.expanding[k] = true
	}
	inner.expanding[key] = true

	for i, tp := range alias.TypeParams {
		switch {
		case i < len(args):
			inner.subst[tp.Name.Text] = args[i]
		case tp.Value != nil:
			inner.subst[tp.Name.Text] = mb.lowerTypeEnv(tp.Value, inner)
		default:
			mb.errorf(diag.TypeUnmappable, ref.Span,
				"type alias %q expects a %q argument", alias.Name.Text, tp.Name.Text)
			inner.subst[tp.Name.Text] = ir.NewPrimitive(ir.PrimAny, ref.Span)
		}
	}

	expanded := mb.lowerTypeEnv(alias.Type, inner)
	if expanded != nil {
		// Keep the reference's span so diagnostics point at the use site.
		copied := *expanded
		copied.Span = ref.Span
		return &copied
	}
	return ir.NewPrimitive(ir.PrimAny, ref.Span)
}

func (mb *moduleBuilder) lowerTypeParams(list []*tsast.Node) []ir.TypeParam {
	if len(list) == 0 {
		return nil
	}
	out := make([]ir.TypeParam, 0, len(list))
	for _, tp := range list {
		p := ir.TypeParam{Name: tp.Name.Text}
		if tp.Type != nil {
			p.Constraint = mb.lowerType(tp.Type)
		}
		if tp.Value != nil {
			p.Default = mb.lowerType(tp.Value)
		}
		out = append(out, p)
	}
	return out
}
