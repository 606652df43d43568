package resolver

import (
	"fmt"
	"strings"

	"strait/internal/ir"
)

// TypeCtx carries the scope information type rendering depends on.
type TypeCtx struct {
	// TypeParams holds the generic parameters in scope. References to them
	// stay bare, and nullable sugar is suppressed for them because a null
	// literal is invalid for non-reference instantiations.
	TypeParams map[string]bool
	// LookupType maps a local type name to its fully-qualified target
	// name. Unknown names stay bare, which covers target builtins.
	LookupType func(name string) (string, bool)
	// OnUnionArity, when set, observes every union arity rendered under
	// this context, letting callers attribute support needs per module.
	OnUnionArity func(n int)
}

func (c TypeCtx) isParam(name string) bool {
	return c.TypeParams != nil && c.TypeParams[name]
}

// maxFlatTupleArity is the target's native value-tuple arity; longer tuples
// nest.
const maxFlatTupleArity = 7

// TypeText renders an IR type as target type syntax. It fails on shapes
// earlier stages should have rejected instead of guessing.
func (r *Resolver) TypeText(t *ir.Type, ctx TypeCtx) (string, error) {
	if t == nil {
		return "object", nil
	}
	switch t.Kind {
	case ir.TypePrimitive:
		return primitiveText(t.Data.(ir.PrimitiveType).Prim), nil

	case ir.TypeLiteral:
		d := t.Data.(ir.LiteralTypeData)
		return literalBaseText(d), nil

	case ir.TypeArray:
		elem, err := r.TypeText(t.Data.(ir.ArrayTypeData).Elem, ctx)
		if err != nil {
			return "", err
		}
		if r.opts.Mode == ModeManaged {
			return "List<" + elem + ">", nil
		}
		return elem + "[]", nil

	case ir.TypeTuple:
		return r.tupleText(t.Data.(ir.TupleTypeData).Elems, ctx)

	case ir.TypeRef:
		return r.refText(t.Data.(ir.RefTypeData), ctx)

	case ir.TypeFunc:
		return r.funcText(t.Data.(ir.FuncTypeData), ctx)

	case ir.TypeUnion:
		return r.unionText(t.Data.(ir.UnionTypeData).Members, ctx)

	case ir.TypeIntersection:
		// The target has no intersection types; the builder already warned
		// about the precision loss and the first member carries the shape.
		members := t.Data.(ir.IntersectionTypeData).Members
		if len(members) == 0 {
			return "object", nil
		}
		return r.TypeText(members[0], ctx)

	case ir.TypeDict:
		d := t.Data.(ir.DictTypeData)
		key, err := r.TypeText(d.Key, ctx)
		if err != nil {
			return "", err
		}
		val, err := r.TypeText(d.Value, ctx)
		if err != nil {
			return "", err
		}
		return "Dictionary<" + key + ", " + val + ">", nil

	case ir.TypeStructural:
		d := t.Data.(ir.StructuralTypeData)
		if d.SynthName == "" {
			return "", fmt.Errorf("structural type reached emission without a synthesized name")
		}
		return d.SynthName, nil
	}
	return "", fmt.Errorf("unmapped type kind %s", t.Kind)
}

func primitiveText(p ir.Primitive) string {
	switch p {
	case ir.PrimNumber:
		return "double"
	case ir.PrimString:
		return "string"
	case ir.PrimBoolean:
		return "bool"
	case ir.PrimVoid:
		return "void"
	case ir.PrimNull, ir.PrimUndefined:
		// A standalone absence type carries no information.
		return "object"
	default:
		return "object"
	}
}

func literalBaseText(d ir.LiteralTypeData) string {
	if d.IsString {
		return "string"
	}
	if d.Text == "true" || d.Text == "false" {
		return "bool"
	}
	return "double"
}

// tupleText renders tuples as value tuples, nesting the tail once the
// native arity limit is exceeded.
func (r *Resolver) tupleText(elems []*ir.Type, ctx TypeCtx) (string, error) {
	if len(elems) == 0 {
		return "object", nil
	}
	if len(elems) == 1 {
		// A one-tuple has no value-tuple form.
		return r.TypeText(elems[0], ctx)
	}
	flat := elems
	var rest []*ir.Type
	if len(elems) > maxFlatTupleArity {
		flat = elems[:maxFlatTupleArity-1]
		rest = elems[maxFlatTupleArity-1:]
	}
	parts := make([]string, 0, len(flat)+1)
	for _, e := range flat {
		text, err := r.TypeText(e, ctx)
		if err != nil {
			return "", err
		}
		parts = append(parts, text)
	}
	if rest != nil {
		tail, err := r.tupleText(rest, ctx)
		if err != nil {
			return "", err
		}
		parts = append(parts, tail)
	}
	return "(" + strings.Join(parts, ", ") + ")", nil
}

func (r *Resolver) refText(d ir.RefTypeData, ctx TypeCtx) (string, error) {
	name := d.Name
	if ctx.isParam(name) {
		return Ident(name), nil
	}
	if ctx.LookupType != nil {
		if qualified, ok := ctx.LookupType(name); ok {
			name = qualified
		} else {
			name = Ident(name)
		}
	} else {
		name = Ident(name)
	}
	if len(d.Args) == 0 {
		return name, nil
	}
	args := make([]string, 0, len(d.Args))
	for _, a := range d.Args {
		text, err := r.TypeText(a, ctx)
		if err != nil {
			return "", err
		}
		args = append(args, text)
	}
	return name + "<" + strings.Join(args, ", ") + ">", nil
}

// funcText maps function types onto the target's generic delegate family.
func (r *Resolver) funcText(d ir.FuncTypeData, ctx TypeCtx) (string, error) {
	params := make([]string, 0, len(d.Params)+1)
	for _, p := range d.Params {
		text, err := r.TypeText(p.Type, ctx)
		if err != nil {
			return "", err
		}
		params = append(params, text)
	}
	retVoid := d.Return == nil ||
		(d.Return.Kind == ir.TypePrimitive && d.Return.Data.(ir.PrimitiveType).Prim == ir.PrimVoid)
	if retVoid {
		if len(params) == 0 {
			return "Action", nil
		}
		return "Action<" + strings.Join(params, ", ") + ">", nil
	}
	ret, err := r.TypeText(d.Return, ctx)
	if err != nil {
		return "", err
	}
	params = append(params, ret)
	return "Func<" + strings.Join(params, ", ") + ">", nil
}

// unionText folds absence members into target nullability and renders the
// rest through the shared per-arity union support types, falling back to
// the untyped top type past the configured limit.
func (r *Resolver) unionText(members []*ir.Type, ctx TypeCtx) (string, error) {
	var present []*ir.Type
	absent := false
	for _, m := range members {
		if m.IsAbsence() {
			absent = true
			continue
		}
		present = append(present, m)
	}

	switch {
	case len(present) == 0:
		return "object", nil

	case len(present) == 1:
		text, err := r.TypeText(present[0], ctx)
		if err != nil {
			return "", err
		}
		if absent && !r.paramContext(present[0], ctx) {
			return text + "?", nil
		}
		// In a generic type-parameter context the absence folds away in
		// the type and reappears as the parametric empty-value literal at
		// use sites.
		return text, nil

	case len(present) <= r.opts.UnionArityLimit:
		parts := make([]string, 0, len(present))
		for _, m := range present {
			text, err := r.TypeText(m, ctx)
			if err != nil {
				return "", err
			}
			parts = append(parts, text)
		}
		r.NoteUnionArity(len(present))
		if ctx.OnUnionArity != nil {
			ctx.OnUnionArity(len(present))
		}
		text := fmt.Sprintf("Union%d<%s>", len(present), strings.Join(parts, ", "))
		if absent {
			text += "?"
		}
		return text, nil

	default:
		// Deliberate, documented precision loss.
		return "object", nil
	}
}

// paramContext reports whether the single remaining union member is a bare
// generic parameter reference in scope.
func (r *Resolver) paramContext(t *ir.Type, ctx TypeCtx) bool {
	if t.Kind != ir.TypeRef {
		return false
	}
	return ctx.isParam(t.Data.(ir.RefTypeData).Name)
}
