package ir

import "strait/internal/source"

// TypeKind enumerates the fixed IR type lattice.
type TypeKind uint8

const (
	// TypePrimitive is a source primitive: number, string, boolean, void,
	// null, undefined, any, unknown.
	TypePrimitive TypeKind = iota
	// TypeLiteral is a literal type such as "north" or 42.
	TypeLiteral
	// TypeArray is a homogeneous array.
	TypeArray
	// TypeTuple is a fixed-arity heterogeneous tuple.
	TypeTuple
	// TypeRef is a named reference with optional type arguments.
	TypeRef
	// TypeFunc is a function type.
	TypeFunc
	// TypeUnion is a union of members.
	TypeUnion
	// TypeIntersection is an intersection of members.
	TypeIntersection
	// TypeDict is a string-keyed dictionary derived from an index signature.
	TypeDict
	// TypeStructural is an anonymous structural object type. The IR builder
	// promotes eligible ones to deterministically named nominal types.
	TypeStructural
)

func (k TypeKind) String() string {
	switch k {
	case TypePrimitive:
		return "Primitive"
	case TypeLiteral:
		return "Literal"
	case TypeArray:
		return "Array"
	case TypeTuple:
		return "Tuple"
	case TypeRef:
		return "Ref"
	case TypeFunc:
		return "Func"
	case TypeUnion:
		return "Union"
	case TypeIntersection:
		return "Intersection"
	case TypeDict:
		return "Dict"
	case TypeStructural:
		return "Structural"
	}
	return "Unknown"
}

// Primitive identifies a source primitive type.
type Primitive uint8

const (
	PrimNumber Primitive = iota
	PrimString
	PrimBoolean
	PrimVoid
	PrimNull
	PrimUndefined
	PrimAny
	PrimUnknown
)

func (p Primitive) String() string {
	switch p {
	case PrimNumber:
		return "number"
	case PrimString:
		return "string"
	case PrimBoolean:
		return "boolean"
	case PrimVoid:
		return "void"
	case PrimNull:
		return "null"
	case PrimUndefined:
		return "undefined"
	case PrimAny:
		return "any"
	case PrimUnknown:
		return "unknown"
	}
	return "unknown"
}

// Type is an IR type node.
type Type struct {
	Kind TypeKind
	Span source.Span
	Data TypeData
}

// TypeData is the sealed payload interface for Type.
type TypeData interface {
	typeData()
}

// PrimitiveType holds data for TypePrimitive.
type PrimitiveType struct {
	Prim Primitive
}

func (PrimitiveType) typeData() {}

// LiteralTypeData holds data for TypeLiteral.
type LiteralTypeData struct {
	Text     string
	IsString bool
}

func (LiteralTypeData) typeData() {}

// ArrayTypeData holds data for TypeArray.
type ArrayTypeData struct {
	Elem *Type
}

func (ArrayTypeData) typeData() {}

// TupleTypeData holds data for TypeTuple.
type TupleTypeData struct {
	Elems []*Type
}

func (TupleTypeData) typeData() {}

// RefTypeData holds data for TypeRef.
type RefTypeData struct {
	Name string
	Args []*Type
}

func (RefTypeData) typeData() {}

// FuncTypeData holds data for TypeFunc.
type FuncTypeData struct {
	Params []FuncTypeParam
	Return *Type
}

// FuncTypeParam is one parameter of a function type.
type FuncTypeParam struct {
	Name     string
	Type     *Type
	Optional bool
}

func (FuncTypeData) typeData() {}

// UnionTypeData holds data for TypeUnion.
type UnionTypeData struct {
	Members []*Type
}

func (UnionTypeData) typeData() {}

// IntersectionTypeData holds data for TypeIntersection.
type IntersectionTypeData struct {
	Members []*Type
}

func (IntersectionTypeData) typeData() {}

// DictTypeData holds data for TypeDict.
type DictTypeData struct {
	Key   *Type
	Value *Type
}

func (DictTypeData) typeData() {}

// StructuralTypeData holds data for TypeStructural. SynthName is the
// deterministic nominal name assigned during structural synthesis, empty
// when the type appears in a position that needs no promotion.
type StructuralTypeData struct {
	Fields    []StructuralField
	SynthName string
}

// StructuralField is one member of a structural type.
type StructuralField struct {
	Name     string
	Type     *Type
	Optional bool
}

func (StructuralTypeData) typeData() {}

// NewPrimitive is a convenience constructor used throughout the builder.
func NewPrimitive(p Primitive, span source.Span) *Type {
	return &Type{Kind: TypePrimitive, Span: span, Data: PrimitiveType{Prim: p}}
}

// IsAbsence reports whether the type is the null or undefined primitive,
// the "absence" members that fold into target nullability.
func (t *Type) IsAbsence() bool {
	if t == nil || t.Kind != TypePrimitive {
		return false
	}
	prim := t.Data.(PrimitiveType).Prim
	return prim == PrimNull || prim == PrimUndefined
}
