package ir

import "strait/internal/source"

// ExprKind enumerates IR expression kinds.
type ExprKind uint8

const (
	// ExprLiteral represents literals (number, string, boolean, null,
	// undefined).
	ExprLiteral ExprKind = iota
	// ExprIdent represents a reference to a named symbol.
	ExprIdent
	// ExprMember represents property access (expr.name).
	ExprMember
	// ExprIndex represents indexing (expr[index]).
	ExprIndex
	// ExprCall represents a call.
	ExprCall
	// ExprBinary represents a binary operator application.
	ExprBinary
	// ExprUnary represents a unary operator application.
	ExprUnary
	// ExprAssign represents assignment treated as an expression statement.
	ExprAssign
	// ExprTernary represents a conditional expression.
	ExprTernary
	// ExprLambda represents an arrow function value.
	ExprLambda
	// ExprObject represents an object literal, promoted to a synthesized
	// structural type when unannotated.
	ExprObject
	// ExprArray represents an array literal.
	ExprArray
	// ExprYield represents yield inside a generator. Bidirectional use is
	// flagged on the enclosing function, not per expression.
	ExprYield
	// ExprAwait represents await.
	ExprAwait
)

func (k ExprKind) String() string {
	switch k {
	case ExprLiteral:
		return "Literal"
	case ExprIdent:
		return "Ident"
	case ExprMember:
		return "Member"
	case ExprIndex:
		return "Index"
	case ExprCall:
		return "Call"
	case ExprBinary:
		return "Binary"
	case ExprUnary:
		return "Unary"
	case ExprAssign:
		return "Assign"
	case ExprTernary:
		return "Ternary"
	case ExprLambda:
		return "Lambda"
	case ExprObject:
		return "Object"
	case ExprArray:
		return "Array"
	case ExprYield:
		return "Yield"
	case ExprAwait:
		return "Await"
	}
	return "Unknown"
}

// Expr is an IR expression node.
type Expr struct {
	Kind ExprKind
	Span source.Span
	Type *Type // static type when the builder could determine one
	Data ExprData
}

// ExprData is the sealed payload interface for Expr.
type ExprData interface {
	exprData()
}

// LiteralKind enumerates literal classes.
type LiteralKind uint8

const (
	LitNumber LiteralKind = iota
	LitString
	LitBool
	LitNull
	LitUndefined
)

// LiteralData holds data for ExprLiteral. Text preserves the source lexeme
// of numeric literals so emission can widen them deterministically.
type LiteralData struct {
	Kind LiteralKind
	Text string
}

func (LiteralData) exprData() {}

// IdentData holds data for ExprIdent.
type IdentData struct {
	Name string
	// ImportPath is the defining module's path when the identifier is
	// bound by a local import; emission qualifies through it.
	ImportPath string
	// ImportName is the original exported name, which differs from Name
	// when the import was aliased.
	ImportName string
	// ExternalNS is the external namespace for identifiers bound by an
	// external import.
	ExternalNS string
}

func (IdentData) exprData() {}

// MemberData holds data for ExprMember.
type MemberData struct {
	Object *Expr
	Name   string
}

func (MemberData) exprData() {}

// IndexData holds data for ExprIndex.
type IndexData struct {
	Object *Expr
	Index  *Expr
}

func (IndexData) exprData() {}

// CallData holds data for ExprCall.
type CallData struct {
	Callee *Expr
	Args   []*Expr
	// Predicate is set when the callee is a type-guard function declaring
	// an "x is T" return; it drives narrowing casts at emission.
	Predicate *Predicate
}

// Predicate describes a type-guard signature: calling the function narrows
// the argument at ParamIndex to Target.
type Predicate struct {
	ParamIndex int
	Target     *Type
}

func (CallData) exprData() {}

// BinaryData holds data for ExprBinary.
type BinaryData struct {
	Op    string
	Left  *Expr
	Right *Expr
}

func (BinaryData) exprData() {}

// UnaryData holds data for ExprUnary.
type UnaryData struct {
	Op      string
	Operand *Expr
}

func (UnaryData) exprData() {}

// AssignData holds data for ExprAssign.
type AssignData struct {
	Target *Expr
	Value  *Expr
}

func (AssignData) exprData() {}

// TernaryData holds data for ExprTernary.
type TernaryData struct {
	Cond *Expr
	Then *Expr
	Else *Expr
}

func (TernaryData) exprData() {}

// LambdaData holds data for ExprLambda.
type LambdaData struct {
	Params []Param
	Return *Type
	Async  bool
	// Body is a block body; ExprBody is an expression body. Exactly one is
	// set.
	Body     []*Stmt
	ExprBody *Expr
}

func (LambdaData) exprData() {}

// ObjectData holds data for ExprObject. Struct is the structural type of
// the literal; when synthesized it carries the nominal SynthName.
type ObjectData struct {
	Struct *Type
	Props  []ObjectProp
}

// ObjectProp is one property of an object literal.
type ObjectProp struct {
	Name  string
	Value *Expr
}

func (ObjectData) exprData() {}

// ArrayData holds data for ExprArray.
type ArrayData struct {
	Elems []*Expr
}

func (ArrayData) exprData() {}

// YieldData holds data for ExprYield.
type YieldData struct {
	Value *Expr // nil for a bare yield
	// ValueUsed marks a yield whose own result feeds an enclosing
	// expression: the bidirectional case.
	ValueUsed bool
}

func (YieldData) exprData() {}

// AwaitData holds data for ExprAwait.
type AwaitData struct {
	Operand *Expr
}

func (AwaitData) exprData() {}
