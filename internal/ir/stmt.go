package ir

import "strait/internal/source"

// StmtKind enumerates IR statement kinds. Module-level declarations and
// body statements share the family; emission decides what is legal where.
type StmtKind uint8

const (
	// StmtVar represents a const/let declaration.
	StmtVar StmtKind = iota
	// StmtFunc represents a function declaration.
	StmtFunc
	// StmtInterface represents an interface declaration.
	StmtInterface
	// StmtTypeAlias represents a type alias declaration.
	StmtTypeAlias
	// StmtExpr represents an expression statement.
	StmtExpr
	// StmtReturn represents a return statement.
	StmtReturn
	// StmtIf represents an if/else statement.
	StmtIf
	// StmtWhile represents a while loop.
	StmtWhile
	// StmtForOf represents a for-of or for-await-of loop.
	StmtForOf
	// StmtBreak represents a break statement.
	StmtBreak
	// StmtContinue represents a continue statement.
	StmtContinue
	// StmtBlock represents a nested block.
	StmtBlock
)

func (k StmtKind) String() string {
	switch k {
	case StmtVar:
		return "Var"
	case StmtFunc:
		return "Func"
	case StmtInterface:
		return "Interface"
	case StmtTypeAlias:
		return "TypeAlias"
	case StmtExpr:
		return "Expr"
	case StmtReturn:
		return "Return"
	case StmtIf:
		return "If"
	case StmtWhile:
		return "While"
	case StmtForOf:
		return "ForOf"
	case StmtBreak:
		return "Break"
	case StmtContinue:
		return "Continue"
	case StmtBlock:
		return "Block"
	}
	return "Unknown"
}

// Stmt is an IR statement node.
type Stmt struct {
	Kind StmtKind
	Span source.Span
	Data StmtData
}

// StmtData is the sealed payload interface for Stmt.
type StmtData interface {
	stmtData()
}

// VarData holds data for StmtVar.
type VarData struct {
	Pattern  *Pattern
	Type     *Type // nil when inferred
	Init     *Expr // nil when only declared
	Const    bool
	Exported bool
}

func (VarData) stmtData() {}

// Param is one function or lambda parameter.
type Param struct {
	Pattern  *Pattern
	Type     *Type
	Default  *Expr
	Optional bool
}

// TypeParam is one generic parameter, carrying optional constraint and
// default propagated unchanged from source.
type TypeParam struct {
	Name       string
	Constraint *Type
	Default    *Type
}

// GeneratorShape classifies generator functions for desugaring.
type GeneratorShape uint8

const (
	// GenNone marks a non-generator function.
	GenNone GeneratorShape = iota
	// GenPlain marks a generator that only yields outward.
	GenPlain
	// GenBidirectional marks a generator that also consumes values through
	// its own yield expressions.
	GenBidirectional
)

// FuncData holds data for StmtFunc.
type FuncData struct {
	Name       string
	TypeParams []TypeParam
	Params     []Param
	Return     *Type
	Body       []*Stmt
	Async      bool
	Generator  GeneratorShape
	Exported   bool
}

func (FuncData) stmtData() {}

// InterfaceData holds data for StmtInterface.
type InterfaceData struct {
	Name       string
	TypeParams []TypeParam
	Fields     []StructuralField
	Exported   bool
}

func (InterfaceData) stmtData() {}

// TypeAliasData holds data for StmtTypeAlias.
type TypeAliasData struct {
	Name       string
	TypeParams []TypeParam
	Target     *Type
	Exported   bool
}

func (TypeAliasData) stmtData() {}

// ExprStmtData holds data for StmtExpr.
type ExprStmtData struct {
	Expr *Expr
}

func (ExprStmtData) stmtData() {}

// ReturnData holds data for StmtReturn.
type ReturnData struct {
	Value *Expr // nil for bare return
}

func (ReturnData) stmtData() {}

// NarrowKind classifies how a guard narrows a value.
type NarrowKind uint8

const (
	// NarrowPredicate comes from a call to an "x is T" type guard.
	NarrowPredicate NarrowKind = iota
	// NarrowTypeof comes from a typeof x === "..." comparison.
	NarrowTypeof
	// NarrowTruthy comes from a plain truthiness check on a nullable value.
	NarrowTruthy
)

// Narrowing records flow-sensitive refinement established by an if
// condition. The target language has no automatic narrowing, so the emitter
// turns member access on Name into an explicit cast inside the refined
// branch.
type Narrowing struct {
	Kind NarrowKind
	// Name is the narrowed binding. Only simple identifier guards narrow.
	Name string
	// Target is the refined type inside the positive branch.
	Target *Type
	// Negated is true when the guard was negated (!isT(x)), which flips
	// which branch is refined.
	Negated bool
}

// IfData holds data for StmtIf.
type IfData struct {
	Cond *Expr
	Then []*Stmt
	Else []*Stmt // nil when absent
	// Narrow is non-nil when the condition established a narrowing.
	Narrow *Narrowing
}

func (IfData) stmtData() {}

// WhileData holds data for StmtWhile.
type WhileData struct {
	Cond *Expr
	Body []*Stmt
}

func (WhileData) stmtData() {}

// ForOfData holds data for StmtForOf.
type ForOfData struct {
	Binding  *Pattern
	Iterable *Expr
	Body     []*Stmt
	Await    bool
}

func (ForOfData) stmtData() {}

// BreakData holds data for StmtBreak.
type BreakData struct{}

func (BreakData) stmtData() {}

// ContinueData holds data for StmtContinue.
type ContinueData struct{}

func (ContinueData) stmtData() {}

// BlockData holds data for StmtBlock.
type BlockData struct {
	Body []*Stmt
}

func (BlockData) stmtData() {}
