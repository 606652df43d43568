package tsast

// Kind discriminates Node shapes.
type Kind uint16

const (
	KindInvalid Kind = iota

	KindSourceFile

	// Declarations and statements.
	KindImportDecl
	KindImportSpec
	KindExportNamed
	KindExportFrom
	KindExportSpec
	KindVarStmt
	KindVarDecl
	KindFuncDecl
	KindParam
	KindTypeParam
	KindInterfaceDecl
	KindPropSig
	KindMethodSig
	KindIndexSig
	KindTypeAliasDecl
	KindBlock
	KindIfStmt
	KindWhileStmt
	KindForOfStmt
	KindReturnStmt
	KindBreakStmt
	KindContinueStmt
	KindExprStmt

	// Expressions.
	KindIdent
	KindNumberLit
	KindStringLit
	KindBoolLit
	KindNullLit
	KindUndefinedLit
	KindObjectLit
	KindObjectProp
	KindObjectMethod
	KindObjectAccessor
	KindObjectSpread
	KindArrayLit
	KindArrow
	KindCall
	KindMember
	KindIndex
	KindBinary
	KindUnary
	KindAssign
	KindTernary
	KindParen
	KindYield
	KindAwaitExpr

	// Types.
	KindTypeRef
	KindArrayType
	KindTupleType
	KindFuncType
	KindUnionType
	KindIntersectionType
	KindLiteralType
	KindObjectType
	KindPredicateType
)

var kindNames = map[Kind]string{
	KindInvalid:          "Invalid",
	KindSourceFile:       "SourceFile",
	KindImportDecl:       "ImportDecl",
	KindImportSpec:       "ImportSpec",
	KindExportNamed:      "ExportNamed",
	KindExportFrom:       "ExportFrom",
	KindExportSpec:       "ExportSpec",
	KindVarStmt:          "VarStmt",
	KindVarDecl:          "VarDecl",
	KindFuncDecl:         "FuncDecl",
	KindParam:            "Param",
	KindTypeParam:        "TypeParam",
	KindInterfaceDecl:    "InterfaceDecl",
	KindPropSig:          "PropSig",
	KindMethodSig:        "MethodSig",
	KindIndexSig:         "IndexSig",
	KindTypeAliasDecl:    "TypeAliasDecl",
	KindBlock:            "Block",
	KindIfStmt:           "IfStmt",
	KindWhileStmt:        "WhileStmt",
	KindForOfStmt:        "ForOfStmt",
	KindReturnStmt:       "ReturnStmt",
	KindBreakStmt:        "BreakStmt",
	KindContinueStmt:     "ContinueStmt",
	KindExprStmt:         "ExprStmt",
	KindIdent:            "Ident",
	KindNumberLit:        "NumberLit",
	KindStringLit:        "StringLit",
	KindBoolLit:          "BoolLit",
	KindNullLit:          "NullLit",
	KindUndefinedLit:     "UndefinedLit",
	KindObjectLit:        "ObjectLit",
	KindObjectProp:       "ObjectProp",
	KindObjectMethod:     "ObjectMethod",
	KindObjectAccessor:   "ObjectAccessor",
	KindObjectSpread:     "ObjectSpread",
	KindArrayLit:         "ArrayLit",
	KindArrow:            "Arrow",
	KindCall:             "Call",
	KindMember:           "Member",
	KindIndex:            "Index",
	KindBinary:           "Binary",
	KindUnary:            "Unary",
	KindAssign:           "Assign",
	KindTernary:          "Ternary",
	KindParen:            "Paren",
	KindYield:            "Yield",
	KindAwaitExpr:        "AwaitExpr",
	KindTypeRef:          "TypeRef",
	KindArrayType:        "ArrayType",
	KindTupleType:        "TupleType",
	KindFuncType:         "FuncType",
	KindUnionType:        "UnionType",
	KindIntersectionType: "IntersectionType",
	KindLiteralType:      "LiteralType",
	KindObjectType:       "ObjectType",
	KindPredicateType:    "PredicateType",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Unknown"
}
