package diag

import "fmt"

// Code identifies a diagnostic. Codes are grouped in numeric ranges by
// compilation phase so tools can classify them without a lookup table:
//
//	1000–1999  module and name resolution
//	2000–2999  type system
//	3000–3999  identifier collisions
//	4000–4999  external interop
//	5000–5999  runtime/build support
//	6000–6999  internal invariants
//	7000–7999  language semantics (unsupported source subset)
//	8000–8999  output metadata (entry point, manifests)
type Code uint16

const (
	UnknownCode Code = 0

	// Resolution.
	ResUnresolvedImport    Code = 1001
	ResMissingExtension    Code = 1002
	ResUnknownReExport     Code = 1003
	ResDuplicateModule     Code = 1004
	ResSelfImport          Code = 1005
	ResAmbiguousReExport   Code = 1006
	ResImportCycle         Code = 1010
	ResFileLoadError       Code = 1020
	ResUnresolvedReference Code = 1030

	// Type system.
	TypeUnmappable           Code = 2001
	TypeTupleArity           Code = 2002
	TypeGenericConstraint    Code = 2003
	TypeLambdaNoContext      Code = 2007
	TypeUnionArityExceeded   Code = 2101
	TypeIntersectionCollapse Code = 2102

	// Identifier collisions.
	IdentReservedWord  Code = 3001
	IdentAmbiguousName Code = 3002
	IdentIllegalChar   Code = 3003

	// External interop.
	ExternUnknownNamespace Code = 4001
	ExternMissingBinding   Code = 4002

	// Runtime/build support.
	BuildCacheRead  Code = 5001
	BuildCacheWrite Code = 5002
	BuildWriteError Code = 5003

	// Internal invariants. Diagnostics in this range indicate an IR shape
	// that an earlier stage should have rejected; they are not recoverable.
	InternalUnhandledStmt Code = 6001
	InternalUnhandledExpr Code = 6002
	InternalUnhandledType Code = 6003
	InternalBadState      Code = 6010

	// Language semantics: constructs outside the supported source subset.
	LangUnsupportedSyntax    Code = 7001
	LangUnsupportedStmt      Code = 7002
	LangUnsupportedExpr      Code = 7003
	LangStructuralIneligible Code = 7004
	LangUnsupportedType      Code = 7005
	LangBadLexeme            Code = 7010
	LangSyntaxError          Code = 7011

	// Output metadata.
	MetaMissingEntryPoint Code = 8001
	MetaBadManifest       Code = 8002
)

func (c Code) String() string {
	return fmt.Sprintf("STR%04d", uint16(c))
}

// Phase names the range a code belongs to.
func (c Code) Phase() string {
	switch {
	case c >= 1000 && c < 2000:
		return "resolution"
	case c >= 2000 && c < 3000:
		return "types"
	case c >= 3000 && c < 4000:
		return "identifiers"
	case c >= 4000 && c < 5000:
		return "interop"
	case c >= 5000 && c < 6000:
		return "build"
	case c >= 6000 && c < 7000:
		return "internal"
	case c >= 7000 && c < 8000:
		return "semantics"
	case c >= 8000 && c < 9000:
		return "metadata"
	}
	return "unknown"
}

// Internal reports whether the code marks an invariant violation that must
// abort the run.
func (c Code) Internal() bool {
	return c >= 6000 && c < 7000
}
