package loader

import "strait/internal/tsast"

// Signature is the declared shape of a callable as the oracle sees it:
// parameter annotations and the return annotation, still in source-tree
// form.
type Signature struct {
	Params []*tsast.Node // KindParam nodes
	Return *tsast.Node   // return annotation, nil when omitted
	Async  bool
	// PredicateParam and PredicateType are set for type guards declaring an
	// "x is T" return. PredicateParam is the index of the narrowed
	// parameter, -1 when the named parameter could not be matched.
	PredicateParam int
	PredicateType  *tsast.Node
}

// Predicate reports whether the signature is a type guard.
func (s *Signature) Predicate() bool {
	return s != nil && s.PredicateType != nil
}

// Oracle answers type questions about parsed declarations. The IR builder
// consumes it for contextual lambda typing and narrowing detection.
type Oracle interface {
	// SignatureOf returns the declared signature of a function visible
	// under name in the module at path.
	SignatureOf(path, name string) (*Signature, bool)
}

// TreeOracle implements Oracle by scanning parsed trees. It sees function
// declarations and annotated function-typed consts.
type TreeOracle struct {
	sigs map[string]map[string]*Signature
}

// NewTreeOracle builds an oracle over the given files.
func NewTreeOracle(files []*ParsedFile) *TreeOracle {
	o := &TreeOracle{sigs: make(map[string]map[string]*Signature, len(files))}
	for _, pf := range files {
		o.scanFile(pf)
	}
	return o
}

func (o *TreeOracle) scanFile(pf *ParsedFile) {
	byName := make(map[string]*Signature)
	o.sigs[pf.Path] = byName
	for _, stmt := range pf.Tree.List {
		switch stmt.Kind {
		case tsast.KindFuncDecl:
			byName[stmt.Name.Text] = signatureOfFunc(stmt)
		case tsast.KindVarStmt:
			for _, decl := range stmt.List {
				if sig := signatureOfVar(decl); sig != nil {
					byName[decl.Name.Text] = sig
				}
			}
		}
	}
}

func signatureOfFunc(fn *tsast.Node) *Signature {
	sig := &Signature{
		Params:         fn.Params,
		Return:         fn.Type,
		Async:          fn.Has(tsast.FlagAsync),
		PredicateParam: -1,
	}
	if fn.Type != nil && fn.Type.Kind == tsast.KindPredicateType {
		sig.PredicateType = fn.Type.Type
		for i, p := range fn.Params {
			if p.Name != nil && fn.Type.Name != nil && p.Name.Text == fn.Type.Name.Text {
				sig.PredicateParam = i
				break
			}
		}
	}
	return sig
}

// signatureOfVar extracts a signature from 'const f: (a: T) => R = ...' or
// from an arrow initializer with annotated parameters.
func signatureOfVar(decl *tsast.Node) *Signature {
	if decl.Type != nil && decl.Type.Kind == tsast.KindFuncType {
		return &Signature{
			Params:         decl.Type.Params,
			Return:         decl.Type.Type,
			PredicateParam: -1,
		}
	}
	if decl.Value != nil && decl.Value.Kind == tsast.KindArrow {
		arrow := decl.Value
		return &Signature{
			Params:         arrow.Params,
			Return:         arrow.Type,
			Async:          arrow.Has(tsast.FlagAsync),
			PredicateParam: -1,
		}
	}
	return nil
}

// SignatureOf implements Oracle.
func (o *TreeOracle) SignatureOf(path, name string) (*Signature, bool) {
	byName, ok := o.sigs[path]
	if !ok {
		return nil, false
	}
	sig, ok := byName[name]
	return sig, ok
}
