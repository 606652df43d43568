// Package tsast models the source-language syntax tree the way the source
// ecosystem's own tooling does: one mutable node type discriminated by a
// kind tag, with loosely-typed slots. The IR deliberately does not follow
// this shape; tsast exists only as the front end's output contract.
package tsast

import "strait/internal/source"

// Flags carries node modifiers.
type Flags uint16

const (
	FlagExport Flags = 1 << iota
	FlagConst
	FlagAsync
	FlagGenerator
	FlagOptional
	FlagShorthand
	FlagAwait // for-await-of
)

// Node is the single syntax-tree node type. Which slots are meaningful
// depends on Kind; unused slots stay zero.
type Node struct {
	Kind  Kind
	Span  source.Span
	Flags Flags

	// Text holds identifier text, literal lexemes, operator lexemes and
	// import/export specifiers.
	Text string

	Name  *Node // declared name, property key, binding
	Type  *Node // type annotation, alias target, return type
	Value *Node // initializer, operand, callee, object of member access
	Left  *Node // binary/assignment left-hand side
	Right *Node // binary/assignment right-hand side
	Cond  *Node // condition of if/while/ternary
	Body  *Node // block or expression body
	Else  *Node // else branch, ternary alternative

	List       []*Node // statements, members, elements, arguments
	Params     []*Node // parameters of functions, arrows, function types
	TypeParams []*Node // generic parameters or type arguments
}

// Has reports whether all given flags are set.
func (n *Node) Has(f Flags) bool {
	return n != nil && n.Flags&f == f
}
