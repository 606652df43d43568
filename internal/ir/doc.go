// Package ir defines the intermediate representation bridging source and
// target syntax. Unlike the source tree (one loose node type discriminated
// by a kind tag), the IR is a closed family of tagged variants: each kind
// has exactly one payload shape, traversal switches must be exhaustive, and
// nodes are immutable values once built.
package ir
