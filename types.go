// Package dynstruct normalizes flat, string-keyed type definitions into
// canonical type trees and pairs the byte chunks of a binary encoder with
// the leaves of those trees, without decoding any values.
package dynstruct

// Kind identifies the shape of a node in a normalized type tree.
type Kind uint8

const (
	KindUndefined Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindEnum
	KindVariant
	KindTuple
	KindStruct
	KindArray
	KindVec
	KindOption
	KindResult
	KindHashSet
	KindHashMap
)

var kindNames = [...]string{
	"undefined",
	"bool",
	"int",
	"float",
	"string",
	"enum",
	"variant",
	"tuple",
	"struct",
	"array",
	"vec",
	"option",
	"result",
	"hashset",
	"hashmap",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "undefined"
}

// Leaf reports whether nodes of this kind own encoded byte chunks. Every
// other kind is a container that is descended through, or undefined.
func (k Kind) Leaf() bool {
	switch k {
	case KindBool, KindInt, KindFloat, KindString:
		return true
	}
	return false
}

// TypeNode is one node of a normalized type tree.
//
// Name is the field or variant name assigned by the parent occurrence; the
// root carries its own declaration. Term is set on struct and enum nodes and
// keys the shared expansion in the side table. Length holds the byte width
// of sized scalars, the element count of arrays, tuples and positional
// variants, and the variant count on enum side-table entries. Fields are the
// ordered children; they stay nil on scalars and on reference nodes.
type TypeNode struct {
	Kind   Kind
	Name   string
	Term   string
	Signed bool
	Length uint32
	Fields []*TypeNode
}

// Reference reports whether n stands in for a side-table expansion instead
// of carrying its own children.
func (n *TypeNode) Reference() bool {
	return n.Fields == nil && n.Term != "" && (n.Kind == KindStruct || n.Kind == KindEnum)
}

// TypeSchema is a normalized type tree plus the side table of shared
// expansions its reference nodes point into. A schema is immutable once
// built and safe for concurrent readers.
type TypeSchema struct {
	Schema *TypeNode            `json:"schema"`
	Terms  map[string]*TypeNode `json:"terms"`
}
