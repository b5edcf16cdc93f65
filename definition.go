package dynstruct

// DefKind identifies the structural shape of a flat-map definition.
type DefKind uint8

const (
	DefStruct DefKind = iota + 1
	DefArray
	DefSequence
	DefTuple
	DefEnum
)

// NamedField pairs a field or variant name with its declaration string.
type NamedField struct {
	Name        string
	Declaration string
}

// Definition describes one declaration in a flat definition map. Only the
// keys matching its DefKind are meaningful: structs carry Fields (named) or
// Positional (unnamed) or neither (empty), arrays carry Elements and Length,
// sequences carry Elements, tuples carry Members, enums carry Variants.
type Definition struct {
	Kind       DefKind
	Fields     []NamedField
	Positional []string
	Elements   string
	Length     uint32
	Members    []string
	Variants   []NamedField
}

// DefinitionMap is a flat universe of type definitions keyed by declaration
// string. It is supplied once per schema build and never mutated by this
// package.
type DefinitionMap map[string]Definition

// Field builds a named struct field.
func Field(name, declaration string) NamedField {
	return NamedField{Name: name, Declaration: declaration}
}

// Variant builds one enum variant.
func Variant(name, declaration string) NamedField {
	return NamedField{Name: name, Declaration: declaration}
}

// NamedStructDef builds a struct definition with named fields.
func NamedStructDef(fields ...NamedField) Definition {
	return Definition{Kind: DefStruct, Fields: fields}
}

// PositionalStructDef builds a struct definition with unnamed members.
func PositionalStructDef(declarations ...string) Definition {
	return Definition{Kind: DefStruct, Positional: declarations}
}

// EmptyStructDef builds a struct definition with no members.
func EmptyStructDef() Definition {
	return Definition{Kind: DefStruct}
}

// ArrayDef builds a fixed-length array definition.
func ArrayDef(elements string, length uint32) Definition {
	return Definition{Kind: DefArray, Elements: elements, Length: length}
}

// SequenceDef builds a variable-length sequence definition.
func SequenceDef(elements string) Definition {
	return Definition{Kind: DefSequence, Elements: elements}
}

// TupleDef builds a tuple definition over the member declarations.
func TupleDef(members ...string) Definition {
	return Definition{Kind: DefTuple, Members: members}
}

// EnumDef builds an enum definition over the ordered variants.
func EnumDef(variants ...NamedField) Definition {
	return Definition{Kind: DefEnum, Variants: variants}
}
