package dynstruct

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSchemaSimpleStruct(t *testing.T) {
	defs := DefinitionMap{
		"Person": NamedStructDef(Field("name", "string"), Field("flag", "bool")),
	}
	ts := GetSchema("Person", defs)

	root := ts.Schema
	require.Equal(t, KindStruct, root.Kind)
	require.Equal(t, "Person", root.Name)
	require.Equal(t, "Person", root.Term)
	require.Len(t, root.Fields, 2)
	// root is inlined, so nothing else forces a side-table entry
	require.Empty(t, ts.Terms)

	require.Equal(t, KindString, root.Fields[0].Kind)
	require.Equal(t, "name", root.Fields[0].Name)
	require.Equal(t, KindBool, root.Fields[1].Kind)
	require.Equal(t, "flag", root.Fields[1].Name)
	require.Zero(t, root.Fields[1].Length)
}

func TestSchemaScalarRoot(t *testing.T) {
	ts := GetSchema("u32", nil)
	require.Equal(t, KindInt, ts.Schema.Kind)
	require.Equal(t, "u32", ts.Schema.Name)
	require.Equal(t, uint32(4), ts.Schema.Length)
	require.False(t, ts.Schema.Signed)
	require.Empty(t, ts.Terms)
}

func TestSchemaSharedTerm(t *testing.T) {
	defs := DefinitionMap{
		"Pair":  NamedStructDef(Field("a", "Other"), Field("b", "Other")),
		"Other": NamedStructDef(Field("id", "u32")),
	}
	ts := GetSchema("Pair", defs)

	require.Len(t, ts.Schema.Fields, 2)
	a, b := ts.Schema.Fields[0], ts.Schema.Fields[1]
	require.True(t, a.Reference())
	require.True(t, b.Reference())
	require.Equal(t, "a", a.Name)
	require.Equal(t, "Other", a.Term)
	require.Nil(t, a.Fields)
	require.Nil(t, b.Fields)

	// one canonical expansion, unnamed
	require.Len(t, ts.Terms, 1)
	entry := ts.Terms["Other"]
	require.NotNil(t, entry)
	require.Empty(t, entry.Name)
	require.Len(t, entry.Fields, 1)
	require.Equal(t, KindInt, entry.Fields[0].Kind)
	require.Equal(t, "id", entry.Fields[0].Name)
}

func TestSchemaSelfReferential(t *testing.T) {
	defs := DefinitionMap{
		"Person":      NamedStructDef(Field("uuid", "u128"), Field("other", "Vec<Person>")),
		"Vec<Person>": SequenceDef("Person"),
	}
	ts := GetSchema("Person", defs)

	root := ts.Schema
	require.Equal(t, "Person", root.Term)
	require.Len(t, root.Fields, 2)
	require.Equal(t, uint32(16), root.Fields[0].Length)

	vec := root.Fields[1]
	require.Equal(t, KindVec, vec.Kind)
	require.Len(t, vec.Fields, 1)
	require.True(t, vec.Fields[0].Reference())

	require.Len(t, ts.Terms, 1)
	entry := ts.Terms["Person"]
	require.Len(t, entry.Fields, 2)
	inner := entry.Fields[1].Fields[0]
	require.True(t, inner.Reference())
	require.Equal(t, "Person", inner.Term)
}

func TestSchemaMutualRecursion(t *testing.T) {
	defs := DefinitionMap{
		"A": NamedStructDef(Field("b", "B")),
		"B": NamedStructDef(Field("a", "A")),
	}
	ts := GetSchema("A", defs)

	require.True(t, ts.Schema.Fields[0].Reference())
	require.Len(t, ts.Terms, 2)
	require.True(t, ts.Terms["B"].Fields[0].Reference())
	require.True(t, ts.Terms["A"].Fields[0].Reference())
}

func TestSchemaRootEnum(t *testing.T) {
	defs := DefinitionMap{
		"Shape":   EnumDef(Variant("Circle", "CircleV"), Variant("Square", "SquareV")),
		"CircleV": NamedStructDef(Field("r", "f64")),
		"SquareV": NamedStructDef(Field("s", "f64")),
	}
	ts := GetSchema("Shape", defs)

	root := ts.Schema
	require.Equal(t, KindEnum, root.Kind)
	require.Equal(t, "Shape", root.Term)
	require.Equal(t, uint32(2), root.Length)
	require.False(t, root.Reference())
	require.Len(t, root.Fields, 2)
	require.Equal(t, "Circle", root.Fields[0].Name)
	require.True(t, root.Fields[0].Reference())

	// the variant structs dedup, the root enum itself does not
	require.Len(t, ts.Terms, 2)
	require.NotContains(t, ts.Terms, "Shape")
}

func TestSchemaEnumAsField(t *testing.T) {
	defs := DefinitionMap{
		"Holder": NamedStructDef(Field("state", "State")),
		"State":  EnumDef(Variant("On", "OnV"), Variant("Off", "OffV")),
		"OnV":    EmptyStructDef(),
		"OffV":   EmptyStructDef(),
	}
	ts := GetSchema("Holder", defs)

	state := ts.Schema.Fields[0]
	require.Equal(t, KindEnum, state.Kind)
	require.Equal(t, "state", state.Name)
	require.True(t, state.Reference())
	require.Zero(t, state.Length)

	entry := ts.Terms["State"]
	require.Equal(t, uint32(2), entry.Length)
	require.Len(t, entry.Fields, 2)
	require.Equal(t, KindVariant, entry.Fields[0].Kind)
	require.Equal(t, "On", entry.Fields[0].Name)
	require.Nil(t, entry.Fields[0].Fields)
}

func TestSchemaOption(t *testing.T) {
	defs := DefinitionMap{
		"Option<u64>": EnumDef(Variant("None", "nil"), Variant("Some", "u64")),
	}
	ts := GetSchema("Option<u64>", defs)

	require.Equal(t, KindOption, ts.Schema.Kind)
	require.Equal(t, "Option<u64>", ts.Schema.Name)
	require.Len(t, ts.Schema.Fields, 1)
	require.Equal(t, KindInt, ts.Schema.Fields[0].Kind)
	require.Empty(t, ts.Terms)
}

func TestSchemaHashMap(t *testing.T) {
	defs := DefinitionMap{
		"HashMap<string, u32>": SequenceDef("Tuple<string, u32>"),
		"Tuple<string, u32>":   TupleDef("string", "u32"),
	}
	ts := GetSchema("HashMap<string, u32>", defs)

	require.Equal(t, KindHashMap, ts.Schema.Kind)
	require.Len(t, ts.Schema.Fields, 1)
	tuple := ts.Schema.Fields[0]
	require.Equal(t, KindTuple, tuple.Kind)
	require.Equal(t, uint32(2), tuple.Length)
	require.Len(t, tuple.Fields, 2)
	require.Equal(t, KindString, tuple.Fields[0].Kind)
	require.Equal(t, KindInt, tuple.Fields[1].Kind)
}

func TestSchemaUndefined(t *testing.T) {
	ts := GetSchema("Whatever", nil)
	require.Equal(t, KindUndefined, ts.Schema.Kind)
	require.Empty(t, ts.Schema.Name)
	require.Nil(t, ts.Schema.Fields)

	// unresolved members degrade the same way without spoiling siblings
	defs := DefinitionMap{
		"Holder": NamedStructDef(Field("x", "Mystery"), Field("y", "u8")),
	}
	ts = GetSchema("Holder", defs)
	require.Equal(t, KindUndefined, ts.Schema.Fields[0].Kind)
	require.Empty(t, ts.Schema.Fields[0].Name)
	require.Equal(t, KindInt, ts.Schema.Fields[1].Kind)
}
