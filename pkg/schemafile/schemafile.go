// Package schemafile reads and writes flat definition maps as YAML or JSON
// documents, the hand-authored counterpart to reflection-derived maps.
package schemafile

import (
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	dynstruct "github.com/mfrager/dynamic-struct"
)

var (
	ErrNoDeclaration = errors.New("document has no root declaration")
	ErrBadKind       = errors.New("unknown definition kind")
)

// Document is the serialized form of a definition map plus the root
// declaration the schema is normalized from.
type Document struct {
	Declaration string         `yaml:"declaration" json:"declaration"`
	Definitions map[string]Def `yaml:"definitions" json:"definitions"`
}

// Def is one definition entry. Kind selects the shape: "struct" uses Fields
// or Positional (neither means an empty struct), "array" uses Elements and
// Length, "sequence" uses Elements, "tuple" uses Members and "enum" uses
// Variants.
type Def struct {
	Kind       string     `yaml:"kind" json:"kind"`
	Fields     []FieldDef `yaml:"fields,omitempty" json:"fields,omitempty"`
	Positional []string   `yaml:"positional,omitempty" json:"positional,omitempty"`
	Elements   string     `yaml:"elements,omitempty" json:"elements,omitempty"`
	Length     uint32     `yaml:"length,omitempty" json:"length,omitempty"`
	Members    []string   `yaml:"members,omitempty" json:"members,omitempty"`
	Variants   []FieldDef `yaml:"variants,omitempty" json:"variants,omitempty"`
}

// FieldDef names one struct field or enum variant.
type FieldDef struct {
	Name string `yaml:"name" json:"name"`
	Type string `yaml:"type" json:"type"`
}

var defKinds = map[string]dynstruct.DefKind{
	"struct":   dynstruct.DefStruct,
	"array":    dynstruct.DefArray,
	"sequence": dynstruct.DefSequence,
	"tuple":    dynstruct.DefTuple,
	"enum":     dynstruct.DefEnum,
}

var kindLabels = map[dynstruct.DefKind]string{
	dynstruct.DefStruct:   "struct",
	dynstruct.DefArray:    "array",
	dynstruct.DefSequence: "sequence",
	dynstruct.DefTuple:    "tuple",
	dynstruct.DefEnum:     "enum",
}

// DefinitionMap converts the document body into the map GetSchema consumes.
func (d *Document) DefinitionMap() (dynstruct.DefinitionMap, error) {
	defs := make(dynstruct.DefinitionMap, len(d.Definitions))
	for decl, def := range d.Definitions {
		kind, ok := defKinds[def.Kind]
		if !ok {
			return nil, fmt.Errorf("%w: %q in %q", ErrBadKind, def.Kind, decl)
		}
		out := dynstruct.Definition{
			Kind:       kind,
			Positional: def.Positional,
			Elements:   def.Elements,
			Length:     def.Length,
			Members:    def.Members,
		}
		for _, f := range def.Fields {
			out.Fields = append(out.Fields, dynstruct.Field(f.Name, f.Type))
		}
		for _, v := range def.Variants {
			out.Variants = append(out.Variants, dynstruct.Variant(v.Name, v.Type))
		}
		defs[decl] = out
	}
	return defs, nil
}

func (d *Document) resolve() (string, dynstruct.DefinitionMap, error) {
	if d.Declaration == "" {
		return "", nil, ErrNoDeclaration
	}
	defs, err := d.DefinitionMap()
	if err != nil {
		return "", nil, err
	}
	return d.Declaration, defs, nil
}

// ParseYAML decodes a YAML document into a root declaration and its
// definition map.
func ParseYAML(data []byte) (string, dynstruct.DefinitionMap, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return "", nil, err
	}
	return doc.resolve()
}

// LoadYAML reads a YAML document from r.
func LoadYAML(r io.Reader) (string, dynstruct.DefinitionMap, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", nil, err
	}
	return ParseYAML(data)
}

// ParseJSON decodes a JSON document into a root declaration and its
// definition map.
func ParseJSON(data []byte) (string, dynstruct.DefinitionMap, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", nil, err
	}
	return doc.resolve()
}

// LoadJSON reads a JSON document from r.
func LoadJSON(r io.Reader) (string, dynstruct.DefinitionMap, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", nil, err
	}
	return ParseJSON(data)
}

// FromDefinitions builds the document form of a declaration and its map.
func FromDefinitions(declaration string, defs dynstruct.DefinitionMap) *Document {
	doc := &Document{
		Declaration: declaration,
		Definitions: make(map[string]Def, len(defs)),
	}
	for decl, def := range defs {
		out := Def{
			Kind:       kindLabels[def.Kind],
			Positional: def.Positional,
			Elements:   def.Elements,
			Length:     def.Length,
			Members:    def.Members,
		}
		for _, f := range def.Fields {
			out.Fields = append(out.Fields, FieldDef{Name: f.Name, Type: f.Declaration})
		}
		for _, v := range def.Variants {
			out.Variants = append(out.Variants, FieldDef{Name: v.Name, Type: v.Declaration})
		}
		doc.Definitions[decl] = out
	}
	return doc
}

// DumpYAML renders declaration and defs as a YAML document.
func DumpYAML(declaration string, defs dynstruct.DefinitionMap) ([]byte, error) {
	return yaml.Marshal(FromDefinitions(declaration, defs))
}

// DumpJSON renders declaration and defs as an indented JSON document.
func DumpJSON(declaration string, defs dynstruct.DefinitionMap) ([]byte, error) {
	return json.MarshalIndent(FromDefinitions(declaration, defs), "", "  ")
}
