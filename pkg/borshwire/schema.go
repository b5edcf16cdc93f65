package borshwire

import (
	"fmt"
	"reflect"

	dynstruct "github.com/mfrager/dynamic-struct"
)

var scalarDecls = map[reflect.Kind]string{
	reflect.Bool:    "bool",
	reflect.String:  "string",
	reflect.Int8:    "i8",
	reflect.Int16:   "i16",
	reflect.Int32:   "i32",
	reflect.Int64:   "i64",
	reflect.Int:     "i64",
	reflect.Uint8:   "u8",
	reflect.Uint16:  "u16",
	reflect.Uint32:  "u32",
	reflect.Uint64:  "u64",
	reflect.Uint:    "u64",
	reflect.Float32: "f32",
	reflect.Float64: "f64",
}

// SchemaOf inspects v's type and returns its root declaration plus the flat
// definition map describing it, in the layout GetSchema consumes. A pointer
// root is dereferenced, matching Encode. Reflection covers structs,
// sequences, fixed arrays, maps and optionals; enums beyond the optional
// shape, results and sets only exist through hand-built or loaded maps.
func SchemaOf(v any) (string, dynstruct.DefinitionMap, error) {
	t := reflect.TypeOf(v)
	if t == nil {
		return "", nil, ErrUnsupported
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	defs := make(dynstruct.DefinitionMap)
	decl, err := declarationOf(t, defs)
	if err != nil {
		return "", nil, err
	}
	return decl, defs, nil
}

func declarationOf(t reflect.Type, defs dynstruct.DefinitionMap) (string, error) {
	if d, ok := scalarDecls[t.Kind()]; ok {
		return d, nil
	}
	switch t.Kind() {
	case reflect.Struct:
		name := t.Name()
		if name == "" {
			return "", fmt.Errorf("%w: anonymous struct", ErrUnsupported)
		}
		if _, ok := defs[name]; ok {
			return name, nil
		}
		// reserve the key so self-referential types resolve to it
		defs[name] = dynstruct.Definition{Kind: dynstruct.DefStruct}
		fields := make([]dynstruct.NamedField, 0, t.NumField())
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			if sf.PkgPath != "" && !sf.Anonymous {
				continue
			}
			fd, err := declarationOf(sf.Type, defs)
			if err != nil {
				return "", err
			}
			fields = append(fields, dynstruct.Field(sf.Name, fd))
		}
		defs[name] = dynstruct.NamedStructDef(fields...)
		return name, nil
	case reflect.Slice:
		ed, err := declarationOf(t.Elem(), defs)
		if err != nil {
			return "", err
		}
		decl := "Vec<" + ed + ">"
		defs[decl] = dynstruct.SequenceDef(ed)
		return decl, nil
	case reflect.Array:
		ed, err := declarationOf(t.Elem(), defs)
		if err != nil {
			return "", err
		}
		decl := fmt.Sprintf("Array<%s, %d>", ed, t.Len())
		defs[decl] = dynstruct.ArrayDef(ed, uint32(t.Len()))
		return decl, nil
	case reflect.Map:
		kd, err := declarationOf(t.Key(), defs)
		if err != nil {
			return "", err
		}
		vd, err := declarationOf(t.Elem(), defs)
		if err != nil {
			return "", err
		}
		tuple := "Tuple<" + kd + ", " + vd + ">"
		defs[tuple] = dynstruct.TupleDef(kd, vd)
		decl := "HashMap<" + kd + ", " + vd + ">"
		defs[decl] = dynstruct.SequenceDef(tuple)
		return decl, nil
	case reflect.Pointer:
		ed, err := declarationOf(t.Elem(), defs)
		if err != nil {
			return "", err
		}
		decl := "Option<" + ed + ">"
		defs[decl] = dynstruct.EnumDef(
			dynstruct.Variant("None", "nil"),
			dynstruct.Variant("Some", ed),
		)
		return decl, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupported, t.Kind())
}
