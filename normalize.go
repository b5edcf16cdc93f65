package dynstruct

// GetSchema resolves declaration against defs into a canonical type tree.
// Named composite types (structs and enums) are expanded once into the Terms
// side table on first encounter; every later occurrence becomes a bare
// reference node carrying only the term key. The root is always expanded
// inline, even when it is itself a named composite.
func GetSchema(declaration string, defs DefinitionMap) *TypeSchema {
	ts := &TypeSchema{Terms: make(map[string]*TypeNode)}
	ts.Schema = ts.normalize(declaration, defs, declaration, true)
	return ts
}

func (ts *TypeSchema) normalize(decl string, defs DefinitionMap, name string, root bool) *TypeNode {
	c := Classify(decl, defs)
	switch {
	case c.Kind == KindUndefined:
		// unresolvable declarations degrade to a bare undefined node
		return &TypeNode{}
	case c.Term != "" && root:
		n := &TypeNode{Kind: c.Kind, Name: name, Term: c.Term, Length: c.Length}
		n.Fields = ts.expand(c.Members, defs)
		return n
	case c.Term != "":
		if _, ok := ts.Terms[c.Term]; !ok {
			entry := &TypeNode{Kind: c.Kind, Term: c.Term, Length: c.Length}
			// reserve the key before expanding members so self-referential
			// types resolve to references instead of recursing forever
			ts.Terms[c.Term] = entry
			entry.Fields = ts.expand(c.Members, defs)
		}
		return &TypeNode{Kind: c.Kind, Name: name, Term: c.Term}
	default:
		n := &TypeNode{Kind: c.Kind, Name: name, Signed: c.Signed, Length: c.Length}
		if len(c.Members) > 0 {
			n.Fields = ts.expand(c.Members, defs)
		}
		return n
	}
}

func (ts *TypeSchema) expand(members []Member, defs DefinitionMap) []*TypeNode {
	fields := make([]*TypeNode, 0, len(members))
	for _, m := range members {
		fields = append(fields, ts.normalize(m.Declaration, defs, m.Name, false))
	}
	return fields
}
