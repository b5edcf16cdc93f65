package dynstruct

import (
	"github.com/goccy/go-json"
)

// MarshalJSON renders the node with only the keys meaningful for its kind:
// signedness appears on integers alone, lengths only where a width or count
// was recorded, children only where they exist.
func (n *TypeNode) MarshalJSON() ([]byte, error) {
	type node struct {
		Type   string      `json:"type"`
		Name   string      `json:"name,omitempty"`
		Term   string      `json:"term,omitempty"`
		Signed *bool       `json:"signed,omitempty"`
		Length uint32      `json:"length,omitempty"`
		Fields []*TypeNode `json:"fields,omitempty"`
	}
	out := node{
		Type:   n.Kind.String(),
		Name:   n.Name,
		Term:   n.Term,
		Length: n.Length,
		Fields: n.Fields,
	}
	if n.Kind == KindInt {
		out.Signed = &n.Signed
	}
	return json.Marshal(out)
}

// RenderJSON renders the schema as an indented document with the tree under
// "schema" and the shared expansions under "terms".
func RenderJSON(ts *TypeSchema) ([]byte, error) {
	return json.MarshalIndent(ts, "", "  ")
}
