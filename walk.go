package dynstruct

type walkFrame struct {
	parent *TypeNode
	node   *TypeNode
}

// Walker yields the nodes of a type tree in pre-order, resolving reference
// nodes through the Terms side table as it goes. A Walker belongs to one
// caller and one traversal; construct a fresh one to start over.
//
// Schemas whose side table refers back into itself describe recursive types;
// their walk is unbounded and the caller decides when to stop.
type Walker struct {
	schema *TypeSchema
	stack  []walkFrame
	cur    walkFrame
}

// NewWalker starts a traversal at the schema root.
func NewWalker(ts *TypeSchema) *Walker {
	return &Walker{schema: ts, stack: []walkFrame{{node: ts.Schema}}}
}

// Next advances to the next node in pre-order, returning false once the
// traversal is exhausted.
func (w *Walker) Next() bool {
	if len(w.stack) == 0 {
		return false
	}
	f := w.stack[len(w.stack)-1]
	w.stack = w.stack[:len(w.stack)-1]
	w.push(f.node)
	w.cur = f
	return true
}

// push queues node's children so pop order matches declaration order.
// Reference nodes splice in the side table's expansion for their term; the
// reference itself stays the parent of the spliced children, and the table
// entry is never visited. Unknown terms contribute nothing.
func (w *Walker) push(node *TypeNode) {
	children := node.Fields
	if node.Reference() {
		if entry, ok := w.schema.Terms[node.Term]; ok {
			children = entry.Fields
		}
	}
	for i := len(children) - 1; i >= 0; i-- {
		w.stack = append(w.stack, walkFrame{parent: node, node: children[i]})
	}
}

// Node returns the node Next stopped on.
func (w *Walker) Node() *TypeNode { return w.cur.node }

// Parent returns the parent of Node; nil at the root.
func (w *Walker) Parent() *TypeNode { return w.cur.parent }
