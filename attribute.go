package dynstruct

import "strconv"

// Attribution Notes
//
// An encoder writing a value of the schema's root type emits one byte chunk
// per scalar write, in field order. The Attributor replays the schema in the
// same order and hands each incoming chunk to the next leaf that still
// expects one. Chunk contents are never read; only their arrival order and
// sizes matter. Containers own no chunks. They are opened when visited and
// closed when the walk moves past their subtree, so an empty container
// closes on the spot and a chunk arriving with nothing left open is a
// protocol violation.

// Attribution records which leaf of the walked tree one byte chunk belongs
// to. Parent is the leaf's tree parent, which for spliced fields is the
// reference node standing at the use site. Path joins the names along the
// open branch with slashes, falling back to sibling indexes for unnamed
// members.
type Attribution struct {
	Node   *TypeNode
	Parent *TypeNode
	Path   string
	Part   int
	Parts  int
	Size   int
}

type attrFrame struct {
	node      *TypeNode
	parent    *TypeNode
	path      string
	children  int
	remaining int
	parts     int
}

// Attributor pairs the chunks of one encode invocation with the leaves of
// one walked type tree. Exactly one Attributor serves one encode call;
// chunks from concurrent encodes must not share an instance.
type Attributor struct {
	walker *Walker
	stack  []attrFrame
}

// NewAttributor builds an Attributor over a fresh walk of ts. Schemas whose
// walk recurses before reaching any chunk-bearing leaf can never pair a
// chunk and are rejected with a panic.
func NewAttributor(ts *TypeSchema) *Attributor {
	if leaflessCycle(ts) {
		panic("schema recurses before any chunk-bearing leaf")
	}
	return &Attributor{walker: NewWalker(ts)}
}

// leaflessCycle reports whether the walk re-enters a side-table term without
// passing a chunk-bearing leaf on the way. From that point the walk repeats
// the same chunkless stretch forever, so no pending scan over it could
// terminate. Leaves declared behind the recursion point do not count; walk
// order never reaches them.
func leaflessCycle(ts *TypeSchema) bool {
	open := map[string]*bool{}
	var scan func(*TypeNode) bool
	scan = func(n *TypeNode) bool {
		if n.Kind.Leaf() {
			for _, sawLeaf := range open {
				*sawLeaf = true
			}
			return false
		}
		children := n.Fields
		if n.Reference() {
			if sawLeaf, ok := open[n.Term]; ok {
				return !*sawLeaf
			}
			entry, ok := ts.Terms[n.Term]
			if !ok {
				return false
			}
			sawLeaf := false
			open[n.Term] = &sawLeaf
			defer delete(open, n.Term)
			children = entry.Fields
		}
		for _, f := range children {
			if scan(f) {
				return true
			}
		}
		return false
	}
	return scan(ts.Schema)
}

// chunkCount is the number of chunks an encoder emits for one value of the
// given leaf shape. Strings arrive as a length prefix then a payload; sized
// scalars and bools arrive whole. Containers and undefined nodes own none.
func chunkCount(k Kind) int {
	switch k {
	case KindString:
		return 2
	case KindBool, KindInt, KindFloat:
		return 1
	}
	return 0
}

// Attribute assigns chunk to the next leaf in walk order that still expects
// one and reports the pairing. It panics when a chunk arrives after the walk
// is exhausted.
func (a *Attributor) Attribute(chunk []byte) Attribution {
	f := a.pending()
	if f == nil {
		panic("no pending field")
	}
	part := f.parts - f.remaining
	f.remaining--
	return Attribution{
		Node:   f.node,
		Parent: f.parent,
		Path:   f.path,
		Part:   part,
		Parts:  f.parts,
		Size:   len(chunk),
	}
}

// Exhausted reports whether every chunk-bearing leaf has been consumed. It
// advances the walk past trailing nodes that own no chunks.
func (a *Attributor) Exhausted() bool {
	return a.pending() == nil
}

// pending positions the walk on the leaf owed the next chunk, or returns nil
// when none remains. Frames above the incoming node's parent are exhausted
// subtrees and close on the way; a container frame therefore lives exactly
// as long as its children keep arriving.
func (a *Attributor) pending() *attrFrame {
	if n := len(a.stack); n > 0 && a.stack[n-1].remaining > 0 {
		return &a.stack[n-1]
	}
	for a.walker.Next() {
		node, parent := a.walker.Node(), a.walker.Parent()
		for len(a.stack) > 0 && a.stack[len(a.stack)-1].node != parent {
			a.stack = a.stack[:len(a.stack)-1]
		}
		f := attrFrame{node: node, parent: parent, parts: chunkCount(node.Kind)}
		f.remaining = f.parts
		if len(a.stack) > 0 {
			top := &a.stack[len(a.stack)-1]
			f.path = top.path + "/" + pathElement(node, top.children)
			top.children++
		} else {
			f.path = pathElement(node, 0)
		}
		a.stack = append(a.stack, f)
		if f.remaining > 0 {
			return &a.stack[len(a.stack)-1]
		}
	}
	return nil
}

func pathElement(n *TypeNode, index int) string {
	if n.Name != "" {
		return n.Name
	}
	return strconv.Itoa(index)
}
