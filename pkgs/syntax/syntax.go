// Package syntax defines the concrete-syntax-tree contract between a
// grammar (tokenizer/parser producing typed nodes) and the tree walker.
// The walker only ever sees this narrow surface: named kind tags, byte
// ranges into the original source and field-addressable children.
package syntax

// Node is an opaque handle into a parsed tree. Nodes are read-only and
// owned by the Tree that produced them.
type Node interface {
	// Kind returns the node's kind tag.
	Kind() NodeKind
	// Named reports whether the node is semantically meaningful. Unnamed
	// nodes (punctuation, literals consumed by a parent) pass through the
	// dispatcher unchanged.
	Named() bool
	// StartByte and EndByte delimit the node's range in the source.
	StartByte() int
	EndByte() int
	// StartLine is the 1-based line of the node's first byte.
	StartLine() int
	// Children returns the node's children in document order.
	Children() []Node
	// ChildByField returns the named child field, nil when absent.
	ChildByField(field string) Node
}

// Tree is the result of parsing one source buffer.
type Tree struct {
	Root   Node
	Source []byte
}

// Grammar parses raw bytes into a syntax tree. Implementations must be
// side-effect free and safe for use by concurrent traversals; a Grammar
// handle is constructed explicitly and passed into each traversal, there
// is no process-wide parser singleton.
type Grammar interface {
	Parse(contents []byte) (*Tree, error)
}

// node is the canonical Node implementation used by the bundled grammar
// and by tests that build trees by hand.
type node struct {
	kind      NodeKind
	startByte int
	endByte   int
	startLine int
	children  []Node
	fields    map[string]Node
}

// NewNode constructs a node. fields may be nil.
func NewNode(kind NodeKind, startByte, endByte, startLine int, children []Node, fields map[string]Node) Node {
	return &node{
		kind:      kind,
		startByte: startByte,
		endByte:   endByte,
		startLine: startLine,
		children:  children,
		fields:    fields,
	}
}

func (n *node) Kind() NodeKind   { return n.kind }
func (n *node) Named() bool      { return n.kind.Named() }
func (n *node) StartByte() int   { return n.startByte }
func (n *node) EndByte() int     { return n.endByte }
func (n *node) StartLine() int   { return n.startLine }
func (n *node) Children() []Node { return n.children }

func (n *node) ChildByField(field string) Node {
	if n.fields == nil {
		return nil
	}
	return n.fields[field]
}

// Text returns the slice of source covered by a node. The caller passes
// the buffer the node was parsed from.
func Text(n Node, source []byte) string {
	start, end := n.StartByte(), n.EndByte()
	if start < 0 || end > len(source) || start > end {
		return ""
	}
	return string(source[start:end])
}
