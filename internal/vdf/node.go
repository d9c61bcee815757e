package vdf

import "strconv"

// Kind discriminates the variants a Node can hold.
type Kind int

const (
	KindMap Kind = iota
	KindString
	KindInt
)

func (k Kind) String() string {
	switch k {
	case KindMap:
		return "map"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	}
	return "unknown"
}

// Node is one value in a keyed-value tree: a string scalar, a 32-bit integer
// scalar, or an ordered mapping from string keys to child nodes. Key order is
// preserved because downstream slot numbering scans keys in store order.
type Node struct {
	kind     Kind
	str      string
	num      int32
	keys     []string
	children map[string]*Node
}

// NewMap returns an empty ordered-map node.
func NewMap() *Node {
	return &Node{kind: KindMap, children: map[string]*Node{}}
}

// String returns a string scalar node.
func String(v string) *Node {
	return &Node{kind: KindString, str: v}
}

// Int returns a 32-bit integer scalar node.
func Int(v int32) *Node {
	return &Node{kind: KindInt, num: v}
}

// Kind reports which variant the node holds.
func (n *Node) Kind() Kind {
	if n == nil {
		return KindMap
	}
	return n.kind
}

// IsMap reports whether the node is an ordered map.
func (n *Node) IsMap() bool {
	return n != nil && n.kind == KindMap
}

// StringValue returns the string scalar, or the decimal form of an integer
// scalar. Map nodes return "".
func (n *Node) StringValue() string {
	if n == nil {
		return ""
	}
	switch n.kind {
	case KindString:
		return n.str
	case KindInt:
		return strconv.FormatInt(int64(n.num), 10)
	}
	return ""
}

// IntValue returns the integer scalar value; zero for other kinds.
func (n *Node) IntValue() int32 {
	if n == nil || n.kind != KindInt {
		return 0
	}
	return n.num
}

// Len returns the number of entries in a map node.
func (n *Node) Len() int {
	if n == nil || n.kind != KindMap {
		return 0
	}
	return len(n.keys)
}

// Keys returns the map keys in store order. The returned slice is a copy.
func (n *Node) Keys() []string {
	if n == nil || n.kind != KindMap {
		return nil
	}
	return append([]string(nil), n.keys...)
}

// Get returns the child for key when the node is a map and the key exists.
func (n *Node) Get(key string) (*Node, bool) {
	if n == nil || n.kind != KindMap {
		return nil, false
	}
	child, ok := n.children[key]
	return child, ok
}

// Set stores child under key. An existing key keeps its position; a new key
// is appended. Setting on a non-map node is a no-op.
func (n *Node) Set(key string, child *Node) {
	if n == nil || n.kind != KindMap {
		return
	}
	if _, exists := n.children[key]; !exists {
		n.keys = append(n.keys, key)
	}
	n.children[key] = child
}

// Map returns the child map under key, creating it when absent. A non-map
// child under that key is replaced.
func (n *Node) Map(key string) *Node {
	if child, ok := n.Get(key); ok && child.IsMap() {
		return child
	}
	child := NewMap()
	n.Set(key, child)
	return child
}

// Equal reports deep structural equality, including map key order.
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	if n.kind != other.kind {
		return false
	}
	switch n.kind {
	case KindString:
		return n.str == other.str
	case KindInt:
		return n.num == other.num
	}
	if len(n.keys) != len(other.keys) {
		return false
	}
	for i, key := range n.keys {
		if other.keys[i] != key {
			return false
		}
		if !n.children[key].Equal(other.children[key]) {
			return false
		}
	}
	return true
}
