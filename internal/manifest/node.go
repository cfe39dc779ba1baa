// Package manifest models the navigation manifest (docs.json) as an
// order-preserving tree and provides the read and rewrite passes over its
// navigation section.
//
// A decoded document is a tree of four node kinds:
//
//   - Group: a JSON object. Field order is kept as decoded.
//   - List:  a JSON array.
//   - Leaf:  a string element of an array, i.e. a page path reference.
//   - Value: any other scalar (object string fields, numbers, booleans,
//     null), kept as raw JSON text and written back verbatim.
package manifest

// Node is one element of a decoded manifest. The concrete type is always
// one of *Group, *List, Leaf or Value.
type Node interface {
	node()
}

// Field is a single key/value pair of a Group.
type Field struct {
	Key   string
	Value Node
}

// Group is a JSON object. Navigation groups usually carry a "pages" list,
// but any field may nest further groups.
type Group struct {
	Fields []Field
}

// List is a JSON array.
type List struct {
	Items []Node
}

// Leaf is a path reference: a string appearing as an array element.
type Leaf string

// Value is a non-path scalar held as its raw JSON encoding.
type Value string

func (*Group) node() {}
func (*List) node()  {}
func (Leaf) node()   {}
func (Value) node()  {}

// Get returns the value of the field named key. Decoded groups never hold
// duplicate keys.
func (g *Group) Get(key string) (Node, bool) {
	for _, f := range g.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Set replaces the value of the field named key, or appends a new
// field when the key is absent.
func (g *Group) Set(key string, v Node) {
	for i := range g.Fields {
		if g.Fields[i].Key == key {
			g.Fields[i].Value = v
			return
		}
	}
	g.Fields = append(g.Fields, Field{Key: key, Value: v})
}

// Pages returns the group's "pages" list, or nil when the group has none.
func (g *Group) Pages() *List {
	v, ok := g.Get("pages")
	if !ok {
		return nil
	}
	l, _ := v.(*List)
	return l
}
