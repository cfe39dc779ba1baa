package manifest

// CollectLeaves returns every path reference under n in document order.
// Every field of every group is descended, not only "pages", since
// navigation formats nest groups under tabs, anchors, versions and so on.
func CollectLeaves(n Node) []string {
	var out []string
	collect(n, &out)
	return out
}

func collect(n Node, out *[]string) {
	switch v := n.(type) {
	case *Group:
		for _, f := range v.Fields {
			collect(f.Value, out)
		}
	case *List:
		for _, item := range v.Items {
			collect(item, out)
		}
	case Leaf:
		*out = append(*out, string(v))
	case Value, nil:
		// Metadata; never a path.
	}
}

// Rewrite returns a copy of n in which every Leaf found as a key in
// mapping is replaced by its mapped value. Leaves without an entry and all
// Values are carried over unchanged. n itself is not modified.
func Rewrite(n Node, mapping map[string]string) Node {
	switch v := n.(type) {
	case *Group:
		out := &Group{Fields: make([]Field, len(v.Fields))}
		for i, f := range v.Fields {
			out.Fields[i] = Field{Key: f.Key, Value: Rewrite(f.Value, mapping)}
		}
		return out
	case *List:
		out := &List{Items: make([]Node, len(v.Items))}
		for i, item := range v.Items {
			out.Items[i] = Rewrite(item, mapping)
		}
		return out
	case Leaf:
		if to, ok := mapping[string(v)]; ok {
			return Leaf(to)
		}
		return v
	default:
		return n
	}
}
