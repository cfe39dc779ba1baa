package manifest

import (
	"bytes"
	"strings"
)

const indentUnit = "  "

// encode writes n as indented JSON. Empty objects and arrays are written
// as {} and [].
func encode(buf *bytes.Buffer, n Node, depth int) {
	switch v := n.(type) {
	case *Group:
		if len(v.Fields) == 0 {
			buf.WriteString("{}")
			return
		}
		buf.WriteString("{\n")
		for i, f := range v.Fields {
			writeIndent(buf, depth+1)
			buf.WriteString(quote(f.Key))
			buf.WriteString(": ")
			encode(buf, f.Value, depth+1)
			if i < len(v.Fields)-1 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
		}
		writeIndent(buf, depth)
		buf.WriteByte('}')
	case *List:
		if len(v.Items) == 0 {
			buf.WriteString("[]")
			return
		}
		buf.WriteString("[\n")
		for i, item := range v.Items {
			writeIndent(buf, depth+1)
			encode(buf, item, depth+1)
			if i < len(v.Items)-1 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
		}
		writeIndent(buf, depth)
		buf.WriteByte(']')
	case Leaf:
		buf.WriteString(quote(string(v)))
	case Value:
		buf.WriteString(string(v))
	case nil:
		buf.WriteString("null")
	}
}

func writeIndent(buf *bytes.Buffer, depth int) {
	buf.WriteString(strings.Repeat(indentUnit, depth))
}
