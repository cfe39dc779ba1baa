package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// decodeNode reads one JSON value from dec. inList marks values that are
// array elements; only those strings become Leaf nodes.
func decodeNode(dec *json.Decoder, inList bool) (Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			return decodeGroup(dec)
		case '[':
			return decodeList(dec)
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", v)
		}
	case string:
		if inList {
			return Leaf(v), nil
		}
		return Value(quote(v)), nil
	case json.Number:
		return Value(v.String()), nil
	case bool:
		if v {
			return Value("true"), nil
		}
		return Value("false"), nil
	case nil:
		return Value("null"), nil
	default:
		return nil, fmt.Errorf("unexpected token %v", tok)
	}
}

func decodeGroup(dec *json.Decoder) (*Group, error) {
	g := &Group{}
	seen := make(map[string]bool)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("object key is %T, not string", tok)
		}
		if seen[key] {
			return nil, fmt.Errorf("duplicate key %q", key)
		}
		seen[key] = true
		val, err := decodeNode(dec, false)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
		g.Fields = append(g.Fields, Field{Key: key, Value: val})
	}
	// Closing '}'.
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return g, nil
}

func decodeList(dec *json.Decoder) (*List, error) {
	l := &List{}
	for dec.More() {
		item, err := decodeNode(dec, true)
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", len(l.Items), err)
		}
		l.Items = append(l.Items, item)
	}
	// Closing ']'.
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return l, nil
}

// decodeDocument decodes data as a single JSON object.
func decodeDocument(data []byte) (*Group, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	root, err := decodeNode(dec, false)
	if err != nil {
		return nil, err
	}
	g, ok := root.(*Group)
	if !ok {
		return nil, errors.New("top level is not a JSON object")
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after top-level object")
	}
	return g, nil
}

// quote returns the JSON encoding of s without HTML escaping.
func quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}
