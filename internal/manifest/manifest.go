package manifest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"
)

// NavigationKey is the top-level field holding the navigation tree.
const NavigationKey = "navigation"

// Document is a decoded manifest. Top-level fields other than navigation
// are kept untouched and written back in their original order.
type Document struct {
	Root *Group
}

// Parse decodes a manifest and checks that it has a navigation field.
// Invalid UTF-8 is rejected rather than replaced, so fields outside
// navigation are written back byte for byte.
func Parse(data []byte) (*Document, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: invalid UTF-8", ErrMalformedManifest)
	}
	root, err := decodeDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedManifest, err)
	}
	if _, ok := root.Get(NavigationKey); !ok {
		return nil, fmt.Errorf("%w: missing %q field", ErrMalformedManifest, NavigationKey)
	}
	return &Document{Root: root}, nil
}

// Load reads and parses the manifest at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Navigation returns the navigation tree.
func (d *Document) Navigation() Node {
	n, _ := d.Root.Get(NavigationKey)
	return n
}

// SetNavigation replaces the navigation tree in place.
func (d *Document) SetNavigation(n Node) {
	d.Root.Set(NavigationKey, n)
}

// Marshal encodes the document with two-space indentation and a trailing
// newline.
func (d *Document) Marshal() []byte {
	var buf bytes.Buffer
	encode(&buf, d.Root, 0)
	buf.WriteByte('\n')
	return buf.Bytes()
}

// Save writes the document atomically (write temp + rename).
func (d *Document) Save(path string) error {
	tmp := path + ".tmp"
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	if err := os.WriteFile(tmp, d.Marshal(), mode); err != nil {
		return fmt.Errorf("writing temp manifest: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming manifest into %s: %w", filepath.Base(path), err)
	}
	return nil
}
