// Package ident detects generated identifier segments in slash-delimited
// content paths and strips them to produce canonical paths.
package ident

import "strings"

// MinLength is the shortest segment treated as a generated identifier.
const MinLength = 20

// IsIdentifier reports whether segment looks like an opaque generated
// token: at least MinLength characters, ASCII letters and digits only.
// An empty segment is never an identifier.
func IsIdentifier(segment string) bool {
	if len(segment) < MinLength {
		return false
	}
	for i := 0; i < len(segment); i++ {
		c := segment[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}

// Canonicalize removes every identifier segment from path and rejoins the
// rest with "/". Empty segments are kept as-is, so "a//b" stays "a//b".
// A path made only of identifiers canonicalizes to "".
//
// Canonicalize is idempotent: its output contains no identifier segment.
func Canonicalize(path string) string {
	parts := strings.Split(path, "/")
	kept := parts[:0]
	for _, p := range parts {
		if !IsIdentifier(p) {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "/")
}

// HasIdentifier reports whether any segment of path is an identifier.
func HasIdentifier(path string) bool {
	for _, p := range strings.Split(path, "/") {
		if IsIdentifier(p) {
			return true
		}
	}
	return false
}
