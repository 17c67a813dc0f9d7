// Package fieldpath resolves dotted field paths against decoded JSON values.
package fieldpath

import (
	"strconv"
	"strings"
)

// A Path addresses a value inside a decoded JSON document: dot-separated map
// keys, each optionally followed by a bracketed list index, for example
// fullName.name or spec.conditions[0].type.
type Path struct {
	raw      string
	segments []segment
}

type segment struct {
	key      string
	index    int
	hasIndex bool
}

// Parse splits a path string into its segments. Malformed bracket text stays
// part of the key, so lookups through it miss instead of failing.
func Parse(s string) Path {
	s = strings.TrimSpace(s)
	if s == "" {
		return Path{}
	}
	parts := strings.Split(s, ".")
	segs := make([]segment, 0, len(parts))
	for _, part := range parts {
		key, idx, hasIdx := splitIndex(strings.TrimSpace(part))
		segs = append(segs, segment{key: key, index: idx, hasIndex: hasIdx})
	}
	return Path{raw: s, segments: segs}
}

func (p Path) String() string { return p.raw }

// IsEmpty reports whether the path has no segments. Navigating an empty path
// yields the input value itself.
func (p Path) IsEmpty() bool { return len(p.segments) == 0 }

// Navigate walks the path through nested maps and lists. The boolean is false
// when any step misses: absent key, wrong container type, or index out of
// range. A missing value is never an error.
func Navigate(v any, p Path) (any, bool) {
	cur := v
	for _, seg := range p.segments {
		if seg.key != "" {
			m, ok := cur.(map[string]any)
			if !ok {
				return nil, false
			}
			next, ok := m[seg.key]
			if !ok {
				return nil, false
			}
			cur = next
		}
		if seg.hasIndex {
			arr, ok := cur.([]any)
			if !ok {
				return nil, false
			}
			if seg.index < 0 || seg.index >= len(arr) {
				return nil, false
			}
			cur = arr[seg.index]
		}
	}
	return cur, true
}

// Lookup parses and navigates in one step.
func Lookup(v any, path string) (any, bool) {
	return Navigate(v, Parse(path))
}

func splitIndex(s string) (key string, idx int, hasIndex bool) {
	open := strings.IndexByte(s, '[')
	if open < 0 {
		return s, 0, false
	}
	// The bracket must terminate the segment; trailing text makes the
	// whole segment a literal key.
	end := strings.IndexByte(s, ']')
	if end < open || end != len(s)-1 {
		return s, 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(s[open+1 : end]))
	if err != nil {
		return s, 0, false
	}
	return s[:open], n, true
}
