package fieldpath

import (
	"strings"
)

// Delimiter is the canonical segment separator.
const Delimiter = "."

// SliceSuffix marks a segment that descends into array elements.
const SliceSuffix = "[]"

// Path is a canonical field path. Construct it with Canonical.
type Path string

// Segment is one element of a path.
type Segment struct {
	Name    string
	IsSlice bool
}

// String returns the path text.
func (p Path) String() string {
	return string(p)
}

// IsZero reports whether the path is empty.
func (p Path) IsZero() bool {
	return p == ""
}

// Canonical collapses every accepted delimiter variant to the canonical form.
// Whitespace around the path and around each segment is removed and empty
// segments are dropped, so "a//b", "a/b" and "a. b" all become "a.b".
func Canonical(s string) Path {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	parts := strings.FieldsFunc(s, isDelimiter)
	out := parts[:0]

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		out = append(out, part)
	}

	return Path(strings.Join(out, Delimiter))
}

// Segments splits the path into its segments.
// Supports: "Field", "Nested.Field", "Items[]", "Items[].ProductID".
func (p Path) Segments() []Segment {
	if p == "" {
		return nil
	}

	parts := strings.Split(string(p), Delimiter)
	segments := make([]Segment, 0, len(parts))

	for _, part := range parts {
		name, isSlice := strings.CutSuffix(part, SliceSuffix)
		segments = append(segments, Segment{Name: name, IsSlice: isSlice})
	}

	return segments
}

// Leaf returns the name of the last segment without slice notation.
func (p Path) Leaf() string {
	segs := p.Segments()
	if len(segs) == 0 {
		return ""
	}

	return segs[len(segs)-1].Name
}

func isDelimiter(r rune) bool {
	return r == '.' || r == '/'
}
