package fieldpath

import (
	"strings"

	"mapforge/internal/common"
)

// CanonicalList canonicalizes every path, drops blanks and duplicates,
// and returns the result sorted lexicographically. The result is never nil.
func CanonicalList(paths []string) []string {
	out := make([]string, 0, len(paths))

	for _, p := range paths {
		if c := Canonical(p); !c.IsZero() {
			out = append(out, c.String())
		}
	}

	return common.SortedUnique(out)
}

// ParseLines turns free text with one path per line into a canonical list.
func ParseLines(text string) []string {
	lines := strings.FieldsFunc(text, func(r rune) bool { return r == '\n' || r == '\r' })
	return CanonicalList(lines)
}

// Set is a membership view over canonical paths.
type Set map[Path]struct{}

// NewSet builds a set from raw path strings.
func NewSet(paths []string) Set {
	s := make(Set, len(paths))
	for _, p := range paths {
		if c := Canonical(p); !c.IsZero() {
			s[c] = struct{}{}
		}
	}

	return s
}

// Has reports whether the canonical form of p is in the set.
func (s Set) Has(p string) bool {
	_, ok := s[Canonical(p)]
	return ok
}
