package common

import (
	"cmp"
	"slices"
)

// First returns the first element of the slice and true, or the zero value and false if empty.
func First[S ~[]E, E any](s S) (E, bool) {
	if len(s) == 0 {
		var zero E
		return zero, false
	}

	return s[0], true
}

// SortedUnique returns a sorted copy of s with duplicates removed.
// The input slice is left untouched. The result is never nil.
func SortedUnique[S ~[]E, E cmp.Ordered](s S) S {
	out := make(S, len(s))
	copy(out, s)
	slices.Sort(out)

	return slices.Compact(out)
}

// NonNil returns s, or an empty non-nil slice when s is nil.
// Used before serialization so that empty collections encode as [] instead of null.
func NonNil[S ~[]E, E any](s S) S {
	if s == nil {
		return S{}
	}

	return s
}
