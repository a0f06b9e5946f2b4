package common

import "strings"

// UnknownStr is returned by String methods for out-of-range enum values.
const UnknownStr = "unknown"

// IsBlank reports whether s is empty or consists of whitespace only.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// AllBlank reports whether every value is blank.
func AllBlank(values ...string) bool {
	for _, v := range values {
		if !IsBlank(v) {
			return false
		}
	}

	return true
}
