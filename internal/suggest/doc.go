// Package suggest ranks catalog paths as autocomplete hints.
//
// Key functions:
//   - NormalizeIdent: normalizes path segments for fuzzy matching
//   - Levenshtein: computes edit distance between strings
//   - Rank: ranks catalog entries for a typed fragment
//   - ForPath: ranks catalog entries that likely correspond to a path of
//     the other side, by leaf and parent name similarity
//
// Suggestions are hints only. Nothing in this package changes a project.
package suggest
