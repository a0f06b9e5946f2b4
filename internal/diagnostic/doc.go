// Package diagnostic provides user-visible notices produced by editor
// operations.
//
// Every operation on a mapping project reports its outcome here instead of
// failing the process:
//   - Errors: parse or validation failures; the previous state was kept
//   - Warnings: semantic conflicts such as re-enabling an active rubric
//   - Infos: empty results ("nothing usable found") and confirmations
package diagnostic
