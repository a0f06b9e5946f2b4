// Package registry provides the static interface registry: which systems
// exist, which messages they exchange per direction, and the field paths of
// each message's fixed side.
package registry
