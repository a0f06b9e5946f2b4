// Package storage provides the slot store: one opaque document per key,
// last writer wins.
//
// Slots is the port used by the persistence layer. Adapters:
//
//   - Memory keeps slots in a map (tests, ephemeral sessions).
//   - Dir keeps one JSON file per key in a directory, written atomically
//     through a temporary file and rename.
//   - SQLite keeps slots in a single table through gorm.
package storage
