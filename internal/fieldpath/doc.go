// Package fieldpath canonicalizes field paths and builds field catalogs.
//
// A field path addresses a position in a hierarchical schema, for example
// "Order/Header/CustomerId" or "items[].sku". Both "/" and "." are accepted
// as delimiters; the canonical form always uses ".":
//
//	"Order/Header/CustomerId" -> "Order.Header.CustomerId"
//	" items[] / sku "         -> "items[].sku"
//
// Two paths are equal iff their canonical forms are equal. Paths are
// case-sensitive. Canonicalization is applied at every ingestion boundary
// (catalog import, row edit, rubric default lookup) so membership checks
// never depend on the delimiter a file or a user happened to choose.
package fieldpath
