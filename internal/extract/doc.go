// Package extract derives flat field-path catalogs from schema files.
//
// Three input families are supported:
//
//   - JSON instance documents: object keys are joined with ".", array
//     descent appends "[]" and only the first element of a non-empty array
//     is inspected, so {"items":[{"a":1},{"b":2}]} yields "items[].a".
//   - XML instance documents: every element without child elements is a
//     leaf addressed as "<parent>/<leaf>" relative to its immediate parent.
//     Leaves marked with xsi:nil="true" carry the "(nil)" description and
//     the optional completeness marker.
//   - XSD schemas: reachable element and attribute declarations are
//     flattened into dotted paths. Type indirection is followed to a fixed
//     depth and recursive types are cut off. An empty result means the
//     schema could not be understood, not that it has no fields.
//
// Every result is deduplicated and sorted lexicographically.
package extract
