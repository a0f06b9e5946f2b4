// Package rubric loads the rubric templates: named, toggleable blocks of
// destination fields (inbound address areas) that inject a fixed set of
// mapping rows when enabled.
//
// Templates are declared in YAML:
//
//	rubrics:
//	  - code: CZ
//	    label: Auftraggeber
//	    qualifier: CZ/Qualifier
//	    destinations: [CZ/Name, CZ/Strasse, CZ/PLZ, CZ/Ort, CZ/Land]
//
// The qualifier is optional. Paths are canonicalized on load.
package rubric
