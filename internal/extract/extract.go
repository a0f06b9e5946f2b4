package extract

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

//go:generate go tool stringer -type=Format -linecomment -output=format_string.go

var (
	// ErrParse reports input that could not be parsed in the selected format.
	ErrParse = errors.New("cannot parse schema file")
	// ErrUnsupportedFormat reports an unknown format name.
	ErrUnsupportedFormat = errors.New("unsupported schema format")
)

// Format is the parser family used for a schema file.
type Format int

const (
	FormatJSON Format = iota // json
	FormatXML                // xml
	FormatXSD                // xsd
)

// ParseFormat resolves a format name such as "xsd".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "xml":
		return FormatXML, nil
	case "xsd":
		return FormatXSD, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// Completeness marks whether a leaf is mandatory ("M") or optional ("O").
type Completeness string

const (
	Mandatory Completeness = "M"
	Optional  Completeness = "O"
)

// NilDescription is the description of a leaf carrying xsi:nil="true".
const NilDescription = "(nil)"

// Leaf is one XML leaf with the details shown in the interface tree.
type Leaf struct {
	Path        string       `json:"path"`
	Description string       `json:"description"`
	Status      Completeness `json:"status"`
}

// Result is the outcome of an extraction.
type Result struct {
	Format Format `json:"-"`
	// Paths is the sorted, deduplicated catalog.
	Paths []string `json:"paths"`
	// Leaves holds per-leaf details for XML instance documents.
	Leaves []Leaf `json:"leaves,omitempty"`
	// Branches holds the root-qualified paths of XML elements with children.
	Branches []string `json:"branches,omitempty"`
}

// IsEmpty reports whether nothing usable was found.
func (r *Result) IsEmpty() bool {
	return len(r.Paths) == 0
}

// Detect picks the parser family from the file name and, for XML files,
// from the document root. ".xml" and ".xsd" select the XML family; a file
// whose root is a schema element is treated as XSD. Anything else is JSON.
func Detect(name string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xsd":
		return FormatXSD
	case ".xml":
		if isSchemaDocument(data) {
			return FormatXSD
		}

		return FormatXML
	}

	return FormatJSON
}

// FromFile extracts the catalog of a named schema file.
func FromFile(name string, data []byte) (*Result, error) {
	return Extract(Detect(name, data), data)
}

// Extract runs the extractor of the given format.
func Extract(format Format, data []byte) (*Result, error) {
	var (
		res *Result
		err error
	)

	switch format {
	case FormatJSON:
		var paths []string

		paths, err = FromJSON(data)
		res = &Result{Paths: paths}
	case FormatXML:
		res, err = FromXML(bytes.NewReader(data))
	case FormatXSD:
		var paths []string

		paths, err = FromXSD(bytes.NewReader(data))
		res = &Result{Paths: paths}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	if err != nil {
		return nil, err
	}

	res.Format = format

	return res, nil
}
