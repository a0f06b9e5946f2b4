package extract

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"mapforge/internal/common"
)

const xsiNamespace = "http://www.w3.org/2001/XMLSchema-instance"

// element is a minimal DOM node: name, attributes, direct text, children.
type element struct {
	name     xml.Name
	attrs    []xml.Attr
	text     strings.Builder
	children []*element
}

func (e *element) isBranch() bool {
	return len(e.children) > 0
}

func (e *element) isNil() bool {
	for _, a := range e.attrs {
		if a.Name.Space == xsiNamespace && a.Name.Local == "nil" {
			v := strings.TrimSpace(a.Value)
			return v == "true" || v == "1"
		}
	}

	return false
}

// parseDOM reads the whole document and returns its root element.
func parseDOM(r io.Reader) (*element, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = true

	var (
		root  *element
		stack []*element
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParse, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &element{name: t.Name, attrs: t.Copy().Attr}

			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("%w: multiple root elements", ErrParse)
				}

				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, el)
			}

			stack = append(stack, el)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		}
	}

	if root == nil {
		return nil, fmt.Errorf("%w: no root element", ErrParse)
	}

	return root, nil
}

// FromXML walks an XML instance document. Elements with child elements are
// branches; every other element is a leaf addressed relative to its
// immediate parent as "<parent>/<leaf>".
func FromXML(r io.Reader) (*Result, error) {
	root, err := parseDOM(r)
	if err != nil {
		return nil, err
	}

	w := &xmlWalker{seen: make(map[string]struct{})}
	w.walk(root, "")

	slices.SortFunc(w.leaves, func(a, b Leaf) int { return strings.Compare(a.Path, b.Path) })

	paths := make([]string, 0, len(w.leaves))
	for _, l := range w.leaves {
		paths = append(paths, l.Path)
	}

	return &Result{
		Paths:    paths,
		Leaves:   w.leaves,
		Branches: common.SortedUnique(w.branches),
	}, nil
}

type xmlWalker struct {
	leaves   []Leaf
	branches []string
	seen     map[string]struct{}
}

func (w *xmlWalker) walk(el *element, parentPath string) {
	qualified := el.name.Local
	if parentPath != "" {
		qualified = parentPath + "/" + qualified
	}

	if el.isBranch() {
		w.branches = append(w.branches, qualified)
	}

	for _, child := range el.children {
		if child.isBranch() {
			w.walk(child, qualified)
			continue
		}

		path := el.name.Local + "/" + child.name.Local
		if _, dup := w.seen[path]; dup {
			continue
		}

		w.seen[path] = struct{}{}
		w.leaves = append(w.leaves, leafOf(path, child))
	}
}

func leafOf(path string, el *element) Leaf {
	if el.isNil() {
		return Leaf{Path: path, Description: NilDescription, Status: Optional}
	}

	return Leaf{Path: path, Description: strings.TrimSpace(el.text.String()), Status: Mandatory}
}

// isSchemaDocument reports whether the first element is an XSD schema root.
func isSchemaDocument(data []byte) bool {
	dec := xml.NewDecoder(bytes.NewReader(data))

	for {
		tok, err := dec.Token()
		if err != nil {
			return false
		}

		if start, ok := tok.(xml.StartElement); ok {
			return start.Name.Local == "schema" && start.Name.Space == xsdNamespace
		}
	}
}
