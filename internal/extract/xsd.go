package extract

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"mapforge/internal/common"
	"mapforge/internal/fieldpath"
)

const xsdNamespace = "http://www.w3.org/2001/XMLSchema"

// maxXSDDepth bounds element nesting when following type references.
const maxXSDDepth = 10

type xsdSchema struct {
	XMLName      xml.Name         `xml:"schema"`
	Elements     []xsdElement     `xml:"element"`
	ComplexTypes []xsdComplexType `xml:"complexType"`
	Groups       []xsdGroup       `xml:"group"`
}

type xsdElement struct {
	Name        string          `xml:"name,attr"`
	Ref         string          `xml:"ref,attr"`
	Type        string          `xml:"type,attr"`
	MaxOccurs   string          `xml:"maxOccurs,attr"`
	ComplexType *xsdComplexType `xml:"complexType"`
}

type xsdAttribute struct {
	Name string `xml:"name,attr"`
	Ref  string `xml:"ref,attr"`
}

type xsdParticles struct {
	Elements  []xsdElement   `xml:"element"`
	Sequences []xsdParticles `xml:"sequence"`
	Choices   []xsdParticles `xml:"choice"`
	Groups    []xsdGroup     `xml:"group"`
}

type xsdModel struct {
	Sequence   *xsdParticles  `xml:"sequence"`
	Choice     *xsdParticles  `xml:"choice"`
	All        *xsdParticles  `xml:"all"`
	Group      *xsdGroup      `xml:"group"`
	Attributes []xsdAttribute `xml:"attribute"`
}

type xsdDerivation struct {
	Base string `xml:"base,attr"`
	xsdModel
}

type xsdContent struct {
	Extension   *xsdDerivation `xml:"extension"`
	Restriction *xsdDerivation `xml:"restriction"`
}

type xsdComplexType struct {
	Name string `xml:"name,attr"`
	xsdModel
	ComplexContent *xsdContent `xml:"complexContent"`
	SimpleContent  *xsdContent `xml:"simpleContent"`
}

type xsdGroup struct {
	Name string `xml:"name,attr"`
	Ref  string `xml:"ref,attr"`
	xsdModel
}

// FromXSD flattens the element and attribute declarations of a schema into
// dotted paths. Repeating elements carry the "[]" suffix and attributes are
// addressed as "@name". Unknown constructs (xs:any, imported types) are
// skipped, so the result may be empty.
func FromXSD(r io.Reader) ([]string, error) {
	var schema xsdSchema
	if err := xml.NewDecoder(r).Decode(&schema); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty schema", ErrParse)
		}

		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	f := newFlattener(&schema)
	for i := range schema.Elements {
		f.element(&schema.Elements[i], "", 0)
	}

	return common.SortedUnique(f.out), nil
}

type flattener struct {
	elements map[string]*xsdElement
	types    map[string]*xsdComplexType
	groups   map[string]*xsdGroup
	// active holds the named types on the current descent path.
	active map[string]bool
	out    []string
}

func newFlattener(s *xsdSchema) *flattener {
	f := &flattener{
		elements: make(map[string]*xsdElement, len(s.Elements)),
		types:    make(map[string]*xsdComplexType, len(s.ComplexTypes)),
		groups:   make(map[string]*xsdGroup, len(s.Groups)),
		active:   make(map[string]bool),
	}

	for i := range s.Elements {
		f.elements[s.Elements[i].Name] = &s.Elements[i]
	}

	for i := range s.ComplexTypes {
		f.types[s.ComplexTypes[i].Name] = &s.ComplexTypes[i]
	}

	for i := range s.Groups {
		f.groups[s.Groups[i].Name] = &s.Groups[i]
	}

	return f
}

func (f *flattener) element(el *xsdElement, prefix string, depth int) {
	if depth > maxXSDDepth {
		return
	}

	decl := el
	if el.Ref != "" {
		target, ok := f.elements[localName(el.Ref)]
		if !ok {
			return
		}

		decl = target
	}

	if decl.Name == "" {
		return
	}

	path := join(prefix, decl.Name)
	if repeats(el.MaxOccurs) {
		path += fieldpath.SliceSuffix
	}

	f.out = append(f.out, path)

	ct, key := decl.ComplexType, "element:"+decl.Name
	if ct == nil {
		key = localName(decl.Type)
		ct = f.types[key]
	}

	if ct == nil || f.active[key] {
		return
	}

	f.active[key] = true
	f.complexType(ct, path, depth)
	delete(f.active, key)
}

func (f *flattener) complexType(ct *xsdComplexType, path string, depth int) {
	f.model(&ct.xsdModel, path, depth)

	for _, content := range []*xsdContent{ct.ComplexContent, ct.SimpleContent} {
		if content == nil {
			continue
		}

		for _, d := range []*xsdDerivation{content.Extension, content.Restriction} {
			if d == nil {
				continue
			}

			if content.Extension == d {
				f.baseType(d.Base, path, depth)
			}

			f.model(&d.xsdModel, path, depth)
		}
	}
}

func (f *flattener) baseType(base, path string, depth int) {
	name := localName(base)

	ct, ok := f.types[name]
	if !ok || f.active[name] {
		return
	}

	f.active[name] = true
	f.complexType(ct, path, depth)
	delete(f.active, name)
}

func (f *flattener) model(m *xsdModel, path string, depth int) {
	for _, p := range []*xsdParticles{m.Sequence, m.Choice, m.All} {
		if p != nil {
			f.particles(p, path, depth)
		}
	}

	if m.Group != nil {
		f.group(m.Group, path, depth)
	}

	for _, a := range m.Attributes {
		name := a.Name
		if name == "" {
			name = localName(a.Ref)
		}

		if name != "" {
			f.out = append(f.out, join(path, "@"+name))
		}
	}
}

func (f *flattener) particles(p *xsdParticles, path string, depth int) {
	for i := range p.Elements {
		f.element(&p.Elements[i], path, depth+1)
	}

	for i := range p.Sequences {
		f.particles(&p.Sequences[i], path, depth)
	}

	for i := range p.Choices {
		f.particles(&p.Choices[i], path, depth)
	}

	for i := range p.Groups {
		f.group(&p.Groups[i], path, depth)
	}
}

func (f *flattener) group(g *xsdGroup, path string, depth int) {
	if g.Ref == "" {
		f.model(&g.xsdModel, path, depth)
		return
	}

	name := "group:" + localName(g.Ref)

	target, ok := f.groups[localName(g.Ref)]
	if !ok || f.active[name] {
		return
	}

	f.active[name] = true
	f.model(&target.xsdModel, path, depth)
	delete(f.active, name)
}

func repeats(maxOccurs string) bool {
	if maxOccurs == "unbounded" {
		return true
	}

	n, err := strconv.Atoi(maxOccurs)

	return err == nil && n > 1
}

func localName(qname string) string {
	if i := strings.LastIndexByte(qname, ':'); i >= 0 {
		return qname[i+1:]
	}

	return qname
}

func join(prefix, name string) string {
	if prefix == "" {
		return name
	}

	return prefix + fieldpath.Delimiter + name
}
