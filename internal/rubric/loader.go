package rubric

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"mapforge/internal/fieldpath"
)

//go:embed rubrics.yaml
var defaultTemplates []byte

// ErrInvalidTemplate reports a rubric file that cannot be used.
var ErrInvalidTemplate = errors.New("invalid rubric template")

// Rubric is one template block.
type Rubric struct {
	Code  string `yaml:"code"  json:"code"`
	Label string `yaml:"label" json:"label"`
	// Qualifier is the auto-resolved discriminator field, if any.
	Qualifier string `yaml:"qualifier,omitempty" json:"qualifier,omitempty"`
	// Destinations are the default destination fields in declared order.
	Destinations []string `yaml:"destinations" json:"destinations"`
}

// MarkerPrefix starts the source value of every qualifier row.
const MarkerPrefix = "FIX:"

// QualifierMarker is the source value pre-filled on qualifier rows.
func (r Rubric) QualifierMarker() string {
	return MarkerPrefix + r.Code
}

// Set is an ordered collection of rubrics.
type Set struct {
	Rubrics []Rubric `yaml:"rubrics" json:"rubrics"`
}

// Lookup returns the rubric with the given code.
func (s *Set) Lookup(code string) (Rubric, bool) {
	i := slices.IndexFunc(s.Rubrics, func(r Rubric) bool { return r.Code == code })
	if i < 0 {
		return Rubric{}, false
	}

	return s.Rubrics[i], true
}

// Codes returns the rubric codes in declared order.
func (s *Set) Codes() []string {
	codes := make([]string, 0, len(s.Rubrics))
	for _, r := range s.Rubrics {
		codes = append(codes, r.Code)
	}

	return codes
}

// Default returns the built-in inbound address rubrics.
func Default() *Set {
	s, err := Parse(defaultTemplates)
	if err != nil {
		panic(fmt.Sprintf("embedded rubric templates: %v", err))
	}

	return s
}

// Load returns the templates at path, or the built-in set when path is empty.
func Load(path string) (*Set, error) {
	if path == "" {
		return Default(), nil
	}

	return LoadFile(path)
}

// LoadFile loads and parses a YAML rubric file from the given path.
func LoadFile(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rubric file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML data into a rubric Set.
func Parse(data []byte) (*Set, error) {
	var s Set

	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse rubric YAML: %w", err)
	}

	if err := normalize(&s); err != nil {
		return nil, err
	}

	return &s, nil
}

// normalize canonicalizes paths and checks codes.
func normalize(s *Set) error {
	seen := make(map[string]struct{}, len(s.Rubrics))

	for i := range s.Rubrics {
		r := &s.Rubrics[i]
		r.Code = strings.TrimSpace(r.Code)

		if r.Code == "" {
			return fmt.Errorf("%w: rubric #%d has no code", ErrInvalidTemplate, i+1)
		}

		if _, dup := seen[r.Code]; dup {
			return fmt.Errorf("%w: duplicate code %q", ErrInvalidTemplate, r.Code)
		}

		seen[r.Code] = struct{}{}

		if r.Label == "" {
			r.Label = r.Code
		}

		r.Qualifier = fieldpath.Canonical(r.Qualifier).String()

		dests := make([]string, 0, len(r.Destinations))
		for _, d := range r.Destinations {
			if c := fieldpath.Canonical(d); !c.IsZero() && !slices.Contains(dests, c.String()) {
				dests = append(dests, c.String())
			}
		}

		if len(dests) == 0 && r.Qualifier == "" {
			return fmt.Errorf("%w: rubric %q has no destinations", ErrInvalidTemplate, r.Code)
		}

		r.Destinations = dests
	}

	return nil
}
