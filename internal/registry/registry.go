package registry

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"mapforge/internal/fieldpath"
	"mapforge/internal/project"
)

//go:embed registry.yaml
var defaultRegistry []byte

var (
	ErrInvalidRegistry = errors.New("invalid interface registry")
	ErrUnknownSystem   = errors.New("unknown system")
	ErrUnknownMessage  = errors.New("unknown message")
)

// Category groups systems by kind.
type Category string

const (
	CategoryTMS Category = "TMS"
	CategoryWMS Category = "WMS"
	CategoryERP Category = "ERP"
)

// System is one internal system.
type System struct {
	Slug     string   `yaml:"slug"     json:"slug"     validate:"required"`
	Name     string   `yaml:"name"     json:"name"     validate:"required"`
	Category Category `yaml:"category" json:"category" validate:"required,oneof=TMS WMS ERP"`
}

// Message is one interface message of a system in one direction.
type Message struct {
	ID        string            `yaml:"id"        json:"id"        validate:"required"`
	Title     string            `yaml:"title"     json:"title"`
	System    string            `yaml:"system"    json:"system"    validate:"required"`
	Direction project.Direction `yaml:"direction" json:"direction" validate:"required,oneof=inbound outbound"`
	// Fields are the canonical paths of the fixed side.
	Fields []string `yaml:"fields" json:"fields"`
}

// Registry is the loaded registry.
type Registry struct {
	Systems  []System  `yaml:"systems"  json:"systems"  validate:"dive"`
	Messages []Message `yaml:"messages" json:"messages" validate:"dive"`
}

// Default returns the built-in registry.
func Default() *Registry {
	r, err := Parse(defaultRegistry)
	if err != nil {
		panic(fmt.Sprintf("embedded registry: %v", err))
	}

	return r
}

// Load returns the registry at path, or the built-in one when path is empty.
func Load(path string) (*Registry, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses and checks registry YAML.
func Parse(data []byte) (*Registry, error) {
	var r Registry

	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse registry YAML: %w", err)
	}

	if err := r.check(); err != nil {
		return nil, err
	}

	for i := range r.Messages {
		r.Messages[i].Fields = fieldpath.CanonicalList(r.Messages[i].Fields)
	}

	return &r, nil
}

func (r *Registry) check() error {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		return name
	})

	if err := v.Struct(r); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRegistry, err)
	}

	slugs := make(map[string]struct{}, len(r.Systems))
	for _, s := range r.Systems {
		if _, dup := slugs[s.Slug]; dup {
			return fmt.Errorf("%w: duplicate system %q", ErrInvalidRegistry, s.Slug)
		}

		slugs[s.Slug] = struct{}{}
	}

	msgs := make(map[string]struct{}, len(r.Messages))
	for _, m := range r.Messages {
		if _, ok := slugs[m.System]; !ok {
			return fmt.Errorf("%w: message %q references unknown system %q", ErrInvalidRegistry, m.ID, m.System)
		}

		key := project.Key(m.System, m.Direction, m.ID)
		if _, dup := msgs[key]; dup {
			return fmt.Errorf("%w: duplicate message %s/%s/%s", ErrInvalidRegistry, m.System, m.Direction, m.ID)
		}

		msgs[key] = struct{}{}
	}

	return nil
}

// System returns the system with the given slug.
func (r *Registry) System(slug string) (System, bool) {
	for _, s := range r.Systems {
		if s.Slug == slug {
			return s, true
		}
	}

	return System{}, false
}

// MessagesFor lists the messages of a system in one direction, in declared order.
func (r *Registry) MessagesFor(systemID string, direction project.Direction) []Message {
	var out []Message

	for _, m := range r.Messages {
		if m.System == systemID && m.Direction == direction {
			out = append(out, m)
		}
	}

	return out
}

// Message looks up one message of a context.
func (r *Registry) Message(systemID string, direction project.Direction, messageID string) (Message, error) {
	if _, ok := r.System(systemID); !ok {
		return Message{}, fmt.Errorf("%w: %s", ErrUnknownSystem, systemID)
	}

	for _, m := range r.MessagesFor(systemID, direction) {
		if m.ID == messageID {
			return m, nil
		}
	}

	return Message{}, fmt.Errorf("%w: %s/%s/%s", ErrUnknownMessage, systemID, direction, messageID)
}

// FixedFields returns the fixed-side paths of a context, or nil when the
// context is not registered.
func (r *Registry) FixedFields(systemID string, direction project.Direction, messageID string) []string {
	m, err := r.Message(systemID, direction, messageID)
	if err != nil {
		return nil
	}

	return m.Fields
}
