package project

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// KeyPrefix namespaces every storage key with the document version.
const KeyPrefix = "mapforge:v3"

// Key returns the storage key of a context. Each component is escaped so
// that distinct triples never share a key.
func Key(systemID string, direction Direction, messageID string) string {
	return strings.Join([]string{
		KeyPrefix,
		url.QueryEscape(systemID),
		url.QueryEscape(string(direction)),
		url.QueryEscape(messageID),
	}, ":")
}

// Key returns the storage key of the project's own context.
func (p *Project) Key() string {
	return Key(p.SystemID, p.Direction, p.MessageID)
}

// MakeEmpty returns a fresh project with a single empty round R01.
func MakeEmpty(systemID string, direction Direction, messageID string) *Project {
	return &Project{
		Version:            CurrentVersion,
		UpdatedAt:          time.Now().UTC(),
		SystemID:           systemID,
		Direction:          direction,
		MessageID:          messageID,
		SourceCatalog:      []string{},
		DestinationCatalog: []string{},
		RubricEnabled:      []string{},
		Rounds:             []Round{{ID: DefaultRoundID, Rows: []Row{}}},
		ActiveRoundID:      DefaultRoundID,
	}
}

// NewRowID returns a fresh globally unique row id.
func NewRowID() string {
	return uuid.NewString()
}

// NextRoundID returns "R<nn>" for the next free round number.
func (p *Project) NextRoundID() string {
	for n := len(p.Rounds) + 1; ; n++ {
		id := fmt.Sprintf("R%02d", n)
		if _, ok := p.Round(id); !ok {
			return id
		}
	}
}
