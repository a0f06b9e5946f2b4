package project

import (
	"time"

	"mapforge/internal/common"
)

//go:generate go tool stringer -type=Side -linecomment -output=side_string.go

// CurrentVersion is the only document version accepted by Validate.
const CurrentVersion = 3

// DefaultRoundID is the id of the round every empty project starts with.
const DefaultRoundID = "R01"

// Status is the workflow marker of a mapping row. Any value may follow any other.
type Status string

const (
	StatusOpen      Status = "open"
	StatusInReview  Status = "in_review"
	StatusClarified Status = "clarified"
	StatusDone      Status = "done"
)

// Statuses lists the valid statuses in workflow order.
var Statuses = []Status{StatusOpen, StatusInReview, StatusClarified, StatusDone}

func (s Status) String() string { return string(s) }

// IsValid reports whether s is one of the four known statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusOpen, StatusInReview, StatusClarified, StatusDone:
		return true
	}

	return false
}

// Label returns the display label of the status.
func (s Status) Label() string {
	switch s {
	case StatusOpen:
		return "Open"
	case StatusInReview:
		return "In Review"
	case StatusClarified:
		return "Clarified"
	case StatusDone:
		return "Done"
	}

	return string(s)
}

// Direction tells which side of a mapping is fixed by the interface definition.
type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

func (d Direction) String() string { return string(d) }

// IsValid reports whether d is inbound or outbound.
func (d Direction) IsValid() bool {
	return d == DirectionInbound || d == DirectionOutbound
}

// FixedSide returns the side whose paths come from the interface registry:
// outbound fixes the source, inbound fixes the destination.
func (d Direction) FixedSide() Side {
	if d == DirectionOutbound {
		return SideSource
	}

	return SideDestination
}

// Side is one side of a mapping.
type Side int

const (
	SideSource      Side = iota // source
	SideDestination             // destination
)

// Row is one human judgement linking a source path to a destination path.
// Source and destination are free text; catalogs are hints, not constraints.
type Row struct {
	ID          string `json:"id"                validate:"required"`
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Status      Status `json:"status"            validate:"required,oneof=open in_review clarified done"`
	Comment     string `json:"comment"`
	Rubric      string `json:"rubric,omitempty"`
}

// IsBlank reports whether every free-text field of the row is empty or whitespace.
func (r Row) IsBlank() bool {
	return common.AllBlank(r.Source, r.Destination, r.Comment)
}

// Round is one versioned pass of mapping rows.
type Round struct {
	ID   string `json:"id"   validate:"required"`
	Rows []Row  `json:"rows" validate:"required,dive"`
}

// Project is the persisted unit for one (system, direction, message) context.
type Project struct {
	Version            int       `json:"version"`
	UpdatedAt          time.Time `json:"updatedAt"`
	SystemID           string    `json:"systemId"           validate:"required"`
	Direction          Direction `json:"direction"          validate:"required,oneof=inbound outbound"`
	MessageID          string    `json:"messageId"          validate:"required"`
	SourceCatalog      []string  `json:"sourceCatalog"      validate:"required"`
	DestinationCatalog []string  `json:"destinationCatalog" validate:"required"`
	RubricEnabled      []string  `json:"rubricEnabled"      validate:"omitempty,dive,required"`
	Rounds             []Round   `json:"rounds"             validate:"required,min=1,dive"`
	ActiveRoundID      string    `json:"activeRoundId"      validate:"required"`
}

// Catalog returns the stored catalog of the given side.
func (p *Project) Catalog(side Side) []string {
	if side == SideSource {
		return p.SourceCatalog
	}

	return p.DestinationCatalog
}

// SetCatalogRaw replaces the stored catalog of the given side without any
// canonicalization. Use reconcile.SetCatalog for user input.
func (p *Project) SetCatalogRaw(side Side, paths []string) {
	if side == SideSource {
		p.SourceCatalog = paths
		return
	}

	p.DestinationCatalog = paths
}
