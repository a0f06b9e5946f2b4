package project

import (
	"fmt"
	"slices"
	"time"

	"mapforge/internal/fieldpath"
)

// RowPatch carries the fields to change on a row. Nil fields stay untouched.
type RowPatch struct {
	Source      *string `json:"source,omitempty"`
	Destination *string `json:"destination,omitempty"`
	Status      *Status `json:"status,omitempty"`
	Comment     *string `json:"comment,omitempty"`
}

// NewRow returns an open row with a fresh id.
func NewRow(source, destination string) Row {
	return Row{
		ID:          NewRowID(),
		Source:      source,
		Destination: destination,
		Status:      StatusOpen,
	}
}

// Touch stamps the modification time.
func (p *Project) Touch(now time.Time) {
	p.UpdatedAt = now.UTC()
}

// Round returns the round with the given id.
func (p *Project) Round(id string) (*Round, bool) {
	for i := range p.Rounds {
		if p.Rounds[i].ID == id {
			return &p.Rounds[i], true
		}
	}

	return nil, false
}

// ActiveRound returns the currently edited round. A project that passed
// Check always has one; otherwise the first round is used.
func (p *Project) ActiveRound() *Round {
	if r, ok := p.Round(p.ActiveRoundID); ok {
		return r
	}

	if len(p.Rounds) == 0 {
		p.Rounds = []Round{{ID: DefaultRoundID, Rows: []Row{}}}
	}

	p.ActiveRoundID = p.Rounds[0].ID

	return &p.Rounds[0]
}

// AddRound appends an empty round and makes it active.
func (p *Project) AddRound() string {
	id := p.NextRoundID()
	p.Rounds = append(p.Rounds, Round{ID: id, Rows: []Row{}})
	p.ActiveRoundID = id

	return id
}

// SwitchRound makes an existing round active.
func (p *Project) SwitchRound(id string) error {
	if _, ok := p.Round(id); !ok {
		return fmt.Errorf("%w: %s", ErrRoundNotFound, id)
	}

	p.ActiveRoundID = id

	return nil
}

// RemoveRound deletes a round. The last round cannot be removed; removing
// the active round activates the first remaining one.
func (p *Project) RemoveRound(id string) error {
	idx := slices.IndexFunc(p.Rounds, func(r Round) bool { return r.ID == id })
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrRoundNotFound, id)
	}

	if len(p.Rounds) == 1 {
		return ErrLastRound
	}

	p.Rounds = slices.Delete(p.Rounds, idx, idx+1)

	if p.ActiveRoundID == id {
		p.ActiveRoundID = p.Rounds[0].ID
	}

	return nil
}

// AddRow appends an empty open row to the active round, tagged with rubric
// when non-empty, and returns it.
func (p *Project) AddRow(rubric string) Row {
	row := NewRow("", "")
	row.Rubric = rubric

	r := p.ActiveRound()
	r.Rows = append(r.Rows, row)

	return row
}

// UpdateRow applies a patch to a row of the active round. Paths are
// stored in canonical form.
func (p *Project) UpdateRow(id string, patch RowPatch) (Row, error) {
	r := p.ActiveRound()

	idx := slices.IndexFunc(r.Rows, func(row Row) bool { return row.ID == id })
	if idx < 0 {
		return Row{}, fmt.Errorf("%w: %s", ErrRowNotFound, id)
	}

	if patch.Status != nil && !patch.Status.IsValid() {
		return Row{}, fmt.Errorf("%w: %q", ErrInvalidStatus, *patch.Status)
	}

	row := &r.Rows[idx]

	if patch.Source != nil {
		row.Source = fieldpath.Canonical(*patch.Source).String()
	}

	if patch.Destination != nil {
		row.Destination = fieldpath.Canonical(*patch.Destination).String()
	}

	if patch.Status != nil {
		row.Status = *patch.Status
	}

	if patch.Comment != nil {
		row.Comment = *patch.Comment
	}

	return *row, nil
}

// DeleteRow removes a row from the active round.
func (p *Project) DeleteRow(id string) error {
	r := p.ActiveRound()

	idx := slices.IndexFunc(r.Rows, func(row Row) bool { return row.ID == id })
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrRowNotFound, id)
	}

	r.Rows = slices.Delete(r.Rows, idx, idx+1)

	return nil
}

// IsRubricEnabled reports whether code is in the enabled list.
func (p *Project) IsRubricEnabled(code string) bool {
	return slices.Contains(p.RubricEnabled, code)
}

// Clone returns a deep copy, so that multi-step edits can be applied to
// the copy and committed only when every step succeeded.
func (p *Project) Clone() *Project {
	c := *p
	c.SourceCatalog = slices.Clone(p.SourceCatalog)
	c.DestinationCatalog = slices.Clone(p.DestinationCatalog)
	c.RubricEnabled = slices.Clone(p.RubricEnabled)
	c.Rounds = make([]Round, len(p.Rounds))

	for i, r := range p.Rounds {
		c.Rounds[i] = Round{ID: r.ID, Rows: slices.Clone(r.Rows)}
	}

	return &c
}
