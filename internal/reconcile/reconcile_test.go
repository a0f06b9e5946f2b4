package reconcile

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mapforge/internal/project"
	"mapforge/internal/rubric"
)

var czCandidates = []string{
	"CZ/Qualifier", "CZ/Name", "CZ/Strasse", "CZ/PLZ", "CZ/Ort", "CZ/Land",
	"CN/Name",
}

func newInbound() *project.Project {
	return project.MakeEmpty("translogica", project.DirectionInbound, "IFTMIN")
}

func assertUniqueRowIDs(t *testing.T, p *project.Project) {
	t.Helper()

	for _, r := range p.Rounds {
		seen := make(map[string]bool, len(r.Rows))
		for _, row := range r.Rows {
			assert.False(t, seen[row.ID], "duplicate row id %s in round %s:\n%s", row.ID, r.ID, spew.Sdump(r.Rows))
			seen[row.ID] = true
		}
	}
}

func TestSetCatalog(t *testing.T) {
	tests := []struct {
		name  string
		paths []string
		want  []string
	}{
		{
			name:  "mixed delimiters and duplicates",
			paths: []string{"Order/Header/Id", "Order.Header.Id", " Order.Lines[].Sku ", "Order//Header/Id", ""},
			want:  []string{"Order.Header.Id", "Order.Lines[].Sku"},
		},
		{
			name:  "empty",
			paths: nil,
			want:  []string{},
		},
		{
			name:  "case sensitive",
			paths: []string{"a.B", "a.b"},
			want:  []string{"a.B", "a.b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newInbound()
			row := p.AddRow("")
			row.Source = "Gone.Path"
			p.ActiveRound().Rows[0] = row

			got := SetCatalog(p, project.SideSource, tt.paths)

			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, p.SourceCatalog)
			assert.Equal(t, []string{}, p.DestinationCatalog)
			require.Len(t, p.ActiveRound().Rows, 1)
			assert.Equal(t, "Gone.Path", p.ActiveRound().Rows[0].Source)
		})
	}
}

func TestEnableRubric_AddsTemplateRows(t *testing.T) {
	p := newInbound()
	p.AddRow("")

	added, err := EnableRubric(p, rubric.Default(), "CZ", czCandidates)
	require.NoError(t, err)

	require.Len(t, added, 6)
	assert.Equal(t, "CZ.Qualifier", added[0].Destination)
	assert.Equal(t, "FIX:CZ", added[0].Source)
	assert.Equal(t, project.StatusDone, added[0].Status)

	dests := make([]string, 0, len(added))
	for _, r := range added[1:] {
		dests = append(dests, r.Destination)
		assert.Equal(t, project.StatusOpen, r.Status)
		assert.Empty(t, r.Source)
		assert.Empty(t, r.Comment)
	}

	assert.Equal(t, []string{"CZ.Name", "CZ.Strasse", "CZ.PLZ", "CZ.Ort", "CZ.Land"}, dests)

	for _, r := range added {
		assert.Equal(t, "CZ", r.Rubric)
	}

	assert.Equal(t, []string{"CZ"}, p.RubricEnabled)
	assert.Len(t, p.ActiveRound().Rows, 7)
	assertUniqueRowIDs(t, p)
}

func TestEnableRubric_OnlyCandidates(t *testing.T) {
	p := newInbound()

	added, err := EnableRubric(p, rubric.Default(), "CZ", []string{"CZ.Ort", "CZ/Name"})
	require.NoError(t, err)

	require.Len(t, added, 2)
	assert.Equal(t, "CZ.Name", added[0].Destination)
	assert.Equal(t, "CZ.Ort", added[1].Destination)
}

func TestEnableRubric_SkipsExistingTaggedRows(t *testing.T) {
	p := newInbound()
	round := p.ActiveRound()
	round.Rows = append(round.Rows,
		project.Row{ID: "kept", Destination: "CZ/Name", Status: project.StatusClarified, Rubric: "CZ"},
		project.Row{ID: "untagged", Destination: "CZ.Strasse", Status: project.StatusOpen},
	)

	added, err := EnableRubric(p, rubric.Default(), "CZ", czCandidates)
	require.NoError(t, err)

	dests := make([]string, 0, len(added))
	for _, r := range added {
		dests = append(dests, r.Destination)
	}

	assert.NotContains(t, dests, "CZ.Name")
	assert.Contains(t, dests, "CZ.Strasse")
	assert.Len(t, added, 5)
}

func TestEnableRubric_TwiceIsRejected(t *testing.T) {
	p := newInbound()

	_, err := EnableRubric(p, rubric.Default(), "CZ", czCandidates)
	require.NoError(t, err)

	before := p.Clone()

	added, err := EnableRubric(p, rubric.Default(), "CZ", czCandidates)
	require.ErrorIs(t, err, ErrRubricAlreadyEnabled)
	assert.Empty(t, added)
	assert.Equal(t, before, p)
}

func TestEnableRubric_Unknown(t *testing.T) {
	p := newInbound()

	_, err := EnableRubric(p, rubric.Default(), "ZZ", czCandidates)
	require.ErrorIs(t, err, ErrUnknownRubric)
	assert.Empty(t, p.RubricEnabled)
}

func TestDisableRubric_RemovesTaggedRowsEverywhere(t *testing.T) {
	p := newInbound()
	p.AddRow("")

	_, err := EnableRubric(p, rubric.Default(), "CZ", czCandidates)
	require.NoError(t, err)

	// The user edits a rubric row; it is still removed on disable.
	cz := p.ActiveRound().Rows[2]
	comment := "checked with customer"
	_, err = p.UpdateRow(cz.ID, project.RowPatch{Comment: &comment})
	require.NoError(t, err)

	p.AddRound()
	p.AddRow("CZ")
	p.AddRow("")

	_, err = EnableRubric(p, rubric.Default(), "CN", czCandidates)
	require.NoError(t, err)

	removed := DisableRubric(p, "CZ")

	assert.Equal(t, 7, removed)
	assert.Equal(t, []string{"CN"}, p.RubricEnabled)

	for _, r := range p.Rounds {
		for _, row := range r.Rows {
			assert.NotEqual(t, "CZ", row.Rubric)
		}
	}

	assert.Len(t, p.Rounds[0].Rows, 1)
	assert.Len(t, p.Rounds[1].Rows, 2)

	// A second disable is a harmless no-op.
	assert.Zero(t, DisableRubric(p, "CZ"))
}

func TestRowIDsStayUnique(t *testing.T) {
	p := newInbound()
	templates := rubric.Default()
	candidates := []string{"CZ/Name", "CN/Name", "SU/Name", "PU/Name"}

	for range 3 {
		p.AddRow("")
	}

	for _, code := range []string{"CZ", "CN", "SU", "PU"} {
		_, err := EnableRubric(p, templates, code, candidates)
		require.NoError(t, err)
	}

	DisableRubric(p, "CN")

	_, err := EnableRubric(p, templates, "CN", candidates)
	require.NoError(t, err)

	assertUniqueRowIDs(t, p)
}

func TestCandidateDestinations(t *testing.T) {
	fixed := []string{"CZ.Name"}

	in := newInbound()
	assert.Equal(t, fixed, CandidateDestinations(in, fixed))

	out := project.MakeEmpty("sap", project.DirectionOutbound, "ORDERS")
	out.DestinationCatalog = []string{"Partner.Name"}
	assert.Equal(t, []string{"Partner.Name"}, CandidateDestinations(out, fixed))
}

func TestUnmatchedRows(t *testing.T) {
	p := newInbound()
	round := p.ActiveRound()
	round.Rows = append(round.Rows,
		project.Row{ID: "1", Source: "Order/Id", Status: project.StatusOpen},
		project.Row{ID: "2", Source: "Order.Gone", Status: project.StatusOpen},
		project.Row{ID: "3", Source: "", Status: project.StatusOpen},
		project.Row{ID: "4", Source: "FIX:CZ", Status: project.StatusDone, Rubric: "CZ"},
	)

	got := UnmatchedRows(p, project.SideSource, []string{"Order.Id"})

	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].ID)
}
