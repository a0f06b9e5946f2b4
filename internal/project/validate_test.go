package project

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validDoc = `{
  "version": 3,
  "updatedAt": "2026-01-02T10:00:00Z",
  "systemId": "translogica",
  "direction": "inbound",
  "messageId": "IFTMIN",
  "sourceCatalog": ["Order.Id"],
  "destinationCatalog": [],
  "rubricEnabled": ["CZ"],
  "rounds": [
    {"id": "R01", "rows": [
      {"id": "a", "source": "Order.Id", "destination": "CZ.Name", "status": "done", "comment": "x", "rubric": "CZ"}
    ]},
    {"id": "R02", "rows": []}
  ],
  "activeRoundId": "R02"
}`

func TestValidate_ValidDocument(t *testing.T) {
	p, err := Validate([]byte(validDoc))
	require.NoError(t, err)

	assert.Equal(t, CurrentVersion, p.Version)
	assert.Equal(t, "translogica", p.SystemID)
	assert.Equal(t, DirectionInbound, p.Direction)
	assert.Equal(t, []string{"Order.Id"}, p.SourceCatalog)
	assert.Equal(t, []string{}, p.DestinationCatalog)
	assert.Equal(t, "R02", p.ActiveRoundID)
	require.Len(t, p.Rounds, 2)
	assert.Equal(t, StatusDone, p.Rounds[0].Rows[0].Status)
	assert.Equal(t, "CZ", p.Rounds[0].Rows[0].Rubric)
	assert.True(t, p.UpdatedAt.Equal(time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)))
}

func TestValidate_FillsDefaults(t *testing.T) {
	doc := `{
	  "version": 3, "updatedAt": "2026-01-02T10:00:00Z",
	  "systemId": "sap", "direction": "outbound", "messageId": "ORDERS",
	  "sourceCatalog": [], "destinationCatalog": [],
	  "rounds": [{"id": "R01", "rows": [{"id": "a", "status": "open"}]}],
	  "activeRoundId": "R01",
	  "somethingNew": true
	}`

	p, err := Validate([]byte(doc))
	require.NoError(t, err)

	assert.NotNil(t, p.RubricEnabled)
	assert.Empty(t, p.RubricEnabled)

	row := p.Rounds[0].Rows[0]
	assert.Empty(t, row.Source)
	assert.Empty(t, row.Comment)
	assert.Empty(t, row.Rubric)
}

func TestValidate_RejectsOtherVersions(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "older", doc: `{"version": 2}`},
		{name: "newer", doc: `{"version": 4}`},
		{name: "string", doc: `{"version": "3"}`},
		{name: "missing", doc: `{"systemId": "sap"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate([]byte(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
			assert.ErrorIs(t, err, ErrUnsupportedVersion)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "version", verr.Errors[0].Path)
		})
	}
}

func TestValidate_Malformed(t *testing.T) {
	for _, doc := range []string{``, `{`, `[]`, `"x"`, `null`} {
		_, err := Validate([]byte(doc))
		assert.ErrorIs(t, err, ErrMalformed, "input %q", doc)
	}
}

func TestValidate_StructuralErrors(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(m map[string]any)
		wantPath string
	}{
		{
			name:     "bad direction",
			mutate:   func(m map[string]any) { m["direction"] = "sideways" },
			wantPath: "direction",
		},
		{
			name:     "missing catalog",
			mutate:   func(m map[string]any) { delete(m, "sourceCatalog") },
			wantPath: "sourceCatalog",
		},
		{
			name:     "no rounds",
			mutate:   func(m map[string]any) { m["rounds"] = []any{} },
			wantPath: "rounds",
		},
		{
			name:     "unknown active round",
			mutate:   func(m map[string]any) { m["activeRoundId"] = "R09" },
			wantPath: "activeRoundId",
		},
		{
			name: "bad status",
			mutate: func(m map[string]any) {
				rows := m["rounds"].([]any)[0].(map[string]any)["rows"].([]any)
				rows[0].(map[string]any)["status"] = "finished"
			},
			wantPath: "rounds[0].rows[0].status",
		},
		{
			name: "missing status",
			mutate: func(m map[string]any) {
				rows := m["rounds"].([]any)[0].(map[string]any)["rows"].([]any)
				delete(rows[0].(map[string]any), "status")
			},
			wantPath: "rounds[0].rows[0].status",
		},
		{
			name: "empty status",
			mutate: func(m map[string]any) {
				rows := m["rounds"].([]any)[0].(map[string]any)["rows"].([]any)
				rows[0].(map[string]any)["status"] = ""
			},
			wantPath: "rounds[0].rows[0].status",
		},
		{
			name: "duplicate round",
			mutate: func(m map[string]any) {
				rounds := m["rounds"].([]any)
				rounds[1].(map[string]any)["id"] = "R01"
				m["activeRoundId"] = "R01"
			},
			wantPath: "rounds[1].id",
		},
		{
			name:     "catalog of numbers",
			mutate:   func(m map[string]any) { m["sourceCatalog"] = []any{1, 2} },
			wantPath: "sourceCatalog",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m map[string]any
			require.NoError(t, json.Unmarshal([]byte(validDoc), &m))
			tt.mutate(m)

			raw, err := json.Marshal(m)
			require.NoError(t, err)

			_, err = Validate(raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
			assert.False(t, errors.Is(err, ErrUnsupportedVersion))

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)

			paths := make([]string, 0, len(verr.Errors))
			for _, fe := range verr.Errors {
				paths = append(paths, fe.Path)
			}

			assert.Contains(t, paths, tt.wantPath)
		})
	}
}

func TestValidate_ExportedProjectRoundTrips(t *testing.T) {
	p := MakeEmpty("lfs", DirectionOutbound, "WMS/940")
	p.SourceCatalog = []string{"A.B", "A.C"}
	p.RubricEnabled = []string{"SU"}
	row := p.AddRow("SU")
	p.AddRound()
	p.AddRow("")

	raw, err := json.Marshal(p)
	require.NoError(t, err)

	got, err := Validate(raw)
	require.NoError(t, err)

	assert.True(t, p.UpdatedAt.Equal(got.UpdatedAt))
	got.UpdatedAt = p.UpdatedAt
	assert.Equal(t, p, got)
	assert.Equal(t, row.ID, got.Rounds[0].Rows[0].ID)
}
