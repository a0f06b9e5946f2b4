package workspace

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mapforge/internal/diagnostic"
	"mapforge/internal/persist"
	"mapforge/internal/project"
	"mapforge/internal/reconcile"
	"mapforge/internal/registry"
	"mapforge/internal/rubric"
	"mapforge/internal/storage"
)

var fixedNow = time.Date(2024, 5, 17, 9, 30, 0, 0, time.UTC)

func newSession(t *testing.T) (*Session, *storage.Memory) {
	t.Helper()

	slots := storage.NewMemory()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := persist.NewRepository(slots, persist.WithClock(func() time.Time { return fixedNow }), persist.WithLogger(log))

	return NewSession(repo, registry.Default(), rubric.Default(), log), slots
}

func openInbound(t *testing.T, s *Session) *Outcome {
	t.Helper()

	out, err := s.Open(context.Background(), "translogica", project.DirectionInbound, "IFTMIN")
	require.NoError(t, err)

	return out
}

func TestSession_RequiresOpenProject(t *testing.T) {
	s, _ := newSession(t)
	ctx := context.Background()

	_, err := s.Current()
	require.ErrorIs(t, err, ErrNoProject)

	_, err = s.AddRow(ctx, "")
	require.ErrorIs(t, err, ErrNoProject)

	_, err = s.ExportJSON(ctx)
	require.ErrorIs(t, err, ErrNoProject)
}

func TestSession_OpenUnknownContext(t *testing.T) {
	s, _ := newSession(t)

	_, err := s.Open(context.Background(), "nobody", project.DirectionInbound, "IFTMIN")
	require.ErrorIs(t, err, registry.ErrUnknownSystem)

	_, err = s.Open(context.Background(), "translogica", project.DirectionInbound, "NOPE")
	require.ErrorIs(t, err, registry.ErrUnknownMessage)
}

func TestSession_OpenCreatesAndPersists(t *testing.T) {
	s, slots := newSession(t)

	out := openInbound(t, s)
	assert.Equal(t, project.DefaultRoundID, out.Project.ActiveRoundID)
	assert.Contains(t, slots.Keys(), out.Project.Key())

	_, err := s.AddRow(context.Background(), "")
	require.NoError(t, err)

	// A second session over the same store sees the saved row.
	other := NewSession(s.repo, s.registry, s.rubrics, nil)
	again := openInbound(t, other)
	assert.Len(t, again.Project.ActiveRound().Rows, 1)
	assert.Equal(t, fixedNow, again.Project.UpdatedAt)
}

func TestSession_CorruptSlotFallsBackToEmpty(t *testing.T) {
	s, slots := newSession(t)
	key := project.Key("translogica", project.DirectionInbound, "IFTMIN")
	require.NoError(t, slots.Save(context.Background(), key, []byte(`{"version":2}`)))

	out := openInbound(t, s)
	assert.Empty(t, out.Project.ActiveRound().Rows)
	assert.Equal(t, project.CurrentVersion, out.Project.Version)
}

func TestSession_Catalogs(t *testing.T) {
	s, _ := newSession(t)
	ctx := context.Background()
	openInbound(t, s)

	_, err := s.SetCatalog(ctx, project.SideDestination, []string{"x"})
	require.ErrorIs(t, err, ErrFixedSide)

	out, err := s.SetCatalogText(ctx, project.SideSource, "Order/Id\r\n\nOrder.Id\nOrder/Lines[]/Qty\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"Order.Id", "Order.Lines[].Qty"}, out.Project.SourceCatalog)
	assert.True(t, out.Diagnostics.HasCode(diagnostic.CodeCatalogReplaced))

	fixed, err := s.Catalog(project.SideDestination)
	require.NoError(t, err)
	assert.Contains(t, fixed, "CZ.Name")
}

func TestSession_ImportCatalog(t *testing.T) {
	s, _ := newSession(t)
	ctx := context.Background()
	openInbound(t, s)

	out, err := s.ImportCatalog(ctx, project.SideSource, "order.json",
		strings.NewReader(`{"order":{"id":1,"lines":[{"sku":"a"}]}}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"order.id", "order.lines[].sku"}, out.Project.SourceCatalog)

	// Broken file: reported, catalog kept.
	out, err = s.ImportCatalog(ctx, project.SideSource, "broken.json", strings.NewReader(`{"order":`))
	require.NoError(t, err)
	assert.True(t, out.Diagnostics.HasErrors())
	assert.Equal(t, []string{"order.id", "order.lines[].sku"}, out.Project.SourceCatalog)

	// Nothing extractable: info, catalog kept.
	xsd := `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"><xs:any/></xs:schema>`
	out, err = s.ImportCatalog(ctx, project.SideSource, "empty.xsd", strings.NewReader(xsd))
	require.NoError(t, err)
	assert.False(t, out.Diagnostics.HasErrors())
	assert.True(t, out.Diagnostics.HasCode(diagnostic.CodeNothingExtracted))
	assert.Len(t, out.Project.SourceCatalog, 2)
}

func TestSession_Rubrics(t *testing.T) {
	s, _ := newSession(t)
	ctx := context.Background()
	openInbound(t, s)

	out, err := s.EnableRubric(ctx, "CZ")
	require.NoError(t, err)
	require.Len(t, out.Rows, 6)
	assert.Equal(t, "FIX:CZ", out.Rows[0].Source)
	assert.Equal(t, project.StatusDone, out.Rows[0].Status)
	assert.Equal(t, "CZ.Qualifier", out.Rows[0].Destination)
	rowsAfterFirst := out.Project.ActiveRound().Rows

	out, err = s.EnableRubric(ctx, "CZ")
	require.NoError(t, err)
	assert.True(t, out.Diagnostics.HasCode(diagnostic.CodeRubricAlreadyEnabled))
	assert.Equal(t, rowsAfterFirst, out.Project.ActiveRound().Rows)

	_, err = s.EnableRubric(ctx, "ZZ")
	require.ErrorIs(t, err, reconcile.ErrUnknownRubric)

	_, err = s.AddRow(ctx, "CZ")
	require.NoError(t, err)

	_, err = s.AddRow(ctx, "CN")
	require.ErrorIs(t, err, reconcile.ErrUnknownRubric)

	out, err = s.DisableRubric(ctx, "CZ")
	require.NoError(t, err)
	assert.Empty(t, out.Project.ActiveRound().Rows)
	assert.Empty(t, out.Project.RubricEnabled)
}

func TestSession_RowsAndRounds(t *testing.T) {
	s, _ := newSession(t)
	ctx := context.Background()
	openInbound(t, s)

	out, err := s.AddRow(ctx, "")
	require.NoError(t, err)
	id := out.Rows[0].ID

	src, status := "Order/Id", project.StatusInReview
	out, err = s.UpdateRow(ctx, id, project.RowPatch{Source: &src, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "Order.Id", out.Rows[0].Source)

	bad := project.Status("bogus")
	_, err = s.UpdateRow(ctx, id, project.RowPatch{Status: &bad})
	require.ErrorIs(t, err, project.ErrInvalidStatus)

	cur, err := s.Current()
	require.NoError(t, err)
	assert.Equal(t, project.StatusInReview, cur.ActiveRound().Rows[0].Status)

	out, err = s.AddRound(ctx)
	require.NoError(t, err)
	assert.Equal(t, "R02", out.Project.ActiveRoundID)

	_, err = s.SwitchRound(ctx, "R09")
	require.ErrorIs(t, err, project.ErrRoundNotFound)

	out, err = s.RemoveRound(ctx, "R02")
	require.NoError(t, err)
	assert.Equal(t, "R01", out.Project.ActiveRoundID)

	_, err = s.RemoveRound(ctx, "R01")
	require.ErrorIs(t, err, project.ErrLastRound)

	_, err = s.DeleteRow(ctx, id)
	require.NoError(t, err)

	_, err = s.DeleteRow(ctx, id)
	require.ErrorIs(t, err, project.ErrRowNotFound)
}

func TestSession_JSONRoundTrip(t *testing.T) {
	s, _ := newSession(t)
	ctx := context.Background()
	openInbound(t, s)

	_, err := s.SetCatalogText(ctx, project.SideSource, "A\nB")
	require.NoError(t, err)
	_, err = s.EnableRubric(ctx, "XE")
	require.NoError(t, err)

	file, err := s.ExportJSON(ctx)
	require.NoError(t, err)
	assert.Equal(t, "MapForge_translogica_inbound_IFTMIN_2024-05-17.json", file.Name)

	_, err = s.Reset(ctx)
	require.NoError(t, err)

	out, err := s.ImportJSON(ctx, file.Name, bytes.NewReader(file.Data))
	require.NoError(t, err)
	assert.True(t, out.Diagnostics.HasCode(diagnostic.CodeProjectImported))
	assert.Equal(t, []string{"A", "B"}, out.Project.SourceCatalog)
	assert.Equal(t, []string{"XE"}, out.Project.RubricEnabled)

	// Stale version: rejected, project unchanged.
	out, err = s.ImportJSON(ctx, "old.json", strings.NewReader(`{"version":2}`))
	require.NoError(t, err)
	assert.True(t, out.Diagnostics.HasErrors())
	assert.Equal(t, []string{"XE"}, out.Project.RubricEnabled)
}

func TestSession_SpreadsheetImport(t *testing.T) {
	s, _ := newSession(t)
	ctx := context.Background()
	openInbound(t, s)

	src := project.MakeEmpty("translogica", project.DirectionInbound, "IFTMIN")
	src.AddRound()
	src.Rounds[0].Rows = []project.Row{{ID: "1", Source: "A", Destination: "B", Status: project.StatusDone, Comment: "x"}}
	src.Rounds[1].Rows = []project.Row{
		{ID: "2", Source: "C", Status: project.StatusOpen},
		{ID: "3", Source: "D", Status: project.StatusOpen},
	}

	data, err := persist.ExportSpreadsheet(src)
	require.NoError(t, err)

	out, err := s.ImportSpreadsheet(ctx, "in.xlsx", bytes.NewReader(data), "", "")
	require.NoError(t, err)
	require.NotNil(t, out.Import)
	assert.Equal(t, "R01", out.Import.SheetName)
	assert.Equal(t, []SheetInfo{{Name: "R01", Rows: 1}, {Name: "R02", Rows: 2}}, out.Sheets)
	require.Len(t, out.Project.ActiveRound().Rows, 1)
	assert.Equal(t, "A", out.Project.ActiveRound().Rows[0].Source)
	assert.NotEqual(t, "1", out.Project.ActiveRound().Rows[0].ID)

	// Pick the second sheet without uploading again.
	out, err = s.ApplySheet(ctx, "R02", "")
	require.NoError(t, err)
	assert.Len(t, out.Project.ActiveRound().Rows, 2)

	_, err = s.ApplySheet(ctx, "R07", "")
	require.ErrorIs(t, err, persist.ErrSheetNotFound)

	out, err = s.ImportSpreadsheet(ctx, "junk.xlsx", strings.NewReader("not a workbook"), "", "")
	require.NoError(t, err)
	assert.True(t, out.Diagnostics.HasErrors())
	assert.Len(t, out.Project.ActiveRound().Rows, 2)
}

func TestSession_SpreadsheetImportFailureKeepsSheets(t *testing.T) {
	s, _ := newSession(t)
	ctx := context.Background()
	openInbound(t, s)

	first := project.MakeEmpty("translogica", project.DirectionInbound, "IFTMIN")
	first.AddRound()
	first.Rounds[0].Rows = []project.Row{{ID: "1", Source: "A", Status: project.StatusOpen}}
	first.Rounds[1].Rows = []project.Row{{ID: "2", Source: "B", Status: project.StatusOpen}}

	data, err := persist.ExportSpreadsheet(first)
	require.NoError(t, err)

	_, err = s.ImportSpreadsheet(ctx, "first.xlsx", bytes.NewReader(data), "", "")
	require.NoError(t, err)

	want := []SheetInfo{{Name: "R01", Rows: 1}, {Name: "R02", Rows: 1}}
	require.Equal(t, want, s.ImportedSheets())

	second := project.MakeEmpty("translogica", project.DirectionInbound, "IFTMIN")
	second.ActiveRound().Rows = []project.Row{
		{ID: "3", Source: "C", Status: project.StatusOpen},
		{ID: "4", Source: "D", Status: project.StatusOpen},
	}

	data, err = persist.ExportSpreadsheet(second)
	require.NoError(t, err)

	_, err = s.ImportSpreadsheet(ctx, "second.xlsx", bytes.NewReader(data), "", "R09")
	require.ErrorIs(t, err, project.ErrRoundNotFound)

	assert.Equal(t, want, s.ImportedSheets())

	cur, err := s.Current()
	require.NoError(t, err)
	require.Len(t, cur.ActiveRound().Rows, 1)
	assert.Equal(t, "A", cur.ActiveRound().Rows[0].Source)
}

func TestSession_SpreadsheetImportNothingUsable(t *testing.T) {
	s, _ := newSession(t)
	ctx := context.Background()
	openInbound(t, s)

	empty := project.MakeEmpty("translogica", project.DirectionInbound, "IFTMIN")
	data, err := persist.ExportSpreadsheet(empty)
	require.NoError(t, err)

	out, err := s.ImportSpreadsheet(ctx, "empty.xlsx", bytes.NewReader(data), "", "")
	require.NoError(t, err)
	assert.True(t, out.Diagnostics.HasCode(diagnostic.CodeNothingImported))
	assert.Nil(t, out.Import)
	assert.Empty(t, s.ImportedSheets())
}

func TestSession_ExportAnalysis(t *testing.T) {
	s, _ := newSession(t)
	ctx := context.Background()
	openInbound(t, s)

	file, err := s.ExportAnalysis(ctx)
	require.NoError(t, err)
	assert.Equal(t, AnalysisFilename, file.Name)
	assert.NotEmpty(t, file.Data)

	file, err = s.ExportSpreadsheet(ctx)
	require.NoError(t, err)
	assert.Equal(t, "MapForge_translogica_inbound_IFTMIN_2024-05-17.xlsx", file.Name)
}

func TestSession_Hints(t *testing.T) {
	s, _ := newSession(t)
	ctx := context.Background()
	openInbound(t, s)

	got, err := s.Suggest(project.SideDestination, "cz.n", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"CZ.Name"}, got.Paths())

	got, _, err = s.SuggestFor(project.SideDestination, "Sender/Name", 3)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	got, best, err := s.SuggestFor(project.SideDestination, "CZ/Name", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, best)
	assert.Equal(t, "CZ.Name", best.Path)

	out, err := s.AddRow(ctx, "")
	require.NoError(t, err)

	dst := "Nowhere/Field"
	_, err = s.UpdateRow(ctx, out.Rows[0].ID, project.RowPatch{Destination: &dst})
	require.NoError(t, err)

	rows, err := s.Unmatched(project.SideDestination)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Nowhere.Field", rows[0].Destination)
}
