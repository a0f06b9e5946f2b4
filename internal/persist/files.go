package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"time"

	"mapforge/internal/common"
	"mapforge/internal/project"
	"mapforge/internal/sheet"
)

var (
	// ErrNoSheets reports a spreadsheet import without any usable sheet.
	ErrNoSheets = errors.New("no importable sheets")
	// ErrSheetNotFound reports a sheet name that is not among the imported ones.
	ErrSheetNotFound = errors.New("sheet not found")
)

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

func filename(p *project.Project, now time.Time, ext string) string {
	return fmt.Sprintf("MapForge_%s_%s_%s_%s%s",
		unsafeFilename.ReplaceAllString(p.SystemID, "_"),
		p.Direction,
		unsafeFilename.ReplaceAllString(p.MessageID, "_"),
		now.UTC().Format(time.DateOnly),
		ext,
	)
}

// JSONFilename is the download name of a project file.
func JSONFilename(p *project.Project, now time.Time) string {
	return filename(p, now, ".json")
}

// SpreadsheetFilename is the download name of a project workbook.
func SpreadsheetFilename(p *project.Project, now time.Time) string {
	return filename(p, now, ".xlsx")
}

// ExportJSON serializes the full project, pretty-printed.
func ExportJSON(p *project.Project) ([]byte, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode project: %w", err)
	}

	return data, nil
}

// ImportJSON validates a project file.
func ImportJSON(r io.Reader) (*project.Project, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read project file: %w", err)
	}

	return project.Validate(raw)
}

// ApplyJSON returns a copy of current whose content (catalogs, rubrics,
// rounds, active round) is taken from imported. The identity of current
// (system, direction, message) is kept.
func ApplyJSON(current, imported *project.Project) *project.Project {
	next := current.Clone()
	in := imported.Clone()

	next.SourceCatalog = in.SourceCatalog
	next.DestinationCatalog = in.DestinationCatalog
	next.RubricEnabled = common.NonNil(in.RubricEnabled)
	next.Rounds = in.Rounds
	next.ActiveRoundID = in.ActiveRoundID

	return next
}

// ExportSpreadsheet writes the project layout workbook.
func ExportSpreadsheet(p *project.Project) ([]byte, error) {
	return sheet.EncodeProject(p, sheet.MetaFromProject(p))
}

// ImportSpreadsheet decodes a workbook. An empty result is not an error.
func ImportSpreadsheet(r io.Reader) ([]sheet.ImportedSheet, error) {
	return sheet.Decode(r)
}

// SheetImport is the outcome of applying one imported sheet.
type SheetImport struct {
	SheetName string `json:"sheetName"`
	RoundID   string `json:"roundId"`
	Rows      int    `json:"rows"`
}

func (s SheetImport) String() string {
	return fmt.Sprintf("imported %d row(s) from sheet %q into round %s", s.Rows, s.SheetName, s.RoundID)
}

// ApplySheet returns a copy of p in which the rows of roundID are replaced
// by the rows of the named sheet. An empty sheetName picks the first sheet
// and an empty roundID targets the active round.
func ApplySheet(p *project.Project, sheets []sheet.ImportedSheet, sheetName, roundID string) (*project.Project, SheetImport, error) {
	src, ok := common.First(sheets)
	if !ok {
		return nil, SheetImport{}, ErrNoSheets
	}

	if sheetName != "" {
		found := false

		for _, s := range sheets {
			if s.SheetName == sheetName {
				src, found = s, true
				break
			}
		}

		if !found {
			return nil, SheetImport{}, fmt.Errorf("%w: %s", ErrSheetNotFound, sheetName)
		}
	}

	next := p.Clone()
	if roundID == "" {
		roundID = next.ActiveRound().ID
	}

	round, ok := next.Round(roundID)
	if !ok {
		return nil, SheetImport{}, fmt.Errorf("%w: %s", project.ErrRoundNotFound, roundID)
	}

	rows := make([]project.Row, 0, len(src.Rows))
	for _, row := range src.Rows {
		row.ID = project.NewRowID()
		rows = append(rows, row)
	}

	round.Rows = rows

	return next, SheetImport{SheetName: src.SheetName, RoundID: roundID, Rows: len(rows)}, nil
}
