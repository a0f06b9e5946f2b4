package sheet

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/xuri/excelize/v2"

	"mapforge/internal/project"
)

// ErrDecode reports input that is not a readable workbook.
var ErrDecode = errors.New("cannot read spreadsheet")

var (
	sourceHeaders      = []string{"source", "src", "quelle"}
	destinationHeaders = []string{"destination", "dest", "ziel"}
	statusHeaders      = []string{"status"}
	commentHeaders     = []string{"comment", "kommentar", "note"}
)

// ImportedSheet is one decoded sheet with its kept rows.
type ImportedSheet struct {
	SheetName string        `json:"sheetName"`
	Rows      []project.Row `json:"rows"`
}

// columns holds the index of each logical column, -1 when absent.
type columns struct {
	source, destination, status, comment int
}

func locate(header []string) columns {
	folded := make([]string, len(header))
	for i, h := range header {
		folded[i] = fold(h)
	}

	find := func(synonyms []string) int {
		return slices.IndexFunc(folded, func(h string) bool { return slices.Contains(synonyms, h) })
	}

	return columns{
		source:      find(sourceHeaders),
		destination: find(destinationHeaders),
		status:      find(statusHeaders),
		comment:     find(commentHeaders),
	}
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return row[idx]
}

// Decode reads every sheet of a workbook and returns the sheets that
// yielded at least one row, in workbook order. Every row gets a fresh id.
func Decode(r io.Reader) ([]ImportedSheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	defer f.Close()

	out := []ImportedSheet{}

	for _, name := range f.GetSheetList() {
		grid, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("%w: sheet %s: %w", ErrDecode, name, err)
		}

		if rows := decodeGrid(grid); len(rows) > 0 {
			out = append(out, ImportedSheet{SheetName: name, Rows: rows})
		}
	}

	return out, nil
}

// decodeGrid turns a raw string grid into rows, using the first row as header.
func decodeGrid(grid [][]string) []project.Row {
	if len(grid) == 0 {
		return nil
	}

	cols := locate(grid[0])

	var rows []project.Row

	for _, raw := range grid[1:] {
		source := cell(raw, cols.source)
		destination := cell(raw, cols.destination)
		comment := cell(raw, cols.comment)
		status := cell(raw, cols.status)

		if source == "" && destination == "" && comment == "" && status == "" {
			continue
		}

		rows = append(rows, project.Row{
			ID:          project.NewRowID(),
			Source:      source,
			Destination: destination,
			Status:      ParseStatus(status),
			Comment:     comment,
		})
	}

	return rows
}

// Summary describes an import for confirmation messages.
func (s ImportedSheet) Summary() string {
	return fmt.Sprintf("%d row(s) from sheet %q", len(s.Rows), s.SheetName)
}

// Kept is the number of rows across all sheets.
func Kept(sheets []ImportedSheet) int {
	n := 0
	for _, s := range sheets {
		n += len(s.Rows)
	}

	return n
}
