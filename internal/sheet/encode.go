package sheet

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"mapforge/internal/project"
)

// MetaSheet is the name of the metadata sheet.
const MetaSheet = "01_Allgemein"

// AnalysisSheetPrefix prefixes the round sheets of the six-column layout.
const AnalysisSheetPrefix = "Runde_"

const (
	colorTitle  = "1F4E79"
	colorHeader = "305496"
	colorInput  = "D9E1F2"
	colorBorder = "9E9E9E"
	colorWhite  = "FFFFFF"

	maxSheetName = 31
)

var (
	projectHeader  = []string{"Source", "Destination", "Status", "Comment"}
	projectWidths  = []float64{40, 40, 14, 50}
	analysisHeader = []string{
		"Nr.", "Destination Feld", "EDI Team Kommentar", "Source Feld", "TMS-IT Kommentar", "Allgemeine Kommentare",
	}
	analysisWidths = []float64{6, 30, 26, 30, 26, 34}
)

type styles struct {
	title      int
	roundTitle int
	header     int
	plainHead  int
	label      int
	input      int
	cell       int
	nr         int
}

type encoder struct {
	f      *excelize.File
	st     styles
	sheets map[string]struct{}
	// first tracks whether the default sheet has been claimed yet.
	first bool
}

func newEncoder(now time.Time) (*encoder, error) {
	e := &encoder{f: excelize.NewFile(), sheets: make(map[string]struct{}), first: true}

	if err := e.f.SetDocProps(&excelize.DocProperties{
		Creator: "MapForge",
		Created: now.UTC().Format(time.RFC3339),
	}); err != nil {
		return nil, err
	}

	if err := e.initStyles(); err != nil {
		return nil, err
	}

	return e, nil
}

func thinBorder() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	out := make([]excelize.Border, 0, len(sides))

	for _, s := range sides {
		out = append(out, excelize.Border{Type: s, Color: colorBorder, Style: 1})
	}

	return out
}

func solid(color string) excelize.Fill {
	return excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}}
}

func (e *encoder) initStyles() error {
	defs := []struct {
		dst   *int
		style *excelize.Style
	}{
		{&e.st.title, &excelize.Style{
			Font: &excelize.Font{Bold: true, Size: 16, Color: colorWhite},
			Fill: solid(colorTitle),
		}},
		{&e.st.roundTitle, &excelize.Style{
			Font: &excelize.Font{Bold: true, Size: 14, Color: colorWhite},
			Fill: solid(colorTitle),
		}},
		{&e.st.header, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Color: colorWhite},
			Fill:      solid(colorHeader),
			Border:    thinBorder(),
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		}},
		{&e.st.plainHead, &excelize.Style{
			Font:   &excelize.Font{Bold: true},
			Border: thinBorder(),
		}},
		{&e.st.label, &excelize.Style{
			Font:      &excelize.Font{Bold: true},
			Border:    thinBorder(),
			Alignment: &excelize.Alignment{Vertical: "center", WrapText: true},
		}},
		{&e.st.input, &excelize.Style{
			Fill:      solid(colorInput),
			Border:    thinBorder(),
			Alignment: &excelize.Alignment{Vertical: "center", WrapText: true},
		}},
		{&e.st.cell, &excelize.Style{
			Border:    thinBorder(),
			Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "top", WrapText: true},
		}},
		{&e.st.nr, &excelize.Style{
			Border:    thinBorder(),
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "top", WrapText: true},
		}},
	}

	for _, d := range defs {
		id, err := e.f.NewStyle(d.style)
		if err != nil {
			return fmt.Errorf("create style: %w", err)
		}

		*d.dst = id
	}

	return nil
}

// addSheet creates a sheet with a unique valid name. The workbook's
// default sheet is reused for the first one.
func (e *encoder) addSheet(base string) (string, error) {
	name := e.uniqueName(base)

	if e.first {
		e.first = false
		if err := e.f.SetSheetName(e.f.GetSheetName(0), name); err != nil {
			return "", err
		}
	} else if _, err := e.f.NewSheet(name); err != nil {
		return "", err
	}

	e.sheets[strings.ToLower(name)] = struct{}{}

	hide := false
	if err := e.f.SetSheetView(name, 0, &excelize.ViewOptions{ShowGridLines: &hide}); err != nil {
		return "", err
	}

	return name, nil
}

func (e *encoder) uniqueName(base string) string {
	clean := sanitizeSheetName(base)
	name := clean

	for n := 2; ; n++ {
		if _, taken := e.sheets[strings.ToLower(name)]; !taken {
			return name
		}

		suffix := "_" + strconv.Itoa(n)
		name = truncateRunes(clean, maxSheetName-len(suffix)) + suffix
	}
}

func sanitizeSheetName(s string) string {
	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}

		return r
	}, strings.TrimSpace(s))

	s = strings.Trim(s, "'")
	if s == "" {
		s = "Sheet"
	}

	return truncateRunes(s, maxSheetName)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}

	return string([]rune(s)[:n])
}

func (e *encoder) widths(sheet string, widths []float64) error {
	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}

		if err := e.f.SetColWidth(sheet, col, col, w); err != nil {
			return err
		}
	}

	return nil
}

func (e *encoder) row(sheet string, rowNum int, values ...any) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}

	return e.f.SetSheetRow(sheet, cell, &values)
}

func (e *encoder) style(sheet string, fromCol, fromRow, toCol, toRow, style int) error {
	from, err := excelize.CoordinatesToCellName(fromCol, fromRow)
	if err != nil {
		return err
	}

	to, err := excelize.CoordinatesToCellName(toCol, toRow)
	if err != nil {
		return err
	}

	return e.f.SetCellStyle(sheet, from, to, style)
}

// table freezes the header row and puts a filter across its columns.
func (e *encoder) table(sheet string, headerRow, cols int) error {
	from, err := excelize.CoordinatesToCellName(1, headerRow)
	if err != nil {
		return err
	}

	to, err := excelize.CoordinatesToCellName(cols, headerRow)
	if err != nil {
		return err
	}

	if err := e.f.AutoFilter(sheet, from+":"+to, nil); err != nil {
		return fmt.Errorf("autofilter %s: %w", sheet, err)
	}

	topLeft, err := excelize.CoordinatesToCellName(1, headerRow+1)
	if err != nil {
		return err
	}

	return e.f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      headerRow,
		TopLeftCell: topLeft,
		ActivePane:  "bottomLeft",
	})
}

// metaSheet writes the banner and the key/value table.
func (e *encoder) metaSheet(meta Meta) error {
	sheet, err := e.addSheet(MetaSheet)
	if err != nil {
		return err
	}

	if err := e.widths(sheet, []float64{30, 55}); err != nil {
		return err
	}

	if err := e.f.SetCellValue(sheet, "A1", "MapForge – Mapping Analyse (Source ↔ Destination)"); err != nil {
		return err
	}

	if err := e.f.SetCellStyle(sheet, "A1", "A1", e.st.title); err != nil {
		return err
	}

	const headerRow = 3
	if err := e.row(sheet, headerRow, "Feld", "Wert"); err != nil {
		return err
	}

	if err := e.style(sheet, 1, headerRow, 2, headerRow, e.st.header); err != nil {
		return err
	}

	pairs := meta.pairs()
	for i, kv := range pairs {
		if err := e.row(sheet, headerRow+1+i, kv[0], kv[1]); err != nil {
			return err
		}
	}

	last := headerRow + len(pairs)
	if err := e.style(sheet, 1, headerRow+1, 1, last, e.st.label); err != nil {
		return err
	}

	if err := e.style(sheet, 2, headerRow+1, 2, last, e.st.input); err != nil {
		return err
	}

	return e.table(sheet, headerRow, 2)
}

func (e *encoder) bytes() ([]byte, error) {
	e.f.SetActiveSheet(0)

	buf, err := e.f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	return buf.Bytes(), nil
}

// EncodeProject writes the project layout: the metadata sheet and one
// four-column sheet per round.
func EncodeProject(p *project.Project, meta Meta) ([]byte, error) {
	included := make([][]project.Row, len(p.Rounds))
	for i, r := range p.Rounds {
		for _, row := range r.Rows {
			if !row.IsBlank() {
				included[i] = append(included[i], row)
			}
		}
	}

	e, err := newEncoder(time.Now())
	if err != nil {
		return nil, err
	}
	defer e.f.Close()

	if err := e.metaSheet(meta); err != nil {
		return nil, fmt.Errorf("encode metadata sheet: %w", err)
	}

	for i, r := range p.Rounds {
		if err := e.projectRound(r.ID, included[i]); err != nil {
			return nil, fmt.Errorf("encode round %s: %w", r.ID, err)
		}
	}

	return e.bytes()
}

func (e *encoder) projectRound(roundID string, rows []project.Row) error {
	sheet, err := e.addSheet(roundID)
	if err != nil {
		return err
	}

	if err := e.widths(sheet, projectWidths); err != nil {
		return err
	}

	header := make([]any, len(projectHeader))
	for i, h := range projectHeader {
		header[i] = h
	}

	if err := e.row(sheet, 1, header...); err != nil {
		return err
	}

	if err := e.style(sheet, 1, 1, len(projectHeader), 1, e.st.plainHead); err != nil {
		return err
	}

	for i, row := range rows {
		if err := e.row(sheet, i+2, row.Source, row.Destination, row.Status.String(), row.Comment); err != nil {
			return err
		}
	}

	if len(rows) > 0 {
		if err := e.style(sheet, 1, 2, len(projectHeader), len(rows)+1, e.st.cell); err != nil {
			return err
		}
	}

	return e.table(sheet, 1, len(projectHeader))
}

// EncodeAnalysis writes the analysis layout: the metadata sheet and one
// six-column sheet per round. Blank rows are dropped and the remaining
// rows are numbered from 1.
func EncodeAnalysis(a *Analysis) ([]byte, error) {
	included := make([][]AnalysisRow, len(a.Rounds))
	for i, r := range a.Rounds {
		for _, row := range r.Rows {
			if !row.IsBlank() {
				row.Nr = len(included[i]) + 1
				included[i] = append(included[i], row)
			}
		}
	}

	e, err := newEncoder(time.Now())
	if err != nil {
		return nil, err
	}
	defer e.f.Close()

	if err := e.metaSheet(a.Meta); err != nil {
		return nil, fmt.Errorf("encode metadata sheet: %w", err)
	}

	for i, r := range a.Rounds {
		if err := e.analysisRound(r, included[i]); err != nil {
			return nil, fmt.Errorf("encode round %s: %w", r.RoundID, err)
		}
	}

	return e.bytes()
}

// Row numbers of the analysis round sheet.
const (
	analysisMetaRow   = 3
	analysisHeaderRow = 9
)

func (e *encoder) analysisRound(r AnalysisRound, rows []AnalysisRow) error {
	sheet, err := e.addSheet(AnalysisSheetPrefix + r.RoundID)
	if err != nil {
		return err
	}

	if err := e.widths(sheet, analysisWidths); err != nil {
		return err
	}

	title := "Analyse-Runde – " + r.RoundID
	if r.Title != "" {
		title += " – " + r.Title
	}

	if err := e.f.SetCellValue(sheet, "A1", title); err != nil {
		return err
	}

	if err := e.f.SetCellStyle(sheet, "A1", "A1", e.st.roundTitle); err != nil {
		return err
	}

	meta := [][2]string{
		{"Runden-ID", r.RoundID},
		{"Datum", r.Date},
		{"Status", r.Status},
		{"Input Datei/Artefakt", r.InputArtifact},
		{"Scope/Annahmen", r.Scope},
	}

	for i, kv := range meta {
		if err := e.row(sheet, analysisMetaRow+i, kv[0], kv[1]); err != nil {
			return err
		}
	}

	metaEnd := analysisMetaRow + len(meta) - 1
	if err := e.style(sheet, 1, analysisMetaRow, 1, metaEnd, e.st.label); err != nil {
		return err
	}

	if err := e.style(sheet, 2, analysisMetaRow, 2, metaEnd, e.st.input); err != nil {
		return err
	}

	header := make([]any, len(analysisHeader))
	for i, h := range analysisHeader {
		header[i] = h
	}

	if err := e.row(sheet, analysisHeaderRow, header...); err != nil {
		return err
	}

	if err := e.style(sheet, 1, analysisHeaderRow, len(analysisHeader), analysisHeaderRow, e.st.header); err != nil {
		return err
	}

	for i, row := range rows {
		if err := e.row(sheet, analysisHeaderRow+1+i,
			row.Nr, row.DestinationField, row.EDIComment, row.SourceField, row.TMSITComment, row.GeneralComment,
		); err != nil {
			return err
		}
	}

	if len(rows) > 0 {
		first, last := analysisHeaderRow+1, analysisHeaderRow+len(rows)
		if err := e.style(sheet, 1, first, 1, last, e.st.nr); err != nil {
			return err
		}

		if err := e.style(sheet, 2, first, len(analysisHeader), last, e.st.cell); err != nil {
			return err
		}
	}

	return e.table(sheet, analysisHeaderRow, len(analysisHeader))
}
