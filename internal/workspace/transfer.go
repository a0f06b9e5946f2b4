package workspace

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"mapforge/internal/diagnostic"
	"mapforge/internal/persist"
	"mapforge/internal/project"
	"mapforge/internal/sheet"
)

// File is a downloadable artifact.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// ExportJSON returns the open project as a pretty-printed project file.
func (s *Session) ExportJSON(ctx context.Context) (*File, error) {
	p, err := s.Current()
	if err != nil {
		return nil, err
	}

	data, err := persist.ExportJSON(p)
	if err != nil {
		return nil, err
	}

	name := persist.JSONFilename(p, s.repo.Now())
	s.log.InfoContext(ctx, "project exported", slog.String("file", name), slog.Int("bytes", len(data)))

	return &File{Name: name, ContentType: "application/json", Data: data}, nil
}

// ImportJSON replaces the content of the open project with a project
// file. An invalid file is reported and changes nothing.
func (s *Session) ImportJSON(ctx context.Context, name string, r io.Reader) (*Outcome, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, func(p *project.Project, out *Outcome) error {
		imported, err := persist.ImportJSON(bytes.NewReader(data))
		if err != nil {
			report(&out.Diagnostics, name, err)
			s.log.InfoContext(ctx, "project file rejected", slog.String("file", name), slog.Any("error", err))

			return errUnchanged
		}

		*p = *persist.ApplyJSON(p, imported)

		out.Diagnostics.AddInfo(diagnostic.CodeProjectImported,
			fmt.Sprintf("%d round(s) imported", len(p.Rounds)), name, "")
		s.log.InfoContext(ctx, "project imported", slog.String("file", name), slog.Int("rounds", len(p.Rounds)))

		return nil
	})
}

// ExportSpreadsheet returns the open project as a workbook with one sheet
// per round.
func (s *Session) ExportSpreadsheet(ctx context.Context) (*File, error) {
	p, err := s.Current()
	if err != nil {
		return nil, err
	}

	data, err := persist.ExportSpreadsheet(p)
	if err != nil {
		return nil, err
	}

	name := persist.SpreadsheetFilename(p, s.repo.Now())
	s.log.InfoContext(ctx, "workbook exported", slog.String("file", name), slog.Int("bytes", len(data)))

	return &File{Name: name, ContentType: sheet.ContentType, Data: data}, nil
}

// ExportAnalysis returns the open project in the six-column analysis layout.
func (s *Session) ExportAnalysis(ctx context.Context) (*File, error) {
	p, err := s.Current()
	if err != nil {
		return nil, err
	}

	data, err := sheet.EncodeAnalysis(sheet.AnalysisFromProject(p))
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "analysis exported", slog.String("key", p.Key()), slog.Int("bytes", len(data)))

	return &File{Name: AnalysisFilename, ContentType: sheet.ContentType, Data: data}, nil
}

// AnalysisFilename is the download name of analysis workbooks.
const AnalysisFilename = "MapForge_Export.xlsx"

// ImportSpreadsheet decodes a workbook and replaces the rows of one round
// with the rows of one sheet. An empty sheetName picks the first sheet and
// an empty roundID targets the active round. The decoded sheets are kept
// for ApplySheet once the import has been applied.
func (s *Session) ImportSpreadsheet(ctx context.Context, name string, r io.Reader, sheetName, roundID string) (*Outcome, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, err
	}

	var decoded []sheet.ImportedSheet

	out, err := s.mutate(ctx, func(p *project.Project, out *Outcome) error {
		sheets, err := persist.ImportSpreadsheet(bytes.NewReader(data))
		if err != nil {
			report(&out.Diagnostics, name, err)
			return errUnchanged
		}

		if len(sheets) == 0 {
			out.Diagnostics.AddInfo(diagnostic.CodeNothingImported,
				"no sheet with usable rows found", name, "")
			s.log.InfoContext(ctx, "nothing imported", slog.String("file", name))

			return errUnchanged
		}

		s.log.DebugContext(ctx, "workbook decoded",
			slog.String("file", name), slog.Int("sheets", len(sheets)), slog.Int("rows", sheet.Kept(sheets)))

		if err := s.applySheet(ctx, p, out, sheets, sheetName, roundID); err != nil {
			return err
		}

		decoded = sheets

		return nil
	})
	if err != nil {
		return nil, err
	}

	if decoded != nil {
		s.mu.Lock()
		s.imported = decoded
		s.mu.Unlock()
	}

	return out, nil
}

// ApplySheet applies another sheet of the last imported workbook.
func (s *Session) ApplySheet(ctx context.Context, sheetName, roundID string) (*Outcome, error) {
	return s.mutate(ctx, func(p *project.Project, out *Outcome) error {
		return s.applySheet(ctx, p, out, s.imported, sheetName, roundID)
	})
}

// ImportedSheets lists the sheets of the last imported workbook.
func (s *Session) ImportedSheets() []SheetInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	return sheetInfos(s.imported)
}

func (s *Session) applySheet(ctx context.Context, p *project.Project, out *Outcome, sheets []sheet.ImportedSheet, sheetName, roundID string) error {
	next, imp, err := persist.ApplySheet(p, sheets, sheetName, roundID)
	if err != nil {
		return err
	}

	*p = *next

	out.Import = &imp
	out.Sheets = sheetInfos(sheets)
	out.Diagnostics.AddInfo(diagnostic.CodeSheetImported, imp.String(), imp.SheetName, "")
	s.log.InfoContext(ctx, "sheet imported",
		slog.String("sheet", imp.SheetName), slog.String("round", imp.RoundID), slog.Int("rows", imp.Rows))

	return nil
}

func sheetInfos(sheets []sheet.ImportedSheet) []SheetInfo {
	out := make([]SheetInfo, 0, len(sheets))
	for _, sh := range sheets {
		out = append(out, SheetInfo{Name: sh.SheetName, Rows: len(sh.Rows)})
	}

	return out
}
