package workspace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"mapforge/internal/diagnostic"
	"mapforge/internal/extract"
	"mapforge/internal/fieldpath"
	"mapforge/internal/project"
	"mapforge/internal/reconcile"
)

// ErrFixedSide reports a catalog change on the side defined by the interface.
var ErrFixedSide = errors.New("side is fixed by the interface definition")

func checkEditable(p *project.Project, side project.Side) error {
	if side == p.Direction.FixedSide() {
		return fmt.Errorf("%w: %s", ErrFixedSide, side)
	}

	return nil
}

// SetCatalog replaces the catalog of side. Rows are not touched.
func (s *Session) SetCatalog(ctx context.Context, side project.Side, paths []string) (*Outcome, error) {
	return s.mutate(ctx, func(p *project.Project, out *Outcome) error {
		if err := checkEditable(p, side); err != nil {
			return err
		}

		catalog := reconcile.SetCatalog(p, side, paths)
		out.Diagnostics.AddInfo(diagnostic.CodeCatalogReplaced,
			fmt.Sprintf("%d path(s) in the %s catalog", len(catalog), side), side.String(), "")

		return nil
	})
}

// SetCatalogText replaces the catalog of side with free text, one path per line.
func (s *Session) SetCatalogText(ctx context.Context, side project.Side, text string) (*Outcome, error) {
	return s.SetCatalog(ctx, side, fieldpath.ParseLines(text))
}

// ImportCatalog extracts paths from a schema file and replaces the catalog
// of side with them. Unreadable files and empty results keep the current
// catalog and are reported as diagnostics.
func (s *Session) ImportCatalog(ctx context.Context, side project.Side, name string, r io.Reader) (*Outcome, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, func(p *project.Project, out *Outcome) error {
		if err := checkEditable(p, side); err != nil {
			return err
		}

		res, err := extract.FromFile(name, data)
		if err != nil {
			report(&out.Diagnostics, name, err)
			return errUnchanged
		}

		if res.IsEmpty() {
			out.Diagnostics.AddInfo(diagnostic.CodeNothingExtracted,
				"no usable fields found, enter the paths manually", name, "")
			s.log.InfoContext(ctx, "nothing extracted", slog.String("file", name), slog.String("format", res.Format.String()))

			return errUnchanged
		}

		catalog := reconcile.SetCatalog(p, side, res.Paths)
		out.Diagnostics.AddInfo(diagnostic.CodeCatalogReplaced,
			fmt.Sprintf("%d path(s) extracted from %s", len(catalog), res.Format), name, "")
		s.log.InfoContext(ctx, "catalog imported",
			slog.String("file", name), slog.String("side", side.String()), slog.Int("paths", len(catalog)))

		return nil
	})
}

// EnableRubric adds the template rows of a rubric to the active round.
// Enabling an active rubric changes nothing and yields a warning.
func (s *Session) EnableRubric(ctx context.Context, code string) (*Outcome, error) {
	return s.mutate(ctx, func(p *project.Project, out *Outcome) error {
		fixed := s.registry.FixedFields(p.SystemID, p.Direction, p.MessageID)

		rows, err := reconcile.EnableRubric(p, s.rubrics, code, reconcile.CandidateDestinations(p, fixed))
		if errors.Is(err, reconcile.ErrRubricAlreadyEnabled) {
			out.Diagnostics.AddWarning(diagnostic.CodeRubricAlreadyEnabled,
				"rubric is already enabled", code, "")

			return errUnchanged
		}

		if err != nil {
			return err
		}

		out.Rows = rows
		out.Diagnostics.AddInfo(diagnostic.CodeRubricEnabled, fmt.Sprintf("%d row(s) added", len(rows)), code, "")

		return nil
	})
}

// DisableRubric removes a rubric and every row tagged with it from all rounds.
func (s *Session) DisableRubric(ctx context.Context, code string) (*Outcome, error) {
	return s.mutate(ctx, func(p *project.Project, out *Outcome) error {
		n := reconcile.DisableRubric(p, code)
		out.Diagnostics.AddInfo(diagnostic.CodeRubricDisabled, fmt.Sprintf("%d row(s) removed", n), code, "")

		return nil
	})
}

// AddRow appends an empty row to the active round, tagged with rubricCode
// when it is not empty.
func (s *Session) AddRow(ctx context.Context, rubricCode string) (*Outcome, error) {
	return s.mutate(ctx, func(p *project.Project, out *Outcome) error {
		if rubricCode != "" && !p.IsRubricEnabled(rubricCode) {
			return fmt.Errorf("%w: %s is not enabled", reconcile.ErrUnknownRubric, rubricCode)
		}

		out.Rows = []project.Row{p.AddRow(rubricCode)}

		return nil
	})
}

// UpdateRow patches a row of the active round.
func (s *Session) UpdateRow(ctx context.Context, id string, patch project.RowPatch) (*Outcome, error) {
	return s.mutate(ctx, func(p *project.Project, out *Outcome) error {
		row, err := p.UpdateRow(id, patch)
		if err != nil {
			return err
		}

		out.Rows = []project.Row{row}

		return nil
	})
}

// DeleteRow removes a row from the active round.
func (s *Session) DeleteRow(ctx context.Context, id string) (*Outcome, error) {
	return s.mutate(ctx, func(p *project.Project, _ *Outcome) error {
		return p.DeleteRow(id)
	})
}

// AddRound creates the next round and makes it active.
func (s *Session) AddRound(ctx context.Context) (*Outcome, error) {
	return s.mutate(ctx, func(p *project.Project, _ *Outcome) error {
		p.AddRound()
		return nil
	})
}

// SwitchRound makes an existing round active.
func (s *Session) SwitchRound(ctx context.Context, id string) (*Outcome, error) {
	return s.mutate(ctx, func(p *project.Project, _ *Outcome) error {
		return p.SwitchRound(id)
	})
}

// RemoveRound deletes a round. The last round cannot be removed.
func (s *Session) RemoveRound(ctx context.Context, id string) (*Outcome, error) {
	return s.mutate(ctx, func(p *project.Project, _ *Outcome) error {
		return p.RemoveRound(id)
	})
}
