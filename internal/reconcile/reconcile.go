package reconcile

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"mapforge/internal/fieldpath"
	"mapforge/internal/project"
	"mapforge/internal/rubric"
)

var (
	ErrRubricAlreadyEnabled = errors.New("rubric already enabled")
	ErrUnknownRubric        = errors.New("unknown rubric")
)

// SetCatalog canonicalizes paths and replaces the catalog of side. Rows are
// left untouched even when their paths disappear from the catalog.
func SetCatalog(p *project.Project, side project.Side, paths []string) []string {
	catalog := fieldpath.CanonicalList(paths)
	p.SetCatalogRaw(side, catalog)

	return catalog
}

// CandidateDestinations returns the destination paths valid for the
// project's interface: the registry's fixed fields when the destination is
// the fixed side, the project's destination catalog otherwise.
func CandidateDestinations(p *project.Project, fixed []string) []string {
	if p.Direction.FixedSide() == project.SideDestination {
		return fixed
	}

	return p.DestinationCatalog
}

// EnableRubric marks code enabled and appends its template rows to the
// active round. The qualifier row comes first, pre-filled with the fixed
// marker and status done; the remaining defaults follow in template order.
// Only destinations present in candidates are added, and destinations
// already used by a row tagged with code are skipped. It returns the rows
// that were added.
func EnableRubric(p *project.Project, templates *rubric.Set, code string, candidates []string) ([]project.Row, error) {
	if p.IsRubricEnabled(code) {
		return nil, fmt.Errorf("%w: %s", ErrRubricAlreadyEnabled, code)
	}

	tmpl, ok := templates.Lookup(code)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRubric, code)
	}

	valid := fieldpath.NewSet(candidates)
	round := p.ActiveRound()

	taken := make(fieldpath.Set)
	for _, row := range round.Rows {
		if row.Rubric == code {
			taken[fieldpath.Canonical(row.Destination)] = struct{}{}
		}
	}

	wanted := func(dest string) bool {
		if dest == "" || !valid.Has(dest) || taken.Has(dest) {
			return false
		}

		taken[fieldpath.Canonical(dest)] = struct{}{}

		return true
	}

	var added []project.Row

	if wanted(tmpl.Qualifier) {
		row := project.NewRow(tmpl.QualifierMarker(), tmpl.Qualifier)
		row.Status = project.StatusDone
		row.Rubric = code
		added = append(added, row)
	}

	for _, dest := range tmpl.Destinations {
		if !wanted(dest) {
			continue
		}

		row := project.NewRow("", dest)
		row.Rubric = code
		added = append(added, row)
	}

	round.Rows = append(round.Rows, added...)
	p.RubricEnabled = append(p.RubricEnabled, code)

	return added, nil
}

// DisableRubric removes code from the enabled set and deletes every row
// tagged with it from every round. It returns the number of deleted rows.
// Disabling a rubric that is not enabled still sweeps tagged rows.
func DisableRubric(p *project.Project, code string) int {
	p.RubricEnabled = slices.DeleteFunc(p.RubricEnabled, func(c string) bool { return c == code })

	removed := 0

	for i := range p.Rounds {
		before := len(p.Rounds[i].Rows)
		p.Rounds[i].Rows = slices.DeleteFunc(p.Rounds[i].Rows, func(r project.Row) bool { return r.Rubric == code })
		removed += before - len(p.Rounds[i].Rows)
	}

	return removed
}

// UnmatchedRows returns the rows of the active round whose path on side is
// set but absent from the catalog. Catalogs are hints, so such rows are
// only reported, never removed.
func UnmatchedRows(p *project.Project, side project.Side, catalog []string) []project.Row {
	known := fieldpath.NewSet(catalog)

	var out []project.Row

	for _, row := range p.ActiveRound().Rows {
		value := row.Source
		if side == project.SideDestination {
			value = row.Destination
		}

		if fieldpath.Canonical(value).IsZero() || strings.HasPrefix(value, rubric.MarkerPrefix) || known.Has(value) {
			continue
		}

		out = append(out, row)
	}

	return out
}
