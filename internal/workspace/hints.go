package workspace

import (
	"mapforge/internal/project"
	"mapforge/internal/reconcile"
	"mapforge/internal/suggest"
)

// Suggest ranks the paths offered for side against a typed fragment.
func (s *Session) Suggest(side project.Side, query string, limit int) (suggest.CandidateList, error) {
	catalog, err := s.Catalog(side)
	if err != nil {
		return nil, err
	}

	return suggest.Rank(catalog, query, limit), nil
}

// SuggestFor ranks the paths of side that likely correspond to path, a
// path of the other side. best is set when one candidate clearly wins over
// the whole catalog, not only over the returned top entries.
func (s *Session) SuggestFor(side project.Side, path string, limit int) (list suggest.CandidateList, best *suggest.Candidate, err error) {
	catalog, err := s.Catalog(side)
	if err != nil {
		return nil, nil, err
	}

	all := suggest.ForPath(path, catalog, 0)

	return all.Top(limit), all.HighConfidence(suggest.MinConfidence, suggest.MinLead), nil
}

// Unmatched lists the rows of the active round whose path on side is not
// offered by that side's catalog.
func (s *Session) Unmatched(side project.Side) ([]project.Row, error) {
	catalog, err := s.Catalog(side)
	if err != nil {
		return nil, err
	}

	p, err := s.Current()
	if err != nil {
		return nil, err
	}

	return reconcile.UnmatchedRows(p, side, catalog), nil
}
