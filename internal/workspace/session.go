package workspace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"mapforge/internal/diagnostic"
	"mapforge/internal/persist"
	"mapforge/internal/project"
	"mapforge/internal/registry"
	"mapforge/internal/rubric"
	"mapforge/internal/sheet"
)

// ErrNoProject is returned by operations that need an open project.
var ErrNoProject = errors.New("no project open")

// Outcome is the result of a session operation.
type Outcome struct {
	Project     *project.Project       `json:"project"`
	Diagnostics diagnostic.Diagnostics `json:"diagnostics"`
	// Rows lists rows created by the operation, if any.
	Rows []project.Row `json:"rows,omitempty"`
	// Sheets lists the sheets of the last spreadsheet import.
	Sheets []SheetInfo `json:"sheets,omitempty"`
	// Import describes the sheet that was applied.
	Import *persist.SheetImport `json:"import,omitempty"`
}

// SheetInfo summarizes one imported sheet.
type SheetInfo struct {
	Name string `json:"name"`
	Rows int    `json:"rows"`
}

// Session holds the current project of a single user.
type Session struct {
	mu       sync.Mutex
	repo     *persist.Repository
	registry *registry.Registry
	rubrics  *rubric.Set
	log      *slog.Logger

	current *project.Project
	// imported keeps the sheets of the last spreadsheet import so another
	// sheet can be applied without uploading the file again.
	imported []sheet.ImportedSheet
}

// NewSession creates a session without an open project.
func NewSession(repo *persist.Repository, reg *registry.Registry, rubrics *rubric.Set, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}

	return &Session{repo: repo, registry: reg, rubrics: rubrics, log: log}
}

// Registry returns the interface registry of the session.
func (s *Session) Registry() *registry.Registry {
	return s.registry
}

// Rubrics returns the rubric templates of the session.
func (s *Session) Rubrics() *rubric.Set {
	return s.rubrics
}

// Open makes the project of a registered context current. A context
// without a valid stored document starts from an empty project, which is
// saved right away.
func (s *Session) Open(ctx context.Context, systemID string, direction project.Direction, messageID string) (*Outcome, error) {
	if _, err := s.registry.Message(systemID, direction, messageID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, fresh, err := s.repo.Open(ctx, systemID, direction, messageID)
	if err != nil {
		return nil, err
	}

	if fresh {
		if err := s.repo.Save(ctx, p.Key(), p); err != nil {
			return nil, err
		}

		s.log.InfoContext(ctx, "project created", slog.String("key", p.Key()))
	}

	s.current = p
	s.imported = nil

	return &Outcome{Project: p.Clone()}, nil
}

// Reset clears the stored slot of the current context and starts over
// with an empty project.
func (s *Session) Reset(ctx context.Context) (*Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil, ErrNoProject
	}

	if err := s.repo.Delete(ctx, s.current.Key()); err != nil {
		return nil, err
	}

	p := project.MakeEmpty(s.current.SystemID, s.current.Direction, s.current.MessageID)
	if err := s.repo.Save(ctx, p.Key(), p); err != nil {
		return nil, err
	}

	s.current = p
	s.imported = nil

	return &Outcome{Project: p.Clone()}, nil
}

// Current returns a copy of the open project.
func (s *Session) Current() (*project.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil, ErrNoProject
	}

	return s.current.Clone(), nil
}

// FixedFields returns the registry paths of the fixed side of the open project.
func (s *Session) FixedFields() ([]string, error) {
	p, err := s.Current()
	if err != nil {
		return nil, err
	}

	return s.registry.FixedFields(p.SystemID, p.Direction, p.MessageID), nil
}

// Catalog returns the paths offered for side: the registry fields for the
// fixed side, the stored catalog otherwise.
func (s *Session) Catalog(side project.Side) ([]string, error) {
	p, err := s.Current()
	if err != nil {
		return nil, err
	}

	if side == p.Direction.FixedSide() {
		return s.registry.FixedFields(p.SystemID, p.Direction, p.MessageID), nil
	}

	return p.Catalog(side), nil
}

// mutate applies fn to a clone of the current project. When fn succeeds
// and did not veto the change, the clone is saved and becomes current.
// fn vetoes by returning errUnchanged; the outcome then carries the
// unchanged project and the diagnostics fn collected.
func (s *Session) mutate(ctx context.Context, fn func(p *project.Project, out *Outcome) error) (*Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil, ErrNoProject
	}

	next := s.current.Clone()
	out := &Outcome{}

	err := fn(next, out)
	if errors.Is(err, errUnchanged) {
		out.Project = s.current.Clone()
		return out, nil
	}

	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, next.Key(), next); err != nil {
		return nil, err
	}

	s.current = next
	out.Project = next.Clone()

	return out, nil
}

// errUnchanged makes mutate keep the current project.
var errUnchanged = errors.New("unchanged")

// report turns an import failure into error diagnostics, one per field
// problem for validation errors.
func report(d *diagnostic.Diagnostics, subject string, err error) {
	var verr *project.ValidationError
	if errors.As(err, &verr) {
		for _, fe := range verr.Errors {
			d.AddError(diagnostic.CodeValidationFailed, fe.Message, subject, fe.Path)
		}

		return
	}

	d.AddError(diagnostic.CodeParseFailed, err.Error(), subject, "")
}

// readAll drains r, reporting a read failure as an error.
func readAll(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	return data, nil
}
