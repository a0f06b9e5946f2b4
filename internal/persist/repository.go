package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"mapforge/internal/project"
	"mapforge/internal/storage"
)

// Repository loads and saves projects in a slot store.
type Repository struct {
	slots storage.Slots
	log   *slog.Logger
	now   func() time.Time
}

// Option configures a Repository.
type Option func(*Repository)

// WithClock replaces the time source used for updatedAt.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// WithLogger sets the logger. The default logger is used otherwise.
func WithLogger(log *slog.Logger) Option {
	return func(r *Repository) { r.log = log }
}

// NewRepository wraps a slot store.
func NewRepository(slots storage.Slots, opts ...Option) *Repository {
	r := &Repository{slots: slots, log: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Now returns the repository clock's current time.
func (r *Repository) Now() time.Time {
	return r.now()
}

// Load returns the project stored under key, or nil when the slot is
// absent or holds a document that does not validate. Only storage
// failures are returned as errors.
func (r *Repository) Load(ctx context.Context, key string) (*project.Project, error) {
	raw, err := r.slots.Load(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("load project %s: %w", key, err)
	}

	p, err := project.Validate(raw)
	if err != nil {
		r.log.WarnContext(ctx, "stored project is invalid, treating slot as empty",
			slog.String("key", key), slog.Any("error", err))

		return nil, nil
	}

	return p, nil
}

// Open loads the project of a context or creates an empty one. The second
// result reports whether the project was freshly created.
func (r *Repository) Open(
	ctx context.Context, systemID string, direction project.Direction, messageID string,
) (*project.Project, bool, error) {
	key := project.Key(systemID, direction, messageID)

	p, err := r.Load(ctx, key)
	if err != nil {
		return nil, false, err
	}

	if p != nil {
		return p, false, nil
	}

	p = project.MakeEmpty(systemID, direction, messageID)
	p.Touch(r.now())

	return p, true, nil
}

// Save stamps updatedAt and replaces the slot under key with the whole
// document. The last write wins.
func (r *Repository) Save(ctx context.Context, key string, p *project.Project) error {
	p.Touch(r.now())

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode project: %w", err)
	}

	if err := r.slots.Save(ctx, key, data); err != nil {
		return fmt.Errorf("save project %s: %w", key, err)
	}

	r.log.DebugContext(ctx, "project saved", slog.String("key", key), slog.Int("bytes", len(data)))

	return nil
}

// Delete clears the slot under key.
func (r *Repository) Delete(ctx context.Context, key string) error {
	if err := r.slots.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete project %s: %w", key, err)
	}

	return nil
}
