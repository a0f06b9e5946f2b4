package storage

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Load when a key has no slot.
var ErrNotFound = errors.New("slot not found")

// ErrUnknownDriver reports an unsupported storage driver name.
var ErrUnknownDriver = errors.New("unknown storage driver")

// Slots stores one document per key. Save replaces the whole document.
type Slots interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// Driver names accepted by Open.
const (
	DriverMemory = "memory"
	DriverDir    = "dir"
	DriverSQLite = "sqlite"
)

// Options selects and configures an adapter.
type Options struct {
	Driver     string
	Dir        string
	SQLitePath string
}

// Open builds the adapter named by opts.Driver. The returned close
// function releases its resources.
func Open(opts Options) (Slots, func() error, error) {
	noop := func() error { return nil }

	switch opts.Driver {
	case DriverMemory, "":
		return NewMemory(), noop, nil
	case DriverDir:
		d, err := NewDir(opts.Dir)
		if err != nil {
			return nil, nil, err
		}

		return d, noop, nil
	case DriverSQLite:
		s, err := OpenSQLite(opts.SQLitePath)
		if err != nil {
			return nil, nil, err
		}

		return s, s.Close, nil
	}

	return nil, nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
}
