package config

import (
	"fmt"
	"slices"
	"strings"

	"mapforge/internal/storage"
)

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"json", "text"}
)

// Validate checks the loaded configuration. Load calls it automatically.
func (c *Config) Validate() error {
	if !slices.Contains(logLevels, strings.ToLower(c.Log.Level)) {
		return fmt.Errorf("log.level must be one of %v (got %q)", logLevels, c.Log.Level)
	}

	if !slices.Contains(logFormats, strings.ToLower(c.Log.Format)) {
		return fmt.Errorf("log.format must be one of %v (got %q)", logFormats, c.Log.Format)
	}

	if err := c.Storage.validate(); err != nil {
		return fmt.Errorf("storage: %w", err)
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}

	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max_upload_bytes must be > 0 (got %d)", c.Server.MaxUploadBytes)
	}

	return nil
}

func (s *StorageConfig) validate() error {
	switch s.Driver {
	case storage.DriverMemory:
	case storage.DriverDir:
		if s.Dir == "" {
			return fmt.Errorf("dir must be set for driver %q", s.Driver)
		}
	case storage.DriverSQLite:
		if s.SQLitePath == "" {
			return fmt.Errorf("sqlite_path must be set for driver %q", s.Driver)
		}
	default:
		return fmt.Errorf("%w: %q", storage.ErrUnknownDriver, s.Driver)
	}

	return nil
}

// StorageOptions maps the storage section to the store options.
func (c *Config) StorageOptions() storage.Options {
	return storage.Options{
		Driver:     c.Storage.Driver,
		Dir:        c.Storage.Dir,
		SQLitePath: c.Storage.SQLitePath,
	}
}
