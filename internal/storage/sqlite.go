package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// slot is the row model of the slots table.
type slot struct {
	Key       string `gorm:"column:slot_key;primaryKey;size:512"`
	Data      []byte `gorm:"not null"`
	UpdatedAt time.Time
}

func (slot) TableName() string { return "slots" }

// SQLite keeps slots in a local database file.
type SQLite struct {
	db *gorm.DB
}

var _ Slots = (*SQLite)(nil)

// OpenSQLite opens (and migrates) the database at path. Use ":memory:" for
// a throwaway database.
func OpenSQLite(path string) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path: %w", os.ErrInvalid)
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// One connection: sqlite serializes writers anyway and ":memory:" is per connection.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&slot{}); err != nil {
		return nil, fmt.Errorf("migrate slots table: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Load(ctx context.Context, key string) ([]byte, error) {
	var row slot

	err := s.db.WithContext(ctx).Where("slot_key = ?", key).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("load slot %s: %w", key, err)
	}

	return row.Data, nil
}

func (s *SQLite) Save(ctx context.Context, key string, data []byte) error {
	row := slot{Key: key, Data: data}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slot_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("save slot %s: %w", key, err)
	}

	return nil
}

func (s *SQLite) Delete(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where("slot_key = ?", key).Delete(&slot{}).Error; err != nil {
		return fmt.Errorf("delete slot %s: %w", key, err)
	}

	return nil
}

// Close releases the database handle.
func (s *SQLite) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}
