package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// achievedRow is one achieved name; Position preserves unlock order
type achievedRow struct {
	Name      string `gorm:"primaryKey"`
	Position  int    `gorm:"index"`
	UpdatedAt time.Time
}

func (achievedRow) TableName() string { return "achieved_names" }

// SQLiteStore keeps the achieved names in a SQLite table
type SQLiteStore struct {
	db *gorm.DB
}

// OpenSQLite opens (or creates) the database at path; ":memory:" is accepted
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open achievement database: %w", err)
	}

	// Single connection: serializes writers and keeps ":memory:" to one database
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("open achievement database: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&achievedRow{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate achievement database: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Load returns the names in unlock order; an empty table is an empty record
func (s *SQLiteStore) Load(ctx context.Context) ([]string, error) {
	var rows []achievedRow
	if err := s.db.WithContext(ctx).Order("position").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load achievements: %w", err)
	}

	names := make([]string, len(rows))
	for i, row := range rows {
		names[i] = row.Name
	}
	return names, nil
}

// Save replaces the table contents with names in one transaction
func (s *SQLiteStore) Save(ctx context.Context, names []string) error {
	rows := make([]achievedRow, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		rows = append(rows, achievedRow{Name: name, Position: len(rows)})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&achievedRow{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return fmt.Errorf("save achievements: %w", err)
	}
	return nil
}

// Close releases the database handle
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
