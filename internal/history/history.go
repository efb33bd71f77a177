// Package history persists `stof test` run summaries across CLI
// invocations: pass/fail counts, per-test timing, and failure messages,
// keyed by the document path that was tested.
//
// Grounded in the teacher's db.Connect/db.Migrate (gorm.Open + AutoMigrate
// against a file-based dialector), generalized from gorm's cgo-dependent
// `gorm.io/driver/sqlite` to the pure-Go `github.com/glebarez/sqlite`
// driver so the CLI binary stays cgo-free. This is bookkeeping for the
// CLI only (spec's Non-goals: it is not a query surface over document
// data, and does not reintroduce a SQL engine into the graph model).
package history

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Run is one persisted `stof test` invocation against a single document.
type Run struct {
	ID       uint          `gorm:"primaryKey"`
	DocPath  string        `gorm:"type:varchar(4096);index"`
	RanAt    time.Time     `gorm:"autoCreateTime;index"`
	Passed   int
	Failed   int
	Duration time.Duration
	Results  []Result `gorm:"foreignKey:RunID"`
}

// Result is one test-attributed function's outcome within a Run.
type Result struct {
	ID        uint   `gorm:"primaryKey"`
	RunID     uint   `gorm:"index"`
	Path      string `gorm:"type:varchar(1024)"`
	Ok        bool
	Message   string `gorm:"type:text"`
	NsElapsed int64
}

// Store wraps the gorm handle used to persist and query Runs.
type Store struct {
	db *gorm.DB
}

// Open connects to (creating if absent) a sqlite database at path, applying
// the foreign-key pragma the teacher's db.Connect also sets, and running
// AutoMigrate against Run/Result (mirrors db.Migrate's AutoMigrate call).
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("history: create db directory: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", path, err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Exec("PRAGMA foreign_keys = ON")
	}
	if err := db.AutoMigrate(&Run{}, &Result{}); err != nil {
		return nil, fmt.Errorf("history: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// DefaultPath is where a `stof` invocation's history lives relative to the
// current working directory, mirroring the teacher's own ".morfx/run.db"
// per-project convention.
func DefaultPath() string {
	return filepath.Join(".stof", "run.db")
}

// Record persists one completed test run.
func (s *Store) Record(r *Run) error {
	return s.db.Create(r).Error
}

// Recent returns the last n runs recorded against docPath, most recent
// first, with their per-test Results preloaded.
func (s *Store) Recent(docPath string, n int) ([]Run, error) {
	var runs []Run
	err := s.db.Preload("Results").
		Where("doc_path = ?", docPath).
		Order("ran_at desc").
		Limit(n).
		Find(&runs).Error
	return runs, err
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
