// Package telemetry persists one record per compile/run session to a sqlite
// database via GORM, grounded on the teacher's own database stack choice
// (examples/main.go: `gorm.Open(sqlite.Open(...), &gorm.Config{})` +
// `db.AutoMigrate`) — generalized from the teacher's generated-app models
// (User, Task) to a compile-session record describing a pipeline run.
package telemetry

import (
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Session records one run of the Driver pipeline (spec §6 "Driver API")
// against one source file, for offline inspection of compile history.
type Session struct {
	gorm.Model
	SourceFile    string
	SourceHash    string // sha256 hex digest, ties back to cache.Hash
	Stage         string // furthest stage reached: parse|normalize|resolve|infer|evaluate|transpile
	DiagnosticCnt int
	ErrorCnt      int
	DurationMS    int64
	ExitCode      int
	TargetLang    string // transpiler target, empty when not transpiling
	StartedAt     time.Time
}

// Store wraps the GORM handle used to persist Session records.
type Store struct {
	db *gorm.DB
}

// Open connects to (creating if absent) a sqlite database at path and
// migrates the Session schema, mirroring the teacher's
// `gorm.Open(sqlite.Open(...))` + `AutoMigrate` pairing.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Session{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Record inserts one finished session's telemetry row.
func (s *Store) Record(sess *Session) error {
	return s.db.Create(sess).Error
}

// Recent returns the most recent sessions, newest first, for a CLI `stats`
// subcommand (cmd/ruchyc) to summarize.
func (s *Store) Recent(limit int) ([]Session, error) {
	var sessions []Session
	err := s.db.Order("created_at desc").Limit(limit).Find(&sessions).Error
	return sessions, err
}

// FailureRate reports the fraction of recorded sessions with ErrorCnt > 0,
// a simple health signal surfaced by `ruchyc stats`.
func (s *Store) FailureRate() (float64, error) {
	var total, failed int64
	if err := s.db.Model(&Session{}).Count(&total).Error; err != nil {
		return 0, err
	}
	if total == 0 {
		return 0, nil
	}
	if err := s.db.Model(&Session{}).Where("error_cnt > 0").Count(&failed).Error; err != nil {
		return 0, err
	}
	return float64(failed) / float64(total), nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
