// Package trace persists a diagnostic record of every dispatched command
// group. It is an audit trail, not command history: nothing in the shell
// reads it back into a session.
package trace

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/bshell-sh/bshell/internal/executor"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// TraceManager writes dispatch records to a sqlite database.
type TraceManager struct {
	db *gorm.DB
}

// Entry is one dispatched command group.
type Entry struct {
	ID        uint      `gorm:"primarykey"`
	CreatedAt time.Time `gorm:"index"`

	Line    int
	Command string
	Mode    string
	Unit    int64

	Waited         bool
	WaitDurationMS sql.NullInt64
}

// NewTraceManager opens (creating if needed) the trace database.
func NewTraceManager(dbFilePath string) (*TraceManager, error) {
	db, err := gorm.Open(sqlite.Open(dbFilePath), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open trace database: %w", err)
	}

	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate trace schema: %w", err)
	}

	return &TraceManager{
		db: db,
	}, nil
}

// Record implements executor.Recorder.
func (m *TraceManager) Record(rec executor.DispatchRecord) error {
	entry := Entry{
		Line:    rec.Line,
		Command: rec.Command,
		Mode:    rec.Mode,
		Unit:    rec.Unit,
		Waited:  rec.Waited,
	}
	if rec.Waited {
		entry.WaitDurationMS = sql.NullInt64{
			Int64: rec.WaitDuration.Milliseconds(),
			Valid: true,
		}
	}

	if result := m.db.Create(&entry); result.Error != nil {
		return fmt.Errorf("failed to record dispatch: %w", result.Error)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (m *TraceManager) Recent(limit int) ([]Entry, error) {
	var entries []Entry
	result := m.db.Order("id desc").Limit(limit).Find(&entries)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to query trace entries: %w", result.Error)
	}
	return entries, nil
}

// Close releases the underlying database connection.
func (m *TraceManager) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
