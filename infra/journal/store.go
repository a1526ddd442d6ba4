// Package journal keeps a persistent record of solver runs.
package journal

import (
	"context"
	"errors"
	"fmt"
	"time"

	coremetrics "github.com/kilianp07/transship/core/metrics"
	"github.com/kilianp07/transship/core/model"
)

// Record captures the summary of one solver run.
type Record struct {
	Timestamp  time.Time   `json:"timestamp"`
	RunID      string      `json:"run_id"`
	Mode       string      `json:"mode"`
	Policy     string      `json:"policy,omitempty"`
	Status     string      `json:"status"`
	Periods    int         `json:"periods"`
	States     int         `json:"states"`
	Workers    int         `json:"workers"`
	DurationMS float64     `json:"duration_ms"`
	MinValue   float64     `json:"min_value"`
	MinState   model.State `json:"min_state"`
	Error      string      `json:"error,omitempty"`
}

// FromRunEvent converts a run event into a journal record.
func FromRunEvent(ev coremetrics.RunEvent) Record {
	return Record{
		Timestamp:  ev.Time,
		RunID:      ev.RunID,
		Mode:       ev.Mode,
		Policy:     ev.Policy,
		Status:     ev.Status(),
		Periods:    ev.Periods,
		States:     ev.States,
		Workers:    ev.Workers,
		DurationMS: float64(ev.Duration) / float64(time.Millisecond),
		MinValue:   ev.MinValue,
		MinState:   ev.MinState,
		Error:      ev.Err,
	}
}

// Query filters records. Zero fields match everything.
type Query struct {
	Start  time.Time
	End    time.Time
	Mode   string
	Policy string
	Status string
}

func (q Query) match(r Record) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.Mode != "" && r.Mode != q.Mode {
		return false
	}
	if q.Policy != "" && r.Policy != q.Policy {
		return false
	}
	return q.Status == "" || r.Status == q.Status
}

// Store persists Records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

// Backends.
const (
	BackendJSONL  = "jsonl"
	BackendSQLite = "sqlite"
)

// Config selects the journal backend and, for JSONL, its rotation.
type Config struct {
	// Backend is "jsonl" or "sqlite".
	Backend string `json:"backend"`
	Path    string `json:"path"`
	// MaxSizeMB triggers rotation when the file exceeds this size in megabytes.
	MaxSizeMB  int `json:"max_size_mb"`
	MaxBackups int `json:"max_backups"`
	MaxAgeDays int `json:"max_age_days"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Backend == "" {
		c.Backend = BackendJSONL
	}
	if c.Path == "" {
		c.Path = "runs." + c.Backend
		if c.Backend == BackendSQLite {
			c.Path = "runs.db"
		}
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.Backend != BackendJSONL && c.Backend != BackendSQLite {
		return fmt.Errorf("unknown backend %s", c.Backend)
	}
	if c.Path == "" {
		return errors.New("path is required")
	}
	return nil
}

// Open returns the store described by cfg.
func Open(cfg Config) (Store, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Backend == BackendSQLite {
		return NewSQLiteStore(cfg.Path)
	}
	return NewJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
}
