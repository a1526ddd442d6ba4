package logger

import corelogger "github.com/kilianp07/transship/core/logger"

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger implements Logger with no-op methods.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any)         {}
func (NopLogger) Debugw(string, map[string]any) {}
func (NopLogger) Infof(string, ...any)          {}
func (NopLogger) Warnf(string, ...any)          {}
func (NopLogger) Errorf(string, ...any)         {}

// New returns a Logger for the given component. The environment is detected via
// the APP_ENV variable.
func New(component string) Logger {
	return NewZerologLogger(component)
}

// Config selects the log level and an optional rotating file sink.
type Config struct {
	Level      string `json:"level" koanf:"level"`
	File       string `json:"file" koanf:"file"`
	MaxSizeMB  int    `json:"max_size_mb" koanf:"max_size_mb"`
	MaxBackups int    `json:"max_backups" koanf:"max_backups"`
	MaxAgeDays int    `json:"max_age_days" koanf:"max_age_days"`
	Compress   bool   `json:"compress" koanf:"compress"`
}

// NewWithConfig returns a zerolog-backed Logger writing to stdout and, when
// cfg.File is set, to a rotating log file.
func NewWithConfig(component string, cfg Config) (Logger, error) {
	return newConfiguredLogger(component, cfg)
}
