package logger

import (
	"github.com/aleister1102/changewatch/internal/config"
	"github.com/rs/zerolog"
)

// Logger represents the main logger with configuration
type Logger struct {
	zerolog zerolog.Logger
	config  LoggerConfig
}

// GetZerolog returns the underlying zerolog instance
func (l *Logger) GetZerolog() *zerolog.Logger {
	return &l.zerolog
}

// Config returns the resolved logger configuration
func (l *Logger) Config() LoggerConfig {
	return l.config
}

// New creates the root logger from the application log configuration
func New(cfg config.LogConfig) (zerolog.Logger, error) {
	logger, err := NewLoggerBuilder().WithConfig(cfg).Build()
	if err != nil {
		return zerolog.Logger{}, err
	}
	return *logger.GetZerolog(), nil
}

// ForCycle derives a logger that tags every event with the check cycle and mode.
func ForCycle(base zerolog.Logger, cycleID, mode string) zerolog.Logger {
	return base.With().Str("cycle_id", cycleID).Str("mode", mode).Logger()
}
