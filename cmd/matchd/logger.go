// logger.go - Structured logging for the matching engine daemon
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// Logger wraps three zerolog sinks: console, an optional log file, and an
// optional audit file for warn-and-above events plus explicit Audit calls.
type Logger struct {
	file     *os.File
	auditFile *os.File
	console  zerolog.Logger
	fileLog  zerolog.Logger
	auditLog zerolog.Logger
}

// NewLogger creates a new logger instance at the given level ("debug",
// "info", "warn", "error", "fatal"), optionally tee-ing to logFile and
// auditFile.
func NewLogger(level string, logFile string, auditFile string) (*Logger, error) {
	zlevel, err := zerolog.ParseLevel(level)
	if err != nil {
		zlevel = zerolog.InfoLevel
	}

	logger := &Logger{
		console: zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
			Level(zlevel).With().Timestamp().Logger(),
	}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		logger.file = f
		logger.fileLog = zerolog.New(f).Level(zlevel).With().Timestamp().Logger()
	}

	if auditFile != "" {
		f, err := os.OpenFile(auditFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return nil, fmt.Errorf("failed to open audit file: %w", err)
		}
		logger.auditFile = f
		logger.auditLog = zerolog.New(f).With().Timestamp().Logger()
	}

	return logger, nil
}

// Close closes the logger's underlying files.
func (l *Logger) Close() error {
	if l.auditFile != nil {
		l.auditFile.Close()
	}
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

func (l *Logger) emit(ev func(zerolog.Logger) *zerolog.Event, toAudit bool, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	ev(l.console).Msg(msg)
	if l.file != nil {
		ev(l.fileLog).Msg(msg)
	}
	if toAudit && l.auditFile != nil {
		l.auditLog.Warn().Msg(msg)
	}
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.emit(func(lg zerolog.Logger) *zerolog.Event { return lg.Debug() }, false, format, args...)
}

// Info logs an info message.
func (l *Logger) Info(format string, args ...interface{}) {
	l.emit(func(lg zerolog.Logger) *zerolog.Event { return lg.Info() }, false, format, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.emit(func(lg zerolog.Logger) *zerolog.Event { return lg.Warn() }, true, format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...interface{}) {
	l.emit(func(lg zerolog.Logger) *zerolog.Event { return lg.Error() }, true, format, args...)
}

// Fatal logs a fatal message and exits.
func (l *Logger) Fatal(format string, args ...interface{}) {
	l.emit(func(lg zerolog.Logger) *zerolog.Event { return lg.Error() }, true, format, args...)
	os.Exit(1)
}

// Audit logs a structured audit event, independent of log level.
func (l *Logger) Audit(event string, details map[string]interface{}) {
	if l.auditFile == nil {
		return
	}
	evt := l.auditLog.Info().Str("event", event)
	for k, v := range details {
		evt = evt.Interface(k, v)
	}
	evt.Msg("audit")
}
