// Package log provides the leveled printf-style logger shared by every
// cliptran component.
package log

import (
	"io"
	"log"
	"os"
	"sync"
)

// Logger is the logging contract injected into components.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// AppLogger writes "[LEVEL] message" lines through a stdlib log.Logger.
type AppLogger struct {
	logger     *log.Logger
	debug      bool
	fileHandle *os.File
	mu         sync.Mutex
}

// New creates a logger writing to output. Debug lines are dropped unless
// debugMode is set.
func New(output io.Writer, debugMode bool) *AppLogger {
	return &AppLogger{
		logger: log.New(output, "", log.LstdFlags),
		debug:  debugMode,
	}
}

// NewFile opens path for appending and logs into it. When the file cannot be
// opened the logger falls back to stderr and reports the failure there.
func NewFile(path string, debugMode bool) *AppLogger {
	if path == "" {
		return New(os.Stderr, debugMode)
	}
	//nolint:gosec // path comes from the user's own config
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		l := New(os.Stderr, debugMode)
		l.Warn("failed to open log file %q: %v, falling back to stderr", path, err)
		return l
	}
	l := New(f, debugMode)
	l.fileHandle = f
	return l
}

func (l *AppLogger) Debug(format string, args ...any) {
	if l != nil && l.debug {
		l.logger.Printf("[DEBUG] "+format, args...)
	}
}

func (l *AppLogger) Info(format string, args ...any) {
	if l != nil {
		l.logger.Printf("[INFO] "+format, args...)
	}
}

func (l *AppLogger) Warn(format string, args ...any) {
	if l != nil {
		l.logger.Printf("[WARN] "+format, args...)
	}
}

func (l *AppLogger) Error(format string, args ...any) {
	if l != nil {
		l.logger.Printf("[ERROR] "+format, args...)
	}
}

// Close releases the log file, if any.
func (l *AppLogger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fileHandle != nil {
		err := l.fileHandle.Close()
		l.fileHandle = nil
		return err
	}
	return nil
}

// Nop discards everything.
type Nop struct{}

func (Nop) Debug(string, ...any) {}
func (Nop) Info(string, ...any)  {}
func (Nop) Warn(string, ...any)  {}
func (Nop) Error(string, ...any) {}
