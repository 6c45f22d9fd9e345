package internal

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// ActivityLog appends request activity to a file. A nil or disabled log drops everything.
type ActivityLog struct {
	mu     sync.Mutex
	logger *log.Logger
	closer io.Closer
}

var (
	activityLog     *ActivityLog
	activityLogOnce sync.Once
)

// OpenActivityLog opens path for appending; failures disable logging instead of failing the run
func OpenActivityLog(path string) *ActivityLog {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil
	}

	logFile, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil
	}

	return NewActivityLog(logFile)
}

// NewActivityLog logs to w with timestamp and microsecond precision
func NewActivityLog(w io.Writer) *ActivityLog {
	l := &ActivityLog{logger: log.New(w, "", log.LstdFlags|log.Lmicroseconds)}
	if c, ok := w.(io.Closer); ok {
		l.closer = c
	}
	return l
}

// InitActivityLog opens the shared activity log once, based on config
func InitActivityLog(config *Config) *ActivityLog {
	activityLogOnce.Do(func() {
		if config.LogEnabled {
			activityLog = OpenActivityLog(config.LogFile)
		}
	})
	return activityLog
}

func (l *ActivityLog) logf(level, format string, args ...any) {
	if l == nil || l.logger == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.Printf("[%s] "+format, append([]any{level}, args...)...)
}

// Info logs an info message
func (l *ActivityLog) Info(format string, args ...any) {
	l.logf("INFO", format, args...)
}

// Error logs an error message
func (l *ActivityLog) Error(format string, args ...any) {
	l.logf("ERROR", format, args...)
}

// Debug logs a debug message
func (l *ActivityLog) Debug(format string, args ...any) {
	l.logf("DEBUG", format, args...)
}

// Close releases the underlying file. Later writes are dropped.
func (l *ActivityLog) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger = nil
	if l.closer == nil {
		return nil
	}
	closer := l.closer
	l.closer = nil
	return closer.Close()
}

// CloseActivityLog closes the shared activity log if one was opened
func CloseActivityLog() error {
	return activityLog.Close()
}
