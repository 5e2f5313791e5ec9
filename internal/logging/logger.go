package logging

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Header describes the execution a log file belongs to. It is written at the
// top of the file before any output.
type Header struct {
	ExecutionID int
	Script      string
	Owner       string
	Command     string
	StartedAt   time.Time
}

// OutputLogger persists an execution's output stream to a log file. It
// implements the stream consumer contract: attach it with Subscribe on the
// execution's secure output stream.
//
// A write failure is reported once and disables further writing; the
// execution itself is never disturbed by logging problems.
type OutputLogger struct {
	mu     sync.Mutex
	file   *os.File
	failed bool
	logger *slog.Logger
}

// NewOutputLogger creates the log file, writes the header, and returns a
// logger ready to consume output chunks. The file is truncated if it exists.
func NewOutputLogger(path string, header Header, logger *slog.Logger) (*OutputLogger, error) {
	//nolint:gosec // G304: path comes from PathManager, not arbitrary user input
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create execution log file: %w", err)
	}

	_, err = fmt.Fprintf(file,
		"id: %d\nscript: %s\nuser: %s\nstart_time: %s\ncommand: %s\n\n",
		header.ExecutionID,
		header.Script,
		header.Owner,
		header.StartedAt.Format(time.RFC3339),
		header.Command)
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("write execution log header: %w", err)
	}

	return &OutputLogger{file: file, logger: logger}, nil
}

// Path returns the log file path, or empty once the logger shut down.
func (l *OutputLogger) Path() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return ""
	}
	return l.file.Name()
}

// OnChunk appends one output chunk to the log file.
func (l *OutputLogger) OnChunk(chunk string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.failed || l.file == nil {
		return
	}
	if _, err := l.file.WriteString(chunk); err != nil {
		l.failed = true
		l.logger.Error("execution log write failed, logging disabled",
			"path", l.file.Name(), "error", err)
	}
}

// OnClose flushes and closes the log file.
func (l *OutputLogger) OnClose() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return
	}
	if err := l.file.Close(); err != nil && !l.failed {
		l.logger.Error("close execution log file", "path", l.file.Name(), "error", err)
	}
	l.file = nil
}
