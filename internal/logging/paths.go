// Package logging persists execution output to log files and reads them back
// for listing, tailing, and following.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// logTimeFormat matches the timestamp embedded in execution log file names.
const logTimeFormat = "060102_150405"

// PathManager constructs execution log file paths and manages the log
// directory. The base directory is typically ~/.local/share/scriptdeck/logs.
type PathManager struct {
	baseDir string
}

// NewPathManager creates a PathManager rooted at the given base directory.
func NewPathManager(baseDir string) *PathManager {
	return &PathManager{baseDir: baseDir}
}

// BaseDir returns the base log directory.
func (p *PathManager) BaseDir() string {
	return p.baseDir
}

// ProcessesDir returns the directory holding execution output logs.
func (p *PathManager) ProcessesDir() string {
	return filepath.Join(p.baseDir, "processes")
}

// ExecutionLogName returns the file name for an execution's output log:
// <script>_<owner>_<yymmdd_HHMMSS>.log, with unsafe characters replaced.
func (p *PathManager) ExecutionLogName(scriptName, owner string, startedAt time.Time) string {
	return fmt.Sprintf("%s_%s_%s.log",
		sanitize(scriptName), sanitize(owner), startedAt.Format(logTimeFormat))
}

// ExecutionLogPath returns the full path for an execution's output log.
func (p *PathManager) ExecutionLogPath(scriptName, owner string, startedAt time.Time) string {
	return filepath.Join(p.ProcessesDir(), p.ExecutionLogName(scriptName, owner, startedAt))
}

// EnsureProcessesDir creates the processes log directory if it doesn't exist.
// Returns the directory path.
func (p *PathManager) EnsureProcessesDir() (string, error) {
	dir := p.ProcessesDir()
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create processes log directory: %w", err)
	}
	return dir, nil
}

// LogPath resolves a log file name (as returned by ListExecutionLogs) to its
// full path.
func (p *PathManager) LogPath(name string) string {
	return filepath.Join(p.ProcessesDir(), name)
}

// ListExecutionLogs returns the names of all execution log files, sorted.
func (p *PathManager) ListExecutionLogs() ([]string, error) {
	entries, err := os.ReadDir(p.ProcessesDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read processes log directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if filepath.Ext(entry.Name()) == ".log" {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// sanitize replaces characters that are unsafe in file names across platforms
// (spaces, path separators, colons on Windows) with underscores.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}
