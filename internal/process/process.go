// Package process wraps OS-level child process execution behind a single
// Handle contract with two interchangeable strategies: a plain pipe-backed
// process and a pseudo-terminal-backed process. The caller picks the
// strategy; everything above it sees the same read/write/kill surface.
package process

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
)

// Sentinel errors for process operations.
var (
	ErrEmptyCommand   = errors.New("command is empty")
	ErrPtyUnsupported = errors.New("pseudo-terminal execution is not supported on this platform")
	ErrInputClosed    = errors.New("process input is closed")
)

// LaunchError reports that a process could not be started (missing
// executable, permission denied, bad working directory). It carries the
// OS-level error.
type LaunchError struct {
	Path string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launch %s: %v", e.Path, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// Handle is the uniform surface over a launched process.
//
// Read has poll semantics: ok=false means "no data right now", which is
// distinct from end-of-stream; the stream has ended when Read yields no data
// and Finished reports true.
type Handle interface {
	// Read returns the next available output chunk without blocking.
	Read() (chunk string, ok bool)

	// WriteInput sends text to the process's standard input. The text is
	// written as-is; callers append newlines themselves.
	WriteInput(text string) error

	// Kill requests OS-level termination. Killing an already finished
	// process is a no-op.
	Kill()

	// Finished reports whether the process has terminated and all of its
	// output has been queued.
	Finished() bool

	// ExitCode returns the exit code once the process has terminated.
	ExitCode() (int, bool)
}

// procState holds the output queue and termination state shared by both
// handle strategies.
type procState struct {
	out      chan string
	finished atomic.Bool
	exited   atomic.Bool
	exitCode atomic.Int64
}

func newProcState() procState {
	return procState{out: make(chan string, 64)}
}

func (s *procState) Read() (string, bool) {
	select {
	case chunk, open := <-s.out:
		if !open {
			return "", false
		}
		return chunk, true
	default:
		return "", false
	}
}

func (s *procState) Finished() bool {
	return s.finished.Load()
}

func (s *procState) ExitCode() (int, bool) {
	if !s.exited.Load() {
		return 0, false
	}
	return int(s.exitCode.Load()), true
}

// finish records the exit code and releases readers. Output pumps must have
// completed before this is called, so every chunk is already queued when
// Finished starts reporting true.
func (s *procState) finish(code int) {
	s.exitCode.Store(int64(code))
	s.exited.Store(true)
	s.finished.Store(true)
	close(s.out)
}

// pump copies reader output into the chunk queue until EOF or error.
func pump(r io.Reader, out chan<- string, wg *sync.WaitGroup) {
	defer wg.Done()

	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			out <- string(buf[:n])
		}
		if err != nil {
			return
		}
	}
}
