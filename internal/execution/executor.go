// Package execution orchestrates running scripts: it owns the lifecycle state
// machine of each launched process, pumps process output into the execution's
// output streams, and notifies finish listeners exactly once when the process
// ends for any reason.
package execution

import (
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jmgilman/scriptdeck/internal/process"
	"github.com/jmgilman/scriptdeck/internal/script"
	"github.com/jmgilman/scriptdeck/internal/stream"
)

// Sentinel errors for execution operations.
var (
	ErrNotFound     = errors.New("execution not found")
	ErrNotRunning   = errors.New("execution is not running")
	ErrStillRunning = errors.New("execution is still running")
)

// pollInterval is the delay between output polls while the process is alive
// but currently has nothing to read.
const pollInterval = 10 * time.Millisecond

// State is an execution's lifecycle phase. Transitions are monotonic:
// created -> running -> (terminating ->) finished.
type State int32

const (
	StateCreated State = iota
	StateRunning
	StateTerminating
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateTerminating:
		return "terminating"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// FinishListener is notified when an execution finishes. Listeners added
// after the execution already finished are notified immediately; no listener
// is ever notified twice.
type FinishListener interface {
	Finished()
}

// FinishFunc adapts a plain function to the FinishListener interface.
type FinishFunc func()

func (f FinishFunc) Finished() { f() }

// Executor tracks one launched script process from start to finish.
type Executor struct {
	id        int
	config    *script.Config
	values    script.Values
	owner     string
	startedAt time.Time

	handle  process.Handle
	output  *stream.Stream
	secure  *stream.Stream
	redact  func(string) string
	command []string

	state    atomic.Int32
	exitCode atomic.Int64
	exited   atomic.Bool

	mu        sync.Mutex
	listeners []FinishListener
	fired     bool

	logger *slog.Logger
}

func newExecutor(cfg *script.Config, values script.Values, owner string, command []string, logger *slog.Logger) *Executor {
	e := &Executor{
		config:    cfg,
		values:    values.Copy(),
		owner:     owner,
		startedAt: time.Now(),
		output:    stream.New(),
		secure:    stream.New(),
		redact:    redactor(cfg, values),
		command:   command,
		logger:    logger,
	}
	e.state.Store(int32(StateCreated))
	return e
}

// redactor returns a function masking every supplied secret value in a chunk.
// When the script has no secret parameters it is the identity.
func redactor(cfg *script.Config, values script.Values) func(string) string {
	secrets := cfg.SecretValues(values)
	if len(secrets) == 0 {
		return func(chunk string) string { return chunk }
	}

	pairs := make([]string, 0, len(secrets)*2)
	for _, s := range secrets {
		pairs = append(pairs, s, script.SecretPlaceholder)
	}
	return strings.NewReplacer(pairs...).Replace
}

// ID returns the registry-assigned execution identifier.
func (e *Executor) ID() int { return e.id }

// Config returns the script configuration this execution was started from.
func (e *Executor) Config() *script.Config { return e.config }

// Values returns a copy of the parameter values the execution was started
// with. Secret values are present; callers sharing them externally must use
// Config().RedactedValues.
func (e *Executor) Values() script.Values { return e.values.Copy() }

// Owner returns the audit identity the execution was started for.
func (e *Executor) Owner() string { return e.owner }

// StartedAt returns the launch timestamp.
func (e *Executor) StartedAt() time.Time { return e.startedAt }

// State returns the current lifecycle phase.
func (e *Executor) State() State {
	return State(e.state.Load())
}

// Finished reports whether the execution reached its terminal state.
func (e *Executor) Finished() bool {
	return e.State() == StateFinished
}

// ExitCode returns the process exit code. ok is false until the execution
// finished.
func (e *Executor) ExitCode() (code int, ok bool) {
	if !e.exited.Load() {
		return 0, false
	}
	return int(e.exitCode.Load()), true
}

// OutputStream returns the execution's output stream. The secure view has
// every supplied secret value masked; the raw view is verbatim process
// output. Both carry the same chunks in the same order.
func (e *Executor) OutputStream(secureView bool) *stream.Stream {
	if secureView {
		return e.secure
	}
	return e.output
}

// SecureCommand renders the launched command line with secret values masked.
func (e *Executor) SecureCommand() string {
	masked, err := script.SecureCommand(e.config, e.values)
	if err != nil {
		// The command already launched, so the path resolves; this is
		// unreachable in practice.
		return strings.Join(e.command[:1], " ")
	}
	return masked
}

// WriteInput forwards text to the process's standard input exactly as given.
// Callers append their own newline when they mean to submit a line. Returns
// ErrNotRunning once the execution finished.
func (e *Executor) WriteInput(text string) error {
	if e.Finished() {
		return ErrNotRunning
	}
	return e.handle.WriteInput(text)
}

// Kill forcefully terminates the process. Safe to call repeatedly and after
// the execution finished; redundant calls are no-ops.
func (e *Executor) Kill() {
	if !e.state.CompareAndSwap(int32(StateRunning), int32(StateTerminating)) {
		if e.State() != StateTerminating {
			return
		}
	}
	e.handle.Kill()
}

// AddFinishListener registers a listener. If the execution already finished,
// the listener is notified synchronously before AddFinishListener returns.
func (e *Executor) AddFinishListener(l FinishListener) {
	e.mu.Lock()
	if e.fired {
		e.mu.Unlock()
		l.Finished()
		return
	}
	e.listeners = append(e.listeners, l)
	e.mu.Unlock()
}

// start transitions to running and begins pumping output. Called exactly once
// by the registry after the process launched.
func (e *Executor) start(h process.Handle) {
	e.handle = h
	e.state.Store(int32(StateRunning))
	go e.pump()
}

// pump moves process output into both stream views until the process ends,
// then records the exit code, closes the streams, and fires finish listeners.
func (e *Executor) pump() {
	for {
		chunk, ok := e.handle.Read()
		if ok {
			e.emit(chunk)
			continue
		}
		if e.handle.Finished() {
			break
		}
		time.Sleep(pollInterval)
	}

	// Drain chunks queued between the last read and the finished flag.
	for {
		chunk, ok := e.handle.Read()
		if !ok {
			break
		}
		e.emit(chunk)
	}

	if code, ok := e.handle.ExitCode(); ok {
		e.exitCode.Store(int64(code))
		e.exited.Store(true)
	}

	e.output.Close()
	e.secure.Close()
	e.state.Store(int32(StateFinished))

	e.logger.Debug("execution finished", "exit_code", e.exitCode.Load())

	e.fire()
}

func (e *Executor) emit(chunk string) {
	if err := e.output.Emit(chunk); err != nil {
		e.logger.Error("dropped output chunk", "error", err)
		return
	}
	if err := e.secure.Emit(e.redact(chunk)); err != nil {
		e.logger.Error("dropped secure output chunk", "error", err)
	}
}

// fire notifies listeners exactly once. Listeners registered concurrently
// with finishing are either included here or notified by AddFinishListener.
func (e *Executor) fire() {
	e.mu.Lock()
	e.fired = true
	listeners := e.listeners
	e.listeners = nil
	e.mu.Unlock()

	for _, l := range listeners {
		l.Finished()
	}
}
