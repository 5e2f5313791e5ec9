package execution

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/jmgilman/scriptdeck/internal/process"
	"github.com/jmgilman/scriptdeck/internal/script"
	"github.com/jmgilman/scriptdeck/internal/slogger"
)

// Registry launches executions and tracks them by identifier. Identifiers are
// positive, unique, and strictly increasing for the registry's lifetime;
// finished executions remain queryable until Remove.
type Registry struct {
	mu         sync.Mutex
	nextID     int
	executions map[int]*Executor

	logger *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		executions: make(map[int]*Executor),
		logger:     logger,
	}
}

// Start builds the command for the given script and values, launches the
// process, and registers the running execution. The PTY strategy is used when
// the script requests a terminal and the platform supports it; otherwise the
// pipe strategy is used. Launch failures surface as *process.LaunchError and
// nothing is registered.
func (r *Registry) Start(cfg *script.Config, values script.Values, owner string) (*Executor, error) {
	command, err := script.BuildCommand(cfg, values)
	if err != nil {
		return nil, err
	}

	e := newExecutor(cfg, values, owner, command, r.logger)

	usePty := cfg.RequiresTerminal && process.PtySupported()
	if cfg.RequiresTerminal && !usePty {
		r.logger.Warn("terminal requested but unsupported, using pipes", "script", cfg.Name)
	}

	var h process.Handle
	if usePty {
		h, err = process.StartPty(command, cfg.WorkingDir)
	} else {
		h, err = process.StartPipe(command, cfg.WorkingDir)
	}
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.nextID++
	e.id = r.nextID
	e.logger = slogger.ForExecution(r.logger, e.id, cfg.Name, owner)
	r.executions[e.id] = e
	r.mu.Unlock()

	e.start(h)

	e.logger.Info("execution started", "command", e.SecureCommand())
	return e, nil
}

// Get returns the execution with the given identifier.
func (r *Registry) Get(id int) (*Executor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.executions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return e, nil
}

// List returns all tracked executions in identifier order.
func (r *Registry) List() []*Executor {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Executor, 0, len(r.executions))
	for _, e := range r.executions {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// Active returns executions that have not finished yet, in identifier order.
func (r *Registry) Active() []*Executor {
	all := r.List()
	out := all[:0]
	for _, e := range all {
		if !e.Finished() {
			out = append(out, e)
		}
	}
	return out
}

// Remove forgets a finished execution. Removing a running execution is
// rejected with ErrStillRunning so its output and lifecycle stay reachable.
func (r *Registry) Remove(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.executions[id]
	if !ok {
		return ErrNotFound
	}
	if !e.Finished() {
		return ErrStillRunning
	}
	delete(r.executions, id)
	return nil
}

// KillAll forcefully terminates every execution that is still running.
func (r *Registry) KillAll() {
	for _, e := range r.List() {
		if !e.Finished() {
			e.Kill()
		}
	}
}
