package process

import (
	"os/exec"
	"sync"
)

// pipeHandle runs a child process over plain pipes. Stdout and stderr are
// read concurrently into one chunk queue; within each pipe, chunk order is
// preserved.
type pipeHandle struct {
	procState

	cmd   *exec.Cmd
	stdin *inputWriter

	killOnce sync.Once
}

// StartPipe launches a command with pipe-backed stdio.
// A failure to start is reported as *LaunchError.
func StartPipe(command []string, workdir string) (Handle, error) {
	if len(command) == 0 {
		return nil, ErrEmptyCommand
	}

	// G204: launching operator-configured scripts is the whole point here;
	// the config layer owns validation.
	cmd := exec.Command(command[0], command[1:]...) //nolint:gosec // Intentional subprocess execution
	cmd.Dir = workdir
	setProcAttr(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &LaunchError{Path: command[0], Err: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, &LaunchError{Path: command[0], Err: err}
	}
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, &LaunchError{Path: command[0], Err: err}
	}

	if err := cmd.Start(); err != nil {
		return nil, &LaunchError{Path: command[0], Err: err}
	}

	h := &pipeHandle{
		procState: newProcState(),
		cmd:       cmd,
		stdin:     &inputWriter{w: stdin},
	}

	var pumps sync.WaitGroup
	pumps.Add(2)
	go pump(stdout, h.out, &pumps)
	go pump(stderr, h.out, &pumps)

	go func() {
		pumps.Wait()
		_ = cmd.Wait() //nolint:errcheck // exit status comes from ProcessState
		h.stdin.close()
		h.finish(cmd.ProcessState.ExitCode())
	}()

	return h, nil
}

func (h *pipeHandle) WriteInput(text string) error {
	return h.stdin.write(text)
}

func (h *pipeHandle) Kill() {
	if h.Finished() {
		return
	}
	h.killOnce.Do(func() {
		killProcess(h.cmd)
	})
}

// inputWriter serializes stdin writes and turns writes after process exit
// into ErrInputClosed instead of a pipe error.
type inputWriter struct {
	mu     sync.Mutex
	w      interface{ Write([]byte) (int, error) }
	closed bool
}

func (i *inputWriter) write(text string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.closed {
		return ErrInputClosed
	}
	if _, err := i.w.Write([]byte(text)); err != nil {
		return err
	}
	return nil
}

func (i *inputWriter) close() {
	i.mu.Lock()
	i.closed = true
	i.mu.Unlock()
}
