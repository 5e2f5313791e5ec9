//go:build !windows

package process

import (
	"os"
	"os/exec"
	"sync"

	"github.com/creack/pty"
)

// PtySupported reports whether the PTY-backed strategy is available.
func PtySupported() bool {
	return true
}

// ptyHandle runs a child process behind a pseudo-terminal. Stdout and stderr
// arrive merged in terminal order through the PTY master, and input written
// to the handle reaches the process as terminal input, so interactive
// control sequences work.
type ptyHandle struct {
	procState

	cmd  *exec.Cmd
	ptmx *os.File

	writeMu  sync.Mutex
	killOnce sync.Once
}

// StartPty launches a command attached to a new pseudo-terminal.
// A failure to start is reported as *LaunchError.
func StartPty(command []string, workdir string) (Handle, error) {
	if len(command) == 0 {
		return nil, ErrEmptyCommand
	}

	// G204: launching operator-configured scripts is the whole point here;
	// the config layer owns validation.
	cmd := exec.Command(command[0], command[1:]...) //nolint:gosec // Intentional subprocess execution
	cmd.Dir = workdir

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return nil, &LaunchError{Path: command[0], Err: err}
	}

	h := &ptyHandle{
		procState: newProcState(),
		cmd:       cmd,
		ptmx:      ptmx,
	}

	var pumps sync.WaitGroup
	pumps.Add(1)
	go pump(ptmx, h.out, &pumps)

	go func() {
		// The pump ends with EIO once the child closes its side of the PTY.
		pumps.Wait()
		_ = cmd.Wait()   //nolint:errcheck // exit status comes from ProcessState
		_ = ptmx.Close() //nolint:errcheck // best-effort cleanup
		h.finish(cmd.ProcessState.ExitCode())
	}()

	return h, nil
}

func (h *ptyHandle) WriteInput(text string) error {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	if h.Finished() {
		return ErrInputClosed
	}
	if _, err := h.ptmx.Write([]byte(text)); err != nil {
		return err
	}
	return nil
}

func (h *ptyHandle) Kill() {
	if h.Finished() {
		return
	}
	h.killOnce.Do(func() {
		killProcess(h.cmd)
	})
}
