//go:build !windows

package process

import (
	"os/exec"
	"syscall"
)

// setProcAttr puts the child in its own process group so Kill can take the
// whole tree down, not just the immediate child.
func setProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// killProcess terminates the child's process group, falling back to the
// process itself when no group exists.
func killProcess(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	if err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL); err != nil {
		_ = cmd.Process.Kill() //nolint:errcheck // best-effort fallback
	}
}
