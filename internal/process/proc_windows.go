//go:build windows

package process

import "os/exec"

func setProcAttr(_ *exec.Cmd) {}

func killProcess(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	_ = cmd.Process.Kill() //nolint:errcheck // best-effort termination
}
