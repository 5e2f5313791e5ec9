package alert

import (
	"fmt"

	"github.com/jmgilman/scriptdeck/internal/execution"
	"github.com/jmgilman/scriptdeck/internal/script"
)

// FailureListener raises an alert when its execution finishes with a
// non-zero exit code. Register it as a finish listener; successful
// executions stay silent.
type FailureListener struct {
	exec       *execution.Executor
	dispatcher *Dispatcher
	logName    string
}

// NewFailureListener creates a listener for one execution. logName labels
// the attached output, typically the execution's log file name.
func NewFailureListener(e *execution.Executor, d *Dispatcher, logName string) *FailureListener {
	return &FailureListener{exec: e, dispatcher: d, logName: logName}
}

// Finished inspects the exit code and dispatches a failure alert when it is
// non-zero. The attached output is the redacted view; secret parameter
// values never reach alert destinations.
func (l *FailureListener) Finished() {
	code, ok := l.exec.ExitCode()
	if !ok || code == 0 {
		return
	}

	cfg := l.exec.Config()
	a := Alert{
		Title: fmt.Sprintf("Script %s failed", cfg.Name),
		Message: fmt.Sprintf("Execution #%d of script %q (user %s) exited with code %d.\nCommand: %s",
			l.exec.ID(), cfg.Name, l.exec.Owner(), code, l.exec.SecureCommand()),
		Attachments: []Attachment{{
			Name:    l.logName,
			Content: []byte(l.exec.OutputStream(true).Text()),
		}},
	}
	l.dispatcher.Dispatch(a)
}

// DispatchLaunchFailure raises an alert for a script that could not be
// started at all.
func DispatchLaunchFailure(d *Dispatcher, cfg *script.Config, owner string, launchErr error) {
	d.Dispatch(Alert{
		Title: fmt.Sprintf("Script %s NOT STARTED", cfg.Name),
		Message: fmt.Sprintf("Script %q requested by user %s could not be started: %v",
			cfg.Name, owner, launchErr),
	})
}
