//go:build windows

package process

// PtySupported reports whether the PTY-backed strategy is available.
func PtySupported() bool {
	return false
}

// StartPty always fails on Windows; callers fall back to StartPipe.
func StartPty(_ []string, _ string) (Handle, error) {
	return nil, ErrPtyUnsupported
}
