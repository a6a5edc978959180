package imagemagick

import (
	"context"
	"errors"
	"os/exec"
)

// ProcessRunner runs an external command and returns its output.
type ProcessRunner interface {
	Run(ctx context.Context, path string, args []string) (stdout, stderr []byte, err error)
}

// ExecRunner implements ProcessRunner with os/exec.
type ExecRunner struct{}

// Run executes path with args. The process is killed when ctx is cancelled.
func (ExecRunner) Run(ctx context.Context, path string, args []string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, path, args...) // #nosec G204 - binary is the configured ImageMagick executable
	stdout, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return stdout, exitErr.Stderr, err
		}
		return stdout, nil, err
	}
	return stdout, nil, nil
}
