package publish

import (
	"bytes"
	"context"
	"os/exec"

	"github.com/rs/zerolog/log"
)

// Runner executes an external command in dir and returns its stdout.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) (string, error)
}

// ExecRunner runs commands as child processes.
type ExecRunner struct{}

// Run implements Runner. A non-zero exit is a *CommandError carrying stderr.
func (ExecRunner) Run(ctx context.Context, dir, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Debug().Str("dir", dir).Str("cmd", name).Strs("args", args).Msg("running command")

	if err := cmd.Run(); err != nil {
		return stdout.String(), &CommandError{
			Command: append([]string{name}, args...),
			Stderr:  stderr.String(),
			Cause:   err,
		}
	}
	return stdout.String(), nil
}
