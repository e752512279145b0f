package executil

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// Command describes a single external invocation.
type Command struct {
	// Name is the executable to run, resolved via PATH unless absolute.
	Name string
	// Args are the command arguments.
	Args []string
	// Dir is the working directory; empty means the caller's.
	Dir string
	// Env holds extra environment entries appended to the parent environment.
	Env []string
}

// Runner abstracts command execution so collaborators can be substituted in tests.
type Runner interface {
	// Run executes the command, blocking until it exits,
	// and returns its combined output.
	Run(ctx context.Context, cmd Command) ([]byte, error)
}

// ExecRunner runs commands on the host through os/exec.
type ExecRunner struct {
	// Timeout bounds each invocation; zero means no bound beyond ctx.
	Timeout time.Duration
}

// NewExecRunner returns a runner with the provided per-call timeout.
func NewExecRunner(timeout time.Duration) *ExecRunner {
	return &ExecRunner{Timeout: timeout}
}

// Run executes the command and returns its combined stdout/stderr.
// A non-zero exit surfaces as an error wrapping exec.ExitError.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) ([]byte, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	execCmd := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	execCmd.Dir = cmd.Dir

	if len(cmd.Env) > 0 {
		execCmd.Env = append(os.Environ(), cmd.Env...)
	}

	output, err := execCmd.CombinedOutput()
	if err != nil {
		return output, fmt.Errorf("%s: %w", cmd.Name, err)
	}

	return output, nil
}
