package executil

import (
	"context"
	"os/exec"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestExecRunner_Run executes a trivial command and captures its output.
func TestExecRunner_Run(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("POSIX shell utilities are not available")
	}

	runner := NewExecRunner(10 * time.Second)

	output, err := runner.Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", "echo deployed"},
	})
	require.NoError(t, err)
	require.Contains(t, string(output), "deployed")
}

// TestExecRunner_Run_NonZeroExit surfaces the exit error and the output.
func TestExecRunner_Run_NonZeroExit(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("POSIX shell utilities are not available")
	}

	runner := NewExecRunner(10 * time.Second)

	output, err := runner.Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", "echo broken >&2; exit 3"},
	})
	require.Error(t, err)

	var exitErr *exec.ExitError

	require.ErrorAs(t, err, &exitErr)
	require.Contains(t, string(output), "broken")
}

// TestExecRunner_Run_Env passes extra environment entries to the child.
func TestExecRunner_Run_Env(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("POSIX shell utilities are not available")
	}

	runner := NewExecRunner(10 * time.Second)

	output, err := runner.Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", "echo $DEPLOY_MARKER"},
		Env:  []string{"DEPLOY_MARKER=sunrise"},
	})
	require.NoError(t, err)
	require.Contains(t, string(output), "sunrise")
}
