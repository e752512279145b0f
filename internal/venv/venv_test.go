package venv

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/sunrise-deploy/internal/executil"
)

// stubRunner records invocations and replays a canned error.
type stubRunner struct {
	calls  []executil.Command
	output []byte
	err    error
}

func (s *stubRunner) Run(_ context.Context, cmd executil.Command) ([]byte, error) {
	s.calls = append(s.calls, cmd)
	return s.output, s.err
}

// makeVenv lays out a minimal virtual environment under dir.
func makeVenv(t *testing.T, dir string) string {
	t.Helper()

	binDir := "bin"
	if runtime.GOOS == "windows" {
		binDir = "Scripts"
	}

	root := filepath.Join(dir, "venv")
	require.NoError(t, os.MkdirAll(filepath.Join(root, binDir), 0o755))

	pip := filepath.Join(root, binDir, "pip")
	if runtime.GOOS == "windows" {
		pip += ".exe"
	}

	require.NoError(t, os.WriteFile(pip, []byte("#!/bin/sh\n"), 0o755))

	return root
}

// TestAcquire_MissingEnvironment fails without side effects.
func TestAcquire_MissingEnvironment(t *testing.T) {
	t.Parallel()

	_, err := Acquire(context.Background(), filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
}

// TestAcquire_NoInstaller rejects directories without pip.
func TestAcquire_NoInstaller(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := Acquire(context.Background(), dir)
	require.ErrorIs(t, err, errNoInstaller)
}

// TestInstallRequirements runs pip with the activation environment injected.
func TestInstallRequirements(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	root := makeVenv(t, t.TempDir())

	env, err := Acquire(ctx, root)
	require.NoError(t, err)
	require.Equal(t, root, env.Path())

	defer env.Release(ctx)

	manifest := filepath.Join(filepath.Dir(root), "requirements.txt")
	require.NoError(t, os.WriteFile(manifest, []byte("pytz\n"), 0o600))

	runner := &stubRunner{}
	require.NoError(t, env.InstallRequirements(ctx, runner, manifest))

	require.Len(t, runner.calls, 1)

	call := runner.calls[0]
	require.Equal(t, []string{"install", "-r", manifest}, call.Args)
	require.Equal(t, filepath.Dir(manifest), call.Dir)
	require.Contains(t, call.Env, "VIRTUAL_ENV="+root)

	var pathInjected bool

	for _, entry := range call.Env {
		if strings.HasPrefix(entry, "PATH=") && strings.Contains(entry, root) {
			pathInjected = true
		}
	}

	require.True(t, pathInjected)
}

// TestInstallRequirements_Failure propagates installer errors.
func TestInstallRequirements_Failure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	root := makeVenv(t, t.TempDir())

	env, err := Acquire(ctx, root)
	require.NoError(t, err)

	defer env.Release(ctx)

	wantErr := errors.New("exit status 1")
	runner := &stubRunner{output: []byte("No matching distribution"), err: wantErr}

	err = env.InstallRequirements(ctx, runner, filepath.Join(t.TempDir(), "requirements.txt"))
	require.ErrorIs(t, err, wantErr)
}

// TestRelease_Idempotent allows double release and blocks further installs.
func TestRelease_Idempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	root := makeVenv(t, t.TempDir())

	env, err := Acquire(ctx, root)
	require.NoError(t, err)

	env.Release(ctx)
	env.Release(ctx)

	err = env.InstallRequirements(ctx, &stubRunner{}, "requirements.txt")
	require.ErrorIs(t, err, errReleased)
}
