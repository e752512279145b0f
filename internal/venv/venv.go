package venv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/oshokin/sunrise-deploy/internal/executil"
	"github.com/oshokin/sunrise-deploy/internal/logger"
)

var (
	// errNotADirectory is returned when the environment root is not a directory.
	errNotADirectory = errors.New("virtual environment path is not a directory")
	// errNoInstaller is returned when the environment has no pip executable.
	errNoInstaller = errors.New("virtual environment has no package installer")
	// errReleased is returned when an environment is used after Release.
	errReleased = errors.New("virtual environment already released")
)

// Env is an acquired virtual environment. Activation is expressed as
// environment injection on child processes, so releasing the Env can never
// leak activation state into the parent process.
type Env struct {
	root     string
	released bool
}

// Acquire validates the virtual environment layout and activates it for the
// scope of the returned Env. A failed acquisition has no side effects.
func Acquire(ctx context.Context, root string) (*Env, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("virtual environment: %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", root, errNotADirectory)
	}

	env := &Env{root: filepath.Clean(root)}
	if _, err = os.Stat(env.installerPath()); err != nil {
		return nil, fmt.Errorf("%s: %w", root, errNoInstaller)
	}

	logger.InfoKV(ctx, "Activated virtual environment", "path", env.root)

	return env, nil
}

// Release deactivates the environment. It is idempotent and must run on
// every exit path, success or failure; callers defer it right after Acquire.
func (e *Env) Release(ctx context.Context) {
	if e == nil || e.released {
		return
	}

	e.released = true

	logger.InfoKV(ctx, "Deactivated virtual environment", "path", e.root)
}

// Path returns the environment root directory.
func (e *Env) Path() string {
	return e.root
}

// InstallRequirements runs the environment's package installer against the
// manifest. The child process sees the activated environment through
// VIRTUAL_ENV and a PATH whose head is the environment's binary directory.
func (e *Env) InstallRequirements(ctx context.Context, runner executil.Runner, manifestPath string) error {
	if e.released {
		return errReleased
	}

	output, err := runner.Run(ctx, executil.Command{
		Name: e.installerPath(),
		Args: []string{"install", "-r", manifestPath},
		Dir:  filepath.Dir(manifestPath),
		Env:  e.activationEnv(),
	})
	if err != nil {
		logger.ErrorKV(ctx, "Package installer failed", "output", strings.TrimSpace(string(output)))
		return fmt.Errorf("install requirements: %w", err)
	}

	logger.InfoKV(ctx, "Dependencies installed", "manifest", manifestPath)

	return nil
}

// activationEnv returns the environment entries equivalent to sourcing the
// environment's activate script.
func (e *Env) activationEnv() []string {
	return []string{
		"VIRTUAL_ENV=" + e.root,
		"PATH=" + e.binDir() + string(os.PathListSeparator) + os.Getenv("PATH"),
	}
}

// installerPath returns the pip executable inside the environment.
func (e *Env) installerPath() string {
	return filepath.Join(e.binDir(), "pip"+executableExtension())
}

// binDir returns the environment's binary directory for the current platform.
func (e *Env) binDir() string {
	if isWindows() {
		return filepath.Join(e.root, "Scripts")
	}

	return filepath.Join(e.root, "bin")
}

// executableExtension returns ".exe" on Windows and "" elsewhere.
func executableExtension() string {
	if isWindows() {
		return ".exe"
	}

	return ""
}

func isWindows() bool {
	return strings.Contains(strings.ToLower(runtime.GOOS), "windows")
}
