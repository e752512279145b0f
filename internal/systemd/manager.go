package systemd

import (
	"context"
	"strings"

	"github.com/oshokin/sunrise-deploy/internal/executil"
)

// systemctlExecutable is the service manager command on the host.
const systemctlExecutable = "systemctl"

// Manager restarts and inspects systemd units through systemctl.
type Manager struct {
	runner executil.Runner
}

// NewManager returns a manager running systemctl through the provided runner.
func NewManager(runner executil.Runner) *Manager {
	return &Manager{runner: runner}
}

// Restart restarts the named unit, blocking until systemctl returns.
// A non-zero exit (unit not found, permission denied) surfaces as an error
// carrying the command output.
func (m *Manager) Restart(ctx context.Context, unit string) error {
	_, err := m.runner.Run(ctx, executil.Command{
		Name: systemctlExecutable,
		Args: []string{"restart", unit},
	})

	return err
}

// Status returns the unit's current status text as printed by systemctl.
// systemctl exits non-zero for inactive units, so callers decide whether a
// failure here matters; the captured output is returned either way.
func (m *Manager) Status(ctx context.Context, unit string) (string, error) {
	output, err := m.runner.Run(ctx, executil.Command{
		Name: systemctlExecutable,
		Args: []string{"status", unit, "--no-pager"},
	})

	return strings.TrimSpace(string(output)), err
}
