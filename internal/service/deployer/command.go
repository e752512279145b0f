package deployer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oshokin/sunrise-deploy/internal/config"
	domain "github.com/oshokin/sunrise-deploy/internal/domain/deploy"
	"github.com/oshokin/sunrise-deploy/internal/executil"
	"github.com/oshokin/sunrise-deploy/internal/logger"
	"github.com/oshokin/sunrise-deploy/internal/repository/record"
	"github.com/oshokin/sunrise-deploy/internal/systemd"
	"github.com/oshokin/sunrise-deploy/internal/vcs"
	"github.com/oshokin/sunrise-deploy/internal/venv"
)

var (
	// ErrDirectoryNotFound reports a missing or inaccessible project directory.
	ErrDirectoryNotFound = errors.New("project directory not found")
	// ErrSync reports a failure to bring the working tree to the branch tip.
	ErrSync = errors.New("branch sync failed")
	// ErrDependencyInstall reports a failed dependency installation.
	ErrDependencyInstall = errors.New("dependency installation failed")
	// ErrServiceRestart reports a failed restart of the bot's service unit.
	ErrServiceRestart = errors.New("service restart failed")

	errDeployerAlreadyRunning = errors.New("the deployer is already running")
)

// Options are inputs accepted by the deployer entry point.
type Options struct {
	// ConfigPath is the optional path to the settings YAML file.
	ConfigPath string
	// Runner optionally overrides how external commands are executed.
	// When nil, commands run on the host with the configured timeout.
	Runner executil.Runner
}

// runner holds the state and collaborators for a single deployment run.
// It is intentionally unexported—call Run(ctx, Options) from callers.
type runner struct {
	cfg           *config.Config    // Deployment settings loaded from YAML.
	exec          executil.Runner   // External command execution.
	units         *systemd.Manager  // Service manager wrapper.
	records       record.Repository // Audit record of the last run.
	result        *domain.Record    // Outcome being built during the run.
	markerCreated bool              // Whether the deploy marker needs removal.
}

// Run executes the deployment lifecycle and is the public entry point for the CLI.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "sunrise-deploy")

	d, err := newRunner(ctx, opts)
	if err != nil {
		return err
	}

	defer d.cleanup(ctx)

	if err = d.Run(ctx); err != nil {
		d.result.Failure = err.Error()

		logger.ErrorKV(ctx, "Deployment failed", "error", err)

		return err
	}

	d.result.Succeeded = true

	logger.Info(ctx, "Deployment completed")

	return nil
}

// newRunner loads settings and wires collaborators for one run.
func newRunner(ctx context.Context, opts *Options) (*runner, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	execRunner := opts.Runner
	if execRunner == nil {
		execRunner = executil.NewExecRunner(cfg.CommandTimeout)
	}

	actor, err := domain.DetectActor()
	if err != nil {
		logger.Warnf(ctx, "Could not detect deploying user: %v", err)
	}

	return &runner{
		cfg:     cfg,
		exec:    execRunner,
		units:   systemd.NewManager(execRunner),
		records: record.NewFileRepository(filepath.Join(cfg.ProjectDirectory, record.DefaultRecordFilename)),
		result: &domain.Record{
			Actor:  actor,
			Branch: cfg.Branch,
		},
	}, nil
}

// Run executes the deployment workflow in strict order,
// aborting on the first failed step:
// 1) Resolve the project directory and take the deploy marker.
// 2) Sync the working tree to the branch tip.
// 3) Check for a dependency manifest.
// 4) Install dependencies inside the virtual environment (when a manifest exists).
// 5) Restart the service unit.
// 6) Report the unit status (best effort).
func (d *runner) Run(ctx context.Context) error {
	if err := d.resolveProjectDirectory(ctx); err != nil {
		return err
	}

	if err := d.acquireMarker(ctx); err != nil {
		return err
	}

	if err := d.syncBranch(ctx); err != nil {
		return err
	}

	manifestPresent, err := d.checkManifest(ctx)
	if err != nil {
		return err
	}

	if manifestPresent {
		if err = d.installDependencies(ctx); err != nil {
			return err
		}
	}

	if err = d.restartService(ctx); err != nil {
		return err
	}

	// The run's outcome is sealed: status reporting never changes it.
	d.reportStatus(ctx)

	return nil
}

// resolveProjectDirectory verifies the configured checkout exists before any
// other step touches it.
func (d *runner) resolveProjectDirectory(ctx context.Context) error {
	dir := d.cfg.ProjectDirectory

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%s: %w", dir, ErrDirectoryNotFound)
	}

	logger.InfoKV(ctx, "Deploying project", "path", dir, "branch", d.cfg.Branch)

	return nil
}

// acquireMarker takes the single-run marker inside the project directory.
func (d *runner) acquireMarker(ctx context.Context) error {
	markerPath := MarkerPath(d.cfg.ProjectDirectory)
	if IsDeployerRunningNow(ctx, markerPath) {
		return errDeployerAlreadyRunning
	}

	marker, err := os.Create(markerPath)
	if err != nil {
		return fmt.Errorf("create deploy marker: %w", err)
	}

	d.markerCreated = true

	return marker.Close()
}

// syncBranch brings the working tree to the tip of the configured branch.
func (d *runner) syncBranch(ctx context.Context) error {
	logger.Info(ctx, "Syncing working tree to the branch tip")

	result, err := vcs.Sync(ctx, vcs.SyncOptions{
		Directory: d.cfg.ProjectDirectory,
		Remote:    d.cfg.Remote,
		Branch:    d.cfg.Branch,
	})
	if err != nil {
		return fmt.Errorf("%v: %w", err, ErrSync)
	}

	d.result.Head = result.Head
	d.result.CodeUpdated = result.Updated

	return nil
}

// checkManifest reports whether the dependency manifest is present.
// Absence is a notice, not a failure.
func (d *runner) checkManifest(ctx context.Context) (bool, error) {
	manifestPath := d.cfg.ManifestPath()

	if _, err := os.Stat(manifestPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.InfoKV(ctx, "No dependency manifest, skipping installation", "manifest", manifestPath)
			return false, nil
		}

		return false, fmt.Errorf("check manifest: %w", err)
	}

	return true, nil
}

// installDependencies acquires the virtual environment for the scope of this
// step and runs the package installer against the manifest. The environment
// is released on every exit path before any failure propagates.
func (d *runner) installDependencies(ctx context.Context) error {
	logger.Info(ctx, "Installing dependencies from the manifest")

	env, err := venv.Acquire(ctx, d.cfg.ResolvedVenvPath())
	if err != nil {
		return fmt.Errorf("%v: %w", err, ErrDependencyInstall)
	}

	defer env.Release(ctx)

	if err = env.InstallRequirements(ctx, d.exec, d.cfg.ManifestPath()); err != nil {
		return fmt.Errorf("%v: %w", err, ErrDependencyInstall)
	}

	d.result.DependenciesInstalled = true

	return nil
}

// restartService restarts the bot's service unit.
func (d *runner) restartService(ctx context.Context) error {
	logger.InfoKV(ctx, "Restarting service", "unit", d.cfg.ServiceName)

	if err := d.units.Restart(ctx, d.cfg.ServiceName); err != nil {
		return fmt.Errorf("%v: %w", err, ErrServiceRestart)
	}

	return nil
}

// reportStatus prints the unit's current status. Failure here is logged and
// never affects the run's outcome.
func (d *runner) reportStatus(ctx context.Context) {
	status, err := d.units.Status(ctx, d.cfg.ServiceName)
	if err != nil {
		logger.WarnKV(ctx, "Could not report service status", "unit", d.cfg.ServiceName, "error", err)
	}

	if status != "" {
		logger.Infof(ctx, "Service status:\n%s", status)
	}
}

// cleanup removes the deploy marker and persists the run's audit record.
// A run that never acquired the marker does not own the project directory
// and leaves no record behind.
func (d *runner) cleanup(ctx context.Context) {
	if d.markerCreated {
		if err := os.Remove(MarkerPath(d.cfg.ProjectDirectory)); err != nil {
			logger.Warnf(ctx, "Could not remove deploy marker: %v", err)
		}

		d.result.Timestamp = time.Now().UTC()

		if err := d.records.Save(ctx, d.result); err != nil {
			logger.Warnf(ctx, "Could not persist deployment record: %v", err)
		}
	}

	logger.Info(ctx, "The deployer has been stopped")
}
