package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds deployment parameters shared by the sunrise-deploy binary.
type Config struct {
	// ProjectDirectory is the checkout of the bot service on this host.
	ProjectDirectory string `yaml:"project_dir"`
	// Branch is the branch whose tip the working tree is synced to.
	Branch string `yaml:"branch"`
	// Remote is the name of the remote the branch is pulled from.
	Remote string `yaml:"remote"`
	// ServiceName is the systemd unit restarted after a successful sync.
	ServiceName string `yaml:"service"`
	// VenvPath is the virtual environment directory. A relative path is
	// resolved against ProjectDirectory.
	VenvPath string `yaml:"venv_dir"`
	// ManifestFilename is the dependency manifest looked up inside
	// ProjectDirectory. Its absence skips the install step.
	ManifestFilename string `yaml:"manifest"`
	// CommandTimeout bounds each external command invocation.
	CommandTimeout time.Duration `yaml:"command_timeout"`
}

const (
	// DefaultConfigFilename is the default filename for deployment settings.
	DefaultConfigFilename = "sunrise-deploy-settings.yaml"

	// DefaultProjectDirectory is where the bot service is checked out.
	DefaultProjectDirectory = "/opt/sunrise-bot"

	// DefaultBranch is the branch deployed when none is configured.
	DefaultBranch = "main"

	// DefaultRemote is the remote pulled from when none is configured.
	DefaultRemote = "origin"

	// DefaultServiceName is the systemd unit of the bot service.
	DefaultServiceName = "sunrise-bot.service"

	// DefaultVenvPath is the virtual environment directory inside the project.
	DefaultVenvPath = "venv"

	// DefaultManifestFilename is the dependency manifest filename.
	DefaultManifestFilename = "requirements.txt"

	// DefaultCommandTimeout is the default bound for external commands.
	// Dependency installation dominates, so the bound is generous.
	DefaultCommandTimeout = 5 * time.Minute

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errProjectDirRequired is returned when the project directory is missing.
	errProjectDirRequired = errors.New("project directory must be provided")
	// errBranchRequired is returned when the branch name is missing.
	errBranchRequired = errors.New("branch must be provided")
	// errServiceRequired is returned when the service unit name is missing.
	errServiceRequired = errors.New("service name must be provided")
)

// Default returns settings matching the conventional bot host layout.
func Default() *Config {
	return &Config{
		ProjectDirectory: DefaultProjectDirectory,
		Branch:           DefaultBranch,
		Remote:           DefaultRemote,
		ServiceName:      DefaultServiceName,
		VenvPath:         DefaultVenvPath,
		ManifestFilename: DefaultManifestFilename,
		CommandTimeout:   DefaultCommandTimeout,
	}
}

// Load reads configuration from the provided path and validates essential fields.
// A missing file is not an error: the defaults describe a stock installation.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and fills defaults.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.ProjectDirectory == "" {
		return errProjectDirRequired
	}

	if cfg.Branch == "" {
		return errBranchRequired
	}

	if cfg.ServiceName == "" {
		return errServiceRequired
	}

	if cfg.Remote == "" {
		cfg.Remote = DefaultRemote
	}

	if cfg.VenvPath == "" {
		cfg.VenvPath = DefaultVenvPath
	}

	if cfg.ManifestFilename == "" {
		cfg.ManifestFilename = DefaultManifestFilename
	}

	if cfg.CommandTimeout <= 0 {
		cfg.CommandTimeout = DefaultCommandTimeout
	}

	return nil
}

// ResolvedVenvPath returns the virtual environment directory as an absolute
// path, resolving relative values against the project directory.
func (c *Config) ResolvedVenvPath() string {
	if filepath.IsAbs(c.VenvPath) {
		return filepath.Clean(c.VenvPath)
	}

	return filepath.Join(c.ProjectDirectory, c.VenvPath)
}

// ManifestPath returns the absolute path of the dependency manifest.
func (c *Config) ManifestPath() string {
	return filepath.Join(c.ProjectDirectory, c.ManifestFilename)
}
