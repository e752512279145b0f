package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestValidate checks required fields and defaulting behavior for settings.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Missing project directory.
	cfg := new(Config)

	err := Validate(cfg)
	require.Error(t, err)

	// Missing branch.
	cfg = &Config{
		ProjectDirectory: "/opt/sunrise-bot",
	}

	err = Validate(cfg)
	require.Error(t, err)

	// Missing service.
	cfg = &Config{
		ProjectDirectory: "/opt/sunrise-bot",
		Branch:           "main",
	}

	err = Validate(cfg)
	require.Error(t, err)

	// Minimal valid settings get the remaining defaults filled in.
	cfg = &Config{
		ProjectDirectory: "/opt/sunrise-bot",
		Branch:           "main",
		ServiceName:      "sunrise-bot.service",
	}

	require.NoError(t, Validate(cfg))
	require.Equal(t, DefaultRemote, cfg.Remote)
	require.Equal(t, DefaultVenvPath, cfg.VenvPath)
	require.Equal(t, DefaultManifestFilename, cfg.ManifestFilename)
	require.Equal(t, DefaultCommandTimeout, cfg.CommandTimeout)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	cfg := &Config{
		ProjectDirectory: "/srv/sunrise-bot",
		Branch:           "release",
		Remote:           "upstream",
		ServiceName:      "sunrise-bot.service",
		VenvPath:         ".venv",
		ManifestFilename: "requirements.txt",
		CommandTimeout:   time.Minute,
	}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)

	// File exists.
	_, err = os.Stat(path)
	require.NoError(t, err)
}

// TestLoadMissingFileUsesDefaults verifies a missing settings file is not fatal.
func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	loaded, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default(), loaded)
}

// TestPathHelpers verifies venv and manifest path resolution.
func TestPathHelpers(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		ProjectDirectory: "/srv/sunrise-bot",
		VenvPath:         "venv",
		ManifestFilename: "requirements.txt",
	}

	require.Equal(t, filepath.Join("/srv/sunrise-bot", "venv"), cfg.ResolvedVenvPath())
	require.Equal(t, filepath.Join("/srv/sunrise-bot", "requirements.txt"), cfg.ManifestPath())

	cfg.VenvPath = "/var/venvs/sunrise"
	require.Equal(t, "/var/venvs/sunrise", cfg.ResolvedVenvPath())
}
