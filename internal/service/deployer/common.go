package deployer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/oshokin/sunrise-deploy/internal/logger"
)

const (
	// MarkerFilename marks that a deployment is running right now to avoid
	// two runs fighting over one working tree.
	MarkerFilename = "sunrise-deploy-marker.bin"

	// baseDeployerExecutable is the deployer binary name without extension.
	baseDeployerExecutable = "sunrise-deploy"

	// markerLifetime is the period after which a stale deploy marker is ignored.
	// It comfortably exceeds the default command timeout.
	markerLifetime = 15 * time.Minute
)

// MarkerPath returns the marker location inside the project directory.
func MarkerPath(projectDirectory string) string {
	return filepath.Join(projectDirectory, MarkerFilename)
}

// IsDeployerRunningNow checks presence of a marker file and attempts recovery if it looks stale.
func IsDeployerRunningNow(ctx context.Context, markerPath string) bool {
	logger.Info(ctx, "Checking for the presence of a deploy marker")

	fileInfo, err := os.Stat(markerPath)
	if err == nil {
		if time.Since(fileInfo.ModTime()) <= markerLifetime {
			return true
		}

		logger.Info(ctx, "The deploy marker is too old, attempting cleanup")

		if err = terminateProcessByName(deployerExecutable()); err != nil {
			return true
		}

		if err = os.Remove(markerPath); err != nil {
			return true
		}

		return false
	}

	if errors.Is(err, os.ErrNotExist) {
		logger.Info(ctx, "Deploy marker not found, continuing")
		return false
	}

	logger.Infof(ctx, "Unable to read deploy marker: %v", err)

	return false
}

// terminateProcessByName tries to kill processes with the provided executable name.
func terminateProcessByName(processName string) error {
	processList, err := ps.Processes()
	if err != nil {
		return err
	}

	thisProcessID := os.Getpid()

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if process.Executable() != processName {
			continue
		}

		var runningProcess *os.Process

		runningProcess, err = os.FindProcess(process.Pid())
		if err != nil {
			return err
		}

		if err = runningProcess.Kill(); err != nil {
			return err
		}
	}

	return nil
}

// deployerExecutable returns the platform-specific deployer binary name.
func deployerExecutable() string {
	return baseDeployerExecutable + getExecutableExtension()
}

// getExecutableExtension returns ".exe" on Windows and "" elsewhere.
func getExecutableExtension() string {
	if strings.Contains(strings.ToLower(runtime.GOOS), "windows") {
		return ".exe"
	}

	return ""
}
