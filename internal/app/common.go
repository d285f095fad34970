package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// getStateDir returns the apg state directory, creating it if necessary.
// Defaults to /var/lib/apg; falls back to ~/.apg when the system location
// is not writable (e.g. running unprivileged against a test root).
func getStateDir() (string, error) {
	if stateDir != "" {
		if err := os.MkdirAll(stateDir, 0755); err != nil {
			return "", fmt.Errorf("failed to create state directory: %w", err)
		}
		return stateDir, nil
	}

	system := "/var/lib/apg"
	if err := os.MkdirAll(system, 0755); err == nil {
		if f, err := os.CreateTemp(system, ".apg-probe-"); err == nil {
			f.Close()
			os.Remove(f.Name())
			return system, nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	dir := filepath.Join(home, ".apg")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create state directory: %w", err)
	}

	return dir, nil
}

// getDBPath returns the package database path.
func getDBPath() (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}

	dir, err := getStateDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, "packages.db"), nil
}

// getBackupDir returns the directory for pre-install backups.
func getBackupDir() (string, error) {
	if backupDir != "" {
		return backupDir, nil
	}

	dir, err := getStateDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, "backups"), nil
}

// getDropDir returns the default drop directory watched by the daemon.
func getDropDir() (string, error) {
	dir, err := getStateDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, "incoming"), nil
}

// getLogFilePath returns the CLI log file path, or "" when the state
// directory cannot be resolved (logging falls back to console only).
func getLogFilePath() string {
	dir, err := getStateDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "apg.log")
}

// acquireInstallLock takes the exclusive install lock. Installs assume
// single-writer access to the system root, so a second apg process is
// refused while the lock is held. Locks left behind by dead processes
// are detected via a signal-0 probe and replaced.
func acquireInstallLock(path string) (release func(), err error) {
	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err == nil {
			fmt.Fprintf(f, "%d\n", os.Getpid())
			f.Close()
			return func() { os.Remove(path) }, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to create lock file: %w", err)
		}

		data, readErr := os.ReadFile(path)
		if readErr == nil {
			pid, convErr := strconv.Atoi(strings.TrimSpace(string(data)))
			if convErr == nil && pid > 0 {
				if proc, findErr := os.FindProcess(pid); findErr == nil {
					if proc.Signal(syscall.Signal(0)) == nil {
						return nil, fmt.Errorf("another install is in progress (PID %d)", pid)
					}
				}
			}
		}

		// Stale lock: holder is gone, remove and retry once.
		os.Remove(path)
	}

	return nil, fmt.Errorf("failed to acquire install lock: %s", path)
}
