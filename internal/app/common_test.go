package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAcquireInstallLock(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "install.lock")

	release, err := acquireInstallLock(lockPath)
	if err != nil {
		t.Fatalf("acquireInstallLock: %v", err)
	}

	// A second acquisition by a live holder (this process) is refused.
	if _, err := acquireInstallLock(lockPath); err == nil {
		t.Fatal("expected error while lock is held")
	} else if !strings.Contains(err.Error(), "in progress") {
		t.Errorf("error = %v", err)
	}

	release()
	if _, err := os.Stat(lockPath); !os.IsNotExist(err) {
		t.Fatal("lock file not removed on release")
	}

	// Reacquire after release.
	release, err = acquireInstallLock(lockPath)
	if err != nil {
		t.Fatalf("reacquire: %v", err)
	}
	release()
}

func TestAcquireInstallLockReplacesStale(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "install.lock")

	// A lock file without a valid PID belongs to no live process.
	if err := os.WriteFile(lockPath, []byte("garbage\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	release, err := acquireInstallLock(lockPath)
	if err != nil {
		t.Fatalf("acquireInstallLock over stale lock: %v", err)
	}
	release()
}

func TestValidatePackages(t *testing.T) {
	dir := t.TempDir()

	valid := filepath.Join(dir, "demo-1.0.apg")
	if err := os.WriteFile(valid, []byte("bytes"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	wrongExt := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(wrongExt, []byte("bytes"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	subdir := filepath.Join(dir, "dir.apg")
	if err := os.Mkdir(subdir, 0755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}

	got := validatePackages([]string{
		valid,
		wrongExt,
		subdir,
		filepath.Join(dir, "missing.apg"),
	})

	if len(got) != 1 || got[0] != valid {
		t.Errorf("validatePackages = %v, want [%s]", got, valid)
	}
}

func TestGetStateDirHonorsFlag(t *testing.T) {
	orig := stateDir
	t.Cleanup(func() { stateDir = orig })

	stateDir = filepath.Join(t.TempDir(), "state")
	got, err := getStateDir()
	if err != nil {
		t.Fatalf("getStateDir: %v", err)
	}
	if got != stateDir {
		t.Errorf("getStateDir = %q, want %q", got, stateDir)
	}

	info, err := os.Stat(got)
	if err != nil || !info.IsDir() {
		t.Errorf("state dir not created: %v", err)
	}
}

func TestDerivedPaths(t *testing.T) {
	origState, origDB, origBackup := stateDir, dbPath, backupDir
	t.Cleanup(func() { stateDir, dbPath, backupDir = origState, origDB, origBackup })

	stateDir = t.TempDir()
	dbPath = ""
	backupDir = ""

	db, err := getDBPath()
	if err != nil {
		t.Fatalf("getDBPath: %v", err)
	}
	if db != filepath.Join(stateDir, "packages.db") {
		t.Errorf("db path = %q", db)
	}

	backups, err := getBackupDir()
	if err != nil {
		t.Fatalf("getBackupDir: %v", err)
	}
	if backups != filepath.Join(stateDir, "backups") {
		t.Errorf("backup dir = %q", backups)
	}

	drop, err := getDropDir()
	if err != nil {
		t.Fatalf("getDropDir: %v", err)
	}
	if drop != filepath.Join(stateDir, "incoming") {
		t.Errorf("drop dir = %q", drop)
	}

	// Explicit flags win over derived defaults.
	dbPath = "/custom/apg.db"
	if got, _ := getDBPath(); got != "/custom/apg.db" {
		t.Errorf("db path = %q, want flag value", got)
	}
}
