package installer

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/nuros-linux/apg/internal/apg"
	"github.com/nuros-linux/apg/internal/archive"
)

// createBackup archives every live file under the system root that the
// package's payload would overwrite, before anything is touched. The archive
// is written even when nothing would be overwritten, so each install attempt
// leaves a trace. Backups are never restored automatically; they exist for
// operator recovery.
func (inst *Installer) createBackup(pkg *apg.Package) (string, error) {
	if err := os.MkdirAll(inst.cfg.BackupDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	backupPath := filepath.Join(inst.cfg.BackupDir,
		fmt.Sprintf("%s_%s.tar.xz", pkg.Metadata.Name, timestamp))

	inst.emitLog("Creating backup...")

	w, err := archive.NewWriter(backupPath)
	if err != nil {
		return "", err
	}

	if err := inst.backupOverwrites(w, pkg.DataDir()); err != nil {
		w.Close()
		os.Remove(backupPath)
		return "", err
	}

	if err := w.Close(); err != nil {
		return "", err
	}

	return backupPath, nil
}

// backupOverwrites walks the payload tree and adds to the archive every
// target-root file that a payload file would replace. An absent payload tree
// leaves the archive empty.
func (inst *Installer) backupOverwrites(w *archive.Writer, dataDir string) error {
	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		return nil
	}

	return filepath.WalkDir(dataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(dataDir, path)
		if err != nil {
			return err
		}

		live := filepath.Join(inst.cfg.SystemRoot, rel)
		info, err := os.Stat(live)
		if err != nil || !info.Mode().IsRegular() {
			return nil
		}

		if err := w.AddFile(live, rel); err != nil {
			return fmt.Errorf("failed to back up %s: %w", rel, err)
		}
		return nil
	})
}
