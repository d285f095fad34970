package installer

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// copyFiles mirrors the payload tree onto the target root, creating parent
// directories as needed and overwriting existing files. An absent payload
// tree is a no-op. This is the point of no return for a package's on-disk
// state: it runs only after backup and preinstall succeed, and its failures
// are surfaced without rollback. Returns the relative paths deployed, for
// registry bookkeeping.
func (inst *Installer) copyFiles(srcDir, targetRoot string) ([]string, error) {
	if _, err := os.Stat(srcDir); os.IsNotExist(err) {
		return nil, nil
	}

	inst.emitLog("Copying files...")

	var deployed []string
	err := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}

		dst := filepath.Join(targetRoot, rel)
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			return err
		}
		if err := copyFile(path, dst); err != nil {
			return err
		}

		deployed = append(deployed, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to copy files: %w", err)
	}

	return deployed, nil
}

// copyFile copies src to dst, preserving the source file's permission bits.
func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	// O_CREATE applies the mode only to new files; an overwritten file keeps
	// its old permissions unless reset explicitly.
	return os.Chmod(dst, info.Mode().Perm())
}
