package installer

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/nuros-linux/apg/internal/apg"
)

// verifyChecksums recomputes the md5 digest of every file listed in the
// package's checksum manifest and compares it against the recorded value.
// An empty manifest succeeds trivially. Verification stops at the first
// missing file or mismatch, since any single one invalidates the package.
// The digest detects corruption, not tampering.
func (inst *Installer) verifyChecksums(pkg *apg.Package) error {
	if len(pkg.MD5Sums) == 0 {
		return nil
	}

	inst.emitLog("Verifying package checksums...")

	// Stable order for deterministic failure reporting.
	paths := make([]string, 0, len(pkg.MD5Sums))
	for rel := range pkg.MD5Sums {
		paths = append(paths, rel)
	}
	sort.Strings(paths)

	for _, rel := range paths {
		full := filepath.Join(pkg.Workspace, rel)
		if _, err := os.Stat(full); os.IsNotExist(err) {
			return &apg.ValidationError{Reason: fmt.Sprintf("file not found: %s", rel)}
		}

		got, err := fileMD5(full)
		if err != nil {
			return fmt.Errorf("failed to hash %s: %w", rel, err)
		}

		if got != pkg.MD5Sums[rel] {
			return &apg.ValidationError{Reason: fmt.Sprintf("checksum mismatch for %s", rel)}
		}
	}

	return nil
}

// fileMD5 returns the hex md5 digest of the file's content.
func fileMD5(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
