package app

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nuros-linux/apg/internal/apg"
)

var infoCmd = &cobra.Command{
	Use:   "info <package.apg>",
	Short: "Show package metadata without installing",
	Long: `Extract a package into a temporary workspace and print its metadata:
name, version, declared dependencies, checksum coverage, payload size and
lifecycle scripts. Nothing is installed and the workspace is removed
afterwards.

Examples:
  apg info demo-1.0.apg`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	path := args[0]

	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("failed to read package: %w", err)
	}

	pkg := apg.New(path)
	defer pkg.Cleanup()

	if _, err := pkg.Extract(); err != nil {
		return err
	}

	fmt.Printf("Package:  %s\n", pkg.Metadata.Name)
	fmt.Printf("Version:  %s\n", pkg.Metadata.Version)
	fmt.Printf("Archive:  %s\n", filepath.Base(path))

	if len(pkg.Metadata.Dependencies) == 0 {
		fmt.Println("Depends:  (none)")
	} else {
		fmt.Println("Depends:")
		for _, dep := range pkg.Metadata.Dependencies {
			fmt.Printf("  - %s\n", dep)
		}
	}

	files, size := countPayload(pkg.DataDir())
	fmt.Printf("Payload:  %d file(s), %s\n", files, formatSize(size))
	fmt.Printf("Checksums: %d entr(ies)\n", len(pkg.MD5Sums))

	for _, script := range []string{"preinstall", "postinstall"} {
		if _, err := os.Stat(pkg.ScriptPath(script)); err == nil {
			fmt.Printf("Script:   %s\n", script)
		}
	}

	return nil
}

// countPayload walks the payload tree and returns the number of regular
// files and their total size in bytes.
func countPayload(dataDir string) (int, int64) {
	var count int
	var size int64

	filepath.WalkDir(dataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.Type().IsRegular() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			count++
			size += info.Size()
		}
		return nil
	})

	return count, size
}

// formatSize renders a byte count in human-readable form.
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
