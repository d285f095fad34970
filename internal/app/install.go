package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nuros-linux/apg/internal/installer"
	"github.com/nuros-linux/apg/internal/logging"
	"github.com/nuros-linux/apg/internal/output"
	"github.com/nuros-linux/apg/internal/store"
)

var installCmd = &cobra.Command{
	Use:   "install <package.apg> [package.apg...]",
	Short: "Install one or more APG packages",
	Long: `Install APG packages onto the target root.

Each package goes through the full pipeline: extraction, md5 checksum
verification, dependency report, backup of files about to be overwritten,
preinstall script, payload deployment, postinstall script, and registry
registration. Packages install strictly in the order given; a failing
package is recorded and skipped, the rest of the batch continues.

Installing to the real root ("/") requires root privileges. Use --root to
install into a staging or test root as an unprivileged user.

Examples:
  sudo apg install demo-1.0.apg
  sudo apg install base-2.1.apg tools-0.9.apg
  apg install --root /tmp/stage demo-1.0.apg`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInstall,
}

func runInstall(cmd *cobra.Command, args []string) error {
	packages := validatePackages(args)
	if len(packages) == 0 {
		return fmt.Errorf("no valid packages to install")
	}

	if targetRoot == "/" && os.Geteuid() != 0 {
		return fmt.Errorf("installing to / requires root privileges (or use --root)")
	}

	state, err := getStateDir()
	if err != nil {
		return err
	}

	release, err := acquireInstallLock(filepath.Join(state, "install.lock"))
	if err != nil {
		return err
	}
	defer release()

	backups, err := getBackupDir()
	if err != nil {
		return err
	}

	dbFile, err := getDBPath()
	if err != nil {
		return err
	}

	st, err := store.New(dbFile)
	if err != nil {
		return fmt.Errorf("failed to open package database: %w", err)
	}
	defer st.Close()

	if err := st.CreateSchema(); err != nil {
		return fmt.Errorf("failed to initialize package database: %w", err)
	}

	registry := installer.NewStoreRegistry(st)

	inst := installer.New(installer.Config{
		SystemRoot: targetRoot,
		BackupDir:  backups,
	})
	inst.SetRegistry(registry)
	inst.SetLogger(logging.GetLogger("installer"))

	events, done := inst.InstallBatch(packages)

	bar := output.NewProgress(fmt.Sprintf("%d package(s)", len(packages)))
	for ev := range events {
		switch ev.Kind {
		case installer.EventProgress:
			bar.SetPercent(ev.Percent)
		case installer.EventLog:
			fmt.Println(ev.Message)
		case installer.EventBatchFailed:
			fmt.Println(ev.Message)
		}
	}
	result := <-done
	bar.Finish()

	// Failed attempts go into the history log so `apg history` shows them.
	for _, f := range result.Failures {
		if err := registry.RecordFailure(f.Package, f.Detail); err != nil {
			lg := logging.GetLogger("install")
			lg.Warn().Err(err).
				Str("package", f.Package).Msg("failed to record install failure")
		}
	}

	fmt.Printf("\nInstalled %d/%d package(s)\n", result.Succeeded, result.Attempted)

	if !result.OK() {
		for _, f := range result.Failures {
			fmt.Printf("  ✗ %s: %s\n", filepath.Base(f.Package), f.Detail)
		}
		return fmt.Errorf("%d package(s) failed to install", len(result.Failures))
	}

	return nil
}

// validatePackages filters the argument list down to existing .apg files,
// printing a warning for each argument it skips.
func validatePackages(args []string) []string {
	var valid []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: skipping %s: file not found\n", arg)
			continue
		}
		if info.IsDir() {
			fmt.Fprintf(os.Stderr, "Warning: skipping %s: is a directory\n", arg)
			continue
		}
		if !strings.HasSuffix(arg, ".apg") {
			fmt.Fprintf(os.Stderr, "Warning: skipping %s: not an .apg package\n", arg)
			continue
		}
		valid = append(valid, arg)
	}

	return valid
}
