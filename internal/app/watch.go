package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nuros-linux/apg/internal/installer"
	"github.com/nuros-linux/apg/internal/logging"
	"github.com/nuros-linux/apg/internal/output"
	"github.com/nuros-linux/apg/internal/store"
	"github.com/nuros-linux/apg/internal/watcher"
)

var (
	watchDaemon      bool
	watchDaemonChild bool
	watchStop        bool
	watchStatus      bool
	watchDropDir     string
	watchPIDFile     string
	watchLogFile     string

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Install packages dropped into a watched directory",
		Long: `Watch a drop directory and install every .apg package that appears
in it. Processed archives are renamed aside with a .installed or .failed
suffix. Packages already present when the watcher starts are installed
first.

Runs in the foreground by default; use --daemon to run in the background
with a PID file, and --stop to stop a running daemon.

Examples:
  apg watch
  apg watch --daemon
  apg watch --daemon --drop-dir /srv/apg/incoming
  apg watch --status
  apg watch --stop`,
		Args: cobra.NoArgs,
		RunE: runWatch,
	}
)

func init() {
	watchCmd.Flags().BoolVar(&watchDaemon, "daemon", false, "run in the background")
	watchCmd.Flags().BoolVar(&watchStop, "stop", false, "stop a running daemon")
	watchCmd.Flags().BoolVar(&watchStatus, "status", false, "report whether the daemon is running")
	watchCmd.Flags().StringVar(&watchDropDir, "drop-dir", "", "directory to watch (default: <state-dir>/incoming)")
	watchCmd.Flags().StringVar(&watchPIDFile, "pid-file", "", "daemon PID file (default: <state-dir>/watch.pid)")
	watchCmd.Flags().StringVar(&watchLogFile, "log-file", "", "daemon log file (default: <state-dir>/watch.log)")

	// Internal flag used by the re-exec'd daemon process.
	watchCmd.Flags().BoolVar(&watchDaemonChild, "daemon-child", false, "")
	watchCmd.Flags().MarkHidden("daemon-child")
}

func runWatch(cmd *cobra.Command, args []string) error {
	state, err := getStateDir()
	if err != nil {
		return err
	}

	if watchPIDFile == "" {
		watchPIDFile = filepath.Join(state, "watch.pid")
	}
	if watchLogFile == "" {
		watchLogFile = filepath.Join(state, "watch.log")
	}
	if watchDropDir == "" {
		watchDropDir, err = getDropDir()
		if err != nil {
			return err
		}
	}

	if watchStop {
		if err := watcher.StopDaemon(watchPIDFile); err != nil {
			return err
		}
		fmt.Println("Watcher daemon stopped.")
		return nil
	}

	if watchStatus {
		running, err := watcher.IsDaemonRunning(watchPIDFile)
		if err != nil {
			return err
		}
		if running {
			fmt.Println("Watcher daemon is running.")
		} else {
			fmt.Println("Watcher daemon is not running.")
		}
		return nil
	}

	if targetRoot == "/" && os.Geteuid() != 0 {
		return fmt.Errorf("watching for installs to / requires root privileges (or use --root)")
	}

	w, cleanup, err := newWatcher(state)
	if err != nil {
		return err
	}
	defer cleanup()

	switch {
	case watchDaemonChild:
		return w.RunDaemon(watchPIDFile)

	case watchDaemon:
		spinner := output.NewSpinner("Starting watcher daemon")
		spinner.Start()
		if err := w.StartDaemon(watchPIDFile, watchLogFile); err != nil {
			spinner.Stop()
			return err
		}
		spinner.StopWithMessage(fmt.Sprintf("Watcher daemon started, watching %s", watchDropDir))
		return nil

	default:
		fmt.Printf("Watching %s for packages (Ctrl-C to stop)...\n", watchDropDir)
		return w.RunDaemon(watchPIDFile)
	}
}

// newWatcher wires a Watcher to the full install pipeline: sqlite-backed
// registry, backups under the state dir, structured logging. The returned
// cleanup closes the database.
func newWatcher(state string) (*watcher.Watcher, func(), error) {
	backups, err := getBackupDir()
	if err != nil {
		return nil, nil, err
	}

	dbFile, err := getDBPath()
	if err != nil {
		return nil, nil, err
	}

	st, err := store.New(dbFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open package database: %w", err)
	}

	if err := st.CreateSchema(); err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("failed to initialize package database: %w", err)
	}

	registry := installer.NewStoreRegistry(st)

	inst := installer.New(installer.Config{
		SystemRoot: targetRoot,
		BackupDir:  backups,
	})
	inst.SetRegistry(registry)
	inst.SetLogger(logging.GetLogger("installer"))

	installOne := func(path string) error {
		release, err := acquireInstallLock(filepath.Join(state, "install.lock"))
		if err != nil {
			return err
		}
		defer release()

		events, done := inst.InstallBatch([]string{path})
		for range events {
			// Pipeline progress is mirrored to the structured log already.
		}
		result := <-done

		if !result.OK() {
			f := result.Failures[0]
			if err := registry.RecordFailure(f.Package, f.Detail); err != nil {
				lg := logging.GetLogger("watcher")
				lg.Warn().Err(err).
					Str("package", f.Package).Msg("failed to record install failure")
			}
			return fmt.Errorf("%s", f.Detail)
		}
		return nil
	}

	w, err := watcher.New(watchDropDir, installOne, logging.GetLogger("watcher"))
	if err != nil {
		st.Close()
		return nil, nil, err
	}

	return w, func() { st.Close() }, nil
}
