// Package app implements the apg command tree.
package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nuros-linux/apg/internal/logging"
)

var (
	targetRoot string
	stateDir   string
	backupDir  string
	dbPath     string
	verbosity  int

	// RootCmd is the root command for apg
	RootCmd = &cobra.Command{
		Use:   "apg",
		Short: "Install APG packages onto the system",
		Long: `apg installs APG packages: compressed archives carrying a metadata
manifest, an optional md5 checksum list, a payload tree mirrored onto the
system root, and optional pre/post install scripts.

Every install verifies declared checksums, reports declared dependencies,
backs up any files about to be overwritten, runs lifecycle scripts with the
package workspace in the environment, deploys the payload, and records the
package in the local registry.

Quick start:
  1. apg info demo-1.0.apg       # inspect before installing
  2. sudo apg install demo-1.0.apg
  3. apg list
  4. apg history

Backups of overwritten files are kept as tar.xz archives for manual
recovery; nothing is restored automatically.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(verbosity, getLogFilePath())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("apg: APG package installer")
			fmt.Println()
			fmt.Println("Run 'apg install <package.apg>' to install a package.")
			fmt.Println("Run 'apg --help' for the full reference.")
			return nil
		},
	}
)

func init() {
	// Global flags
	RootCmd.PersistentFlags().StringVar(&targetRoot, "root", "/", "target root filesystem")
	RootCmd.PersistentFlags().StringVar(&stateDir, "state-dir", "", "state directory (default: /var/lib/apg, or ~/.apg without permission)")
	RootCmd.PersistentFlags().StringVar(&backupDir, "backup-dir", "", "backup directory (default: <state-dir>/backups)")
	RootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "package database path (default: <state-dir>/packages.db)")
	RootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity (-v info, -vv debug)")

	RootCmd.SuggestionsMinimumDistance = 2

	// Register subcommands
	RootCmd.AddCommand(installCmd)
	RootCmd.AddCommand(infoCmd)
	RootCmd.AddCommand(listCmd)
	RootCmd.AddCommand(historyCmd)
	RootCmd.AddCommand(watchCmd)
}

// Execute runs the root command
func Execute() error {
	return RootCmd.Execute()
}
