package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nuros-linux/apg/internal/output"
	"github.com/nuros-linux/apg/internal/store"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show install history",
	Long: `Show the install history log, newest first. Both successful and
failed attempts are listed; successful entries reference the backup
archive created before deployment.

Examples:
  apg history
  apg history --limit 50`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum entries to show (0 for all)")
}

func runHistory(cmd *cobra.Command, args []string) error {
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

	installs, err := st.ListInstalls(historyLimit)
	if err != nil {
		return err
	}

	fmt.Print(output.RenderInstallTable(installs))
	return nil
}
