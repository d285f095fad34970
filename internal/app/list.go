package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nuros-linux/apg/internal/output"
	"github.com/nuros-linux/apg/internal/store"
)

var listCmd = &cobra.Command{
	Use:   "list [package]",
	Short: "List installed packages",
	Long: `List packages recorded in the local registry.

Without an argument, all installed packages are shown. With a package
name, its deployed files and declared dependencies are shown as well.

Examples:
  apg list
  apg list demo`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
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

	if len(args) == 1 {
		return showPackage(st, args[0])
	}

	packages, err := st.ListPackages()
	if err != nil {
		return err
	}

	fmt.Print(output.RenderPackageTable(packages))
	return nil
}

// showPackage prints one package's registry record in detail.
func showPackage(st *store.Store, name string) error {
	pkg, err := st.GetPackage(name)
	if err != nil {
		return err
	}

	fmt.Printf("Package:   %s\n", pkg.Name)
	fmt.Printf("Version:   %s\n", pkg.Version)
	fmt.Printf("Installed: %s\n", pkg.InstalledAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Archive:   %s\n", pkg.Archive)

	deps, err := st.GetDependencies(name)
	if err != nil {
		return err
	}
	if len(deps) > 0 {
		fmt.Println("Depends:")
		for _, dep := range deps {
			fmt.Printf("  - %s\n", dep)
		}
	}

	files, err := st.GetPackageFiles(name)
	if err != nil {
		return err
	}
	fmt.Printf("Files:     %d\n", len(files))
	for _, path := range files {
		fmt.Printf("  /%s\n", path)
	}

	return nil
}
