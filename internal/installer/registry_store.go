package installer

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/nuros-linux/apg/internal/apg"
	"github.com/nuros-linux/apg/internal/store"
)

// StoreRegistry records installed packages in the sqlite registry: identity,
// deployed file list, declared dependencies, and an entry in the install
// history. Uninstall and upgrade operations consult these records.
type StoreRegistry struct {
	store *store.Store
}

// NewStoreRegistry creates a Registry backed by the given store.
func NewStoreRegistry(st *store.Store) *StoreRegistry {
	return &StoreRegistry{store: st}
}

// Register writes the package, its file list and dependencies, then appends
// a successful install record referencing the backup archive.
func (r *StoreRegistry) Register(pkg *apg.Package, files []string, backupPath string) error {
	rec := &store.Package{
		Name:        pkg.Metadata.Name,
		Version:     pkg.Metadata.Version,
		InstalledAt: time.Now(),
		Archive:     filepath.Base(pkg.Path),
	}

	if err := r.store.RegisterPackage(rec, files, pkg.Metadata.Dependencies); err != nil {
		return fmt.Errorf("failed to register %s: %w", pkg.Metadata.Name, err)
	}

	_, err := r.store.InsertInstall(&store.Install{
		Package:     pkg.Metadata.Name,
		Version:     pkg.Metadata.Version,
		InstalledAt: rec.InstalledAt,
		Success:     true,
		BackupPath:  backupPath,
	})
	if err != nil {
		return fmt.Errorf("failed to record install of %s: %w", pkg.Metadata.Name, err)
	}

	return nil
}

// RecordFailure appends a failed install attempt to the history log. The
// package identity may be incomplete when extraction itself failed.
func (r *StoreRegistry) RecordFailure(archivePath, detail string) error {
	_, err := r.store.InsertInstall(&store.Install{
		Package:     filepath.Base(archivePath),
		InstalledAt: time.Now(),
		Success:     false,
		Detail:      detail,
	})
	if err != nil {
		return fmt.Errorf("failed to record install failure: %w", err)
	}
	return nil
}
