package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/nuros-linux/apg/internal/apg"
)

// Package operations

// RegisterPackage inserts or replaces a package together with its deployed
// file list and declared dependencies, in one transaction.
func (s *Store) RegisterPackage(pkg *Package, files []string, deps []apg.Dependency) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT OR REPLACE INTO packages (name, version, installed_at, archive)
		VALUES (?, ?, ?, ?)`,
		pkg.Name,
		pkg.Version,
		pkg.InstalledAt.Format(time.RFC3339),
		pkg.Archive,
	)
	if err != nil {
		return fmt.Errorf("failed to insert package %s: %w", pkg.Name, err)
	}

	// Replace the recorded file list and dependencies wholesale; an upgrade
	// may deploy a different set than the previous version.
	if _, err := tx.Exec(`DELETE FROM package_files WHERE package = ?`, pkg.Name); err != nil {
		return fmt.Errorf("failed to clear files for %s: %w", pkg.Name, err)
	}
	for _, path := range files {
		if _, err := tx.Exec(`INSERT INTO package_files (package, path) VALUES (?, ?)`,
			pkg.Name, path); err != nil {
			return fmt.Errorf("failed to insert file %s: %w", path, err)
		}
	}

	if _, err := tx.Exec(`DELETE FROM dependencies WHERE package = ?`, pkg.Name); err != nil {
		return fmt.Errorf("failed to clear dependencies for %s: %w", pkg.Name, err)
	}
	for _, dep := range deps {
		if _, err := tx.Exec(`
			INSERT OR REPLACE INTO dependencies (package, name, version, condition)
			VALUES (?, ?, ?, ?)`,
			pkg.Name, dep.Name, dep.Version, dep.Condition); err != nil {
			return fmt.Errorf("failed to insert dependency %s: %w", dep.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit registration of %s: %w", pkg.Name, err)
	}

	return nil
}

// GetPackage retrieves a package by name.
func (s *Store) GetPackage(name string) (*Package, error) {
	query := `
		SELECT name, version, installed_at, archive
		FROM packages
		WHERE name = ?
	`

	var pkg Package
	var installedAt string

	err := s.db.QueryRow(query, name).Scan(
		&pkg.Name,
		&pkg.Version,
		&installedAt,
		&pkg.Archive,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("package %s not found", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get package %s: %w", name, err)
	}

	pkg.InstalledAt, err = time.Parse(time.RFC3339, installedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse installed_at for %s: %w", name, err)
	}

	return &pkg, nil
}

// ListPackages returns all registered packages ordered by name.
func (s *Store) ListPackages() ([]*Package, error) {
	query := `
		SELECT name, version, installed_at, archive
		FROM packages
		ORDER BY name
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}
	defer rows.Close()

	var packages []*Package
	for rows.Next() {
		var pkg Package
		var installedAt string

		if err := rows.Scan(&pkg.Name, &pkg.Version, &installedAt, &pkg.Archive); err != nil {
			return nil, fmt.Errorf("failed to scan package row: %w", err)
		}

		pkg.InstalledAt, err = time.Parse(time.RFC3339, installedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse installed_at for %s: %w", pkg.Name, err)
		}

		packages = append(packages, &pkg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating packages: %w", err)
	}

	return packages, nil
}

// GetPackageFiles returns the deployed file paths recorded for a package,
// relative to the system root.
func (s *Store) GetPackageFiles(name string) ([]string, error) {
	rows, err := s.db.Query(`
		SELECT path FROM package_files WHERE package = ? ORDER BY path`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get files for %s: %w", name, err)
	}
	defer rows.Close()

	var files []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, fmt.Errorf("failed to scan file row: %w", err)
		}
		files = append(files, path)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating files: %w", err)
	}

	return files, nil
}

// GetDependencies returns the declared dependency constraints recorded for
// a package.
func (s *Store) GetDependencies(name string) ([]apg.Dependency, error) {
	rows, err := s.db.Query(`
		SELECT name, version, condition FROM dependencies WHERE package = ? ORDER BY name`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get dependencies for %s: %w", name, err)
	}
	defer rows.Close()

	var deps []apg.Dependency
	for rows.Next() {
		var dep apg.Dependency
		if err := rows.Scan(&dep.Name, &dep.Version, &dep.Condition); err != nil {
			return nil, fmt.Errorf("failed to scan dependency row: %w", err)
		}
		deps = append(deps, dep)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dependencies: %w", err)
	}

	return deps, nil
}

// DeletePackage removes a package, its file list and dependencies.
func (s *Store) DeletePackage(name string) error {
	result, err := s.db.Exec(`DELETE FROM packages WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete package %s: %w", name, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("package %s not found", name)
	}

	return nil
}

// Install history operations

// InsertInstall appends one install attempt to the history log and returns
// its ID.
func (s *Store) InsertInstall(rec *Install) (int64, error) {
	result, err := s.db.Exec(`
		INSERT INTO installs (package, version, installed_at, success, detail, backup_path)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Package,
		rec.Version,
		rec.InstalledAt.Format(time.RFC3339),
		rec.Success,
		rec.Detail,
		rec.BackupPath,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert install record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get install record ID: %w", err)
	}

	return id, nil
}

// ListInstalls returns install history, newest first, up to limit entries.
// A limit of 0 returns everything.
func (s *Store) ListInstalls(limit int) ([]*Install, error) {
	query := `
		SELECT id, package, version, installed_at, success, detail, backup_path
		FROM installs
		ORDER BY installed_at DESC, id DESC
	`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list installs: %w", err)
	}
	defer rows.Close()

	var installs []*Install
	for rows.Next() {
		var rec Install
		var installedAt string

		err := rows.Scan(
			&rec.ID,
			&rec.Package,
			&rec.Version,
			&installedAt,
			&rec.Success,
			&rec.Detail,
			&rec.BackupPath,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan install row: %w", err)
		}

		rec.InstalledAt, err = time.Parse(time.RFC3339, installedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse installed_at for install %d: %w", rec.ID, err)
		}

		installs = append(installs, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating installs: %w", err)
	}

	return installs, nil
}
