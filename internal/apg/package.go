// Package apg models a single APG package under installation: the source
// archive, its extracted workspace, parsed metadata and checksum manifest.
package apg

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nuros-linux/apg/internal/archive"
)

// Package represents one .apg archive for the duration of an install attempt.
// Metadata and MD5Sums are populated only after a successful Extract.
type Package struct {
	// Path is the source archive location. Never modified.
	Path string

	// Workspace is the private temporary directory holding the extracted
	// archive. Non-empty only between a successful Extract and Cleanup.
	Workspace string

	Metadata Metadata
	MD5Sums  map[string]string
}

// New creates a Package for the archive at path. Nothing is read until
// Extract is called.
func New(path string) *Package {
	return &Package{Path: path}
}

// Extract unpacks the archive into a fresh temporary workspace and parses
// metadata.json and, if present, md5sums. A package without metadata.json is
// invalid. A missing md5sums file leaves MD5Sums empty, which makes checksum
// verification trivially succeed.
//
// The workspace is created even when extraction fails partway, so callers
// must invoke Cleanup on every path.
func (p *Package) Extract() (string, error) {
	dir, err := os.MkdirTemp("", "apg-install-")
	if err != nil {
		return "", fmt.Errorf("failed to create workspace: %w", err)
	}
	p.Workspace = dir

	if err := archive.Extract(p.Path, dir); err != nil {
		return "", fmt.Errorf("failed to extract %s: %w", filepath.Base(p.Path), err)
	}

	metaPath := filepath.Join(dir, "metadata.json")
	if _, err := os.Stat(metaPath); os.IsNotExist(err) {
		return "", &ValidationError{Reason: "metadata.json not found in package"}
	}

	meta, err := loadMetadata(metaPath)
	if err != nil {
		return "", err
	}
	p.Metadata = meta

	sumsPath := filepath.Join(dir, "md5sums")
	if _, err := os.Stat(sumsPath); err == nil {
		sums, err := loadChecksums(sumsPath)
		if err != nil {
			return "", err
		}
		p.MD5Sums = sums
	}

	return dir, nil
}

// Cleanup removes the workspace. It is safe to call on a package that was
// never extracted, and safe to call more than once.
func (p *Package) Cleanup() error {
	if p.Workspace == "" {
		return nil
	}
	if err := os.RemoveAll(p.Workspace); err != nil {
		return fmt.Errorf("failed to remove workspace: %w", err)
	}
	p.Workspace = ""
	return nil
}

// DataDir returns the payload tree inside the workspace. The directory is
// optional; callers must handle its absence.
func (p *Package) DataDir() string {
	return filepath.Join(p.Workspace, "data")
}

// ScriptPath returns the path of a lifecycle script ("preinstall" or
// "postinstall") inside the workspace. The script is optional.
func (p *Package) ScriptPath(name string) string {
	return filepath.Join(p.Workspace, "scripts", name)
}

func (p *Package) String() string {
	name, version := p.Metadata.Name, p.Metadata.Version
	if name == "" {
		name = "unknown"
	}
	if version == "" {
		version = "unknown"
	}
	return name + " " + version
}
