package store

import "time"

// Package is one registered (installed) package.
type Package struct {
	Name        string
	Version     string
	InstalledAt time.Time
	Archive     string
}

// Install is one install attempt in the history log, successful or not.
type Install struct {
	ID          int64
	Package     string
	Version     string
	InstalledAt time.Time
	Success     bool
	Detail      string
	BackupPath  string
}
