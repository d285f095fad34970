package installer

import "github.com/nuros-linux/apg/internal/apg"

// Registry records a successfully installed package: its identity, the file
// paths deployed relative to the system root, and the backup record written
// before deployment.
type Registry interface {
	Register(pkg *apg.Package, files []string, backupPath string) error
}

// NoopRegistry discards registrations. It is the default when no durable
// registry is attached, preserving the pipeline's behavior without one.
type NoopRegistry struct{}

// Register does nothing.
func (NoopRegistry) Register(*apg.Package, []string, string) error {
	return nil
}
