// Package installer implements the APG installation pipeline: extraction,
// checksum verification, dependency inspection, pre-overwrite backup,
// lifecycle scripts, payload deployment and registry bookkeeping, driven
// sequentially for a batch of packages on a background goroutine.
package installer

import (
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/nuros-linux/apg/internal/apg"
)

// Config holds the filesystem layout an Installer operates on. Both paths
// are explicit so tests can point the pipeline at temporary roots.
type Config struct {
	// SystemRoot is the target root filesystem that package payloads are
	// copied onto.
	SystemRoot string

	// BackupDir receives one backup archive per install attempt.
	BackupDir string
}

// Installer runs the installation pipeline. It assumes exclusive access to
// the system root and backup directory; callers serialize installs with an
// external lock. One Installer drives one batch at a time.
type Installer struct {
	cfg       Config
	registry  Registry
	inspector DependencyInspector
	log       zerolog.Logger
	events    chan Event
}

// New creates an Installer with the no-op registry and the reporting-only
// dependency inspector.
func New(cfg Config) *Installer {
	return &Installer{
		cfg:       cfg,
		registry:  NoopRegistry{},
		inspector: ReportingInspector{},
		log:       zerolog.Nop(),
	}
}

// SetRegistry replaces the package registry. A nil registry is ignored.
func (inst *Installer) SetRegistry(r Registry) {
	if r != nil {
		inst.registry = r
	}
}

// SetInspector replaces the dependency inspector. A nil inspector is ignored.
func (inst *Installer) SetInspector(i DependencyInspector) {
	if i != nil {
		inst.inspector = i
	}
}

// SetLogger replaces the structured logger (default: no-op).
func (inst *Installer) SetLogger(log zerolog.Logger) {
	inst.log = log
}

// installPackage runs the full pipeline for a single package. Steps are
// strictly ordered and the first failure aborts the remainder; the workspace
// is removed on every exit path. Progress percentages are emitted as each
// step completes: 10 extract, 20 checksums, 30 dependencies, 40 backup,
// 50 preinstall, 70 deploy, 80 postinstall, 90 register.
func (inst *Installer) installPackage(path string) error {
	pkg := apg.New(path)
	defer func() {
		if err := pkg.Cleanup(); err != nil {
			inst.log.Warn().Err(err).Str("package", path).Msg("workspace cleanup failed")
		}
	}()

	inst.emitLog("Extracting %s...", filepath.Base(path))
	if _, err := pkg.Extract(); err != nil {
		return err
	}
	inst.emitProgress(10)

	if err := inst.verifyChecksums(pkg); err != nil {
		return err
	}
	inst.emitProgress(20)

	if err := inst.inspectDependencies(pkg); err != nil {
		return err
	}
	inst.emitProgress(30)

	backupPath, err := inst.createBackup(pkg)
	if err != nil {
		return err
	}
	inst.emitProgress(40)

	if err := inst.runScript(pkg.ScriptPath("preinstall")); err != nil {
		return err
	}
	inst.emitProgress(50)

	deployed, err := inst.copyFiles(pkg.DataDir(), inst.cfg.SystemRoot)
	if err != nil {
		return err
	}
	inst.emitProgress(70)

	if err := inst.runScript(pkg.ScriptPath("postinstall")); err != nil {
		return err
	}
	inst.emitProgress(80)

	if err := inst.registry.Register(pkg, deployed, backupPath); err != nil {
		return err
	}
	inst.emitProgress(90)

	inst.emitLog("Successfully installed %s", pkg)
	return nil
}
