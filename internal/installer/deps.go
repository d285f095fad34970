package installer

import "github.com/nuros-linux/apg/internal/apg"

// DependencyInspector examines a package's declared dependency constraints.
// Implementations that enforce constraints return *apg.DependencyError for
// an unsatisfiable one; the default implementation only reports.
type DependencyInspector interface {
	Inspect(pkg *apg.Package) ([]apg.Dependency, error)
}

// ReportingInspector returns declared constraints without consulting any
// installed-package state. Enforcement (version comparison, transitive
// closure, conflict detection) is an extension point left unimplemented.
type ReportingInspector struct{}

// Inspect returns the package's declared dependencies unchanged.
func (ReportingInspector) Inspect(pkg *apg.Package) ([]apg.Dependency, error) {
	return pkg.Metadata.Dependencies, nil
}

// inspectDependencies reports each declared constraint as a log event.
func (inst *Installer) inspectDependencies(pkg *apg.Package) error {
	deps, err := inst.inspector.Inspect(pkg)
	if err != nil {
		return err
	}

	if len(deps) == 0 {
		return nil
	}

	inst.emitLog("Checking dependencies...")
	for _, dep := range deps {
		inst.emitLog("Required: %s", dep)
	}

	return nil
}
