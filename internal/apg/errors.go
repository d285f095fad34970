package apg

import "fmt"

// ValidationError indicates a structurally invalid package: a missing
// metadata file, a checksum-referenced file that does not exist, or a
// checksum mismatch. Installation aborts before any destructive write.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// ScriptError indicates a lifecycle script exited with a non-zero status.
// Stderr holds the captured diagnostic output of the failed script.
type ScriptError struct {
	Script string
	Stderr string
	Err    error
}

func (e *ScriptError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s failed: %s", e.Script, e.Stderr)
	}
	return fmt.Sprintf("%s failed: %v", e.Script, e.Err)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}

// DependencyError indicates an unsatisfiable dependency constraint.
// The default inspector only reports constraints and never returns it;
// it exists for inspector implementations that do enforce.
type DependencyError struct {
	Package    string
	Constraint string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("unsatisfied dependency for %s: %s", e.Package, e.Constraint)
}
