package installer

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/nuros-linux/apg/internal/apg"
)

// runScript executes an optional lifecycle script. A missing script is a
// success. The script runs with the inherited process environment plus
// PACKAGE_ROOT naming the package's extracted workspace (the parent of the
// scripts directory). A non-zero exit becomes a *apg.ScriptError carrying
// the captured stderr.
func (inst *Installer) runScript(scriptPath string) error {
	if _, err := os.Stat(scriptPath); os.IsNotExist(err) {
		return nil
	}

	name := filepath.Base(scriptPath)
	inst.emitLog("Running %s...", name)

	packageRoot := filepath.Dir(filepath.Dir(scriptPath))

	var stderr bytes.Buffer
	cmd := exec.Command(scriptPath)
	cmd.Env = append(os.Environ(), "PACKAGE_ROOT="+packageRoot)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return &apg.ScriptError{
			Script: name,
			Stderr: strings.TrimSpace(stderr.String()),
			Err:    err,
		}
	}

	return nil
}
