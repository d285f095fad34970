package installer

import (
	"fmt"
	"path/filepath"
)

// PackageFailure is one failed package in a batch result.
type PackageFailure struct {
	Package string
	Detail  string
}

// BatchResult aggregates the outcome of one batch run.
type BatchResult struct {
	Attempted int
	Succeeded int
	Failures  []PackageFailure
}

// OK reports whether every package in the batch installed.
func (r BatchResult) OK() bool {
	return len(r.Failures) == 0
}

// InstallBatch processes the given package archives strictly sequentially on
// a background goroutine, so the caller is never blocked. Events arrive on
// the first channel in execution order; one package's failure is logged,
// counted and does not abort the rest of the batch. After the terminal
// EventBatchCompleted or EventBatchFailed event, the aggregate result is
// delivered on the second channel and both channels are closed.
//
// Callers must drain the event channel until it closes. An Installer drives
// one batch at a time.
func (inst *Installer) InstallBatch(paths []string) (<-chan Event, <-chan BatchResult) {
	events := make(chan Event, 64)
	done := make(chan BatchResult, 1)
	inst.events = events

	go func() {
		defer close(done)
		defer close(events)

		result := BatchResult{Attempted: len(paths)}
		total := len(paths)

		for i, path := range paths {
			if err := inst.installPackage(path); err != nil {
				inst.log.Error().Err(err).Str("package", path).Msg("installation failed")
				inst.emitLog("Failed to install %s: %v", filepath.Base(path), err)
				result.Failures = append(result.Failures, PackageFailure{
					Package: path,
					Detail:  err.Error(),
				})
			} else {
				result.Succeeded++
			}

			inst.emitProgress((i + 1) * 100 / total)
		}

		if result.OK() {
			events <- Event{Kind: EventBatchCompleted}
		} else {
			events <- Event{
				Kind:    EventBatchFailed,
				Message: fmt.Sprintf("Failed to install %d package(s)", len(result.Failures)),
			}
		}

		done <- result
	}()

	return events, done
}
