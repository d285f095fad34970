package installer

import "fmt"

// EventKind identifies the type of an installer event.
type EventKind int

const (
	// EventProgress carries a 0-100 percentage.
	EventProgress EventKind = iota
	// EventLog carries a human-readable status line.
	EventLog
	// EventBatchCompleted signals that every package in the batch installed.
	EventBatchCompleted
	// EventBatchFailed signals that at least one package failed; Message
	// summarizes the failure count.
	EventBatchFailed
)

// Event is one message on the installer's event channel. Events are emitted
// in execution order; progress never regresses within a single package's
// lifecycle, and exactly one of EventBatchCompleted or EventBatchFailed is
// emitted last.
type Event struct {
	Kind    EventKind
	Percent int
	Message string
}

// emitProgress publishes a progress percentage. A nil event channel (steps
// invoked outside a batch) drops the event.
func (inst *Installer) emitProgress(percent int) {
	if inst.events == nil {
		return
	}
	inst.events <- Event{Kind: EventProgress, Percent: percent}
}

// emitLog publishes a status line and mirrors it to the structured logger.
func (inst *Installer) emitLog(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	inst.log.Info().Msg(msg)
	if inst.events == nil {
		return
	}
	inst.events <- Event{Kind: EventLog, Message: msg}
}
