package readiness

import "strings"

// Event is a lifecycle observation extracted from one output line.
type Event int

const (
	// EventInitComplete: the bootstrap script finished initializing the
	// data directory.
	EventInitComplete Event = iota + 1

	// EventReady: a server is ready to accept connections.
	EventReady

	// EventShutDown: a server reported it has shut down.
	EventShutDown
)

// String returns the event name.
func (e Event) String() string {
	switch e {
	case EventInitComplete:
		return "init-complete"
	case EventReady:
		return "ready"
	case EventShutDown:
		return "shut-down"
	default:
		return "unknown"
	}
}

// Trigger phrases printed by the postgres image and server.
const (
	PhraseInitComplete = "PostgreSQL init process complete"
	PhraseReady        = "database system is ready to accept connections"
	PhraseShutDown     = "database system is shut down"
)

// LineClassifier maps an output line to an Event. It reports false for
// lines that carry no lifecycle information.
type LineClassifier interface {
	Classify(line string) (Event, bool)
}

// Rule maps a literal substring to an event.
type Rule struct {
	Phrase string
	Event  Event
}

// PhraseClassifier classifies a line by the first rule whose phrase it
// contains.
type PhraseClassifier []Rule

// Compile-time interface satisfaction check.
var _ LineClassifier = PhraseClassifier(nil)

// Classify implements LineClassifier.
func (c PhraseClassifier) Classify(line string) (Event, bool) {
	for _, r := range c {
		if r.Phrase != "" && strings.Contains(line, r.Phrase) {
			return r.Event, true
		}
	}
	return 0, false
}

// DefaultClassifier returns the rules for the official postgres image.
func DefaultClassifier() PhraseClassifier {
	return PhraseClassifier{
		{Phrase: PhraseInitComplete, Event: EventInitComplete},
		{Phrase: PhraseReady, Event: EventReady},
		{Phrase: PhraseShutDown, Event: EventShutDown},
	}
}
