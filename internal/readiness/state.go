package readiness

// State is the watcher's view of the bootstrap lifecycle.
type State int

const (
	StateAwaitingInit State = iota
	StateInitComplete
	StateShutdownRequested
	StateStopped
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateAwaitingInit:
		return "awaiting-init"
	case StateInitComplete:
		return "init-complete"
	case StateShutdownRequested:
		return "shutdown-requested"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Action tells the caller what to do after feeding an event.
type Action int

const (
	// ActionNone: the event was irrelevant in the current state.
	ActionNone Action = iota

	// ActionLog: the event is worth reporting to the operator.
	ActionLog

	// ActionSignal: the subprocess must be sent SIGINT now.
	ActionSignal
)

// Transition describes one Feed or Close call that was not ignored.
type Transition struct {
	From   State
	To     State
	Event  Event // zero for end of stream
	Action Action
}

// Machine is the readiness state machine. It performs no I/O. The zero
// value starts in StateAwaitingInit.
type Machine struct {
	state State
}

// State returns the current state.
func (m *Machine) State() State {
	return m.state
}

// Feed applies ev and returns the resulting transition. ok is false when
// the event was ignored in the current state.
func (m *Machine) Feed(ev Event) (t Transition, ok bool) {
	from := m.state
	switch {
	case from == StateAwaitingInit && ev == EventInitComplete:
		m.state = StateInitComplete
		return Transition{From: from, To: m.state, Event: ev, Action: ActionLog}, true
	case from == StateInitComplete && ev == EventReady:
		m.state = StateShutdownRequested
		return Transition{From: from, To: m.state, Event: ev, Action: ActionSignal}, true
	case from == StateInitComplete && ev == EventShutDown:
		// Reported only. End of stream ends the watch.
		return Transition{From: from, To: from, Event: ev, Action: ActionLog}, true
	default:
		return Transition{}, false
	}
}

// Close records end of stream. Every state moves to StateStopped.
func (m *Machine) Close() Transition {
	from := m.state
	m.state = StateStopped
	return Transition{From: from, To: StateStopped}
}
