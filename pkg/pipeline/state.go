package pipeline

// State is a message's position in the processing pipeline.
type State int

const (
	StateReceived State = iota
	StateTranscribed
	StateAnalyzed
	StateAssembled
	StatePrompted
	StateGenerated
	StateFormatted
	StateDelivered
	StateError
)

func (s State) String() string {
	switch s {
	case StateReceived:
		return "RECEIVED"
	case StateTranscribed:
		return "TRANSCRIBED"
	case StateAnalyzed:
		return "ANALYZED"
	case StateAssembled:
		return "ASSEMBLED"
	case StatePrompted:
		return "PROMPTED"
	case StateGenerated:
		return "GENERATED"
	case StateFormatted:
		return "FORMATTED"
	case StateDelivered:
		return "DELIVERED"
	case StateError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// validTransitions encodes the forward-only flow. ERROR is reachable
// from every non-terminal state; DELIVERED and ERROR are terminal.
var validTransitions = map[State][]State{
	StateReceived:    {StateTranscribed, StateAnalyzed, StateError},
	StateTranscribed: {StateAnalyzed, StateError},
	StateAnalyzed:    {StateAssembled, StateError},
	StateAssembled:   {StatePrompted, StateError},
	StatePrompted:    {StateGenerated, StateError},
	StateGenerated:   {StateFormatted, StateError},
	StateFormatted:   {StateDelivered, StateError},
}

// InvalidTransitionError reports a disallowed state change.
type InvalidTransitionError struct {
	From State
	To   State
}

func (e *InvalidTransitionError) Error() string {
	return "invalid state transition from " + e.From.String() + " to " + e.To.String()
}

// stateTracker enforces transition validity for one pipeline invocation.
// An invocation runs on a single goroutine, so no locking is needed.
type stateTracker struct {
	current State
}

func newStateTracker() *stateTracker {
	return &stateTracker{current: StateReceived}
}

func (t *stateTracker) State() State { return t.current }

func (t *stateTracker) to(next State) error {
	for _, allowed := range validTransitions[t.current] {
		if allowed == next {
			t.current = next
			return nil
		}
	}
	return &InvalidTransitionError{From: t.current, To: next}
}
