package booking

// State is the booking flow state. Exactly one state is active per session.
type State int

const (
	StateIdle State = iota
	StateCollecting
	StateConfirming
	StateEditing
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCollecting:
		return "collecting"
	case StateConfirming:
		return "confirming"
	case StateEditing:
		return "editing"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}
