package intercept

// State is the worker lifecycle state. There is no terminal state.
type State int32

const (
	StateInstalling State = iota
	StateActivating
	StateActive
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateInstalling:
		return "installing"
	case StateActivating:
		return "activating"
	case StateActive:
		return "active"
	default:
		return "unknown"
	}
}
