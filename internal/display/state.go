package display

// State is the mode of the notification surface.
type State int

const (
	// StateHidden means nothing is shown.
	StateHidden State = iota
	// StateToast means a single notification is shown.
	StateToast
	// StateCenter means every undismissed notification is shown.
	StateCenter
)

// String returns the string representation of State.
func (s State) String() string {
	switch s {
	case StateHidden:
		return "hidden"
	case StateToast:
		return "toast"
	case StateCenter:
		return "center"
	default:
		return "unknown"
	}
}

// Status is a point-in-time view of the controller.
type Status struct {
	State State
	// ToastID is the notification on screen while State is StateToast.
	ToastID uint32
}
