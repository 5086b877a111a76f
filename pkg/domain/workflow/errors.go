package workflow

import "errors"

var (
	// ErrInvalidTransition indicates the requested status change is not allowed.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidStatus indicates an unknown status value.
	ErrInvalidStatus = errors.New("invalid workflow status")
)

// TransitionError provides details about a rejected transition.
type TransitionError struct {
	SheetID string
	From    Status
	To      Status
	Event   string
}

func (e *TransitionError) Error() string {
	msg := "cannot move sheet " + e.SheetID + " from " + string(e.From)
	if e.To != "" {
		msg += " to " + string(e.To)
	}
	if e.Event != "" {
		msg += " via " + e.Event
	}
	return msg
}

// Is allows errors.Is to work with TransitionError.
func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
