// Package workflow tracks the review status of each drawing sheet.
package workflow

import (
	"encoding/json"
	"fmt"
)

// Status is the client-local review state of one sheet.
type Status string

const (
	StatusDetected  Status = "detected"
	StatusReviewing Status = "reviewing"
	StatusVerified  Status = "verified"
	StatusApproved  Status = "approved"
)

// Events accepted by the transition table.
const (
	EventReview  = "review"
	EventVerify  = "verify"
	EventApprove = "approve"
)

// validTransitions defines the allowed transitions.
// Map: currentStatus -> event -> targetStatus
var validTransitions = map[Status]map[string]Status{
	StatusDetected: {
		EventReview: StatusReviewing,
	},
	StatusReviewing: {
		EventVerify: StatusVerified,
	},
	StatusVerified: {
		EventApprove: StatusApproved,
	},
	StatusApproved: {},
}

// AllStatuses returns every status in workflow order.
func AllStatuses() []Status {
	return []Status{StatusDetected, StatusReviewing, StatusVerified, StatusApproved}
}

// IsValid returns true if the status is a known workflow status.
func (s Status) IsValid() bool {
	switch s {
	case StatusDetected, StatusReviewing, StatusVerified, StatusApproved:
		return true
	default:
		return false
	}
}

func (s Status) String() string {
	return string(s)
}

// DisplayName returns a human-readable name.
func (s Status) DisplayName() string {
	switch s {
	case StatusDetected:
		return "Detected"
	case StatusReviewing:
		return "Reviewing"
	case StatusVerified:
		return "Verified"
	case StatusApproved:
		return "Approved"
	default:
		return string(s)
	}
}

// CanTransitionTo returns true if target is reachable in one step.
func (s Status) CanTransitionTo(target Status) bool {
	for _, t := range validTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// CanTransitionWith returns true if event is accepted from this status.
func (s Status) CanTransitionWith(event string) bool {
	_, ok := validTransitions[s][event]
	return ok
}

// TransitionWith returns the target for event, or an error if not allowed.
func (s Status) TransitionWith(event string) (Status, error) {
	transitions, ok := validTransitions[s]
	if !ok {
		return s, fmt.Errorf("no transitions defined for status: %s", s)
	}
	target, ok := transitions[event]
	if !ok {
		return s, fmt.Errorf("event '%s' not allowed from status '%s'", event, s)
	}
	return target, nil
}

// EventTo returns the event that moves s to target, if any.
func (s Status) EventTo(target Status) (string, bool) {
	for ev, t := range validTransitions[s] {
		if t == target {
			return ev, true
		}
	}
	return "", false
}

// Next returns the successor status and the event that reaches it.
// ok is false for the final status.
func (s Status) Next() (next Status, event string, ok bool) {
	switch s {
	case StatusDetected:
		return StatusReviewing, EventReview, true
	case StatusReviewing:
		return StatusVerified, EventVerify, true
	case StatusVerified:
		return StatusApproved, EventApprove, true
	default:
		return s, "", false
	}
}

// IsFinal returns true for approved.
func (s Status) IsFinal() bool {
	return s == StatusApproved
}

// ActionLabel returns the label of the button that advances this status,
// or the confirmation mark for approved sheets.
func (s Status) ActionLabel() string {
	switch s {
	case StatusDetected:
		return "👀 Review"
	case StatusReviewing:
		return "✓ Verify"
	case StatusVerified:
		return "✓✓ Approve"
	default:
		return "✓✓✓"
	}
}

// ParseStatus parses a string into a Status.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid workflow status: %s", s)
	}
	return status, nil
}

// MarshalJSON implements json.Marshaler.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

// UnmarshalJSON implements json.Unmarshaler. Empty means detected.
func (s *Status) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	if str == "" {
		*s = StatusDetected
		return nil
	}
	status := Status(str)
	if !status.IsValid() {
		return fmt.Errorf("invalid workflow status: %s", str)
	}
	*s = status
	return nil
}
