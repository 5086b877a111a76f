package workflow

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// State constants for statekit. Kept in sync with the Status values.
const (
	StateDetected  = "detected"
	StateReviewing = "reviewing"
	StateVerified  = "verified"
	StateApproved  = "approved"
)

func init() {
	stateMap := map[string]Status{
		StateDetected:  StatusDetected,
		StateReviewing: StatusReviewing,
		StateVerified:  StatusVerified,
		StateApproved:  StatusApproved,
	}
	for fsmState, status := range stateMap {
		if fsmState != string(status) {
			panic(fmt.Sprintf("FSM state %q does not match Status %q", fsmState, status))
		}
	}
}

// SheetContext carries the sheet being moved.
type SheetContext struct {
	SheetID string
}

// SheetStateMachine runs one sheet through the review workflow.
type SheetStateMachine struct {
	interpreter *statekit.Interpreter[SheetContext]
}

// NewSheetStateMachine builds a machine starting at initial.
func NewSheetStateMachine(initial Status, sheetID string) (*SheetStateMachine, error) {
	if !initial.IsValid() {
		return nil, fmt.Errorf("invalid initial status: %s", initial)
	}

	builder := statekit.NewMachine[SheetContext]("sheet-review").
		WithInitial(statekit.StateID(initial)).
		WithContext(SheetContext{SheetID: sheetID})

	builder.State(StateDetected).
		On(EventReview).Target(StateReviewing).
		Done()

	builder.State(StateReviewing).
		On(EventVerify).Target(StateVerified).
		Done()

	builder.State(StateVerified).
		On(EventApprove).Target(StateApproved).
		Done()

	builder.State(StateApproved).
		Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build state machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()

	return &SheetStateMachine{interpreter: interpreter}, nil
}

// Fire sends event. It fails when the current state does not accept it.
func (sm *SheetStateMachine) Fire(event string) error {
	before := sm.Current()
	sm.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
	if sm.Current() != before {
		return nil
	}
	return fmt.Errorf("the action '%s' is not allowed while the sheet is %s", event, before)
}

// Current returns the machine's status.
func (sm *SheetStateMachine) Current() Status {
	return Status(sm.interpreter.State().Value)
}

// ValidEvents delegates to the Status transition table.
func (sm *SheetStateMachine) ValidEvents() []string {
	var events []string
	for ev := range validTransitions[sm.Current()] {
		events = append(events, ev)
	}
	return events
}
