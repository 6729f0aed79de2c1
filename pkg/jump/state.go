package jump

import "fmt"

// State is a position in the jump protocol.
type State string

const (
	StateAtLocation    State = "at_location"
	StateJumpRequested State = "jump_requested"
	StateAuthorized    State = "authorized"
	StateRejected      State = "rejected"
	StateJumpExecuted  State = "jump_executed"
)

var transitions = map[State][]State{
	StateAtLocation:    {StateJumpRequested},
	StateJumpRequested: {StateAuthorized, StateRejected},
	StateAuthorized:    {StateJumpExecuted, StateRejected},
	StateJumpExecuted:  {StateAtLocation},
	StateRejected:      {StateAtLocation},
}

// Transition validates a move from one state to the next.
func Transition(from State, to State) error {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return nil
		}
	}
	return fmt.Errorf("invalid jump transition %s -> %s", from, to)
}

// Terminal reports whether state ends a jump attempt.
func (s State) Terminal() bool {
	return s == StateJumpExecuted || s == StateRejected
}

// progress carries one jump attempt through the state machine.
type progress struct {
	state State
}

func newProgress() *progress {
	return &progress{state: StateAtLocation}
}

// advance moves to the next state, leaving the current one in place when the
// move is not allowed.
func (p *progress) advance(to State) error {
	if err := Transition(p.state, to); err != nil {
		return err
	}
	p.state = to
	return nil
}
