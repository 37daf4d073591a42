package match

import "time"

// State is a match-search state.
type State int

const (
	Idle State = iota
	Searching
	Found
	Verifying
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Searching:
		return "searching"
	case Found:
		return "found"
	case Verifying:
		return "verifying"
	default:
		return "unknown"
	}
}

// Session is the runtime state of one search cycle. It exists from
// StartSearch until the machine returns to Idle.
type Session struct {
	State           State
	Opponent        *Opponent
	SearchStartedAt time.Time
	SearchDeadline  time.Time
}

// Transition describes one state change.
type Transition struct {
	From     State
	To       State
	Opponent *Opponent
	At       time.Time
}
