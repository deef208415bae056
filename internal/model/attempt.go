package model

import "time"

// Attempt is the outcome of a single keep-alive request. It is logged and
// discarded; nothing stores it.
type Attempt struct {
	URL        string
	StatusCode int
	Err        error
	Elapsed    time.Duration
}

// OK is true when a response arrived, whatever its status code.
func (a Attempt) OK() bool {
	return a.Err == nil
}

type State int

const (
	StateDisabled State = iota
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateDisabled:
		return "disabled"
	case StateRunning:
		return "running"
	default:
		return "unknown"
	}
}
