package installer

import (
	"github.com/ImSingee/uvm/internal/unity"
)

// State of a single component during Apply.
type State int

const (
	StatePlanned State = iota
	StateFetching
	StateUnpacking
	StateVerifying
	StateRegistered
	StateFailed
)

var stateNames = [...]string{
	StatePlanned:    "planned",
	StateFetching:   "fetching",
	StateUnpacking:  "unpacking",
	StateVerifying:  "verifying",
	StateRegistered: "registered",
	StateFailed:     "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "invalid"
	}
	return stateNames[s]
}

// Done reports whether s is final.
func (s State) Done() bool {
	return s == StateRegistered || s == StateFailed
}

type Event struct {
	RunID       string
	Version     unity.Version
	Destination string
	Component   unity.Component
	State       State
	// Err is set for StateFailed.
	Err error
}

// Observer receives every state transition. It is called synchronously from
// Apply and must not block.
type Observer interface {
	OnTransition(e Event)
}

type ObserverFunc func(e Event)

func (f ObserverFunc) OnTransition(e Event) {
	f(e)
}

type nopObserver struct{}

func (nopObserver) OnTransition(Event) {}

// Observers fans events out to several observers in order.
type Observers []Observer

func (o Observers) OnTransition(e Event) {
	for _, observer := range o {
		if observer != nil {
			observer.OnTransition(e)
		}
	}
}
