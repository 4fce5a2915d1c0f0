package session

import "context"

// Decision is what a protected view should do for a given state.
type Decision int

const (
	Redirect Decision = iota
	Loading
	Render
)

func (d Decision) String() string {
	switch d {
	case Render:
		return "render"
	case Loading:
		return "loading"
	default:
		return "redirect"
	}
}

// Decide renders only for Authenticated with a user. Transient states
// load, even when a token is already known.
func Decide(s State) Decision {
	switch s.Status {
	case Authenticated:
		if s.User != nil {
			return Render
		}
		return Redirect
	case Initializing, Authenticating:
		return Loading
	default:
		return Redirect
	}
}

// StateSource is what the gate watches.
type StateSource interface {
	State() State
	Subscribe() (<-chan State, func())
}

// Gate guards protected commands.
type Gate struct {
	source StateSource
}

func NewGate(source StateSource) *Gate {
	return &Gate{source: source}
}

// Decide applies the gate to s.
func (g *Gate) Decide(s State) Decision {
	return Decide(s)
}

// Await blocks while the session is loading and returns the first settled
// state with its decision. A cancelled ctx yields the last seen state as
// Loading.
func (g *Gate) Await(ctx context.Context) (State, Decision) {
	ch, stop := g.source.Subscribe()
	defer stop()

	s := g.source.State()
	for {
		if d := Decide(s); d != Loading {
			return s, d
		}
		select {
		case <-ctx.Done():
			return s, Loading
		case s = <-ch:
		}
	}
}
