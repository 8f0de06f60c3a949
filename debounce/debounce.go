package debounce

import "time"

// DefaultWindow is the minimum spacing between two accepted presses.
const DefaultWindow = 500 * time.Millisecond

// Gate collapses contact bounce on one button into a single press. Each
// button gets its own Gate.
type Gate struct {
	window       time.Duration
	lastAccepted time.Time
	accepted     bool
}

func New(window time.Duration) *Gate {
	return &Gate{window: window}
}

// ShouldAccept reports whether a press at now counts. An accepted press
// moves the gate's reference point to now; a rejected one changes nothing.
// The first press a gate ever sees is accepted.
func (g *Gate) ShouldAccept(now time.Time) bool {
	if g.accepted && now.Sub(g.lastAccepted) <= g.window {
		return false
	}
	g.lastAccepted = now
	g.accepted = true
	return true
}

// LastAccepted returns when the gate last let a press through.
func (g *Gate) LastAccepted() (time.Time, bool) {
	return g.lastAccepted, g.accepted
}

func (g *Gate) Window() time.Duration {
	return g.window
}
