package logic

// DebounceGate accepts a button press only when at least DebounceInterval
// has passed since the last accepted one.
type DebounceGate struct {
	lastAccepted Tick
	primed       bool
}

// Accept reports whether a press at now should be honored.
// The first call is always accepted.
func (g *DebounceGate) Accept(now Tick) bool {
	if g.primed && Elapsed(now, g.lastAccepted) < DebounceInterval {
		return false
	}
	g.lastAccepted = now
	g.primed = true
	return true
}
