package engine

// Additional output states of PushButtonDoubleLongAnalyzer; PushOff and
// PushSingle are shared with PushButtonRepeatAnalyzer.
const (
	PushDouble State = 2 // two pushes and releases inside the double window
	PushLong   State = 3 // one push held past the long threshold
)

// Internal sequence states.
const (
	dblIdle uint8 = iota
	dblDown
	dblGap       // released once, a second push may still follow
	dblSecond    // second push of a potential double in progress
	dblLongFired // long threshold already reported, awaiting release
	dblUndefined uint8 = 0xFF
)

// PushButtonDoubleLongAnalyzer distinguishes single push, double push
// and long push on a 2-state button.
//
// A SINGLE results from OFF -> ON (< minLong) -> OFF with no second
// push inside maxDouble; it is reported retroactively once the double
// window has expired. A DOUBLE results from OFF -> ON -> OFF -> ON ->
// OFF completed inside maxDouble. A LONG results from a push held for
// minLong or more, reported either the moment the threshold elapses
// (endLongByTime) or at the release.
type PushButtonDoubleLongAnalyzer struct {
	clock         Clock
	maxDouble     uint16 // ms window for completing a double push, 0 = off
	minLong       uint16 // ms a push must last to count as long, 0 = off
	endLongByTime bool   // report LONG at the threshold instead of at release
	seqStart      uint32 // clock value at the last sequence-starting edge
	internal      uint8
}

// NewPushButtonDoubleLong creates the analyzer. A zero maxDoubleMillis
// disables double-push detection, a zero minLongMillis disables
// long-push detection.
func NewPushButtonDoubleLong(clock Clock, maxDoubleMillis, minLongMillis uint16, endLongByTime bool) *PushButtonDoubleLongAnalyzer {
	a := &PushButtonDoubleLongAnalyzer{
		clock:         clock,
		maxDouble:     maxDoubleMillis,
		minLong:       minLongMillis,
		endLongByTime: endLongByTime,
	}
	a.Reset()
	return a
}

// ReadCycleMillis asks for a twentieth of the coarsest configured
// window, capped to the hint range.
func (a *PushButtonDoubleLongAnalyzer) ReadCycleMillis() uint8 {
	v := a.maxDouble
	if a.minLong > v {
		v = a.minLong
	}
	v /= 20
	if v > 0xFF {
		v = 0xFF
	}
	return uint8(v)
}

func (a *PushButtonDoubleLongAnalyzer) Reset() {
	a.internal = dblUndefined
	a.seqStart = 0
}

func (a *PushButtonDoubleLongAnalyzer) OutputStates() uint8 { return 4 }

func (a *PushButtonDoubleLongAnalyzer) RawStates() uint8 { return 2 }

// Step advances the push sequence with one stable raw symbol.
func (a *PushButtonDoubleLongAnalyzer) Step(raw State) State {
	now := a.clock()
	on := raw == RawOn

	if a.internal == dblUndefined {
		if on {
			a.seqStart = now
			a.internal = dblDown
		} else {
			a.internal = dblIdle
		}
	}

	elapsed := now - a.seqStart

	// Timeouts first: both can fire from elapsed time alone, with no
	// new raw edge.
	if a.minLong > 0 && elapsed > uint32(a.minLong) && a.internal == dblDown && a.endLongByTime {
		a.internal = dblLongFired
		return PushLong
	}

	if a.maxDouble > 0 && elapsed > uint32(a.maxDouble) && (a.internal == dblGap || a.internal == dblSecond) {
		// One completed push, and a second comes (or would come) too
		// late: report the single and start over from the current edge.
		if on {
			a.seqStart = now
			a.internal = dblDown
		} else {
			a.seqStart = 0
			a.internal = dblIdle
		}
		return PushSingle
	}

	switch a.internal {
	case dblIdle:
		if on {
			a.seqStart = now
			a.internal = dblDown
		}

	case dblDown:
		if on {
			// Still held, nothing to decide yet.
		} else if a.minLong > 0 && elapsed > uint32(a.minLong) {
			a.internal = dblIdle
			a.seqStart = 0
			return PushLong
		} else if a.maxDouble > 0 && elapsed < uint32(a.maxDouble) {
			// Ambiguous: might still become a double.
			a.internal = dblGap
		} else {
			a.internal = dblIdle
			a.seqStart = 0
			return PushSingle
		}

	case dblGap:
		if on {
			// Second push starts; the window check above settles it.
			a.seqStart = now
			a.internal = dblSecond
		}

	case dblSecond:
		if !on {
			a.internal = dblIdle
			a.seqStart = 0
			return PushDouble
		}

	case dblLongFired:
		if !on {
			// Release after the LONG was already reported.
			a.internal = dblIdle
			a.seqStart = 0
		}
	}

	return PushOff
}

// StateName labels the analyzer's output states.
func (*PushButtonDoubleLongAnalyzer) StateName(s State) string {
	switch s {
	case PushOff:
		return "OFF"
	case PushSingle:
		return "SINGLE"
	case PushDouble:
		return "DOUBLE"
	case PushLong:
		return "LONG"
	case Undefined:
		return "UNDEFINED"
	}
	return "UNKNOWN"
}
