package engine

// Raw symbols of a single-pin push button.
const (
	RawOff State = 0
	RawOn  State = 1
)

// Output states of PushButtonRepeatAnalyzer. PushOff and PushSingle are
// shared with PushButtonDoubleLongAnalyzer.
const (
	PushOff    State = 0 // no completed sequence
	PushSingle State = 1 // one short push and release
	PushContA  State = 2 // continuous push, phase A completed
	PushContB  State = 3 // continuous push, phase B completed
)

// Internal sequence states.
const (
	repIdle uint8 = iota
	repDown
	repContA
	repContB
	repUndefined uint8 = 0xFF
)

// Both timing parameters are capped at 2 seconds.
const maxPushMillis = 2000

// PushButtonRepeatAnalyzer distinguishes a short tap from a continuous
// hold on a 2-state button. A hold longer than longStart switches to a
// two-phase heartbeat that alternates every repeat milliseconds for as
// long as the button stays down, so a consumer sees a state change per
// half-period. Push durations up to ~49 days are handled by the wrapping
// clock arithmetic.
//
// A SINGLE results from OFF -> ON (< longStart) -> OFF. CONT_A/CONT_B
// alternate after OFF -> ON held for longStart or more.
type PushButtonRepeatAnalyzer struct {
	clock     Clock
	longStart uint16 // ms separating tap from continuous, 0 = taps only
	repeat    uint16 // ms half-period of the hold heartbeat, 0 = taps only
	seqStart  uint32 // clock value at the last OFF -> ON edge
	internal  uint8
}

// NewPushButtonRepeat creates the analyzer. longStartMillis and
// repeatMillis are clamped to [0, 2000]; a zero in either disables
// continuous-push detection, leaving only taps.
func NewPushButtonRepeat(clock Clock, longStartMillis, repeatMillis uint16) *PushButtonRepeatAnalyzer {
	a := &PushButtonRepeatAnalyzer{
		clock:     clock,
		longStart: clampPushMillis(longStartMillis),
		repeat:    clampPushMillis(repeatMillis),
	}
	a.Reset()
	return a
}

func clampPushMillis(v uint16) uint16 {
	if v > maxPushMillis {
		return maxPushMillis
	}
	return v
}

// ReadCycleMillis asks for roughly a twentieth of the heartbeat
// half-period, but never slower than 1ms.
func (a *PushButtonRepeatAnalyzer) ReadCycleMillis() uint8 {
	hint := a.repeat / 20
	if hint < 1 {
		hint = 1
	}
	return uint8(hint)
}

func (a *PushButtonRepeatAnalyzer) Reset() {
	a.internal = repUndefined
	a.seqStart = 0
}

func (a *PushButtonRepeatAnalyzer) OutputStates() uint8 { return 4 }

func (a *PushButtonRepeatAnalyzer) RawStates() uint8 { return 2 }

// Step advances the push sequence with one stable raw symbol.
func (a *PushButtonRepeatAnalyzer) Step(raw State) State {
	now := a.clock()
	on := raw == RawOn

	if a.internal == repUndefined {
		if on {
			a.seqStart = now
			a.internal = repDown
		} else {
			a.internal = repIdle
		}
	}

	elapsed := now - a.seqStart

	// Phase position inside the alternating heartbeat, measured from
	// the moment the hold became continuous.
	var phase uint32
	if a.repeat > 0 && elapsed > uint32(a.longStart) {
		phase = (elapsed - uint32(a.longStart)) % uint32(2*a.repeat)
	}

	switch a.internal {
	case repIdle:
		if on {
			a.seqStart = now
			a.internal = repDown
		}

	case repDown:
		if on {
			if a.longStart > 0 && a.repeat > 0 && elapsed >= uint32(a.longStart) {
				a.internal = repContA
				return PushContA
			}
		} else {
			a.internal = repIdle
			a.seqStart = 0
			return PushSingle
		}

	case repContA:
		if on {
			if phase >= uint32(a.repeat) {
				a.internal = repContB
				return PushContB
			}
			return PushContA
		}
		// Released mid-hold: nothing further to report.
		a.internal = repIdle
		a.seqStart = 0

	case repContB:
		if on {
			if phase < uint32(a.repeat) {
				a.internal = repContA
				return PushContA
			}
			return PushContB
		}
		a.internal = repIdle
		a.seqStart = 0
	}

	return PushOff
}

// StateName labels the analyzer's output states.
func (*PushButtonRepeatAnalyzer) StateName(s State) string {
	switch s {
	case PushOff:
		return "OFF"
	case PushSingle:
		return "SINGLE"
	case PushContA:
		return "CONT_A"
	case PushContB:
		return "CONT_B"
	case Undefined:
		return "UNDEFINED"
	}
	return "UNKNOWN"
}
