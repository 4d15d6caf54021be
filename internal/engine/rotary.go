package engine

// Raw symbols of a two-pin (A/B) quadrature source.
const (
	RotaryRawOff State = 0 // both pins low
	RotaryRawA   State = 1 // only A high
	RotaryRawB   State = 2 // only B high
	RotaryRawAB  State = 3 // both pins high
)

// Output states of RotaryEncoderAnalyzer.
const (
	RotaryOff   State = 0 // no movement identified
	RotaryRight State = 1 // right turn, one step
	RotaryLeft  State = 2 // left turn, one step
)

// Internal sequence states.
const (
	rotIdle   uint8 = iota
	rotRightA       // first edge seen was A, right turn started
	rotLeftB        // first edge seen was B, left turn started
	rotUndefined uint8 = 0xFF
)

// RotaryEncoderAnalyzer decodes classic two-phase quadrature rotation
// from the 4-symbol raw alphabet into per-step direction states. Only
// the first edge away from OFF and the return to OFF matter; bounce
// through AB or the opposite phase mid-step is ignored.
//
// A right step is OFF -> A -> optionally AB -> optionally B -> OFF,
// a left step the mirror image starting with B.
type RotaryEncoderAnalyzer struct {
	internal uint8
}

// NewRotaryEncoder creates the analyzer. It carries no timing
// thresholds, only sequence state.
func NewRotaryEncoder() *RotaryEncoderAnalyzer {
	a := &RotaryEncoderAnalyzer{}
	a.Reset()
	return a
}

// ReadCycleMillis asks for 2ms sampling; encoder detents are fast.
func (a *RotaryEncoderAnalyzer) ReadCycleMillis() uint8 { return 2 }

func (a *RotaryEncoderAnalyzer) Reset() {
	a.internal = rotUndefined
}

func (a *RotaryEncoderAnalyzer) OutputStates() uint8 { return 3 }

func (a *RotaryEncoderAnalyzer) RawStates() uint8 { return 4 }

// Step advances the quadrature sequence with one stable raw symbol.
func (a *RotaryEncoderAnalyzer) Step(raw State) State {
	if a.internal == rotUndefined {
		a.internal = rotIdle
	}

	switch a.internal {
	case rotIdle:
		switch raw {
		case RotaryRawA:
			a.internal = rotRightA
		case RotaryRawB:
			a.internal = rotLeftB
		}

	case rotRightA:
		if raw == RotaryRawOff {
			a.internal = rotIdle
			return RotaryRight
		}

	case rotLeftB:
		if raw == RotaryRawOff {
			a.internal = rotIdle
			return RotaryLeft
		}
	}

	return RotaryOff
}

// StateName labels the analyzer's output states.
func (*RotaryEncoderAnalyzer) StateName(s State) string {
	switch s {
	case RotaryOff:
		return "OFF"
	case RotaryRight:
		return "RIGHT"
	case RotaryLeft:
		return "LEFT"
	case Undefined:
		return "UNDEFINED"
	}
	return "UNKNOWN"
}

// DualPin combines two binary ports into the single 4-symbol quadrature
// alphabet consumed by RotaryEncoderAnalyzer: pin A contributes bit 0,
// pin B bit 1.
type DualPin struct {
	A Port
	B Port
}

// ReadRaw composes one raw symbol from both pins.
func (d DualPin) ReadRaw() State {
	return d.A.ReadRaw() + 2*d.B.ReadRaw()
}

// ConfigureDirection configures both pins, unlike the single-pin ports.
func (d DualPin) ConfigureDirection(inverted bool) {
	d.A.ConfigureDirection(inverted)
	d.B.ConfigureDirection(inverted)
}
