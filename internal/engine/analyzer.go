package engine

// Analyzer is a pluggable finite-state transducer that maps the stream
// of committed raw symbols into a stream of output states, using its
// own internal automaton state and elapsed-time thresholds.
//
// Step is called at most once per committed stable raw symbol (once per
// successful debounce), not once per Poll call.
type Analyzer interface {
	// Reset clears internal automaton state and any sequence-start
	// timestamp.
	Reset()

	// ReadCycleMillis suggests a minimum interval between raw samples,
	// derived from the analyzer's own timing thresholds. 0 means no
	// preference.
	ReadCycleMillis() uint8

	// OutputStates returns the size of the output alphabet.
	OutputStates() uint8

	// RawStates returns the size of the raw alphabet the analyzer
	// consumes.
	RawStates() uint8

	// Step advances the automaton with one raw symbol and returns the
	// resulting output state.
	Step(raw State) State
}

// StateNamer is implemented by analyzers whose output states carry
// symbolic names. Consumers may type-assert for it when labeling
// events.
type StateNamer interface {
	StateName(s State) string
}

// PassThrough is the no-op analyzer: a plain 2-state switch with every
// raw symbol forwarded unchanged and no sequence analysis. It is the
// behavior a Switch exhibits with no analyzer attached.
type PassThrough struct{}

func (PassThrough) Reset()                 {}
func (PassThrough) ReadCycleMillis() uint8 { return 0 }
func (PassThrough) OutputStates() uint8    { return 2 }
func (PassThrough) RawStates() uint8       { return 2 }
func (PassThrough) Step(raw State) State   { return raw }
