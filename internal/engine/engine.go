// Package engine turns a noisy, polled input signal into a small, stable
// state value that changes only when the underlying condition has
// genuinely changed. It is pure logic with NO hardware, broker, or OS
// dependencies; the millisecond clock and raw pin reads are injected so
// the package can run in tests and on any host that can poll.
//
// The design is cooperative and non-blocking: Poll never sleeps, reads
// the port at most once, and must be driven repeatedly from a loop. A
// pluggable Analyzer can interpret the debounced raw symbol stream
// (single/double/long pushes, quadrature rotation) before it is cached
// as the reported state.
package engine

import "time"

// State is a raw input symbol or an analyzed output state. Values live
// in a small contiguous alphabet starting at 0.
type State uint8

// Undefined marks "no sample taken yet". It is reported after
// construction and after Reset until the first committed read.
const Undefined State = 0xFF

// Output alphabet size bounds. Out-of-range configuration is clamped,
// never rejected.
const (
	minStates = 2
	maxStates = 64
)

// Clock returns a monotonic millisecond timestamp. The value wraps
// every ~49.7 days; all interval math uses uint32 subtraction, which is
// safe across the wrap.
type Clock func() uint32

// WallClock returns a Clock counting milliseconds from the time of the
// call.
func WallClock() Clock {
	start := time.Now()
	return func() uint32 {
		return uint32(time.Since(start).Milliseconds())
	}
}

// Port supplies raw input symbols. Implementations must not block.
// There is no error return: hardware adapters absorb read failures and
// keep delivering the last good symbol.
type Port interface {
	// ReadRaw returns the current raw symbol, in [0, raw alphabet size).
	ReadRaw() State

	// ConfigureDirection sets up the sampling direction (pull-up for an
	// inverted input, pull-down otherwise). Idempotent.
	ConfigureDirection(inverted bool)
}

// Config carries the immutable construction-time settings of a Switch.
type Config struct {
	// States is the output alphabet size, clamped to [2, 64]. Ignored
	// when Analyzer is set: the analyzer declares its own alphabets.
	States uint8

	// ReadCycle is the minimum spacing in milliseconds between raw
	// reads when not debouncing. 0 reads on every poll. Ignored when
	// Analyzer is set: the analyzer's read-cycle hint is used instead.
	ReadCycle uint8

	// Debounce is the fixed wait in milliseconds after a raw change is
	// first observed, before the one confirming read. 0 disables
	// debouncing.
	Debounce uint8

	// Invert mirrors raw symbols across the raw alphabet
	// (symbol' = n-1-symbol). For a plain pin this is the usual active
	// low flip; for a quadrature source it swaps the two pin roles.
	Invert bool

	// Analyzer interprets committed raw symbols. nil passes raw symbols
	// through unchanged. The analyzer must not be shared between
	// switches; it is reset together with its switch.
	Analyzer Analyzer

	// Mapping is an optional caller-owned buffer for the output-state
	// to external-value table. It must have at least States entries;
	// shorter buffers are replaced by an engine-owned table.
	Mapping []uint8

	// EnableMapping allocates an engine-owned mapping table when
	// Mapping is nil. The table starts as the identity.
	EnableMapping bool
}

// Switch is the debounced polling engine. It owns the sampling cadence,
// the debounce phase, the current/previous output-state cache, and the
// optional mapping table. Not safe for concurrent use: if Poll can run
// from both a loop and an interrupt-like context, the caller must
// serialize the calls.
type Switch struct {
	port     Port
	clock    Clock
	analyzer Analyzer

	numStates uint8 // output alphabet size, clamped
	rawStates uint8 // raw alphabet size
	readCycle uint8 // ms between raw reads, 0 = every poll
	debounce  uint8 // ms debounce window, 0 = off
	invert    bool
	mapping   []uint8 // nil = mapping disabled

	current    State
	previous   State
	lastRaw    State // last committed stable raw symbol
	lastReadMs uint32
	debouncing bool
}

// New creates a Switch for the given port and clock. Invalid
// configuration is clamped to the nearest valid value; New never fails.
func New(port Port, clock Clock, cfg Config) *Switch {
	s := &Switch{
		port:      port,
		clock:     clock,
		analyzer:  cfg.Analyzer,
		readCycle: cfg.ReadCycle,
		debounce:  cfg.Debounce,
		invert:    cfg.Invert,
	}

	n := cfg.States
	if a := cfg.Analyzer; a != nil {
		n = a.OutputStates()
		s.readCycle = a.ReadCycleMillis()
	}
	s.numStates = clampStates(n)

	if a := cfg.Analyzer; a != nil {
		s.rawStates = a.RawStates()
	} else {
		s.rawStates = s.numStates
	}

	if cfg.Mapping != nil || cfg.EnableMapping {
		m := cfg.Mapping
		if len(m) < int(s.numStates) {
			m = make([]uint8, s.numStates)
		}
		for i := uint8(0); i < s.numStates; i++ {
			m[i] = i
		}
		s.mapping = m
	}

	s.Reset()
	return s
}

func clampStates(n uint8) uint8 {
	if n < minStates {
		return minStates
	}
	if n > maxStates {
		return maxStates
	}
	return n
}

// ConfigurePort sets up the physical sampling direction implied by the
// invert flag. Side effect only; safe to call more than once.
func (s *Switch) ConfigurePort() {
	s.port.ConfigureDirection(s.invert)
}

// Poll drives one sampling step and reports whether this call changed
// the current state. It returns false on every call suppressed by the
// read cycle or a pending debounce window, and never blocks.
//
// The debounce is a fixed-delay, single-resample filter: after a raw
// change is first seen, reads are suppressed for the debounce window,
// then exactly one further read is taken and committed as stable,
// whatever it yields. There is no re-verification at the window
// boundary.
func (s *Switch) Poll() bool {
	now := s.clock()
	dt := now - s.lastReadMs

	// Wait times first: no port read while suppressed.
	if s.debouncing {
		if dt < uint32(s.debounce) {
			return false
		}
	} else if s.readCycle > 0 && dt < uint32(s.readCycle) {
		return false
	}

	raw := s.port.ReadRaw()
	s.lastReadMs = now

	if s.invert {
		raw = State(s.rawStates-1) - raw
	}

	// A differing symbol opens the debounce window. The symbol is not
	// committed; lastRaw stays untouched until the confirming read.
	if !s.debouncing && s.debounce > 0 && s.lastRaw != raw {
		s.debouncing = true
		return false
	}

	s.debouncing = false
	s.lastRaw = raw

	state := raw
	if s.analyzer != nil {
		state = s.analyzer.Step(raw)
	}

	if state != s.current {
		s.previous = s.current
		s.current = state
		return true
	}
	return false
}

// State returns the current output state, or Undefined before the first
// committed read.
func (s *Switch) State() State {
	return s.current
}

// PreviousState returns the output state reported immediately before
// the current one.
func (s *Switch) PreviousState() State {
	return s.previous
}

// MappedState returns the mapping-table value for the current state.
// Without a mapping table, or while the state is Undefined, the state
// itself is returned.
func (s *Switch) MappedState() uint8 {
	return s.mapped(s.current)
}

// MappedPreviousState returns the mapping-table value for the previous
// state, with the same pass-through rules as MappedState.
func (s *Switch) MappedPreviousState() uint8 {
	return s.mapped(s.previous)
}

func (s *Switch) mapped(st State) uint8 {
	if s.mapping == nil || uint8(st) >= s.numStates {
		return uint8(st)
	}
	return s.mapping[st]
}

// SetMapping overwrites one mapping-table entry. Calls with mapping
// disabled or an out-of-range state are ignored.
func (s *Switch) SetMapping(state State, value uint8) {
	if s.mapping == nil || uint8(state) >= s.numStates {
		return
	}
	s.mapping[state] = value
}

// States returns the clamped output alphabet size.
func (s *Switch) States() uint8 {
	return s.numStates
}

// RawStates returns the raw alphabet size.
func (s *Switch) RawStates() uint8 {
	return s.rawStates
}

// ReadCycleMillis returns the effective read cycle, which is the
// analyzer's hint when an analyzer is attached.
func (s *Switch) ReadCycleMillis() uint8 {
	return s.readCycle
}

// Reset restores the switch to its just-constructed baseline: states
// back to Undefined, debounce phase and sample timer cleared, and the
// attached analyzer reset. The mapping table is left as configured.
func (s *Switch) Reset() {
	s.current = Undefined
	s.previous = Undefined
	s.lastRaw = Undefined
	s.lastReadMs = 0
	s.debouncing = false

	if s.analyzer != nil {
		s.analyzer.Reset()
	}
}
