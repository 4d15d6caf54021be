package gpio

import (
	"github.com/sweeney/switch-monitor/internal/engine"
)

// FakePin is a test double port that returns scripted raw symbols.
// Each ReadRaw consumes the next sample; when the script is exhausted
// the last sample repeats. Implements engine.Port.
type FakePin struct {
	// Samples contains the scripted raw symbols to return.
	Samples []engine.State

	// index tracks the current position in Samples.
	index int

	// Reads counts ReadRaw calls.
	Reads int

	// Configured and Inverted record the last ConfigureDirection call.
	Configured bool
	Inverted   bool
}

// NewFakePin creates a FakePin with the given scripted symbols.
func NewFakePin(samples ...engine.State) *FakePin {
	return &FakePin{Samples: samples}
}

// ReadRaw returns the next scripted symbol.
func (f *FakePin) ReadRaw() engine.State {
	f.Reads++
	if len(f.Samples) == 0 {
		return 0
	}
	s := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	return s
}

// ConfigureDirection records the requested direction.
func (f *FakePin) ConfigureDirection(inverted bool) {
	f.Configured = true
	f.Inverted = inverted
}

// Reset rewinds the script.
func (f *FakePin) Reset() {
	f.index = 0
	f.Reads = 0
	f.Configured = false
	f.Inverted = false
}
