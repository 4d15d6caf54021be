//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"

	"github.com/sweeney/switch-monitor/internal/engine"
)

// Reader reads one raw symbol from 1 or 2 GPIO lines. It implements
// engine.Port.
type Reader struct {
	chip  *gpiocdev.Chip
	lines []*gpiocdev.Line
	pins  []int
	last  engine.State
	err   error
}

// NewReader requests the given pins as inputs. One pin yields the
// binary raw alphabet, two pins the 4-symbol quadrature alphabet.
//
// Lines start with pull-down to match Pi boot defaults; the bias is
// switched by ConfigureDirection once the invert flag is known.
func NewReader(pins ...int) (*Reader, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	r := &Reader{chip: chip, pins: pins}
	for _, pin := range pins {
		line, err := chip.RequestLine(pin, gpiocdev.AsInput, gpiocdev.WithPullDown)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("request pin %d: %w", pin, err)
		}
		r.lines = append(r.lines, line)
	}
	return r, nil
}

// ReadRaw returns the combined raw symbol. On a read failure the last
// good symbol is returned and the error is recorded.
func (r *Reader) ReadRaw() engine.State {
	var sym engine.State
	for i, line := range r.lines {
		v, err := line.Value()
		if err != nil {
			r.err = fmt.Errorf("read pin %d: %w", r.pins[i], err)
			return r.last
		}
		if v != 0 {
			sym |= 1 << i
		}
	}
	r.err = nil
	r.last = sym
	return sym
}

// ConfigureDirection sets the line bias: pull-up for an inverted input
// (switch to ground), pull-down otherwise.
func (r *Reader) ConfigureDirection(inverted bool) {
	for i, line := range r.lines {
		var err error
		if inverted {
			err = line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullUp)
		} else {
			err = line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown)
		}
		if err != nil {
			r.err = fmt.Errorf("configure pin %d: %w", r.pins[i], err)
		}
	}
}

// Err returns the most recent read or configure failure, or nil.
func (r *Reader) Err() error {
	return r.err
}

// Close releases GPIO resources. Lines are reconfigured to input with
// pull-down (matching Pi boot defaults) before closing, so externally
// wired hardware sees a clean state across restarts.
func (r *Reader) Close() error {
	var errs []error

	for i, line := range r.lines {
		if line == nil {
			continue
		}
		if err := line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure pin %d: %w", r.pins[i], err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pin %d: %w", r.pins[i], err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
