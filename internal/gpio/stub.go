//go:build !linux

package gpio

import (
	"errors"

	"github.com/sweeney/switch-monitor/internal/engine"
)

// Reader is not available on non-Linux platforms.
type Reader struct{}

// NewReader returns an error on non-Linux platforms.
func NewReader(pins ...int) (*Reader, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// ReadRaw is not implemented on non-Linux platforms.
func (r *Reader) ReadRaw() engine.State {
	return 0
}

// ConfigureDirection is not implemented on non-Linux platforms.
func (r *Reader) ConfigureDirection(inverted bool) {}

// Err reports the platform limitation.
func (r *Reader) Err() error {
	return errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (r *Reader) Close() error {
	return nil
}
