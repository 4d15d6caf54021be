// Package gpio implements the engine's port contract on real hardware.
// The real implementation uses the Linux GPIO character device and
// supports one input pin (2-symbol raw alphabet) or two pins (4-symbol
// quadrature alphabet, bit i of the symbol from pin i). The fake
// implementation allows testing without hardware.
//
// The engine's port contract has no error channel, so read failures are
// absorbed here: the reader keeps delivering the last good symbol and
// records the failure for the daemon to inspect via Err.
package gpio

// Default pin assignments (BCM numbering).
const (
	DefaultPin  = 26 // switch input, quadrature phase A in rotary mode
	DefaultPinB = 16 // quadrature phase B in rotary mode
)
