// Package status provides a thread-safe status tracker for the
// switch-monitor daemon. It is designed to be read by HTTP handlers
// while the poll loop writes to it.
package status

import (
	"sync"
	"time"
)

// NetworkInfo contains network state reported by the host helper.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	Name        string // switch name used in events
	Mode        string // analyzer mode
	Pins        string // configured pin numbers, display form
	PollMs      int64
	DebounceMs  int64
	ReadCycleMs int64 // effective read cycle, analyzer hint included
	HeartbeatMs int64
	Invert      bool
	Broker      string
	HTTPAddr    string
}

// Counts tracks state-change activity since startup.
type Counts struct {
	// Changes is the total number of reported state changes.
	Changes int

	// ByState counts changes keyed by the resulting state label.
	ByState map[string]int
}

// clone returns an independent copy, so a Snapshot stays valid after
// the lock is released.
func (c Counts) clone() Counts {
	out := Counts{Changes: c.Changes}
	if c.ByState != nil {
		out.ByState = make(map[string]int, len(c.ByState))
		for k, v := range c.ByState {
			out.ByState[k] = v
		}
	}
	return out
}

// Snapshot is a point-in-time view of daemon state. It is a value type
// with its own Counts copy — safe to use after the lock is released.
type Snapshot struct {
	State         string // current output state label
	Previous      string // prior output state label
	Mapped        uint8  // mapping-table value of the current state
	Ready         bool   // true once the first state has been committed
	Counts        Counts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets the state labels, ready flag, mapped value, and counts.
// Called from the poll loop; the counts are copied in.
func (t *Tracker) Update(state, previous string, ready bool, mapped uint8, counts Counts) {
	t.mu.Lock()
	t.snap.State = state
	t.snap.Previous = previous
	t.snap.Ready = ready
	t.snap.Mapped = mapped
	t.snap.Counts = counts.clone()
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	s.Counts = t.snap.Counts.clone()
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
