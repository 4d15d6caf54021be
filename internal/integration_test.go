package internal

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/sweeney/switch-monitor/internal/engine"
	"github.com/sweeney/switch-monitor/internal/gpio"
	"github.com/sweeney/switch-monitor/internal/mqtt"
)

// millisClock is a hand-advanced millisecond clock shared by the engine
// and its analyzer.
type millisClock struct{ ms uint32 }

func (c *millisClock) now() uint32 { return c.ms }

// publishChange mirrors the daemon's poll step: poll once at the given
// time and publish an event if the state changed.
func publishChange(t *testing.T, sw *engine.Switch, clk *millisClock, ms uint32, label func(engine.State) string, pub *mqtt.FakePublisher, start time.Time) {
	t.Helper()
	clk.ms = ms
	if !sw.Poll() {
		return
	}
	event := mqtt.Event{
		Timestamp: start.Add(time.Duration(ms) * time.Millisecond),
		Switch:    "test",
		State:     label(sw.State()),
		Previous:  label(sw.PreviousState()),
		Value:     uint8(sw.State()),
		Mapped:    sw.MappedState(),
	}
	if err := pub.Publish(event); err != nil {
		t.Fatalf("publish at %dms: %v", ms, err)
	}
}

// TestIntegrationPushSequenceFullFlow tests the complete flow from pin
// samples to MQTT payloads using fakes: a debounced push button with the
// single/continuous analyzer, driven through a tap and a long hold.
func TestIntegrationPushSequenceFullFlow(t *testing.T) {
	// One entry per committed read. Debounce is 5ms and the analyzer asks
	// for a 5ms read cycle, so polls spaced 10ms or more apart all read.
	samples := []engine.State{
		0, 0, // baseline, second read confirms the debounce window
		1, 1, // press (tap)
		0, 0, // release within 500ms -> SINGLE
		0,    // idle -> back to OFF
		1, 1, // press again (hold)
		1, 1, 1, 1, // still held, approaching the 500ms threshold
		1, 1, 1, // held past threshold: CONT_A / CONT_B / CONT_A
		0, 0, // release -> OFF, no SINGLE after a long hold
	}
	pin := gpio.NewFakePin(samples...)
	clk := &millisClock{}
	analyzer := engine.NewPushButtonRepeat(clk.now, 500, 100)
	sw := engine.New(pin, clk.now, engine.Config{
		Debounce: 5,
		Analyzer: analyzer,
	})
	pub := mqtt.NewFakePublisher()
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	pollTimes := []uint32{
		10, 20, // baseline committed at 20ms
		30, 40, // press committed at 40ms
		130, 140, // release committed at 140ms -> SINGLE
		150, // SINGLE decays to OFF
		210, 220, // second press committed at 220ms
		320, 420, 520, 620, // held; threshold crossed 720ms-220ms=500ms
		720, 820, 920, // continuous heartbeat
		930, 940, // release committed at 940ms
	}
	for _, ms := range pollTimes {
		publishChange(t, sw, clk, ms, analyzer.StateName, pub, start)
	}

	wantStates := []string{"OFF", "SINGLE", "OFF", "CONT_A", "CONT_B", "CONT_A", "OFF"}
	if len(pub.Events) != len(wantStates) {
		t.Fatalf("expected %d events, got %d: %+v", len(wantStates), len(pub.Events), pub.Events)
	}
	for i, want := range wantStates {
		if pub.Events[i].State != want {
			t.Errorf("event %d: State: got %q, want %q", i, pub.Events[i].State, want)
		}
	}
	if pub.Events[0].Previous != "UNDEFINED" {
		t.Errorf("event 0: Previous: got %q, want UNDEFINED", pub.Events[0].Previous)
	}
	if pub.Events[1].Previous != "OFF" {
		t.Errorf("event 1: Previous: got %q, want OFF", pub.Events[1].Previous)
	}

	// Verify JSON payloads
	for i, payload := range pub.Payloads {
		var parsed mqtt.Payload
		if err := json.Unmarshal(payload, &parsed); err != nil {
			t.Errorf("payload %d: invalid JSON: %v", i, err)
		}
		if parsed.Switch.Timestamp == "" {
			t.Errorf("payload %d: missing timestamp", i)
		}
		if parsed.Switch.Name != "test" {
			t.Errorf("payload %d: Name: got %q, want test", i, parsed.Switch.Name)
		}
		if parsed.Switch.State == "" {
			t.Errorf("payload %d: missing state", i)
		}
	}
}

// TestIntegrationDebounceRejectsGlitch verifies a one-sample glitch is
// absorbed by the debounce resample and never reaches MQTT.
func TestIntegrationDebounceRejectsGlitch(t *testing.T) {
	samples := []engine.State{
		0, 0, // baseline
		1,    // glitch opens the debounce window
		0, 0, // resample reads the old level again
	}
	pin := gpio.NewFakePin(samples...)
	clk := &millisClock{}
	sw := engine.New(pin, clk.now, engine.Config{States: 2, Debounce: 5})
	pub := mqtt.NewFakePublisher()
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	label := func(s engine.State) string {
		if s == engine.Undefined {
			return "UNDEFINED"
		}
		return map[engine.State]string{0: "0", 1: "1"}[s]
	}
	for _, ms := range []uint32{10, 20, 30, 40, 50} {
		publishChange(t, sw, clk, ms, label, pub, start)
	}

	// Only the baseline commit, nothing from the glitch.
	if len(pub.Events) != 1 {
		t.Fatalf("expected 1 event, got %d: %+v", len(pub.Events), pub.Events)
	}
	if pub.Events[0].State != "0" {
		t.Errorf("State: got %q, want %q", pub.Events[0].State, "0")
	}
}

// TestIntegrationRotaryDetent runs a full quadrature detent from two
// fake pins through DualPin and the rotary analyzer to MQTT.
func TestIntegrationRotaryDetent(t *testing.T) {
	pinA := gpio.NewFakePin(0, 1, 1, 0, 0, 0)
	pinB := gpio.NewFakePin(0, 0, 1, 1, 0, 0)
	port := &engine.DualPin{A: pinA, B: pinB}
	clk := &millisClock{}
	analyzer := engine.NewRotaryEncoder()
	sw := engine.New(port, clk.now, engine.Config{Analyzer: analyzer})
	pub := mqtt.NewFakePublisher()
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	for _, ms := range []uint32{10, 20, 30, 40, 50, 60} {
		publishChange(t, sw, clk, ms, analyzer.StateName, pub, start)
	}

	wantStates := []string{"OFF", "RIGHT", "OFF"}
	if len(pub.Events) != len(wantStates) {
		t.Fatalf("expected %d events, got %d: %+v", len(wantStates), len(pub.Events), pub.Events)
	}
	for i, want := range wantStates {
		if pub.Events[i].State != want {
			t.Errorf("event %d: State: got %q, want %q", i, pub.Events[i].State, want)
		}
	}
}
