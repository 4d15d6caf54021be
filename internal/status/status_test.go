package status

import (
	"encoding/json"
	"sync"
	"testing"
	"time"
)

func TestNewTracker(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := Config{Name: "sw1", Mode: "rotary", PollMs: 10, DebounceMs: 5, Broker: "tcp://localhost:1883", HTTPAddr: ":80"}
	tr := NewTracker(start, cfg)

	snap := tr.Snapshot()
	if !snap.StartTime.Equal(start) {
		t.Errorf("StartTime: got %v, want %v", snap.StartTime, start)
	}
	if snap.Config.Mode != "rotary" {
		t.Errorf("Config.Mode: got %q, want %q", snap.Config.Mode, "rotary")
	}
	if snap.Config.PollMs != 10 {
		t.Errorf("Config.PollMs: got %d, want 10", snap.Config.PollMs)
	}
	if snap.Ready {
		t.Error("expected Ready=false initially")
	}
	if snap.MQTTConnected {
		t.Error("expected MQTTConnected=false initially")
	}
}

func TestUpdateAndSnapshot(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	counts := Counts{Changes: 4, ByState: map[string]int{"SINGLE": 3, "LONG": 1}}
	tr.Update("SINGLE", "OFF", true, 42, counts)

	snap := tr.Snapshot()
	if snap.State != "SINGLE" {
		t.Errorf("State: got %q, want SINGLE", snap.State)
	}
	if snap.Previous != "OFF" {
		t.Errorf("Previous: got %q, want OFF", snap.Previous)
	}
	if snap.Mapped != 42 {
		t.Errorf("Mapped: got %d, want 42", snap.Mapped)
	}
	if !snap.Ready {
		t.Error("expected Ready=true")
	}
	if snap.Counts.Changes != 4 {
		t.Errorf("Counts.Changes: got %d, want 4", snap.Counts.Changes)
	}
	if snap.Counts.ByState["SINGLE"] != 3 {
		t.Errorf("ByState[SINGLE]: got %d, want 3", snap.Counts.ByState["SINGLE"])
	}
}

// A snapshot must stay valid after the tracker moves on: the counts
// map is copied, not shared.
func TestSnapshotCountsAreIndependent(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	counts := Counts{Changes: 1, ByState: map[string]int{"OFF": 1}}
	tr.Update("OFF", "UNDEFINED", true, 0, counts)

	snap := tr.Snapshot()

	counts.ByState["OFF"] = 99
	tr.Update("OFF", "UNDEFINED", true, 0, counts)

	if snap.Counts.ByState["OFF"] != 1 {
		t.Errorf("snapshot counts mutated: got %d, want 1", snap.Counts.ByState["OFF"])
	}
}

func TestSetters(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	tr.SetMQTTConnected(true)
	tr.SetNetwork(&NetworkInfo{Type: "wifi", IP: "192.168.1.10", Status: "connected"})

	snap := tr.Snapshot()
	if !snap.MQTTConnected {
		t.Error("expected MQTTConnected=true")
	}
	if snap.Network == nil || snap.Network.IP != "192.168.1.10" {
		t.Errorf("Network: got %+v", snap.Network)
	}
}

func TestUptime(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{StartTime: start, Now: start.Add(90 * time.Second)}
	if got := snap.Uptime(); got != 90*time.Second {
		t.Errorf("Uptime: got %v, want 90s", got)
	}
}

func TestFormatJSON(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tr := NewTracker(start, Config{Name: "sw1", Mode: "push-repeat", Pins: "26", Broker: "tcp://b:1883"})
	tr.Update("CONT_A", "SINGLE", true, 2, Counts{Changes: 7, ByState: map[string]int{"CONT_A": 4}})

	var sj StatusJSON
	if err := json.Unmarshal(FormatJSON(tr.Snapshot()), &sj); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if sj.Status.State != "CONT_A" {
		t.Errorf("State: got %q, want CONT_A", sj.Status.State)
	}
	if sj.Status.Previous != "SINGLE" {
		t.Errorf("Previous: got %q, want SINGLE", sj.Status.Previous)
	}
	if sj.Status.Changes != 7 {
		t.Errorf("Changes: got %d, want 7", sj.Status.Changes)
	}
	if sj.Status.ByState["CONT_A"] != 4 {
		t.Errorf("ByState[CONT_A]: got %d, want 4", sj.Status.ByState["CONT_A"])
	}
	if sj.Status.Event != "" {
		t.Errorf("Event: got %q, want empty for the web endpoint", sj.Status.Event)
	}
	if sj.Status.Config.Mode != "push-repeat" {
		t.Errorf("Config.Mode: got %q, want push-repeat", sj.Status.Config.Mode)
	}
}

func TestFormatJSONUnknownStates(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	var sj StatusJSON
	if err := json.Unmarshal(FormatJSON(tr.Snapshot()), &sj); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if sj.Status.State != "UNKNOWN" || sj.Status.Previous != "UNKNOWN" {
		t.Errorf("empty states: got %q/%q, want UNKNOWN/UNKNOWN", sj.Status.State, sj.Status.Previous)
	}
}

func TestFormatStatusEvent(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	var sj StatusJSON
	if err := json.Unmarshal(FormatStatusEvent(tr.Snapshot(), "SHUTDOWN", "SIGINT"), &sj); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if sj.Status.Event != "SHUTDOWN" {
		t.Errorf("Event: got %q, want SHUTDOWN", sj.Status.Event)
	}
	if sj.Status.Reason != "SIGINT" {
		t.Errorf("Reason: got %q, want SIGINT", sj.Status.Reason)
	}
}

func TestTrackerConcurrentAccess(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tr.Update("OFF", "SINGLE", true, 0, Counts{Changes: j, ByState: map[string]int{"OFF": j}})
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = tr.Snapshot()
			}
		}()
	}
	wg.Wait()
}
