package engine

import "testing"

func TestPushDoubleLongDoubleDetected(t *testing.T) {
	clk := &testClock{}
	a := NewPushButtonDoubleLong(clk.Clock(), 400, 0, false)

	a.Step(RawOn) // t=0, first press
	clk.set(50)
	if got := a.Step(RawOff); got != PushOff {
		t.Errorf("first release: got %v, want OFF (still ambiguous)", got)
	}
	clk.set(150)
	if got := a.Step(RawOn); got != PushOff {
		t.Errorf("second press: got %v, want OFF", got)
	}
	clk.set(200)
	if got := a.Step(RawOff); got != PushDouble {
		t.Errorf("second release: got %v, want DOUBLE", got)
	}
}

func TestPushDoubleLongSingleAfterWindowExpires(t *testing.T) {
	clk := &testClock{}
	a := NewPushButtonDoubleLong(clk.Clock(), 400, 0, false)

	a.Step(RawOn)
	clk.set(50)
	a.Step(RawOff) // ambiguous gap

	clk.set(300)
	if got := a.Step(RawOff); got != PushOff {
		t.Errorf("inside the double window: got %v, want OFF", got)
	}

	// The window expires with no second press: the single fires
	// retroactively, from elapsed time alone.
	clk.set(450)
	if got := a.Step(RawOff); got != PushSingle {
		t.Errorf("window expiry: got %v, want SINGLE", got)
	}
}

func TestPushDoubleLongImmediateSingleWhenDoubleDisabled(t *testing.T) {
	clk := &testClock{}
	a := NewPushButtonDoubleLong(clk.Clock(), 0, 0, false)

	a.Step(RawOn)
	clk.set(50)
	if got := a.Step(RawOff); got != PushSingle {
		t.Errorf("release with double detection off: got %v, want SINGLE", got)
	}
}

func TestPushDoubleLongLongByTime(t *testing.T) {
	clk := &testClock{}
	a := NewPushButtonDoubleLong(clk.Clock(), 0, 300, true)

	a.Step(RawOn)
	clk.set(200)
	if got := a.Step(RawOn); got != PushOff {
		t.Errorf("held below threshold: got %v, want OFF", got)
	}

	// Reported the moment the threshold elapses, while still held.
	clk.set(350)
	if got := a.Step(RawOn); got != PushLong {
		t.Errorf("threshold elapsed: got %v, want LONG", got)
	}

	clk.set(400)
	if got := a.Step(RawOn); got != PushOff {
		t.Errorf("still held after LONG: got %v, want OFF", got)
	}
	clk.set(500)
	if got := a.Step(RawOff); got != PushOff {
		t.Errorf("release after LONG: got %v, want OFF (already reported)", got)
	}
}

func TestPushDoubleLongLongByRelease(t *testing.T) {
	clk := &testClock{}
	a := NewPushButtonDoubleLong(clk.Clock(), 0, 300, false)

	a.Step(RawOn)
	clk.set(350)
	if got := a.Step(RawOn); got != PushOff {
		t.Errorf("held past threshold: got %v, want OFF (reported at release)", got)
	}
	clk.set(400)
	if got := a.Step(RawOff); got != PushLong {
		t.Errorf("release: got %v, want LONG", got)
	}
}

// A second press arriving after the double window closed reports the
// pending single and immediately starts a new sequence from that press.
func TestPushDoubleLongLateSecondPressRestartsSequence(t *testing.T) {
	clk := &testClock{}
	a := NewPushButtonDoubleLong(clk.Clock(), 400, 0, false)

	a.Step(RawOn)
	clk.set(50)
	a.Step(RawOff)

	clk.set(500)
	if got := a.Step(RawOn); got != PushSingle {
		t.Errorf("late second press: got %v, want SINGLE (retroactive)", got)
	}

	clk.set(560)
	a.Step(RawOff) // gap of the new sequence
	clk.set(1000)
	if got := a.Step(RawOff); got != PushSingle {
		t.Errorf("new sequence expiry: got %v, want SINGLE", got)
	}
}

func TestPushDoubleLongReadCycleHint(t *testing.T) {
	clk := &testClock{}

	a := NewPushButtonDoubleLong(clk.Clock(), 400, 600, false)
	if got := a.ReadCycleMillis(); got != 30 {
		t.Errorf("hint: got %d, want 30", got)
	}

	// The hint is capped to its byte range for very coarse windows.
	a = NewPushButtonDoubleLong(clk.Clock(), 65535, 0, false)
	if got := a.ReadCycleMillis(); got != 255 {
		t.Errorf("capped hint: got %d, want 255", got)
	}
}

func TestPushDoubleLongAlphabets(t *testing.T) {
	clk := &testClock{}
	a := NewPushButtonDoubleLong(clk.Clock(), 400, 600, false)
	if a.OutputStates() != 4 || a.RawStates() != 2 {
		t.Errorf("alphabets: got %d/%d, want 4/2", a.OutputStates(), a.RawStates())
	}
}

// Driven through a Switch: the engine turns the analyzer outputs into
// at most one reported change per completed sequence.
func TestPushDoubleLongThroughEngine(t *testing.T) {
	clk := &testClock{}
	a := NewPushButtonDoubleLong(clk.Clock(), 400, 0, false)
	pin := &scriptPin{samples: []State{
		RawOff, RawOn, RawOff, RawOn, RawOff,
	}}
	sw := New(pin, clk.Clock(), Config{Analyzer: a})

	var changes []State
	for _, at := range []uint32{20, 70, 120, 220, 270} {
		clk.set(at)
		if sw.Poll() {
			changes = append(changes, sw.State())
		}
	}

	want := []State{PushOff, PushDouble}
	if len(changes) != len(want) {
		t.Fatalf("changes: got %v, want %v", changes, want)
	}
	for i := range want {
		if changes[i] != want[i] {
			t.Errorf("change %d: got %v, want %v", i, changes[i], want[i])
		}
	}
}
