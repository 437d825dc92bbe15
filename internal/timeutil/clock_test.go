package timeutil

import (
	"testing"
	"time"
)

func TestRealClockNow(t *testing.T) {
	c := RealClock{}
	before := time.Now()
	got := c.Now()
	after := time.Now()

	if got.Before(before) || got.After(after) {
		t.Errorf("RealClock.Now() = %v, want between %v and %v", got, before, after)
	}
}

func TestRealClockSince(t *testing.T) {
	c := RealClock{}
	start := c.Now().Add(-time.Second)
	if d := c.Since(start); d < time.Second {
		t.Errorf("Since() = %v, want >= 1s", d)
	}
}

func TestMockClockStep(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMockClock(base, 100*time.Microsecond)

	first := c.Now()
	second := c.Now()
	if !first.Equal(base) {
		t.Errorf("first Now() = %v, want %v", first, base)
	}
	if got, want := second.Sub(first), 100*time.Microsecond; got != want {
		t.Errorf("step = %v, want %v", got, want)
	}
}

func TestMockClockFrozenWithoutStep(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMockClock(base, 0)

	if !c.Now().Equal(base) || !c.Now().Equal(base) {
		t.Error("zero-step clock should stay frozen across Now calls")
	}

	c.Advance(time.Second)
	if got := c.Now(); !got.Equal(base.Add(time.Second)) {
		t.Errorf("after Advance, Now() = %v, want %v", got, base.Add(time.Second))
	}
}

func TestMockClockSleep(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMockClock(base, 0)

	c.Sleep(50 * time.Millisecond)
	c.Sleep(25 * time.Millisecond)

	sleeps := c.Sleeps()
	if len(sleeps) != 2 || sleeps[0] != 50*time.Millisecond || sleeps[1] != 25*time.Millisecond {
		t.Errorf("Sleeps() = %v, want [50ms 25ms]", sleeps)
	}
	if got := c.Now(); !got.Equal(base.Add(75 * time.Millisecond)) {
		t.Errorf("Sleep should advance the clock; Now() = %v", got)
	}
}
