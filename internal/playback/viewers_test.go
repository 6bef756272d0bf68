package playback

import (
	"testing"
	"time"
)

func TestTracker_countWithinWindow(t *testing.T) {
	clock := newClockAt(0)
	tr := NewTracker(15*time.Second, clock.Now)

	tr.Touch("A")

	clock.Advance(14 * time.Second)
	if n := tr.Count(); n != 1 {
		t.Errorf("count at t=14 = %d, want 1", n)
	}

	clock.Advance(2 * time.Second)
	if n := tr.Count(); n != 0 {
		t.Errorf("count at t=16 = %d, want 0", n)
	}
}

func TestTracker_touchRefreshesLastSeen(t *testing.T) {
	clock := newClockAt(0)
	tr := NewTracker(15*time.Second, clock.Now)

	tr.Touch("A")
	clock.Advance(10 * time.Second)
	tr.Touch("A")
	clock.Advance(10 * time.Second)

	// 20s since first touch, 10s since refresh: still present.
	if n := tr.Count(); n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}

func TestTracker_distinctIDs(t *testing.T) {
	clock := newClockAt(0)
	tr := NewTracker(15*time.Second, clock.Now)

	tr.Touch("A")
	tr.Touch("B")
	tr.Touch("A") // duplicate, same id
	if n := tr.Count(); n != 2 {
		t.Errorf("count = %d, want 2", n)
	}
}

func TestTracker_emptyIDGetsSynthetic(t *testing.T) {
	clock := newClockAt(0)
	tr := NewTracker(15*time.Second, clock.Now)

	id1 := tr.Touch("")
	id2 := tr.Touch("")
	if id1 == "" || id2 == "" {
		t.Fatal("synthetic ids must be non-empty")
	}
	if id1 == id2 {
		t.Error("two anonymous pings should not collide")
	}
	if n := tr.Count(); n != 2 {
		t.Errorf("count = %d, want 2", n)
	}
}

func TestTracker_evictionIsLazy(t *testing.T) {
	clock := newClockAt(0)
	tr := NewTracker(15*time.Second, clock.Now)

	tr.Touch("A")
	clock.Advance(20 * time.Second)

	// A re-touch before any Count keeps the entry alive; nothing has pruned it.
	tr.Touch("A")
	if n := tr.Count(); n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}
