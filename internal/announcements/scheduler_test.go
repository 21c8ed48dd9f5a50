package announcements

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestScheduleFiresOnceDespiteRepeatedCalls(t *testing.T) {
	s := NewScheduler()
	defer s.Close()

	var fired atomic.Int32
	for i := 0; i < 5; i++ {
		s.Schedule("alice", "banner-1", 20*time.Millisecond, func() { fired.Add(1) })
	}

	time.Sleep(150 * time.Millisecond)
	if got := fired.Load(); got != 1 {
		t.Fatalf("expected exactly 1 callback, got %d", got)
	}
	if s.Pending("alice", "banner-1") {
		t.Fatal("timer slot must clear after firing")
	}
}

func TestScheduleTracksViewersIndependently(t *testing.T) {
	s := NewScheduler()
	defer s.Close()

	var alice, bob atomic.Int32
	s.Schedule("alice", "banner-1", 20*time.Millisecond, func() { alice.Add(1) })
	s.Schedule("bob", "banner-1", 20*time.Millisecond, func() { bob.Add(1) })

	time.Sleep(150 * time.Millisecond)
	if alice.Load() != 1 || bob.Load() != 1 {
		t.Fatalf("each viewer's timer must fire once, got alice=%d bob=%d", alice.Load(), bob.Load())
	}
}

func TestScheduleAgainAfterFiring(t *testing.T) {
	s := NewScheduler()
	defer s.Close()

	var fired atomic.Int32
	s.Schedule("alice", "banner-2", 10*time.Millisecond, func() { fired.Add(1) })
	time.Sleep(80 * time.Millisecond)
	s.Schedule("alice", "banner-2", 10*time.Millisecond, func() { fired.Add(1) })
	time.Sleep(80 * time.Millisecond)

	if got := fired.Load(); got != 2 {
		t.Fatalf("expected 2 callbacks across separate displays, got %d", got)
	}
}

func TestCancelStopsPendingTimer(t *testing.T) {
	s := NewScheduler()
	defer s.Close()

	var fired atomic.Int32
	s.Schedule("alice", "banner-3", 30*time.Millisecond, func() { fired.Add(1) })
	s.Cancel("alice", "banner-3")
	s.Cancel("alice", "unknown")

	time.Sleep(100 * time.Millisecond)
	if fired.Load() != 0 {
		t.Fatal("cancelled timer must not fire")
	}
}

func TestCancelAllStopsEveryViewer(t *testing.T) {
	s := NewScheduler()
	defer s.Close()

	var fired atomic.Int32
	s.Schedule("alice", "banner-6", 30*time.Millisecond, func() { fired.Add(1) })
	s.Schedule("bob", "banner-6", 30*time.Millisecond, func() { fired.Add(1) })
	s.Schedule("bob", "banner-7", 30*time.Millisecond, func() { fired.Add(1) })
	s.CancelAll("banner-6")

	time.Sleep(100 * time.Millisecond)
	if got := fired.Load(); got != 1 {
		t.Fatalf("only the unrelated timer may fire, got %d callbacks", got)
	}
	if s.Pending("bob", "banner-6") {
		t.Fatal("cancelled slot must clear")
	}
}

func TestCloseRefusesNewTimers(t *testing.T) {
	s := NewScheduler()

	var fired atomic.Int32
	s.Schedule("alice", "banner-4", 30*time.Millisecond, func() { fired.Add(1) })
	s.Close()
	s.Schedule("alice", "banner-5", time.Millisecond, func() { fired.Add(1) })

	time.Sleep(100 * time.Millisecond)
	if fired.Load() != 0 {
		t.Fatal("no timer may fire after Close")
	}
}
