package core

import (
	"testing"
	"time"
)

func TestFixedStepDueCountsElapsedTicks(t *testing.T) {
	clock := time.Unix(0, 0)
	fs := NewFixedStep(10)
	fs.now = func() time.Time { return clock }

	if got := fs.Due(8); got != 1 {
		t.Fatalf("first poll should release the primed tick, got %d", got)
	}

	clock = clock.Add(350 * time.Millisecond)
	if got := fs.Due(8); got != 3 {
		t.Fatalf("expected 3 ticks after 350ms at 10 TPS, got %d", got)
	}

	clock = clock.Add(40 * time.Millisecond)
	if got := fs.Due(8); got != 0 {
		t.Fatalf("expected leftover 50ms+40ms to stay below one tick, got %d", got)
	}

	clock = clock.Add(10 * time.Second)
	if got := fs.Due(4); got != 4 {
		t.Fatalf("expected catch-up to be capped at 4, got %d", got)
	}
	if got := fs.Due(4); got != 0 {
		t.Fatalf("capped catch-up must drop the backlog, got %d", got)
	}
}

func TestFixedStepSetTPSDefaults(t *testing.T) {
	fs := NewFixedStep(0)
	if fs.TPS() != 60 {
		t.Fatalf("expected default 60 TPS, got %d", fs.TPS())
	}
	fs.SetTPS(25)
	if fs.TPS() != 25 {
		t.Fatalf("expected 25 TPS, got %d", fs.TPS())
	}
}

func TestFixedStepTPSIsClamped(t *testing.T) {
	fs := NewFixedStep(30)
	for i := 0; i < 40; i++ {
		fs.SetTPS(fs.TPS() * 2)
	}
	if fs.TPS() != MaxTPS {
		t.Fatalf("expected doubling to stop at %d TPS, got %d", MaxTPS, fs.TPS())
	}

	var zero FixedStep
	if zero.TPS() != MaxTPS {
		t.Fatalf("zero-value FixedStep should report %d TPS, got %d", MaxTPS, zero.TPS())
	}
}
