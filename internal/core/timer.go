package core

import "time"

// FixedStep helps run simulation updates at a steady ticks-per-second rate,
// independent of how often the caller polls it.
type FixedStep struct {
	step        time.Duration
	accumulator time.Duration
	last        time.Time
	now         func() time.Time
}

// NewFixedStep constructs a FixedStep controller targeting the given TPS.
func NewFixedStep(tps int) *FixedStep {
	fs := &FixedStep{now: time.Now}
	fs.SetTPS(tps)
	fs.accumulator = fs.step
	return fs
}

// MaxTPS caps the tick rate so the step never rounds down to zero.
const MaxTPS = 1000

// SetTPS changes the tick rate, clamped to (0, MaxTPS]. It is safe to call
// from the main loop.
func (f *FixedStep) SetTPS(tps int) {
	if tps <= 0 {
		tps = 60
	}
	tps = min(tps, MaxTPS)
	f.step = time.Second / time.Duration(tps)
}

// TPS reports the configured tick rate.
func (f *FixedStep) TPS() int {
	if f.step <= 0 {
		return MaxTPS
	}
	return int(time.Second / f.step)
}

// Due returns how many ticks have accumulated since the previous call, capped
// at maxSteps so a stalled frame cannot trigger an unbounded catch-up.
func (f *FixedStep) Due(maxSteps int) int {
	now := f.now()
	if f.last.IsZero() {
		f.last = now
	}
	f.accumulator += now.Sub(f.last)
	f.last = now
	n := 0
	for f.accumulator >= f.step && n < maxSteps {
		f.accumulator -= f.step
		n++
	}
	if n == maxSteps {
		f.accumulator = 0
	}
	return n
}
