package clock

import "time"

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// FixedClock returns a settable instant, for tests.
type FixedClock struct {
	FixedNow time.Time
}

func (f *FixedClock) Now() time.Time {
	return f.FixedNow
}

func (f *FixedClock) SetNow(now time.Time) {
	f.FixedNow = now
}

func (f *FixedClock) Advance(d time.Duration) {
	f.FixedNow = f.FixedNow.Add(d)
}
