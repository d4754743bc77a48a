package utils

import "time"

// Timer measures how long one extraction or repair call took.
// [NewTimer] starts it; [Timer.Stop] freezes the measurement.
type Timer struct {
	startTime time.Time
	duration  time.Duration
}

// NewTimer returns a running Timer.
func NewTimer() *Timer {
	return &Timer{startTime: time.Now()}
}

// Stop freezes the elapsed time and returns it. Calling Stop again measures
// from the original start.
func (t *Timer) Stop() time.Duration {
	t.duration = time.Since(t.startTime)
	return t.duration
}

// GetDuration returns the duration captured by the last Stop, or zero.
func (t *Timer) GetDuration() time.Duration {
	return t.duration
}

// Seconds returns the captured duration in seconds, the unit used for
// duration histograms.
func (t *Timer) Seconds() float64 {
	return t.duration.Seconds()
}
