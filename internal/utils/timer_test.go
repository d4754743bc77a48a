package utils

import (
	"testing"
	"time"
)

func TestTimer_StopReturnsElapsed(t *testing.T) {
	timer := NewTimer()
	time.Sleep(time.Millisecond)
	d := timer.Stop()

	if d <= 0 {
		t.Errorf("Stop() = %v, want positive duration", d)
	}
	if timer.GetDuration() != d {
		t.Errorf("GetDuration() = %v, want %v", timer.GetDuration(), d)
	}
	if timer.Seconds() != d.Seconds() {
		t.Errorf("Seconds() = %v, want %v", timer.Seconds(), d.Seconds())
	}
}

func TestTimer_GetDurationBeforeStop(t *testing.T) {
	timer := NewTimer()
	if timer.GetDuration() != 0 {
		t.Errorf("GetDuration() before Stop = %v, want 0", timer.GetDuration())
	}
}
