package scheduler

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestEveryRunsAndStops(t *testing.T) {
	var ticks atomic.Int32
	stop := Every(10*time.Millisecond, func() { ticks.Add(1) })

	deadline := time.After(2 * time.Second)
	for ticks.Load() < 2 {
		select {
		case <-deadline:
			t.Fatal("ticker never fired")
		case <-time.After(5 * time.Millisecond):
		}
	}

	stop()
	stop() // stopping twice is fine
	after := ticks.Load()
	time.Sleep(50 * time.Millisecond)
	if ticks.Load() > after+1 {
		t.Error("ticker kept firing after stop")
	}
}

func TestEveryRejectsBadArguments(t *testing.T) {
	stop := Every(0, func() {})
	stop()
	stop = Every(time.Second, nil)
	stop()
}
