package scheduler

import (
	"sync"
	"time"
)

// StopFunc cancels a recurring job. Idempotent.
type StopFunc func()

// Every fires fn on its own goroutine once per interval until stopped. A
// non-positive interval or nil fn yields a no-op job, so a disabled schedule
// needs no special-casing at the call site.
func Every(interval time.Duration, fn func()) StopFunc {
	if interval <= 0 || fn == nil {
		return func() {}
	}

	ticker := time.NewTicker(interval)
	stopCh := make(chan struct{})
	var once sync.Once

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stopCh:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()

	return func() {
		once.Do(func() { close(stopCh) })
	}
}
