// Package recovery reconstructs partial customer state from dropped
// calls and arms supervised callbacks to finish the job.
package recovery

import (
	"sync"
	"time"
)

// CallbackRegistry tracks at most one armed callback timer per phone
// number, process-wide. Timers outlive the call session that armed them.
type CallbackRegistry struct {
	delay time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// NewCallbackRegistry creates a registry with the given fire delay.
func NewCallbackRegistry(delay time.Duration) *CallbackRegistry {
	return &CallbackRegistry{
		delay:   delay,
		pending: make(map[string]*time.Timer),
	}
}

// Arm schedules fire to run after the registry delay. Arming a number
// that already has a pending callback replaces the old timer, keeping
// the one-per-number invariant.
func (r *CallbackRegistry) Arm(number string, fire func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.pending[number]; ok {
		t.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(r.delay, func() {
		// A timer whose Stop lost the race against firing still lands
		// here; only the timer that owns the entry may remove it and run.
		r.mu.Lock()
		if r.pending[number] != timer {
			r.mu.Unlock()
			return
		}
		delete(r.pending, number)
		r.mu.Unlock()
		fire()
	})
	r.pending[number] = timer
}

// Cancel disarms a pending callback. Returns whether one was pending.
func (r *CallbackRegistry) Cancel(number string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.pending[number]
	if !ok {
		return false
	}
	t.Stop()
	delete(r.pending, number)
	return true
}

// Pending reports whether a callback is armed for the number.
func (r *CallbackRegistry) Pending(number string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.pending[number]
	return ok
}
