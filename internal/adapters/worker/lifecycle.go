package worker

import (
	"sync"
	"time"
)

// Lifecycle fires onIdle once a worker has been idle for the timeout.
// A zero timeout disables the idle shutdown.
type Lifecycle struct {
	mu           sync.Mutex
	timer        *time.Timer
	lastActivity time.Time
	timeout      time.Duration
}

// NewLifecycle creates a stopped lifecycle. Call Idle to start the countdown.
func NewLifecycle(timeout time.Duration, onIdle func()) *Lifecycle {
	l := &Lifecycle{
		lastActivity: time.Now(),
		timeout:      timeout,
	}
	if timeout > 0 {
		l.timer = time.AfterFunc(timeout, onIdle)
		l.timer.Stop()
	}
	return l
}

// Busy stops the countdown while a request is in flight.
func (l *Lifecycle) Busy() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastActivity = time.Now()
	if l.timer != nil {
		l.timer.Stop()
	}
}

// Idle restarts the countdown.
func (l *Lifecycle) Idle() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastActivity = time.Now()
	if l.timer != nil {
		l.timer.Reset(l.timeout)
	}
}

// IdleRemaining returns the duration until the idle shutdown.
func (l *Lifecycle) IdleRemaining() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	remaining := l.timeout - time.Since(l.lastActivity)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Stop cancels the countdown for good.
func (l *Lifecycle) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.timer != nil {
		l.timer.Stop()
	}
}
