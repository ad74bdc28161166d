package riffbox

import "sync"

// Process-wide fallbacks for components constructed without an explicit
// Clock or EventBus. Constructors prefer injected values; the defaults only
// fill in nil arguments.
var (
	defaultsMu   sync.RWMutex
	defaultClock Clock    = RealClock{}
	defaultBus   EventBus = DiscardBus{}
)

// DefaultClock returns the process-wide clock.
func DefaultClock() Clock {
	defaultsMu.RLock()
	defer defaultsMu.RUnlock()
	return defaultClock
}

// SetDefaultClock replaces the process-wide clock and returns a function
// restoring the previous one. Tests use it as t.Cleanup(SetDefaultClock(c)).
func SetDefaultClock(c Clock) (restore func()) {
	defaultsMu.Lock()
	prev := defaultClock
	defaultClock = c
	defaultsMu.Unlock()

	return func() {
		defaultsMu.Lock()
		defaultClock = prev
		defaultsMu.Unlock()
	}
}

// DefaultEventBus returns the process-wide event bus.
func DefaultEventBus() EventBus {
	defaultsMu.RLock()
	defer defaultsMu.RUnlock()
	return defaultBus
}

// SetDefaultEventBus replaces the process-wide event bus and returns a
// function restoring the previous one.
func SetDefaultEventBus(b EventBus) (restore func()) {
	defaultsMu.Lock()
	prev := defaultBus
	defaultBus = b
	defaultsMu.Unlock()

	return func() {
		defaultsMu.Lock()
		defaultBus = prev
		defaultsMu.Unlock()
	}
}

// clockOrDefault resolves a possibly nil clock at call time.
func clockOrDefault(c Clock) Clock {
	if c != nil {
		return c
	}
	return DefaultClock()
}

// busOrDefault resolves a possibly nil bus at call time.
func busOrDefault(b EventBus) EventBus {
	if b != nil {
		return b
	}
	return DefaultEventBus()
}
