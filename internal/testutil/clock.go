package testutil

import (
	"fmt"
	"sync"
	"time"
)

// fixedTimeOfDay is the wall time every day-based stub clock starts at.
const fixedTimeOfDay = 10*time.Hour + 30*time.Minute

// StubClock is a settable riffbox.Clock. Collection titles, inbox titles
// and store file names all derive from it. Safe for concurrent use.
type StubClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewStubClock creates a StubClock set to t.
func NewStubClock(t time.Time) *StubClock {
	return &StubClock{now: t}
}

// ClockOn returns a StubClock at 10:30:00 UTC on day, given as YYYY-MM-DD.
// It panics on a malformed day.
func ClockOn(day string) *StubClock {
	d, err := time.Parse(time.DateOnly, day)
	if err != nil {
		panic(fmt.Sprintf("testutil.ClockOn(%q): %v", day, err))
	}
	return NewStubClock(d.Add(fixedTimeOfDay))
}

// FixedClock returns the clock behind "Collection - 2026-01-28".
func FixedClock() *StubClock {
	return ClockOn("2026-01-28")
}

func (c *StubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d, e.g. one second for a new store
// file name.
func (c *StubClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// SetDate moves the clock to another calendar day and keeps the time of
// day, so the next default or inbox title names that day.
func (c *StubClock) SetDate(year int, month time.Month, day int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, m, s := c.now.Clock()
	c.now = time.Date(year, month, day, h, m, s, c.now.Nanosecond(), c.now.Location())
}

// StubIDGenerator hands out "stub-1", "stub-2", ... in call order, shared
// between collection and video ids.
type StubIDGenerator struct {
	mu   sync.Mutex
	next int
}

func NewStubIDGenerator() *StubIDGenerator {
	return &StubIDGenerator{}
}

func (g *StubIDGenerator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("stub-%d", g.next)
}
