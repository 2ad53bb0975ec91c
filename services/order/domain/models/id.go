package models

import (
	"strconv"
	"sync"
	"time"
)

// IDGenerator issues timestamp-derived order ids. Ids are the creation time
// in microseconds since the epoch; when the clock has not advanced past the
// last issued value the generator steps forward by one microsecond, so ids
// and creation times are unique and strictly increasing.
type IDGenerator struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

// NewIDGenerator returns a generator reading the given clock. A nil clock
// uses time.Now.
func NewIDGenerator(now func() time.Time) *IDGenerator {
	if now == nil {
		now = time.Now
	}
	return &IDGenerator{now: now}
}

// Next returns a fresh id and the creation timestamp it encodes.
func (g *IDGenerator) Next() (string, time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()

	t := g.now().UTC().Truncate(time.Microsecond)
	if !t.After(g.last) {
		t = g.last.Add(time.Microsecond)
	}
	g.last = t
	return strconv.FormatInt(t.UnixMicro(), 10), t
}

// Observe raises the generator's floor to t so ids issued afterwards sort
// after an order created at t. Used at startup with the newest stored order.
func (g *IDGenerator) Observe(t time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()

	t = t.UTC().Truncate(time.Microsecond)
	if t.After(g.last) {
		g.last = t
	}
}
