package models

import (
	"strconv"
	"sync"
	"testing"
	"time"
)

func TestIDGenerator_MonotonicWithFrozenClock(t *testing.T) {
	frozen := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	g := NewIDGenerator(func() time.Time { return frozen })

	var prevID int64
	var prevAt time.Time
	for i := 0; i < 100; i++ {
		id, at := g.Next()
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			t.Fatalf("id %q is not numeric: %v", id, err)
		}
		if i > 0 && (n <= prevID || !at.After(prevAt)) {
			t.Fatalf("ids not strictly increasing: %d after %d", n, prevID)
		}
		if at.UnixMicro() != n {
			t.Fatalf("id %d does not encode createdAt %v", n, at)
		}
		prevID, prevAt = n, at
	}
}

func TestIDGenerator_ClockGoingBackwards(t *testing.T) {
	times := []time.Time{
		time.Date(2025, 6, 1, 12, 0, 1, 0, time.UTC),
		time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	i := 0
	g := NewIDGenerator(func() time.Time { t := times[i]; i++; return t })

	_, first := g.Next()
	_, second := g.Next()
	if !second.After(first) {
		t.Fatalf("expected %v after %v", second, first)
	}
}

func TestIDGenerator_Observe(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	g := NewIDGenerator(func() time.Time { return now })
	g.Observe(now.Add(time.Hour))

	_, at := g.Next()
	if !at.After(now.Add(time.Hour)) {
		t.Fatalf("expected id after observed time, got %v", at)
	}

	g.Observe(now)
	_, again := g.Next()
	if !again.After(at) {
		t.Fatal("Observe with an older time must not lower the floor")
	}
}

func TestIDGenerator_ConcurrentUnique(t *testing.T) {
	g := NewIDGenerator(nil)
	var mu sync.Mutex
	seen := make(map[string]bool)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				id, _ := g.Next()
				mu.Lock()
				if seen[id] {
					t.Errorf("duplicate id %s", id)
				}
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
}

func TestIDGenerator_MicrosecondResolution(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ticks := []time.Duration{250 * time.Microsecond, 251 * time.Microsecond, 251*time.Microsecond + 900*time.Nanosecond}
	i := 0
	g := NewIDGenerator(func() time.Time {
		at := base.Add(ticks[i])
		i++
		return at
	})

	want := []string{"1748779200000250", "1748779200000251", "1748779200000252"}
	for _, w := range want {
		if id, _ := g.Next(); id != w {
			t.Fatalf("got id %s, want %s", id, w)
		}
	}
}
