package sequence

import (
	"fmt"
	"strconv"
	"sync"
	"time"
)

// Generator produces unique human-displayable document numbers.
type Generator interface {
	Next() string
}

// ClockGenerator derives numbers from a high-resolution clock encoded in
// base36, prefixed for display (e.g. ADM-lxk2p91v4). The clock is injectable
// so tests stay deterministic.
type ClockGenerator struct {
	prefix string
	now    func() time.Time

	mu   sync.Mutex
	last int64
}

// NewClockGenerator builds a generator with the given display prefix. A nil
// clock defaults to time.Now.
func NewClockGenerator(prefix string, now func() time.Time) *ClockGenerator {
	if now == nil {
		now = time.Now
	}
	return &ClockGenerator{prefix: prefix, now: now}
}

// Next returns the next number. Values are strictly monotonic: if two calls
// land on the same clock reading the later one is bumped forward, so
// collisions cannot occur within a process.
func (g *ClockGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ts := g.now().UnixMicro()
	if ts <= g.last {
		ts = g.last + 1
	}
	g.last = ts

	return fmt.Sprintf("%s-%s", g.prefix, strconv.FormatInt(ts, 36))
}
