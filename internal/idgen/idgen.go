// Package idgen issues unique 64-bit record identifiers.
//
// Collection metadata keys ids by creation time in epoch milliseconds, so the
// production generator derives ids from the wall clock. Creating several
// records within the same millisecond (hierarchical deck creation does this)
// must still yield distinct ids, so the generator bumps past the last issued
// value instead of re-reading the clock blindly.
package idgen

import (
	"sync"
	"time"
)

// Generator issues unique 64-bit ids.
type Generator interface {
	// Next returns a single fresh id.
	Next() int64
	// NextN returns n distinct fresh ids in ascending order.
	NextN(n int) []int64
}

type clockGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewClock returns a Generator deriving ids from wall-clock milliseconds.
func NewClock() Generator {
	return &clockGenerator{now: time.Now}
}

func (g *clockGenerator) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.next()
}

func (g *clockGenerator) NextN(n int) []int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	ids := make([]int64, n)
	for i := range ids {
		ids[i] = g.next()
	}
	return ids
}

func (g *clockGenerator) next() int64 {
	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}

// Sequence is a deterministic Generator for tests, counting up from a base.
type Sequence struct {
	mu   sync.Mutex
	next int64
}

// NewSequence returns a Sequence starting at base.
func NewSequence(base int64) *Sequence {
	return &Sequence{next: base}
}

func (s *Sequence) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	return id
}

func (s *Sequence) NextN(n int) []int64 {
	ids := make([]int64, n)
	for i := range ids {
		ids[i] = s.Next()
	}
	return ids
}
