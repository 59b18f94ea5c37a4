// Package session holds the per-view lifecycle helpers: a guard that discards results
// arriving after their view is gone, and the single-slot cooking timer.
package session

import "sync"

// Guard tracks whether the owner of an in-flight request still wants its result.
// In-flight calls are never cancelled; their results are dropped instead.
type Guard struct {
	mu     sync.Mutex
	closed bool
	seq    uint64
}

// NewGuard returns an open Guard.
func NewGuard() *Guard {
	return &Guard{}
}

// Ticket identifies one request started under a Guard.
type Ticket struct {
	g   *Guard
	seq uint64
}

// Begin starts a request. Any earlier ticket becomes stale.
func (g *Guard) Begin() Ticket {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return Ticket{g: g, seq: g.seq}
}

// Apply runs fn if the guard is open and no newer request has begun. It reports
// whether fn ran. fn runs under the guard's lock and must not call back into it.
func (t Ticket) Apply(fn func()) bool {
	t.g.mu.Lock()
	defer t.g.mu.Unlock()
	if t.g.closed || t.seq != t.g.seq {
		return false
	}
	fn()
	return true
}

// Close marks the owner as gone. Every outstanding ticket becomes stale.
func (g *Guard) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
}
