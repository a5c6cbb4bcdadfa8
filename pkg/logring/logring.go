// Package logring keeps a bounded in-memory window of formatted log lines
// and exposes a zapcore.Core that tees entries into it, so status queries
// can return recent logs without touching files.
package logring

import "sync"

const defaultCapacity = 200

// Ring fixed-capacity line buffer, oldest evicted first.
type Ring struct {
	mu    sync.RWMutex
	cap   int
	lines []string
	next  int
	full  bool
}

// New returns a ring holding up to capacity lines.
func New(capacity int) *Ring {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Ring{
		cap:   capacity,
		lines: make([]string, capacity),
	}
}

// Append adds a line, evicting the oldest when full.
func (r *Ring) Append(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lines[r.next] = line
	r.next = (r.next + 1) % r.cap
	if r.next == 0 {
		r.full = true
	}
}

// Lines returns the buffered lines in append order.
func (r *Ring) Lines() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.full {
		out := make([]string, r.next)
		copy(out, r.lines[:r.next])
		return out
	}

	out := make([]string, 0, r.cap)
	out = append(out, r.lines[r.next:]...)
	out = append(out, r.lines[:r.next]...)
	return out
}

// Len returns the number of buffered lines.
func (r *Ring) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.full {
		return r.cap
	}
	return r.next
}
