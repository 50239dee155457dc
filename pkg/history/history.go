// Package history provides an in-memory session history with the push and
// replace semantics of a browser history stack.
//
// History implements the navigator and location contracts of the navigation
// package, so a Router can run against it in tests, in the CLI and as the
// server-side mirror of a websocket client's location.
package history

import (
	"sync"
	"time"
)

// DefaultCapacity is the number of entries kept when no capacity is given.
const DefaultCapacity = 100

// Entry is one history entry.
type Entry struct {
	Path  string
	State any
	At    time.Time
}

// History is a bounded, thread-safe history stack with a cursor. Show drops
// every entry after the cursor and appends; Replace overwrites the entry at
// the cursor. When full, the oldest entry is evicted.
type History struct {
	mu       sync.RWMutex
	entries  []Entry
	index    int // cursor; -1 when empty
	capacity int

	dispatch func(Entry)
}

// New creates a history that keeps at most capacity entries.
func New(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &History{
		entries:  make([]Entry, 0, capacity),
		index:    -1,
		capacity: capacity,
	}
}

// OnDispatch registers fn to be called for navigations made with dispatch
// set and for every Back/Forward move, the way a router re-runs its route
// handlers on popstate.
func (h *History) OnDispatch(fn func(Entry)) {
	h.mu.Lock()
	h.dispatch = fn
	h.mu.Unlock()
}

// Show pushes a new entry after the cursor.
func (h *History) Show(path string, state any, dispatch bool) error {
	h.mu.Lock()
	entry := Entry{Path: path, State: state, At: time.Now()}

	h.entries = append(h.entries[:h.index+1], entry)
	if len(h.entries) > h.capacity {
		h.entries = append(h.entries[:0], h.entries[len(h.entries)-h.capacity:]...)
	}
	h.index = len(h.entries) - 1
	fn := h.dispatchFn(dispatch)
	h.mu.Unlock()

	if fn != nil {
		fn(entry)
	}
	return nil
}

// Replace overwrites the entry at the cursor, or pushes when empty.
func (h *History) Replace(path string, state any, dispatch bool) error {
	h.mu.Lock()
	if h.index < 0 {
		h.mu.Unlock()
		return h.Show(path, state, dispatch)
	}
	entry := Entry{Path: path, State: state, At: time.Now()}
	h.entries[h.index] = entry
	fn := h.dispatchFn(dispatch)
	h.mu.Unlock()

	if fn != nil {
		fn(entry)
	}
	return nil
}

// Sync moves the cursor to path after the browser changed location on its
// own (Back, Forward, a typed URL). The nearest matching entry before the
// cursor wins, then the nearest after it; an unknown path replaces the entry
// at the cursor. Nothing is dispatched. Sync reports whether path was found.
func (h *History) Sync(path string) bool {
	h.mu.Lock()
	if h.index >= 0 {
		if h.entries[h.index].Path == path {
			h.mu.Unlock()
			return true
		}
		for i := h.index - 1; i >= 0; i-- {
			if h.entries[i].Path == path {
				h.index = i
				h.mu.Unlock()
				return true
			}
		}
		for i := h.index + 1; i < len(h.entries); i++ {
			if h.entries[i].Path == path {
				h.index = i
				h.mu.Unlock()
				return true
			}
		}
	}
	h.mu.Unlock()

	h.Replace(path, nil, false)
	return false
}

func (h *History) dispatchFn(dispatch bool) func(Entry) {
	if !dispatch {
		return nil
	}
	return h.dispatch
}

// Current returns the path at the cursor, or "" when empty.
func (h *History) Current() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.index < 0 {
		return ""
	}
	return h.entries[h.index].Path
}

// CurrentEntry returns the entry at the cursor.
func (h *History) CurrentEntry() (Entry, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.index < 0 {
		return Entry{}, false
	}
	return h.entries[h.index], true
}

// Back moves the cursor one entry back. It reports false at the oldest entry.
func (h *History) Back() (Entry, bool) {
	return h.move(-1)
}

// Forward moves the cursor one entry forward. It reports false at the newest
// entry.
func (h *History) Forward() (Entry, bool) {
	return h.move(1)
}

func (h *History) move(delta int) (Entry, bool) {
	h.mu.Lock()
	next := h.index + delta
	if h.index < 0 || next < 0 || next >= len(h.entries) {
		h.mu.Unlock()
		return Entry{}, false
	}
	h.index = next
	entry := h.entries[next]
	fn := h.dispatch
	h.mu.Unlock()

	if fn != nil {
		fn(entry)
	}
	return entry, true
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// Entries returns a copy of all entries, oldest first.
func (h *History) Entries() []Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Entry, len(h.entries))
	copy(out, h.entries)
	return out
}
