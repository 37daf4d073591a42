// Package dedupe tracks inbound host event ids so each is applied at most once.
package dedupe

import "sync"

const defaultMaxSize = 1024

// Deduper records seen event ids.
type Deduper interface {
	// SeenAndRecord reports whether id was already seen and records it if not.
	SeenAndRecord(id string) bool
	// Unrecord forgets id so a failed event can be retried.
	Unrecord(id string)
	Size() int
}

// window keeps the most recent maxSize ids; the oldest is forgotten first.
type window struct {
	mu      sync.Mutex
	seen    map[string]int // id -> ring index
	ring    []string
	next    int
	maxSize int
}

// New creates a bounded Deduper.
func New(opts ...Option) Deduper {
	w := &window{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(w)
	}
	w.seen = make(map[string]int, w.maxSize)
	w.ring = make([]string, w.maxSize)
	return w
}

func (w *window) SeenAndRecord(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.seen[id]; ok {
		return true
	}
	if old := w.ring[w.next]; old != "" {
		delete(w.seen, old)
	}
	w.ring[w.next] = id
	w.seen[id] = w.next
	w.next = (w.next + 1) % w.maxSize
	return false
}

func (w *window) Unrecord(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if i, ok := w.seen[id]; ok {
		delete(w.seen, id)
		w.ring[i] = ""
	}
}

func (w *window) Size() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.seen)
}
