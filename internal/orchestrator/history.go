package orchestrator

import "sync"

// History keeps the most recent calculations in a fixed-size ring. It is a
// record of past requests and is never consulted to answer new ones.
type History struct {
	mu    sync.RWMutex
	ring  []Calculation
	next  int
	count int
	byID  map[string]int
}

func NewHistory(size int) *History {
	if size <= 0 {
		size = 1
	}
	return &History{
		ring: make([]Calculation, size),
		byID: make(map[string]int, size),
	}
}

// Add stores c, evicting the oldest calculation when the ring is full.
func (h *History) Add(c Calculation) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.count == len(h.ring) {
		delete(h.byID, h.ring[h.next].ID)
	} else {
		h.count++
	}
	h.ring[h.next] = c
	h.byID[c.ID] = h.next
	h.next = (h.next + 1) % len(h.ring)
}

func (h *History) Get(id string) (Calculation, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	i, ok := h.byID[id]
	if !ok {
		return Calculation{}, false
	}
	return h.ring[i], true
}

// List returns the stored calculations, newest first.
func (h *History) List() []Calculation {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]Calculation, 0, h.count)
	for i := 1; i <= h.count; i++ {
		out = append(out, h.ring[(h.next-i+len(h.ring))%len(h.ring)])
	}
	return out
}
