package track

import "sync"

// History is a fixed capacity, insertion ordered queue of records. When full,
// pushing evicts the oldest record. It is safe for concurrent use.
type History struct {
	mtx      sync.RWMutex
	capacity int
	records  []Record
}

// Capacity returns the history size for the given output settings: maxTracks
// when append mode is on and maxTracks is positive, otherwise one.
func Capacity(appendMode bool, maxTracks int) int {
	if appendMode && maxTracks > 0 {
		return maxTracks
	}
	return 1
}

// NewHistory returns an empty history holding at most capacity records.
// Capacities below one are raised to one.
func NewHistory(capacity int) *History {
	capacity = max(capacity, 1)
	return &History{
		capacity: capacity,
		records:  make([]Record, 0, capacity),
	}
}

// Push appends r, evicting the oldest record if the history is full.
func (h *History) Push(r Record) {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	if len(h.records) == h.capacity {
		copy(h.records, h.records[1:])
		h.records = h.records[:len(h.records)-1]
	}
	h.records = append(h.records, r)
}

// Snapshot returns the records, oldest first. The returned slice is a copy.
func (h *History) Snapshot() []Record {
	h.mtx.RLock()
	defer h.mtx.RUnlock()

	return append([]Record(nil), h.records...)
}

// Latest returns the most recent record.
func (h *History) Latest() (Record, bool) {
	h.mtx.RLock()
	defer h.mtx.RUnlock()

	if len(h.records) == 0 {
		return Record{}, false
	}
	return h.records[len(h.records)-1], true
}

// Len returns the number of records held.
func (h *History) Len() int {
	h.mtx.RLock()
	defer h.mtx.RUnlock()

	return len(h.records)
}

// Cap returns the capacity fixed at construction.
func (h *History) Cap() int { return h.capacity }
