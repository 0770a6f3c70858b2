package scanner

import (
	"sync"

	"github.com/tokoquant/idxradar/internal/models"
)

// historyStore keeps a bounded, oldest-first snapshot window per instrument.
// Windows are created lazily on first append and live for the process
// lifetime.
type historyStore struct {
	mu       sync.Mutex
	capacity int
	windows  map[string][]models.Snapshot
}

func newHistoryStore(capacity int) *historyStore {
	if capacity < 1 {
		capacity = 1
	}
	return &historyStore{
		capacity: capacity,
		windows:  make(map[string][]models.Snapshot),
	}
}

// Append adds a snapshot to the pair's window, evicting the oldest entry
// once the window is at capacity.
func (h *historyStore) Append(pair string, snap models.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	w := h.windows[pair]
	if len(w) == h.capacity {
		copy(w, w[1:])
		w[len(w)-1] = snap
	} else {
		w = append(w, snap)
	}
	h.windows[pair] = w
}

// Previous returns the most recently appended snapshot for the pair, i.e.
// the reference a just-arrived snapshot is compared against.
func (h *historyStore) Previous(pair string) (models.Snapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	w := h.windows[pair]
	if len(w) == 0 {
		return models.Snapshot{}, false
	}
	return w[len(w)-1], true
}

// Window returns a copy of the pair's window, oldest first. The copy is safe
// to read while the next cycle appends.
func (h *historyStore) Window(pair string) []models.Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()

	w := h.windows[pair]
	if len(w) == 0 {
		return nil
	}
	out := make([]models.Snapshot, len(w))
	copy(out, w)
	return out
}
