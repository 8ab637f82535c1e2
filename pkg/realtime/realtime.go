// Package realtime fans catalog events out to connected listeners, such as
// the /api/events WebSocket sessions of the web front end.
//
// Delivery is best effort: a listener whose buffer is full misses the event.
// Nothing is persisted or replayed.
package realtime

import (
	"sync"
	"time"
)

// Event types.
const (
	TypeInit    = "init"
	TypeCatalog = "catalog"
)

// CatalogEvent reports that an import changed the catalog and the search
// index was rebuilt.
type CatalogEvent struct {
	Path    string    `json:"path"`
	Songs   int       `json:"songs"`
	Images  int       `json:"images"`
	Indexed int       `json:"indexed"`
	At      time.Time `json:"at"`
}

// Event is the envelope sent to listeners.
type Event struct {
	Type    string        `json:"type"`
	Catalog *CatalogEvent `json:"catalog,omitempty"`
}

// Hub is an in-memory fan-out dispatcher. Each listener receives events on
// its own buffered channel. It is safe for concurrent use.
type Hub struct {
	mu        sync.RWMutex
	listeners map[uint64]chan Event
	nextID    uint64
	bufSize   int
}

// NewHub constructs a hub with the given per-listener buffer size.
// If bufSize <= 0, a default of 32 is used.
func NewHub(bufSize int) *Hub {
	if bufSize <= 0 {
		bufSize = 32
	}
	return &Hub{
		listeners: make(map[uint64]chan Event),
		bufSize:   bufSize,
	}
}

// Register adds a new listener. Callers must Unregister the returned id.
func (h *Hub) Register() (uint64, <-chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	ch := make(chan Event, h.bufSize)
	h.listeners[id] = ch
	return id, ch
}

// Unregister removes the listener and closes its channel. Unknown ids are ignored.
func (h *Hub) Unregister(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.listeners[id]; ok {
		delete(h.listeners, id)
		close(ch)
	}
}

// Broadcast delivers ev to every listener with room in its buffer.
func (h *Hub) Broadcast(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.listeners {
		select {
		case ch <- ev:
		default:
			// slow listener
		}
	}
}

// BroadcastCatalog wraps ce in a catalog event and broadcasts it.
func (h *Hub) BroadcastCatalog(ce CatalogEvent) {
	if ce.At.IsZero() {
		ce.At = time.Now().UTC()
	}
	h.Broadcast(Event{Type: TypeCatalog, Catalog: &ce})
}

// Size returns the current number of listeners.
func (h *Hub) Size() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners)
}
