package sse

import (
	"sync"
)

const defaultBufferSize = 16

// Event is one server-sent event addressed to a user.
type Event struct {
	UserID string
	Event  string
	Data   interface{}
}

// Hub fans events out to every open stream of a user. Publishing never
// blocks; a subscriber whose buffer is full misses the event.
type Hub struct {
	mu          sync.RWMutex
	bufferSize  int
	subscribers map[string]map[chan Event]struct{}
}

func NewHub(bufferSize int) *Hub {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	return &Hub{
		bufferSize:  bufferSize,
		subscribers: make(map[string]map[chan Event]struct{}),
	}
}

// Subscribe registers a stream for userID. The returned cleanup is safe to
// call more than once.
func (h *Hub) Subscribe(userID string) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, h.bufferSize)
	if h.subscribers[userID] == nil {
		h.subscribers[userID] = make(map[chan Event]struct{})
	}
	h.subscribers[userID][ch] = struct{}{}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subscribers[userID], ch)
			close(ch)
			if len(h.subscribers[userID]) == 0 {
				delete(h.subscribers, userID)
			}
		})
	}

	return ch, cleanup
}

// Publish delivers event to every stream of userID and returns how many
// streams accepted it.
func (h *Hub) Publish(userID string, event Event) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	event.UserID = userID
	delivered := 0
	for ch := range h.subscribers[userID] {
		select {
		case ch <- event:
			delivered++
		default:
		}
	}
	return delivered
}

// SubscriberCount returns the number of open streams for a user
func (h *Hub) SubscriberCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[userID])
}

// TotalSubscribers returns the number of open streams across all users
func (h *Hub) TotalSubscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, subs := range h.subscribers {
		total += len(subs)
	}
	return total
}
