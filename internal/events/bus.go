// Package events fans room change notifications out to live streams.
package events

import "sync"

// Event types
const (
	RoomUpdated = "room_updated"
	RoomClosed  = "room_closed"
)

// Event represents a change to a room. Subscribers fetch the fresh state
// themselves; the event carries no payload.
type Event struct {
	Type     string
	RoomCode string
}

// Bus manages event subscriptions per room
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]chan Event
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[string][]chan Event),
	}
}

// Subscribe subscribes to events for a room
func (b *Bus) Subscribe(roomCode string) chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, 10)
	b.subscribers[roomCode] = append(b.subscribers[roomCode], ch)
	return ch
}

// Unsubscribe removes a subscription and closes its channel
func (b *Bus) Unsubscribe(roomCode string, ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subscribers[roomCode]
	for i, sub := range subs {
		if sub == ch {
			b.subscribers[roomCode] = append(subs[:i], subs[i+1:]...)
			close(ch)
			break
		}
	}
	if len(b.subscribers[roomCode]) == 0 {
		delete(b.subscribers, roomCode)
	}
}

// Publish delivers an event to every subscriber of its room without blocking.
// A subscriber whose buffer is full misses the event; the next one or its
// own refresh interval catches it up.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers[event.RoomCode] {
		select {
		case ch <- event:
		default:
		}
	}
}

// Subscribers returns the number of subscriptions for a room
func (b *Bus) Subscribers(roomCode string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[roomCode])
}
