package events

import (
	"sync"
	"time"
)

// Handler processes an event. Handlers run on the bus goroutine, in
// subscription order, and must not call Emit.
type Handler func(e Event)

// Bus provides event distribution across components
type Bus struct {
	Capacity int

	hmu      sync.RWMutex // guards handlers
	handlers []Handler

	cmu    sync.RWMutex // guards closed; held by Emit while sending
	closed bool

	events chan Event
	done   chan struct{}
	once   sync.Once
}

// NewBus creates a new event bus with the specified capacity and starts dispatching
func NewBus(capacity int) *Bus {
	if capacity < 0 {
		capacity = 0
	}
	b := &Bus{
		Capacity: capacity,
		events:   make(chan Event, capacity),
		done:     make(chan struct{}),
	}
	go b.dispatch()
	return b
}

// Subscribe registers a handler for all subsequent events
func (b *Bus) Subscribe(h Handler) {
	b.hmu.Lock()
	defer b.hmu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Emit queues an event, stamping its time when unset.
// Events emitted after Close are dropped.
func (b *Bus) Emit(e Event) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}

	b.cmu.RLock()
	defer b.cmu.RUnlock()
	if b.closed {
		return
	}
	b.events <- e
}

// Close stops accepting events and waits until queued events are handled
func (b *Bus) Close() error {
	b.once.Do(func() {
		b.cmu.Lock()
		b.closed = true
		close(b.events)
		b.cmu.Unlock()
	})
	<-b.done
	return nil
}

func (b *Bus) dispatch() {
	defer close(b.done)
	for e := range b.events {
		b.hmu.RLock()
		handlers := b.handlers
		b.hmu.RUnlock()

		for _, h := range handlers {
			h(e)
		}
	}
}
