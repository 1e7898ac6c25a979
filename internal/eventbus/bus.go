// Package eventbus provides an in-memory, asynchronous event bus used to
// propagate configuration-change notifications. Events are dispatched
// through a buffered channel and processed by a single worker, so listeners
// observe events one at a time: no event is delivered while a prior one is
// still being handled.
package eventbus

import (
	"log/slog"
	"sync"
	"time"
)

const defaultBufferSize = 64

// EventBus broadcasts events to registered listeners.
type EventBus interface {
	// Publish enqueues an event without blocking. When the buffer is full
	// the event is dropped and a warning logged.
	Publish(eventType string, payload map[string]string)

	// Subscribe registers a listener invoked for every event published
	// afterwards. Register listeners before the first Publish and never
	// after Close.
	Subscribe(listener Listener)

	// Close stops intake and blocks until buffered events are handled.
	Close()
}

// serialBus is the default EventBus implementation.
type serialBus struct {
	ch        chan Event
	listeners []Listener
	mu        sync.RWMutex
	wg        sync.WaitGroup
	log       *slog.Logger
}

// New creates a new in-memory EventBus. Delivery is serialized through one
// worker goroutine.
func New(log *slog.Logger) EventBus {
	if log == nil {
		log = slog.Default()
	}
	b := &serialBus{
		ch:  make(chan Event, defaultBufferSize),
		log: log,
	}
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for e := range b.ch {
			b.dispatch(e)
		}
	}()
	return b
}

// dispatch calls all registered listeners for the given event.
// Each listener is invoked with panic recovery to prevent one bad listener
// from affecting others.
func (b *serialBus) dispatch(e Event) {
	b.mu.RLock()
	listeners := make([]Listener, len(b.listeners))
	copy(listeners, b.listeners)
	b.mu.RUnlock()

	for _, l := range listeners {
		func() {
			defer func() {
				if r := recover(); r != nil {
					b.log.Error("eventbus: listener panicked", "event", e.Type, "panic", r)
				}
			}()
			l(e)
		}()
	}
}

// Publish enqueues an event. If the buffer is full the event is dropped.
func (b *serialBus) Publish(eventType string, payload map[string]string) {
	e := Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   payload,
	}

	select {
	case b.ch <- e:
	default:
		b.log.Warn("eventbus: buffer full, dropping event", "event", eventType)
	}
}

// Subscribe adds a listener to receive all future events.
func (b *serialBus) Subscribe(listener Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, listener)
}

// Close drains and closes the event channel, then waits for the worker to finish.
func (b *serialBus) Close() {
	close(b.ch)
	b.wg.Wait()
}
