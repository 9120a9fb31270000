// Package commit turns editor commit points into ELEMENT_SET_UPDATE messages
// and fans them out to sinks without ever blocking the editor.
package commit

import (
	"context"
	"log"
	"sync"

	"drawboard/internal/domain"
)

// DefaultQueueSize bounds the number of undelivered commits.
const DefaultQueueSize = 256

// Sink consumes commit messages. Deliver is called from the dispatcher's
// single worker, in commit order.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, msg domain.ElementSetUpdate) error
}

// Dispatcher delivers commit messages to every sink on one background
// goroutine. Publish never waits: when the queue is full the message is
// dropped, since the next commit carries the whole set again.
type Dispatcher struct {
	queue chan domain.ElementSetUpdate
	sinks []Sink

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

func NewDispatcher(size int, sinks ...Sink) *Dispatcher {
	if size <= 0 {
		size = DefaultQueueSize
	}
	d := &Dispatcher{
		queue: make(chan domain.ElementSetUpdate, size),
		sinks: sinks,
		done:  make(chan struct{}),
	}
	go d.run()
	return d
}

// Publish enqueues msg. Reports false if it was dropped.
func (d *Dispatcher) Publish(msg domain.ElementSetUpdate) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false
	}
	select {
	case d.queue <- msg:
		return true
	default:
		log.Printf("[commit] queue full, dropping update for %s", msg.TargetElementSetID)
		return false
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	ctx := context.Background()
	for msg := range d.queue {
		for _, s := range d.sinks {
			if err := s.Deliver(ctx, msg); err != nil {
				log.Printf("[commit] %s: deliver %s: %v", s.Name(), msg.TargetElementSetID, err)
			}
		}
	}
}

// Close stops accepting messages and waits until the queue drains or ctx
// is done.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
