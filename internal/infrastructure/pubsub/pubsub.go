package pubsub

import (
	"sync"

	"github.com/google/uuid"
	"github.com/lnsettle/eclair-adapter/internal/core/domain"
	"github.com/lnsettle/eclair-adapter/internal/core/ports"
)

// Bus is the in-process event channel node-originated events are
// republished on. Publishing never blocks the caller; each subscriber
// is signalled on its own goroutine.
type Bus struct {
	mu   sync.RWMutex
	subs map[string]*subscriber
}

func NewBus() *Bus {
	return &Bus{
		subs: make(map[string]*subscriber),
	}
}

func (b *Bus) Subscribe() ports.Subscription {
	s := &subscriber{
		id:     uuid.NewString(),
		bus:    b,
		events: make(chan domain.Event),
		quit:   make(chan struct{}),
	}

	b.mu.Lock()
	b.subs[s.id] = s
	b.mu.Unlock()

	return s
}

func (b *Bus) Publish(event domain.Event) {
	b.mu.RLock()
	subs := make([]*subscriber, 0, len(b.subs))
	for _, s := range b.subs {
		// registered before the lock is released so Close can wait
		// for every in-flight delivery
		s.pending.Add(1)
		subs = append(subs, s)
	}
	b.mu.RUnlock()

	for _, s := range subs {
		go s.signal(event)
	}
}

type subscriber struct {
	id     string
	bus    *Bus
	events chan domain.Event
	quit   chan struct{}

	pending   sync.WaitGroup
	closeOnce sync.Once
}

// signal never blocks past the subscription's lifetime: an event no
// one is receiving is dropped once quit closes.
func (s *subscriber) signal(event domain.Event) {
	defer s.pending.Done()
	select {
	case s.events <- event:
	case <-s.quit:
	}
}

func (s *subscriber) Events() <-chan domain.Event {
	return s.events
}

func (s *subscriber) Close() {
	s.bus.mu.Lock()
	delete(s.bus.subs, s.id)
	s.bus.mu.Unlock()

	s.closeOnce.Do(func() {
		close(s.quit)
		s.pending.Wait()
		close(s.events)
	})
}
