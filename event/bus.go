package event

import (
	"sync"

	"github.com/anisan-cli/trackplayer/internal/mailbox"
	"github.com/anisan-cli/trackplayer/log"
	"github.com/samber/lo"
)

// Bus fans published events out to independent subscribers.
//
// Every subscriber sees events in publication order and none are dropped:
// each subscription buffers without bound, so a slow consumer never stalls
// the publisher or the other subscribers.
type Bus struct {
	mu     sync.Mutex
	subs   map[uint64]*Subscription
	nextID uint64
	closed bool
}

func NewBus() *Bus {
	return &Bus{subs: make(map[uint64]*Subscription)}
}

// Subscription is one consumer's view of the bus.
type Subscription struct {
	id    uint64
	bus   *Bus
	kinds map[Kind]struct{}
	box   *mailbox.Mailbox[Event]
	once  sync.Once
}

// Subscribe registers a consumer. With no kinds every event is delivered.
// Subscribing to a closed bus yields an already closed subscription.
func (b *Bus) Subscribe(kinds ...Kind) *Subscription {
	s := &Subscription{
		bus:   b,
		kinds: lo.SliceToMap(kinds, func(k Kind) (Kind, struct{}) { return k, struct{}{} }),
		box:   mailbox.New[Event](),
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		s.box.Close()
		return s
	}

	b.nextID++
	s.id = b.nextID
	b.subs[s.id] = s
	return s
}

// Publish delivers ev to every interested subscriber. It never blocks.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		log.Debugf("bus: dropped %s after close", ev.Kind())
		return
	}

	log.Tracef("bus: %s %+v", ev.Kind(), ev)
	for _, s := range b.subs {
		if s.wants(ev.Kind()) {
			s.box.Put(ev)
		}
	}
}

// Close stops publication. Subscribers still receive what was already published.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for _, s := range b.subs {
		s.box.Close()
	}
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, id)
}

func (s *Subscription) wants(k Kind) bool {
	if len(s.kinds) == 0 {
		return true
	}
	_, ok := s.kinds[k]
	return ok
}

// Events is closed when the subscription or the bus is closed.
func (s *Subscription) Events() <-chan Event {
	return s.box.Out()
}

// Close detaches the subscription and drops anything it has not consumed.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.bus.remove(s.id)
		s.box.Discard()
	})
}
