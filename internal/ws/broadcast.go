package ws

import (
	"sync"

	"github.com/google/uuid"

	"github.com/scotow/buzzer/pkg/metrics"
)

// outbound is one fan-out message. A zero target means every subscriber.
type outbound struct {
	target  uuid.UUID
	payload []byte
}

func (o outbound) addressedTo(id uuid.UUID) bool {
	return o.target == uuid.Nil || o.target == id
}

// broadcaster is a room's multi-subscriber fan-out channel. Every subscriber
// sees every message in publish order and filters by target itself.
type broadcaster struct {
	mu     sync.Mutex
	size   int
	subs   map[uuid.UUID]chan outbound
	closed bool
}

func newBroadcaster(size int) *broadcaster {
	return &broadcaster{size: size, subs: map[uuid.UUID]chan outbound{}}
}

// subscribe returns the stream for id, or false if the room already closed
func (b *broadcaster) subscribe(id uuid.UUID) (<-chan outbound, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, false
	}
	if _, dup := b.subs[id]; dup {
		invariant("participant %s subscribed twice", id)
	}
	ch := make(chan outbound, b.size)
	b.subs[id] = ch
	return ch, true
}

func (b *broadcaster) unsubscribe(id uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}

// publish never blocks. A subscriber whose buffer is full has fallen behind
// and is cut off: its stream is closed, which ends its session.
func (b *broadcaster) publish(msg outbound) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subs {
		select {
		case ch <- msg:
		default:
			delete(b.subs, id)
			close(ch)
			metrics.FanoutDropped.Inc()
		}
	}
}

// close ends every stream; later subscribes fail
func (b *broadcaster) close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
