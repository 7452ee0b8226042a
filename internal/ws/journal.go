package ws

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// EventKind names a room lifecycle transition
type EventKind string

const (
	RoomReserved EventKind = "reserved"
	RoomClaimed  EventKind = "claimed"
	RoomExpired  EventKind = "expired"
	RoomRemoved  EventKind = "removed"
)

// RoomEvent is one lifecycle transition, as recorded by the journal
type RoomEvent struct {
	Kind   EventKind `json:"kind"`
	RoomID uuid.UUID `json:"roomId"`
	Name   string    `json:"name"`
	At     time.Time `json:"at"`
}

// EventSink receives journaled room events
type EventSink interface {
	Consume(ctx context.Context, e RoomEvent) error
}

// Journal fans room lifecycle events out to its sinks from its own goroutine.
//
// Delivery is best effort: Record never blocks and drops events when the
// queue is full. The journal keeps history for observers; rooms are never
// rebuilt from it.
type Journal struct {
	log    *slog.Logger
	events chan RoomEvent
	sinks  []EventSink
}

func NewJournal(log *slog.Logger, size int, sinks ...EventSink) *Journal {
	return &Journal{log: log, events: make(chan RoomEvent, size), sinks: sinks}
}

// Record queues e. Safe on a nil Journal.
func (j *Journal) Record(e RoomEvent) {
	if j == nil {
		return
	}
	select {
	case j.events <- e:
	default:
		j.log.Debug("journal.event_lost", "kind", e.Kind, "room", e.RoomID.String())
	}
}

// Run delivers queued events until ctx is cancelled
func (j *Journal) Run(ctx context.Context) {
	for {
		select {
		case e := <-j.events:
			for _, s := range j.sinks {
				if err := s.Consume(ctx, e); err != nil {
					j.log.Warn("journal.sink", "kind", e.Kind, "room", e.RoomID.String(), "err", err)
				}
			}
		case <-ctx.Done():
			return
		}
	}
}
