package ws

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Event discriminants carried in the "event" field of every frame
const (
	EventParticipantCount = "participantCount"
	EventBuzzed           = "buzzed"
	EventSelect           = "select"
	EventDeselect         = "deselect"
	EventClear            = "clear"
	EventHostLeft         = "hostLeft"

	EventSelectNext = "selectNext"
	EventBuzz       = "buzz"
)

var errUnknownEvent = errors.New("unknown event")

// Packet is the outbound frame. Only the fields relevant to Event are set.
type Packet struct {
	Event         string     `json:"event"`
	Count         *int       `json:"count,omitempty"`
	ParticipantID *uuid.UUID `json:"participantId,omitempty"`
	Name          string     `json:"name,omitempty"`
	TimestampDiff *int64     `json:"timestampDiff,omitempty"`
}

func participantCountPacket(n int) Packet {
	return Packet{Event: EventParticipantCount, Count: &n}
}

func buzzedPacket(p Participant, diffMs *int64) Packet {
	id := p.ID
	return Packet{Event: EventBuzzed, ParticipantID: &id, Name: p.Name, TimestampDiff: diffMs}
}

func selectPacket(id uuid.UUID) Packet {
	return Packet{Event: EventSelect, ParticipantID: &id}
}

var (
	deselectPacket = Packet{Event: EventDeselect}
	clearPacket    = Packet{Event: EventClear}
	hostLeftPacket = Packet{Event: EventHostLeft}
)

// encode never fails for Packet; a failure means the type itself is broken
func (p Packet) encode() []byte {
	b, err := json.Marshal(p)
	if err != nil {
		invariant("encode %s packet: %v", p.Event, err)
	}
	return b
}

type inbound struct {
	Event string `json:"event"`
}

// parseInbound extracts the event of a client frame and checks it against
// the events that role is allowed to send.
func parseInbound(data []byte, allowed ...string) (string, error) {
	var in inbound
	if err := json.Unmarshal(data, &in); err != nil {
		return "", fmt.Errorf("decode frame: %w", err)
	}
	for _, ev := range allowed {
		if in.Event == ev {
			return ev, nil
		}
	}
	return "", fmt.Errorf("%w %q", errUnknownEvent, in.Event)
}
