package ws

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Participant is a joined connection's identity, fixed for its lifetime
type Participant struct {
	ID   uuid.UUID
	Name string
}

// session pairs the two goroutines serving one participant connection.
// Either side failing cancels ctx, which stops the other.
type session struct {
	room   *Room
	p      Participant
	conn   Conn
	stream <-chan outbound
	log    *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// Join attaches a participant connection to the room. The subscription is
// taken before returning so the participant sees its own join count.
func (r *Room) Join(conn Conn, name string) error {
	p := Participant{ID: uuid.New(), Name: name}
	stream, ok := r.fanout.subscribe(p.ID)
	if !ok {
		return ErrRoomNotFound
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &session{
		room:   r,
		p:      p,
		conn:   conn,
		stream: stream,
		log:    r.log.With("participant", p.ID.String()),
		ctx:    ctx,
		cancel: cancel,
	}
	go s.ingress()
	go s.egress()
	return nil
}

// ingress reports the join, forwards buzzes and reports the departure once,
// whatever the reason the connection stopped being usable
func (s *session) ingress() {
	defer s.cancel()
	if !s.room.send(event{kind: evParticipantJoin, participant: s.p}) {
		return
	}
	for {
		data, err := s.conn.Read(s.ctx)
		if err != nil {
			if s.ctx.Err() == nil {
				s.log.Debug("participant.read", "err", err)
			}
			break
		}
		if _, err := parseInbound(data, EventBuzz); err != nil {
			s.log.Debug("participant.protocol", "err", err)
			break
		}
		if !s.room.send(event{kind: evBuzzed, participant: s.p, at: time.Now()}) {
			return
		}
	}
	s.room.send(event{kind: evParticipantLeft, participant: s.p})
}

// egress relays the messages addressed to this participant until the room
// closes its stream, the write fails or ingress gives up
func (s *session) egress() {
	defer func() {
		s.room.fanout.unsubscribe(s.p.ID)
		// ingress must see the close handshake, not a cancelled read
		_ = s.conn.Close("bye")
		s.cancel()
	}()
	for {
		select {
		case msg, ok := <-s.stream:
			if !ok {
				return
			}
			if !msg.addressedTo(s.p.ID) {
				continue
			}
			if err := s.conn.Write(s.ctx, msg.payload); err != nil {
				s.log.Debug("participant.write", "err", err)
				return
			}
		case <-s.ctx.Done():
			return
		}
	}
}
