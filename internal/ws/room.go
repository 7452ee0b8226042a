package ws

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/scotow/buzzer/pkg/metrics"
)

type eventKind int

const (
	evParticipantJoin eventKind = iota
	evBuzzed
	evSelectNext
	evClear
	evParticipantLeft
	evHostLeft
)

// event is one entry of a room's mailbox
type event struct {
	kind        eventKind
	participant Participant
	at          time.Time
}

// Room is the actor behind one hosted session. All of its state is owned by
// the loop goroutine; everything else talks to it through the mailbox.
type Room struct {
	id   RoomID
	name string
	log  *slog.Logger

	mailbox chan event
	fanout  *broadcaster

	host    Conn
	hostOut chan []byte
	// ctx scopes the host connection; cancelling it makes the host leave
	ctx    context.Context
	cancel context.CancelFunc

	release  func(RoomID, string)
	released bool
	done     chan struct{}

	// loop-owned
	count int
	names map[uuid.UUID]string
	run   *Run
}

func newRoom(id RoomID, name string, host Conn, release func(RoomID, string), log *slog.Logger, size int) *Room {
	ctx, cancel := context.WithCancel(context.Background())
	return &Room{
		id:      id,
		name:    name,
		log:     log.With("room", id.String(), "name", name),
		mailbox: make(chan event, size),
		fanout:  newBroadcaster(size),
		host:    host,
		hostOut: make(chan []byte, size),
		ctx:     ctx,
		cancel:  cancel,
		release: release,
		done:    make(chan struct{}),
		names:   map[uuid.UUID]string{},
		run:     NewRun(),
	}
}

func (r *Room) Done() <-chan struct{} { return r.done }

func (r *Room) start() {
	go r.loop()
	go r.readHost()
	go r.writeHost()
}

// stop makes the host leave, which tears the room down through the normal
// path and closes the host connection with a proper close frame
func (r *Room) stop() { go r.send(event{kind: evHostLeft}) }

// send queues ev, blocking while the mailbox is full. It reports false once
// the room has terminated.
func (r *Room) send(ev event) bool {
	select {
	case r.mailbox <- ev:
		return true
	case <-r.done:
		return false
	}
}

func (r *Room) loop() {
	defer r.shutdown()
	for {
		if !r.handle(<-r.mailbox) {
			return
		}
	}
}

// handle applies one event and reports whether the room keeps running
func (r *Room) handle(ev event) bool {
	switch ev.kind {
	case evParticipantJoin:
		r.count++
		r.names[ev.participant.ID] = ev.participant.Name
		metrics.ParticipantsConnected.Inc()
		r.log.Debug("participant.joined", "participant", ev.participant.ID.String(), "count", r.count)
		r.announceCount()

	case evBuzzed:
		r.buzzed(ev.participant, ev.at)

	case evSelectNext:
		prev, next, ok := r.run.SelectNext()
		if !ok {
			return true
		}
		r.publishTo(prev, deselectPacket)
		r.publishTo(next, selectPacket(next))
		p := selectPacket(next)
		p.Name = r.names[next]
		r.toHost(p)

	case evClear:
		r.run = NewRun()
		r.publishAll(clearPacket)
		r.toHost(clearPacket)

	case evParticipantLeft:
		if r.count == 0 {
			invariant("participant %s left an empty room", ev.participant.ID)
		}
		r.count--
		delete(r.names, ev.participant.ID)
		metrics.ParticipantsConnected.Dec()
		r.log.Debug("participant.left", "participant", ev.participant.ID.String(), "count", r.count)
		r.announceCount()

	case evHostLeft:
		return false
	}
	return true
}

func (r *Room) buzzed(p Participant, at time.Time) {
	res := r.run.Buzz(p.ID, at)
	metrics.Buzzes.WithLabelValues(res.Kind.String()).Inc()
	switch res.Kind {
	case BuzzAlready:
	case BuzzFirst:
		r.toHost(buzzedPacket(p, nil))
		r.publishTo(p.ID, selectPacket(p.ID))
	case BuzzLater:
		ms := res.Diff.Milliseconds()
		r.toHost(buzzedPacket(p, &ms))
	}
}

func (r *Room) announceCount() {
	p := participantCountPacket(r.count)
	r.toHost(p)
	r.publishAll(p)
}

func (r *Room) publishAll(p Packet) {
	r.fanout.publish(outbound{payload: p.encode()})
}

func (r *Room) publishTo(id uuid.UUID, p Packet) {
	r.fanout.publish(outbound{target: id, payload: p.encode()})
}

// toHost queues p for the host writer, blocking while its outbox is full.
// Once the host is gone the packet is dropped; HostLeft is already on its way.
func (r *Room) toHost(p Packet) {
	select {
	case r.hostOut <- p.encode():
	case <-r.ctx.Done():
	}
}

// shutdown runs once when the loop exits, whether the host left or an
// invariant broke while handling an event
func (r *Room) shutdown() {
	if v := recover(); v != nil {
		r.log.Error("room.invariant", "err", v)
	}
	r.releaseFromRegistry()
	r.fanout.publish(outbound{payload: hostLeftPacket.encode()})
	r.fanout.close()
	// close before cancelling so a blocked host read ends on the close
	// handshake instead of tearing the socket down
	_ = r.host.Close("room closed")
	r.cancel()
	metrics.ParticipantsConnected.Sub(float64(r.count))
	close(r.done)
	r.log.Info("room.closed", "participants", r.count)
}

func (r *Room) releaseFromRegistry() {
	if r.released {
		return
	}
	r.released = true
	defer func() {
		if v := recover(); v != nil {
			r.log.Error("room.invariant", "err", v)
		}
	}()
	if r.release == nil {
		invariant("room %s has no registry to release it", r.id)
	}
	r.release(r.id, r.name)
}

// readHost turns host frames into events. Whatever ends the loop, the room
// receives a HostLeft.
func (r *Room) readHost() {
	defer r.send(event{kind: evHostLeft})
	for {
		data, err := r.host.Read(r.ctx)
		if err != nil {
			if r.ctx.Err() == nil {
				r.log.Debug("host.read", "err", err)
			}
			return
		}
		ev, err := parseInbound(data, EventClear, EventSelectNext)
		if err != nil {
			r.log.Debug("host.protocol", "err", err)
			return
		}
		kind := evClear
		if ev == EventSelectNext {
			kind = evSelectNext
		}
		if !r.send(event{kind: kind}) {
			return
		}
	}
}

// writeHost drains the host outbox until the host context ends. The
// connection itself is closed by shutdown.
func (r *Room) writeHost() {
	for {
		select {
		case b := <-r.hostOut:
			if err := r.host.Write(r.ctx, b); err != nil {
				r.log.Debug("host.write", "err", err)
				r.cancel()
				return
			}
		case <-r.ctx.Done():
			return
		}
	}
}
