package ws

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/scotow/buzzer/pkg/metrics"
)

// RoomID identifies a room from reservation to removal. Version 7 UUIDs
// sort by creation time.
type RoomID = uuid.UUID

// Reservation is what callers get back for a room: its id and display name
type Reservation struct {
	ID   RoomID `json:"id"`
	Name string `json:"name"`
}

// Options tunes a Registry and the rooms it creates
type Options struct {
	ReservationTTL    time.Duration
	MinRoomNameLength int
	MinUsernameLength int
	MailboxSize       int
}

func DefaultOptions() Options {
	return Options{
		ReservationTTL:    15 * time.Second,
		MinRoomNameLength: 3,
		MinUsernameLength: 2,
		MailboxSize:       1024,
	}
}

type reservation struct {
	name  string
	key   string
	timer *time.Timer
}

// Stats is a point-in-time count of the registry's contents
type Stats struct {
	Pending int `json:"pending"`
	Active  int `json:"active"`
}

// Registry is the directory of reserved and hosted rooms. It owns every Room;
// rooms only get a callback to ask for their own removal.
type Registry struct {
	log     *slog.Logger
	journal *Journal
	opts    Options

	mu      sync.Mutex
	pending map[RoomID]*reservation
	rooms   map[RoomID]*Room
	names   map[string]RoomID // search name -> id, pending and active
}

// NewRegistry builds an empty registry. journal may be nil.
func NewRegistry(logger *slog.Logger, journal *Journal, opts Options) *Registry {
	return &Registry{
		log:     logger,
		journal: journal,
		opts:    opts,
		pending: map[RoomID]*reservation{},
		rooms:   map[RoomID]*Room{},
		names:   map[string]RoomID{},
	}
}

// Reserve holds a room name until a host claims it or the reservation expires
func (r *Registry) Reserve(name string) (Reservation, error) {
	display, key := displayName(name), searchName(name)
	if tooShort(display, r.opts.MinRoomNameLength) {
		return Reservation{}, ErrRoomNameTooShort
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.names[key]; taken {
		return Reservation{}, ErrRoomAlreadyExists
	}
	id := uuid.Must(uuid.NewV7())
	if _, dup := r.pending[id]; dup {
		invariant("room id %s minted twice", id)
	}
	res := &reservation{name: display, key: key}
	r.pending[id] = res
	r.names[key] = id
	res.timer = time.AfterFunc(r.opts.ReservationTTL, func() { r.expire(id) })

	metrics.ReservationsPending.Inc()
	r.log.Info("room.reserved", "room", id.String(), "name", display)
	r.journal.Record(RoomEvent{Kind: RoomReserved, RoomID: id, Name: display, At: time.Now()})
	return Reservation{ID: id, Name: display}, nil
}

// expire drops an unclaimed reservation. Stopping the timer on claim can lose
// the race with it firing, so a missing entry just means it was claimed.
func (r *Registry) expire(id RoomID) {
	defer r.recoverInvariant("expire")
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.pending[id]
	if !ok {
		return
	}
	delete(r.pending, id)
	r.dropName(res.key, id)

	metrics.ReservationsPending.Dec()
	metrics.ReservationsExpired.Inc()
	r.log.Info("room.expired", "room", id.String(), "name", res.name)
	r.journal.Record(RoomEvent{Kind: RoomExpired, RoomID: id, Name: res.name, At: time.Now()})
}

// Claim turns a reservation into a running room hosted by host
func (r *Registry) Claim(id RoomID, host Conn) error {
	room, err := r.promote(id, host)
	if err != nil {
		return err
	}
	room.start()
	return nil
}

func (r *Registry) promote(id RoomID, host Conn) (*Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.pending[id]
	if !ok {
		return nil, ErrRoomNotFound
	}
	delete(r.pending, id)
	res.timer.Stop()
	if r.names[res.key] != id {
		invariant("reservation %s lost its name %q", id, res.key)
	}
	if _, dup := r.rooms[id]; dup {
		invariant("room %s is both pending and active", id)
	}
	room := newRoom(id, res.name, host, r.remove, r.log, r.opts.MailboxSize)
	r.rooms[id] = room

	metrics.ReservationsPending.Dec()
	metrics.RoomsActive.Inc()
	r.log.Info("room.claimed", "room", id.String(), "name", res.name)
	r.journal.Record(RoomEvent{Kind: RoomClaimed, RoomID: id, Name: res.name, At: time.Now()})
	return room, nil
}

// remove is handed to each room as its release callback
func (r *Registry) remove(id RoomID, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[id]; !ok {
		invariant("removing unknown room %s", id)
	}
	delete(r.rooms, id)
	r.dropName(searchName(name), id)

	metrics.RoomsActive.Dec()
	r.log.Info("room.removed", "room", id.String(), "name", name)
	r.journal.Record(RoomEvent{Kind: RoomRemoved, RoomID: id, Name: name, At: time.Now()})
}

// recoverInvariant keeps a broken timer callback from taking the process down
func (r *Registry) recoverInvariant(op string) {
	if v := recover(); v != nil {
		r.log.Error("registry.invariant", "op", op, "err", v)
	}
}

// dropName must be called with mu held
func (r *Registry) dropName(key string, id RoomID) {
	if owner, ok := r.names[key]; !ok || owner != id {
		invariant("name %q is not held by %s", key, id)
	}
	delete(r.names, key)
}

// LookupByName finds a hosted room, ignoring case and surrounding whitespace.
// Reservations nobody hosts yet are not visible.
func (r *Registry) LookupByName(name string) (Reservation, error) {
	key := searchName(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.names[key]
	if !ok {
		return Reservation{}, ErrRoomNotFound
	}
	room, ok := r.rooms[id]
	if !ok {
		return Reservation{}, ErrRoomNotFound
	}
	return Reservation{ID: id, Name: room.name}, nil
}

// ValidateUsername trims name and checks it against the configured minimum
func (r *Registry) ValidateUsername(name string) (string, error) {
	return ValidateUsername(name, r.opts.MinUsernameLength)
}

// JoinRoom hands a participant connection to the addressed room
func (r *Registry) JoinRoom(id RoomID, conn Conn, name string) error {
	name, err := r.ValidateUsername(name)
	if err != nil {
		return err
	}
	r.mu.Lock()
	room, ok := r.rooms[id]
	r.mu.Unlock()
	if !ok {
		return ErrRoomNotFound
	}
	return room.Join(conn, name)
}

// Pending reports whether id is reserved and waiting for its host
func (r *Registry) Pending(id RoomID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.pending[id]
	return ok
}

// Active reports whether id is a hosted room
func (r *Registry) Active(id RoomID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.rooms[id]
	return ok
}

func (r *Registry) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Stats{Pending: len(r.pending), Active: len(r.rooms)}
}

// Close discards every reservation and makes every host leave, then waits
// for the rooms to finish tearing down or ctx to end
func (r *Registry) Close(ctx context.Context) error {
	r.mu.Lock()
	for id, res := range r.pending {
		res.timer.Stop()
		delete(r.pending, id)
		delete(r.names, res.key)
		metrics.ReservationsPending.Dec()
	}
	rooms := lo.Values(r.rooms)
	r.mu.Unlock()

	for _, room := range rooms {
		room.stop()
	}
	for _, room := range rooms {
		select {
		case <-room.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	r.log.Info("registry.closed", "rooms", len(rooms))
	return nil
}
