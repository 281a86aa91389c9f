// Package realtime implements the live-update core: a registry of which
// connections are viewing which trip, a broadcaster that fans committed
// activity mutations out to those connections, and the websocket transport
// that carries the events.
package realtime

import (
	"sync"

	"github.com/google/uuid"

	"github.com/roamline/backend/internal/domain"
)

// Conn is a live client connection capable of receiving broadcast events.
// Send must not block: implementations drop the event if the connection
// cannot accept it immediately.
type Conn interface {
	Send(evt domain.Event)
}

// Registry maps trip IDs to the set of connections currently viewing them.
// Membership is ephemeral: it exists only while a client's trip view is
// open, and is never persisted.
//
// Both directions of the relation are kept so that Drop can clean up every
// room a lost connection had joined without scanning all rooms.
type Registry struct {
	mu    sync.RWMutex
	rooms map[uuid.UUID]map[Conn]struct{}
	conns map[Conn]map[uuid.UUID]struct{}
}

// NewRegistry returns an empty Registry ready for concurrent use.
func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[uuid.UUID]map[Conn]struct{}),
		conns: make(map[Conn]map[uuid.UUID]struct{}),
	}
}

// Join adds conn to the room for tripID, creating the room if absent.
// Joining a room the connection is already in is a no-op.
func (r *Registry) Join(conn Conn, tripID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[tripID]
	if !ok {
		room = make(map[Conn]struct{})
		r.rooms[tripID] = room
	}
	room[conn] = struct{}{}

	joined, ok := r.conns[conn]
	if !ok {
		joined = make(map[uuid.UUID]struct{})
		r.conns[conn] = joined
	}
	joined[tripID] = struct{}{}
}

// Leave removes conn from the room for tripID, pruning the room entry if it
// becomes empty. Leaving a room the connection is not in is a no-op.
func (r *Registry) Leave(conn Conn, tripID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.leaveLocked(conn, tripID)

	if joined, ok := r.conns[conn]; ok {
		delete(joined, tripID)
		if len(joined) == 0 {
			delete(r.conns, conn)
		}
	}
}

// Drop removes conn from every room it joined. Called on connection loss so
// membership cannot grow without bound.
func (r *Registry) Drop(conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for tripID := range r.conns[conn] {
		r.leaveLocked(conn, tripID)
	}
	delete(r.conns, conn)
}

// Members returns a snapshot of the current room for tripID, possibly empty.
// The returned slice is a copy; callers may iterate it without holding any
// registry lock.
func (r *Registry) Members(tripID uuid.UUID) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room := r.rooms[tripID]
	members := make([]Conn, 0, len(room))
	for conn := range room {
		members = append(members, conn)
	}
	return members
}

func (r *Registry) leaveLocked(conn Conn, tripID uuid.UUID) {
	if room, ok := r.rooms[tripID]; ok {
		delete(room, conn)
		if len(room) == 0 {
			delete(r.rooms, tripID)
		}
	}
}
