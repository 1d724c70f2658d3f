package room

import (
	"sync"

	"github.com/jaevor/go-nanoid"
)

// roomIDLen gives ~71 bits of randomness over the URL-safe alphabet,
// short enough to read out loud over a call
const roomIDLen = 12

// Store is the in-memory room table: the single source of truth for
// shared session state. It is injected into the manager, never a
// package-level singleton.
type Store struct {
	mu    sync.RWMutex
	rooms map[string]*Room
	newID func() string
}

// NewStore builds an empty store with a nanoid room-id generator
func NewStore() *Store {
	gen, err := nanoid.Standard(roomIDLen)
	if err != nil {
		panic(err) // only possible with an out-of-range length
	}
	return &Store{rooms: map[string]*Room{}, newID: gen}
}

// Create inserts a new room under a fresh id and returns it
func (s *Store) Create() *Room {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	for s.rooms[id] != nil {
		// vanishingly unlikely, but an id must never point at two rooms
		id = s.newID()
	}
	r := newRoom(id)
	s.rooms[id] = r
	return r
}

// Get returns the room for id, if it is live
func (s *Store) Get(id string) (*Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[id]
	return r, ok
}

// DeleteIfEmpty removes the room only if it still has no members,
// so a join racing the reaper cannot strand a participant in a dead
// room. Reports whether the room was deleted.
func (s *Store) DeleteIfEmpty(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[id]
	if !ok {
		return false
	}
	r.Lock()
	empty := len(r.Members) == 0
	r.Unlock()
	if !empty {
		return false
	}
	delete(s.rooms, id)
	return true
}

// FindByConn scans for the room whose member map holds connID.
// A connection belongs to at most one room, so the first hit wins.
// Rooms are snapshotted first; room locks are never taken while the
// store lock is held.
func (s *Store) FindByConn(connID string) (*Room, bool) {
	s.mu.RLock()
	snapshot := make([]*Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		snapshot = append(snapshot, r)
	}
	s.mu.RUnlock()

	for _, r := range snapshot {
		r.Lock()
		_, member := r.Members[connID]
		r.Unlock()
		if member {
			return r, true
		}
	}
	return nil, false
}

// Len returns the number of live rooms
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}
