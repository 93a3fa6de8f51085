package presence

import (
	"sync"
)

// Store maps room IDs to the set of user names currently in each room.
// Membership is keyed by the bare name string, so two connections sharing
// a name occupy a single slot. Insertion order is preserved because the
// member list is broadcast to clients as-is.
type Store struct {
	rooms map[string][]string
	mu    sync.RWMutex
}

// NewStore creates an empty presence store
func NewStore() *Store {
	return &Store{
		rooms: make(map[string][]string),
	}
}

// AddMember inserts user into room, creating the room entry if needed.
// Re-adding an existing member is a no-op.
func (s *Store) AddMember(room, user string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	members := s.rooms[room]
	for _, m := range members {
		if m == user {
			return
		}
	}
	s.rooms[room] = append(members, user)
}

// RemoveMember deletes user from room if present. Removing from an
// unknown room or an absent member is a silent no-op. Empty rooms keep
// their entry.
func (s *Store) RemoveMember(room, user string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	members, ok := s.rooms[room]
	if !ok {
		return
	}
	for i, m := range members {
		if m == user {
			s.rooms[room] = append(members[:i], members[i+1:]...)
			return
		}
	}
}

// ListMembers returns the current membership of room in join order.
// The returned slice is a copy and never nil.
func (s *Store) ListMembers(room string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	members := make([]string, len(s.rooms[room]))
	copy(members, s.rooms[room])
	return members
}

// RoomCount returns the number of rooms with at least one member.
func (s *Store) RoomCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, members := range s.rooms {
		if len(members) > 0 {
			count++
		}
	}
	return count
}
