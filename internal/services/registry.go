package services

import (
	"errors"
	"sync"

	"github.com/damione1/pokersync/internal/models"
)

// ErrRoomNotFound marks events that reference a room absent from the
// registry. Callers recover by dropping the event.
var ErrRoomNotFound = errors.New("room not found")

// Registry is the sole owner of all live rooms. It is constructed once at
// process start and injected wherever room access is needed; there is no
// package-level instance.
//
// Every room mutation happens inside a callback holding the registry lock,
// so room creation, state transitions, and delete-if-empty are all atomic
// with respect to each other.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*models.Room
}

func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]*models.Room),
	}
}

// Ensure runs fn on the room with the given ID, creating the room first if
// it does not exist. It reports whether a new room was created. At most one
// Room object ever exists per ID, even under concurrent calls.
func (r *Registry) Ensure(roomID string, fn func(*models.Room)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		room = models.NewRoom(roomID)
		r.rooms[roomID] = room
	}
	if fn != nil {
		fn(room)
	}
	return !ok
}

// Visit runs fn on an existing room. Missing rooms return ErrRoomNotFound
// and fn is not called.
func (r *Registry) Visit(roomID string, fn func(*models.Room)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}
	fn(room)
	return nil
}

// Prune runs fn on an existing room, then deletes the room if it ended up
// with no participants and no votes. Check and delete happen under the same
// lock hold as fn, so no other caller can observe or repopulate the room in
// between. Missing rooms are a no-op. fn may be nil to only evaluate
// deletion.
func (r *Registry) Prune(roomID string, fn func(*models.Room)) (found, deleted bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return false, false
	}
	if fn != nil {
		fn(room)
	}
	if room.Empty() {
		delete(r.rooms, roomID)
		return true, true
	}
	return true, false
}

// Len returns the number of live rooms.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
