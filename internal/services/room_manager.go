package services

import (
	"log"

	"github.com/damione1/pokersync/internal/models"
)

// RoomManager drives the per-room state machine through the registry. Each
// method performs one transition atomically and returns the data the caller
// must broadcast; the broadcast itself is the caller's responsibility and is
// fire-and-forget.
type RoomManager struct {
	registry *Registry
	metrics  *Metrics
}

func NewRoomManager(registry *Registry, metrics *Metrics) *RoomManager {
	return &RoomManager{
		registry: registry,
		metrics:  metrics,
	}
}

// Join adds or replaces the participant for a connection ID, creating the
// room lazily on first join. Joining never resets votes or the revealed
// flag. Returns the snapshot to broadcast as room-update.
func (rm *RoomManager) Join(roomID, connectionID, username string, role models.ParticipantRole) models.RoomSnapshot {
	var snap models.RoomSnapshot
	created := rm.registry.Ensure(roomID, func(room *models.Room) {
		room.Join(connectionID, username, role)
		snap = room.Snapshot()
	})

	if created {
		rm.metrics.IncrementRooms()
		log.Printf("🧩 Room %s created", roomID)
	}
	log.Printf("📌 %s joined room %s as %s", username, roomID, role)
	return snap
}

// CastVote records a vote keyed by display name, overwriting any prior vote
// for that name. Returns the updated votes mapping to broadcast as
// vote-update.
func (rm *RoomManager) CastVote(roomID, username, vote string) (map[string]string, error) {
	var votes map[string]string
	err := rm.registry.Visit(roomID, func(room *models.Room) {
		room.CastVote(username, vote)
		votes = room.VotesCopy()
	})
	if err != nil {
		return nil, err
	}

	rm.metrics.IncrementVotesCast()
	log.Printf("🗳️ %s voted in room %s", username, roomID)
	return votes, nil
}

// Reveal transitions the room to the revealed state unconditionally; quorum
// is a client-side concern. Returns exactly the votes recorded at the moment
// of reveal.
func (rm *RoomManager) Reveal(roomID string) (map[string]string, error) {
	var votes map[string]string
	err := rm.registry.Visit(roomID, func(room *models.Room) {
		room.Reveal()
		votes = room.VotesCopy()
	})
	if err != nil {
		return nil, err
	}

	rm.metrics.IncrementReveals()
	log.Printf("🎯 Revealing votes in room %s", roomID)
	return votes, nil
}

// Reset clears all votes and returns the room to the voting state.
func (rm *RoomManager) Reset(roomID string) error {
	err := rm.registry.Visit(roomID, func(room *models.Room) {
		room.Reset()
	})
	if err != nil {
		return err
	}

	rm.metrics.IncrementResets()
	log.Printf("♻️ Votes reset in room %s", roomID)
	return nil
}

// Disconnect removes the participant bound to a connection ID along with its
// vote, and deletes the room if that removal left it empty; removal and
// deletion happen in one registry lock hold. Returns the snapshot to
// broadcast to the remaining participants and whether the room was deleted.
func (rm *RoomManager) Disconnect(roomID, connectionID string) (snap models.RoomSnapshot, removed, deleted bool) {
	var name string
	found, deleted := rm.registry.Prune(roomID, func(room *models.Room) {
		name, removed = room.RemoveParticipant(connectionID)
		if removed {
			snap = room.Snapshot()
		}
	})
	if !found || !removed {
		return models.RoomSnapshot{}, false, deleted
	}

	log.Printf("❌ %s left room %s", name, roomID)
	if deleted {
		rm.metrics.DecrementRooms()
		log.Printf("🧹 Room %s deleted (empty)", roomID)
	}
	return snap, true, deleted
}
