package services

import (
	"encoding/json"
	"log"

	"github.com/damione1/pokersync/internal/models"
	"github.com/damione1/pokersync/internal/security"
)

// Coordinator routes inbound events from connections to the room state
// machine and broadcasts the results. Events are validated at this boundary:
// unknown types, missing required fields, and invalid tokens are dropped
// with an error acknowledgment, never propagated. One connection's bad input
// must never take down the process or touch another room.
type Coordinator struct {
	manager *RoomManager
	hub     *Hub
	votes   *VoteValidator
	metrics *Metrics
}

func NewCoordinator(manager *RoomManager, hub *Hub, metrics *Metrics) *Coordinator {
	return &Coordinator{
		manager: manager,
		hub:     hub,
		votes:   NewVoteValidator(),
		metrics: metrics,
	}
}

// HandleMessage decodes and dispatches one inbound event. Implements
// MessageHandler.
func (co *Coordinator) HandleMessage(c *Client, data []byte) {
	var event models.ClientEvent
	if err := json.Unmarshal(data, &event); err != nil {
		co.reject(c, "malformed event")
		return
	}

	if !security.IsValidEventType(event.Type) {
		co.reject(c, "unknown event type")
		return
	}

	switch event.Type {
	case models.MsgTypeJoinRoom:
		co.handleJoin(c, event.Payload)
	case models.MsgTypeVote:
		co.handleVote(c, event.Payload)
	case models.MsgTypeRevealVotes:
		co.handleReveal(c, event.Payload)
	case models.MsgTypeResetVotes:
		co.handleReset(c, event.Payload)
	}
}

// HandleDisconnect removes the connection's participant from its bound room
// and notifies the remaining participants. A connection that never joined a
// room is a no-op. Implements MessageHandler.
func (co *Coordinator) HandleDisconnect(c *Client) {
	roomID, ok := c.Binding()
	if !ok {
		return
	}

	co.hub.Unregister(roomID, c)

	snap, removed, _ := co.manager.Disconnect(roomID, c.ConnectionID())
	if removed {
		co.hub.BroadcastToRoom(roomID, &models.WSMessage{
			Type:    models.MsgTypeRoomUpdate,
			Payload: snap,
		})
	}
}

func (co *Coordinator) handleJoin(c *Client, payload json.RawMessage) {
	var join models.JoinPayload
	if err := json.Unmarshal(payload, &join); err != nil {
		co.reject(c, "malformed join-room payload")
		return
	}

	if err := security.ValidateRoomID(join.Room); err != nil {
		co.reject(c, err.Error())
		return
	}
	username, err := security.ValidateParticipantName(join.Username)
	if err != nil {
		co.reject(c, err.Error())
		return
	}
	role, ok := parseRole(join.Role)
	if !ok {
		co.reject(c, "role must be 'moderator' or 'voter'")
		return
	}

	// A connection already bound to another room moves: it leaves the old
	// room before joining the new one, so it is never a member of two rooms.
	if prev, bound := c.Binding(); bound && prev != join.Room {
		co.HandleDisconnect(c)
	}

	snap := co.manager.Join(join.Room, c.ConnectionID(), username, role)
	c.Bind(join.Room)

	// Register completes before the broadcast is queued, so the joiner
	// receives its own room-update.
	co.hub.Register(join.Room, c)
	co.hub.BroadcastToRoom(join.Room, &models.WSMessage{
		Type:    models.MsgTypeRoomUpdate,
		Payload: snap,
	})
}

func (co *Coordinator) handleVote(c *Client, payload json.RawMessage) {
	var vote models.VotePayload
	if err := json.Unmarshal(payload, &vote); err != nil {
		co.reject(c, "malformed vote payload")
		return
	}

	if err := security.ValidateRoomID(vote.Room); err != nil {
		co.reject(c, err.Error())
		return
	}
	username, err := security.ValidateParticipantName(vote.Username)
	if err != nil {
		co.reject(c, err.Error())
		return
	}
	if err := co.votes.ValidateValue(vote.Vote); err != nil {
		co.reject(c, err.Error())
		return
	}

	votes, err := co.manager.CastVote(vote.Room, username, vote.Vote)
	if err != nil {
		// Room has vanished; best-effort model says drop the event.
		log.Printf("Vote for unknown room %s dropped", vote.Room)
		return
	}

	co.hub.BroadcastToRoom(vote.Room, &models.WSMessage{
		Type:    models.MsgTypeVoteUpdate,
		Payload: votes,
	})
}

func (co *Coordinator) handleReveal(c *Client, payload json.RawMessage) {
	roomID, ok := co.decodeRoom(c, payload)
	if !ok {
		return
	}

	votes, err := co.manager.Reveal(roomID)
	if err != nil {
		log.Printf("Reveal for unknown room %s dropped", roomID)
		return
	}

	co.hub.BroadcastToRoom(roomID, &models.WSMessage{
		Type:    models.MsgTypeReveal,
		Payload: votes,
	})
}

func (co *Coordinator) handleReset(c *Client, payload json.RawMessage) {
	roomID, ok := co.decodeRoom(c, payload)
	if !ok {
		return
	}

	if err := co.manager.Reset(roomID); err != nil {
		log.Printf("Reset for unknown room %s dropped", roomID)
		return
	}

	// Two separate notifications: clear the votes first, then signal the
	// fresh round. Collaborators rely on this ordering.
	co.hub.BroadcastToRoom(roomID, &models.WSMessage{
		Type:    models.MsgTypeVoteUpdate,
		Payload: map[string]string{},
	})
	co.hub.BroadcastToRoom(roomID, &models.WSMessage{
		Type: models.MsgTypeReset,
	})
}

func (co *Coordinator) decodeRoom(c *Client, payload json.RawMessage) (string, bool) {
	var room models.RoomPayload
	if err := json.Unmarshal(payload, &room); err != nil {
		co.reject(c, "malformed payload")
		return "", false
	}
	if err := security.ValidateRoomID(room.Room); err != nil {
		co.reject(c, err.Error())
		return "", false
	}
	return room.Room, true
}

// reject drops an invalid event and acknowledges the sender with an error
// message.
func (co *Coordinator) reject(c *Client, message string) {
	co.metrics.IncrementMalformedEvents()
	log.Printf("⚠️ Rejected event (conn=%s): %s", c.ConnectionID(), message)

	co.hub.SendToClient(c, &models.WSMessage{
		Type:    models.MsgTypeError,
		Payload: models.ErrorPayload{Message: message},
	})
}

func parseRole(role string) (models.ParticipantRole, bool) {
	switch models.ParticipantRole(role) {
	case models.RoleModerator:
		return models.RoleModerator, true
	case models.RoleVoter:
		return models.RoleVoter, true
	default:
		return "", false
	}
}
