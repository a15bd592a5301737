package models

import "encoding/json"

// Client → Server event types
const (
	MsgTypeJoinRoom    = "join-room"
	MsgTypeVote        = "vote"
	MsgTypeRevealVotes = "reveal-votes"
	MsgTypeResetVotes  = "reset-votes"
)

// Server → Client event types
const (
	MsgTypeRoomUpdate = "room-update" // full room snapshot after join/leave
	MsgTypeVoteUpdate = "vote-update" // votes mapping after cast or reset
	MsgTypeReveal     = "reveal"      // votes mapping at the moment of reveal
	MsgTypeReset      = "reset"       // fresh round signal, follows vote-update
	MsgTypeError      = "error"       // rejected event acknowledgment
)

// WSMessage is the outbound wire envelope.
type WSMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// ClientEvent is the inbound wire envelope. The payload is decoded per event
// type after the type tag is validated.
type ClientEvent struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type JoinPayload struct {
	Room     string `json:"room"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type VotePayload struct {
	Room     string `json:"room"`
	Vote     string `json:"vote"`
	Username string `json:"username"`
}

// RoomPayload carries events that address a room and nothing else
// (reveal-votes, reset-votes).
type RoomPayload struct {
	Room string `json:"room"`
}

type UserInfo struct {
	Username string          `json:"username"`
	Role     ParticipantRole `json:"role"`
}

// RoomSnapshot is the room-update payload: the complete observable state of
// a room. Users and Usernames are keyed by connection ID, Votes by display
// name.
type RoomSnapshot struct {
	Users     map[string]UserInfo `json:"users"`
	Votes     map[string]string   `json:"votes"`
	Usernames map[string]string   `json:"usernames"`
	Revealed  bool                `json:"revealed"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
