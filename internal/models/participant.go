package models

import "time"

type ParticipantRole string

const (
	RoleModerator ParticipantRole = "moderator"
	RoleVoter     ParticipantRole = "voter"
)

// Participant is one connected identity within a room. The connection ID is
// assigned by the transport layer and is the membership key; display names
// are not required to be unique.
type Participant struct {
	ConnectionID string
	Name         string
	Role         ParticipantRole
	JoinedAt     time.Time
}

func NewParticipant(connectionID, name string, role ParticipantRole) *Participant {
	return &Participant{
		ConnectionID: connectionID,
		Name:         name,
		Role:         role,
		JoinedAt:     time.Now(),
	}
}
