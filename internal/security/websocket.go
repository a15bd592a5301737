package security

import (
	"github.com/coder/websocket"

	"github.com/damione1/pokersync/internal/models"
)

// Inbound event type allowlist. Anything else is rejected at the boundary
// before it reaches the room state machine.
var validEventTypes = map[string]bool{
	models.MsgTypeJoinRoom:    true,
	models.MsgTypeVote:        true,
	models.MsgTypeRevealVotes: true,
	models.MsgTypeResetVotes:  true,
}

// IsValidEventType checks if an inbound event type is valid
func IsValidEventType(eventType string) bool {
	return validEventTypes[eventType]
}

// OriginValidator validates WebSocket connection origins
type OriginValidator struct {
	allowedPatterns []string
}

// NewOriginValidator creates a new origin validator
func NewOriginValidator(patterns []string) *OriginValidator {
	return &OriginValidator{
		allowedPatterns: patterns,
	}
}

// GetAcceptOptions returns websocket.AcceptOptions with origin patterns
func (ov *OriginValidator) GetAcceptOptions() *websocket.AcceptOptions {
	return &websocket.AcceptOptions{
		OriginPatterns: ov.allowedPatterns,
	}
}
