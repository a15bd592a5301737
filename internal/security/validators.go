package security

import (
	"fmt"
	"regexp"
	"strings"
)

// Input length constraints
const (
	MaxRoomIDLength          = 64
	MaxParticipantNameLength = 50
	MinNameLength            = 1
)

var (
	// Room ID regex - URL-safe tokens only; room IDs travel in query strings
	// and invite links
	roomIDRegex = regexp.MustCompile(`^[a-zA-Z0-9\-_]+$`)
	// Name validation regex - Unicode letters, digits, spaces, apostrophes, hyphens, underscores, dots
	// \p{L} matches any Unicode letter (includes accented characters)
	// \p{N} matches any Unicode number
	// ' allows apostrophes (for French and English possessives)
	nameRegex = regexp.MustCompile(`^[\p{L}\p{N}\s'\-_.]+$`)
	// Dangerous characters that could be used for injection attacks
	dangerousCharsRegex = regexp.MustCompile(`[<>{}[\]\\;|&$()` + "`" + `]`)
)

// ValidateRoomID validates a room identifier. Room IDs may be chosen by
// clients, so only shape is checked; existence is the registry's concern.
func ValidateRoomID(id string) error {
	if id == "" {
		return fmt.Errorf("room ID cannot be empty")
	}

	if len(id) > MaxRoomIDLength {
		return fmt.Errorf("room ID too long (max %d characters)", MaxRoomIDLength)
	}

	if !roomIDRegex.MatchString(id) {
		return fmt.Errorf("room ID contains invalid characters (allowed: letters, numbers, hyphens, underscores)")
	}

	return nil
}

// ValidateName validates a name string with length and character constraints
// Returns sanitized name and error if validation fails
func ValidateName(name string, maxLen int) (string, error) {
	// Trim leading/trailing whitespace
	name = strings.TrimSpace(name)

	if name == "" {
		return "", fmt.Errorf("name cannot be empty")
	}

	if len(name) < MinNameLength {
		return "", fmt.Errorf("name too short (min %d characters)", MinNameLength)
	}

	if len(name) > maxLen {
		return "", fmt.Errorf("name too long (max %d characters)", maxLen)
	}

	// Check for invalid characters (must match allowed character set)
	if !nameRegex.MatchString(name) {
		return "", fmt.Errorf("name contains invalid characters (allowed: letters, numbers, spaces, apostrophes, hyphens, underscores, dots)")
	}

	// Check for dangerous characters that could be used for injection
	if dangerousCharsRegex.MatchString(name) {
		return "", fmt.Errorf("name contains potentially dangerous characters")
	}

	// Check for control characters (belt-and-suspenders with regex)
	for _, r := range name {
		if r < 32 || r == 127 {
			return "", fmt.Errorf("name contains control characters")
		}
	}

	return name, nil
}

// ValidateParticipantName validates a participant display name
func ValidateParticipantName(name string) (string, error) {
	return ValidateName(name, MaxParticipantNameLength)
}
