package services

import (
	"fmt"
	"strconv"
)

const (
	// MaxVoteLength limits individual vote token length
	MaxVoteLength = 10
	// MaxNumericVote bounds numeric votes to a sane estimation range
	MaxNumericVote = 1000

	// Special vote tokens that carry no numeric value
	VoteUnknown  = "?"
	VoteInfinity = "∞"
)

// VoteValidator provides validation and parsing for vote tokens. A vote is
// either a numeric value serialized as a string or one of the special
// symbols; collaborators compute aggregates client-side, so the server only
// gates token shape.
type VoteValidator struct{}

// NewVoteValidator creates a new vote validator instance
func NewVoteValidator() *VoteValidator {
	return &VoteValidator{}
}

// ValidateValue checks that a vote token is a special symbol or a numeric
// value within range.
func (v *VoteValidator) ValidateValue(value string) error {
	if value == "" {
		return fmt.Errorf("vote value cannot be empty")
	}

	if len(value) > MaxVoteLength {
		return fmt.Errorf("vote value too long (max %d characters)", MaxVoteLength)
	}

	if v.IsSpecialValue(value) {
		return nil
	}

	if _, ok := v.ParseNumericValue(value); !ok {
		return fmt.Errorf("invalid vote value: '%s'", value)
	}

	return nil
}

// IsSpecialValue reports whether a token is one of the non-numeric symbols.
func (v *VoteValidator) IsSpecialValue(value string) bool {
	return value == VoteUnknown || value == VoteInfinity
}

// ParseNumericValue attempts to parse a vote value as a number (int or float)
// Returns the float value and true if successful, 0 and false otherwise
func (v *VoteValidator) ParseNumericValue(value string) (float64, bool) {
	if num, err := strconv.ParseFloat(value, 64); err == nil {
		if num >= 0 && num <= MaxNumericVote {
			return num, true
		}
	}
	return 0, false
}

// IsNumericValue checks if a value can be parsed as a number
func (v *VoteValidator) IsNumericValue(value string) bool {
	_, ok := v.ParseNumericValue(value)
	return ok
}
