package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/damione1/pokersync/internal/models"
)

func TestNewRoom(t *testing.T) {
	t.Run("creates room in voting state", func(t *testing.T) {
		room := models.NewRoom("room-1")

		assert.Equal(t, "room-1", room.ID)
		assert.False(t, room.Revealed)
		assert.Equal(t, models.StateVoting, room.State())
		assert.NotNil(t, room.Participants)
		assert.NotNil(t, room.Votes)
		assert.WithinDuration(t, time.Now(), room.CreatedAt, time.Second)
	})

	t.Run("initializes empty collections", func(t *testing.T) {
		room := models.NewRoom("room-2")

		assert.Empty(t, room.Participants)
		assert.Empty(t, room.Votes)
		assert.True(t, room.Empty())
	})
}

func TestRoom_Join(t *testing.T) {
	t.Run("adds participant keyed by connection ID", func(t *testing.T) {
		room := models.NewRoom("room-1")

		p := room.Join("conn-1", "Alice", models.RoleModerator)

		assert.Equal(t, "conn-1", p.ConnectionID)
		assert.Equal(t, "Alice", p.Name)
		assert.Equal(t, models.RoleModerator, p.Role)
		assert.Len(t, room.Participants, 1)
		assert.Same(t, p, room.Participants["conn-1"])
	})

	t.Run("upserts on rejoin with same connection ID", func(t *testing.T) {
		room := models.NewRoom("room-1")
		room.Join("conn-1", "Alice", models.RoleVoter)

		room.Join("conn-1", "Alicia", models.RoleModerator)

		assert.Len(t, room.Participants, 1)
		assert.Equal(t, "Alicia", room.Participants["conn-1"].Name)
		assert.Equal(t, models.RoleModerator, room.Participants["conn-1"].Role)
	})

	t.Run("does not reset votes or revealed state", func(t *testing.T) {
		room := models.NewRoom("room-1")
		room.Join("conn-1", "Alice", models.RoleVoter)
		room.CastVote("Alice", "5")
		room.Reveal()

		room.Join("conn-2", "Bob", models.RoleVoter)

		assert.Equal(t, map[string]string{"Alice": "5"}, room.Votes)
		assert.True(t, room.Revealed)
	})

	t.Run("allows duplicate display names", func(t *testing.T) {
		room := models.NewRoom("room-1")
		room.Join("conn-1", "Alice", models.RoleVoter)
		room.Join("conn-2", "Alice", models.RoleVoter)

		assert.Len(t, room.Participants, 2)
	})
}

func TestRoom_CastVote(t *testing.T) {
	t.Run("records vote keyed by display name", func(t *testing.T) {
		room := models.NewRoom("room-1")
		room.Join("conn-1", "Alice", models.RoleVoter)

		room.CastVote("Alice", "8")

		assert.Equal(t, "8", room.Votes["Alice"])
	})

	t.Run("overwrites prior vote without growing the mapping", func(t *testing.T) {
		room := models.NewRoom("room-1")
		room.CastVote("Alice", "5")

		room.CastVote("Alice", "13")

		assert.Len(t, room.Votes, 1)
		assert.Equal(t, "13", room.Votes["Alice"])
	})

	t.Run("accepts votes while revealed", func(t *testing.T) {
		room := models.NewRoom("room-1")
		room.Reveal()

		room.CastVote("Alice", "3")

		assert.Equal(t, "3", room.Votes["Alice"])
		assert.True(t, room.Revealed)
	})
}

func TestRoom_RevealAndReset(t *testing.T) {
	t.Run("reveal transitions to revealed without touching votes", func(t *testing.T) {
		room := models.NewRoom("room-1")
		room.CastVote("Alice", "5")
		room.CastVote("Bob", "8")

		room.Reveal()

		assert.True(t, room.Revealed)
		assert.Equal(t, models.StateRevealed, room.State())
		assert.Equal(t, map[string]string{"Alice": "5", "Bob": "8"}, room.Votes)
	})

	t.Run("reveal succeeds with no votes", func(t *testing.T) {
		room := models.NewRoom("room-1")

		room.Reveal()

		assert.True(t, room.Revealed)
		assert.Empty(t, room.Votes)
	})

	t.Run("reset clears votes and returns to voting", func(t *testing.T) {
		room := models.NewRoom("room-1")
		room.CastVote("Alice", "5")
		room.Reveal()

		room.Reset()

		assert.Empty(t, room.Votes)
		assert.False(t, room.Revealed)
		assert.Equal(t, models.StateVoting, room.State())
	})

	t.Run("reset is safe in voting state", func(t *testing.T) {
		room := models.NewRoom("room-1")
		room.CastVote("Alice", "5")

		room.Reset()

		assert.Empty(t, room.Votes)
		assert.False(t, room.Revealed)
	})
}

func TestRoom_RemoveParticipant(t *testing.T) {
	t.Run("removes participant and its vote", func(t *testing.T) {
		room := models.NewRoom("room-1")
		room.Join("conn-1", "Alice", models.RoleVoter)
		room.CastVote("Alice", "5")

		name, ok := room.RemoveParticipant("conn-1")

		assert.True(t, ok)
		assert.Equal(t, "Alice", name)
		assert.NotContains(t, room.Participants, "conn-1")
		assert.NotContains(t, room.Votes, "Alice")
	})

	t.Run("removing unknown connection is a no-op", func(t *testing.T) {
		room := models.NewRoom("room-1")
		room.Join("conn-1", "Alice", models.RoleVoter)

		name, ok := room.RemoveParticipant("conn-2")

		assert.False(t, ok)
		assert.Empty(t, name)
		assert.Len(t, room.Participants, 1)
	})

	t.Run("leaves other participants' votes intact", func(t *testing.T) {
		room := models.NewRoom("room-1")
		room.Join("conn-1", "Alice", models.RoleVoter)
		room.Join("conn-2", "Bob", models.RoleVoter)
		room.CastVote("Alice", "5")
		room.CastVote("Bob", "8")

		room.RemoveParticipant("conn-2")

		assert.Equal(t, map[string]string{"Alice": "5"}, room.Votes)
	})
}

func TestRoom_Empty(t *testing.T) {
	t.Run("not empty with a participant who has not voted", func(t *testing.T) {
		room := models.NewRoom("room-1")
		room.Join("conn-1", "Alice", models.RoleVoter)

		assert.False(t, room.Empty())
	})

	t.Run("not empty with a lingering vote and no participants", func(t *testing.T) {
		room := models.NewRoom("room-1")
		room.CastVote("ghost", "5")

		assert.False(t, room.Empty())
	})

	t.Run("empty after last removal", func(t *testing.T) {
		room := models.NewRoom("room-1")
		room.Join("conn-1", "Alice", models.RoleVoter)
		room.CastVote("Alice", "5")

		room.RemoveParticipant("conn-1")

		assert.True(t, room.Empty())
	})
}

func TestRoom_Snapshot(t *testing.T) {
	t.Run("captures users, votes, usernames and revealed", func(t *testing.T) {
		room := models.NewRoom("room-1")
		room.Join("conn-1", "Alice", models.RoleModerator)
		room.Join("conn-2", "Bob", models.RoleVoter)
		room.CastVote("Alice", "5")
		room.Reveal()

		snap := room.Snapshot()

		assert.Equal(t, models.UserInfo{Username: "Alice", Role: models.RoleModerator}, snap.Users["conn-1"])
		assert.Equal(t, models.UserInfo{Username: "Bob", Role: models.RoleVoter}, snap.Users["conn-2"])
		assert.Equal(t, map[string]string{"Alice": "5"}, snap.Votes)
		assert.Equal(t, map[string]string{"conn-1": "Alice", "conn-2": "Bob"}, snap.Usernames)
		assert.True(t, snap.Revealed)
	})

	t.Run("is detached from the room state", func(t *testing.T) {
		room := models.NewRoom("room-1")
		room.Join("conn-1", "Alice", models.RoleVoter)
		room.CastVote("Alice", "5")

		snap := room.Snapshot()
		room.CastVote("Alice", "13")
		room.RemoveParticipant("conn-1")

		assert.Equal(t, "5", snap.Votes["Alice"])
		assert.Contains(t, snap.Usernames, "conn-1")
	})
}
