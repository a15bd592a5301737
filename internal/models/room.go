package models

import "time"

type RoomState string

const (
	StateVoting   RoomState = "voting"
	StateRevealed RoomState = "revealed"
)

// Room holds the state of one voting session: who is in it, the votes cast
// during the current round, and whether those votes have been revealed.
//
// Participants are keyed by connection ID. Votes are keyed by display name,
// matching the wire protocol; two participants sharing a name share a vote
// slot (last write wins).
//
// Room methods are not safe for concurrent use. The registry serializes all
// access; callers must only touch a Room inside a registry callback.
type Room struct {
	ID           string
	Participants map[string]*Participant
	Votes        map[string]string
	Revealed     bool
	CreatedAt    time.Time
	LastActivity time.Time
}

func NewRoom(id string) *Room {
	return &Room{
		ID:           id,
		Participants: make(map[string]*Participant),
		Votes:        make(map[string]string),
		CreatedAt:    time.Now(),
		LastActivity: time.Now(),
	}
}

func (r *Room) State() RoomState {
	if r.Revealed {
		return StateRevealed
	}
	return StateVoting
}

// Join upserts a participant keyed by connection ID. Rejoining with the same
// connection ID replaces the previous entry (reconnect with the same
// identity); votes and the revealed flag are left untouched.
func (r *Room) Join(connectionID, name string, role ParticipantRole) *Participant {
	p := NewParticipant(connectionID, name, role)
	r.Participants[connectionID] = p
	r.LastActivity = time.Now()
	return p
}

// CastVote records a vote for a display name, overwriting any prior vote for
// that name. Votes are accepted in any state; a vote cast after reveal is
// recorded but only becomes visible on the next reveal.
func (r *Room) CastVote(name, value string) {
	r.Votes[name] = value
	r.LastActivity = time.Now()
}

// Reveal transitions the room to the revealed state. No quorum is enforced
// here; incomplete rounds reveal whatever votes exist.
func (r *Room) Reveal() {
	r.Revealed = true
	r.LastActivity = time.Now()
}

// Reset clears all votes and returns the room to the voting state.
func (r *Room) Reset() {
	r.Votes = make(map[string]string)
	r.Revealed = false
	r.LastActivity = time.Now()
}

// RemoveParticipant deletes the participant for a connection ID along with
// the vote recorded under that participant's display name. It reports the
// removed participant's name and whether anything was removed.
func (r *Room) RemoveParticipant(connectionID string) (string, bool) {
	p, ok := r.Participants[connectionID]
	if !ok {
		return "", false
	}

	delete(r.Participants, connectionID)
	delete(r.Votes, p.Name)
	r.LastActivity = time.Now()
	return p.Name, true
}

// Empty reports whether the room holds no participants and no votes, the
// condition under which the registry deletes it.
func (r *Room) Empty() bool {
	return len(r.Participants) == 0 && len(r.Votes) == 0
}

// VotesCopy returns a copy of the votes map safe to hand to broadcasts after
// the registry lock is released.
func (r *Room) VotesCopy() map[string]string {
	votes := make(map[string]string, len(r.Votes))
	for name, value := range r.Votes {
		votes[name] = value
	}
	return votes
}

// Snapshot produces a full copy of the room state for a room-update
// broadcast.
func (r *Room) Snapshot() RoomSnapshot {
	snap := RoomSnapshot{
		Users:     make(map[string]UserInfo, len(r.Participants)),
		Votes:     r.VotesCopy(),
		Usernames: make(map[string]string, len(r.Participants)),
		Revealed:  r.Revealed,
	}
	for connID, p := range r.Participants {
		snap.Users[connID] = UserInfo{Username: p.Name, Role: p.Role}
		snap.Usernames[connID] = p.Name
	}
	return snap
}
