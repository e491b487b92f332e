package room

import "time"

// InactiveThreshold is how long a member may go without any activity
// before a prune removes them from the room.
const InactiveThreshold = 5 * time.Minute

// DefaultTaskMagnitude is used when a room is created without a valid
// magnitude (zero or negative).
const DefaultTaskMagnitude = 10

type Member struct {
	ID             string    `json:"id"`
	DisplayName    string    `json:"displayName"`
	AvatarSeed     string    `json:"avatarSeed"`
	CompletedCount int       `json:"completedCount"`
	LastActiveAt   time.Time `json:"lastActiveAt"`
}

// Room is one active session. Members keep join order; CurrentTurnIndex
// always points into Members while the room exists. Only the room's
// coordinator mutates it.
type Room struct {
	ID               string   `json:"id"`
	CreatorID        string   `json:"creatorId"`
	TaskMagnitude    int      `json:"taskMagnitude"`
	Members          []Member `json:"members"`
	CurrentTurnIndex int      `json:"currentTurnIndex"`
	LastWinnerID     string   `json:"lastWinnerId,omitempty"`
	LastWinnerStreak int      `json:"lastWinnerStreak,omitempty"`
}

// New creates a room with the creator as its only member.
func New(id, creatorID, displayName, avatarSeed string, taskMagnitude int, now time.Time) *Room {
	if taskMagnitude <= 0 {
		taskMagnitude = DefaultTaskMagnitude
	}
	return &Room{
		ID:            id,
		CreatorID:     creatorID,
		TaskMagnitude: taskMagnitude,
		Members: []Member{{
			ID:           creatorID,
			DisplayName:  displayName,
			AvatarSeed:   avatarSeed,
			LastActiveAt: now,
		}},
		CurrentTurnIndex: 0,
	}
}

// Clone returns a deep copy, safe to hand outside the coordinator.
func (r *Room) Clone() *Room {
	cp := *r
	cp.Members = make([]Member, len(r.Members))
	copy(cp.Members, r.Members)
	return &cp
}

func (r *Room) memberIndex(id string) int {
	for i := range r.Members {
		if r.Members[i].ID == id {
			return i
		}
	}
	return -1
}

// Join appends a new member. Joining with an id already present is a
// no-op beyond refreshing that member's activity timestamp.
func (r *Room) Join(id, displayName, avatarSeed string, now time.Time) {
	if i := r.memberIndex(id); i >= 0 {
		r.Members[i].LastActiveAt = now
		return
	}
	r.Members = append(r.Members, Member{
		ID:           id,
		DisplayName:  displayName,
		AvatarSeed:   avatarSeed,
		LastActiveAt: now,
	})
}

// Touch refreshes a member's activity timestamp. Unknown or empty ids
// are ignored.
func (r *Room) Touch(id string, now time.Time) {
	if id == "" {
		return
	}
	if i := r.memberIndex(id); i >= 0 {
		r.Members[i].LastActiveAt = now
	}
}

// RecordCompletion adds amount to a member's completed count.
func (r *Room) RecordCompletion(id string, amount int) {
	if i := r.memberIndex(id); i >= 0 {
		r.Members[i].CompletedCount += amount
	}
}

// SetTurnHolder points the turn index at the given member. If the
// member is absent the index is left unchanged.
func (r *Room) SetTurnHolder(id string) {
	if i := r.memberIndex(id); i >= 0 {
		r.CurrentTurnIndex = i
	}
}

// PruneInactive removes every member whose last activity is at or
// before now-threshold and reports whether membership changed. The
// turn index resets to 0 when it falls off the end of the shrunk list.
func (r *Room) PruneInactive(now time.Time, threshold time.Duration) bool {
	cutoff := now.Add(-threshold)
	kept := r.Members[:0]
	for _, m := range r.Members {
		if m.LastActiveAt.After(cutoff) {
			kept = append(kept, m)
		}
	}
	changed := len(kept) != len(r.Members)
	r.Members = kept
	if r.CurrentTurnIndex >= len(r.Members) {
		r.CurrentTurnIndex = 0
	}
	return changed
}
