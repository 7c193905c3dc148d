package movement

import (
	"sort"
	"sync"
	"time"
)

// UserPosition is one user's avatar position on the floor plan, as
// published by the backend to every connected client of the house.
type UserPosition struct {
	UserID       int       `json:"user_id"`
	Username     string    `json:"username"`
	ProfileImage string    `json:"profile_image,omitempty"`
	X            int       `json:"x"`
	Y            int       `json:"y"`
	LastUpdate   time.Time `json:"last_update,omitempty"`
}

// Tracker holds the live positions of every user walking a house's floor
// plan. It is safe for concurrent use; realtime updates and API reads hit
// it from different goroutines.
type Tracker struct {
	mu        sync.RWMutex
	positions map[int]UserPosition
}

// NewTracker returns an empty position tracker.
func NewTracker() *Tracker {
	return &Tracker{positions: make(map[int]UserPosition)}
}

// Set records or replaces a user's position. Re-announcing an unchanged
// position is a no-op apart from the timestamp.
func (t *Tracker) Set(pos UserPosition) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.positions[pos.UserID] = pos
}

// Remove drops a user's position, typically when they stop walking or
// disconnect. Removing an absent user is a no-op.
func (t *Tracker) Remove(userID int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.positions, userID)
}

// Get returns a user's position and whether one is recorded.
func (t *Tracker) Get(userID int) (UserPosition, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	pos, ok := t.positions[userID]
	return pos, ok
}

// All returns every recorded position ordered by user id.
func (t *Tracker) All() []UserPosition {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]UserPosition, 0, len(t.positions))
	for _, pos := range t.positions {
		out = append(out, pos)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UserID < out[j].UserID
	})
	return out
}

// Len returns the number of tracked users.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.positions)
}

// Reset drops every position, used when the realtime session reconnects
// and the tracker is rebuilt from an authoritative snapshot.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.positions = make(map[int]UserPosition)
}
