package client

import (
	"sync"

	"github.com/cubie-app/chat/internal/models"
)

type joinGroupPayload struct {
	GroupID uint `json:"group_id"`
}

// RoomTracker keeps the joined room set equal to the directory's group ids.
// Join instructions are idempotent server-side.
type RoomTracker struct {
	mu     sync.Mutex
	joined map[uint]struct{}
	send   func(eventType string, payload interface{})
}

func NewRoomTracker(send func(eventType string, payload interface{})) *RoomTracker {
	return &RoomTracker{
		joined: make(map[uint]struct{}),
		send:   send,
	}
}

// Reconcile joins every directory group not yet joined and leaves every
// joined room no longer in the directory (membership revoked mid-session).
func (t *RoomTracker) Reconcile(groups []models.GroupResponse) {
	t.mu.Lock()
	want := make(map[uint]struct{}, len(groups))
	for _, g := range groups {
		want[g.ID] = struct{}{}
	}

	var joins, leaves []uint
	for id := range want {
		if _, ok := t.joined[id]; !ok {
			joins = append(joins, id)
			t.joined[id] = struct{}{}
		}
	}
	for id := range t.joined {
		if _, ok := want[id]; !ok {
			leaves = append(leaves, id)
			delete(t.joined, id)
		}
	}
	t.mu.Unlock()

	for _, id := range joins {
		t.send(eventJoinGroup, joinGroupPayload{GroupID: id})
	}
	for _, id := range leaves {
		t.send(eventLeaveGroup, joinGroupPayload{GroupID: id})
	}
}

// Rejoin re-sends join instructions for every known room. Called after a
// reconnect, where server-side room state was lost with the connection.
func (t *RoomTracker) Rejoin() {
	t.mu.Lock()
	rooms := make([]uint, 0, len(t.joined))
	for id := range t.joined {
		rooms = append(rooms, id)
	}
	t.mu.Unlock()

	for _, id := range rooms {
		t.send(eventJoinGroup, joinGroupPayload{GroupID: id})
	}
}

// Joined reports whether a room join was issued for the group.
func (t *RoomTracker) Joined(groupID uint) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.joined[groupID]
	return ok
}
