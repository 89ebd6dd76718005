package client

import (
	"sort"
	"testing"

	"github.com/cubie-app/chat/internal/models"
)

type frameLog struct {
	frames []struct {
		event   string
		groupID uint
	}
}

func (l *frameLog) send(eventType string, payload interface{}) {
	p := payload.(joinGroupPayload)
	l.frames = append(l.frames, struct {
		event   string
		groupID uint
	}{eventType, p.GroupID})
}

func (l *frameLog) byEvent(event string) []uint {
	var out []uint
	for _, f := range l.frames {
		if f.event == event {
			out = append(out, f.groupID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func groupList(ids ...uint) []models.GroupResponse {
	out := make([]models.GroupResponse, len(ids))
	for i, id := range ids {
		out[i] = models.GroupResponse{ID: id}
	}
	return out
}

func TestReconcileJoinsNewGroups(t *testing.T) {
	log := &frameLog{}
	tracker := NewRoomTracker(log.send)

	tracker.Reconcile(groupList(1, 2, 3))

	joins := log.byEvent(eventJoinGroup)
	if len(joins) != 3 {
		t.Fatalf("expected 3 joins, got %v", joins)
	}
	for _, id := range []uint{1, 2, 3} {
		if !tracker.Joined(id) {
			t.Errorf("group %d not tracked as joined", id)
		}
	}
}

func TestReconcileIsIncremental(t *testing.T) {
	log := &frameLog{}
	tracker := NewRoomTracker(log.send)

	tracker.Reconcile(groupList(1, 2))
	log.frames = nil

	// Group 2 revoked, group 3 added.
	tracker.Reconcile(groupList(1, 3))

	if joins := log.byEvent(eventJoinGroup); len(joins) != 1 || joins[0] != 3 {
		t.Errorf("expected a single join for group 3, got %v", joins)
	}
	if leaves := log.byEvent(eventLeaveGroup); len(leaves) != 1 || leaves[0] != 2 {
		t.Errorf("expected a single leave for group 2, got %v", leaves)
	}
	if tracker.Joined(2) {
		t.Error("revoked group still tracked")
	}
	if !tracker.Joined(3) {
		t.Error("added group not tracked")
	}
}

func TestReconcileNoChangesSendsNothing(t *testing.T) {
	log := &frameLog{}
	tracker := NewRoomTracker(log.send)

	tracker.Reconcile(groupList(1, 2))
	log.frames = nil
	tracker.Reconcile(groupList(1, 2))

	if len(log.frames) != 0 {
		t.Errorf("unchanged directory must produce no frames, got %v", log.frames)
	}
}

func TestRejoinResendsEveryRoom(t *testing.T) {
	log := &frameLog{}
	tracker := NewRoomTracker(log.send)

	tracker.Reconcile(groupList(1, 2))
	log.frames = nil

	tracker.Rejoin()

	joins := log.byEvent(eventJoinGroup)
	if len(joins) != 2 || joins[0] != 1 || joins[1] != 2 {
		t.Errorf("expected rejoin for groups 1 and 2, got %v", joins)
	}
	if leaves := log.byEvent(eventLeaveGroup); len(leaves) != 0 {
		t.Errorf("rejoin must not leave anything, got %v", leaves)
	}
}
