package models

import (
	"testing"
	"time"
)

func TestNotificationTypeCategory(t *testing.T) {
	tests := []struct {
		notifType NotificationType
		want      NotificationCategory
	}{
		{NotificationMessage, CategoryGroupChat},
		{NotificationAnnouncement, CategorySchoolUpdate},
		{NotificationSchoolUpdate, CategorySchoolUpdate},
		{NotificationGradeUpdate, CategorySchoolUpdate},
		{NotificationCalendar, CategoryCalendar},
		{NotificationSystemUpdate, CategorySystemUpdate},
		{NotificationType("something-new"), CategoryUnknown},
	}
	for _, tt := range tests {
		if got := tt.notifType.Category(); got != tt.want {
			t.Errorf("Category(%q) = %q, want %q", tt.notifType, got, tt.want)
		}
	}
}

func TestNotificationSettingsAllows(t *testing.T) {
	settings := NotificationSettings{GroupChat: true, Calendar: true}

	tests := []struct {
		category NotificationCategory
		want     bool
	}{
		{CategoryGroupChat, true},
		{CategorySchoolUpdate, false},
		{CategoryCalendar, true},
		{CategorySystemUpdate, false},
		{CategoryUnknown, true},
	}
	for _, tt := range tests {
		if got := settings.Allows(tt.category); got != tt.want {
			t.Errorf("Allows(%q) = %v, want %v", tt.category, got, tt.want)
		}
	}
}

func TestDefaultNotificationSettings(t *testing.T) {
	settings := DefaultNotificationSettings()
	if !settings.GroupChat || !settings.SchoolUpdate || !settings.Calendar || !settings.SystemUpdate {
		t.Errorf("defaults must enable every category: %+v", settings)
	}
}

func TestMessageToResponse(t *testing.T) {
	now := time.Now()
	msg := Message{
		ID:        5,
		ClientID:  "client-1",
		SenderID:  2,
		Sender:    User{ID: 2, Name: "Omar", Role: RoleStudent},
		GroupID:   3,
		Content:   "hello",
		CreatedAt: now,
	}

	resp := msg.ToResponse()
	if resp.ID != 5 || resp.ClientID != "client-1" || resp.GroupID != 3 {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.Sender.Name != "Omar" || resp.Sender.Role != RoleStudent {
		t.Errorf("sender not carried over: %+v", resp.Sender)
	}
	if !resp.CreatedAt.Equal(now) {
		t.Errorf("created_at mismatch: %v", resp.CreatedAt)
	}
}

func TestMessagePreview(t *testing.T) {
	msg := Message{
		SenderID: 2,
		Sender:   User{ID: 2, Name: "Omar"},
		Content:  "hello",
	}
	preview := msg.Preview()
	if preview.SenderID != 2 || preview.SenderName != "Omar" || preview.Content != "hello" {
		t.Errorf("unexpected preview: %+v", preview)
	}
}

func TestGroupToResponse(t *testing.T) {
	group := Group{
		ID:        3,
		Name:      "Math 5B",
		CreatorID: 1,
		Members: []GroupMember{
			{UserID: 1, Role: RoleTeacher, User: User{ID: 1, Name: "Ms. Rivera", Role: RoleTeacher}},
			{UserID: 2, Role: RoleStudent, User: User{ID: 2, Name: "Omar", Role: RoleStudent}},
		},
	}

	last := &LastMessage{SenderID: 2, SenderName: "Omar", Content: "hello"}
	resp := group.ToResponse(last)
	if resp.ID != 3 || resp.Name != "Math 5B" || resp.CreatorID != 1 {
		t.Errorf("unexpected response: %+v", resp)
	}
	if len(resp.Members) != 2 || resp.Members[0].User.Name != "Ms. Rivera" {
		t.Errorf("members not mapped: %+v", resp.Members)
	}
	if resp.LastMessage != last {
		t.Error("preview not attached")
	}

	if resp := group.ToResponse(nil); resp.LastMessage != nil {
		t.Error("nil preview must stay nil")
	}
}

func TestGroupMemberIDs(t *testing.T) {
	group := Group{Members: []GroupMember{{UserID: 1}, {UserID: 2}, {UserID: 5}}}
	ids := group.MemberIDs()
	if len(ids) != 3 || ids[0] != 1 || ids[1] != 2 || ids[2] != 5 {
		t.Errorf("unexpected ids: %v", ids)
	}
}
