package service

import (
	"errors"
	"testing"

	"github.com/cubie-app/chat/internal/models"
)

// MockPusher records frames per user and can simulate offline users.
type MockPusher struct {
	offline map[uint]bool
	frames  map[uint][]interface{}
}

func NewMockPusher() *MockPusher {
	return &MockPusher{
		offline: make(map[uint]bool),
		frames:  make(map[uint][]interface{}),
	}
}

func (p *MockPusher) SendToUser(userID uint, data interface{}) error {
	if p.offline[userID] {
		return errors.New("user not connected")
	}
	p.frames[userID] = append(p.frames[userID], data)
	return nil
}

func TestAnnounceDeliversToOnlineRecipients(t *testing.T) {
	pusher := NewMockPusher()
	pusher.offline[3] = true
	svc := NewNotificationService(pusher)

	delivered, err := svc.Announce(AnnounceInput{
		Type:       models.NotificationAnnouncement,
		Title:      "Field trip",
		Message:    "Permission slips due Friday",
		Recipients: []uint{2, 3, 4},
	})
	if err != nil {
		t.Fatalf("Announce failed: %v", err)
	}
	if delivered != 2 {
		t.Errorf("expected 2 delivered, got %d", delivered)
	}
	if len(pusher.frames[2]) != 1 || len(pusher.frames[4]) != 1 {
		t.Error("online recipients missing their frame")
	}
	if len(pusher.frames[3]) != 0 {
		t.Error("offline recipient received a frame")
	}

	frame, ok := pusher.frames[2][0].(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected frame type %T", pusher.frames[2][0])
	}
	if frame["type"] != "notification" {
		t.Errorf("frame type = %v, want notification", frame["type"])
	}
	payload, ok := frame["payload"].(models.Notification)
	if !ok {
		t.Fatalf("unexpected payload type %T", frame["payload"])
	}
	if payload.Title != "Field trip" || payload.ID == "" || payload.Timestamp.IsZero() {
		t.Errorf("incomplete notification payload: %+v", payload)
	}
}

func TestAnnounceRejectsInvalidInput(t *testing.T) {
	svc := NewNotificationService(NewMockPusher())

	tests := []struct {
		name  string
		input AnnounceInput
	}{
		{"message type", AnnounceInput{Type: models.NotificationMessage, Title: "T", Recipients: []uint{1}}},
		{"missing title", AnnounceInput{Type: models.NotificationCalendar, Recipients: []uint{1}}},
		{"no recipients", AnnounceInput{Type: models.NotificationCalendar, Title: "T"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Announce(tt.input); err != ErrInvalidNotification {
				t.Errorf("expected ErrInvalidNotification, got %v", err)
			}
		})
	}
}
