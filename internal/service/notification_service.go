package service

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/cubie-app/chat/internal/models"
)

var ErrInvalidNotification = errors.New("invalid notification")

// Pusher delivers a frame to a single connected user. Satisfied by the
// websocket hub.
type Pusher interface {
	SendToUser(userID uint, data interface{}) error
}

// NotificationService pushes non-chat notifications (announcements, grade
// updates, calendar events) to connected users. Chat-message notifications
// are classified client-side; this is the external event source feeding the
// same pipeline.
type NotificationService struct {
	pusher Pusher
}

func NewNotificationService(pusher Pusher) *NotificationService {
	return &NotificationService{pusher: pusher}
}

type AnnounceInput struct {
	Type       models.NotificationType `json:"type"`
	Title      string                  `json:"title"`
	Message    string                  `json:"message"`
	Recipients []uint                  `json:"recipients"`
}

// Announce pushes a notification frame to every listed recipient. Only
// teachers may announce; the handler enforces that. Returns how many
// recipients were online.
func (s *NotificationService) Announce(input AnnounceInput) (int, error) {
	if input.Type == models.NotificationMessage {
		// Chat messages travel through the room fan-out, not this path.
		return 0, ErrInvalidNotification
	}
	if input.Title == "" || len(input.Recipients) == 0 {
		return 0, ErrInvalidNotification
	}

	notification := models.Notification{
		ID:        uuid.NewString(),
		Type:      input.Type,
		Title:     input.Title,
		Message:   input.Message,
		Timestamp: time.Now(),
	}

	delivered := 0
	for _, userID := range input.Recipients {
		frame := map[string]interface{}{
			"type":    "notification",
			"payload": notification,
		}
		if err := s.pusher.SendToUser(userID, frame); err == nil {
			delivered++
		}
	}
	return delivered, nil
}
