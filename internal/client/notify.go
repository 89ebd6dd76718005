package client

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cubie-app/chat/internal/models"
)

const unknownGroupName = "Unknown Group"

// NotificationRouter turns inbound events that are not for the active group
// into notifications, gated by the user's per-category settings, and tracks
// read state. Notifications live only for the session.
type NotificationRouter struct {
	mu            sync.Mutex
	userID        uint
	settings      models.NotificationSettings
	notifications []models.Notification // most recent first
}

func NewNotificationRouter(userID uint, settings models.NotificationSettings) *NotificationRouter {
	return &NotificationRouter{
		userID:   userID,
		settings: settings,
	}
}

// Classify creates a message-type notification unless the message belongs to
// the active group or the user authored it. Classification never fails:
// missing group or sender data degrades to fallback strings.
func (r *NotificationRouter) Classify(msg models.MessageResponse, activeGroupID uint, groups []models.GroupResponse) bool {
	if msg.GroupID == activeGroupID {
		return false
	}
	if msg.SenderID == r.userID {
		return false
	}

	groupName := unknownGroupName
	for _, g := range groups {
		if g.ID == msg.GroupID {
			groupName = g.Name
			break
		}
	}
	senderName := msg.Sender.Name
	if senderName == "" {
		senderName = "Someone"
	}

	return r.Notify(models.Notification{
		Type:       models.NotificationMessage,
		Title:      groupName,
		Message:    fmt.Sprintf("%s: %s", senderName, msg.Content),
		Timestamp:  msg.CreatedAt,
		GroupID:    msg.GroupID,
		GroupName:  groupName,
		SenderID:   msg.SenderID,
		SenderName: senderName,
	})
}

// Notify is the general entry point, also fed by non-chat sources pushed by
// the gateway. Returns false when the category toggle suppressed it.
func (r *NotificationRouter) Notify(n models.Notification) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.settings.Allows(n.Type.Category()) {
		return false
	}

	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now()
	}
	n.IsRead = false

	// Most-recent-first.
	r.notifications = append([]models.Notification{n}, r.notifications...)
	return true
}

// MarkAllRead flips every notification to read. Opening the list reads all
// of it; there is no per-item transition back to unread.
func (r *NotificationRouter) MarkAllRead() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.notifications {
		r.notifications[i].IsRead = true
	}
}

// Visible re-filters the backlog with the current settings, so disabling a
// category also hides notifications that already arrived.
func (r *NotificationRouter) Visible() []models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.Notification, 0, len(r.notifications))
	for _, n := range r.notifications {
		if r.settings.Allows(n.Type.Category()) {
			out = append(out, n)
		}
	}
	return out
}

// UnreadCount counts unread notifications among the currently visible ones.
func (r *NotificationRouter) UnreadCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, n := range r.notifications {
		if !n.IsRead && r.settings.Allows(n.Type.Category()) {
			count++
		}
	}
	return count
}

// UpdateSettings swaps the per-category toggles used for gating and display.
func (r *NotificationRouter) UpdateSettings(settings models.NotificationSettings) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings = settings
}

// Clear empties the backlog. Bulk reset only; there is no per-item deletion.
func (r *NotificationRouter) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = nil
}
