package models

import "time"

type NotificationType string

const (
	NotificationMessage      NotificationType = "message"
	NotificationAnnouncement NotificationType = "announcement"
	NotificationSchoolUpdate NotificationType = "schoolUpdate"
	NotificationGradeUpdate  NotificationType = "gradeUpdate"
	NotificationCalendar     NotificationType = "calendar"
	NotificationSystemUpdate NotificationType = "systemUpdate"
)

type NotificationCategory string

const (
	CategoryGroupChat    NotificationCategory = "groupChat"
	CategorySchoolUpdate NotificationCategory = "schoolUpdate"
	CategoryCalendar     NotificationCategory = "calendar"
	CategorySystemUpdate NotificationCategory = "systemUpdate"
	CategoryUnknown      NotificationCategory = ""
)

// Category maps a notification type onto the settings toggle that gates it.
func (t NotificationType) Category() NotificationCategory {
	switch t {
	case NotificationMessage:
		return CategoryGroupChat
	case NotificationAnnouncement, NotificationSchoolUpdate, NotificationGradeUpdate:
		return CategorySchoolUpdate
	case NotificationCalendar:
		return CategoryCalendar
	case NotificationSystemUpdate:
		return CategorySystemUpdate
	default:
		return CategoryUnknown
	}
}

// Allows reports whether the settings permit a category. Unknown categories
// are allowed.
func (s NotificationSettings) Allows(cat NotificationCategory) bool {
	switch cat {
	case CategoryGroupChat:
		return s.GroupChat
	case CategorySchoolUpdate:
		return s.SchoolUpdate
	case CategoryCalendar:
		return s.Calendar
	case CategorySystemUpdate:
		return s.SystemUpdate
	default:
		return true
	}
}

// Notification lives only for the session; it is never persisted by the chat
// layer.
type Notification struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
	IsRead    bool             `json:"is_read"`

	// Metadata for message-type notifications.
	GroupID    uint   `json:"group_id,omitempty"`
	GroupName  string `json:"group_name,omitempty"`
	SenderID   uint   `json:"sender_id,omitempty"`
	SenderName string `json:"sender_name,omitempty"`
}
