package models

import "time"

type Message struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	// Client-side tracking. UUID generated by the sender, used to match the
	// broadcast echo and to deduplicate re-sent frames.
	ClientID string `gorm:"type:varchar(36);uniqueIndex:idx_client_sender;not null" json:"client_id"`

	SenderID uint  `gorm:"not null;uniqueIndex:idx_client_sender;index" json:"sender_id"`
	Sender   User  `gorm:"foreignKey:SenderID" json:"sender"`
	GroupID  uint  `gorm:"not null;index:idx_group_created" json:"group_id"`
	Group    Group `gorm:"foreignKey:GroupID" json:"-"`

	Content string `gorm:"type:text;not null" json:"content"`
}

type MessageResponse struct {
	ID        uint         `json:"id"`
	ClientID  string       `json:"client_id"`
	SenderID  uint         `json:"sender_id"`
	Sender    UserResponse `json:"sender"`
	GroupID   uint         `json:"group_id"`
	Content   string       `json:"content"`
	CreatedAt time.Time    `json:"created_at"`
}

func (m *Message) ToResponse() MessageResponse {
	return MessageResponse{
		ID:        m.ID,
		ClientID:  m.ClientID,
		SenderID:  m.SenderID,
		Sender:    m.Sender.ToResponse(),
		GroupID:   m.GroupID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}

// Preview converts a message into the denormalized group-list summary.
func (m *Message) Preview() *LastMessage {
	return &LastMessage{
		SenderID:   m.SenderID,
		SenderName: m.Sender.Name,
		Content:    m.Content,
		CreatedAt:  m.CreatedAt,
	}
}

type Pagination struct {
	HasNextPage bool `json:"has_next_page"`
}

// MessagePage is one page of history. Page 1 holds the most recent messages;
// within a page messages are ascending by created_at.
type MessagePage struct {
	Messages   []MessageResponse `json:"messages"`
	Pagination Pagination        `json:"pagination"`
}
