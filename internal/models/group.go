package models

import "time"

type Group struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name      string `gorm:"size:100;not null" json:"name"`
	CreatorID uint   `gorm:"not null" json:"creator_id"`

	// Associations
	Creator User          `gorm:"foreignKey:CreatorID" json:"creator"`
	Members []GroupMember `gorm:"foreignKey:GroupID" json:"members"`
}

type GroupMember struct {
	GroupID  uint      `gorm:"primaryKey" json:"group_id"`
	UserID   uint      `gorm:"primaryKey" json:"user_id"`
	Role     Role      `gorm:"type:varchar(20);default:'student'" json:"role"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`

	User  User  `gorm:"foreignKey:UserID" json:"user"`
	Group Group `gorm:"foreignKey:GroupID" json:"-"`
}

// LastMessage is the denormalized preview shown in the group list. It is
// computed from the message table, never stored.
type LastMessage struct {
	SenderID   uint      `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

type GroupMemberResponse struct {
	User UserResponse `json:"user"`
	Role Role         `json:"role"`
}

type GroupResponse struct {
	ID          uint                  `json:"id"`
	Name        string                `json:"name"`
	CreatorID   uint                  `json:"creator_id"`
	Members     []GroupMemberResponse `json:"members"`
	LastMessage *LastMessage          `json:"last_message,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
}

func (g *Group) ToResponse(last *LastMessage) GroupResponse {
	members := make([]GroupMemberResponse, len(g.Members))
	for i, m := range g.Members {
		members[i] = GroupMemberResponse{User: m.User.ToResponse(), Role: m.Role}
	}
	return GroupResponse{
		ID:          g.ID,
		Name:        g.Name,
		CreatorID:   g.CreatorID,
		Members:     members,
		LastMessage: last,
		CreatedAt:   g.CreatedAt,
	}
}

// MemberIDs returns the user ids of every member.
func (g *Group) MemberIDs() []uint {
	ids := make([]uint, len(g.Members))
	for i, m := range g.Members {
		ids[i] = m.UserID
	}
	return ids
}
