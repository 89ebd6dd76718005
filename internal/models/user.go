package models

import "time"

type Role string

const (
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
	RoleParent  Role = "parent"
)

type User struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name  string `gorm:"size:100;not null" json:"name"`
	Email string `gorm:"uniqueIndex;not null" json:"email"`
	Role  Role   `gorm:"type:varchar(20);not null;default:'student'" json:"role"`
}

type UserResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:   u.ID,
		Name: u.Name,
		Role: u.Role,
	}
}

// NotificationSettings holds the per-category toggles from the identity
// provider. The chat layer only reads them.
type NotificationSettings struct {
	GroupChat    bool `json:"groupChat"`
	SchoolUpdate bool `json:"schoolUpdate"`
	Calendar     bool `json:"calendar"`
	SystemUpdate bool `json:"systemUpdate"`
}

// DefaultNotificationSettings enables every category.
func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		GroupChat:    true,
		SchoolUpdate: true,
		Calendar:     true,
		SystemUpdate: true,
	}
}

// Identity is the authenticated user as exposed by the session collaborator.
type Identity struct {
	UserID   uint
	Name     string
	Role     Role
	Settings NotificationSettings
}
