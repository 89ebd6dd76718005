package repository

import (
	"github.com/cubie-app/chat/internal/models"
)

// UserRepositoryInterface defines the contract for user lookups
type UserRepositoryInterface interface {
	FindByID(id uint) (*models.User, error)
}

// GroupRepositoryInterface defines the contract for group repository operations
type GroupRepositoryInterface interface {
	Create(group *models.Group) error
	FindByID(id uint) (*models.Group, error)
	AddMember(groupID, userID uint, role models.Role) error
	RemoveMember(groupID, userID uint) error
	IsMember(groupID, userID uint) (bool, error)
	GetUserGroups(userID uint) ([]models.Group, error)
}

// MessageRepositoryInterface defines the contract for message repository operations
type MessageRepositoryInterface interface {
	Create(message *models.Message) error
	FindByID(id uint) (*models.Message, error)
	FindByClientID(clientID string, senderID uint) (*models.Message, error)
	// FindGroupPage returns one page of group history plus a has-more flag.
	// Page 1 is the most recent; each page is ascending by created_at.
	FindGroupPage(groupID uint, page, limit int) ([]models.Message, bool, error)
	LatestGroupMessage(groupID uint) (*models.Message, error)
}
