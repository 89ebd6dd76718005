package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/cubie-app/chat/internal/models"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(message *models.Message) error {
	return r.db.Create(message).Error
}

func (r *MessageRepository) FindByID(id uint) (*models.Message, error) {
	var message models.Message
	err := r.db.Preload("Sender").First(&message, id).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *MessageRepository) FindByClientID(clientID string, senderID uint) (*models.Message, error) {
	var message models.Message
	err := r.db.Preload("Sender").
		Where("client_id = ? AND sender_id = ?", clientID, senderID).
		First(&message).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *MessageRepository) FindGroupPage(groupID uint, page, limit int) ([]models.Message, bool, error) {
	if page < 1 {
		page = 1
	}

	// Fetch one extra row to learn whether an older page exists.
	var messages []models.Message
	err := r.db.Preload("Sender").
		Where("group_id = ?", groupID).
		Order("created_at DESC, id DESC").
		Offset((page - 1) * limit).
		Limit(limit + 1).
		Find(&messages).Error
	if err != nil {
		return nil, false, err
	}

	hasNext := len(messages) > limit
	if hasNext {
		messages = messages[:limit]
	}

	// Newest-first from the query; reverse so each page reads chronologically.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, hasNext, nil
}

func (r *MessageRepository) LatestGroupMessage(groupID uint) (*models.Message, error) {
	var message models.Message
	err := r.db.Preload("Sender").
		Where("group_id = ?", groupID).
		Order("created_at DESC, id DESC").
		First(&message).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &message, nil
}
