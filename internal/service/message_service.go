package service

import (
	"errors"

	"github.com/cubie-app/chat/internal/models"
	"github.com/cubie-app/chat/internal/repository"
	"github.com/cubie-app/chat/internal/validation"
)

var ErrInvalidContent = errors.New("message content is empty or too long")

type MessageService struct {
	messageRepo repository.MessageRepositoryInterface
	groupRepo   repository.GroupRepositoryInterface
}

func NewMessageService(messageRepo repository.MessageRepositoryInterface, groupRepo repository.GroupRepositoryInterface) *MessageService {
	return &MessageService{messageRepo: messageRepo, groupRepo: groupRepo}
}

// SendGroupMessage validates and persists a message. Re-sent frames with a
// known client id return the original row, so fan-out stays idempotent.
func (s *MessageService) SendGroupMessage(senderID uint, clientID string, groupID uint, content string) (*models.Message, error) {
	content = validation.NormalizeContent(content)
	if !validation.ValidateContent(content) {
		return nil, ErrInvalidContent
	}

	isMember, err := s.groupRepo.IsMember(groupID, senderID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, ErrNotMember
	}

	if clientID != "" {
		if existing, err := s.messageRepo.FindByClientID(clientID, senderID); err == nil && existing != nil {
			return existing, nil
		}
	}

	message := &models.Message{
		ClientID: clientID,
		SenderID: senderID,
		GroupID:  groupID,
		Content:  content,
	}
	if err := s.messageRepo.Create(message); err != nil {
		return nil, err
	}

	// Reload so the broadcast carries sender info.
	return s.messageRepo.FindByID(message.ID)
}

// History returns one page of group history for a member.
func (s *MessageService) History(userID, groupID uint, page, limit int) (*models.MessagePage, error) {
	isMember, err := s.groupRepo.IsMember(groupID, userID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, ErrNotMember
	}

	limit = validation.ClampLimit(limit)
	if page < 1 {
		page = 1
	}

	messages, hasNext, err := s.messageRepo.FindGroupPage(groupID, page, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]models.MessageResponse, len(messages))
	for i := range messages {
		responses[i] = messages[i].ToResponse()
	}

	return &models.MessagePage{
		Messages:   responses,
		Pagination: models.Pagination{HasNextPage: hasNext},
	}, nil
}
