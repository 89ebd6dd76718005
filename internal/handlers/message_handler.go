package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/cubie-app/chat/internal/httpx"
	"github.com/cubie-app/chat/internal/service"
)

type MessageHandler struct {
	messageService *service.MessageService
}

func NewMessageHandler(messageService *service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// GetGroupMessages serves paged history for a group. Page 1 is the most
// recent; within a page messages are chronological.
func (h *MessageHandler) GetGroupMessages(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing user identity")
	}

	groupID, err := parseIDParam(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_group_id", "Invalid group id")
	}

	page := 1
	if pageStr := c.Query("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}
	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	pageResult, err := h.messageService.History(userID, groupID, page, limit)
	if err != nil {
		if errors.Is(err, service.ErrNotMember) {
			return httpx.Forbidden(c, "not_a_member", "User is not a member of this group")
		}
		return httpx.Internal(c, "fetch_messages_failed")
	}

	return c.JSON(pageResult)
}
