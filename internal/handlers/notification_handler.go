package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/cubie-app/chat/internal/httpx"
	"github.com/cubie-app/chat/internal/models"
	"github.com/cubie-app/chat/internal/service"
)

type NotificationHandler struct {
	notificationService *service.NotificationService
}

func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// Announce pushes a non-chat notification (school update, grade update,
// calendar, system) to connected recipients. Teacher-only.
func (h *NotificationHandler) Announce(c *fiber.Ctx) error {
	role := models.Role(httpx.LocalRole(c, "role"))
	if role != models.RoleTeacher {
		return httpx.Forbidden(c, "teacher_required", "Only teachers can send announcements")
	}

	var input service.AnnounceInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_body", "Invalid request body")
	}

	delivered, err := h.notificationService.Announce(input)
	if err != nil {
		if errors.Is(err, service.ErrInvalidNotification) {
			return httpx.BadRequest(c, "invalid_notification", "Invalid notification")
		}
		return httpx.Internal(c, "announce_failed")
	}

	return c.JSON(fiber.Map{"delivered": delivered})
}
