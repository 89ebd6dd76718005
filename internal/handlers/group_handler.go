package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/cubie-app/chat/internal/handlers/ws"
	"github.com/cubie-app/chat/internal/httpx"
	"github.com/cubie-app/chat/internal/models"
	"github.com/cubie-app/chat/internal/service"
)

type GroupHandler struct {
	groupService *service.GroupService
	hub          *ws.Hub
}

func NewGroupHandler(groupService *service.GroupService, hub *ws.Hub) *GroupHandler {
	return &GroupHandler{groupService: groupService, hub: hub}
}

// GetMyGroups returns the caller's group directory with last-message
// previews.
func (h *GroupHandler) GetMyGroups(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing user identity")
	}

	groups, err := h.groupService.Directory(userID)
	if err != nil {
		return httpx.Internal(c, "fetch_groups_failed")
	}

	return c.JSON(groups)
}

func (h *GroupHandler) CreateGroup(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing user identity")
	}
	role := models.Role(httpx.LocalRole(c, "role"))

	var input service.CreateGroupInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_body", "Invalid request body")
	}

	group, err := h.groupService.CreateGroup(userID, role, input)
	if err != nil {
		return h.mutationError(c, err, "create_group_failed")
	}

	return c.Status(fiber.StatusCreated).JSON(group)
}

type addMembersRequest struct {
	Members []struct {
		User uint `json:"user"`
	} `json:"members"`
}

func (h *GroupHandler) AddMembers(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing user identity")
	}
	role := models.Role(httpx.LocalRole(c, "role"))

	groupID, err := parseIDParam(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_group_id", "Invalid group id")
	}

	var req addMembersRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_body", "Invalid request body")
	}
	memberIDs := make([]uint, len(req.Members))
	for i, m := range req.Members {
		memberIDs[i] = m.User
	}

	group, err := h.groupService.AddMembers(userID, role, groupID, memberIDs)
	if err != nil {
		return h.mutationError(c, err, "add_members_failed")
	}

	return c.JSON(group)
}

func (h *GroupHandler) RemoveMember(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing user identity")
	}
	role := models.Role(httpx.LocalRole(c, "role"))

	groupID, err := parseIDParam(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_group_id", "Invalid group id")
	}
	memberID, err := parseIDParam(c, "memberId")
	if err != nil {
		return httpx.BadRequest(c, "invalid_member_id", "Invalid member id")
	}

	group, err := h.groupService.RemoveMember(userID, role, groupID, memberID)
	if err != nil {
		return h.mutationError(c, err, "remove_member_failed")
	}

	// Revoked membership leaves the live room immediately, not at reconnect.
	h.hub.LeaveRoom(groupID, memberID)

	return c.JSON(group)
}

func (h *GroupHandler) mutationError(c *fiber.Ctx, err error, code string) error {
	switch {
	case errors.Is(err, service.ErrNotTeacher):
		return httpx.Forbidden(c, "teacher_required", "Only teachers can manage groups")
	case errors.Is(err, service.ErrNotMember):
		return httpx.Forbidden(c, "not_a_member", "User is not a member of this group")
	case errors.Is(err, service.ErrInvalidGroupName):
		return httpx.BadRequest(c, "invalid_group_name", "Invalid group name")
	default:
		return httpx.Internal(c, code)
	}
}

func parseIDParam(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}
