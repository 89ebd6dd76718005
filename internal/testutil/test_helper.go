package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/cubie-app/chat/internal/models"
	"github.com/google/uuid"
)

// TestHelper provides utility functions for tests
type TestHelper struct {
	t *testing.T
}

func NewTestHelper(t *testing.T) *TestHelper {
	return &TestHelper{t: t}
}

// CreateTestUser creates a test user with default values
func (h *TestHelper) CreateTestUser(id uint, name string, role models.Role) *models.User {
	if id == 0 {
		id = 1
	}
	if name == "" {
		name = "Test User"
	}
	if role == "" {
		role = models.RoleStudent
	}

	return &models.User{
		ID:        id,
		Name:      name,
		Email:     fmt.Sprintf("user%d@school.test", id),
		Role:      role,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// CreateTestGroup creates a test group with the given members. The first
// member is recorded as the creator.
func (h *TestHelper) CreateTestGroup(id uint, name string, members ...*models.User) *models.Group {
	if id == 0 {
		id = 1
	}
	if name == "" {
		name = "Test Group"
	}

	group := &models.Group{
		ID:        id,
		Name:      name,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	for i, u := range members {
		if i == 0 {
			group.CreatorID = u.ID
			group.Creator = *u
		}
		group.Members = append(group.Members, models.GroupMember{
			GroupID:  id,
			UserID:   u.ID,
			Role:     u.Role,
			JoinedAt: time.Now(),
			User:     *u,
		})
	}
	return group
}

// CreateTestMessage creates a test message with default values
func (h *TestHelper) CreateTestMessage(id uint, sender *models.User, groupID uint, content string) *models.Message {
	if id == 0 {
		id = 1
	}
	if content == "" {
		content = "Test message"
	}

	msg := &models.Message{
		ID:        id,
		ClientID:  uuid.New().String(),
		GroupID:   groupID,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if sender != nil {
		msg.SenderID = sender.ID
		msg.Sender = *sender
	}
	return msg
}

// CreateTestIdentity creates a session identity with all notification
// categories enabled.
func (h *TestHelper) CreateTestIdentity(id uint, name string, role models.Role) models.Identity {
	if id == 0 {
		id = 1
	}
	if name == "" {
		name = "Test User"
	}
	if role == "" {
		role = models.RoleStudent
	}
	return models.Identity{
		UserID:   id,
		Name:     name,
		Role:     role,
		Settings: models.DefaultNotificationSettings(),
	}
}

// AssertNoError fails the test if err is not nil
func (h *TestHelper) AssertNoError(err error, msgAndArgs ...interface{}) {
	h.t.Helper()
	if err != nil {
		if len(msgAndArgs) > 0 {
			h.t.Fatalf("unexpected error: %v (%v)", err, msgAndArgs)
		}
		h.t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil
func (h *TestHelper) AssertError(err error, msgAndArgs ...interface{}) {
	h.t.Helper()
	if err == nil {
		if len(msgAndArgs) > 0 {
			h.t.Fatalf("expected an error but got nil (%v)", msgAndArgs)
		}
		h.t.Fatal("expected an error but got nil")
	}
}
