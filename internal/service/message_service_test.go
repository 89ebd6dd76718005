package service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/cubie-app/chat/internal/models"
)

func newMessageFixture(t *testing.T) (*MessageService, *MockMessageRepository, uint) {
	t.Helper()
	users := NewMockUserRepository()
	seedUsers(users)
	groups := NewMockGroupRepository(users)
	messages := NewMockMessageRepository(users)

	group := &models.Group{Name: "Math 5B", CreatorID: 1}
	if err := groups.Create(group); err != nil {
		t.Fatalf("seeding group failed: %v", err)
	}
	for _, id := range []uint{1, 2} {
		user, _ := users.FindByID(id)
		if err := groups.AddMember(group.ID, id, user.Role); err != nil {
			t.Fatalf("seeding member failed: %v", err)
		}
	}

	return NewMessageService(messages, groups), messages, group.ID
}

func TestSendGroupMessage(t *testing.T) {
	svc, _, groupID := newMessageFixture(t)

	msg, err := svc.SendGroupMessage(2, "client-1", groupID, "  hello class  ")
	if err != nil {
		t.Fatalf("SendGroupMessage failed: %v", err)
	}
	if msg.Content != "hello class" {
		t.Errorf("content not normalized: %q", msg.Content)
	}
	if msg.Sender.Name != "Omar" {
		t.Errorf("broadcast row must carry sender info, got %+v", msg.Sender)
	}
	if msg.ClientID != "client-1" {
		t.Errorf("client id not preserved: %q", msg.ClientID)
	}
}

func TestSendGroupMessageRejectsNonMembers(t *testing.T) {
	svc, _, groupID := newMessageFixture(t)

	if _, err := svc.SendGroupMessage(3, "client-1", groupID, "hello"); err != ErrNotMember {
		t.Errorf("expected ErrNotMember, got %v", err)
	}
}

func TestSendGroupMessageValidatesContent(t *testing.T) {
	svc, _, groupID := newMessageFixture(t)

	tests := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"whitespace only", "   \n\t  "},
		{"too long", strings.Repeat("a", 4001)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.SendGroupMessage(2, "client-1", groupID, tt.content); err != ErrInvalidContent {
				t.Errorf("expected ErrInvalidContent, got %v", err)
			}
		})
	}
}

func TestSendGroupMessageDeduplicatesByClientID(t *testing.T) {
	svc, messages, groupID := newMessageFixture(t)

	first, err := svc.SendGroupMessage(2, "client-1", groupID, "hello")
	if err != nil {
		t.Fatalf("first send failed: %v", err)
	}

	// The same frame arrives again after a reconnect.
	second, err := svc.SendGroupMessage(2, "client-1", groupID, "hello")
	if err != nil {
		t.Fatalf("re-sent frame failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("re-sent frame created a new row: %d vs %d", second.ID, first.ID)
	}
	if len(messages.messages) != 1 {
		t.Errorf("expected a single stored message, got %d", len(messages.messages))
	}

	// A different sender may reuse the client id.
	other, err := svc.SendGroupMessage(1, "client-1", groupID, "different sender")
	if err != nil {
		t.Fatalf("send from other user failed: %v", err)
	}
	if other.ID == first.ID {
		t.Error("client ids are scoped per sender, rows must differ")
	}
}

func TestHistoryPaging(t *testing.T) {
	svc, messages, groupID := newMessageFixture(t)

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 45; i++ {
		messages.Create(&models.Message{
			ClientID:  fmt.Sprintf("c-%d", i),
			SenderID:  2,
			GroupID:   groupID,
			Content:   fmt.Sprintf("message %d", i+1),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
	}

	page1, err := svc.History(2, groupID, 1, 20)
	if err != nil {
		t.Fatalf("History page 1 failed: %v", err)
	}
	if len(page1.Messages) != 20 {
		t.Fatalf("page 1: expected 20 messages, got %d", len(page1.Messages))
	}
	if !page1.Pagination.HasNextPage {
		t.Error("page 1 must report more history")
	}
	// Page 1 holds the newest slice, ascending within the page.
	if page1.Messages[19].Content != "message 45" {
		t.Errorf("page 1 must end with the newest message, got %q", page1.Messages[19].Content)
	}
	if page1.Messages[0].Content != "message 26" {
		t.Errorf("page 1 must start at message 26, got %q", page1.Messages[0].Content)
	}

	page3, err := svc.History(2, groupID, 3, 20)
	if err != nil {
		t.Fatalf("History page 3 failed: %v", err)
	}
	if len(page3.Messages) != 5 {
		t.Fatalf("page 3: expected 5 messages, got %d", len(page3.Messages))
	}
	if page3.Pagination.HasNextPage {
		t.Error("page 3 is the oldest slice, no more history")
	}
	if page3.Messages[0].Content != "message 1" {
		t.Errorf("page 3 must start at the oldest message, got %q", page3.Messages[0].Content)
	}

	empty, err := svc.History(2, groupID, 4, 20)
	if err != nil {
		t.Fatalf("History past the end failed: %v", err)
	}
	if len(empty.Messages) != 0 || empty.Pagination.HasNextPage {
		t.Errorf("past-the-end page must be empty and final, got %+v", empty)
	}
}

func TestHistoryRequiresMembership(t *testing.T) {
	svc, _, groupID := newMessageFixture(t)

	if _, err := svc.History(3, groupID, 1, 20); err != ErrNotMember {
		t.Errorf("expected ErrNotMember, got %v", err)
	}
}

func TestHistoryClampsInput(t *testing.T) {
	svc, messages, groupID := newMessageFixture(t)
	messages.Create(&models.Message{ClientID: "c", SenderID: 2, GroupID: groupID, Content: "only"})

	// Page 0 and a zero limit fall back to defaults instead of failing.
	page, err := svc.History(2, groupID, 0, 0)
	if err != nil {
		t.Fatalf("History with zero inputs failed: %v", err)
	}
	if len(page.Messages) != 1 {
		t.Errorf("expected the single message, got %d", len(page.Messages))
	}
}
