package client

import (
	"errors"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/cubie-app/chat/internal/models"
)

var (
	ErrNoActiveGroup = errors.New("no active group selected")
	ErrEmptyMessage  = errors.New("message content is empty")
)

// HistoryFetcher is the slice of the persistence API the store needs.
type HistoryFetcher interface {
	GroupMessages(groupID uint, page, limit int) (*models.MessagePage, error)
}

type sendMessagePayload struct {
	ClientID string `json:"client_id"`
	GroupID  uint   `json:"group_id"`
	Content  string `json:"content"`
}

// MessageStore holds the timeline of the currently active group: live
// messages appended at the tail, older history prepended page by page.
//
// Every fetch is tagged with the generation of the selection it was issued
// for; a response arriving after the selection changed is discarded, so a
// slow page from a previous group can never corrupt the new buffer.
type MessageStore struct {
	mu sync.Mutex

	fetch  HistoryFetcher
	send   func(eventType string, payload interface{})
	userID uint
	limit  int

	gen           uint64
	activeGroupID uint
	messages      []models.MessageResponse
	ids           map[uint]struct{}
	cursorPage    int
	hasMore       bool
	loading       bool
	pending       map[string]struct{}
}

func NewMessageStore(fetch HistoryFetcher, send func(eventType string, payload interface{}), userID uint, limit int) *MessageStore {
	if limit <= 0 {
		limit = 20
	}
	return &MessageStore{
		fetch:   fetch,
		send:    send,
		userID:  userID,
		limit:   limit,
		ids:     make(map[uint]struct{}),
		pending: make(map[string]struct{}),
	}
}

// SelectGroup switches the active group, resets all pagination state and
// loads the most recent page. Selecting 0 clears the active group.
func (st *MessageStore) SelectGroup(groupID uint) {
	st.mu.Lock()
	st.gen++
	gen := st.gen
	st.activeGroupID = groupID
	st.messages = nil
	st.ids = make(map[uint]struct{})
	st.pending = make(map[string]struct{})
	st.cursorPage = 1
	st.hasMore = true
	st.loading = false

	if groupID == 0 {
		st.hasMore = false
		st.mu.Unlock()
		return
	}
	st.loading = true
	st.mu.Unlock()

	page, err := st.fetch.GroupMessages(groupID, 1, st.limit)

	st.mu.Lock()
	defer st.mu.Unlock()
	if st.gen != gen {
		return // selection changed while the fetch was in flight
	}
	st.loading = false
	if err != nil {
		log.Printf("Initial history load for group %d failed: %v", groupID, err)
		return
	}

	st.messages = st.messages[:0]
	for _, m := range page.Messages {
		if _, dup := st.ids[m.ID]; dup {
			continue
		}
		st.ids[m.ID] = struct{}{}
		st.messages = append(st.messages, m)
	}
	sortByCreatedAt(st.messages)
	st.cursorPage = 2
	st.hasMore = page.Pagination.HasNextPage && len(page.Messages) > 0
}

// LoadOlder fetches the next older page and prepends it. A no-op while a
// fetch is in flight or once history is exhausted; a failed fetch leaves the
// buffer unchanged and the user can retry.
func (st *MessageStore) LoadOlder() {
	st.mu.Lock()
	if st.activeGroupID == 0 || st.loading || !st.hasMore {
		st.mu.Unlock()
		return
	}
	gen, groupID, page := st.gen, st.activeGroupID, st.cursorPage
	st.loading = true
	st.mu.Unlock()

	resp, err := st.fetch.GroupMessages(groupID, page, st.limit)

	st.mu.Lock()
	defer st.mu.Unlock()
	if st.gen != gen {
		return
	}
	st.loading = false
	if err != nil {
		log.Printf("History page %d for group %d failed: %v", page, groupID, err)
		return
	}

	older := make([]models.MessageResponse, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		if _, dup := st.ids[m.ID]; dup {
			continue
		}
		st.ids[m.ID] = struct{}{}
		older = append(older, m)
	}
	sortByCreatedAt(older)
	st.messages = append(older, st.messages...)

	st.cursorPage++
	st.hasMore = resp.Pagination.HasNextPage && len(resp.Messages) > 0
}

// ApplyLive folds a live message into the buffer. Returns true when the
// message belongs to the active group, whether or not it was a duplicate;
// false means the caller should route it to notifications instead.
func (st *MessageStore) ApplyLive(msg models.MessageResponse) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.activeGroupID == 0 || msg.GroupID != st.activeGroupID {
		return false
	}

	if msg.ClientID != "" && msg.SenderID == st.userID {
		delete(st.pending, msg.ClientID)
	}

	if _, dup := st.ids[msg.ID]; dup {
		return true
	}
	st.ids[msg.ID] = struct{}{}

	// Live messages are normally newer than everything buffered; insert
	// sorted only when the server clock says otherwise.
	if n := len(st.messages); n > 0 && msg.CreatedAt.Before(st.messages[n-1].CreatedAt) {
		st.messages = append(st.messages, msg)
		sortByCreatedAt(st.messages)
	} else {
		st.messages = append(st.messages, msg)
	}
	return true
}

// Send dispatches a message for the active group. The buffer is not touched;
// the message appears when the server echoes it back through the live
// channel. The returned client id stays pending until that echo arrives.
func (st *MessageStore) Send(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", ErrEmptyMessage
	}

	st.mu.Lock()
	groupID := st.activeGroupID
	if groupID == 0 {
		st.mu.Unlock()
		return "", ErrNoActiveGroup
	}
	clientID := uuid.NewString()
	st.pending[clientID] = struct{}{}
	st.mu.Unlock()

	st.send(eventSendMessage, sendMessagePayload{
		ClientID: clientID,
		GroupID:  groupID,
		Content:  content,
	})
	return clientID, nil
}

func (st *MessageStore) ActiveGroup() uint {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.activeGroupID
}

// Messages returns a copy of the buffered timeline, ascending by created_at.
func (st *MessageStore) Messages() []models.MessageResponse {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make([]models.MessageResponse, len(st.messages))
	copy(out, st.messages)
	return out
}

func (st *MessageStore) HasMore() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.hasMore
}

func (st *MessageStore) Loading() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.loading
}

// PendingCount reports sends dispatched but not yet echoed back.
func (st *MessageStore) PendingCount() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.pending)
}

func sortByCreatedAt(messages []models.MessageResponse) {
	sort.SliceStable(messages, func(i, j int) bool {
		if messages[i].CreatedAt.Equal(messages[j].CreatedAt) {
			return messages[i].ID < messages[j].ID
		}
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})
}
