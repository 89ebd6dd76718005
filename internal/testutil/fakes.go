package testutil

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/cubie-app/chat/internal/models"
)

var ErrNotFound = errors.New("record not found")

// InMemoryUserRepository is a map-backed UserRepositoryInterface.
type InMemoryUserRepository struct {
	mu    sync.Mutex
	users map[uint]*models.User
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{users: make(map[uint]*models.User)}
}

func (r *InMemoryUserRepository) Seed(users ...*models.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range users {
		r.users[u.ID] = u
	}
}

func (r *InMemoryUserRepository) FindByID(id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, ErrNotFound
}

// InMemoryGroupRepository is a map-backed GroupRepositoryInterface.
type InMemoryGroupRepository struct {
	mu      sync.Mutex
	users   *InMemoryUserRepository
	groups  map[uint]*models.Group
	members map[uint][]models.GroupMember
	nextID  uint
}

func NewInMemoryGroupRepository(users *InMemoryUserRepository) *InMemoryGroupRepository {
	return &InMemoryGroupRepository{
		users:   users,
		groups:  make(map[uint]*models.Group),
		members: make(map[uint][]models.GroupMember),
		nextID:  1,
	}
}

func (r *InMemoryGroupRepository) Create(group *models.Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if group.ID == 0 {
		group.ID = r.nextID
		r.nextID++
	}
	if group.CreatedAt.IsZero() {
		group.CreatedAt = time.Now()
	}
	copied := *group
	r.groups[group.ID] = &copied
	return nil
}

func (r *InMemoryGroupRepository) AddMember(groupID, userID uint, role models.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.groups[groupID]; !ok {
		return ErrNotFound
	}
	for _, m := range r.members[groupID] {
		if m.UserID == userID {
			return errors.New("duplicate member")
		}
	}
	member := models.GroupMember{GroupID: groupID, UserID: userID, Role: role, JoinedAt: time.Now()}
	if user, err := r.users.FindByID(userID); err == nil {
		member.User = *user
	}
	r.members[groupID] = append(r.members[groupID], member)
	return nil
}

func (r *InMemoryGroupRepository) RemoveMember(groupID, userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	members := r.members[groupID]
	for i, m := range members {
		if m.UserID == userID {
			r.members[groupID] = append(members[:i], members[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *InMemoryGroupRepository) IsMember(groupID, userID uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members[groupID] {
		if m.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *InMemoryGroupRepository) FindByID(id uint) (*models.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	group, ok := r.groups[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *group
	copied.Members = append([]models.GroupMember(nil), r.members[id]...)
	return &copied, nil
}

func (r *InMemoryGroupRepository) GetUserGroups(userID uint) ([]models.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Group
	for id, group := range r.groups {
		for _, m := range r.members[id] {
			if m.UserID == userID {
				copied := *group
				copied.Members = append([]models.GroupMember(nil), r.members[id]...)
				out = append(out, copied)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// InMemoryMessageRepository is a map-backed MessageRepositoryInterface with
// the same page semantics as the gorm implementation.
type InMemoryMessageRepository struct {
	mu       sync.Mutex
	users    *InMemoryUserRepository
	messages []*models.Message
	nextID   uint
}

func NewInMemoryMessageRepository(users *InMemoryUserRepository) *InMemoryMessageRepository {
	return &InMemoryMessageRepository{users: users, nextID: 1}
}

func (r *InMemoryMessageRepository) Create(message *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if message.ID == 0 {
		message.ID = r.nextID
		r.nextID++
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	if user, err := r.users.FindByID(message.SenderID); err == nil {
		message.Sender = *user
	}
	copied := *message
	r.messages = append(r.messages, &copied)
	return nil
}

func (r *InMemoryMessageRepository) FindByID(id uint) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.ID == id {
			copied := *m
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (r *InMemoryMessageRepository) FindByClientID(clientID string, senderID uint) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.ClientID == clientID && m.SenderID == senderID {
			copied := *m
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (r *InMemoryMessageRepository) FindGroupPage(groupID uint, page, limit int) ([]models.Message, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if page < 1 {
		page = 1
	}

	var inGroup []models.Message
	for _, m := range r.messages {
		if m.GroupID == groupID {
			inGroup = append(inGroup, *m)
		}
	}
	// Newest first, like the SQL query.
	sort.Slice(inGroup, func(i, j int) bool {
		if inGroup[i].CreatedAt.Equal(inGroup[j].CreatedAt) {
			return inGroup[i].ID > inGroup[j].ID
		}
		return inGroup[i].CreatedAt.After(inGroup[j].CreatedAt)
	})

	offset := (page - 1) * limit
	if offset >= len(inGroup) {
		return nil, false, nil
	}
	end := offset + limit
	hasNext := end < len(inGroup)
	if end > len(inGroup) {
		end = len(inGroup)
	}
	pageRows := inGroup[offset:end]

	// Reverse so the page reads chronologically.
	out := make([]models.Message, len(pageRows))
	for i := range pageRows {
		out[len(pageRows)-1-i] = pageRows[i]
	}
	return out, hasNext, nil
}

func (r *InMemoryMessageRepository) LatestGroupMessage(groupID uint) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *models.Message
	for _, m := range r.messages {
		if m.GroupID != groupID {
			continue
		}
		if latest == nil || m.CreatedAt.After(latest.CreatedAt) ||
			(m.CreatedAt.Equal(latest.CreatedAt) && m.ID > latest.ID) {
			latest = m
		}
	}
	if latest == nil {
		return nil, nil
	}
	copied := *latest
	return &copied, nil
}
