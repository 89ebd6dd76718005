package service

import (
	"errors"
	"sort"
	"time"

	"github.com/cubie-app/chat/internal/models"
)

var errNotFound = errors.New("record not found")

// MockUserRepository is a mock implementation of UserRepository for testing
type MockUserRepository struct {
	users map[uint]*models.User
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[uint]*models.User)}
}

func (m *MockUserRepository) Add(user *models.User) {
	m.users[user.ID] = user
}

func (m *MockUserRepository) FindByID(id uint) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, errNotFound
}

// MockGroupRepository is a mock implementation of GroupRepository for testing
type MockGroupRepository struct {
	groups  map[uint]*models.Group
	members map[uint][]models.GroupMember
	users   *MockUserRepository
	nextID  uint

	failCreate bool
}

func NewMockGroupRepository(users *MockUserRepository) *MockGroupRepository {
	return &MockGroupRepository{
		groups:  make(map[uint]*models.Group),
		members: make(map[uint][]models.GroupMember),
		users:   users,
		nextID:  1,
	}
}

func (m *MockGroupRepository) Create(group *models.Group) error {
	if m.failCreate {
		return errors.New("create failed")
	}
	if group.ID == 0 {
		group.ID = m.nextID
		m.nextID++
	}
	m.groups[group.ID] = group
	return nil
}

func (m *MockGroupRepository) FindByID(id uint) (*models.Group, error) {
	group, ok := m.groups[id]
	if !ok {
		return nil, errNotFound
	}
	copied := *group
	copied.Members = append([]models.GroupMember(nil), m.members[id]...)
	return &copied, nil
}

func (m *MockGroupRepository) AddMember(groupID, userID uint, role models.Role) error {
	for _, mem := range m.members[groupID] {
		if mem.UserID == userID {
			return errors.New("duplicate member")
		}
	}
	member := models.GroupMember{GroupID: groupID, UserID: userID, Role: role, JoinedAt: time.Now()}
	if user, err := m.users.FindByID(userID); err == nil {
		member.User = *user
	}
	m.members[groupID] = append(m.members[groupID], member)
	return nil
}

func (m *MockGroupRepository) RemoveMember(groupID, userID uint) error {
	members := m.members[groupID]
	for i, mem := range members {
		if mem.UserID == userID {
			m.members[groupID] = append(members[:i], members[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *MockGroupRepository) IsMember(groupID, userID uint) (bool, error) {
	for _, mem := range m.members[groupID] {
		if mem.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockGroupRepository) GetUserGroups(userID uint) ([]models.Group, error) {
	var out []models.Group
	for id, group := range m.groups {
		for _, mem := range m.members[id] {
			if mem.UserID == userID {
				copied := *group
				copied.Members = append([]models.GroupMember(nil), m.members[id]...)
				out = append(out, copied)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// MockMessageRepository is a mock implementation of MessageRepository for testing
type MockMessageRepository struct {
	messages []*models.Message
	users    *MockUserRepository
	nextID   uint
}

func NewMockMessageRepository(users *MockUserRepository) *MockMessageRepository {
	return &MockMessageRepository{users: users, nextID: 1}
}

func (m *MockMessageRepository) Create(message *models.Message) error {
	if message.ID == 0 {
		message.ID = m.nextID
		m.nextID++
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	if user, err := m.users.FindByID(message.SenderID); err == nil {
		message.Sender = *user
	}
	m.messages = append(m.messages, message)
	return nil
}

func (m *MockMessageRepository) FindByID(id uint) (*models.Message, error) {
	for _, msg := range m.messages {
		if msg.ID == id {
			return msg, nil
		}
	}
	return nil, errNotFound
}

func (m *MockMessageRepository) FindByClientID(clientID string, senderID uint) (*models.Message, error) {
	for _, msg := range m.messages {
		if msg.ClientID == clientID && msg.SenderID == senderID {
			return msg, nil
		}
	}
	return nil, errNotFound
}

func (m *MockMessageRepository) FindGroupPage(groupID uint, page, limit int) ([]models.Message, bool, error) {
	var inGroup []models.Message
	for _, msg := range m.messages {
		if msg.GroupID == groupID {
			inGroup = append(inGroup, *msg)
		}
	}
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
	rows := inGroup[offset:end]

	out := make([]models.Message, len(rows))
	for i := range rows {
		out[len(rows)-1-i] = rows[i]
	}
	return out, hasNext, nil
}

func (m *MockMessageRepository) LatestGroupMessage(groupID uint) (*models.Message, error) {
	var latest *models.Message
	for _, msg := range m.messages {
		if msg.GroupID != groupID {
			continue
		}
		if latest == nil || msg.CreatedAt.After(latest.CreatedAt) ||
			(msg.CreatedAt.Equal(latest.CreatedAt) && msg.ID > latest.ID) {
			latest = msg
		}
	}
	if latest == nil {
		return nil, nil
	}
	return latest, nil
}
