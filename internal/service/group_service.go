package service

import (
	"errors"

	"github.com/cubie-app/chat/internal/cache"
	"github.com/cubie-app/chat/internal/models"
	"github.com/cubie-app/chat/internal/repository"
	"github.com/cubie-app/chat/internal/validation"
)

var (
	ErrInvalidGroupName = errors.New("invalid group name")
	ErrNotTeacher       = errors.New("only teachers can manage groups")
	ErrNotMember        = errors.New("user is not a member of this group")
	ErrAlreadyMember    = errors.New("user is already a member of this group")
)

type GroupService struct {
	groupRepo   repository.GroupRepositoryInterface
	messageRepo repository.MessageRepositoryInterface
	userRepo    repository.UserRepositoryInterface
	groupCache  *cache.GroupCache
}

func NewGroupService(groupRepo repository.GroupRepositoryInterface, messageRepo repository.MessageRepositoryInterface, userRepo repository.UserRepositoryInterface, groupCache *cache.GroupCache) *GroupService {
	return &GroupService{
		groupRepo:   groupRepo,
		messageRepo: messageRepo,
		userRepo:    userRepo,
		groupCache:  groupCache,
	}
}

type CreateGroupInput struct {
	Name    string `json:"name"`
	Members []struct {
		User uint `json:"user"`
	} `json:"members"`
}

// CreateGroup creates a group plus its initial membership. Groups are created
// by teacher actions only; the creator always becomes a member.
func (s *GroupService) CreateGroup(creatorID uint, creatorRole models.Role, input CreateGroupInput) (*models.GroupResponse, error) {
	if creatorRole != models.RoleTeacher {
		return nil, ErrNotTeacher
	}
	if !validation.ValidateGroupName(input.Name) {
		return nil, ErrInvalidGroupName
	}

	group := &models.Group{
		Name:      validation.NormalizeGroupName(input.Name),
		CreatorID: creatorID,
	}
	if err := s.groupRepo.Create(group); err != nil {
		return nil, err
	}

	if err := s.groupRepo.AddMember(group.ID, creatorID, models.RoleTeacher); err != nil {
		return nil, err
	}
	for _, m := range input.Members {
		if m.User == creatorID {
			continue
		}
		if err := s.addMemberWithRole(group.ID, m.User); err != nil {
			return nil, err
		}
	}

	created, err := s.groupRepo.FindByID(group.ID)
	if err != nil {
		return nil, err
	}
	s.groupCache.InvalidateMembers(created.MemberIDs())

	resp := created.ToResponse(nil)
	return &resp, nil
}

// addMemberWithRole resolves the user's platform role so the member entry
// carries it.
func (s *GroupService) addMemberWithRole(groupID, userID uint) error {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return err
	}
	return s.groupRepo.AddMember(groupID, user.ID, user.Role)
}

// Directory returns the user's groups with last-message previews, serving
// from cache when possible.
func (s *GroupService) Directory(userID uint) ([]models.GroupResponse, error) {
	if cached, ok := s.groupCache.GetDirectory(userID); ok {
		return cached, nil
	}

	groups, err := s.groupRepo.GetUserGroups(userID)
	if err != nil {
		return nil, err
	}

	responses := make([]models.GroupResponse, len(groups))
	for i := range groups {
		var preview *models.LastMessage
		if last, err := s.messageRepo.LatestGroupMessage(groups[i].ID); err == nil && last != nil {
			preview = last.Preview()
		}
		responses[i] = groups[i].ToResponse(preview)
	}

	_ = s.groupCache.SetDirectory(userID, responses)
	return responses, nil
}

// AddMembers adds users to a group. The actor must be a teacher member.
func (s *GroupService) AddMembers(actorID uint, actorRole models.Role, groupID uint, memberIDs []uint) (*models.GroupResponse, error) {
	if err := s.requireTeacherMember(actorID, actorRole, groupID); err != nil {
		return nil, err
	}

	for _, id := range memberIDs {
		isMember, err := s.groupRepo.IsMember(groupID, id)
		if err != nil {
			return nil, err
		}
		if isMember {
			continue
		}
		if err := s.addMemberWithRole(groupID, id); err != nil {
			return nil, err
		}
	}

	return s.reloadAndInvalidate(groupID)
}

// RemoveMember removes one user from a group.
func (s *GroupService) RemoveMember(actorID uint, actorRole models.Role, groupID, memberID uint) (*models.GroupResponse, error) {
	if err := s.requireTeacherMember(actorID, actorRole, groupID); err != nil {
		return nil, err
	}

	isMember, err := s.groupRepo.IsMember(groupID, memberID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, ErrNotMember
	}

	if err := s.groupRepo.RemoveMember(groupID, memberID); err != nil {
		return nil, err
	}

	// The removed user needs a fresh directory too.
	s.groupCache.InvalidateMembers([]uint{memberID})
	return s.reloadAndInvalidate(groupID)
}

func (s *GroupService) IsMember(groupID, userID uint) (bool, error) {
	return s.groupRepo.IsMember(groupID, userID)
}

func (s *GroupService) FindByID(groupID uint) (*models.Group, error) {
	return s.groupRepo.FindByID(groupID)
}

// MemberIDs returns the user ids of a group's members.
func (s *GroupService) MemberIDs(groupID uint) ([]uint, error) {
	group, err := s.groupRepo.FindByID(groupID)
	if err != nil {
		return nil, err
	}
	return group.MemberIDs(), nil
}

// TouchGroup invalidates every member's cached directory after a new message
// so last-message previews stay current.
func (s *GroupService) TouchGroup(groupID uint) {
	ids, err := s.MemberIDs(groupID)
	if err != nil {
		return
	}
	s.groupCache.InvalidateMembers(ids)
}

func (s *GroupService) requireTeacherMember(actorID uint, actorRole models.Role, groupID uint) error {
	if actorRole != models.RoleTeacher {
		return ErrNotTeacher
	}
	isMember, err := s.groupRepo.IsMember(groupID, actorID)
	if err != nil {
		return err
	}
	if !isMember {
		return ErrNotMember
	}
	return nil
}

func (s *GroupService) reloadAndInvalidate(groupID uint) (*models.GroupResponse, error) {
	group, err := s.groupRepo.FindByID(groupID)
	if err != nil {
		return nil, err
	}
	s.groupCache.InvalidateMembers(group.MemberIDs())

	var preview *models.LastMessage
	if last, err := s.messageRepo.LatestGroupMessage(groupID); err == nil && last != nil {
		preview = last.Preview()
	}
	resp := group.ToResponse(preview)
	return &resp, nil
}
