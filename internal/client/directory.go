package client

import (
	"log"
	"sync"

	"github.com/cubie-app/chat/internal/models"
)

// DirectoryAPI is the slice of the persistence API the directory needs.
type DirectoryAPI interface {
	Groups() ([]models.GroupResponse, error)
	CreateGroup(name string, memberIDs []uint) (*models.GroupResponse, error)
	AddMembers(groupID uint, memberIDs []uint) (*models.GroupResponse, error)
	RemoveMember(groupID, memberID uint) (*models.GroupResponse, error)
}

// GroupDirectory is the authoritative list of the user's groups plus the
// denormalized last-message previews. Live messages patch the single
// affected preview; full refresh is reserved for connect and membership
// changes.
type GroupDirectory struct {
	mu       sync.Mutex
	api      DirectoryAPI
	groups   []models.GroupResponse
	onChange func([]models.GroupResponse)
}

func NewGroupDirectory(api DirectoryAPI, onChange func([]models.GroupResponse)) *GroupDirectory {
	return &GroupDirectory{api: api, onChange: onChange}
}

// Refresh replaces the directory wholesale from the persistence API. On
// failure the previous snapshot stays in place.
func (d *GroupDirectory) Refresh() error {
	groups, err := d.api.Groups()
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.groups = groups
	snapshot := d.snapshotLocked()
	d.mu.Unlock()

	if d.onChange != nil {
		d.onChange(snapshot)
	}
	return nil
}

// ApplyMessage patches the affected group's last-message preview in place.
// Unknown groups are ignored; the next refresh will pick them up.
func (d *GroupDirectory) ApplyMessage(msg models.MessageResponse) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i := range d.groups {
		if d.groups[i].ID == msg.GroupID {
			d.groups[i].LastMessage = &models.LastMessage{
				SenderID:   msg.SenderID,
				SenderName: msg.Sender.Name,
				Content:    msg.Content,
				CreatedAt:  msg.CreatedAt,
			}
			return
		}
	}
}

// CreateGroup creates a group via the persistence API and refreshes the
// directory. Mutation errors propagate to the caller.
func (d *GroupDirectory) CreateGroup(name string, memberIDs []uint) (*models.GroupResponse, error) {
	group, err := d.api.CreateGroup(name, memberIDs)
	if err != nil {
		return nil, err
	}
	d.refreshAfterMutation()
	return group, nil
}

// AddMembers mutates membership and patches the affected group in place so
// an open view reflects it before the refresh lands.
func (d *GroupDirectory) AddMembers(groupID uint, memberIDs []uint) (*models.GroupResponse, error) {
	group, err := d.api.AddMembers(groupID, memberIDs)
	if err != nil {
		return nil, err
	}
	d.patch(*group)
	d.refreshAfterMutation()
	return group, nil
}

// RemoveMember mirrors AddMembers for removal.
func (d *GroupDirectory) RemoveMember(groupID, memberID uint) (*models.GroupResponse, error) {
	group, err := d.api.RemoveMember(groupID, memberID)
	if err != nil {
		return nil, err
	}
	d.patch(*group)
	d.refreshAfterMutation()
	return group, nil
}

func (d *GroupDirectory) patch(group models.GroupResponse) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.groups {
		if d.groups[i].ID == group.ID {
			if group.LastMessage == nil {
				group.LastMessage = d.groups[i].LastMessage
			}
			d.groups[i] = group
			return
		}
	}
}

func (d *GroupDirectory) refreshAfterMutation() {
	if err := d.Refresh(); err != nil {
		log.Printf("Directory refresh after mutation failed: %v", err)
	}
}

// Groups returns a copy of the directory snapshot.
func (d *GroupDirectory) Groups() []models.GroupResponse {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snapshotLocked()
}

// Get looks a group up by id.
func (d *GroupDirectory) Get(groupID uint) (models.GroupResponse, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, g := range d.groups {
		if g.ID == groupID {
			return g, true
		}
	}
	return models.GroupResponse{}, false
}

func (d *GroupDirectory) snapshotLocked() []models.GroupResponse {
	out := make([]models.GroupResponse, len(d.groups))
	copy(out, d.groups)
	return out
}
