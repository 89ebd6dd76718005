package cache

import (
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/cubie-app/chat/internal/models"
)

// DirectoryTTL bounds staleness of the per-user group list between
// invalidations.
const DirectoryTTL = 2 * time.Minute

// GroupCache caches each user's group directory (groups plus last-message
// previews). All methods are nil-safe so the server can run without Redis.
type GroupCache struct {
	redis *RedisCache
}

func NewGroupCache(redis *RedisCache) *GroupCache {
	return &GroupCache{redis: redis}
}

func directoryKey(userID uint) string {
	return fmt.Sprintf("groups:%d", userID)
}

// GetDirectory retrieves a cached group directory for a user
func (gc *GroupCache) GetDirectory(userID uint) ([]models.GroupResponse, bool) {
	if gc == nil || gc.redis == nil {
		return nil, false
	}
	data, err := gc.redis.Get(directoryKey(userID))
	if err != nil || data == nil {
		return nil, false
	}

	var groups []models.GroupResponse
	if err := msgpack.Unmarshal(data, &groups); err != nil {
		return nil, false
	}

	return groups, true
}

// SetDirectory caches a user's group directory
func (gc *GroupCache) SetDirectory(userID uint, groups []models.GroupResponse) error {
	if gc == nil || gc.redis == nil {
		return nil
	}
	data, err := msgpack.Marshal(groups)
	if err != nil {
		return err
	}

	return gc.redis.Set(directoryKey(userID), data, DirectoryTTL)
}

// InvalidateUser removes a user's cached directory
func (gc *GroupCache) InvalidateUser(userID uint) error {
	if gc == nil || gc.redis == nil {
		return nil
	}
	return gc.redis.Delete(directoryKey(userID))
}

// InvalidateMembers removes the cached directory of every listed user. Used
// after membership changes and new messages so last-message previews stay
// current.
func (gc *GroupCache) InvalidateMembers(userIDs []uint) {
	if gc == nil || gc.redis == nil {
		return
	}
	for _, id := range userIDs {
		_ = gc.redis.Delete(directoryKey(id))
	}
}
