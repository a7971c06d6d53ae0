package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/kathashu/kathashu/models"
	"github.com/kathashu/kathashu/utils"
)

const (
	usernameCacheTTL = 15 * time.Minute
	adminCacheTTL    = time.Minute
)

// UserCache resolves user display names with a Redis cache in front of the
// database. Lookups for deleted or unknown users return a stable placeholder
// so callers never have to branch on missing authors.
type UserCache struct {
	db *gorm.DB
}

// NewUserCache creates a UserCache backed by the given database handle.
func NewUserCache(db *gorm.DB) *UserCache {
	return &UserCache{db: db}
}

func usernameCacheKey(userID uint) string {
	return fmt.Sprintf("cache:username:%d", userID)
}

func adminCacheKey(userID uint) string {
	return fmt.Sprintf("cache:isadmin:%d", userID)
}

// ResolveUsername returns the username for a user id, consulting Redis first.
// Unknown users yield the placeholder name rather than an error.
func (uc *UserCache) ResolveUsername(userID uint) string {
	key := usernameCacheKey(userID)
	if b, ok := utils.CacheGetBytes(key); ok {
		return string(b)
	}

	var user models.User
	if err := uc.db.Select("username").First(&user, userID).Error; err != nil {
		return models.PlaceholderName(userID)
	}
	name := user.Username
	if name == "" {
		name = models.PlaceholderName(userID)
	}
	utils.CacheSetBytes(key, []byte(name), usernameCacheTTL)
	return name
}

// ResolveUsernames resolves a batch of user ids in one query, filling the
// cache for each. Order of the result map is keyed by id.
func (uc *UserCache) ResolveUsernames(userIDs []uint) map[uint]string {
	out := make(map[uint]string, len(userIDs))
	var missing []uint
	for _, id := range utils.UniqueUint(userIDs) {
		if b, ok := utils.CacheGetBytes(usernameCacheKey(id)); ok {
			out[id] = string(b)
		} else {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return out
	}

	var users []models.User
	if err := uc.db.Select("id", "username").Where("id IN ?", missing).Find(&users).Error; err == nil {
		for _, u := range users {
			name := u.Username
			if name == "" {
				name = models.PlaceholderName(u.ID)
			}
			out[u.ID] = name
			utils.CacheSetBytes(usernameCacheKey(u.ID), []byte(name), usernameCacheTTL)
		}
	}
	for _, id := range missing {
		if _, ok := out[id]; !ok {
			out[id] = models.PlaceholderName(id)
		}
	}
	return out
}

// IsAdmin reports whether a user holds the admin flag, cached briefly. Use it
// for display decisions; enforcement paths read the flag fresh.
func (uc *UserCache) IsAdmin(userID uint) bool {
	key := adminCacheKey(userID)
	if b, ok := utils.CacheGetBytes(key); ok {
		return string(b) == "1"
	}

	var user models.User
	if err := uc.db.Select("id", "is_admin").First(&user, userID).Error; err != nil {
		return false
	}
	v := "0"
	if user.IsAdmin {
		v = "1"
	}
	utils.CacheSetBytes(key, []byte(v), adminCacheTTL)
	return user.IsAdmin
}

// Invalidate drops the cached username and admin flag for a user. Call after
// renames, permission changes, and account deletions.
func (uc *UserCache) Invalidate(userID uint) {
	utils.CacheDel(usernameCacheKey(userID))
	utils.CacheDel(adminCacheKey(userID))
}
