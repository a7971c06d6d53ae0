package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/kathashu/kathashu/models"
)

// ErrUsernameTaken is returned when a username reservation collides with an existing one.
var ErrUsernameTaken = errors.New("username already taken")

// NormalizeUsername lowercases a username for registry storage and lookups.
// Display casing lives on the user record; uniqueness is case-insensitive.
func NormalizeUsername(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// UsernameTaken reports whether a username is already reserved, ignoring case.
func UsernameTaken(db *gorm.DB, name string) (bool, error) {
	var count int64
	err := db.Model(&models.UsernameEntry{}).
		Where("username = ?", NormalizeUsername(name)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ReserveUsername inserts a registry row for the user. The lowercased name is
// the primary key, so a concurrent duplicate fails on the insert itself rather
// than on a racy pre-check. Call inside the same transaction that creates the
// user so both commit or roll back together.
func ReserveUsername(tx *gorm.DB, name string, userID uint) error {
	entry := models.UsernameEntry{
		Username: NormalizeUsername(name),
		UserID:   userID,
	}
	if err := tx.Create(&entry).Error; err != nil {
		if IsDuplicateKey(err) {
			return ErrUsernameTaken
		}
		return err
	}
	return nil
}

// ReleaseUsername removes a registry row. Used when a user renames or deletes
// their account.
func ReleaseUsername(tx *gorm.DB, name string) error {
	return tx.Delete(&models.UsernameEntry{}, "username = ?", NormalizeUsername(name)).Error
}

// RenameUsername atomically swaps a user's registry entry from old to new.
// The new name is reserved before the old one is released so a failure leaves
// the user with a valid reservation either way.
func RenameUsername(tx *gorm.DB, oldName, newName string, userID uint) error {
	if NormalizeUsername(oldName) == NormalizeUsername(newName) {
		return nil
	}
	if err := ReserveUsername(tx, newName, userID); err != nil {
		return err
	}
	return ReleaseUsername(tx, oldName)
}

// ResolveUsername looks up the user id a username maps to. Returns
// gorm.ErrRecordNotFound when unregistered.
func ResolveUsername(db *gorm.DB, name string) (uint, error) {
	var entry models.UsernameEntry
	if err := db.First(&entry, "username = ?", NormalizeUsername(name)).Error; err != nil {
		return 0, err
	}
	return entry.UserID, nil
}

// FilterRegisteredMentions keeps only mention candidates whose exact username
// exists on a user record. Matching is case-sensitive: @Alice does not resolve
// to a user registered as alice.
func FilterRegisteredMentions(db *gorm.DB, candidates []string) ([]string, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	var names []string
	err := db.Model(&models.User{}).
		Where("username IN ?", candidates).
		Pluck("username", &names).Error
	if err != nil {
		return nil, err
	}
	exact := make(map[string]bool, len(names))
	for _, n := range names {
		exact[n] = true
	}
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		// MySQL collations are usually case-insensitive, so re-check exact casing here
		if exact[c] {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

// IsDuplicateKey reports whether err is a unique-constraint violation. gorm
// only translates to ErrDuplicatedKey when the dialector supports it, so the
// MySQL error text is checked as a fallback.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "1062")
}
