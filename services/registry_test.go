package services

import (
	"errors"
	"testing"

	"gorm.io/gorm"
)

func TestNormalizeUsername(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"alice", "alice"},
		{"ALICE", "alice"},
		{"  Bob_99  ", "bob_99"},
		{"MiXeD", "mixed"},
	}
	for _, c := range cases {
		if got := NormalizeUsername(c.in); got != c.want {
			t.Errorf("NormalizeUsername(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

// The registry keys on the lowercased name, so any casing of a reserved
// username must normalize to the same key that UsernameTaken queries with.
func TestUsernameTakenIgnoresCase(t *testing.T) {
	reserved := NormalizeUsername("alice")
	for _, variant := range []string{"alice", "ALICE", "Alice", " aLiCe "} {
		if got := NormalizeUsername(variant); got != reserved {
			t.Errorf("lookup key for %q = %q, does not collide with reserved %q", variant, got, reserved)
		}
	}
}

func TestIsDuplicateKey(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"gorm translated", gorm.ErrDuplicatedKey, true},
		{"wrapped translated", errors.Join(errors.New("create failed"), gorm.ErrDuplicatedKey), true},
		{"mysql 1062 text", errors.New(`Error 1062: Duplicate entry 'a@b.com' for key 'users.idx_users_email'`), true},
		{"unrelated", errors.New("connection reset"), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := IsDuplicateKey(c.err); got != c.want {
				t.Fatalf("IsDuplicateKey(%v) = %v, want %v", c.err, got, c.want)
			}
		})
	}
}
