package models

import "testing"

func TestCanPublish(t *testing.T) {
	cases := []struct {
		isAdmin bool
		canPost bool
		want    bool
	}{
		{false, false, false},
		{false, true, true},
		{true, false, true},
		{true, true, true},
	}
	for _, c := range cases {
		u := User{IsAdmin: c.isAdmin, CanPost: c.canPost}
		if got := u.CanPublish(); got != c.want {
			t.Fatalf("CanPublish(isAdmin=%v canPost=%v) = %v, want %v", c.isAdmin, c.canPost, got, c.want)
		}
	}
}

func TestPlaceholderName(t *testing.T) {
	if got := PlaceholderName(42); got != "user_42" {
		t.Fatalf("PlaceholderName(42) = %q", got)
	}
}
