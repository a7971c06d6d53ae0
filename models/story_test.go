package models

import "testing"

func TestStoryVisibleTo(t *testing.T) {
	published := Story{AuthorID: 1, Status: StoryStatusPublished}
	draft := Story{AuthorID: 1, Status: StoryStatusDraft}

	cases := []struct {
		name        string
		story       Story
		viewerID    uint
		viewerAdmin bool
		want        bool
	}{
		{"published to anonymous", published, 0, false, true},
		{"published to stranger", published, 2, false, true},
		{"draft to anonymous", draft, 0, false, false},
		{"draft to stranger", draft, 2, false, false},
		{"draft to author", draft, 1, false, true},
		{"draft to admin", draft, 2, true, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.story.VisibleTo(c.viewerID, c.viewerAdmin); got != c.want {
				t.Fatalf("VisibleTo(%d, %v) = %v, want %v", c.viewerID, c.viewerAdmin, got, c.want)
			}
		})
	}
}
