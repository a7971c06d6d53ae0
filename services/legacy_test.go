package services

import (
	"reflect"
	"testing"

	"github.com/kathashu/kathashu/models"
)

func TestNormalizeLegacyStorySummaryAliases(t *testing.T) {
	cases := []struct {
		name string
		raw  map[string]any
		want string
	}{
		{"summary wins", map[string]any{"summary": "a", "description": "b"}, "a"},
		{"description fallback", map[string]any{"description": "b", "excerpt": "c"}, "b"},
		{"deep alias", map[string]any{"shortContent": "z"}, "z"},
		{"empty strings skipped", map[string]any{"summary": "  ", "preview": "p"}, "p"},
		{"nothing", map[string]any{}, ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := NormalizeLegacyStory(c.raw, 1).Summary
			if got != c.want {
				t.Fatalf("summary = %q, want %q", got, c.want)
			}
		})
	}
}

func TestNormalizeLegacyStoryTags(t *testing.T) {
	cases := []struct {
		name string
		tags any
		want []string
	}{
		{"array", []any{"go", "web"}, []string{"go", "web"}},
		{"keyed object", map[string]any{"web": true, "go": true}, []string{"go", "web"}},
		{"comma string", "go, web ,  infra", []string{"go", "web", "infra"}},
		{"blank entries dropped", []any{" ", "go"}, []string{"go"}},
		{"absent", nil, nil},
		{"unexpected type", 42.0, nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			raw := map[string]any{}
			if c.tags != nil {
				raw["tags"] = c.tags
			}
			got := NormalizeLegacyStory(raw, 1).Tags
			if !reflect.DeepEqual(got, c.want) {
				t.Fatalf("tags = %v, want %v", got, c.want)
			}
		})
	}
}

func TestNormalizeLegacyStoryStatusAndCounters(t *testing.T) {
	raw := map[string]any{
		"title":  "Old story",
		"status": "bogus",
		"likes":  3.0,
		"views":  -7.0,
	}
	story := NormalizeLegacyStory(raw, 9)
	if story.AuthorID != 9 {
		t.Fatalf("authorID = %d, want 9", story.AuthorID)
	}
	if story.Status != models.StoryStatusPublished {
		t.Fatalf("unknown status should default to published, got %q", story.Status)
	}
	if story.Likes != 3 {
		t.Fatalf("likes = %d, want 3", story.Likes)
	}
	if story.Views != 0 {
		t.Fatalf("negative views should clamp to 0, got %d", story.Views)
	}

	draft := NormalizeLegacyStory(map[string]any{"status": "draft"}, 9)
	if draft.Status != models.StoryStatusDraft {
		t.Fatalf("explicit draft status should survive, got %q", draft.Status)
	}
}

func TestNormalizeLegacyStoryCreatedAt(t *testing.T) {
	withISO := NormalizeLegacyStory(map[string]any{"createdAt": "2024-02-03T04:05:06Z"}, 1)
	if withISO.CreatedAt.IsZero() {
		t.Fatalf("RFC3339 createdAt should parse")
	}
	withMillis := NormalizeLegacyStory(map[string]any{"createdAt": 1706932800000.0}, 1)
	if withMillis.CreatedAt.IsZero() {
		t.Fatalf("epoch-millis createdAt should parse")
	}
	if got := NormalizeLegacyStory(map[string]any{"createdAt": "not a time"}, 1); !got.CreatedAt.IsZero() {
		t.Fatalf("garbage createdAt should stay zero, got %v", got.CreatedAt)
	}
}

func TestNormalizeUsernameLegacy(t *testing.T) {
	if got := NormalizeUsername("  MixedCase "); got != "mixedcase" {
		t.Fatalf("NormalizeUsername = %q", got)
	}
}
