package services

import (
	"sort"
	"strings"
	"time"

	"github.com/kathashu/kathashu/models"
)

// summaryAliases is the lookup order for summary-like fields in legacy story
// exports. Older clients wrote the same text under many names; the first
// non-empty one wins.
var summaryAliases = []string{
	"summary", "description", "excerpt", "shortDescription", "preview",
	"snippet", "brief", "abstract", "teaser", "intro", "metaDescription",
	"shortContent",
}

// NormalizeLegacyStory maps a raw legacy story object onto a Story record.
// Legacy exports are loose JSON: summaries hide behind a dozen alias fields,
// tags arrive as an array, a keyed object, or a comma-joined string, and
// numbers decode as float64. authorID is assigned by the importer.
func NormalizeLegacyStory(raw map[string]any, authorID uint) models.Story {
	story := models.Story{
		AuthorID: authorID,
		Title:    stringField(raw, "title"),
		Summary:  firstAlias(raw, summaryAliases),
		Content:  stringField(raw, "content"),
		Tags:     normalizeTags(raw["tags"]),
		CoverURL: stringField(raw, "coverUrl"),
		Likes:    intField(raw, "likes"),
		Views:    intField(raw, "views"),
	}

	status := stringField(raw, "status")
	if status != models.StoryStatusDraft && status != models.StoryStatusPublished {
		// legacy records without an explicit status were live on the site
		status = models.StoryStatusPublished
	}
	story.Status = status

	if ts := timeField(raw, "createdAt"); !ts.IsZero() {
		story.CreatedAt = ts
	}
	return story
}

func firstAlias(raw map[string]any, aliases []string) string {
	for _, key := range aliases {
		if s := stringField(raw, key); s != "" {
			return s
		}
	}
	return ""
}

func normalizeTags(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
		}
		return emptyToNil(out)
	case map[string]any:
		// keyed-object form: tag names are the keys
		out := make([]string, 0, len(t))
		for k := range t {
			if k = strings.TrimSpace(k); k != "" {
				out = append(out, k)
			}
		}
		sort.Strings(out)
		return emptyToNil(out)
	case string:
		parts := strings.Split(t, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return emptyToNil(out)
	default:
		return nil
	}
}

func emptyToNil(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}

func stringField(raw map[string]any, key string) string {
	if v, ok := raw[key]; ok {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func intField(raw map[string]any, key string) int {
	switch t := raw[key].(type) {
	case float64:
		if t < 0 {
			return 0
		}
		return int(t)
	case int:
		if t < 0 {
			return 0
		}
		return t
	}
	return 0
}

func timeField(raw map[string]any, key string) time.Time {
	switch t := raw[key].(type) {
	case string:
		if ts, err := time.Parse(time.RFC3339, t); err == nil {
			return ts
		}
	case float64:
		if t > 0 {
			// epoch milliseconds
			return time.UnixMilli(int64(t))
		}
	}
	return time.Time{}
}
