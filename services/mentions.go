package services

import "regexp"

var mentionPattern = regexp.MustCompile(`@(\w+)`)

// ExtractMentions scans text for @username tokens and returns the candidate
// names deduplicated in first-occurrence order. Tokens are matched
// case-sensitively; validation against known usernames is the caller's job.
func ExtractMentions(text string) []string {
	matches := mentionPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		name := m[1]
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}
