package utils

import (
	"html"
	"strings"
)

// RenderStoryHTML converts plain story text into safe HTML.
// Input is escaped first, then split on blank lines into blocks: a block
// starting with "# " becomes an <h2>, with "## " an <h3>, anything else a
// paragraph where remaining single newlines turn into <br>.
func RenderStoryHTML(content string) string {
	escaped := html.EscapeString(content)

	var b strings.Builder
	for _, block := range strings.Split(escaped, "\n\n") {
		if strings.TrimSpace(block) == "" {
			continue
		}
		switch {
		case strings.HasPrefix(block, "# "):
			b.WriteString("<h2>")
			b.WriteString(block[2:])
			b.WriteString("</h2>")
		case strings.HasPrefix(block, "## "):
			b.WriteString("<h3>")
			b.WriteString(block[3:])
			b.WriteString("</h3>")
		default:
			b.WriteString("<p>")
			b.WriteString(strings.ReplaceAll(block, "\n", "<br>"))
			b.WriteString("</p>")
		}
	}
	return b.String()
}
