package utils

import (
	"strings"
	"testing"
)

func TestRenderStoryHTML(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"paragraph", "hello world", "<p>hello world</p>"},
		{"two paragraphs", "first\n\nsecond", "<p>first</p><p>second</p>"},
		{"line break inside paragraph", "line one\nline two", "<p>line one<br>line two</p>"},
		{"h2 heading", "# Title\n\nbody", "<h2>Title</h2><p>body</p>"},
		{"h3 heading", "## Sub\n\nbody", "<h3>Sub</h3><p>body</p>"},
		{"blank blocks skipped", "a\n\n\n\nb", "<p>a</p><p>b</p>"},
		{"empty", "", ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := RenderStoryHTML(c.in); got != c.want {
				t.Fatalf("RenderStoryHTML(%q) = %q, want %q", c.in, got, c.want)
			}
		})
	}
}

func TestRenderStoryHTMLEscapesOnce(t *testing.T) {
	// Content is stored as the plain text the author typed, so the
	// renderer is the only place entities get encoded.
	got := Sanitize(RenderStoryHTML(`price: 5 < 10 & "cheap"`))
	want := `<p>price: 5 &lt; 10 &amp; &#34;cheap&#34;</p>`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if strings.Contains(got, "&amp;lt;") || strings.Contains(got, "&amp;#34;") {
		t.Fatalf("entities were encoded twice: %q", got)
	}
}

func TestRenderStoryHTMLEscapesMarkup(t *testing.T) {
	got := RenderStoryHTML(`<script>alert("x")</script>`)
	if strings.Contains(got, "<script>") {
		t.Fatalf("markup not escaped: %q", got)
	}
	if !strings.Contains(got, "&lt;script&gt;") {
		t.Fatalf("expected escaped script tag, got %q", got)
	}
}
