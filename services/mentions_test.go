package services

import (
	"reflect"
	"testing"
)

func TestExtractMentions(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{"none", "no mentions here", nil},
		{"single", "thanks @alice for the review", []string{"alice"}},
		{"multiple", "@alice and @bob_42 both liked it", []string{"alice", "bob_42"}},
		{"dedup keeps first occurrence", "@bob then @alice then @bob again", []string{"bob", "alice"}},
		{"case sensitive tokens", "@Alice and @alice differ", []string{"Alice", "alice"}},
		{"punctuation terminates", "ping @carol, then @dave.", []string{"carol", "dave"}},
		{"email-like text still matches", "mail me at foo@example.com", []string{"example"}},
		{"bare at sign", "price is 5 @ best", nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := ExtractMentions(c.in)
			if !reflect.DeepEqual(got, c.want) {
				t.Fatalf("ExtractMentions(%q) = %v, want %v", c.in, got, c.want)
			}
		})
	}
}
