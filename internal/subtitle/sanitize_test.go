package subtitle

import (
	"strings"
	"testing"
)

func TestSanitize(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", ""},
		{"plain text", "plain text"},
		{"<i>styled</i>", "styled"},
		{"a <b>bold</b> word", "a bold word"},
		{"unterminated <i tag runs out", "unterminated"},
		{"stray > closer", "stray  closer"},
		{"<<nested> b>", "b"},
		{"  padded  ", "padded"},
		{"<font color=\"#fff\">hi</font>", "hi"},
		{"1 < 2 and done", "1"},
	}
	for _, c := range cases {
		if got := Sanitize(c.in); got != c.want {
			t.Errorf("Sanitize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSanitizeIdempotentAndBracketFree(t *testing.T) {
	inputs := []string{
		"<i>hello</i>",
		"a < b > c < d",
		"<<<>>>",
		"no markup at all",
		"<broken",
	}
	for _, in := range inputs {
		once := Sanitize(in)
		if strings.ContainsAny(once, "<>") {
			t.Errorf("Sanitize(%q) = %q still contains angle brackets", in, once)
		}
		if twice := Sanitize(once); twice != once {
			t.Errorf("Sanitize not idempotent for %q: %q vs %q", in, once, twice)
		}
	}
}
