package subtitle

import "strings"

// Sanitize strips HTML-tag-like markup from caption text. It is the sole
// injection defense for content that may later be rendered as HTML, so it is
// applied to every caption on the way into a document.
//
// Two passes, no regex: the first drops every <...> run (an unterminated "<"
// consumes the rest of the string), the second drops any stray angle bracket
// left by malformed or nested markup. The result is trimmed and is free of
// '<' and '>' characters, which also makes Sanitize idempotent.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))
	inTag := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inTag:
			if c == '>' {
				inTag = false
			}
		case c == '<':
			inTag = true
		case c == '>':
			// stray closer, drop it
		default:
			b.WriteByte(c)
		}
	}
	return strings.TrimSpace(b.String())
}
