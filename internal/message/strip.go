package message

import (
	"html"
	"strings"
)

// StripMarkup reduces an externally formatted fragment to plain text:
// HTML/XML tags are removed and entities decoded. Values end up inside a
// WhatsApp text parameter, which carries no markup.
func StripMarkup(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	inTag := false
	for _, r := range s {
		switch {
		case inTag:
			if r == '>' {
				inTag = false
			}
		case r == '<':
			inTag = true
		default:
			b.WriteRune(r)
		}
	}
	return html.UnescapeString(b.String())
}
