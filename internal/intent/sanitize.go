package intent

import (
	"net/mail"
	"strings"
	"unicode"
)

// sanitizeText strips tags and control characters from a submitted form
// field and collapses runs of whitespace. Missing fields stay "".
func sanitizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inTag := false
	lastSpace := false
	for _, r := range s {
		switch {
		case inTag:
			if r == '>' {
				inTag = false
			}
		case r == '<':
			inTag = true
		case unicode.IsControl(r) || unicode.IsSpace(r):
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		default:
			b.WriteRune(r)
			lastSpace = false
		}
	}
	return strings.TrimSpace(b.String())
}

// sanitizeEmail returns the cleaned address, or "" when it does not parse.
func sanitizeEmail(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return ""
	}
	return addr.Address
}
