// Package fileid turns share links into file identifiers.
package fileid

import (
	"regexp"
	"strings"
)

// rules are tried in order and the first capture wins. File view links
// come before the generic id= parameter.
var rules = []*regexp.Regexp{
	regexp.MustCompile(`/d/([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`id=([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`/folders/([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`drive.google.com/.*[?&]id=([a-zA-Z0-9_-]+)`),
}

var bareID = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Extract returns the file identifier carried by link. A link that matches
// no rule is accepted only when the whole string already has identifier
// shape. The second result is false when no identifier was found.
func Extract(link string) (string, bool) {
	for _, rule := range rules {
		if m := rule.FindStringSubmatch(link); m != nil {
			return m[1], true
		}
	}

	if bareID.MatchString(link) {
		return link, true
	}

	return "", false
}

// Valid reports whether id has identifier shape.
func Valid(id string) bool {
	return bareID.MatchString(id)
}

// ParseLinks splits free text on newlines and commas and returns the
// trimmed, non-empty entries in order.
func ParseLinks(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == '\n' || r == ','
	})

	links := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			links = append(links, f)
		}
	}
	return links
}
