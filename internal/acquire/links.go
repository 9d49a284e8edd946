// internal/acquire/links.go
package acquire

import (
	"regexp"
	"strings"
)

// bodyLinkRe matches download URLs in plain-text or HTML message bodies.
// Trailing punctuation and closing quotes are trimmed after the match.
var bodyLinkRe = regexp.MustCompile(`https?://[^\s"'<>]+`)

// ExtractLinks pulls candidate download URLs out of a message body,
// deduplicated and in order of appearance.
func ExtractLinks(body string) []string {
	matches := bodyLinkRe.FindAllString(body, -1)
	seen := make(map[string]bool, len(matches))
	var links []string
	for _, m := range matches {
		link := strings.TrimRight(m, ".,;)]}")
		if link == "" || seen[link] {
			continue
		}
		seen[link] = true
		links = append(links, link)
	}
	return links
}
