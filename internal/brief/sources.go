package brief

import (
	"fmt"
	"regexp"
	"strings"
)

// sourceLine matches "Name — URL" / "Name - URL" lines emitted by the
// research stage's Sources section.
var sourceLine = regexp.MustCompile(`^[-*]?\s*(.+?)\s+[—–-]+\s+(\S+)\s*$`)

// urlPattern finds bare URLs or domains anywhere in free text, for the
// heuristic fallback when no Sources heading is present.
var urlPattern = regexp.MustCompile(`https?://[^\s)>\]]+|(?:www\.)[a-zA-Z0-9][a-zA-Z0-9.-]*\.[a-zA-Z]{2,}[^\s)>\]]*`)

// ParseSources extracts the source list from research-stage notes. It prefers
// the "Sources" section, parsing one "Name — URL" entry per line; lines that
// cannot be confidently parsed are dropped. When no Sources heading exists it
// falls back to scanning the whole text for URLs. IDs are assigned
// sequentially (s1, s2, ...) in appearance order, and bare domains are
// normalized by prefixing https://.
func ParseSources(notes string) []Source {
	section := sourcesSection(notes)

	var sources []Source
	seen := make(map[string]bool)
	add := func(title, rawURL string) {
		u := NormalizeURL(rawURL)
		if u == "" || seen[u] {
			return
		}
		seen[u] = true
		if title == "" {
			title = u
		}
		sources = append(sources, Source{
			ID:    fmt.Sprintf("s%d", len(sources)+1),
			Title: title,
			URL:   u,
		})
	}

	if section != "" {
		for _, line := range strings.Split(section, "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.EqualFold(line, "none found") || strings.EqualFold(line, "- none found") {
				continue
			}
			if m := sourceLine.FindStringSubmatch(line); m != nil {
				add(strings.TrimSpace(m[1]), m[2])
				continue
			}
			// A lone URL on its own line still counts.
			if u := urlPattern.FindString(line); u != "" && strings.TrimSpace(strings.Replace(line, u, "", 1)) == "" {
				add("", u)
			}
		}
		return sources
	}

	for _, u := range urlPattern.FindAllString(notes, -1) {
		add("", u)
	}
	return sources
}

// sourcesSection returns the text following a "Sources" heading, or "" when
// the heading is absent.
func sourcesSection(notes string) string {
	lines := strings.Split(notes, "\n")
	for i, line := range lines {
		t := strings.ToLower(strings.TrimSpace(strings.Trim(strings.TrimSpace(line), "#*:0123456789). ")))
		if t == "sources" {
			return strings.Join(lines[i+1:], "\n")
		}
	}
	return ""
}

// NormalizeURL trims trailing punctuation and prefixes https:// on bare
// domains. Returns "" for strings that don't look like URLs at all.
func NormalizeURL(raw string) string {
	raw = strings.Trim(strings.TrimSpace(raw), `.,;"'<>()[]`)
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	// A bare domain without scheme: needs at least one dot and no spaces.
	if strings.Contains(raw, " ") || !strings.Contains(raw, ".") {
		return ""
	}
	return "https://" + raw
}
