package research

import "strings"

// EnsureHeadings appends any required heading missing from the research
// notes, with a "None found." body. Downstream formatting relies on every
// heading being present even when a stage produced partial output.
func EnsureHeadings(notes string) string {
	lower := strings.ToLower(notes)

	var missing []string
	for _, h := range requiredHeadings {
		if !containsHeading(lower, strings.ToLower(h)) {
			missing = append(missing, h)
		}
	}
	if len(missing) == 0 {
		return notes
	}

	var sb strings.Builder
	sb.WriteString(strings.TrimRight(notes, "\n"))
	for _, h := range missing {
		sb.WriteString("\n\n")
		sb.WriteString(h)
		sb.WriteString("\nNone found.")
	}
	sb.WriteString("\n")
	return sb.String()
}

// containsHeading reports whether the heading appears at the start of a line,
// optionally prefixed with markdown heading markers.
func containsHeading(lowerNotes, lowerHeading string) bool {
	for _, line := range strings.Split(lowerNotes, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "# ")
		line = strings.TrimSuffix(line, ":")
		if strings.TrimSpace(line) == lowerHeading {
			return true
		}
	}
	return false
}
