// Package mail provides lightweight parsing of pasted email threads.
package mail

import (
	"bufio"
	"regexp"
	"strings"
)

// Thread represents a parsed email conversation.
type Thread struct {
	// Subject from the first Subject: header, empty when none present
	Subject string

	// Individual messages in paste order
	Messages []Message

	// Addresses seen anywhere in the thread, deduplicated in order
	Participants []Address
}

// Message is one email within a thread.
type Message struct {
	From  string // sender line as written, may be empty
	Date  string // date line as written, may be empty
	Body  string // message text without headers
	Start int    // line number where the message starts
}

// Address is an email address with the display name it appeared under.
type Address struct {
	Name  string
	Email string
}

var (
	addressRegex = regexp.MustCompile(`([A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,})`)
	// "On Mon, Sep 1, 2025 at 9:14 AM Alice <alice@corp.example> wrote:"
	replyMarkerRegex = regexp.MustCompile(`^>*\s*On .{4,120} wrote:\s*$`)
	separatorRegex   = regexp.MustCompile(`^-{2,}\s*(Original Message|Forwarded message)\s*-{2,}$`)
	headerRegex      = regexp.MustCompile(`^(From|To|Cc|Date|Sent|Subject):\s*(.*)$`)
	// "Alice Smith <alice@corp.example>" or "<alice@corp.example>"
	namedAddressRegex = regexp.MustCompile(`([^<>,]*)<([A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,})>`)
)

// ParseThread splits pasted email text into messages. Boundaries are
// "On ... wrote:" reply markers, forwarded/original-message separators, and
// From: header blocks after the first message. Text with no recognizable
// boundaries parses as a single message.
func ParseThread(content string) *Thread {
	thread := &Thread{}

	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNum := 0

	current := &Message{Start: 1}
	var body strings.Builder
	sawBody := false

	flush := func() {
		current.Body = strings.TrimSpace(body.String())
		if current.Body != "" || current.From != "" {
			thread.Messages = append(thread.Messages, *current)
		}
		body.Reset()
		sawBody = false
	}

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		if replyMarkerRegex.MatchString(trimmed) || separatorRegex.MatchString(trimmed) {
			flush()
			current = &Message{Start: lineNum + 1}
			if m := replyMarkerRegex.FindString(trimmed); m != "" {
				current.From = senderFromReplyMarker(trimmed)
			}
			continue
		}

		if m := headerRegex.FindStringSubmatch(trimmed); m != nil && !sawBody {
			value := strings.TrimSpace(m[2])
			switch m[1] {
			case "From":
				current.From = value
			case "Date", "Sent":
				current.Date = value
			case "Subject":
				if thread.Subject == "" {
					thread.Subject = value
				}
			}
			continue
		}

		// A From: header after body text starts a new quoted message.
		if m := headerRegex.FindStringSubmatch(trimmed); m != nil && m[1] == "From" && sawBody {
			flush()
			current = &Message{Start: lineNum, From: strings.TrimSpace(m[2])}
			continue
		}

		if trimmed != "" {
			sawBody = true
		}
		body.WriteString(line)
		body.WriteString("\n")
	}
	flush()

	thread.Participants = extractParticipants(content)
	return thread
}

// senderFromReplyMarker pulls the sender out of an "On ... wrote:" line.
func senderFromReplyMarker(line string) string {
	if m := namedAddressRegex.FindStringSubmatch(line); m != nil {
		if name := cleanSenderName(m[1]); name != "" {
			return name + " <" + m[2] + ">"
		}
		return m[2]
	}
	return ""
}

// cleanSenderName strips leading date/time tokens and header labels that
// the address regex picks up before a display name ("On Mon, Aug 31 at
// 8:02 AM Bob Jones", "From: Alice Smith").
func cleanSenderName(s string) string {
	fields := strings.Fields(s)
	for len(fields) > 0 {
		f := strings.TrimSuffix(fields[0], ",")
		if strings.ContainsAny(f, "0123456789:") || dateWords[f] {
			fields = fields[1:]
			continue
		}
		break
	}
	return strings.Trim(strings.Join(fields, " "), `" `)
}

var dateWords = map[string]bool{
	"On": true, "at": true, "AM": true, "PM": true,
	"Mon": true, "Tue": true, "Wed": true, "Thu": true, "Fri": true, "Sat": true, "Sun": true,
	"Jan": true, "Feb": true, "Mar": true, "Apr": true, "May": true, "Jun": true,
	"Jul": true, "Aug": true, "Sep": true, "Oct": true, "Nov": true, "Dec": true,
}

// extractParticipants finds every address in the text, keeping the first
// display name each address appeared with.
func extractParticipants(content string) []Address {
	var out []Address
	seen := make(map[string]bool)

	for _, m := range namedAddressRegex.FindAllStringSubmatch(content, -1) {
		email := strings.ToLower(m[2])
		if seen[email] {
			continue
		}
		seen[email] = true
		out = append(out, Address{Name: cleanSenderName(m[1]), Email: email})
	}

	for _, m := range addressRegex.FindAllString(content, -1) {
		email := strings.ToLower(m)
		if seen[email] {
			continue
		}
		seen[email] = true
		out = append(out, Address{Email: email})
	}
	return out
}

// FindAddress returns the participant whose display name contains the given
// name, case-insensitively. Used to backfill addresses the extraction model
// left empty.
func (t *Thread) FindAddress(name string) (Address, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Address{}, false
	}
	for _, a := range t.Participants {
		if a.Name != "" && strings.Contains(strings.ToLower(a.Name), name) {
			return a, true
		}
	}
	// Fall back to the local part of the address.
	for _, a := range t.Participants {
		local := a.Email[:strings.Index(a.Email, "@")]
		if strings.Contains(strings.ToLower(local), strings.ReplaceAll(name, " ", ".")) {
			return a, true
		}
	}
	return Address{}, false
}

// DeriveTitle takes the subject line when present, the first non-empty
// non-header line otherwise.
func DeriveTitle(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if after, ok := strings.CutPrefix(line, "Subject:"); ok {
			if t := strings.TrimSpace(after); t != "" {
				return Truncate(t, 120)
			}
			continue
		}
		if strings.Contains(line, ":") && len(line) < 80 {
			// Likely a header line (From:, To:, Date:), keep scanning.
			prefix := line[:strings.Index(line, ":")]
			if !strings.ContainsAny(prefix, " \t") {
				continue
			}
		}
		return Truncate(line, 120)
	}
	return "Untitled thread"
}

// Truncate shortens s to at most n runes.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
