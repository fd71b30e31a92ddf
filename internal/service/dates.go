package service

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var monthNames = []string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

var monthNamesShort = []string{
	"jan", "feb", "mar", "apr", "may", "jun",
	"jul", "aug", "sep", "oct", "nov", "dec",
}

var slashDate = regexp.MustCompile(`(\d{1,2})/(\d{1,2})(?:/(\d{2,4}))?`)

// ParseDescriptiveDate turns a deadline date string into a concrete date.
// Accepts ISO dates, relative phrases (today, tomorrow, next week, next
// month) and loose patterns like "January 10", "Jan 10th", "10th of January"
// or "MM/DD". Month-name dates without a year roll into next year when the
// month has already passed relative to ref. Returns false when nothing
// matches.
func ParseDescriptiveDate(dateStr string, ref time.Time) (time.Time, bool) {
	lower := strings.ToLower(strings.TrimSpace(dateStr))
	if lower == "" {
		return time.Time{}, false
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02", "2006-01-02 15:04", "January 2, 2006", "Jan 2, 2006"} {
		if t, err := time.Parse(layout, strings.TrimSpace(dateStr)); err == nil {
			return t, true
		}
	}

	switch {
	case lower == "today":
		return ref, true
	case lower == "tomorrow":
		return ref.AddDate(0, 0, 1), true
	case strings.Contains(lower, "next week"):
		return ref.AddDate(0, 0, 7), true
	case strings.Contains(lower, "next month"):
		return ref.AddDate(0, 1, 0), true
	}

	for i := range monthNames {
		patterns := []*regexp.Regexp{
			regexp.MustCompile(fmt.Sprintf(`%s\s+(\d{1,2})(?:st|nd|rd|th)?`, monthNames[i])),
			regexp.MustCompile(fmt.Sprintf(`%s\s+(\d{1,2})(?:st|nd|rd|th)?`, monthNamesShort[i])),
			regexp.MustCompile(fmt.Sprintf(`(\d{1,2})(?:st|nd|rd|th)?\s+(?:of\s+)?%s`, monthNames[i])),
			regexp.MustCompile(fmt.Sprintf(`(\d{1,2})(?:st|nd|rd|th)?\s+(?:of\s+)?%s`, monthNamesShort[i])),
		}
		for _, p := range patterns {
			m := p.FindStringSubmatch(lower)
			if m == nil {
				continue
			}
			day, err := strconv.Atoi(m[1])
			if err != nil || day < 1 || day > 31 {
				continue
			}
			year := ref.Year()
			if int(ref.Month())-1 > i {
				year++
			}
			return time.Date(year, time.Month(i+1), day, 0, 0, 0, 0, ref.Location()), true
		}
	}

	if m := slashDate.FindStringSubmatch(lower); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		year := ref.Year()
		if m[3] != "" {
			y, _ := strconv.Atoi(m[3])
			if len(m[3]) == 2 {
				y += 2000
			}
			year = y
		}
		// Assume MM/DD (US style).
		if month >= 1 && month <= 12 && day >= 1 && day <= 31 {
			return time.Date(year, time.Month(month), day, 0, 0, 0, 0, ref.Location()), true
		}
	}

	return time.Time{}, false
}
