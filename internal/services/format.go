package services

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
)

// Reply and forward markers left over from mail-thread subjects. Each
// marker needs its colon, so "Require: diagrams" is not touched.
var replyMarkers = regexp.MustCompile(`^(?i:(?:fw|re): *)+`)

// CleanSummary strips leading FW:/RE: markers from an issue summary.
// Stripped markers leave a single leading space behind.
func CleanSummary(summary string) string {
	trimmed := strings.TrimSpace(summary)
	loc := replyMarkers.FindStringIndex(trimmed)
	if loc == nil {
		return trimmed
	}
	return " " + trimmed[loc[1]:]
}

// speakable is a cleaned summary ready to be placed inside a sentence.
func speakable(summary string) string {
	return strings.TrimSpace(CleanSummary(summary))
}

// Pluralize returns "1 issue" or "n issues".
func Pluralize(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}

// floorDays counts whole days in d, rounding towards negative infinity.
func floorDays(d time.Duration) int {
	return int(math.Floor(d.Hours() / 24))
}

// DescriptivePast phrases how long ago then was, relative to now.
func DescriptivePast(then, now time.Time) string {
	ago := now.Sub(then)

	if ago < 0 {
		days := int(-ago / (24 * time.Hour))
		if days == 0 {
			return "later today."
		}
		return "in " + Pluralize(days, "day", "days") + "."
	}

	days := int(ago / (24 * time.Hour))
	if days > 0 {
		return Pluralize(days, "day", "days") + " ago."
	}

	switch {
	case ago < 25*time.Minute:
		return "just minutes ago."
	case ago < 2*time.Hour:
		return "today, very recently."
	default:
		return "today."
	}
}

// DueClause phrases a due date. It returns "" when the due date is far
// enough in the future not to be worth mentioning.
func DueClause(due, now time.Time) string {
	days := floorDays(now.Sub(due))
	switch {
	case days < 0:
		if days > -3 {
			return "This issue is due very soon."
		}
		return ""
	case days == 0:
		return "This issue is due today!"
	default:
		return "This issue is overdue by " + Pluralize(days, "day", "days") + "."
	}
}

// ResolvedWhen phrases a resolution date as a full sentence.
func ResolvedWhen(then, now time.Time) string {
	past := DescriptivePast(then, now)
	if strings.HasPrefix(past, "today") || strings.HasPrefix(past, "just") || strings.HasPrefix(past, "later") {
		return "Resolved " + past
	}
	return fmt.Sprintf("Resolved about %s, %s.", strings.TrimSuffix(past, "."), ResolvedOn(then, now))
}

// ResolvedOn gives a short calendar form of then: the weekday when it was
// within the last week, and the year only when it differs from now.
func ResolvedOn(then, now time.Time) string {
	then = then.In(now.Location())
	if then.Year() != now.Year() {
		return "on " + then.Format("January 02 2006")
	}
	if floorDays(now.Sub(then)) < 7 {
		return "just last " + then.Format("Monday") + ", on " + then.Format("January 02")
	}
	return "on " + then.Format("January 02")
}

var timestampLayouts = []string{
	"2006-01-02T15:04:05.000-0700",
	"2006-01-02T15:04:05-0700",
	time.RFC3339Nano,
}

var localLayouts = []string{
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTimestamp reads the timestamp formats JIRA returns. Values without
// a zone are taken as local midnight of their date.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

// SpellEmail spells an address out for speech, one character at a time.
func SpellEmail(address string) string {
	address = strings.TrimSpace(address)
	if address == "" {
		return ""
	}
	parts := make([]string, 0, len(address))
	for _, r := range address {
		switch r {
		case '.':
			parts = append(parts, "dot")
		case '@':
			parts = append(parts, "at")
		default:
			parts = append(parts, string(r))
		}
	}
	return strings.Join(parts, " ")
}
