// Package dates normalizes meeting dates to one of two layouts.
//
// Display ("Jan 02, 2006") is the layout stored on analysis results. ISO ("2006-01-02") is
// offered for callers that need a sortable form. Both never fail: unparseable input comes
// back trimmed and otherwise unchanged.
package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

const (
	DisplayLayout = "Jan 02, 2006"
	ISOLayout     = "2006-01-02"
)

var (
	mdyRe = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{4})$`)
	ymdRe = regexp.MustCompile(`^(\d{4})[/-](\d{1,2})[/-](\d{1,2})$`)

	monthNameRe = regexp.MustCompile(`(?i)\b(jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})\b`)
	dayFirstRe  = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+(jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?,?\s+(\d{4})\b`)

	// longest first so "meeting on" wins over "on"
	prefixes = []string{"meeting date:", "date:", "meeting on ", "on "}
)

// Display normalizes s to "MMM DD, YYYY".
func Display(s string) string {
	return normalize(s, DisplayLayout)
}

// ISO normalizes s to "YYYY-MM-DD".
func ISO(s string) string {
	return normalize(s, ISOLayout)
}

// Parse tries the exact numeric forms, then month-name forms, then dateparse. Input without
// a year does not parse.
func Parse(s string) (time.Time, bool) {
	cleaned := clean(s)
	if cleaned == "" {
		return time.Time{}, false
	}
	if t, ok := numeric(cleaned); ok {
		return t, true
	}
	if t, ok := monthName(cleaned); ok {
		return t, true
	}
	t, err := dateparse.ParseIn(cleaned, time.UTC)
	if err != nil || t.Year() < 1 {
		return time.Time{}, false
	}
	return t, true
}

// normalize passes unparseable input through; a value already in layout parses anyway.
func normalize(s, layout string) string {
	trimmed := strings.TrimSpace(s)
	if t, ok := Parse(trimmed); ok {
		return t.Format(layout)
	}
	return trimmed
}

func clean(s string) string {
	out := strings.TrimSpace(s)
	lower := strings.ToLower(out)
	for _, p := range prefixes {
		if strings.HasPrefix(lower, p) {
			out = strings.TrimSpace(out[len(p):])
			break
		}
	}
	return strings.TrimRight(out, ".;")
}

func numeric(s string) (time.Time, bool) {
	if m := mdyRe.FindStringSubmatch(s); m != nil {
		return build(m[3], m[1], m[2])
	}
	if m := ymdRe.FindStringSubmatch(s); m != nil {
		return build(m[1], m[2], m[3])
	}
	return time.Time{}, false
}

func monthName(s string) (time.Time, bool) {
	if m := monthNameRe.FindStringSubmatch(s); m != nil {
		return buildNamed(m[3], m[1], m[2])
	}
	if m := dayFirstRe.FindStringSubmatch(s); m != nil {
		return buildNamed(m[3], m[2], m[1])
	}
	return time.Time{}, false
}

func buildNamed(year, month, day string) (time.Time, bool) {
	mon := monthNumber(month)
	if mon == 0 {
		return time.Time{}, false
	}
	return build(year, strconv.Itoa(mon), day)
}

// build rejects out-of-range parts instead of letting time.Date roll them over.
func build(year, month, day string) (time.Time, bool) {
	y, err1 := strconv.Atoi(year)
	m, err2 := strconv.Atoi(month)
	d, err3 := strconv.Atoi(day)
	if err1 != nil || err2 != nil || err3 != nil || y < 1 || m < 1 || m > 12 || d < 1 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}

func monthNumber(name string) int {
	n := strings.ToLower(name)
	if len(n) < 3 {
		return 0
	}
	switch n[:3] {
	case "jan":
		return 1
	case "feb":
		return 2
	case "mar":
		return 3
	case "apr":
		return 4
	case "may":
		return 5
	case "jun":
		return 6
	case "jul":
		return 7
	case "aug":
		return 8
	case "sep":
		return 9
	case "oct":
		return 10
	case "nov":
		return 11
	case "dec":
		return 12
	}
	return 0
}
