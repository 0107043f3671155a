package extractor

import (
	"regexp"
	"strings"

	"meeting-insights-go/internal/dates"
)

const companyWords = `[A-Z][a-zA-Z]+(?:[ \t]+[A-Z][a-zA-Z]+){0,2}`

// Tried in order; the first candidate that survives the filter wins.
var companyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d+[-\s]?Eleven)`),
	regexp.MustCompile(`\b([A-Z][a-zA-Z]*(?:Corp|Inc|LLC|Ltd))\b`),
	regexp.MustCompile(`([A-Z][a-zA-Z]+[ \t]+(?:Corp|Inc|LLC|Ltd))\b`),
	regexp.MustCompile(`(?i:meeting with|call with|discussion with)\s+(` + companyWords + `)\s+on\s`),
	regexp.MustCompile(`(?m)(?i:meeting with|call with|discussion with)\s+(` + companyWords + `)(?:[.,]|$)`),
	regexp.MustCompile(`(` + companyWords + `)\s+(?:discussion|meeting|call)\b`),
	regexp.MustCompile(`(?:Customer|Client):[ \t]*(` + companyWords + `)`),
	regexp.MustCompile(`(?m)^(` + companyWords + `)[ \t]*[-–:]`),
	regexp.MustCompile(`(` + companyWords + `)\s+(?:team|customer|client)\b`),
	regexp.MustCompile(`(?m)^([A-Z][a-zA-Z]+)(?:\s|$)`),
}

var noiseWords = []string{"attendees", "notes", "tldr", "eng", "raw", "context", "very", "but", "with"}

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d{1,2}/\d{1,2}/\d{4})`),
	regexp.MustCompile(`(\d{1,2}-\d{1,2}-\d{4})`),
	regexp.MustCompile(`(?i)((?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},?\s+\d{4})`),
	regexp.MustCompile(`(?i)((?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\.?\s+\d{1,2},?\s+\d{4})`),
	regexp.MustCompile(`(\d{4}[-/]\d{1,2}[-/]\d{1,2})`),
}

// HeuristicCustomerInfo finds a customer name and meeting date with regular expressions
// alone. It is the fallback when no model can be reached.
func HeuristicCustomerInfo(text string) CustomerInfo {
	var info CustomerInfo
	for _, re := range companyPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if c := strings.TrimSpace(m[1]); plausibleCompany(c) {
			info.CustomerName = c
			break
		}
	}
	for _, re := range datePatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			info.MeetingDate = dates.Display(m[1])
			break
		}
	}
	return info
}

func plausibleCompany(c string) bool {
	if c == "" || len(c) >= 50 || len(strings.Fields(c)) > 4 {
		return false
	}
	lower := strings.ToLower(c)
	for _, w := range noiseWords {
		if strings.Contains(lower, w) {
			return false
		}
	}
	return true
}
