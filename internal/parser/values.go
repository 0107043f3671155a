package parser

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var absentValues = map[string]struct{}{
	"":     {},
	"null": {},
	"None": {},
	"N/A":  {},
	"NA":   {},
}

// CleanValue trims s and maps placeholder strings ("null", "N/A", ...) to "".
func CleanValue(s string) string {
	s = strings.TrimSpace(s)
	if _, ok := absentValues[s]; ok {
		return ""
	}
	return s
}

// String reads a scalar field as a cleaned string.
func String(obj map[string]any, key string) string {
	switch v := obj[key].(type) {
	case string:
		return CleanValue(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// Strings reads a field holding either a list or a single string. Non-string list
// items are formatted; placeholder items are kept as "" so indexes stay aligned.
func Strings(obj map[string]any, key string) []string {
	switch v := obj[key].(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			switch s := item.(type) {
			case string:
				out = append(out, CleanValue(s))
			case nil:
				out = append(out, "")
			default:
				out = append(out, CleanValue(fmt.Sprint(s)))
			}
		}
		return out
	case string:
		if s := CleanValue(v); s != "" {
			return []string{s}
		}
	}
	return nil
}

// Float reads a numeric field, accepting numeric strings. Missing, malformed, NaN or
// infinite values yield def.
func Float(obj map[string]any, key string, def float64) float64 {
	var f float64
	switch v := obj[key].(type) {
	case float64:
		f = v
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return def
		}
		f = parsed
	default:
		return def
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	return f
}

// Field pulls `"key": "value"` straight out of text that would not decode. It is the
// last resort for small fixed-key responses.
func Field(raw, key string) (string, bool) {
	re, err := regexp.Compile(`(?i)["']?` + regexp.QuoteMeta(key) + `["']?\s*:\s*["']([^"']+)["']`)
	if err != nil {
		return "", false
	}
	m := re.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	v := CleanValue(m[1])
	return v, v != ""
}
