// Package parser pulls a JSON object out of free-form model output.
//
// Models wrap JSON in markdown fences, surround it with prose, or stop mid-object when
// they hit a token limit. ExtractJSON handles all of those without panicking; callers get
// either a decoded object or a *ParseError.
package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNoJSON means no opening brace was found in the response.
var ErrNoJSON = errors.New("no JSON object found in response")

type ParseError struct {
	Stage     string // "locate" or "decode"
	Candidate string
	Err       error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Stage, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ExtractJSON locates, repairs if needed, and decodes the first JSON object in raw.
func ExtractJSON(raw string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, &ParseError{Stage: "locate", Err: ErrNoJSON}
	}
	candidate, err := Candidate(raw)
	if err != nil {
		return nil, err
	}

	var obj map[string]any
	decodeErr := json.Unmarshal([]byte(candidate), &obj)
	if decodeErr == nil {
		return obj, nil
	}
	// second chance: dangling commas before a closer
	if fixed := trailingCommaRe.ReplaceAllString(candidate, "$1"); fixed != candidate {
		if json.Unmarshal([]byte(fixed), &obj) == nil {
			return obj, nil
		}
	}
	return nil, &ParseError{Stage: "decode", Candidate: candidate, Err: decodeErr}
}

// Candidate returns the JSON span ExtractJSON would decode, repaired when truncated.
func Candidate(raw string) (string, error) {
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	if inner, ok := fencedBlock(s); ok && strings.Contains(inner, "{") {
		s = inner
	}

	start := strings.Index(s, "{")
	if start == -1 {
		return "", &ParseError{Stage: "locate", Err: ErrNoJSON}
	}
	if end, ok := balancedEnd(s, start); ok {
		return strings.TrimSpace(s[start : end+1]), nil
	}
	return repairTruncated(s[start:]), nil
}

// fencedBlock returns the content of the first ``` block, language tag removed.
// An unterminated fence yields everything after the marker.
func fencedBlock(s string) (string, bool) {
	open := strings.Index(s, "```")
	if open == -1 {
		return "", false
	}
	rest := s[open+3:]
	// language tag runs up to the first newline when it is a bare word
	if nl := strings.IndexByte(rest, '\n'); nl != -1 && langLineRe.MatchString(rest[:nl]) {
		rest = rest[nl+1:]
	} else {
		rest = strings.TrimPrefix(rest, langWordRe.FindString(rest))
	}
	if end := strings.Index(rest, "```"); end != -1 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest), true
}

var (
	langLineRe      = regexp.MustCompile(`^[A-Za-z0-9_+-]*\s*$`)
	langWordRe      = regexp.MustCompile(`^[A-Za-z]+`)
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
)

// balancedEnd scans from the brace at start and returns the index of its matching close.
// Braces inside string literals are ignored.
func balancedEnd(s string, start int) (int, bool) {
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// repairTruncated closes unterminated strings line by line, drops a dangling comma or
// key separator, then appends the closers the open brackets still need.
func repairTruncated(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i, line := range lines {
		line = strings.TrimRight(line, " \t")
		if countQuotes(line)%2 == 1 {
			if strings.HasSuffix(line, ",") {
				line = line[:len(line)-1] + `",`
			} else {
				line += `"`
			}
		}
		lines[i] = line
	}
	out := strings.TrimRight(strings.Join(lines, "\n"), " \t\n")
	out = strings.TrimSuffix(out, ",")
	if strings.HasSuffix(out, ":") {
		out += " null"
	}

	var stack []byte
	inString, escaped := false, false
	for i := 0; i < len(out); i++ {
		c := out[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) > 0 && stack[len(stack)-1] == c {
				stack = stack[:len(stack)-1]
			}
		}
	}
	var b strings.Builder
	b.WriteString(out)
	for i := len(stack) - 1; i >= 0; i-- {
		b.WriteByte(stack[i])
	}
	return b.String()
}

// countQuotes counts double quotes that are not backslash-escaped.
func countQuotes(line string) int {
	n := 0
	for i := 0; i < len(line); i++ {
		if line[i] == '\\' {
			i++
			continue
		}
		if line[i] == '"' {
			n++
		}
	}
	return n
}
