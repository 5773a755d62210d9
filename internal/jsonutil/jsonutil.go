// Package jsonutil extracts JSON from the freeform text that coding-agent
// CLIs produce. Agents wrap structured output in markdown code fences, prefix
// it with prose, or colour it with ANSI escapes; the extraction strategies
// here recover the first valid JSON object or array regardless.
package jsonutil

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// maxInputBytes caps the input size; larger inputs are rejected.
const maxInputBytes = 10 * 1024 * 1024 // 10 MB

// reANSI matches ANSI CSI escape sequences that agent CLIs may embed.
var reANSI = regexp.MustCompile(`\x1b\[[0-9;]*[mGKHF]`)

// reCodeFence matches a markdown code fence that optionally carries a "json"
// language tag. The fenced content is captured in subgroup 1. (?s) enables
// dot-all mode so the non-greedy body can span newlines.
var reCodeFence = regexp.MustCompile("(?s)```(?:json)?[ \\t]*\n(.*?)\n```")

// Extract returns the first valid JSON object or array found in text.
// Strategies are tried in order of reliability:
//  1. Markdown code fence (```json or ```)
//  2. Raw parse of the trimmed text
//  3. Delimiter matching for top-level { } and [ ] spans
//
// An error is returned when no valid JSON is found or the input exceeds the
// size cap.
func Extract(text string) (json.RawMessage, error) {
	if len(text) > maxInputBytes {
		return nil, fmt.Errorf("jsonutil: input exceeds maximum size of %d bytes", maxInputBytes)
	}
	text = strings.TrimPrefix(text, "\xef\xbb\xbf")
	text = reANSI.ReplaceAllString(text, "")

	// Code fences first: when present they are the agent's explicit signal
	// of where the structured payload lives.
	for _, m := range reCodeFence.FindAllStringSubmatch(text, -1) {
		candidate := strings.TrimSpace(m[1])
		if validJSON(candidate) {
			return json.RawMessage(candidate), nil
		}
	}

	trimmed := strings.TrimSpace(text)
	if validJSON(trimmed) {
		return json.RawMessage(trimmed), nil
	}

	for i := 0; i < len(text); i++ {
		var open, closing byte
		switch text[i] {
		case '{':
			open, closing = '{', '}'
		case '[':
			open, closing = '[', ']'
		default:
			continue
		}
		end := matchingDelimiter(text, i, open, closing)
		if end < 0 {
			continue
		}
		candidate := text[i : end+1]
		if validJSON(candidate) {
			return json.RawMessage(candidate), nil
		}
	}

	return nil, fmt.Errorf("jsonutil: no valid JSON found in text")
}

// ExtractInto extracts JSON from text and unmarshals it into target.
func ExtractInto(text string, target any) error {
	raw, err := Extract(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("jsonutil: unmarshal failed: %w", err)
	}
	return nil
}

// validJSON reports whether s parses as JSON and is an object or array.
// Bare scalars are rejected: extraction is for structured payloads, and
// accepting scalars would match stray numbers in prose.
func validJSON(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) == 0 || (s[0] != '{' && s[0] != '[') {
		return false
	}
	var probe any
	return json.Unmarshal([]byte(s), &probe) == nil
}

// matchingDelimiter returns the index of the closing delimiter that balances
// the open delimiter at position start, or -1 when the span is unbalanced.
// Double-quoted strings and escape sequences are respected so braces inside
// string values do not confuse the count.
func matchingDelimiter(text string, start int, open, closing byte) int {
	depth := 0
	inString := false

	for i := start; i < len(text); i++ {
		ch := text[i]

		if inString {
			switch ch {
			case '\\':
				i++ // skip the escaped character
			case '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case open:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return i
			}
		}
	}

	return -1
}
