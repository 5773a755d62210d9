package agent

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// EventType identifies the type of a stream-json event emitted by the agent.
type EventType string

const (
	// EventSystem is emitted once at session start with init metadata.
	EventSystem EventType = "system"
	// EventAssistant contains assistant messages (text and tool calls).
	EventAssistant EventType = "assistant"
	// EventUser contains tool results sent back to the model.
	EventUser EventType = "user"
	// EventResult is emitted once at session end with the final text,
	// error flag, and usage stats.
	EventResult EventType = "result"
)

// Event is a single JSONL record from the agent's stream-json output. The
// Type field determines which other fields are populated. Raw preserves the
// verbatim line for aggregation.
type Event struct {
	Type      EventType `json:"type"`
	Subtype   string    `json:"subtype,omitempty"`
	SessionID string    `json:"session_id,omitempty"`

	// Result fields (populated when Type == "result").
	IsError       bool    `json:"is_error,omitempty"`
	Result        string  `json:"result,omitempty"`
	DurationMS    int64   `json:"duration_ms,omitempty"`
	DurationAPIMS int64   `json:"duration_api_ms,omitempty"`
	NumTurns      int     `json:"num_turns,omitempty"`
	TotalCostUSD  float64 `json:"total_cost_usd,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// maxScannerBuffer is the maximum line length the decoder accepts (10 MB).
// Tool results embedded in the stream can be very large.
const maxScannerBuffer = 10 << 20

// DecodeStream reads JSONL events from r. Blank lines are skipped;
// malformed lines are preserved as raw-only events so the aggregate file
// stays complete even when a line does not parse.
func DecodeStream(r io.Reader) ([]Event, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxScannerBuffer)

	var events []Event
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var event Event
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			event = Event{}
		}
		event.Raw = json.RawMessage(line)
		events = append(events, event)
	}
	if err := scanner.Err(); err != nil {
		return events, fmt.Errorf("agent: reading stream: %w", err)
	}
	return events, nil
}

// ParseOutputFile reads a raw_output.jsonl file and returns all events plus
// the last result event, or nil when the stream carried no result record.
func ParseOutputFile(path string) ([]Event, *Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("agent: opening output file %q: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	events, err := DecodeStream(f)
	if err != nil {
		return nil, nil, err
	}

	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Type == EventResult {
			return events, &events[i], nil
		}
	}
	return events, nil, nil
}

// WriteAggregate converts a raw_output.jsonl file into a companion
// raw_output.json file holding all messages as a single JSON array, for
// human and tool inspection. Returns the path of the aggregate file.
func WriteAggregate(jsonlPath string) (string, error) {
	events, _, err := ParseOutputFile(jsonlPath)
	if err != nil {
		return "", err
	}

	messages := make([]json.RawMessage, 0, len(events))
	for _, ev := range events {
		messages = append(messages, ev.Raw)
	}

	data, err := json.MarshalIndent(messages, "", "  ")
	if err != nil {
		return "", fmt.Errorf("agent: encoding aggregate: %w", err)
	}

	jsonPath := strings.TrimSuffix(jsonlPath, ".jsonl") + ".json"
	if err := os.WriteFile(jsonPath, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("agent: writing aggregate %q: %w", jsonPath, err)
	}
	return jsonPath, nil
}
