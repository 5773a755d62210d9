// Package hooks implements the guardrail programs the coding agent invokes
// around tool use. Each hook reads one JSON payload from stdin, optionally
// blocks the operation via the stderr-plus-exit-2 protocol, and appends a
// timestamped record to the session's log directory.
//
// Hooks must never fail the agent for any reason other than a deliberate
// block: log-write failures are swallowed.
package hooks

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Exit codes in the hook protocol. Blocked operations use ExitBlock with
// the reason on stderr.
const (
	ExitAllow = 0
	ExitBlock = 2
)

// Payload is the JSON body every hook receives on stdin.
type Payload struct {
	SessionID      string          `json:"session_id"`
	TranscriptPath string          `json:"transcript_path,omitempty"`
	ToolName       string          `json:"tool_name,omitempty"`
	ToolInput      json.RawMessage `json:"tool_input,omitempty"`
	ToolResponse   json.RawMessage `json:"tool_response,omitempty"`
	Prompt         string          `json:"prompt,omitempty"`
	Trigger        string          `json:"trigger,omitempty"`
}

// toolInput is the subset of tool parameters the guards inspect.
type toolInput struct {
	Command  string `json:"command"`
	FilePath string `json:"file_path"`
	Path     string `json:"path"`
}

// ReadPayload decodes the hook payload from the reader (stdin in
// production).
func ReadPayload(r io.Reader) (*Payload, error) {
	var p Payload
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("hooks: decoding payload: %w", err)
	}
	return &p, nil
}

// sessionDir returns the per-session log directory, creating it on demand.
// The "unknown" session collects records from payloads missing an id.
func sessionDir(logsDir, sessionID string) (string, error) {
	if sessionID == "" {
		sessionID = "unknown"
	}
	dir := filepath.Join(logsDir, sessionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("hooks: creating session directory %q: %w", dir, err)
	}
	return dir, nil
}

// logEvent appends one timestamped JSON line to the named file in the
// session directory. All errors are swallowed: logging is best-effort and
// must never surface to the agent.
func logEvent(logsDir, sessionID, filename string, payload *Payload, extra map[string]any) {
	dir, err := sessionDir(logsDir, sessionID)
	if err != nil {
		return
	}

	record := map[string]any{
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"session_id": sessionID,
	}
	if payload.ToolName != "" {
		record["tool_name"] = payload.ToolName
	}
	if len(payload.ToolInput) > 0 {
		record["tool_input"] = payload.ToolInput
	}
	if len(payload.ToolResponse) > 0 {
		record["tool_response"] = payload.ToolResponse
	}
	if payload.Prompt != "" {
		record["prompt"] = payload.Prompt
	}
	if payload.Trigger != "" {
		record["trigger"] = payload.Trigger
	}
	for k, v := range extra {
		record[k] = v
	}

	line, err := json.Marshal(record)
	if err != nil {
		return
	}

	f, err := os.OpenFile(filepath.Join(dir, filename), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	f.Write(append(line, '\n')) //nolint:errcheck
}
