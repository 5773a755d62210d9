package hooks

import (
	"io"
	"os"
	"path/filepath"
)

// PostToolUse records a completed tool invocation to tool_use.jsonl.
func PostToolUse(logsDir string, payload *Payload) {
	logEvent(logsDir, payload.SessionID, "tool_use.jsonl", payload, nil)
}

// UserPromptSubmit records a submitted user prompt to events.jsonl.
func UserPromptSubmit(logsDir string, payload *Payload) {
	logEvent(logsDir, payload.SessionID, "events.jsonl", payload, map[string]any{"event": "user_prompt_submit"})
}

// PreCompact records an imminent context compaction to events.jsonl.
func PreCompact(logsDir string, payload *Payload) {
	logEvent(logsDir, payload.SessionID, "events.jsonl", payload, map[string]any{"event": "pre_compact"})
}

// Stop records session end and preserves the transcript, when the payload
// names one, as chat.jsonl in the session directory. Copy failures are
// swallowed like every other logging failure.
func Stop(logsDir string, payload *Payload) {
	logEvent(logsDir, payload.SessionID, "events.jsonl", payload, map[string]any{"event": "stop"})

	if payload.TranscriptPath == "" {
		return
	}
	dir, err := sessionDir(logsDir, payload.SessionID)
	if err != nil {
		return
	}
	copyFile(payload.TranscriptPath, filepath.Join(dir, "chat.jsonl"))
}

func copyFile(src, dst string) {
	in, err := os.Open(src)
	if err != nil {
		return
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return
	}
	defer out.Close()

	io.Copy(out, in) //nolint:errcheck
}
