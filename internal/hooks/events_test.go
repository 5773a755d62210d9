package hooks

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- log-only hook tests ----------------------------------------------------

func TestPostToolUse_AppendsRecord(t *testing.T) {
	t.Parallel()

	logsDir := t.TempDir()
	PostToolUse(logsDir, bashPayload("ls"))
	PostToolUse(logsDir, bashPayload("pwd"))

	data, err := os.ReadFile(filepath.Join(logsDir, "sess-1", "tool_use.jsonl"))
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(data)), "\n"), 2)
}

func TestUserPromptSubmit_RecordsEvent(t *testing.T) {
	t.Parallel()

	logsDir := t.TempDir()
	UserPromptSubmit(logsDir, &Payload{SessionID: "sess-2", Prompt: "fix the bug"})

	data, err := os.ReadFile(filepath.Join(logsDir, "sess-2", "events.jsonl"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"event":"user_prompt_submit"`)
	assert.Contains(t, string(data), "fix the bug")
}

func TestPreCompact_RecordsEvent(t *testing.T) {
	t.Parallel()

	logsDir := t.TempDir()
	PreCompact(logsDir, &Payload{SessionID: "sess-3", Trigger: "auto"})

	data, err := os.ReadFile(filepath.Join(logsDir, "sess-3", "events.jsonl"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"event":"pre_compact"`)
}

// ---- Stop tests -------------------------------------------------------------

func TestStop_CopiesTranscript(t *testing.T) {
	t.Parallel()

	logsDir := t.TempDir()
	transcript := filepath.Join(t.TempDir(), "transcript.jsonl")
	require.NoError(t, os.WriteFile(transcript, []byte(`{"role":"user"}`+"\n"), 0o644))

	Stop(logsDir, &Payload{SessionID: "sess-4", TranscriptPath: transcript})

	data, err := os.ReadFile(filepath.Join(logsDir, "sess-4", "chat.jsonl"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"role":"user"`)
}

func TestStop_MissingTranscriptSwallowed(t *testing.T) {
	t.Parallel()

	logsDir := t.TempDir()
	Stop(logsDir, &Payload{SessionID: "sess-5", TranscriptPath: "/no/such/file"})

	_, err := os.Stat(filepath.Join(logsDir, "sess-5", "chat.jsonl"))
	assert.True(t, os.IsNotExist(err))

	// The stop event itself is still logged.
	_, err = os.Stat(filepath.Join(logsDir, "sess-5", "events.jsonl"))
	assert.NoError(t, err)
}
