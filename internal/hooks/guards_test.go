package hooks

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bashPayload(command string) *Payload {
	input, _ := json.Marshal(map[string]string{"command": command})
	return &Payload{SessionID: "sess-1", ToolName: "Bash", ToolInput: input}
}

func filePayload(tool, path string) *Payload {
	input, _ := json.Marshal(map[string]string{"file_path": path})
	return &Payload{SessionID: "sess-1", ToolName: tool, ToolInput: input}
}

// ---- destructive rm tests ---------------------------------------------------

func TestPreToolUse_BlocksDestructiveRm(t *testing.T) {
	t.Parallel()

	commands := []string{
		"rm -rf /",
		"rm -fr /",
		"rm -rf / ",
		"rm -rf ~",
		"rm -fr ~/",
		"rm -rf ~/projects",
		"rm -rf .",
		"rm -fr .",
		"rm --preserve-root -rf /",
	}

	for _, cmd := range commands {
		cmd := cmd
		t.Run(cmd, func(t *testing.T) {
			t.Parallel()
			code, msg := PreToolUse(t.TempDir(), bashPayload(cmd))
			assert.Equal(t, ExitBlock, code)
			assert.Equal(t, fmt.Sprintf("Blocked: destructive rm command: %s", cmd), msg)
		})
	}
}

func TestPreToolUse_AllowsSafeRm(t *testing.T) {
	t.Parallel()

	commands := []string{
		"rm -rf ./build",
		"rm -rf /tmp/scratch",
		"rm -fr /var/tmp/cache",
		"rm file.txt",
		"rm -r tmp/cache",
		"rm -rf . && echo done",
		"rm -rf / && echo oops || true",
	}

	for _, cmd := range commands {
		cmd := cmd
		t.Run(cmd, func(t *testing.T) {
			t.Parallel()
			code, _ := PreToolUse(t.TempDir(), bashPayload(cmd))
			assert.Equal(t, ExitAllow, code)
		})
	}
}

// ---- dotenv tests -----------------------------------------------------------

func TestPreToolUse_BlocksDotenvAccess(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload *Payload
	}{
		{"read .env", filePayload("Read", ".env")},
		{"read nested .env", filePayload("Read", "app/.env")},
		{"write .env.local", filePayload("Write", ".env.local")},
		{"edit .env.production", filePayload("Edit", "/srv/app/.env.production")},
		{"edit .env.staging", filePayload("Edit", ".env.staging")},
		{"cat via bash", bashPayload("cat .env")},
		{"cp via bash", bashPayload("cp .env.production /tmp/out")},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			code, msg := PreToolUse(t.TempDir(), tt.payload)
			assert.Equal(t, ExitBlock, code)
			assert.Contains(t, msg, "dotenv")
		})
	}
}

func TestPreToolUse_AllowsDotenvLookalikes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload *Payload
	}{
		{"sample file", filePayload("Read", ".env.sample")},
		{"example file", filePayload("Read", ".env.example")},
		{"environment.ts", filePayload("Edit", "src/environment.ts")},
		{"env in word", bashPayload("printenv PATH")},
		{"unguarded tool", filePayload("Glob", ".env")},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			code, _ := PreToolUse(t.TempDir(), tt.payload)
			assert.Equal(t, ExitAllow, code)
		})
	}
}

// ---- logging tests ----------------------------------------------------------

func TestPreToolUse_LogsDecision(t *testing.T) {
	t.Parallel()

	logsDir := t.TempDir()
	code, _ := PreToolUse(logsDir, bashPayload("rm -rf /"))
	require.Equal(t, ExitBlock, code)

	data, err := os.ReadFile(filepath.Join(logsDir, "sess-1", "pre_tool_use.jsonl"))
	require.NoError(t, err)

	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(data))), &record))
	assert.Equal(t, "block", record["decision"])
	assert.Equal(t, "Bash", record["tool_name"])
	assert.NotEmpty(t, record["timestamp"])
}

func TestPreToolUse_AllowedDecisionAlsoLogged(t *testing.T) {
	t.Parallel()

	logsDir := t.TempDir()
	code, _ := PreToolUse(logsDir, bashPayload("ls -la"))
	require.Equal(t, ExitAllow, code)

	data, err := os.ReadFile(filepath.Join(logsDir, "sess-1", "pre_tool_use.jsonl"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"decision":"allow"`)
}

func TestPreToolUse_MissingSessionIDUsesUnknownDir(t *testing.T) {
	t.Parallel()

	logsDir := t.TempDir()
	payload := bashPayload("ls")
	payload.SessionID = ""
	PreToolUse(logsDir, payload)

	_, err := os.Stat(filepath.Join(logsDir, "unknown", "pre_tool_use.jsonl"))
	assert.NoError(t, err)
}
