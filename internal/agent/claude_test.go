package agent

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- savePrompt tests -------------------------------------------------------

func TestSavePrompt_SlashCommandPrompt(t *testing.T) {
	t.Parallel()

	agentsDir := t.TempDir()
	r := NewRunner("claude", agentsDir, nil)

	prompt := "/implement specs/plan.md with care"
	r.savePrompt(PromptRequest{
		Prompt:    prompt,
		ADWID:     "abc12345",
		AgentName: "sdlc_implementor",
	})

	data, err := os.ReadFile(filepath.Join(agentsDir, "abc12345", "sdlc_implementor", "prompts", "implement.txt"))
	require.NoError(t, err)
	assert.Equal(t, prompt, string(data))
}

func TestSavePrompt_PlainPromptNotSaved(t *testing.T) {
	t.Parallel()

	agentsDir := t.TempDir()
	r := NewRunner("claude", agentsDir, nil)
	r.savePrompt(PromptRequest{Prompt: "just a question", ADWID: "abc12345", AgentName: "x"})

	_, err := os.Stat(filepath.Join(agentsDir, "abc12345"))
	assert.True(t, os.IsNotExist(err))
}

// ---- subprocess environment tests -------------------------------------------

func TestSubprocessEnv_Denylist(t *testing.T) {
	t.Setenv("PATH", "/usr/bin")
	t.Setenv("HOME", "/home/u")
	t.Setenv("CLAUDECODE", "1")
	t.Setenv("SOME_SECRET", "x")

	r := NewRunner("claude", t.TempDir(), nil)
	env := r.subprocessEnv()

	joined := strings.Join(env, "\n")
	assert.Contains(t, joined, "PATH=/usr/bin")
	assert.Contains(t, joined, "HOME=/home/u")

	// The nested-agent marker and arbitrary host variables never pass through.
	assert.NotContains(t, joined, "CLAUDECODE=")
	assert.NotContains(t, joined, "SOME_SECRET=")
}

func TestSubprocessEnv_ForwardsPAT(t *testing.T) {
	t.Setenv("PATH", "/usr/bin")

	r := NewRunner("claude", t.TempDir(), nil)
	r.GitHubPAT = "ghp_token"
	env := strings.Join(r.subprocessEnv(), "\n")

	assert.Contains(t, env, "GITHUB_PAT=ghp_token")
	assert.Contains(t, env, "GH_TOKEN=ghp_token")
}

// ---- model resolution tests -------------------------------------------------

func TestModelName(t *testing.T) {
	t.Parallel()

	r := NewRunner("claude", t.TempDir(), nil)
	assert.Equal(t, "opus", r.modelName(ModelStrong))
	assert.Equal(t, "sonnet", r.modelName(ModelFast))

	r.StrongModel = "claude-opus-latest"
	r.FastModel = "claude-sonnet-latest"
	assert.Equal(t, "claude-opus-latest", r.modelName(ModelStrong))
	assert.Equal(t, "claude-sonnet-latest", r.modelName(ModelFast))
}

// ---- imageNote tests --------------------------------------------------------

func TestImageNote(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	img := filepath.Join(dir, "issue_image_1.png")
	require.NoError(t, os.WriteFile(img, []byte("png"), 0o644))

	note := imageNote([]string{img, filepath.Join(dir, "missing.png"), dir})
	assert.Contains(t, note, "Reference images")
	assert.Contains(t, note, img)
	assert.NotContains(t, note, "missing.png")
}

func TestImageNote_Empty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, imageNote(nil))
	assert.Empty(t, imageNote([]string{"/does/not/exist.png"}))
}

// ---- imageExt tests ---------------------------------------------------------

func TestImageExt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url  string
		want string
	}{
		{"https://x/y.png", ".png"},
		{"https://x/y.JPG?token=1", ".jpg"},
		{"https://x/y.webp", ".webp"},
		{"https://x/attachment", ".png"},
		{"https://x/archive.zip", ".png"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.url, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, imageExt(tt.url))
		})
	}
}
