package phase

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbdelazizMoustafa10m/adw/internal/agent"
	"github.com/AbdelazizMoustafa10m/adw/internal/config"
	"github.com/AbdelazizMoustafa10m/adw/internal/github"
	"github.com/AbdelazizMoustafa10m/adw/internal/gitops"
	"github.com/AbdelazizMoustafa10m/adw/internal/state"
)

// reviewAgentScript fakes the agent CLI: /review prompts get a blocked
// review as a stream-json result line, every other prompt exits non-zero.
func reviewAgentScript(t *testing.T) string {
	t.Helper()

	review := `{"approved":false,"issues":[{"severity":"blocker","description":"handler drops errors"}],"summary":"blocked"}`
	line, err := json.Marshal(map[string]any{
		"type":       "result",
		"session_id": "sess-1",
		"is_error":   false,
		"result":     review,
	})
	require.NoError(t, err)

	script := "#!/bin/sh\ncase \"$2\" in\n/review*)\n  cat <<'EOF'\n" +
		string(line) + "\nEOF\n  ;;\n*)\n  echo implement failed >&2\n  exit 1\n  ;;\nesac\n"

	path := filepath.Join(t.TempDir(), "agent.sh")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func newReviewDeps(t *testing.T, agentCommand string) *Deps {
	t.Helper()

	cfg := config.NewDefaults()
	cfg.Paths.AgentsDir = t.TempDir()
	cfg.Paths.E2EDir = filepath.Join(t.TempDir(), "missing-e2e")
	cfg.Paths.E2EResultsDir = filepath.Join(t.TempDir(), "missing-results")
	cfg.Limits.ReviewAttempts = 2
	cfg.Limits.E2ETimeoutSeconds = 1

	logger := log.New(io.Discard)
	runner := agent.NewRunner(agentCommand, cfg.Paths.AgentsDir, logger)

	return &Deps{
		Config: cfg,
		Logger: logger,
		Runner: runner,
		GitHub: &github.Client{GhBin: "/bin/true", Repo: "acme/widgets"},
		Git:    &gitops.Ops{Runner: runner},
		Store:  state.NewStore(cfg.Paths.AgentsDir),
	}
}

// ---- RunReview tests --------------------------------------------------------

func TestRunReview_RequiresPlanFile(t *testing.T) {
	t.Parallel()

	d := newReviewDeps(t, "/bin/true")
	_, err := d.Store.Create("abc12345", "7", state.WorkflowSDLC)
	require.NoError(t, err)

	err = RunReview(context.Background(), d, "abc12345")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no plan file recorded")

	rec, err := d.Store.Load("abc12345")
	require.NoError(t, err)
	assert.NotEmpty(t, rec.Error)
	assert.Empty(t, rec.ReviewAttempts)
}

func TestRunReview_FailedBlockerFixConsumesAttempt(t *testing.T) {
	t.Parallel()

	d := newReviewDeps(t, reviewAgentScript(t))
	rec, err := d.Store.Create("abc12345", "7", state.WorkflowSDLC)
	require.NoError(t, err)
	rec.PlanFile = "specs/plan.md"
	require.NoError(t, d.Store.Save(rec))

	err = RunReview(context.Background(), d, "abc12345")
	require.Error(t, err)

	// The failed /implement fix does not abort the phase; the loop runs
	// on to its attempt limit and every attempt is recorded.
	assert.Contains(t, err.Error(), "Review blockers after 2 attempts")

	loaded, err := d.Store.Load("abc12345")
	require.NoError(t, err)
	require.Len(t, loaded.ReviewAttempts, 2)
	assert.False(t, loaded.ReviewAttempts[0].Approved)
	assert.NotEmpty(t, loaded.Error)
}
