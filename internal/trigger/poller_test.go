package trigger

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbdelazizMoustafa10m/adw/internal/config"
	"github.com/AbdelazizMoustafa10m/adw/internal/github"
	"github.com/AbdelazizMoustafa10m/adw/internal/state"
)

// fakeSource is an in-memory IssueSource.
type fakeSource struct {
	issues   []github.IssueSummary
	comments map[int][]github.Comment
}

func (f *fakeSource) ListOpenIssues(ctx context.Context) ([]github.IssueSummary, error) {
	return f.issues, nil
}

func (f *fakeSource) FetchIssueComments(ctx context.Context, number int) ([]github.Comment, error) {
	return f.comments[number], nil
}

func newTestPoller(t *testing.T, src *fakeSource) *Poller {
	t.Helper()
	cfg := config.NewDefaults()
	cfg.Paths.AgentsDir = t.TempDir()
	return NewPoller(cfg, src, "/bin/true", log.New(io.Discard))
}

// ---- decide tests -----------------------------------------------------------

func TestPoller_NewIssueTakesDefaultWorkflow(t *testing.T) {
	t.Parallel()

	src := &fakeSource{
		issues:   []github.IssueSummary{{Number: 7, Title: "Add unit toggle"}},
		comments: map[int][]github.Comment{},
	}
	p := newTestPoller(t, src)

	wf, ok := p.decide(context.Background(), src.issues[0])
	require.True(t, ok)
	assert.Equal(t, state.WorkflowPlanBuild, wf)
}

func TestPoller_ProcessedIssueNotRetriggered(t *testing.T) {
	t.Parallel()

	src := &fakeSource{
		issues:   []github.IssueSummary{{Number: 7}},
		comments: map[int][]github.Comment{},
	}
	p := newTestPoller(t, src)
	p.processed[7] = true

	_, ok := p.decide(context.Background(), src.issues[0])
	assert.False(t, ok)
}

func TestPoller_KeywordCommentRouted(t *testing.T) {
	t.Parallel()

	src := &fakeSource{
		issues: []github.IssueSummary{{Number: 42}},
		comments: map[int][]github.Comment{
			42: {
				{ID: "c1", Body: "some discussion"},
				{ID: "c2", Body: "adw_patch"},
			},
		},
	}
	p := newTestPoller(t, src)

	wf, ok := p.decide(context.Background(), src.issues[0])
	require.True(t, ok)
	assert.Equal(t, state.WorkflowPatch, wf)

	// The same comment id never triggers twice.
	_, ok = p.decide(context.Background(), src.issues[0])
	assert.False(t, ok)
}

func TestPoller_NonKeywordCommentIgnoredAndRemembered(t *testing.T) {
	t.Parallel()

	src := &fakeSource{
		issues: []github.IssueSummary{{Number: 42}},
		comments: map[int][]github.Comment{
			42: {{ID: "c1", Body: "thanks!"}},
		},
	}
	p := newTestPoller(t, src)

	_, ok := p.decide(context.Background(), src.issues[0])
	assert.False(t, ok)
	assert.Equal(t, "c1", p.lastComments[42])
}

// ---- cycle tests ------------------------------------------------------------

func TestPoller_CycleMarksProcessed(t *testing.T) {
	t.Parallel()

	src := &fakeSource{
		issues:   []github.IssueSummary{{Number: 7}},
		comments: map[int][]github.Comment{},
	}
	p := newTestPoller(t, src)
	p.cycle(context.Background())

	assert.True(t, p.processed[7])
}

func TestPoller_FailedPipelineRetriedNextCycle(t *testing.T) {
	t.Parallel()

	src := &fakeSource{
		issues:   []github.IssueSummary{{Number: 7}},
		comments: map[int][]github.Comment{},
	}
	cfg := config.NewDefaults()
	cfg.Paths.AgentsDir = t.TempDir()
	p := NewPoller(cfg, src, "/bin/false", log.New(io.Discard))

	p.launch(7, state.WorkflowPlanBuild)

	// The issue stays eligible, so the next cycle picks it up again.
	assert.False(t, p.processed[7])
	_, ok := p.decide(context.Background(), src.issues[0])
	assert.True(t, ok)
}

func TestPoller_ShutdownStopsCycle(t *testing.T) {
	t.Parallel()

	src := &fakeSource{
		issues:   []github.IssueSummary{{Number: 7}, {Number: 8}},
		comments: map[int][]github.Comment{},
	}
	p := newTestPoller(t, src)
	p.Shutdown()
	p.cycle(context.Background())

	assert.Empty(t, p.processed)
}
