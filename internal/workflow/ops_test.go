package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbdelazizMoustafa10m/adw/internal/state"
)

// ---- FormatIssueMessage tests -----------------------------------------------

func TestFormatIssueMessage(t *testing.T) {
	t.Parallel()

	got := FormatIssueMessage("abc12345", AgentPlanner, "✅ Starting plan phase")
	assert.Equal(t, "abc12345_sdlc_planner: ✅ Starting plan phase", got)
}

func TestFormatIssueMessage_WithSessionID(t *testing.T) {
	t.Parallel()

	got := FormatIssueMessage("abc12345", AgentReviewer, "done", "sess-99")
	assert.Equal(t, "abc12345_reviewer_sess-99: done", got)
}

func TestFormatIssueMessage_EmptySessionIDOmitted(t *testing.T) {
	t.Parallel()

	got := FormatIssueMessage("abc12345", AgentTester, "done", "")
	assert.Equal(t, "abc12345_test_runner: done", got)
}

// ---- ParseIssueClass tests --------------------------------------------------

func TestParseIssueClass(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		output  string
		want    state.IssueClass
		wantErr bool
	}{
		{"exact slash token", "/feature", state.ClassFeature, false},
		{"bare token", "bug", state.ClassBug, false},
		{"backtick wrapped", "`/chore`", state.ClassChore, false},
		{"surrounding whitespace", "  /bug\n", state.ClassBug, false},
		{"verbose output substring", "This issue is clearly a FEATURE request.", state.ClassFeature, false},
		{"classifier gave up", "0", "", true},
		{"unrecognised", "document", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseIssueClass(tt.output)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// ---- FormatIssueBody tests --------------------------------------------------

func TestFormatIssueBody(t *testing.T) {
	t.Parallel()

	got := FormatIssueBody("Add unit toggle", "Support metric and imperial.")
	assert.Equal(t, "issue_title: Add unit toggle\nissue_body: Support metric and imperial.", got)
}
