// Package state persists the per-workflow record between pipeline phases.
//
// One record per workflow, serialized as JSON to
// <agents-dir>/<adw-id>/adw_state.json. Phase units are the only writers and
// run strictly one at a time per workflow id, so the store is synchronous and
// non-transactional; writes use an atomic temp-file-and-rename so a crashed
// phase never leaves a torn record behind.
package state

import (
	"time"

	"github.com/google/uuid"
)

// Workflow identifies which pipeline composition a record belongs to.
type Workflow string

const (
	WorkflowPlanBuild           Workflow = "plan_build"
	WorkflowPlanBuildTest       Workflow = "plan_build_test"
	WorkflowPlanBuildReview     Workflow = "plan_build_review"
	WorkflowPlanBuildTestReview Workflow = "plan_build_test_review"
	WorkflowSDLC                Workflow = "sdlc"
	WorkflowPatch               Workflow = "patch"
)

// Phase is a single transition in the workflow state machine.
type Phase string

const (
	PhaseClassify Phase = "classify"
	PhaseBranch   Phase = "branch"
	PhasePlan     Phase = "plan"
	PhaseBuild    Phase = "build"
	PhaseTest     Phase = "test"
	PhaseReview   Phase = "review"
	PhaseDocument Phase = "document"
	PhasePR       Phase = "pr"
)

// IssueClass is the slash command an issue was classified as.
type IssueClass string

const (
	ClassChore   IssueClass = "/chore"
	ClassBug     IssueClass = "/bug"
	ClassFeature IssueClass = "/feature"
)

// ValidClasses lists the accepted issue classifications in preference order.
var ValidClasses = []IssueClass{ClassChore, ClassBug, ClassFeature}

// SuiteResult is the outcome of a single test suite within a test attempt.
type SuiteResult struct {
	Suite  string `json:"suite"`
	Passed bool   `json:"passed"`
	Output string `json:"output"`
	Error  string `json:"error,omitempty"`
}

// TestAttempt aggregates one run of the /test command.
type TestAttempt struct {
	AllPassed bool          `json:"all_passed"`
	Results   []SuiteResult `json:"results"`
	Attempt   int           `json:"attempt"`
}

// ReviewSeverity classifies a review finding.
type ReviewSeverity string

const (
	SeverityBlocker    ReviewSeverity = "blocker"
	SeverityWarning    ReviewSeverity = "warning"
	SeveritySuggestion ReviewSeverity = "suggestion"
)

// ReviewIssue is a single finding from the /review command.
type ReviewIssue struct {
	File        string         `json:"file"`
	Line        int            `json:"line,omitempty"`
	Severity    ReviewSeverity `json:"severity"`
	Description string         `json:"description"`
}

// ReviewAttempt aggregates one run of the /review command.
type ReviewAttempt struct {
	Approved    bool          `json:"approved"`
	Issues      []ReviewIssue `json:"issues,omitempty"`
	Screenshots []string      `json:"screenshots,omitempty"`
	Summary     string        `json:"summary"`
	Attempt     int           `json:"attempt"`
}

// Blockers returns the findings with blocker severity.
func (r ReviewAttempt) Blockers() []ReviewIssue {
	var blockers []ReviewIssue
	for _, issue := range r.Issues {
		if issue.Severity == SeverityBlocker {
			blockers = append(blockers, issue)
		}
	}
	return blockers
}

// DocumentationResult is the outcome of the /document command.
type DocumentationResult struct {
	FilesCreated []string `json:"files_created,omitempty"`
	Summary      string   `json:"summary"`
}

// Record is the durable per-workflow state shared by all phases.
//
// ADWID and IssueNumber are immutable after creation. PlanFile is a path for
// all workflows except patch, where it holds the free-form plan text marker
// produced by the /patch command.
type Record struct {
	ADWID           string               `json:"adw_id"`
	IssueNumber     string               `json:"issue_number"`
	Workflow        Workflow             `json:"workflow"`
	IssueClass      IssueClass           `json:"issue_class,omitempty"`
	BranchName      string               `json:"branch_name,omitempty"`
	PlanFile        string               `json:"plan_file,omitempty"`
	CurrentPhase    Phase                `json:"current_phase"`
	CompletedPhases []Phase              `json:"completed_phases"`
	TestAttempts    []TestAttempt        `json:"test_results,omitempty"`
	ReviewAttempts  []ReviewAttempt      `json:"review_results,omitempty"`
	Documentation   *DocumentationResult `json:"documentation,omitempty"`
	PRURL           string               `json:"pr_url,omitempty"`
	Error           string               `json:"error,omitempty"`
	CreatedAt       string               `json:"created_at"`
	UpdatedAt       string               `json:"updated_at"`
}

// NewID generates a short 8-character workflow id from a UUID prefix.
func NewID() string {
	return uuid.NewString()[:8]
}

// now returns the current UTC time in RFC3339 format, the timestamp format
// used throughout the record.
func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
