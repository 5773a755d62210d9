// Package workflow holds the operations phase units compose: issue
// classification, plan authoring, implementation, and the comment
// formatting contract every tracker message follows.
package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/AbdelazizMoustafa10m/adw/internal/agent"
	"github.com/AbdelazizMoustafa10m/adw/internal/github"
	"github.com/AbdelazizMoustafa10m/adw/internal/state"
)

// Agent names identify which role authored a tracker comment or an agents/
// output directory. They are part of the persistent layout, not display
// strings.
const (
	AgentClassifier   = "issue_classifier"
	AgentPlanner      = "sdlc_planner"
	AgentImplementor  = "sdlc_implementor"
	AgentTester       = "test_runner"
	AgentTestResolver = "test_resolver"
	AgentReviewer     = "reviewer"
	AgentDocumenter   = "documenter"
	AgentPatcher      = "patch_implementor"
	AgentOps          = "ops"
)

// classCommands maps an issue class to the template that authors its plan.
var classCommands = map[state.IssueClass]agent.SlashCommand{
	state.ClassChore:   agent.CmdChore,
	state.ClassBug:     agent.CmdBug,
	state.ClassFeature: agent.CmdFeature,
}

// FormatIssueMessage builds the mandated comment prefix
// "<adw-id>_<agent-name>[_<session-id>]: <message>". Every comment the
// orchestrator posts goes through this.
func FormatIssueMessage(adwID, agentName, message string, sessionID ...string) string {
	prefix := adwID + "_" + agentName
	if len(sessionID) > 0 && sessionID[0] != "" {
		prefix += "_" + sessionID[0]
	}
	return prefix + ": " + message
}

// FormatIssueBody renders an issue as template input: title then body.
func FormatIssueBody(title, body string) string {
	return fmt.Sprintf("issue_title: %s\nissue_body: %s", title, body)
}

// Classify runs the classifier template against the issue and returns the
// issue class. Agent output is parsed tolerantly: backticks are stripped, a
// literal "0" means the classifier could not decide, an exact match on a
// class token wins, and otherwise the first valid class found by
// case-insensitive substring search is accepted.
func Classify(ctx context.Context, runner *agent.Runner, adwID string, issue *github.Issue) (state.IssueClass, string, error) {
	resp, err := runner.ExecuteTemplate(ctx, agent.TemplateRequest{
		AgentName:    AgentClassifier,
		SlashCommand: agent.CmdClassifyIssue,
		Args:         []string{FormatIssueBody(issue.Title, issue.Body)},
		ADWID:        adwID,
	})
	if err != nil {
		return "", "", fmt.Errorf("workflow: classifying issue: %w", err)
	}
	if !resp.Success {
		return "", resp.SessionID, fmt.Errorf("workflow: classifying issue: %s", resp.Output)
	}

	class, err := ParseIssueClass(resp.Output)
	if err != nil {
		return "", resp.SessionID, err
	}
	return class, resp.SessionID, nil
}

// ParseIssueClass extracts an issue class from raw classifier output.
func ParseIssueClass(output string) (state.IssueClass, error) {
	token := strings.TrimSpace(output)
	token = strings.Trim(token, "`")
	token = strings.TrimSpace(token)

	if token == "0" {
		return "", fmt.Errorf("workflow: classifier could not determine issue class")
	}

	for _, class := range state.ValidClasses {
		name := strings.TrimPrefix(string(class), "/")
		if token == string(class) || token == name {
			return class, nil
		}
	}

	// Verbose output still counts if it mentions a class anywhere.
	lower := strings.ToLower(token)
	for _, class := range state.ValidClasses {
		if strings.Contains(lower, strings.TrimPrefix(string(class), "/")) {
			return class, nil
		}
	}
	return "", fmt.Errorf("workflow: unrecognised classification %q", token)
}

// BuildPlan runs the class-named template with the issue content and any
// downloaded issue images attached, returning the plan text.
func BuildPlan(ctx context.Context, runner *agent.Runner, adwID string, issue *github.Issue, class state.IssueClass, imagePaths []string) (*agent.PromptResponse, error) {
	cmd, ok := classCommands[class]
	if !ok {
		return nil, fmt.Errorf("workflow: no plan template for class %q", class)
	}

	resp, err := runner.ExecuteTemplate(ctx, agent.TemplateRequest{
		AgentName:    AgentPlanner,
		SlashCommand: cmd,
		Args:         []string{fmt.Sprintf("%d", issue.Number), adwID, FormatIssueBody(issue.Title, issue.Body)},
		ADWID:        adwID,
		ImagePaths:   imagePaths,
	})
	if err != nil {
		return nil, fmt.Errorf("workflow: building plan: %w", err)
	}
	if !resp.Success {
		return resp, fmt.Errorf("workflow: building plan: %s", resp.Output)
	}
	return resp, nil
}

// FindPlanFile asks the agent to locate the plan file the planner wrote.
// The answer is accepted only if it looks like a path, which for this
// layout means it contains a separator.
func FindPlanFile(ctx context.Context, runner *agent.Runner, adwID, planOutput string) (string, error) {
	resp, err := runner.ExecuteTemplate(ctx, agent.TemplateRequest{
		AgentName:    AgentPlanner,
		SlashCommand: agent.CmdFindPlanFile,
		Args:         []string{planOutput},
		ADWID:        adwID,
	})
	if err != nil {
		return "", fmt.Errorf("workflow: finding plan file: %w", err)
	}
	if !resp.Success {
		return "", fmt.Errorf("workflow: finding plan file: %s", resp.Output)
	}

	path := strings.TrimSpace(resp.Output)
	if !strings.Contains(path, "/") {
		return "", fmt.Errorf("workflow: %q does not look like a plan file path", path)
	}
	return path, nil
}

// Implement runs the implementation template against a plan, which may be a
// file path or inline plan text.
func Implement(ctx context.Context, runner *agent.Runner, adwID, agentName, plan string) (*agent.PromptResponse, error) {
	resp, err := runner.ExecuteTemplate(ctx, agent.TemplateRequest{
		AgentName:    agentName,
		SlashCommand: agent.CmdImplement,
		Args:         []string{plan},
		ADWID:        adwID,
	})
	if err != nil {
		return nil, fmt.Errorf("workflow: implementing plan: %w", err)
	}
	if !resp.Success {
		return resp, fmt.Errorf("workflow: implementing plan: %s", resp.Output)
	}
	return resp, nil
}
