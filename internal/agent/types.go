package agent

// SlashCommand identifies a prompt template ("slash command") understood by
// the coding agent. The set is closed: phase units only ever compose prompts
// from these commands.
type SlashCommand string

const (
	// Issue classification outputs (doubling as plan templates).
	CmdChore   SlashCommand = "/chore"
	CmdBug     SlashCommand = "/bug"
	CmdFeature SlashCommand = "/feature"

	// Workflow commands.
	CmdClassifyIssue      SlashCommand = "/classify_issue"
	CmdFindPlanFile       SlashCommand = "/find_plan_file"
	CmdGenerateBranchName SlashCommand = "/generate_branch_name"
	CmdCommit             SlashCommand = "/commit"
	CmdPullRequest        SlashCommand = "/pull_request"
	CmdImplement          SlashCommand = "/implement"

	// SDLC phase commands.
	CmdTest              SlashCommand = "/test"
	CmdResolveFailedTest SlashCommand = "/resolve_failed_test"
	CmdReview            SlashCommand = "/review"
	CmdDocument          SlashCommand = "/document"
	CmdPatch             SlashCommand = "/patch"
)

// Model selects between the two model tiers the agent runs with.
type Model string

const (
	// ModelStrong is for heavy cognitive work: implementation, review,
	// planning, test resolution.
	ModelStrong Model = "opus"

	// ModelFast is for routine work: classification, commit messages,
	// branch names, test execution, documentation.
	ModelFast Model = "sonnet"
)

// commandModels maps each slash command to its recommended model tier.
// Callers may override per request.
var commandModels = map[SlashCommand]Model{
	CmdImplement:         ModelStrong,
	CmdReview:            ModelStrong,
	CmdFeature:           ModelStrong,
	CmdBug:               ModelStrong,
	CmdChore:             ModelStrong,
	CmdPatch:             ModelStrong,
	CmdResolveFailedTest: ModelStrong,

	CmdClassifyIssue:      ModelFast,
	CmdCommit:             ModelFast,
	CmdPullRequest:        ModelFast,
	CmdFindPlanFile:       ModelFast,
	CmdGenerateBranchName: ModelFast,
	CmdTest:               ModelFast,
	CmdDocument:           ModelFast,
}

// ModelFor returns the recommended model for a slash command. Unknown
// commands default to the fast tier.
func ModelFor(cmd SlashCommand) Model {
	if m, ok := commandModels[cmd]; ok {
		return m
	}
	return ModelFast
}

// PromptRequest configures one agent invocation.
type PromptRequest struct {
	// Prompt is the full prompt text, usually "<slash-command> <args...>".
	Prompt string

	// ADWID is the workflow id, used for output and prompt file placement.
	ADWID string

	// AgentName labels this invocation within the workflow (e.g.
	// "sdlc_planner"). It appears in tracker comments and output paths.
	AgentName string

	// Model selects the model tier. Empty means ModelStrong.
	Model Model

	// ImagePaths are local image files appended to the prompt as a read
	// directive so the agent can inspect them.
	ImagePaths []string

	// SkipPermissions passes the agent's permission bypass flag.
	SkipPermissions bool

	// OutputFile receives the agent's line-delimited structured output.
	OutputFile string
}

// PromptResponse is the distilled result of one agent invocation.
type PromptResponse struct {
	// Output is the final result text (or raw output / stderr on failure).
	Output string `json:"output"`

	// Success is false when the agent exited non-zero or reported is_error.
	Success bool `json:"success"`

	// SessionID is the agent-assigned session identifier when parsable.
	// Phase units include it in tracker comments for traceability.
	SessionID string `json:"session_id,omitempty"`
}

// TemplateRequest describes a slash-command invocation with arguments.
type TemplateRequest struct {
	AgentName    string
	SlashCommand SlashCommand
	Args         []string
	ADWID        string
	ImagePaths   []string

	// Model overrides the command's recommended model when non-empty.
	Model Model
}
