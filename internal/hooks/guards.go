package hooks

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Destructive rm patterns: recursive+force flags in either ordering against
// the filesystem root, the home directory, or the current directory. The
// root and dot targets anchor at end-of-command so recursive rm of a path
// under them, e.g. "rm -rf /tmp/scratch" or "rm -rf ./build", stays allowed;
// home matches anywhere so "rm -rf ~/" is still caught.
var destructiveRmPatterns = []*regexp.Regexp{
	regexp.MustCompile(`rm\s+.*-[a-zA-Z]*r[a-zA-Z]*f[a-zA-Z]*\s+/\s*$`),
	regexp.MustCompile(`rm\s+.*-[a-zA-Z]*f[a-zA-Z]*r[a-zA-Z]*\s+/\s*$`),
	regexp.MustCompile(`rm\s+.*-[a-zA-Z]*r[a-zA-Z]*f[a-zA-Z]*\s+~`),
	regexp.MustCompile(`rm\s+.*-[a-zA-Z]*f[a-zA-Z]*r[a-zA-Z]*\s+~`),
	regexp.MustCompile(`rm\s+.*-[a-zA-Z]*r[a-zA-Z]*f[a-zA-Z]*\s+\.\s*$`),
	regexp.MustCompile(`rm\s+.*-[a-zA-Z]*f[a-zA-Z]*r[a-zA-Z]*\s+\.\s*$`),
}

// reDotenv matches the dotenv file name variants that hold secrets, as a
// bare name or path component.
var reDotenv = regexp.MustCompile(`(^|/)\.env(\.local|\.production|\.staging)?(\s|$|["'])`)

// fileTools are the tools whose inputs are checked for dotenv access.
var fileTools = map[string]bool{
	"Bash":  true,
	"Read":  true,
	"Write": true,
	"Edit":  true,
}

// PreToolUse evaluates one tool invocation. It returns the exit code for
// the hook process and, when blocking, the message for stderr. The decision
// is logged to pre_tool_use.jsonl either way.
func PreToolUse(logsDir string, payload *Payload) (int, string) {
	var input toolInput
	if len(payload.ToolInput) > 0 {
		// A malformed tool_input cannot be inspected; allow and log.
		json.Unmarshal(payload.ToolInput, &input) //nolint:errcheck
	}

	code, msg := evaluateToolUse(payload.ToolName, input)

	extra := map[string]any{"decision": "allow"}
	if code == ExitBlock {
		extra["decision"] = "block"
		extra["reason"] = msg
	}
	logEvent(logsDir, payload.SessionID, "pre_tool_use.jsonl", payload, extra)

	return code, msg
}

func evaluateToolUse(toolName string, input toolInput) (int, string) {
	if toolName == "Bash" {
		for _, re := range destructiveRmPatterns {
			if re.MatchString(input.Command) {
				return ExitBlock, fmt.Sprintf("Blocked: destructive rm command: %s", input.Command)
			}
		}
	}

	if fileTools[toolName] {
		if target := dotenvTarget(input); target != "" {
			return ExitBlock, fmt.Sprintf("Blocked: access to dotenv file: %s", target)
		}
	}
	return ExitAllow, ""
}

// dotenvTarget returns the dotenv reference found in the tool input, or ""
// when the input touches no protected file.
func dotenvTarget(input toolInput) string {
	for _, candidate := range []string{input.FilePath, input.Path} {
		if candidate != "" && reDotenv.MatchString(candidate+" ") {
			return candidate
		}
	}
	if input.Command != "" {
		for _, token := range strings.Fields(input.Command) {
			if reDotenv.MatchString(token + " ") {
				return token
			}
		}
	}
	return ""
}
