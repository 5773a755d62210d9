// Package trigger contains the ingestion front-ends: the keyword router
// shared by both, the webhook receiver, and the polling loop.
package trigger

import (
	"sort"
	"strings"

	"github.com/AbdelazizMoustafa10m/adw/internal/state"
)

// keywordWorkflows maps trigger keywords in comment bodies to workflow
// kinds. "adw" is the shorthand for the default plan-build pipeline.
var keywordWorkflows = map[string]state.Workflow{
	"adw":                        state.WorkflowPlanBuild,
	"adw_plan_build":             state.WorkflowPlanBuild,
	"adw_sdlc":                   state.WorkflowSDLC,
	"adw_patch":                  state.WorkflowPatch,
	"adw_plan_build_test":        state.WorkflowPlanBuildTest,
	"adw_plan_build_review":      state.WorkflowPlanBuildReview,
	"adw_plan_build_test_review": state.WorkflowPlanBuildTestReview,
}

// keywordsByLength holds the router keywords in descending length order so
// longer keywords always win over their prefixes.
var keywordsByLength = func() []string {
	keys := make([]string, 0, len(keywordWorkflows))
	for k := range keywordWorkflows {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool {
		if len(keys[a]) != len(keys[b]) {
			return len(keys[a]) > len(keys[b])
		}
		return keys[a] < keys[b]
	})
	return keys
}()

// RouteKeyword matches a candidate string against the trigger keywords,
// longest first. The match anchors at the start of the lowercased candidate.
func RouteKeyword(candidate string) (state.Workflow, bool) {
	body := strings.ToLower(strings.TrimSpace(candidate))
	for _, kw := range keywordsByLength {
		if strings.HasPrefix(body, kw) {
			return keywordWorkflows[kw], true
		}
	}
	return "", false
}

// RouteComment applies RouteKeyword to every line of a comment body,
// returning the first line that matches. Multi-line bodies occur when a
// trigger keyword is posted together with an attachment or explanation.
func RouteComment(body string) (state.Workflow, bool) {
	for _, line := range strings.Split(body, "\n") {
		if wf, ok := RouteKeyword(line); ok {
			return wf, true
		}
	}
	return "", false
}
