package health

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// ---- Render tests -----------------------------------------------------------

func TestReport_RenderHealthy(t *testing.T) {
	t.Parallel()

	r := &Report{
		Success: true,
		Checks: []CheckResult{
			{Name: "git remote", Status: StatusOK, Message: "acme/widgets"},
			{Name: "node toolchain", Status: StatusWarn, Message: "npx not available, e2e screenshots disabled"},
		},
	}

	out := r.Render()
	assert.Contains(t, out, "git remote")
	assert.Contains(t, out, "acme/widgets")
	assert.Contains(t, out, "healthy")
	assert.NotContains(t, out, "unhealthy")
}

func TestReport_RenderUnhealthy(t *testing.T) {
	t.Parallel()

	r := &Report{
		Success: false,
		Checks: []CheckResult{
			{Name: "github cli", Status: StatusFail, Message: "gh not authenticated"},
		},
	}

	out := r.Render()
	assert.Contains(t, out, "gh not authenticated")
	assert.Contains(t, out, "unhealthy")
}
