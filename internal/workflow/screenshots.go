package workflow

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
)

// RunE2EScreenshots runs the browser-automation suite with a list reporter,
// bounded by the given timeout, then collects every png under the results
// directory regardless of the suite's exit status. Returned paths are
// sorted. A failed or timed-out run with no screenshots yields an empty
// slice, never an error: screenshot capture is best-effort by contract.
func RunE2EScreenshots(ctx context.Context, e2eDir, resultsDir string, timeout time.Duration, logger *log.Logger) []string {
	if logger == nil {
		logger = log.WithPrefix("workflow")
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "npx", "playwright", "test", "--reporter=list")
	cmd.Dir = e2eDir

	if out, err := cmd.CombinedOutput(); err != nil {
		logger.Warn("e2e screenshot run did not pass",
			"error", err,
			"output_tail", tail(string(out), 500),
		)
	}

	matches, err := doublestar.FilepathGlob(filepath.Join(resultsDir, "**", "*.png"))
	if err != nil {
		logger.Warn("globbing screenshots", "dir", resultsDir, "error", err)
		return nil
	}

	sort.Strings(matches)
	logger.Debug(fmt.Sprintf("collected %d screenshots", len(matches)), "dir", resultsDir)
	return matches
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
