package trigger

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbdelazizMoustafa10m/adw/internal/config"
)

func newTestWebhook(t *testing.T) *Webhook {
	t.Helper()
	cfg := config.NewDefaults()
	cfg.Paths.AgentsDir = t.TempDir()
	// The launched "workflow" is a no-op binary so handler tests stay
	// hermetic.
	return NewWebhook(cfg, "/bin/true", log.New(io.Discard))
}

func postEvent(t *testing.T, w *Webhook, event, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/gh-webhook", strings.NewReader(body))
	req.Header.Set("X-GitHub-Event", event)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	w.Routes().ServeHTTP(rec, req)
	return rec
}

// ---- event routing tests ----------------------------------------------------

func TestWebhook_IssueOpenedAccepted(t *testing.T) {
	t.Parallel()

	w := newTestWebhook(t)
	rec := postEvent(t, w, "issues", `{"action":"opened","issue":{"number":7,"title":"Add unit toggle"}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp triggerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "accepted", resp.Status)
	assert.Equal(t, 7, resp.Issue)
	assert.Len(t, resp.ADWID, 8)
	assert.Equal(t, "plan-build", resp.Workflow)
	assert.NotEmpty(t, resp.Logs)
}

func TestWebhook_CommentKeywordRouted(t *testing.T) {
	t.Parallel()

	w := newTestWebhook(t)
	body := `{"action":"created","issue":{"number":42},"comment":{"body":"adw_sdlc"}}`
	rec := postEvent(t, w, "issue_comment", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp triggerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "accepted", resp.Status)
	assert.Equal(t, "sdlc", resp.Workflow)
}

func TestWebhook_CommentWithoutKeywordIgnored(t *testing.T) {
	t.Parallel()

	w := newTestWebhook(t)
	body := `{"action":"created","issue":{"number":42},"comment":{"body":"thanks for the fix"}}`
	rec := postEvent(t, w, "issue_comment", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp triggerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ignored", resp.Status)
	assert.NotEmpty(t, resp.Reason)
}

func TestWebhook_UnrelatedEventIgnored(t *testing.T) {
	t.Parallel()

	w := newTestWebhook(t)
	rec := postEvent(t, w, "push", `{"action":"created"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp triggerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ignored", resp.Status)
}

func TestWebhook_IssueEditedIgnored(t *testing.T) {
	t.Parallel()

	w := newTestWebhook(t)
	rec := postEvent(t, w, "issues", `{"action":"edited","issue":{"number":7}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ignored"`)
}

func TestWebhook_InvalidJSON(t *testing.T) {
	t.Parallel()

	w := newTestWebhook(t)
	rec := postEvent(t, w, "issues", "{broken")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebhook_LaunchFailureReported(t *testing.T) {
	t.Parallel()

	cfg := config.NewDefaults()
	w := NewWebhook(cfg, "/nonexistent/binary", log.New(io.Discard))
	rec := postEvent(t, w, "issues", `{"action":"opened","issue":{"number":7}}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error"`)
}
