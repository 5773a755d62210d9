package trigger

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/AbdelazizMoustafa10m/adw/internal/config"
	"github.com/AbdelazizMoustafa10m/adw/internal/health"
	"github.com/AbdelazizMoustafa10m/adw/internal/phase"
	"github.com/AbdelazizMoustafa10m/adw/internal/state"
)

// webhookPayload is the subset of the tracker's event body the receiver
// needs for routing.
type webhookPayload struct {
	Action string `json:"action"`
	Issue  struct {
		Number int    `json:"number"`
		Title  string `json:"title"`
	} `json:"issue"`
	Comment struct {
		Body string `json:"body"`
	} `json:"comment"`
}

// triggerResponse is the JSON envelope returned for every webhook request.
type triggerResponse struct {
	Status   string `json:"status"`
	Issue    int    `json:"issue,omitempty"`
	ADWID    string `json:"adw_id,omitempty"`
	Workflow string `json:"workflow,omitempty"`
	Message  string `json:"message,omitempty"`
	Reason   string `json:"reason,omitempty"`
	Logs     string `json:"logs,omitempty"`
}

// Webhook is the HTTP receiver for tracker events. Routing happens
// synchronously in the handler; the workflow itself is launched as a
// detached child so the handler can answer inside the tracker's 10 second
// timeout.
type Webhook struct {
	cfg        *config.Config
	logger     *log.Logger
	executable string
}

// NewWebhook creates the receiver. The executable is re-invoked with
// composite subcommands to launch workflows; it is normally this binary's
// own path.
func NewWebhook(cfg *config.Config, executable string, logger *log.Logger) *Webhook {
	return &Webhook{cfg: cfg, logger: logger, executable: executable}
}

// Routes builds the chi router: POST /gh-webhook and GET /health.
func (w *Webhook) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Post("/gh-webhook", w.handleEvent)
	r.Get("/health", w.handleHealth)
	return r
}

// ListenAndServe runs the receiver until the context is cancelled, then
// shuts the server down gracefully.
func (w *Webhook) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", w.cfg.Trigger.Port),
		Handler:           w.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		w.logger.Info("webhook receiver listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("trigger: shutting down webhook server: %w", err)
		}
		return nil
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return fmt.Errorf("trigger: webhook server: %w", err)
	}
}

func (w *Webhook) handleEvent(rw http.ResponseWriter, req *http.Request) {
	event := req.Header.Get("X-GitHub-Event")

	var payload webhookPayload
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeJSON(rw, http.StatusBadRequest, triggerResponse{
			Status: "error",
			Reason: "invalid JSON payload",
		})
		return
	}

	wf, ok := w.route(event, payload)
	if !ok {
		writeJSON(rw, http.StatusOK, triggerResponse{
			Status: "ignored",
			Reason: fmt.Sprintf("no workflow for event %q action %q", event, payload.Action),
		})
		return
	}

	adwID := state.NewID()
	if err := phase.LaunchPipeline(w.executable, wf, payload.Issue.Number, adwID, w.logger); err != nil {
		w.logger.Error("launching workflow", "error", err)
		writeJSON(rw, http.StatusInternalServerError, triggerResponse{
			Status: "error",
			Issue:  payload.Issue.Number,
			Reason: err.Error(),
		})
		return
	}

	sub, _ := phase.CompositeCommand(wf)
	writeJSON(rw, http.StatusOK, triggerResponse{
		Status:   "accepted",
		Issue:    payload.Issue.Number,
		ADWID:    adwID,
		Workflow: sub,
		Message:  fmt.Sprintf("workflow %s launched for issue #%d", wf, payload.Issue.Number),
		Logs:     fmt.Sprintf("%s/%s", w.cfg.Paths.AgentsDir, adwID),
	})
}

// route decides the workflow for an event. New issues default to the
// plan-build pipeline; comments route through the keyword router line by
// line; everything else is ignored.
func (w *Webhook) route(event string, payload webhookPayload) (state.Workflow, bool) {
	switch {
	case event == "issues" && payload.Action == "opened":
		return state.WorkflowPlanBuild, true
	case event == "issue_comment" && payload.Action == "created":
		return RouteComment(payload.Comment.Body)
	default:
		return "", false
	}
}

func (w *Webhook) handleHealth(rw http.ResponseWriter, req *http.Request) {
	report := health.Run(req.Context(), w.cfg)

	status := "healthy"
	code := http.StatusOK
	if !report.Success {
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	writeJSON(rw, code, map[string]any{
		"status":  status,
		"service": "adw-webhook",
		"health_check": map[string]any{
			"success":  report.Success,
			"warnings": report.Warnings,
			"errors":   report.Errors,
			"details":  report.Checks,
		},
	})
}

func writeJSON(rw http.ResponseWriter, code int, body any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(code)
	if err := json.NewEncoder(rw).Encode(body); err != nil {
		fmt.Fprintln(os.Stderr, "trigger: encoding response:", err)
	}
}
