package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/url"

	"travelspend/internal/core"
	"travelspend/internal/dataset"
	"travelspend/internal/gate"
	applog "travelspend/internal/log"
	"travelspend/internal/middleware/trace"
	"travelspend/internal/report"
)

var errNoDataset = errors.New("no dataset configured")

// handleIndex renders the password prompt for unauthorized viewers and the
// dashboard for everyone else.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := s.loadSession(r)
	if !gate.IsAuthorized(sess) {
		s.render(ctx, w, http.StatusOK, "login.html", loginView{
			Title:  DashboardTitle,
			Prompt: gate.Prompt(sess),
			Denied: sess.State == gate.Denied,
		})
		return
	}

	rep, res, err := s.buildReport(ctx, r.URL.Query())
	if err != nil {
		s.logDatasetError(ctx, err)
		s.renderError(ctx, w, http.StatusInternalServerError, "The dataset could not be loaded", errorMessage(err))
		return
	}
	s.render(ctx, w, http.StatusOK, "dashboard.html", newDashboardView(rep, res))
}

// handleLogin applies a password submission to the viewer session.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	before := s.loadSession(r)
	after := s.gate.Submit(before, r.PostForm.Get("password"))
	s.saveSession(w, after)

	applog.FromContext(ctx).WithComponent(applog.ComponentGate).InfoContext(ctx, "Password submitted",
		applog.FieldOperation, applog.OpLogin,
		applog.FieldGateState, after.State.String(),
		applog.FieldSuccess, gate.IsAuthorized(after))

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.renderError(r.Context(), w, http.StatusNotFound, "Page not found", "There is nothing at "+r.URL.Path+".")
}

// buildReport runs load, filter and aggregation for one interaction.
func (s *Server) buildReport(ctx context.Context, query url.Values) (report.Report, dataset.Result, error) {
	if s.data == nil {
		return report.Report{}, dataset.Result{}, errNoDataset
	}
	res, err := s.data.Get(ctx)
	if err != nil {
		return report.Report{}, dataset.Result{}, err
	}
	return report.Build(res.Table, ParseSelection(query, res.Table)), res, nil
}

func (s *Server) logDatasetError(ctx context.Context, err error) {
	applog.NewStructuredLogger(applog.FromContext(ctx).WithComponent(applog.ComponentDataset)).
		LogError(ctx, "Dataset load failed", err, applog.OpLoad, nil)
}

// errorMessage returns text that is safe to show a viewer.
func errorMessage(err error) string {
	var schemaErr *core.SchemaError
	if errors.As(err, &schemaErr) {
		return schemaErr.Error()
	}
	return "Please try again later."
}

// render executes a template into a buffer first so that a failing template
// never produces a partial page.
func (s *Server) render(ctx context.Context, w http.ResponseWriter, status int, name string, data any) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		applog.FromContext(ctx).WithComponent(applog.ComponentTemplate).ErrorContext(ctx, "Template execution failed",
			"template", name,
			applog.FieldError, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) renderError(ctx context.Context, w http.ResponseWriter, status int, heading, message string) {
	s.render(ctx, w, status, "error.html", errorView{
		Title:   DashboardTitle,
		Heading:   heading,
		Message:   message,
		RequestID: trace.GetRequestID(ctx),
	})
}
