package http

import (
	"encoding/csv"
	"net/http"

	"travelspend/internal/core"
	"travelspend/internal/gate"
	applog "travelspend/internal/log"
)

const exportFilename = "travel_spend.csv"

// handleAPIReport serves the dashboard render description as JSON.
func (s *Server) handleAPIReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !gate.IsAuthorized(s.loadSession(r)) {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	rep, res, err := s.buildReport(ctx, r.URL.Query())
	if err != nil {
		s.logDatasetError(ctx, err)
		writeJSONError(w, http.StatusInternalServerError, errorMessage(err))
		return
	}
	if err := writeJSON(w, http.StatusOK, newReportResponse(rep, res)); err != nil {
		applog.FromContext(ctx).ErrorContext(ctx, "Failed to encode report", applog.FieldError, err)
	}
}

// handleExportCSV downloads the filtered rows in dataset column order.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !gate.IsAuthorized(s.loadSession(r)) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	rep, _, err := s.buildReport(ctx, r.URL.Query())
	if err != nil {
		s.logDatasetError(ctx, err)
		http.Error(w, errorMessage(err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportFilename+`"`)
	cw := csv.NewWriter(w)
	_ = cw.Write(core.Columns)
	for _, rec := range rep.Rows {
		_ = cw.Write(rec.Cells())
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		applog.FromContext(ctx).ErrorContext(ctx, "CSV export failed",
			applog.FieldOperation, applog.OpExport,
			applog.FieldError, err)
		return
	}
	applog.FromContext(ctx).DebugContext(ctx, "CSV export written",
		applog.FieldOperation, applog.OpExport,
		applog.FieldRows, len(rep.Rows))
}
