package http

import (
	"net/http"
	"time"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
	})
}

type datasetCheck struct {
	State    string `json:"state"`
	Source   string `json:"source,omitempty"`
	Rows     int    `json:"rows"`
	Fallback bool   `json:"fallback"`
	LoadedAt string `json:"loaded_at,omitempty"`
	Error    string `json:"error,omitempty"`
}

// handleReady reports template and dataset state. The dataset is loaded on
// first use, so "pending" counts as ready; only a failed last load does not.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := "ready"
	httpStatus := http.StatusOK
	checks := map[string]any{}

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	ds := datasetCheck{State: "not_configured"}
	if s.data != nil {
		res, loaded, lastErr := s.data.Status()
		switch {
		case loaded:
			ds = datasetCheck{
				State:    "loaded",
				Source:   res.Source,
				Rows:     res.Table.Len(),
				Fallback: res.Fallback,
				LoadedAt: res.LoadedAt.Format(time.RFC3339),
			}
		case lastErr != nil:
			ds = datasetCheck{State: "failed", Error: lastErr.Error()}
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
		default:
			ds = datasetCheck{State: "pending"}
		}
	} else {
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	}
	checks["dataset"] = ds

	tm := s.tracer.GetMetrics()
	dm := s.detector.GetMetrics()
	_ = writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
		"sessions":  s.sessions.Size(),
		"requests": map[string]int64{
			"total":     tm.TotalRequests,
			"in_flight": tm.InFlight,
		},
		"security": map[string]int64{
			"suspicious_requests": dm.SuspiciousRequests,
			"spoofed_forwarding":  dm.SpoofedForwarding,
		},
	})
}
