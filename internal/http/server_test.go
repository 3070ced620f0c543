package http

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"travelspend/internal/core"
	"travelspend/internal/dataset"
	"travelspend/internal/dataset/memory"
	applog "travelspend/internal/log"
	"travelspend/internal/middleware/trace"
)

type stubDataset struct {
	res   dataset.Result
	err   error
	calls atomic.Int32
}

func (s *stubDataset) Get(context.Context) (dataset.Result, error) {
	s.calls.Add(1)
	return s.res, s.err
}

func (s *stubDataset) Status() (dataset.Result, bool, error) {
	if s.err != nil {
		return dataset.Result{}, false, s.err
	}
	return s.res, s.calls.Load() > 0, nil
}

func sampleDataset() *stubDataset {
	return &stubDataset{res: dataset.Result{Table: memory.Fallback(), Source: "memory", LoadedAt: time.Now()}}
}

func newTestServer(t *testing.T, data Dataset) *Server {
	t.Helper()
	logger := applog.New(applog.Config{Output: io.Discard})
	srv := NewServer(":0", Options{Dataset: data, Logger: logger})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	if srv.templates == nil {
		t.Fatal("templates not parsed")
	}
	return srv
}

func do(srv *Server, r *http.Request, cookie *http.Cookie) *httptest.ResponseRecorder {
	if cookie != nil {
		r.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, r)
	return rr
}

func login(t *testing.T, srv *Server, cookie *http.Cookie, password string) *http.Cookie {
	t.Helper()
	form := url.Values{"password": {password}}
	r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := do(srv, r, cookie)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/" {
		t.Fatalf("login: status=%d location=%q", rr.Code, rr.Header().Get("Location"))
	}
	for _, c := range rr.Result().Cookies() {
		if c.Name == SessionCookieName {
			if !c.HttpOnly || c.SameSite != http.SameSiteLaxMode {
				t.Fatalf("cookie flags: %+v", c)
			}
			return &http.Cookie{Name: c.Name, Value: c.Value}
		}
	}
	t.Fatal("login did not set the session cookie")
	return nil
}

func TestGateFlow(t *testing.T) {
	data := sampleDataset()
	srv := newTestServer(t, data)

	rr := do(srv, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Enter password") {
		t.Fatalf("first visit: status=%d body=%s", rr.Code, rr.Body.String())
	}
	if strings.Contains(rr.Body.String(), "Total Spend") {
		t.Fatal("dashboard content rendered before the gate opened")
	}
	if data.calls.Load() != 0 {
		t.Fatal("dataset loaded for an unauthorized viewer")
	}

	cookie := login(t, srv, nil, "wrong")
	rr = do(srv, httptest.NewRequest(http.MethodGet, "/", nil), cookie)
	if !strings.Contains(rr.Body.String(), "Password incorrect") || strings.Contains(rr.Body.String(), "Total Spend") {
		t.Fatalf("after wrong password: %s", rr.Body.String())
	}

	cookie = login(t, srv, cookie, "admin123")
	rr = do(srv, httptest.NewRequest(http.MethodGet, "/", nil), cookie)
	body := rr.Body.String()
	for _, want := range []string{DashboardTitle, "Total Spend", "₹ 405,000", "Active Orgs", "Spend by Status", "Top Unmanaged Spend", "Alpha Corp", "#00CC96", "#EF553B"} {
		want = strings.ReplaceAll(want, "&", "&amp;")
		if !strings.Contains(body, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}
	if rr.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("Cache-Control = %q", rr.Header().Get("Cache-Control"))
	}

	// Granted is terminal for the session.
	cookie = login(t, srv, cookie, "wrong again")
	rr = do(srv, httptest.NewRequest(http.MethodGet, "/", nil), cookie)
	if !strings.Contains(rr.Body.String(), "Total Spend") {
		t.Fatal("granted session lost access after a wrong password")
	}
}

func TestDashboardFilters(t *testing.T) {
	srv := newTestServer(t, sampleDataset())
	cookie := login(t, srv, nil, "admin123")

	rr := do(srv, httptest.NewRequest(http.MethodGet, "/?filtered=1&status=Onboarded&org_type=Enterprise&org_type=SME", nil), cookie)
	body := rr.Body.String()
	if !strings.Contains(body, "₹ 310,000") || !strings.Contains(body, "No unmanaged data.") {
		t.Fatalf("onboarded only: %s", body)
	}
	if strings.Contains(body, "Beta Ltd</td>") {
		t.Fatal("unmanaged row rendered in the table")
	}

	rr = do(srv, httptest.NewRequest(http.MethodGet, "/?filtered=1", nil), cookie)
	if body := rr.Body.String(); !strings.Contains(body, "₹ 0") || strings.Contains(body, "Alpha Corp</td>") {
		t.Fatalf("empty selection: %s", body)
	}
}

func TestAPIReport(t *testing.T) {
	srv := newTestServer(t, sampleDataset())

	rr := do(srv, httptest.NewRequest(http.MethodGet, "/api/report", nil), nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unauthorized status = %d", rr.Code)
	}

	cookie := login(t, srv, nil, "admin123")
	rr = do(srv, httptest.NewRequest(http.MethodGet, "/api/report?filtered=1&status=Unmanaged&status=Bogus&org_type=SME", nil), cookie)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var got struct {
		TotalSpendDisplay string `json:"total_spend_display"`
		ActiveOrgs        int    `json:"active_orgs"`
		TopUnmanaged      []struct {
			Organisation string `json:"organisation"`
		} `json:"top_unmanaged"`
		Selection core.Selection `json:"selection"`
		Rows      []struct {
			Spend string `json:"spend"`
		} `json:"rows"`
		Source string `json:"source"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.TotalSpendDisplay != "₹ 95,000" || got.ActiveOrgs != 2 || got.Source != "memory" {
		t.Fatalf("report = %+v", got)
	}
	if len(got.TopUnmanaged) != 2 || got.TopUnmanaged[0].Organisation != "Delta Sol" {
		t.Fatalf("top unmanaged = %+v", got.TopUnmanaged)
	}
	if len(got.Selection.Status) != 1 || got.Selection.Status[0] != "Unmanaged" {
		t.Fatalf("unknown values must be ignored, selection = %+v", got.Selection)
	}
	if len(got.Rows) != 2 || got.Rows[0].Spend != "45000" {
		t.Fatalf("rows = %+v", got.Rows)
	}
}

func TestExportCSV(t *testing.T) {
	srv := newTestServer(t, sampleDataset())

	rr := do(srv, httptest.NewRequest(http.MethodGet, "/export.csv", nil), nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unauthorized status = %d", rr.Code)
	}

	cookie := login(t, srv, nil, "admin123")
	rr = do(srv, httptest.NewRequest(http.MethodGet, "/export.csv?filtered=1&status=Onboarded&org_type=Enterprise", nil), cookie)
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("Content-Type = %q", ct)
	}
	records, err := csv.NewReader(rr.Body).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{
		core.Columns,
		{"Alpha Corp", "June", "150000", "Onboarded", "Enterprise"},
		{"Gamma Inc", "July", "160000", "Onboarded", "Enterprise"},
	}
	if len(records) != len(want) {
		t.Fatalf("records = %v", records)
	}
	for i := range want {
		if strings.Join(records[i], "|") != strings.Join(want[i], "|") {
			t.Errorf("row %d = %v, want %v", i, records[i], want[i])
		}
	}
}

func TestSchemaErrorIsFatal(t *testing.T) {
	data := &stubDataset{err: &core.SchemaError{Missing: []string{core.ColSpend}}}
	srv := newTestServer(t, data)
	cookie := login(t, srv, nil, "admin123")

	rr := do(srv, httptest.NewRequest(http.MethodGet, "/", nil), cookie)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "missing columns Spend") || strings.Contains(body, "Total Spend") {
		t.Fatalf("body = %s", body)
	}

	rr = do(srv, httptest.NewRequest(http.MethodGet, "/readyz", nil), nil)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz status = %d", rr.Code)
	}
}

func TestOtherDatasetErrorsHideDetails(t *testing.T) {
	data := &stubDataset{err: errors.New("dial tcp 10.0.0.5:5432: connection refused")}
	srv := newTestServer(t, data)
	cookie := login(t, srv, nil, "admin123")

	rr := do(srv, httptest.NewRequest(http.MethodGet, "/api/report", nil), cookie)
	if rr.Code != http.StatusInternalServerError || strings.Contains(rr.Body.String(), "10.0.0.5") {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}

	rr = do(srv, httptest.NewRequest(http.MethodGet, "/", nil), cookie)
	id := rr.Header().Get(trace.HeaderRequestID)
	if rr.Code != http.StatusInternalServerError || id == "" || !strings.Contains(rr.Body.String(), id) {
		t.Fatalf("error page should carry request id %q: %d %s", id, rr.Code, rr.Body.String())
	}
	if strings.Contains(rr.Body.String(), "10.0.0.5") {
		t.Fatalf("error page leaks details: %s", rr.Body.String())
	}
}

func TestHealthReadyAndStatic(t *testing.T) {
	data := sampleDataset()
	srv := newTestServer(t, data)

	rr := do(srv, httptest.NewRequest(http.MethodGet, "/healthz", nil), nil)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"status":"ok"`) {
		t.Fatalf("healthz: %d %s", rr.Code, rr.Body.String())
	}

	rr = do(srv, httptest.NewRequest(http.MethodGet, "/readyz", nil), nil)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"state":"pending"`) {
		t.Fatalf("readyz before load: %d %s", rr.Code, rr.Body.String())
	}

	cookie := login(t, srv, nil, "admin123")
	do(srv, httptest.NewRequest(http.MethodGet, "/", nil), cookie)
	rr = do(srv, httptest.NewRequest(http.MethodGet, "/readyz", nil), nil)
	if !strings.Contains(rr.Body.String(), `"state":"loaded"`) || !strings.Contains(rr.Body.String(), `"rows":4`) {
		t.Fatalf("readyz after load: %s", rr.Body.String())
	}

	rr = do(srv, httptest.NewRequest(http.MethodGet, "/static/style.css", nil), nil)
	if rr.Code != http.StatusOK || rr.Header().Get("Cache-Control") != "public, max-age=3600" {
		t.Fatalf("static: %d %q", rr.Code, rr.Header().Get("Cache-Control"))
	}

	rr = do(srv, httptest.NewRequest(http.MethodGet, "/nope", nil), nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("unknown path status = %d", rr.Code)
	}
	if rr.Header().Get("X-Request-ID") == "" || !strings.Contains(rr.Header().Get("Content-Security-Policy"), "script-src 'self'") {
		t.Fatalf("middleware headers missing: %v", rr.Header())
	}
}

func TestWithLoaderAndCache(t *testing.T) {
	src := memory.NewSample()
	loader := dataset.NewLoader(src, memory.Fallback, slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv := newTestServer(t, dataset.NewCache(loader.Load))
	cookie := login(t, srv, nil, "admin123")

	rr := do(srv, httptest.NewRequest(http.MethodGet, "/?filtered=1&status=Unmanaged&org_type=SME", nil), cookie)
	body := rr.Body.String()
	if !strings.Contains(body, "₹ 95,000") || !strings.Contains(body, "Beta Ltd") || strings.Contains(body, "No unmanaged data.") {
		t.Fatalf("body = %s", body)
	}
}
