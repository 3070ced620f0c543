package http

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"travelspend/internal/core"
	"travelspend/internal/gate"
)

// SessionCookieName names the cookie holding the viewer session id.
const SessionCookieName = "travelspend_session"

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// loadSession returns the viewer session named by the request cookie, or a
// fresh unset session.
func (s *Server) loadSession(r *http.Request) gate.Session {
	id := ""
	if c, err := r.Cookie(SessionCookieName); err == nil {
		id = sanitizeInput(c.Value)
	}
	return s.sessions.Load(id)
}

// saveSession stores the session and (re)issues its cookie. The cookie has no
// expiry, so it lives as long as the browser session.
func (s *Server) saveSession(w http.ResponseWriter, sess gate.Session) {
	s.sessions.Save(sess)
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	_ = writeJSON(w, status, map[string]string{"error": msg})
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"spend":  core.FormatSpend,
		"amount": core.FormatAmount,
		"pct": func(v float64) string {
			return fmt.Sprintf("%.1f%%", v)
		},
		"coord": func(v float64) string {
			return fmt.Sprintf("%.2f", v)
		},
	}
}
