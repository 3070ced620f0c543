package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"travelspend/internal/cache"
	"travelspend/internal/dataset"
	"travelspend/internal/gate"
	applog "travelspend/internal/log"
	"travelspend/internal/middleware/security"
	"travelspend/internal/middleware/trace"
	appweb "travelspend/web"
)

// DashboardTitle is the page heading of every rendered page.
const DashboardTitle = "Travel Spend & Onboarding Intelligence"

const (
	staticMaxAge           = 3600
	defaultCleanupInterval = 10 * time.Minute
)

// Dataset is the memoized dataset the handlers read. *dataset.Cache
// implements it.
type Dataset interface {
	Get(ctx context.Context) (dataset.Result, error)
	Status() (dataset.Result, bool, error)
}

// Options carries the server dependencies.
type Options struct {
	Gate     *gate.Gate
	Sessions *gate.Store
	Dataset  Dataset
	Logger   *applog.Logger
	Detector *security.Detector

	// SecureCookie marks the session cookie Secure. Enable it behind TLS.
	SecureCookie    bool
	CleanupInterval time.Duration
}

type Server struct {
	http.Server
	templates *template.Template

	gate     *gate.Gate
	sessions *gate.Store
	data     Dataset
	logger   *applog.Logger
	detector *security.Detector
	tracer   *trace.Middleware
	caches   *cache.Manager

	secureCookie bool
	startedAt    time.Time
	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	detector := opts.Detector
	if detector == nil {
		detector = security.NewDetector()
	}
	sessions := opts.Sessions
	if sessions == nil {
		sessions = gate.NewStore(10000, 12*time.Hour)
	}
	g := opts.Gate
	if g == nil {
		g = gate.New(nil)
	}

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
		},
		gate:         g,
		sessions:     sessions,
		data:         opts.Dataset,
		logger:       logger.WithComponent(applog.ComponentHTTP),
		detector:     detector,
		tracer:       trace.NewMiddleware(logger, detector.ExtractClientIP),
		caches:       cache.NewManager(logger.WithComponent(applog.ComponentCache).Slog()),
		secureCookie: opts.SecureCookie,
		startedAt:    time.Now(),
	}

	interval := opts.CleanupInterval
	if interval <= 0 {
		interval = defaultCleanupInterval
	}
	s.caches.Register("sessions", sessions)
	s.caches.StartCleanup(interval)

	// Parse embedded templates at startup.
	t, err := template.New("").Funcs(templateFuncs()).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Error("Failed parsing templates", applog.FieldError, err)
	} else {
		s.templates = t
	}

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(staticMaxAge)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	mux.Handle("GET /{$}", security.NoStore(http.HandlerFunc(s.handleIndex)))
	mux.Handle("POST /login", security.NoStore(http.HandlerFunc(s.handleLogin)))
	mux.Handle("GET /api/report", security.NoStore(http.HandlerFunc(s.handleAPIReport)))
	mux.Handle("GET /export.csv", security.NoStore(http.HandlerFunc(s.handleExportCSV)))
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("/", s.handleNotFound)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	s.Handler = s.tracer.Middleware(detector.Middleware(headers.Middleware(mux)))
	return s
}

// Shutdown stops the session sweeper and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
