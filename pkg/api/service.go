package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"path"
	"time"

	"mercator-hq/dashgate/pkg/builder"
	"mercator-hq/dashgate/pkg/dispatch"
	"mercator-hq/dashgate/pkg/store"
	"mercator-hq/dashgate/pkg/telemetry/health"
)

// CacheStats exposes the dispatcher's instance cache. *dispatch.InstanceCache
// implements it.
type CacheStats interface {
	Snapshot() []dispatch.InstanceInfo
	Retention() time.Duration
}

// AppInfo describes a stored definition without its payload.
type AppInfo struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Encoding  string    `json:"encoding"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Service is the fixed handler mounted under the reserved "api" segment. It
// only serves reads.
type Service struct {
	store   store.Reader
	cache   CacheStats
	metrics http.Handler
	health  *health.Checker
	version health.VersionInfo
	logger  *slog.Logger
	mux     *http.ServeMux
}

// Option configures a Service.
type Option func(*Service)

// WithCache exposes cache contents at /cache.
func WithCache(c CacheStats) Option {
	return func(s *Service) { s.cache = c }
}

// WithMetricsHandler serves h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Service) { s.metrics = h }
}

// WithHealthChecker replaces the default checker. The store check is
// registered on it either way.
func WithHealthChecker(c *health.Checker) Option {
	return func(s *Service) {
		if c != nil {
			s.health = c
		}
	}
}

// WithVersion sets the build information reported at /version.
func WithVersion(version, commit, buildTime string) Option {
	return func(s *Service) {
		s.version = health.VersionInfo{Version: version, Commit: commit, BuildTime: buildTime}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates the API service over reader.
func New(reader store.Reader, opts ...Option) *Service {
	s := &Service{
		store:   reader,
		health:  health.New(health.DefaultCheckTimeout),
		version: health.VersionInfo{Version: "dev"},
		logger:  slog.Default().With("component", "api"),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.health.RegisterCheck("store", s.checkStore)
	s.routes()
	return s
}

func (s *Service) routes() {
	mux := http.NewServeMux()

	mux.Handle("GET /health", s.health.LivenessHandler())
	mux.Handle("GET /ready", s.health.ReadinessHandler())
	mux.Handle("GET /version", health.VersionHandler(s.version.Version, s.version.Commit, s.version.BuildTime))
	mux.HandleFunc("GET /apps", s.listApps)
	mux.HandleFunc("GET /apps/{id}", s.getApp)
	mux.HandleFunc("GET /apps/{id}/layout", s.getLayout)
	mux.HandleFunc("GET /cache", s.getCache)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics)
	}

	s.mux = mux
}

// ServeHTTP implements http.Handler. The path seen here has the "api"
// segment already stripped, so it is cleaned before routing: a redirect from
// the mux would point outside the "api" prefix.
func (s *Service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, cleanRequest(r))
}

func cleanRequest(r *http.Request) *http.Request {
	p := r.URL.Path
	if p == "" {
		p = "/"
	}
	cleaned := path.Clean(p)
	if cleaned == r.URL.Path {
		return r
	}

	cr := new(http.Request)
	*cr = *r
	u := *r.URL
	u.Path = cleaned
	u.RawPath = ""
	cr.URL = &u
	return cr
}

func (s *Service) checkStore(ctx context.Context) error {
	_, err := s.store.ListIDs(ctx)
	return err
}

func (s *Service) listApps(w http.ResponseWriter, r *http.Request) {
	ids, err := s.store.ListIDs(r.Context())
	if err != nil {
		s.storeFailure(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"apps": ids})
}

func (s *Service) getApp(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.find(w, r)
	if !ok {
		return
	}

	encoding := rec.Encoding
	if encoding == "" {
		encoding = store.EncodingIdentity
	}
	writeJSON(w, r, http.StatusOK, AppInfo{
		ID:        rec.ID,
		Title:     rec.Title,
		Encoding:  encoding,
		UpdatedAt: rec.UpdatedAt,
	})
}

func (s *Service) getLayout(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.find(w, r)
	if !ok {
		return
	}

	layout, err := builder.ExtractLayout(rec)
	if err != nil {
		s.logger.WarnContext(r.Context(), "cannot extract layout", "tenant", rec.ID, "error", err)
		writeError(w, r, http.StatusUnprocessableEntity, "definition cannot be decoded")
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"id": rec.ID, "layout": layout})
}

func (s *Service) getCache(w http.ResponseWriter, r *http.Request) {
	if s.cache == nil {
		writeError(w, r, http.StatusNotFound, "cache statistics unavailable")
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"retention_seconds": s.cache.Retention().Seconds(),
		"instances":         s.cache.Snapshot(),
	})
}

// find loads the record named by the {id} path value. It writes the error
// response itself and reports whether the caller should continue.
func (s *Service) find(w http.ResponseWriter, r *http.Request) (*store.Record, bool) {
	id := r.PathValue("id")

	rec, err := s.store.FindDefinition(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) || (err == nil && !rec.HasDefinition()) {
		writeError(w, r, http.StatusNotFound, "app not found")
		return nil, false
	}
	if err != nil {
		s.storeFailure(w, r, err)
		return nil, false
	}
	return rec, true
}

func (s *Service) storeFailure(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.ErrorContext(r.Context(), "store request failed", "path", r.URL.Path, "error", err)
	writeError(w, r, http.StatusInternalServerError, "store unavailable")
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	writeJSON(w, r, code, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, r *http.Request, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if r.Method != http.MethodHead {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		_ = enc.Encode(v)
	}
}
