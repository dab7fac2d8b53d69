// Package server exposes the shell host over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/jonwraymond/wxshell/auth"
	"github.com/jonwraymond/wxshell/bootstrap"
	"github.com/jonwraymond/wxshell/bridge"
	"github.com/jonwraymond/wxshell/health"
	"github.com/jonwraymond/wxshell/intercept"
	"github.com/jonwraymond/wxshell/observe"
	"github.com/jonwraymond/wxshell/store"
)

// ClientIDHeader names the originating page on /fetch.
const ClientIDHeader = "X-Client-ID"

// DefaultMaxInflight bounds concurrent /fetch requests.
const DefaultMaxInflight = 64

var (
	// ErrMissingDependency indicates Deps is incomplete.
	ErrMissingDependency = errors.New("server: missing dependency")
)

// Deps are the collaborators the HTTP host serves.
type Deps struct {
	Worker *intercept.Worker
	Pages  *bridge.Registry
	Store  store.Store
	Glue   *bridge.Glue
	Tokens *auth.Tokens
	Health *health.Aggregator

	// Logger defaults to observe.NopLogger.
	Logger observe.Logger

	// Metrics, when set, is served on /metrics.
	Metrics http.Handler

	// MaxInflight bounds concurrent /fetch requests.
	MaxInflight int

	// AttachTimeout closes pages that never attach a socket.
	AttachTimeout time.Duration
}

// Server routes bootstrap, bridge, fetch, port and health requests.
type Server struct {
	ctx    context.Context
	deps   Deps
	hub    *bridge.Hub
	router chi.Router
}

// New creates a server. Page contexts live until ctx ends, their socket
// closes, or they never attach within AttachTimeout.
func New(ctx context.Context, d Deps) (*Server, error) {
	if d.Worker == nil || d.Pages == nil || d.Store == nil || d.Glue == nil || d.Tokens == nil {
		return nil, ErrMissingDependency
	}
	if d.Logger == nil {
		d.Logger = observe.NopLogger()
	}
	if d.Health == nil {
		d.Health = health.NewAggregator(0)
	}
	if d.MaxInflight <= 0 {
		d.MaxInflight = DefaultMaxInflight
	}
	if d.AttachTimeout <= 0 {
		d.AttachTimeout = auth.DefaultTokenTTL
	}

	s := &Server{
		ctx:  ctx,
		deps: d,
		hub:  bridge.NewHub(d.Pages, d.Tokens.Authorize, d.Logger),
	}
	s.router = s.routes()
	return s, nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)

	health.Mount(r, s.deps.Health)
	if s.deps.Metrics != nil {
		r.Handle("/metrics", s.deps.Metrics)
	}

	r.Get("/bootstrap", s.handleBootstrap)
	r.Get("/bridge", s.handleBridge)
	r.With(middleware.Throttle(s.deps.MaxInflight)).Get("/fetch", s.handleFetch)

	r.Put("/theme", s.handleTheme(s.deps.Glue.ChangeTheme))
	r.Put("/theme/custom", s.handleTheme(s.deps.Glue.SaveCustomTheme))
	r.Delete("/address", s.handleRemoveAddress)
	r.Post("/location", s.handleLocation)
	r.Post("/online", s.handleOnline)
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.deps.Logger.Debug(r.Context(), "http request",
			observe.F("method", r.Method),
			observe.F("path", r.URL.Path),
			observe.F("status", ww.Status()),
			observe.F("request_id", middleware.GetReqID(r.Context())),
			observe.F("duration_ms", float64(time.Since(start).Milliseconds())),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// BootstrapResponse is returned by GET /bootstrap.
type BootstrapResponse struct {
	ClientID  string            `json:"clientId"`
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expiresAt"`
	Payload   bootstrap.Payload `json:"payload"`
}

func (s *Server) handleBootstrap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	opts := []bootstrap.Option{
		bootstrap.WithLocale(bootstrap.DetectLocale(r.Header.Get("Accept-Language"))),
		bootstrap.WithLogger(s.deps.Logger),
	}
	if q := r.URL.Query(); q.Has("permission") {
		opts = append(opts, bootstrap.WithPermissions(bootstrap.StaticPermission(q.Get("permission"))))
	}
	payload := bootstrap.NewResolver(s.deps.Store, opts...).Resolve(ctx)

	id := uuid.NewString()
	token, exp, err := s.deps.Tokens.Issue(id)
	if err != nil {
		s.deps.Logger.Error(ctx, "issue bridge token failed", observe.F("error", err))
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	if err := s.openPage(id); err != nil {
		s.deps.Logger.Error(ctx, "open page failed", observe.F("error", err))
		writeError(w, http.StatusInternalServerError, "failed to open page")
		return
	}

	writeJSON(w, http.StatusOK, BootstrapResponse{
		ClientID:  id,
		Token:     token,
		ExpiresAt: exp,
		Payload:   payload,
	})
}

func (s *Server) openPage(id string) error {
	page, err := bridge.NewPage(id, bridge.NewPersister(s.deps.Store), bridge.WithPageLogger(s.deps.Logger))
	if err != nil {
		return err
	}
	if err := s.deps.Pages.Register(page); err != nil {
		return err
	}
	go func() {
		_ = page.Run(s.ctx)
		s.deps.Pages.Unregister(id)
	}()
	time.AfterFunc(s.deps.AttachTimeout, func() {
		if page.Watchers() == 0 {
			page.Close()
		}
	})
	return nil
}

// handleBridge attaches the page socket. The page context ends with its
// last socket.
func (s *Server) handleBridge(w http.ResponseWriter, r *http.Request) {
	s.hub.ServeHTTP(w, r)

	id, err := s.deps.Tokens.Authorize(r)
	if err != nil {
		return
	}
	if page, ok := s.deps.Pages.Page(id); ok && page.Watchers() == 0 {
		page.Close()
	}
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	target, err := url.Parse(r.URL.Query().Get("url"))
	if err != nil || !target.IsAbs() || (target.Scheme != "http" && target.Scheme != "https") {
		writeError(w, http.StatusBadRequest, "query parameter 'url' must be an absolute http(s) URL")
		return
	}

	ctx := r.Context()
	if id := r.Header.Get(ClientIDHeader); id != "" {
		ctx = intercept.WithClientID(ctx, id)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if accept := r.Header.Get("Accept"); accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := s.deps.Worker.Fetch(ctx, req)
	if err != nil {
		writeError(w, http.StatusBadGateway, "upstream request failed")
		return
	}
	defer func() { _ = resp.Body.Close() }()

	for k, vs := range resp.Header {
		if k == "Content-Length" {
			continue
		}
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(resp.StatusCode)
	_, _ = io.Copy(w, resp.Body)
}

func (s *Server) handleTheme(save func(context.Context, bridge.Theme) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var t bridge.Theme
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<10)).Decode(&t); err != nil {
			writeError(w, http.StatusBadRequest, "body must be [[r,g,b],[r,g,b]]")
			return
		}
		if err := save(r.Context(), t); err != nil {
			s.deps.Logger.Warn(r.Context(), "persist theme failed", observe.F("error", err))
			writeError(w, http.StatusInternalServerError, "failed to save theme")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleRemoveAddress(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Glue.RemoveAddress(r.Context()); err != nil {
		s.deps.Logger.Warn(r.Context(), "remove address failed", observe.F("error", err))
		writeError(w, http.StatusInternalServerError, "failed to remove address")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// OnlineRequest is the body of POST /online.
type OnlineRequest struct {
	Online *bool `json:"online"`
}

// handleOnline lets the embedder report connectivity changes to wired UIs.
func (s *Server) handleOnline(w http.ResponseWriter, r *http.Request) {
	var req OnlineRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<10)).Decode(&req); err != nil || req.Online == nil {
		writeError(w, http.StatusBadRequest, `body must be {"online":true|false}`)
		return
	}
	s.deps.Glue.SetOnline(*req.Online)
	w.WriteHeader(http.StatusNoContent)
}

// LocationResponse is returned by POST /location.
type LocationResponse struct {
	Status   string           `json:"status"`
	Position *bridge.Position `json:"position,omitempty"`
	Code     int              `json:"code,omitempty"`
}

func (s *Server) handleLocation(w http.ResponseWriter, r *http.Request) {
	out := s.deps.Glue.RequestLocation(r.Context())
	switch out.Status {
	case bridge.LocationResolved:
		writeJSON(w, http.StatusOK, LocationResponse{Status: "resolved", Position: &out.Position})
	case bridge.LocationFailed:
		writeJSON(w, http.StatusOK, LocationResponse{Status: "error", Code: out.Code})
	default:
		writeJSON(w, http.StatusOK, LocationResponse{Status: "unavailable"})
	}
}
