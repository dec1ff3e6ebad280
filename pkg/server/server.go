package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vango-dev/mvu/pkg/protocol"
	"github.com/vango-dev/mvu/pkg/render"
	"github.com/vango-dev/mvu/pkg/runtime"
)

// Paths served by the server.
const (
	SocketPath = "/ws"
	HealthPath = "/healthz"
)

// Factory creates an application instance bound to doc. doc is nil for
// instances that are only prerendered.
type Factory func(doc runtime.Document, opts ...runtime.Option) (runtime.Instance, error)

// Server is the HTTP/WebSocket host for one application.
type Server struct {
	factory  Factory
	config   *Config
	logger   *slog.Logger
	upgrader websocket.Upgrader
	metrics  *metrics
	router   chi.Router
	renderer *render.Renderer

	mu       sync.Mutex
	sessions map[*session]struct{}
	nextID   atomic.Uint64

	httpServer *http.Server
}

// New creates a server for the application built by factory.
func New(factory Factory, config *Config) *Server {
	config = config.withDefaults()
	s := &Server{
		factory: factory,
		config:  config,
		logger:  config.Logger.With("component", "server"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     config.CheckOrigin,
		},
		metrics:  newMetrics(config.Registerer),
		renderer: render.NewRenderer(render.RendererConfig{}),
		sessions: make(map[*session]struct{}),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", s.servePage)
	r.Get(SocketPath, s.HandleWebSocket)
	r.Method(http.MethodGet, render.DefaultClientScript, thinClient)
	r.Method(http.MethodHead, render.DefaultClientScript, thinClient)
	r.Get(HealthPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	if s.config.Gatherer != nil {
		r.Handle(s.config.MetricsPath, promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Handler returns the server's http.Handler for mounting in other routers.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// RenderPage prerenders a fresh instance and returns the complete page.
func (s *Server) RenderPage() ([]byte, error) {
	inst, err := s.factory(nil, s.config.RuntimeOptions...)
	if err != nil {
		return nil, err
	}
	defer inst.Close()

	markup, err := inst.Prerender()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	err = s.renderer.RenderPage(&buf, render.PageData{
		Markup:     markup,
		Title:      s.config.Title,
		SocketPath: SocketPath,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Server) servePage(w http.ResponseWriter, r *http.Request) {
	page, err := s.RenderPage()
	if err != nil {
		s.logger.Error("page render failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(page)
}

// HandleWebSocket upgrades the connection and runs a session on it until it
// closes.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		s.metrics.wsError("upgrade")
		return
	}

	doc := newSocketDocument(conn, s.config.WriteTimeout, s.metrics)
	id := fmt.Sprintf("s%d", s.nextID.Add(1))
	logger := s.logger.With("session_id", id)

	opts := append([]runtime.Option{runtime.WithLogger(logger)}, s.config.RuntimeOptions...)
	inst, err := s.factory(doc, opts...)
	if err != nil {
		logger.Error("instance creation failed", "error", err)
		_ = doc.sendError(protocol.NewFatalError(0, protocol.ErrServerError, "application unavailable"))
		doc.close(websocket.CloseInternalServerErr, "")
		return
	}

	sess := &session{
		id:      id,
		conn:    conn,
		doc:     doc,
		inst:    inst,
		config:  s.config,
		metrics: s.metrics,
		logger:  logger,
		done:    make(chan struct{}),
	}
	s.track(sess)
	defer s.untrack(sess)

	logger.Info("session started", "remote", r.RemoteAddr)
	sess.run(r.Context())
}

func (s *Server) track(sess *session) {
	s.mu.Lock()
	s.sessions[sess] = struct{}{}
	s.mu.Unlock()
	s.metrics.sessionOpened()
}

func (s *Server) untrack(sess *session) {
	s.mu.Lock()
	delete(s.sessions, sess)
	s.mu.Unlock()
	s.metrics.sessionClosed()
}

// ActiveSessions returns the number of connected sessions.
func (s *Server) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Run listens on the configured address and serves until ctx is canceled,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is canceled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: s.config.ReadTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", ln.Addr().String())
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// Shutdown closes every session and gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.mu.Lock()
	open := make([]*session, 0, len(s.sessions))
	for sess := range s.sessions {
		open = append(open, sess)
	}
	s.mu.Unlock()
	for _, sess := range open {
		sess.close(websocket.CloseGoingAway, "server shutdown")
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}
	s.logger.Info("server shutdown complete")
	return nil
}

// Config returns the effective server configuration.
func (s *Server) Config() *Config {
	return s.config
}
