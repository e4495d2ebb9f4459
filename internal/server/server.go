// Package server exposes the display stream and engine status over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"PriceBoard/internal/dashboard"
	"PriceBoard/internal/display"
	"PriceBoard/internal/logger"
)

// StatusSource reports engine progress.
type StatusSource interface {
	Status() dashboard.Status
}

// Stream is the live display feed.
type Stream interface {
	ServeWS(w http.ResponseWriter, r *http.Request)
	State() display.State
	Clients() int
}

// Handler serves the display routes.
type Handler struct {
	status StatusSource
	stream Stream
}

func NewHandler(status StatusSource, stream Stream) *Handler {
	return &Handler{status: status, stream: stream}
}

// RegisterRoutes binds the handler to r.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", h.Health)
	r.GET("/ws", h.WS)
	api := r.Group("/api")
	{
		api.GET("/state", h.State)
	}
}

// Health reports engine status. It answers 503 once the engine has stopped.
func (h *Handler) Health(c *gin.Context) {
	st := h.status.Status()
	code := http.StatusOK
	if !st.Running {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"engine":  st,
		"clients": h.stream.Clients(),
	})
}

// State returns the latest content of every view.
func (h *Handler) State(c *gin.Context) {
	c.JSON(http.StatusOK, h.stream.State())
}

func (h *Handler) WS(c *gin.Context) {
	h.stream.ServeWS(c.Writer, c.Request)
}

// Server is the HTTP listener for the display routes.
type Server struct {
	srv *http.Server
	log *zap.Logger
}

// New builds a server on addr.
func New(addr string, h *Handler, log *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	h.RegisterRoutes(r)
	return &Server{
		srv: &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second},
		log: logger.OrNop(log),
	}
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Start listens in the background. Listen errors other than a clean
// shutdown are logged.
func (s *Server) Start() {
	go func() {
		s.log.Info("HTTP server starting", zap.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("HTTP server failed", zap.Error(err))
		}
	}()
}

// Shutdown stops accepting connections and waits for handlers to return.
func (s *Server) Shutdown(ctx context.Context) error {
	return errors.Wrap(s.srv.Shutdown(ctx), "shutdown http server")
}
