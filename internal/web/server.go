package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/vitos/liquidation_heatmap/internal/usecase"
)

type Server struct {
	router   *http.ServeMux
	server   *http.Server
	heatmaps *usecase.HeatmapService
	prices   *usecase.PriceService
	auth     *usecase.AuthService
	hub      *Hub
	logger   *zap.Logger
	started  time.Time
}

func NewServer(
	port int,
	heatmaps *usecase.HeatmapService,
	prices *usecase.PriceService,
	auth *usecase.AuthService,
	hub *Hub,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		router:   http.NewServeMux(),
		heatmaps: heatmaps,
		prices:   prices,
		auth:     auth,
		hub:      hub,
		logger:   logger,
		started:  time.Now(),
	}
	s.routes()
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() {
	// Dashboard
	s.router.HandleFunc("GET /{$}", s.handleDashboard)

	// Heatmap data
	s.router.HandleFunc("GET /api/heatmap", s.handleHeatmap)
	s.router.HandleFunc("GET /api/summary", s.handleSummary)
	s.router.HandleFunc("GET /api/price", s.handlePrice)
	s.router.HandleFunc("GET /api/insights", s.handleInsights)

	// Accounts
	s.router.HandleFunc("POST /api/auth/signup", s.handleSignup)
	s.router.HandleFunc("POST /api/auth/login", s.handleLogin)
	s.router.HandleFunc("POST /api/auth/logout", s.handleLogout)
	s.router.HandleFunc("GET /api/me", s.handleMe)
	s.router.HandleFunc("PUT /api/me/favorite", s.handleSetFavorite)

	// Live stream
	s.router.HandleFunc("GET /ws", s.handleStream)

	// Status
	s.router.HandleFunc("GET /status", s.handleStatus)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.logger.Info("Starting web server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.hub != nil {
		s.hub.CloseAll()
	}
	return s.server.Shutdown(ctx)
}
