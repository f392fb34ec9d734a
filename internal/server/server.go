package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"wallet-flow-backend/internal/tracker"
	"wallet-flow-backend/internal/utils"
)

// Config holds HTTP server settings
type Config struct {
	Port            string        `toml:"port"`
	ReadTimeout     time.Duration `toml:"read_timeout"`
	WriteTimeout    time.Duration `toml:"write_timeout"`
	RefreshInterval time.Duration `toml:"refresh_interval"`
	DefaultWindow   time.Duration `toml:"default_window"`
	MaxWindow       time.Duration `toml:"max_window"`
	EnableDemo      bool          `toml:"enable_demo"`
}

// DefaultConfig returns the server defaults
func DefaultConfig() Config {
	return Config{
		Port:            ":8080",
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    90 * time.Second,
		RefreshInterval: 5 * time.Second,
		DefaultWindow:   time.Hour,
		MaxWindow:       15 * 24 * time.Hour,
		EnableDemo:      true,
	}
}

// Server serves the REST API and the live panel WebSocket
type Server struct {
	config   Config
	tracker  *tracker.Tracker
	demo     *tracker.Tracker
	clients  *Registry
	upgrader websocket.Upgrader
}

// NewServer creates a server. demo may be nil to disable demo mode.
func NewServer(cfg Config, tr *tracker.Tracker, demo *tracker.Tracker) *Server {
	defaults := DefaultConfig()
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = defaults.RefreshInterval
	}
	if cfg.DefaultWindow <= 0 {
		cfg.DefaultWindow = defaults.DefaultWindow
	}
	if cfg.MaxWindow <= 0 {
		cfg.MaxWindow = defaults.MaxWindow
	}
	if !cfg.EnableDemo {
		demo = nil
	}

	return &Server{
		config:  cfg,
		tracker: tr,
		demo:    demo,
		clients: NewRegistry(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true // dashboard is served from another origin
			},
		},
	}
}

// Handler returns the routed HTTP handler
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// WebSocket endpoint
	mux.HandleFunc("/ws", s.handleWebSocket)

	// API endpoints
	mux.HandleFunc("/api/analyze", s.handleAnalyze)
	mux.HandleFunc("/api/window", s.handleWindow)
	mux.HandleFunc("/api/hourly", s.handleHourly)
	mux.HandleFunc("/api/wallets", s.handleWallets)

	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.config.Port,
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		utils.ServerLogger.Info("HTTP server listening on %s", s.config.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return utils.WrapError(err, utils.ErrorTypeConfig, "LISTEN_FAILED", "http server failed", "server")
		}
		return nil
	case <-ctx.Done():
	}

	utils.ServerLogger.Info("Shutting down HTTP server...")
	s.clients.CloseAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// ClientCount returns the number of connected WebSocket clients
func (s *Server) ClientCount() int {
	return s.clients.Count()
}
