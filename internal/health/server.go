package health

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"justtrades-bot/internal/logging"
	"justtrades-bot/internal/scheduler"
)

// StatsSource lists scheduler stats for /status.
type StatsSource func() []scheduler.Stats

// Server exposes liveness and status endpoints for the hosting platform.
type Server struct {
	monitor *Monitor
	stats   StatsSource
	version string
	logger  zerolog.Logger
	srv     *http.Server
}

// NewServer builds the HTTP server on addr. stats may be nil.
func NewServer(addr string, monitor *Monitor, stats StatsSource, version string, logger zerolog.Logger) *Server {
	s := &Server{
		monitor: monitor,
		stats:   stats,
		version: version,
		logger:  logging.WithComponent(logger, "health"),
	}
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Router returns the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/", s.handleLive)
	router.GET("/healthz", s.handleLive)
	router.GET("/readyz", s.handleReady)
	router.GET("/status", s.handleStatus)
	return router
}

func (s *Server) handleLive(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": s.version})
}

func (s *Server) handleReady(c *gin.Context) {
	report := s.monitor.Check(c.Request.Context())
	code := http.StatusOK
	if report.Status == StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, report)
}

func (s *Server) handleStatus(c *gin.Context) {
	var jobs []scheduler.Stats
	if s.stats != nil {
		jobs = s.stats()
	}
	if jobs == nil {
		jobs = []scheduler.Stats{}
	}
	c.JSON(http.StatusOK, gin.H{
		"version":    s.version,
		"health":     s.monitor.Check(c.Request.Context()),
		"schedulers": jobs,
	})
}

// Start listens in the background. Listen errors other than a clean
// shutdown are logged.
func (s *Server) Start() {
	go func() {
		s.logger.Info().Str("addr", s.srv.Addr).Msg("Health server listening")
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("Health server error")
		}
	}()
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
