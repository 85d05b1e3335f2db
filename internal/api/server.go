package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AI2HU/hotspot/internal/db"
	"github.com/AI2HU/hotspot/internal/loader"
	"github.com/AI2HU/hotspot/internal/logger"
	"github.com/AI2HU/hotspot/internal/models"
	"github.com/AI2HU/hotspot/internal/services"
)

// Server is the hotspot REST API
type Server struct {
	router           *gin.Engine
	httpServer       *http.Server
	dashboardService *services.DashboardService
	snapshotService  *services.SnapshotService
	corsOrigin       string
	startedAt        time.Time
	log              *logger.Logger
}

// NewServer creates the API server and registers its routes. snapshotService may be nil.
func NewServer(dashboardService *services.DashboardService, snapshotService *services.SnapshotService, corsOrigin string) *Server {
	if corsOrigin == "" {
		corsOrigin = "*"
	}

	s := &Server{
		router:           gin.New(),
		dashboardService: dashboardService,
		snapshotService:  snapshotService,
		corsOrigin:       corsOrigin,
		startedAt:        time.Now(),
		log:              logger.Component("api"),
	}

	s.router.Use(gin.Recovery(), s.requestLogger(), s.corsMiddleware())
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/health", s.health)
		v1.GET("/presets", s.listPresets)

		v1.GET("/dashboard", s.getDashboard)
		v1.GET("/summary", s.getSummary)
		v1.GET("/facets", s.getFacets)
		v1.GET("/kpi", s.getKPIs)
		v1.GET("/map", s.getMap)

		v1.GET("/snapshots", s.listSnapshots)
		v1.GET("/snapshots/:id", s.getSnapshot)
		v1.GET("/snapshots/:id/stats", s.getSnapshotStats)
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on address until Shutdown is called
func (s *Server) Run(address string) error {
	s.httpServer = &http.Server{
		Addr:              address,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.log.Info("Listening on %s", address)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", s.corsOrigin)
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start).Round(time.Millisecond))
	}
}

// successResponse writes a successful API envelope
func (s *Server) successResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    data,
	})
}

// errorResponse writes a failed API envelope
func (s *Server) errorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, models.APIResponse{
		Success: false,
		Error:   message,
	})
}

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, loader.ErrSourceUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, loader.ErrThrottled):
		return http.StatusServiceUnavailable
	case errors.Is(err, db.ErrSnapshotNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// failure logs err and writes it with the status that matches it
func (s *Server) failure(c *gin.Context, what string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("%s: %v", what, err)
	}
	s.errorResponse(c, status, what+": "+err.Error())
}
