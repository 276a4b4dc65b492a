package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/emilythestrangee/qa-forum/backend/internal/config"
	"github.com/emilythestrangee/qa-forum/backend/internal/handlers"
	"github.com/emilythestrangee/qa-forum/backend/internal/logger"
	"github.com/emilythestrangee/qa-forum/backend/internal/metrics"
	"github.com/emilythestrangee/qa-forum/backend/internal/middleware"
	"github.com/emilythestrangee/qa-forum/backend/internal/voting"
)

// HealthChecker reports dependency status for /health.
type HealthChecker interface {
	Health(ctx context.Context) map[string]string
}

type Deps struct {
	Service  *voting.Service
	Health   HealthChecker
	Limiter  middleware.VoteLimiter
	Registry *prometheus.Registry
	Log      *logger.Logger
}

type Server struct {
	cfg     *config.Config
	deps    Deps
	handler *handlers.Handler
	http    *metrics.HTTPMetrics
}

// NewServer creates and configures a new server
func NewServer(cfg *config.Config, deps Deps) *http.Server {
	s := newServer(cfg, deps)
	return &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

func newServer(cfg *config.Config, deps Deps) *Server {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	if deps.Registry == nil {
		deps.Registry = metrics.NewRegistry()
	}
	return &Server{
		cfg:     cfg,
		deps:    deps,
		handler: handlers.NewHandler(deps.Service, deps.Log),
		http:    metrics.NewHTTPMetrics(deps.Registry),
	}
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	if s.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(s.cfg.Tracing.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.LogAPI(s.deps.Log))
	r.Use(s.http.Middleware())

	allowAll := len(s.cfg.CORSOrigins) == 0 || (len(s.cfg.CORSOrigins) == 1 && s.cfg.CORSOrigins[0] == "*")
	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  allowAll,
		AllowOrigins:     corsOrigins(allowAll, s.cfg.CORSOrigins),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: !allowAll,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", s.healthHandler)
	r.GET("/metrics", gin.WrapH(metrics.Handler(s.deps.Registry)))

	auth := middleware.NewAuthMiddleware(s.cfg.JWTSecret)
	voteLimit := middleware.VoteRateLimit(s.deps.Limiter, s.deps.Log)

	// API routes
	api := r.Group("/api")
	{
		api.GET("/questions", s.handler.Question.GetQuestions)
		api.GET("/questions/:id", s.handler.Question.GetQuestion)
		api.GET("/questions/:id/answers", s.handler.Answer.GetAnswers)

		// Protected routes (authentication required)
		protected := api.Group("")
		protected.Use(auth.RequireAuth())
		{
			protected.POST("/questions", s.handler.Question.CreateQuestion)
			protected.POST("/questions/:id/answers", s.handler.Answer.CreateAnswer)
			protected.POST("/questions/:id/answers/:answerId/accept", s.handler.Answer.AcceptAnswer)
			protected.DELETE("/questions/:id/answers/:answerId/accept", s.handler.Answer.UnacceptAnswer)

			protected.POST("/questions/:id/vote", voteLimit, s.handler.Vote.VoteQuestion)
			protected.POST("/answers/:id/vote", voteLimit, s.handler.Vote.VoteAnswer)
			protected.GET("/me/votes", s.handler.Vote.GetMyVotes)
		}
	}

	return r
}

func (s *Server) healthHandler(c *gin.Context) {
	if s.deps.Health == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}
	stats := s.deps.Health.Health(c.Request.Context())
	status := http.StatusOK
	if stats["status"] != "up" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, stats)
}

func corsOrigins(allowAll bool, origins []string) []string {
	if allowAll {
		return nil
	}
	return origins
}
