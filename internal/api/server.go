package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"grabyourtickets/internal/auth"
	"grabyourtickets/internal/cache"
	"grabyourtickets/internal/config"
	"grabyourtickets/internal/database"
	"grabyourtickets/internal/handlers"
	"grabyourtickets/internal/messaging"
	"grabyourtickets/internal/metrics"
	"grabyourtickets/internal/middleware"
	"grabyourtickets/internal/repository"
	"grabyourtickets/internal/search"
	"grabyourtickets/internal/service"

	"github.com/gin-gonic/gin"
)

// Server is the HTTP API with its connections.
type Server struct {
	router   *gin.Engine
	config   *config.Config
	db       *database.DB
	nats     *messaging.NATSClient
	cache    *cache.SeatCache
	index    *search.BookingIndex
	metrics  *metrics.Metrics
	tokens   *auth.TokenManager
	services *service.Services
}

// NewServer connects to the database and the optional collaborators. Redis,
// NATS and Elasticsearch failures only disable their feature.
func NewServer(cfg *config.Config) (*Server, error) {
	gin.SetMode(cfg.GinMode)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	s := &Server{
		config:  cfg,
		db:      db,
		metrics: metrics.New(),
		tokens:  auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
	}

	deps := service.Dependencies{
		Metrics:   s.metrics,
		Tokens:    s.tokens,
		Scoring:   cfg.Scoring,
		SeatPrice: cfg.Booking.SeatPrice,
		Admin: service.AdminAccount{
			Name:     cfg.Auth.AdminName,
			Email:    cfg.Auth.AdminEmail,
			Password: cfg.Auth.AdminPassword,
		},
	}

	if cfg.Redis.Enabled {
		seatCache, err := cache.NewSeatCache(cfg.Redis)
		if err != nil {
			slog.Warn("Seat cache disabled", "error", err)
		} else {
			s.cache = seatCache
			deps.Cache = seatCache
		}
	}

	var publisher messaging.Publisher
	if cfg.NATS.Enabled {
		natsClient, err := messaging.NewNATSClient(cfg.NATS)
		if err != nil {
			slog.Warn("Booking notifications disabled", "error", err)
		} else {
			s.nats = natsClient
			publisher = natsClient
		}
	}
	deps.Notifier = messaging.NewBookingNotifier(publisher)

	if cfg.Elasticsearch.Enabled {
		index, err := search.NewBookingIndex(cfg.Elasticsearch)
		if err != nil {
			slog.Warn("Booking search disabled", "error", err)
		} else {
			s.index = index
			deps.Searcher = index
		}
	}

	s.services = service.NewServices(repository.NewRepositories(db), deps)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.services.Auth.EnsureAdmin(ctx); err != nil {
		s.Cleanup()
		return nil, fmt.Errorf("failed to provision admin account: %w", err)
	}

	s.router = gin.New()
	s.router.Use(middleware.Recovery())
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.CORS())
	s.router.Use(middleware.Logger())
	if cfg.MetricsEnabled {
		s.router.Use(s.metrics.Middleware())
	}

	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	var hallCache handlers.HallSeatCache
	if s.cache != nil {
		hallCache = s.cache
	}

	h := handlers.NewHandlers(s.services, hallCache)
	h.Routes(s.router.Group("/api"), middleware.Auth(s.tokens))

	s.router.GET("/health", s.healthCheck)
	if s.config.MetricsEnabled {
		s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	ctx := c.Request.Context()
	db := s.db.HealthCheck(ctx)

	deps := gin.H{"database": db.Status}
	if s.cache != nil {
		deps["redis"] = statusOf(s.cache.Ping(ctx))
	}
	if s.index != nil {
		deps["elasticsearch"] = statusOf(s.index.HealthCheck(ctx))
	}
	deps["nats"] = s.nats != nil

	code := http.StatusOK
	status := "ok"
	if !db.Healthy() {
		code = http.StatusServiceUnavailable
		status = "degraded"
	}

	c.JSON(code, gin.H{
		"status":       status,
		"service":      "grabyourtickets-api",
		"dependencies": deps,
		"pool":         db.Stats,
	})
}

func statusOf(err error) string {
	if err != nil {
		return database.StatusUnhealthy
	}
	return database.StatusHealthy
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%s", s.config.Port)
	return s.router.Run(addr)
}

// GetRouter returns the router for tests and custom http.Server setups.
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// Cleanup closes all connections.
func (s *Server) Cleanup() error {
	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
		}
	}

	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			slog.Error("Error closing Redis connection", "error", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			slog.Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
