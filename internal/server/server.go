package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"salespoint/internal/cart"
	"salespoint/internal/config"
	"salespoint/internal/database"
	custommiddleware "salespoint/internal/middleware"
	"salespoint/internal/repository"
	"salespoint/internal/service"
	"salespoint/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *sql.DB
	redis  *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger, db *sql.DB) *Server {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(nil, cfg.Server.Env == "development"))

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		router.Use(custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: 120,
			Window:            time.Minute,
			KeyPrefix:         "salespoint_rate_limit",
		}, logger))
	}

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		custommiddleware.RespondWithJSON(w, http.StatusOK, map[string]any{
			"status":   "ok",
			"database": database.Health(db),
		})
	})

	// Initialize repositories
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	saleRepo := repository.NewSaleRepository(db)

	// Initialize services
	catalogService := service.NewCatalogService(productRepo, categoryRepo)
	checkoutService := service.NewCheckoutService(db)
	dashboardService := service.NewDashboardService(productRepo, categoryRepo, saleRepo)
	authService := service.NewAuthService(cfg.Auth.PINHash, cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry)

	// Cart sessions live in memory; they are discarded on commit
	cartStore := cart.NewStore()

	// Initialize handlers
	authHandler := transport.NewAuthHandler(authService, logger)
	categoryHandler := transport.NewCategoryHandler(catalogService, logger)
	productHandler := transport.NewProductHandler(catalogService, logger)
	cartHandler := transport.NewCartHandler(cartStore, catalogService, checkoutService, logger)
	dashboardHandler := transport.NewDashboardHandler(dashboardService, saleRepo, logger)

	// Create auth middleware for catalog mutations
	authMiddleware := custommiddleware.AuthMiddleware(cfg.Auth.JWTSecret, logger)

	// Register routes
	authHandler.RegisterRoutes(router)
	categoryHandler.RegisterRoutes(router, authMiddleware)
	productHandler.RegisterRoutes(router, authMiddleware)
	cartHandler.RegisterRoutes(router)
	dashboardHandler.RegisterRoutes(router)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
