// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	_ "huntboard/docs" // swagger docs
	"huntboard/internal/ai"
	"huntboard/internal/cache"
	"huntboard/internal/config"
	"huntboard/internal/database"
	"huntboard/internal/featureflags"
	"huntboard/internal/middleware"
	"huntboard/internal/models"
	"huntboard/internal/objstore"
	"huntboard/internal/repository"
	"huntboard/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// AIProxy is the slice of the AI client the handlers need. Tests swap in a
// stub; production wires *ai.Client.
type AIProxy interface {
	Analyze(ctx context.Context, payload json.RawMessage) (json.RawMessage, error)
	OptimizeResume(ctx context.Context, payload json.RawMessage) (json.RawMessage, error)
	GenerateSummary(ctx context.Context, payload json.RawMessage) (json.RawMessage, error)
	ParseResumeFile(ctx context.Context, filename string, file io.Reader, size int64) (json.RawMessage, error)
	ExtractResumeText(ctx context.Context, filename string, file io.Reader, size int64) (string, error)
}

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	userRepo       repository.UserRepository
	appRepo        repository.ApplicationRepository
	resumeRepo     repository.ResumeRepository
	appService     *service.ApplicationService
	resumeService  *service.ResumeService
	aiClient       AIProxy
	featureFlags   *featureflags.Manager
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	// Initialize database
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Initialize Redis
	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	// Object store for resume originals
	store, err := objstore.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("object store init failed: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("object store bucket check failed: %w", err)
	}

	aiClient := ai.NewClient(cfg.AIServiceURL)

	return newServer(cfg, db, redisClient, store, aiClient), nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis/storage.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, store service.FileStore, aiClient AIProxy) *Server {
	return newServer(cfg, db, redisClient, store, aiClient)
}

func newServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, store service.FileStore, aiClient AIProxy) *Server {
	userRepo := repository.NewUserRepository(db)
	appRepo := repository.NewApplicationRepository(db)
	resumeRepo := repository.NewResumeRepository(db)

	prom := middleware.InitMetrics("huntboard-api")

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		userRepo:       userRepo,
		appRepo:        appRepo,
		resumeRepo:     resumeRepo,
		aiClient:       aiClient,
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
	}
	server.appService = service.NewApplicationService(appRepo)

	var extractor service.ResumeTextExtractor
	if aiClient != nil {
		extractor = aiClient
	}
	server.resumeService = service.NewResumeService(resumeRepo, store, extractor)

	return server
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	if s.config.TracingEnabled {
		app.Use(middleware.Tracing())
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)
	api.Get("/", s.HealthCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Huntboard Backend Metrics Dashboard",
	}))

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "register"), s.Register)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)

	// Public AI routes, gated by feature flags
	api.Post("/analyze/public", s.featureFlagGate(featureflags.PublicAnalyze), middleware.RateLimit(
		s.redis, 5, time.Minute, "analyze_public"), s.AnalyzePublic)
	api.Post("/upload/parse-resume", s.featureFlagGate(featureflags.PublicParse), middleware.RateLimit(
		s.redis, 5, time.Minute, "parse_resume"), s.ParseResumeUpload)

	// Protected routes
	protected := api.Group("", s.AuthRequired())

	// Evaluated flag status for the caller, for client feature gating
	protected.Get("/flags", s.FeatureFlags)

	// Application routes
	applications := protected.Group("/applications")
	applications.Post("/", s.CreateApplication)
	applications.Get("/", s.GetApplications)
	// Define specific /board and /insights routes BEFORE generic /:id route
	applications.Get("/board", s.GetBoard)
	applications.Get("/insights", s.GetInsights)
	applications.Delete("/", s.DeleteApplications)
	applications.Get("/:id", s.GetApplication)
	applications.Put("/:id", s.UpdateApplication)
	applications.Delete("/:id", s.DeleteApplication)

	// Resume routes
	resumes := protected.Group("/resumes")
	resumes.Post("/", middleware.RateLimit(
		s.redis, 10, 10*time.Minute, "resume_upload"), s.UploadResume)
	resumes.Get("/", s.GetResumes)
	resumes.Get("/:id", s.GetResume)
	resumes.Get("/:id/file", s.DownloadResume)
	resumes.Post("/:id/analyze", middleware.RateLimit(
		s.redis, 5, time.Minute, "analyze_resume"), s.AnalyzeResume)
	resumes.Delete("/:id", s.DeleteResume)

	// AI generation routes
	generate := protected.Group("/generate")
	generate.Post("/summary", middleware.RateLimit(
		s.redis, 10, time.Minute, "generate_summary"), s.GenerateSummary)
	generate.Post("/optimize", middleware.RateLimit(
		s.redis, 10, time.Minute, "optimize_resume"), s.OptimizeResume)
}

// featureFlagGate answers 404 when the named flag is off, so a disabled
// surface is indistinguishable from an absent one.
func (s *Server) featureFlagGate(flag string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !s.featureFlags.EnabledOrDefault(flag, 0, true) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundMessageError("Not found"))
		}
		return c.Next()
	}
}

// FeatureFlags handles GET /api/flags
// @Summary Evaluated feature flags for the caller
// @Tags flags
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]bool
// @Router /flags [get]
func (s *Server) FeatureFlags(c *fiber.Ctx) error {
	return c.JSON(s.featureFlags.Snapshot(currentUserID(c)))
}

// HealthCheck is a legacy/simple alias for ReadinessCheck
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	return s.ReadinessCheck(c)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// The app degrades without a cache; readiness reports it but does
		// not fail on it.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AuthRequired returns the authentication middleware
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		tokenString := ""
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		// Parse and validate token
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			// Validate signing method
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(s.config.JWTSecret), nil
		})

		if err != nil || !token.Valid {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token claims"))
		}

		// Validate issuer and audience
		if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != "huntboard-api" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token issuer"))
		}
		if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != "huntboard-client" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token audience"))
		}

		// Extract user ID from subject claim
		sub, ok := claims["sub"].(string)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid subject claim"))
		}

		userID, err := strconv.ParseUint(sub, 10, 32)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid user ID in token"))
		}

		// Check JTI for revocation
		if jti, exists := claims["jti"].(string); exists && jti != "" {
			if s.redis != nil {
				isBlacklisted, err := s.redis.Exists(c.Context(), "blacklist:"+jti).Result()
				if err == nil && isBlacklisted > 0 {
					return models.RespondWithError(c, fiber.StatusUnauthorized,
						models.NewUnauthorizedError("Token has been revoked"))
				}
			}
		}

		// Store user ID in context
		c.Locals("userID", uint(userID))
		// Sync to UserContext for logging and downstream services
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, uint(userID))
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// Start starts the server
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName: "Huntboard API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	// Close database connection
	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	// Close Redis connection
	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
