package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	_ "github.com/joho/godotenv/autoload"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/Saurabhrajput1234/subhsankalpCRM-sub000/docs" // Swagger docs
	"github.com/Saurabhrajput1234/subhsankalpCRM-sub000/internal/config"
	"github.com/Saurabhrajput1234/subhsankalpCRM-sub000/internal/database"
	"github.com/Saurabhrajput1234/subhsankalpCRM-sub000/internal/handlers"
	"github.com/Saurabhrajput1234/subhsankalpCRM-sub000/internal/jobs"
	"github.com/Saurabhrajput1234/subhsankalpCRM-sub000/internal/middleware"
	"github.com/Saurabhrajput1234/subhsankalpCRM-sub000/internal/repository"
	"github.com/Saurabhrajput1234/subhsankalpCRM-sub000/internal/services"
	"github.com/Saurabhrajput1234/subhsankalpCRM-sub000/pkg/logger"

	"github.com/gin-gonic/gin"
)

// @title SubhSankalp CRM API
// @version 1.0
// @description REST API for plot inventory, receipts and financial reconciliation

// @contact.name API Support

// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Setup(cfg.Environment)

	// Initialize Sentry when DSN is configured
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	// Initialize repositories
	repos := repository.NewRepositories(db)

	// Initialize background worker
	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	// Initialize services
	svcs := services.NewServices(repos, worker, db)

	// Schedule recurring jobs
	scheduleJobs(worker, svcs, cfg)

	// Initialize handlers
	h := handlers.NewHandlers(svcs)

	// Setup router
	router := setupRouter(h, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Shutdown background worker
	worker.Shutdown()
	logger.Info("Background worker stopped")

	// Flush Sentry events before exit
	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

func setupRouter(h *handlers.Handlers, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Global middleware
	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// Redirect root to swagger
	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check (public)
		v1.GET("/health", h.Health.Index)

		// Protected routes (requires authentication)
		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTSecret))
		{
			// Admin-only routes
			admin := protected.Group("")
			admin.Use(middleware.RequireAdmin())
			{
				// Receipt decisions (admin only)
				admin.POST("/receipts/:id/approve", h.Receipt.Approve)
				admin.POST("/receipts/:id/reject", h.Receipt.Reject)

				// Plot management (admin only)
				admin.POST("/plots", h.Plot.Create)
				admin.PUT("/plots/:id", h.Plot.Update)
				admin.DELETE("/plots/:id", h.Plot.Delete)
				admin.POST("/plots/import", h.Plot.Import)

				// User management (admin only)
				admin.GET("/users", h.User.Index)
				admin.POST("/users", h.User.Create)
				admin.PUT("/users/:id", h.User.Update)

				// Maintenance (admin only)
				admin.POST("/maintenance/recalculate", h.Maintenance.Recalculate)
				admin.POST("/maintenance/recalculate-all", h.Maintenance.RecalculateAll)
				admin.POST("/maintenance/sweep", h.Maintenance.Sweep)
				admin.GET("/maintenance/jobs", h.Maintenance.JobStatus)

				// Audit trail (admin only)
				admin.GET("/audit", h.Audit.Index)
			}

			// Plot viewing and exports
			// Static routes first so "summary" is not matched as :id
			protected.GET("/plots", h.Plot.Index)
			protected.GET("/plots/summary", h.Plot.Summary)
			protected.GET("/plots/export", h.Plot.Export)
			protected.GET("/plots/:id", h.Plot.Show)

			// Receipts (operators record, admins decide)
			protected.GET("/receipts", h.Receipt.Index)
			protected.POST("/receipts", h.Receipt.Create)
			protected.GET("/receipts/:id", h.Receipt.Show)
			protected.GET("/receipts/:id/download", h.Receipt.Download)

			// Users (own profile)
			protected.GET("/users/:id", h.User.Show)

			// Notifications
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", h.Notification.Index)
				notifications.POST("/read-all", h.Notification.MarkAllRead)
				notifications.POST("/:id/read", h.Notification.MarkRead)
			}
		}
	}

	return router
}

func scheduleJobs(worker *jobs.Worker, svcs *services.Services, cfg *config.Config) {
	// Expire overdue token receipts; run once at startup to catch tokens that
	// lapsed while the process was down
	sweepInterval := time.Duration(cfg.SweepIntervalMinutes) * time.Minute
	worker.ScheduleEveryImmediate(sweepInterval, func(ctx context.Context) error {
		logger.Info("[Job] Sweeping expired token receipts...")
		_, err := svcs.Sweep.SweepExpiredTokens(ctx, time.Now())
		return err
	})

	// Nightly full reconciliation pass over all plots
	worker.ScheduleEvery(24*time.Hour, func(ctx context.Context) error {
		logger.Info("[Job] Recalculating all plots...")
		_, err := svcs.Reconcile.RecalculateAllPlots(ctx)
		return err
	})

	logger.Info("Scheduled recurring jobs")
}
