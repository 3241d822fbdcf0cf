package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lankaspa/lsa-admin-backend/internal/config"
	"github.com/lankaspa/lsa-admin-backend/internal/database"
	"github.com/lankaspa/lsa-admin-backend/internal/handlers"
	"github.com/lankaspa/lsa-admin-backend/internal/middleware"
	"github.com/lankaspa/lsa-admin-backend/internal/models"
	"github.com/lankaspa/lsa-admin-backend/internal/services"
	"github.com/lankaspa/lsa-admin-backend/pkg/jwt"
	"github.com/lankaspa/lsa-admin-backend/pkg/mailer"
	"github.com/lankaspa/lsa-admin-backend/pkg/upload"
	"github.com/lankaspa/lsa-admin-backend/pkg/validator"
	"github.com/sirupsen/logrus"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting LSA Administration Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize repositories
	spaRepo := database.NewSpaRepository(db.DB)
	therapistRepo := database.NewTherapistRepository(db.DB)
	paymentRepo := database.NewPaymentRepository(db.DB)
	adminUserRepo := database.NewAdminUserRepository(db.DB)
	notificationRepo := database.NewNotificationRepository(db.DB)
	activityLogRepo := database.NewActivityLogRepository(db.DB)

	// Initialize shared services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)
	identityValidator := validator.NewIdentityValidator()
	saver := upload.NewSaver(cfg.Upload.BaseDir, cfg.Upload.MaxImageSizeMB, cfg.Upload.MaxDocSizeMB)
	smtpMailer := mailer.NewSMTPMailer(mailer.Config{
		Mode:        cfg.Email.Mode,
		Host:        cfg.Email.SMTPHost,
		Port:        cfg.Email.SMTPPort,
		Username:    cfg.Email.Username,
		Password:    cfg.Email.Password,
		FromAddress: cfg.Email.FromAddress,
	}, logger)

	authService := services.NewAuthService(adminUserRepo, jwtService, cfg.JWT.AccessTokenExpiry, cfg.Security.BcryptCost, logger)
	registrationService := services.NewRegistrationService(spaRepo, paymentRepo, identityValidator, saver, smtpMailer, cfg, logger)
	verificationService := services.NewVerificationService(spaRepo, smtpMailer, logger)
	therapistService := services.NewTherapistService(therapistRepo, spaRepo, identityValidator, saver, logger)
	paymentService := services.NewPaymentService(paymentRepo, spaRepo, saver, cfg.Payment, logger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	registrationHandler := handlers.NewRegistrationHandler(registrationService)
	adminHandler := handlers.NewAdminHandler(spaRepo, activityLogRepo, verificationService)
	therapistHandler := handlers.NewTherapistHandler(therapistService, therapistRepo)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	notificationHandler := handlers.NewNotificationHandler(notificationRepo)
	dashboardHandler := handlers.NewDashboardHandler(spaRepo, therapistRepo, paymentRepo, notificationRepo)
	accountHandler := handlers.NewAccountHandler(authService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Security.EnableRequestLog {
		router.Use(requestLogger(logger))
	}

	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db))

	// Uploaded documents are served statically; paths stored on records
	// are web paths under /uploads
	router.Static("/uploads", cfg.Upload.BaseDir)

	v1 := router.Group("/api/v1")
	{
		// Public routes
		auth := v1.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)

			authProtected := auth.Group("")
			authProtected.Use(middleware.AuthMiddleware(jwtService))
			{
				authProtected.POST("/change-password", authHandler.ChangePassword)
			}
		}

		spas := v1.Group("/spas")
		{
			// Public registration
			spas.POST("/register", registrationHandler.Register)

			// Spa owner routes. Payment endpoints stay reachable while
			// overdue so the spa can settle its dues.
			spaPayments := spas.Group("")
			spaPayments.Use(middleware.AuthMiddleware(jwtService))
			spaPayments.Use(middleware.RequireRole(models.RoleAdminSpa, models.RoleAdminLSA))
			{
				spaPayments.POST("/:spa_id/payments", paymentHandler.Record)
				spaPayments.GET("/:spa_id/payments", paymentHandler.ListForSpa)
			}

			spaProtected := spas.Group("")
			spaProtected.Use(middleware.AuthMiddleware(jwtService))
			spaProtected.Use(middleware.RequireRole(models.RoleAdminSpa, models.RoleAdminLSA))
			spaProtected.Use(middleware.RequirePaymentCurrent(spaRepo))
			{
				spaProtected.GET("/:spa_id/dashboard", dashboardHandler.SpaDashboard)
				spaProtected.GET("/:spa_id/therapists", therapistHandler.ListForSpa)
				spaProtected.POST("/:spa_id/therapists", therapistHandler.Submit)
				spaProtected.POST("/:spa_id/therapists/:id/resign", therapistHandler.Resign)
				spaProtected.POST("/:spa_id/therapists/:id/terminate", therapistHandler.Terminate)
			}
		}

		// Notification inbox, recipient resolved from claims. An overdue
		// spa is locked out of everything except its payment routes.
		notifications := v1.Group("/notifications")
		notifications.Use(middleware.AuthMiddleware(jwtService))
		notifications.Use(middleware.RequirePaymentCurrent(spaRepo))
		{
			notifications.GET("", notificationHandler.List)
			notifications.POST("/:id/read", notificationHandler.MarkRead)
		}

		// Association admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthMiddleware(jwtService))
		admin.Use(middleware.RequireRole(models.RoleAdminLSA))
		{
			admin.GET("/spas", adminHandler.ListSpas)
			admin.GET("/spas/:id", adminHandler.GetSpa)
			admin.POST("/spas/:id/verify", adminHandler.VerifySpa)
			admin.POST("/spas/:id/reject", adminHandler.RejectSpa)

			admin.GET("/therapists", therapistHandler.ListAll)
			admin.GET("/therapist-requests", therapistHandler.ListPendingRequests)
			admin.POST("/therapist-requests/:id/approve", therapistHandler.Approve)
			admin.POST("/therapist-requests/:id/reject", therapistHandler.Reject)

			admin.GET("/payments", paymentHandler.ListAll)
			admin.POST("/payments/:id/approve", paymentHandler.Approve)

			admin.GET("/activity-logs", adminHandler.ListActivityLogs)
			admin.GET("/dashboard", dashboardHandler.AdminDashboard)

			admin.POST("/accounts/officers", accountHandler.CreateOfficer)
			admin.GET("/accounts", accountHandler.List)
		}

		// Government officer routes, re-checked against the database so a
		// revoked or expired account is cut off immediately
		officer := v1.Group("/officer")
		officer.Use(middleware.AuthMiddleware(jwtService))
		officer.Use(middleware.RequireRole(models.RoleGovernmentOfficer))
		officer.Use(middleware.RequireActiveOfficer(adminUserRepo))
		{
			officer.GET("/therapists/search", therapistHandler.SearchHistory)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": latency.Milliseconds(),
			"user_agent": c.Request.UserAgent(),
		}

		if userCtx, ok := middleware.GetUserContext(c); ok {
			fields["user_id"] = userCtx.UserID
			fields["role"] = userCtx.Role
		}

		entry := logger.WithFields(fields)

		if len(c.Errors) > 0 {
			for i, err := range c.Errors {
				entry = entry.WithField(fmt.Sprintf("error_%d", i), err.Error())
			}
			entry.Error("Request failed with errors")
			return
		}

		status := c.Writer.Status()
		switch {
		case status >= 500:
			entry.Error("Request completed with server error")
		case status >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed successfully")
		}
	}
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
