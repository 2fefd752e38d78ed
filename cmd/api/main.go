package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"land-listing-portal/internal/audit"
	"land-listing-portal/internal/auth"
	"land-listing-portal/internal/config"
	"land-listing-portal/internal/database"
	"land-listing-portal/internal/handlers"
	"land-listing-portal/internal/moderation"
	"land-listing-portal/internal/notify"
	"land-listing-portal/internal/ratelimit"
	"land-listing-portal/internal/scheduler"
	"land-listing-portal/internal/search"
	"land-listing-portal/internal/settings"
)

func main() {
	if err := godotenv.Load(); err == nil {
		config.GetLogger().Info("loaded environment from .env")
	}
	log := config.GetLogger()

	// Load configuration
	configPath := getEnv("CONFIG_PATH", "config/portal.yaml")
	appConfig, err := config.LoadConfig(configPath)
	if err != nil {
		log.WithError(err).Warnf("failed to load config from %s, using defaults", configPath)
		appConfig = config.DefaultConfig()
	} else {
		log.Infof("loaded configuration from %s", configPath)
	}
	config.SetLogLevel(appConfig.Logging.Level)

	// Initialize database
	mysqlCfg := appConfig.Database.MySQL
	portStr := ""
	if mysqlCfg.Port > 0 {
		portStr = fmt.Sprintf("%d", mysqlCfg.Port)
	}

	gormDB, err := database.NewGormDB(
		getEnvOrConfig(mysqlCfg.Host, "DB_HOST", "mysql"),
		getEnvOrConfig(portStr, "DB_PORT", "3306"),
		getEnvOrConfig(mysqlCfg.User, "DB_USER", "portal_user"),
		getEnvOrConfig(mysqlCfg.Password, "DB_PASSWORD", "portal_pass"),
		getEnvOrConfig(mysqlCfg.Database, "DB_NAME", "portal_db"),
	)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to MySQL")
	}
	defer gormDB.Close()

	if err := gormDB.InitSchema(); err != nil {
		log.WithError(err).Fatal("failed to initialize schema")
	}
	db, _ := gormDB.GetDB()

	// Initialize search client
	var searchClient *search.SearchClient
	if appConfig.Search.Meilisearch.Enabled {
		host := getEnvOrConfig(appConfig.Search.Meilisearch.Host, "MEILISEARCH_HOST", "http://meilisearch:7700")
		apiKey := getEnvOrConfig(appConfig.Search.Meilisearch.APIKey, "MEILISEARCH_KEY", "masterKey123")
		searchClient = search.NewSearchClient(host, apiKey)
		if err := searchClient.InitIndex(); err != nil {
			log.WithError(err).Warn("failed to initialize search index")
		}
	}

	// Session gate and services
	gate := auth.NewGate(getEnvOrConfig(appConfig.Auth.JWTSecret, "JWT_SECRET", "dev-only-secret"))
	auditLogger := audit.NewLogger(db)
	queue := notify.NewQueue(db)
	settingsService := settings.NewService(db, gate, auditLogger)
	moderationService := moderation.NewService(db, gate, auditLogger, queue, searchClient, settingsService)

	// Daily stale-pending sweep
	sched := scheduler.NewScheduler(moderationService, appConfig)
	if err := sched.Start(); err != nil {
		log.WithError(err).Warn("failed to start scheduler")
	}
	defer sched.Stop()

	// Setup Gin router
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     appConfig.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	reportThrottle := ratelimit.NewThrottle(
		appConfig.RateLimit.ReportsPerMinute,
		appConfig.RateLimit.ReportsPerHour,
		appConfig.RateLimit.Enabled,
	)

	listingHandler := handlers.NewListingHandler(moderationService, searchClient, gate)
	adminHandler := handlers.NewAdminHandler(moderationService, settingsService, auditLogger, gate)

	// Routes
	r.GET("/health", healthCheck)

	api := r.Group("/api")
	{
		api.GET("/listings", listingHandler.ListListings)
		api.GET("/listings/:id", listingHandler.GetListing)
		api.POST("/listings", listingHandler.CreateListing)
		api.PUT("/listings/:id", listingHandler.ResubmitListing)
		api.POST("/listings/:id/documents", listingHandler.AttachDocument)
		api.POST("/reports", throttleMiddleware(reportThrottle), listingHandler.CreateReport)

		api.GET("/settings", adminHandler.GetSettings)
		api.PATCH("/settings", adminHandler.UpdateSettings)

		admin := api.Group("/admin")
		{
			admin.GET("/listings/pending", adminHandler.PendingListings)
			admin.PUT("/listings/:id/status", adminHandler.UpdateListingStatus)
			admin.POST("/listings/bulk-status", adminHandler.BulkUpdateStatus)
			admin.GET("/reports", adminHandler.Reports)
			admin.PUT("/reports/:id", adminHandler.ReviewReport)
			admin.GET("/audit-logs", adminHandler.AuditLogs)
		}
	}

	port := getEnvOrConfig(appConfig.Server.Port, "PORT", "8084")
	log.Infof("server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.WithError(err).Fatal("failed to start server")
	}
}

// throttleMiddleware rejects report submissions beyond the configured rate
func throttleMiddleware(t *ratelimit.Throttle) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !t.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"status": "error",
				"error":  "too many reports, slow down",
			})
			return
		}
		c.Next()
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now(),
	})
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getEnvOrConfig prefers the config file value, then the environment, then the default
func getEnvOrConfig(configValue, envKey, fallback string) string {
	if configValue != "" {
		return configValue
	}
	return getEnv(envKey, fallback)
}
