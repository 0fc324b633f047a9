package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/faithbridge/member-insights/internal/api"
	"github.com/faithbridge/member-insights/internal/cache"
	"github.com/faithbridge/member-insights/internal/config"
	"github.com/faithbridge/member-insights/internal/llm"
	"github.com/faithbridge/member-insights/internal/narrative"
	"github.com/faithbridge/member-insights/internal/services"
	"github.com/faithbridge/member-insights/internal/store"
)

func main() {
	// Load configuration
	if err := config.Load(); err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger, err := initLogger()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting FaithBridge Member Insights - Retention & Engagement Prediction Service")

	// Load secrets from Vault if available, otherwise use config
	if vaultURL := viper.GetString("vault.url"); vaultURL != "" {
		if vaultToken := viper.GetString("vault.token"); vaultToken != "" {
			vaultClient, err := services.NewVaultClient(vaultURL, vaultToken, logger)
			if err != nil {
				logger.Warn("Failed to initialize Vault client, using config-based secrets", zap.Error(err))
			} else if secrets, err := vaultClient.LoadSecretsFromVault("member-insights"); err == nil {
				for key, value := range secrets {
					viper.Set(key, value)
				}
				logger.Info("Secrets loaded from Vault successfully")
			} else {
				logger.Warn("Failed to load secrets from Vault, using config", zap.Error(err))
			}
		}
	} else {
		logger.Info("Using config-based secrets (Vault not configured)")
	}

	cfg, err := config.Get()
	if err != nil {
		logger.Fatal("Failed to parse configuration", zap.Error(err))
	}

	// Initialize database
	db, err := initDatabase(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}

	// Run database migrations FIRST
	if err := store.RunMigrations(db); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	dataStore := store.NewGormStore(db, logger)

	// Narrative collaborator is optional; without it every
	// recommendation resolves to the deterministic fallbacks.
	var textGen narrative.TextGenerator
	if cfg.LLM.URL != "" {
		textGen = llm.NewClient(cfg.LLM.URL, cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.Timeout)
		logger.Info("Narrative collaborator configured", zap.String("model", cfg.LLM.Model))
	} else {
		logger.Info("Narrative collaborator not configured, using deterministic fallbacks")
	}
	narrativeGen := narrative.NewGenerator(textGen, cfg.LLM.Timeout, cfg.LLM.MaxTokens, cfg.LLM.Temperature, cfg.LLM.RPS, logger)

	predictionService := services.NewPredictionService(dataStore, narrativeGen, cfg.Engine, logger)

	// Report cache is optional; a missing Redis address or zero TTL
	// disables it.
	var reportCache *cache.ReportCache
	if cfg.Redis.Addr != "" && cfg.Redis.ReportTTL > 0 {
		reportCache, err = cache.NewReportCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.ReportTTL, logger)
		if err != nil {
			logger.Warn("Failed to initialize report cache, continuing without it", zap.Error(err))
			reportCache = nil
		} else {
			defer reportCache.Close()
			logger.Info("Report cache enabled", zap.Duration("ttl", cfg.Redis.ReportTTL))
		}
	}

	// Initialize API handlers with services
	apiHandlers := api.NewHandlers(predictionService, reportCache, logger)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	// Add CORS middleware
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, Authorization")
		c.Header("Access-Control-Expose-Headers", "Content-Length")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"service":   "member-insights",
			"version":   "v1.0",
			"timestamp": time.Now().UTC(),
		})
	})

	apiHandlers.RegisterRoutes(router)

	// Start server
	port := cfg.Server.Port
	if port == "" {
		port = "8086"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		logger.Info("Starting HTTP server", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func initLogger() (*zap.Logger, error) {
	level := viper.GetString("log.level")
	var logLevel zap.AtomicLevel

	switch level {
	case "debug":
		logLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		logLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		logLevel = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		logLevel = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		logLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	config := zap.NewProductionConfig()
	config.Level = logLevel
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	return config.Build()
}

func initDatabase(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		cfg.Database.Host, cfg.Database.User, cfg.Database.Password,
		cfg.Database.Name, cfg.Database.Port, cfg.Database.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test the connection
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	logger.Info("Database connection established successfully")
	return db, nil
}
