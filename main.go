package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/Pedroffda/alinhavo-api/config"
	"github.com/Pedroffda/alinhavo-api/controllers"
	"github.com/Pedroffda/alinhavo-api/logger"
	"github.com/Pedroffda/alinhavo-api/middleware"
	"github.com/Pedroffda/alinhavo-api/migrations"
	"github.com/Pedroffda/alinhavo-api/models"
	"github.com/Pedroffda/alinhavo-api/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Initialize(cfg.LogLevel, cfg.IsProduction()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Log.Sync()

	logger.Log.Info("Starting Alinhavo API server...",
		zap.String("env", cfg.GoEnv),
		zap.String("env_file", cfg.EnvFile),
	)

	// Connect to database
	if err := config.ConnectDatabase(cfg.GetDatabaseURL()); err != nil {
		logger.Log.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Auto-migrate database models, then apply the SQL migrations on top
	db := config.GetDB()
	if err := db.AutoMigrate(models.All()...); err != nil {
		logger.Log.Fatal("Failed to migrate database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Log.Fatal("Failed to get database handle", zap.Error(err))
	}
	if err := migrations.Run(sqlDB, config.DialectName(db)); err != nil {
		logger.Log.Fatal("Failed to apply SQL migrations", zap.Error(err))
	}
	logger.Log.Info("Database migration completed successfully")

	services.InitMarketplace(db, services.Policy{
		AutoRejectOnAccept: cfg.AutoRejectOnAccept,
		MonotonicProgress:  cfg.MonotonicProgress,
	})

	if err := initImageStorage(context.Background(), cfg); err != nil {
		logger.Log.Fatal("Failed to initialize image storage", zap.Error(err))
	}

	router := setupRouter()

	// Start server
	port := ":" + cfg.Port
	logger.Log.Info("Server is running", zap.String("address", "http://localhost"+port))
	if err := router.Run(port); err != nil {
		logger.Log.Fatal("Failed to start server", zap.Error(err))
	}
}

// initImageStorage selects S3 when a bucket is configured, local disk otherwise
func initImageStorage(ctx context.Context, cfg *config.Config) error {
	if cfg.UsesS3() {
		s3Service, err := services.NewS3Service(ctx, services.S3Settings{
			Region:          cfg.AWSRegion,
			Bucket:          cfg.AWSS3Bucket,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		})
		if err != nil {
			return err
		}
		services.InitImageService(s3Service)
		logger.Log.Info("Image storage: S3", zap.String("bucket", cfg.AWSS3Bucket))
		return nil
	}

	storage := services.NewLocalStorage(cfg.UploadDir)
	services.InitImageService(storage)
	logger.Log.Info("Image storage: local disk", zap.String("dir", storage.Dir()))
	return nil
}

// setupRouter builds the HTTP API from the loaded configuration
func setupRouter() *gin.Engine {
	cfg := config.GetConfig()
	if cfg == nil {
		cfg = &config.Config{GoEnv: "development"}
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.RequestLogger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", logger.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", logger.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check endpoint
		v1.GET("/health", healthCheck)

		// Database status endpoint
		v1.GET("/database/status", databaseStatus)

		controllers.RegisterRoutes(v1, middleware.EnsureValidToken(cfg))
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Alinhavo API is running",
	})
}

// databaseStatus checks database connectivity and reports the schema version
func databaseStatus(c *gin.Context) {
	db := config.GetDB()
	if db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Database is not connected",
			},
		})
		return
	}

	// Get the underlying SQL database to check connection
	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	// Ping the database to verify connection
	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	version, err := migrations.Version(sqlDB, config.DialectName(db))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to read migration version",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"message":           "Database connected",
		"dialect":           db.Dialector.Name(),
		"migration_version": version,
	})
}
