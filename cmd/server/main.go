package main

import (
	"context"
	"net/http"

	"filevault/internal/blobstore"
	"filevault/internal/config"
	"filevault/internal/database"
	"filevault/internal/handlers"
	"filevault/internal/kafka"
	"filevault/internal/middleware"
	"filevault/internal/redis"
	"filevault/internal/repositories"
	"filevault/internal/services"
	"filevault/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()
	logger.InitLogger()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}

	redisService := redis.NewService(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if redisService == nil {
		logger.Log.Warn().Msg("Redis unavailable, continuing without cache")
	}

	var producer *kafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = kafka.NewProducer(cfg.KafkaBrokers)
		defer producer.Close()
	} else {
		logger.Log.Warn().Msg("No Kafka brokers configured, events disabled")
	}

	var blobs blobstore.Store
	switch cfg.BlobBackend {
	case "s3":
		blobs, err = blobstore.NewS3Store(context.Background(), cfg.S3Bucket, cfg.S3Prefix)
	default:
		blobs, err = blobstore.NewLocalStore(cfg.BlobDir)
	}
	if err != nil {
		logger.Log.Fatal().Err(err).Str("backend", cfg.BlobBackend).Msg("Failed to initialize blob store")
	}

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	folderRepo := repositories.NewFolderRepository(db)
	fileRepo := repositories.NewFileRepository(db)
	shareRepo := repositories.NewShareRepository(db)
	versionRepo := repositories.NewVersionRepository(db)

	// Services
	accessService := services.NewAccessService(folderRepo, fileRepo, shareRepo, logger.Log)
	folderService := services.NewFolderService(db, folderRepo, fileRepo, shareRepo, redisService, producer, logger.Log)
	fileService := services.NewFileService(fileRepo, folderRepo, accessService, blobs, producer, logger.Log)
	shareService := services.NewShareService(db, folderRepo, fileRepo, userRepo, shareRepo, redisService, producer, logger.Log)
	versionService := services.NewVersionService(folderRepo, fileRepo, versionRepo, accessService, producer, logger.Log)

	// Handlers
	authHandler := handlers.NewAuthHandler(userRepo)
	folderHandler := handlers.NewFolderHandler(folderService)
	fileHandler := handlers.NewFileHandler(fileService)
	shareHandler := handlers.NewShareHandler(shareService)
	versionHandler := handlers.NewVersionHandler(versionService)

	r := gin.New()
	r.Use(gin.Recovery())
	middleware.SetupPrometheus(r)
	r.Use(middleware.LoggerMiddleware())

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/auth/register", authHandler.Register)
	r.POST("/auth/login", authHandler.Login)

	protected := r.Group("/api")
	protected.Use(middleware.AuthMiddleware(userRepo))
	{
		// Folder management
		protected.POST("/folders", folderHandler.CreateFolder)
		protected.GET("/folders", folderHandler.ListFolders)
		protected.PUT("/folders/:folderId", folderHandler.RenameFolder)
		protected.POST("/folders/:folderId/move", folderHandler.MoveFolder)
		protected.DELETE("/folders/:folderId", folderHandler.DeleteFolder)

		// File management
		protected.POST("/folders/:folderId/files", fileHandler.UploadFile)
		protected.GET("/folders/:folderId/files", fileHandler.ListFolderFiles)
		protected.GET("/files/:fileId/download", fileHandler.DownloadFile)
		protected.DELETE("/files/:fileId", fileHandler.DeleteFile)

		// Sharing
		protected.POST("/folders/:folderId/share", shareHandler.ShareFolder)
		protected.POST("/files/:fileId/share", shareHandler.ShareFile)
		protected.GET("/shares/with-me", shareHandler.SharedWithMe)
		protected.GET("/folders/:folderId/shares", shareHandler.ListFolderShares)
		protected.GET("/files/:fileId/shares", shareHandler.ListFileShares)
		protected.DELETE("/folders/:folderId/share/:userId", shareHandler.RevokeFolderShare)
		protected.DELETE("/files/:fileId/share/:userId", shareHandler.RevokeFileShare)

		// Versioning
		protected.POST("/folders/:folderId/versions", versionHandler.CreateFolderVersion)
		protected.GET("/folders/:folderId/versions", versionHandler.ListFolderVersions)
		protected.GET("/folders/:folderId/versions/:version", versionHandler.GetFolderVersion)
		protected.POST("/files/:fileId/versions", versionHandler.CreateFileVersion)
		protected.GET("/files/:fileId/versions", versionHandler.ListFileVersions)
		protected.GET("/files/:fileId/versions/:version", versionHandler.GetFileVersion)
	}

	logger.Log.Info().Str("port", cfg.Port).Msg("Server starting")
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server stopped")
	}
}
