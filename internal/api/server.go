package api

import (
	"context"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"backoffice/internal/app/afip"
	"backoffice/internal/app/config"
	"backoffice/internal/app/dsn"
	"backoffice/internal/app/handler"
	"backoffice/internal/app/invoicing"
	"backoffice/internal/app/middleware"
	"backoffice/internal/app/redis"
	"backoffice/internal/app/repository"
	"backoffice/internal/app/storage"
	"backoffice/internal/pkg"
)

// StartServer builds the whole dependency graph and runs the HTTP server.
func StartServer() {
	logrus.Info("Starting server")

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	repo, err := repository.New(dsn.FromEnv())
	if err != nil {
		logrus.Fatalf("failed to init repository: %v", err)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logrus.Fatalf("failed to connect to redis: %v", err)
	}

	minioClient, err := storage.NewMinIOClient(
		cfg.Minio.Endpoint,
		cfg.Minio.AccessKey,
		cfg.Minio.SecretKey,
		cfg.Minio.Bucket,
		cfg.Minio.UseSSL,
	)
	var invoicingStore invoicing.ObjectStore
	var qrStore handler.ObjectStore
	if err != nil {
		// vouchers can be issued without QR storage
		logrus.Warnf("minio unavailable, QR images will not be stored: %v", err)
	} else {
		invoicingStore = minioClient
		qrStore = minioClient
	}

	issuer := afip.NewClient(cfg.AFIP)
	invoicingService := invoicing.NewService(repo, issuer, invoicingStore)

	authHandler := handler.NewAuthHandler(repo, redisClient, cfg)
	apiHandler := handler.NewAPIHandler(repo, invoicingService, qrStore, authHandler)
	authMiddleware := middleware.NewAuthMiddleware(redisClient, cfg)

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	app := pkg.NewApp(cfg, router, apiHandler, authMiddleware)
	app.RunApp()

	logrus.Info("Server down")
}
