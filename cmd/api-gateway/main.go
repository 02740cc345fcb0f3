package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recipe-share/internal/config"
	"recipe-share/internal/handler"
	"recipe-share/internal/observability"
	"recipe-share/internal/queue/rabbitmq"
	"recipe-share/internal/recipes"
	minioclient "recipe-share/internal/storage/minio"
	"recipe-share/pkg/database/postgres"
	redisclient "recipe-share/pkg/database/redis"
	"recipe-share/pkg/security"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("Starting API Gateway...")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var table recipes.RecipeTable
	if cfg.TableBackend == "memory" {
		log.Println("Using in-memory recipe table")
		table = recipes.NewMemoryTable()
	} else {
		// Initialize PostgreSQL
		log.Println("Connecting to PostgreSQL...")
		pgPool, err := postgres.NewClient(ctx, cfg.PostgresURL)
		if err != nil {
			log.Fatalf("Failed to connect to PostgreSQL: %v", err)
		}
		defer pgPool.Close()

		// Run migrations
		if err := postgres.RunMigrations(ctx, pgPool); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		table = recipes.NewPostgresTable(pgPool)
	}

	// Initialize Minio
	log.Println("Connecting to Minio...")
	minioClient, err := minioclient.NewClient(ctx, minioclient.Options{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		UseSSL:    cfg.MinioUseSSL,
		PublicURL: cfg.MinioPublicURL,
		Buckets:   []string{cfg.RecipeBucket, cfg.ThumbnailBucket},
	})
	if err != nil {
		log.Fatalf("Failed to connect to Minio: %v", err)
	}

	// Initialize Redis
	log.Println("Connecting to Redis...")
	redisClient, err := redisclient.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Initialize RabbitMQ
	log.Println("Connecting to RabbitMQ...")
	rabbitClient, err := rabbitmq.NewClient(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer rabbitClient.Close()

	keys, err := security.NewJWKSKeyfunc(cfg.JWKSURL())
	if err != nil {
		log.Fatalf("Failed to load Keycloak keys: %v", err)
	}

	repo := recipes.NewRepository(table, minioClient, cfg.RecipeBucket,
		recipes.WithCache(redisClient),
		recipes.WithPublisher(rabbitClient),
		recipes.WithLogger(observability.NewLogger("api-gateway")),
		recipes.WithMetrics(observability.NewMetrics(nil)),
	)

	uploadDir, err := os.MkdirTemp("", "recipe-uploads-")
	if err != nil {
		log.Fatalf("Failed to create upload directory: %v", err)
	}
	defer os.RemoveAll(uploadDir)

	router := gin.Default()
	router.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	router.GET("/metrics", gin.WrapH(observability.MetricsHandler()))
	handler.NewHandler(repo, uploadDir).RegisterRoutes(router, security.AuthMiddleware(keys, cfg.KeycloakClientID))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("API Gateway listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down gracefully...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
