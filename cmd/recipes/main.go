package main

import (
	"bufio"
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"time"

	"recipe-share/internal/config"
	"recipe-share/internal/controller"
	"recipe-share/internal/media"
	"recipe-share/internal/observability"
	"recipe-share/internal/queue/rabbitmq"
	"recipe-share/internal/recipes"
	minioclient "recipe-share/internal/storage/minio"
	"recipe-share/pkg/database/postgres"
)

func main() {
	user := flag.String("user", os.Getenv("RECIPES_USER"), "id of the signed-in chef")
	flag.Parse()
	if *user == "" {
		log.Fatal("A user id is required (-user or RECIPES_USER)")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	setupCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var table recipes.RecipeTable
	if cfg.TableBackend == "memory" {
		table = recipes.NewMemoryTable()
	} else {
		pgPool, err := postgres.NewClient(setupCtx, cfg.PostgresURL)
		if err != nil {
			log.Fatalf("Failed to connect to PostgreSQL: %v", err)
		}
		defer pgPool.Close()
		table = recipes.NewPostgresTable(pgPool)
	}

	minioClient, err := minioclient.NewClient(setupCtx, minioclient.Options{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		UseSSL:    cfg.MinioUseSSL,
		PublicURL: cfg.MinioPublicURL,
		Buckets:   []string{cfg.RecipeBucket},
	})
	if err != nil {
		log.Fatalf("Failed to connect to Minio: %v", err)
	}

	in := bufio.NewReader(os.Stdin)
	picker := media.NewTerminal(in, os.Stdout, cfg.GalleryDir, cfg.CameraCommand)
	opts := []recipes.Option{
		recipes.WithMediaProvider(picker),
		recipes.WithLogger(observability.NewLoggerTo(os.Stderr, "recipes-cli", cfg.LogLevel)),
	}

	// Thumbnails are optional for the terminal client.
	if rabbitClient, err := rabbitmq.NewClient(cfg.RabbitMQURL); err != nil {
		log.Printf("RabbitMQ unavailable, thumbnails disabled: %v", err)
	} else {
		defer rabbitClient.Close()
		opts = append(opts, recipes.WithPublisher(rabbitClient))
	}

	repo := recipes.NewRepository(table, minioClient, cfg.RecipeBucket, opts...)
	screen := newShell(controller.New(repo), *user, in, os.Stdout)
	err = screen.run(ctx)
	if closeErr := picker.Close(); closeErr != nil {
		log.Printf("Failed to remove picked photos: %v", closeErr)
	}
	if err != nil {
		log.Fatalf("Shell error: %v", err)
	}
}
