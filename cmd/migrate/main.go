package main

import (
	"context"
	"log"
	"time"

	"recipe-share/internal/config"
	"recipe-share/pkg/database/postgres"
)

// migrate prepares the recetas table for the api-gateway and the terminal client.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.TableBackend == "memory" {
		log.Println("TABLE_BACKEND=memory, nothing to migrate")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewClient(ctx, cfg.PostgresURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		log.Fatalf("Failed to migrate recetas: %v", err)
	}
}
