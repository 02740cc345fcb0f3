package postgres

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool sizing for the recipe services. The API and the CLI are the only
// writers and recipe rows are small.
const (
	maxConns        = 10
	minConns        = 2
	maxConnLifetime = time.Hour
	maxConnIdleTime = 30 * time.Minute
	pingTimeout     = 5 * time.Second
)

// NewClient opens a pool against connectionString and checks it answers.
func NewClient(ctx context.Context, connectionString string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres config: %w", err)
	}
	cfg.MaxConns = maxConns
	cfg.MinConns = minConns
	cfg.MaxConnLifetime = maxConnLifetime
	cfg.MaxConnIdleTime = maxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return pool, nil
}

// RunMigrations creates the recetas table and its indexes. Every statement is
// idempotent, so it is safe on each start.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	for i, m := range migrations {
		if _, err := pool.Exec(ctx, m.query); err != nil {
			return fmt.Errorf("migration %d (%s): %w", i+1, m.name, err)
		}
	}
	log.Printf("Applied %d recipe migrations", len(migrations))
	return nil
}

type migration struct {
	name  string
	query string
}

var migrations = []migration{
	{"pgcrypto", `CREATE EXTENSION IF NOT EXISTS pgcrypto`},
	{"recetas", `
	CREATE TABLE IF NOT EXISTS recetas (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		titulo TEXT NOT NULL,
		descripcion TEXT NOT NULL,
		ingredientes TEXT[] NOT NULL DEFAULT '{}',
		chef_id TEXT NOT NULL,
		imagen_url TEXT,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
	)
	`},
	{"recetas_created_at_idx", `CREATE INDEX IF NOT EXISTS recetas_created_at_idx ON recetas (created_at DESC)`},
	{"recetas_ingredientes_idx", `CREATE INDEX IF NOT EXISTS recetas_ingredientes_idx ON recetas USING GIN (ingredientes)`},
}
