package recipes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"recipe-share/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const recipeColumns = `id::text, titulo, descripcion, ingredientes, chef_id, imagen_url, created_at`

const (
	listQuery = `SELECT ` + recipeColumns + ` FROM recetas ORDER BY created_at DESC`
	// Array containment matches whole elements only, never substrings.
	listContainingQuery = `SELECT ` + recipeColumns + ` FROM recetas WHERE ingredientes @> ARRAY[$1]::text[] ORDER BY created_at DESC`
	insertQuery         = `
		INSERT INTO recetas (titulo, descripcion, ingredientes, chef_id, imagen_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + recipeColumns
)

// PostgresTable stores recipes in the recetas table.
type PostgresTable struct {
	pool *pgxpool.Pool
}

func NewPostgresTable(pool *pgxpool.Pool) *PostgresTable {
	return &PostgresTable{pool: pool}
}

func (t *PostgresTable) List(ctx context.Context) ([]models.Recipe, error) {
	rows, err := t.pool.Query(ctx, listQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	return collectRecipes(rows)
}

func (t *PostgresTable) ListContaining(ctx context.Context, ingredient string) ([]models.Recipe, error) {
	rows, err := t.pool.Query(ctx, listContainingQuery, ingredient)
	if err != nil {
		return nil, fmt.Errorf("failed to search recipes: %w", err)
	}
	return collectRecipes(rows)
}

func (t *PostgresTable) Get(ctx context.Context, id string) (models.Recipe, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.Recipe{}, ErrNotFound
	}
	query := `SELECT ` + recipeColumns + ` FROM recetas WHERE id = $1`
	return scanOne(t.pool.QueryRow(ctx, query, id))
}

func (t *PostgresTable) Insert(ctx context.Context, recipe models.NewRecipe) (models.Recipe, error) {
	ingredients := recipe.Ingredients
	if ingredients == nil {
		ingredients = []string{}
	}
	row := t.pool.QueryRow(ctx, insertQuery, recipe.Title, recipe.Description, ingredients, recipe.ChefID, recipe.ImageURL)
	created, err := scanOne(row)
	if err != nil {
		return models.Recipe{}, fmt.Errorf("failed to insert recipe: %w", err)
	}
	return created, nil
}

func (t *PostgresTable) Update(ctx context.Context, id string, update models.RecipeUpdate) (models.Recipe, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.Recipe{}, ErrNotFound
	}
	if update.IsEmpty() {
		return t.Get(ctx, id)
	}

	query, args := buildUpdate(id, update)
	updated, err := scanOne(t.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.Recipe{}, err
		}
		return models.Recipe{}, fmt.Errorf("failed to update recipe: %w", err)
	}
	return updated, nil
}

func (t *PostgresTable) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		// Deleting a row that cannot exist matches nothing.
		return nil
	}
	if _, err := t.pool.Exec(ctx, `DELETE FROM recetas WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	return nil
}

// buildUpdate renders an UPDATE touching only the supplied columns.
func buildUpdate(id string, update models.RecipeUpdate) (string, []any) {
	var sets []string
	var args []any
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Title != nil {
		add("titulo", *update.Title)
	}
	if update.Description != nil {
		add("descripcion", *update.Description)
	}
	if update.Ingredients != nil {
		ingredients := *update.Ingredients
		if ingredients == nil {
			ingredients = []string{}
		}
		add("ingredientes", ingredients)
	}
	if update.ImageURL != nil {
		add("imagen_url", *update.ImageURL)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE recetas SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), recipeColumns)
	return query, args
}

func scanOne(row pgx.Row) (models.Recipe, error) {
	var r models.Recipe
	err := row.Scan(&r.ID, &r.Title, &r.Description, &r.Ingredients, &r.ChefID, &r.ImageURL, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Recipe{}, ErrNotFound
	}
	if err != nil {
		return models.Recipe{}, err
	}
	if r.Ingredients == nil {
		r.Ingredients = []string{}
	}
	return r, nil
}

func collectRecipes(rows pgx.Rows) ([]models.Recipe, error) {
	defer rows.Close()

	recipes := []models.Recipe{}
	for rows.Next() {
		r, err := scanOne(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		recipes = append(recipes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read recipes: %w", err)
	}
	return recipes, nil
}
