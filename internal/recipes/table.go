package recipes

import (
	"context"
	"errors"

	"recipe-share/internal/models"
)

// ErrNotFound is returned when a recipe id matches no row.
var ErrNotFound = errors.New("recipe not found")

// RecipeTable is the remote recipe table. List and ListContaining return rows
// ordered by created_at descending.
type RecipeTable interface {
	List(ctx context.Context) ([]models.Recipe, error)
	// ListContaining returns recipes whose ingredient list has an element equal to ingredient.
	ListContaining(ctx context.Context, ingredient string) ([]models.Recipe, error)
	Get(ctx context.Context, id string) (models.Recipe, error)
	Insert(ctx context.Context, recipe models.NewRecipe) (models.Recipe, error)
	Update(ctx context.Context, id string, update models.RecipeUpdate) (models.Recipe, error)
	Delete(ctx context.Context, id string) error
}
