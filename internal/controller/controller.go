// Package controller holds the recipe list shown by a screen and keeps it in
// step with the repository.
package controller

import (
	"context"
	"sync"

	"recipe-share/internal/models"
)

// Repository is the subset of recipes.Repository the controller drives.
type Repository interface {
	ListRecipes(ctx context.Context) []models.Recipe
	SearchByIngredient(ctx context.Context, term string) []models.Recipe
	Create(ctx context.Context, title, description string, ingredients []string, authorID, imageURI string) models.Result
	Update(ctx context.Context, id, title, description string, ingredients []string, imageURI string) models.Result
	Delete(ctx context.Context, id string) models.Result
	PickFromGallery(ctx context.Context) (string, bool)
	TakePhoto(ctx context.Context) (string, bool)
}

// RecipeListController owns the recipe list and loading flag of one screen.
//
// Every read is numbered. Starting a read cancels the one in flight, and a
// response is applied only if no newer read was issued after it, so a slow
// stale response never overwrites a fresher list.
type RecipeListController struct {
	repo Repository

	mu      sync.Mutex
	recipes []models.Recipe
	loading bool
	seq     uint64
	cancel  context.CancelFunc
}

// New returns a controller in the loading state. The owner is expected to
// call Refresh when the screen is shown.
func New(repo Repository) *RecipeListController {
	return &RecipeListController{
		repo:    repo,
		recipes: []models.Recipe{},
		loading: true,
	}
}

// Recipes returns a copy of the held list.
func (c *RecipeListController) Recipes() []models.Recipe {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Recipe{}, c.recipes...)
}

func (c *RecipeListController) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Find looks a recipe up in the held list.
func (c *RecipeListController) Find(id string) (models.Recipe, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range c.recipes {
		if r.ID == id {
			return r, true
		}
	}
	return models.Recipe{}, false
}

// Refresh replaces the held list with every recipe.
func (c *RecipeListController) Refresh(ctx context.Context) {
	c.load(ctx, c.repo.ListRecipes)
}

// Search replaces the held list with the recipes containing term.
func (c *RecipeListController) Search(ctx context.Context, term string) {
	c.load(ctx, func(ctx context.Context) []models.Recipe {
		return c.repo.SearchByIngredient(ctx, term)
	})
}

func (c *RecipeListController) Create(ctx context.Context, title, description string, ingredients []string, authorID, imageURI string) models.Result {
	res := c.repo.Create(ctx, title, description, ingredients, authorID, imageURI)
	if res.Success {
		c.Refresh(ctx)
	}
	return res
}

func (c *RecipeListController) Update(ctx context.Context, id, title, description string, ingredients []string, imageURI string) models.Result {
	res := c.repo.Update(ctx, id, title, description, ingredients, imageURI)
	if res.Success {
		c.Refresh(ctx)
	}
	return res
}

func (c *RecipeListController) Delete(ctx context.Context, id string) models.Result {
	res := c.repo.Delete(ctx, id)
	if res.Success {
		c.Refresh(ctx)
	}
	return res
}

func (c *RecipeListController) PickFromGallery(ctx context.Context) (string, bool) {
	return c.repo.PickFromGallery(ctx)
}

func (c *RecipeListController) TakePhoto(ctx context.Context) (string, bool) {
	return c.repo.TakePhoto(ctx)
}

// load runs fetch and applies its result if it is still the latest read. It
// reports whether the result was applied.
func (c *RecipeListController) load(ctx context.Context, fetch func(context.Context) []models.Recipe) bool {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.seq++
	seq := c.seq
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.loading = true
	c.mu.Unlock()

	defer cancel()
	recipes := fetch(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq {
		return false
	}
	if recipes == nil {
		recipes = []models.Recipe{}
	}
	c.recipes = recipes
	c.loading = false
	c.cancel = nil
	return true
}
