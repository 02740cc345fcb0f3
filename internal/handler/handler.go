package handler

import (
	"context"

	"recipe-share/internal/models"

	"github.com/gin-gonic/gin"
)

// RecipeService is the repository surface served over HTTP.
type RecipeService interface {
	ListRecipes(ctx context.Context) []models.Recipe
	SearchByIngredient(ctx context.Context, term string) []models.Recipe
	GetRecipe(ctx context.Context, id string) (models.Recipe, error)
	Create(ctx context.Context, title, description string, ingredients []string, authorID, imageURI string) models.Result
	Update(ctx context.Context, id, title, description string, ingredients []string, imageURI string) models.Result
	Delete(ctx context.Context, id string) models.Result
}

type Handler struct {
	recipes   RecipeService
	uploadDir string
}

// NewHandler serves recipes. Uploaded photos are staged in uploadDir until
// the repository has stored them.
func NewHandler(recipes RecipeService, uploadDir string) *Handler {
	return &Handler{
		recipes:   recipes,
		uploadDir: uploadDir,
	}
}

// RegisterRoutes mounts the recipe API. auth guards every mutating route.
func (h *Handler) RegisterRoutes(r gin.IRouter, auth gin.HandlerFunc) {
	r.GET("/recipes", h.ListRecipes)
	r.GET("/recipes/:id", h.GetRecipe)

	protected := r.Group("/recipes", auth)
	protected.POST("", h.CreateRecipe)
	protected.PUT("/:id", h.UpdateRecipe)
	protected.DELETE("/:id", h.DeleteRecipe)
}
