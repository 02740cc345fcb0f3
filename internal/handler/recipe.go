package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"recipe-share/internal/models"
	"recipe-share/internal/recipes"
	"recipe-share/pkg/security"

	"github.com/gin-gonic/gin"
)

type recipeForm struct {
	Title       string
	Description string
	Ingredients []string
}

func (h *Handler) ListRecipes(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if term := c.Query("ingredient"); term != "" {
		c.JSON(http.StatusOK, h.recipes.SearchByIngredient(ctx, term))
		return
	}
	c.JSON(http.StatusOK, h.recipes.ListRecipes(ctx))
}

func (h *Handler) GetRecipe(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	recipe, err := h.recipes.GetRecipe(ctx, c.Param("id"))
	if errors.Is(err, recipes.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load recipe"})
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *Handler) CreateRecipe(c *gin.Context) {
	form, ok := h.bindForm(c)
	if !ok {
		return
	}
	imageURI, cleanup, ok := h.stageImage(c)
	if !ok {
		return
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	res := h.recipes.Create(ctx, form.Title, form.Description, form.Ingredients, security.UserID(c), imageURI)
	respondResult(c, res, http.StatusCreated)
}

func (h *Handler) UpdateRecipe(c *gin.Context) {
	id := c.Param("id")
	if !h.authorize(c, id) {
		return
	}
	form, ok := h.bindForm(c)
	if !ok {
		return
	}
	imageURI, cleanup, ok := h.stageImage(c)
	if !ok {
		return
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	res := h.recipes.Update(ctx, id, form.Title, form.Description, form.Ingredients, imageURI)
	respondResult(c, res, http.StatusOK)
}

func (h *Handler) DeleteRecipe(c *gin.Context) {
	id := c.Param("id")
	if !h.authorize(c, id) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	respondResult(c, h.recipes.Delete(ctx, id), http.StatusOK)
}

// authorize lets only the recipe's author change it.
func (h *Handler) authorize(c *gin.Context, id string) bool {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	recipe, err := h.recipes.GetRecipe(ctx, id)
	if errors.Is(err, recipes.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load recipe"})
		return false
	}
	if recipe.ChefID != security.UserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not allowed to edit this recipe"})
		return false
	}
	return true
}

func (h *Handler) bindForm(c *gin.Context) (recipeForm, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadSize)
	if err := parseForm(c.Request); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Request body too large"})
		} else {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid form"})
		}
		return recipeForm{}, false
	}

	form := recipeForm{
		Title:       strings.TrimSpace(c.PostForm("titulo")),
		Description: strings.TrimSpace(c.PostForm("descripcion")),
	}
	for _, ingredient := range c.PostFormArray("ingredientes") {
		if ingredient = strings.TrimSpace(ingredient); ingredient != "" {
			form.Ingredients = append(form.Ingredients, ingredient)
		}
	}

	if form.Title == "" || form.Description == "" || len(form.Ingredients) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Complete all fields"})
		return recipeForm{}, false
	}
	return form, true
}

// parseForm reads the request form up front so size errors are not lost.
func parseForm(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.ParseMultipartForm(multipartMemory)
	}
	return r.ParseForm()
}

func respondResult(c *gin.Context, res models.Result, successStatus int) {
	if !res.Success {
		c.JSON(http.StatusBadGateway, res)
		return
	}
	c.JSON(successStatus, res)
}
