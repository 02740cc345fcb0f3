package models

import (
	"time"
)

// Recipe mirrors a row of the recetas table.
type Recipe struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"titulo" db:"titulo"`
	Description string    `json:"descripcion" db:"descripcion"`
	Ingredients []string  `json:"ingredientes" db:"ingredientes"`
	ChefID      string    `json:"chef_id" db:"chef_id"`
	ImageURL    *string   `json:"imagen_url" db:"imagen_url"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// NewRecipe carries the client-supplied columns of an insert. The table assigns
// the id and created_at.
type NewRecipe struct {
	Title       string
	Description string
	Ingredients []string
	ChefID      string
	ImageURL    *string
}

// RecipeUpdate is a partial update. A nil field is left untouched.
type RecipeUpdate struct {
	Title       *string
	Description *string
	Ingredients *[]string
	ImageURL    *string
}

// IsEmpty reports whether the update sets no column at all.
func (u RecipeUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.Ingredients == nil && u.ImageURL == nil
}

// Apply copies the supplied fields onto r.
func (u RecipeUpdate) Apply(r *Recipe) {
	if u.Title != nil {
		r.Title = *u.Title
	}
	if u.Description != nil {
		r.Description = *u.Description
	}
	if u.Ingredients != nil {
		r.Ingredients = append([]string(nil), (*u.Ingredients)...)
	}
	if u.ImageURL != nil {
		url := *u.ImageURL
		r.ImageURL = &url
	}
}

// Result is the outcome of a mutating repository call. Error holds the message
// shown to the user when Success is false.
type Result struct {
	Success bool    `json:"success"`
	Recipe  *Recipe `json:"receta,omitempty"`
	Error   string  `json:"error,omitempty"`
}

func Succeeded(recipe *Recipe) Result {
	return Result{Success: true, Recipe: recipe}
}

func Failed(err error) Result {
	return Result{Success: false, Error: err.Error()}
}

type EventType string

const (
	EventRecipeCreated EventType = "recipe.created"
	EventRecipeUpdated EventType = "recipe.updated"
	EventRecipeDeleted EventType = "recipe.deleted"
	EventImageUploaded EventType = "image.uploaded"
)

// RecipeEvent is published after a successful mutation.
type RecipeEvent struct {
	Type     EventType `json:"type"`
	RecipeID string    `json:"recipe_id"`
	ChefID   string    `json:"chef_id,omitempty"`
}

// ImageUploadedEvent is published after a photo lands in the bucket.
type ImageUploadedEvent struct {
	BucketName string `json:"bucket_name"`
	ObjectName string `json:"object_name"`
}
