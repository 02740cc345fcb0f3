package recipes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"recipe-share/internal/models"
	"recipe-share/internal/observability"
	redisclient "recipe-share/pkg/database/redis"
)

const recipeCacheTTL = 10 * time.Minute

// deletedMarker is cached in place of a deleted recipe until the TTL runs out.
const deletedMarker = "deleted"

// ObjectStore is the bucket the recipe photos are uploaded to.
type ObjectStore interface {
	UploadFile(ctx context.Context, bucketName, objectName string, reader io.Reader, size int64, contentType string) error
	PublicURL(bucketName, objectName string) string
}

// Cache holds single recipes looked up by id.
// Writers overwrite entries with Set; readers only fill empty keys with
// SetIfAbsent, so a slow read cannot replace a newer row.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	SetIfAbsent(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
}

// Publisher announces recipe and image events.
type Publisher interface {
	PublishJSON(ctx context.Context, routingKey string, v any) error
}

// Repository issues recipe reads and writes against the table and the photo
// bucket. Every method absorbs its errors: reads degrade to an empty list and
// writes report a Result.
type Repository struct {
	table   RecipeTable
	store   ObjectStore
	bucket  string
	fetcher Fetcher
	media   MediaProvider
	cache   Cache
	events  Publisher
	now     func() time.Time
	logger  *slog.Logger
	metrics *observability.Metrics
}

type Option func(*Repository)

func WithFetcher(f Fetcher) Option { return func(r *Repository) { r.fetcher = f } }

func WithMediaProvider(m MediaProvider) Option { return func(r *Repository) { r.media = m } }

func WithCache(c Cache) Option { return func(r *Repository) { r.cache = c } }

func WithPublisher(p Publisher) Option { return func(r *Repository) { r.events = p } }

func WithClock(now func() time.Time) Option { return func(r *Repository) { r.now = now } }

func WithLogger(l *slog.Logger) Option { return func(r *Repository) { r.logger = l } }

func WithMetrics(m *observability.Metrics) Option { return func(r *Repository) { r.metrics = m } }

func NewRepository(table RecipeTable, store ObjectStore, bucket string, opts ...Option) *Repository {
	r := &Repository{
		table:   table,
		store:   store,
		bucket:  bucket,
		fetcher: NewURIFetcher(),
		now:     time.Now,
		logger:  observability.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ListRecipes returns every recipe, newest first. A failed read yields an
// empty list.
func (r *Repository) ListRecipes(ctx context.Context) []models.Recipe {
	recipes, err := r.table.List(ctx)
	if err != nil {
		r.logger.Error("failed to list recipes", "error", err)
		r.metrics.IncReadFailure("list")
		return []models.Recipe{}
	}
	return recipes
}

// SearchByIngredient returns recipes listing term as one of their ingredients,
// newest first. Substrings do not match. A failed read yields an empty list.
func (r *Repository) SearchByIngredient(ctx context.Context, term string) []models.Recipe {
	recipes, err := r.table.ListContaining(ctx, term)
	if err != nil {
		r.logger.Error("failed to search recipes", "ingredient", term, "error", err)
		r.metrics.IncReadFailure("search")
		return []models.Recipe{}
	}
	return recipes
}

// GetRecipe looks a single recipe up, going through the cache when one is set.
func (r *Repository) GetRecipe(ctx context.Context, id string) (models.Recipe, error) {
	key := cacheKey(id)
	if r.cache != nil {
		if cached, err := r.cache.Get(ctx, key); err == nil {
			var recipe models.Recipe
			if err := json.Unmarshal([]byte(cached), &recipe); err == nil {
				return recipe, nil
			}
		} else if !errors.Is(err, redisclient.ErrCacheMiss) {
			r.logger.Warn("recipe cache read failed", "recipe_id", id, "error", err)
		}
	}

	recipe, err := r.table.Get(ctx, id)
	if err != nil {
		return models.Recipe{}, err
	}

	if r.cache != nil {
		if payload, err := json.Marshal(recipe); err == nil {
			if _, err := r.cache.SetIfAbsent(ctx, key, string(payload), recipeCacheTTL); err != nil {
				r.logger.Warn("recipe cache write failed", "recipe_id", id, "error", err)
			}
		}
	}
	return recipe, nil
}

// Create uploads the photo behind imageURI, if any, and inserts the recipe.
// A failed upload stores the recipe without a photo.
func (r *Repository) Create(ctx context.Context, title, description string, ingredients []string, authorID, imageURI string) models.Result {
	var imageURL *string
	if imageURI != "" {
		if url, ok := r.uploadImage(ctx, imageURI); ok {
			imageURL = &url
		}
	}

	created, err := r.table.Insert(ctx, models.NewRecipe{
		Title:       title,
		Description: description,
		Ingredients: ingredients,
		ChefID:      authorID,
		ImageURL:    imageURL,
	})
	if err != nil {
		r.logger.Error("failed to create recipe", "error", err)
		r.metrics.IncOperation("create", false)
		return models.Failed(err)
	}

	r.metrics.IncOperation("create", true)
	r.publish(ctx, models.RecipeEvent{Type: models.EventRecipeCreated, RecipeID: created.ID, ChefID: created.ChefID})
	return models.Succeeded(&created)
}

// Update overwrites the text fields of a recipe. The photo is replaced only
// when imageURI is set and its upload succeeds; otherwise it is left as is.
func (r *Repository) Update(ctx context.Context, id, title, description string, ingredients []string, imageURI string) models.Result {
	logger := observability.WithRecipe(r.logger, id)
	update := models.RecipeUpdate{
		Title:       &title,
		Description: &description,
		Ingredients: &ingredients,
	}

	if imageURI != "" {
		if url, ok := r.uploadImage(ctx, imageURI); ok {
			update.ImageURL = &url
			logger.Info("uploaded replacement image", "url", url)
		} else {
			logger.Warn("image upload failed, updating without it")
		}
	}

	updated, err := r.table.Update(ctx, id, update)
	if err != nil {
		logger.Error("failed to update recipe", "error", err)
		r.metrics.IncOperation("update", false)
		return models.Failed(err)
	}

	r.metrics.IncOperation("update", true)
	if payload, err := json.Marshal(updated); err == nil {
		r.writeCache(ctx, id, string(payload))
	}
	r.publish(ctx, models.RecipeEvent{Type: models.EventRecipeUpdated, RecipeID: id, ChefID: updated.ChefID})
	return models.Succeeded(&updated)
}

// Delete removes a recipe. Its photo stays in the bucket.
func (r *Repository) Delete(ctx context.Context, id string) models.Result {
	if err := r.table.Delete(ctx, id); err != nil {
		observability.WithRecipe(r.logger, id).Error("failed to delete recipe", "error", err)
		r.metrics.IncOperation("delete", false)
		return models.Failed(err)
	}

	r.metrics.IncOperation("delete", true)
	r.writeCache(ctx, id, deletedMarker)
	r.publish(ctx, models.RecipeEvent{Type: models.EventRecipeDeleted, RecipeID: id})
	return models.Result{Success: true}
}

// writeCache replaces the cached entry for id after a mutation.
func (r *Repository) writeCache(ctx context.Context, id, value string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Set(ctx, cacheKey(id), value, recipeCacheTTL); err != nil {
		r.logger.Warn("failed to refresh recipe cache", "recipe_id", id, "error", err)
	}
}

func (r *Repository) publish(ctx context.Context, event any) {
	if r.events == nil {
		return
	}
	var routingKey string
	switch e := event.(type) {
	case models.RecipeEvent:
		routingKey = string(e.Type)
	case models.ImageUploadedEvent:
		routingKey = string(models.EventImageUploaded)
	}
	if err := r.events.PublishJSON(ctx, routingKey, event); err != nil {
		r.logger.Warn("failed to publish event", "routing_key", routingKey, "error", err)
	}
}

func cacheKey(id string) string {
	return fmt.Sprintf("recipe:%s", id)
}
