package recipes

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"recipe-share/internal/models"

	"github.com/google/uuid"
)

// MemoryTable is an in-process RecipeTable. It assigns ids and creation times
// the way the database does.
type MemoryTable struct {
	mu      sync.RWMutex
	rows    map[string]models.Recipe
	now     func() time.Time
	lastNow time.Time
}

func NewMemoryTable() *MemoryTable {
	return &MemoryTable{
		rows: make(map[string]models.Recipe),
		now:  time.Now,
	}
}

// Seed stores recipes verbatim, keeping their ids and timestamps.
func (t *MemoryTable) Seed(recipes ...models.Recipe) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, r := range recipes {
		t.rows[r.ID] = cloneRecipe(r)
	}
}

func (t *MemoryTable) List(ctx context.Context) ([]models.Recipe, error) {
	return t.filter(func(models.Recipe) bool { return true }), nil
}

func (t *MemoryTable) ListContaining(ctx context.Context, ingredient string) ([]models.Recipe, error) {
	return t.filter(func(r models.Recipe) bool {
		return slices.Contains(r.Ingredients, ingredient)
	}), nil
}

func (t *MemoryTable) Get(ctx context.Context, id string) (models.Recipe, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	r, ok := t.rows[id]
	if !ok {
		return models.Recipe{}, ErrNotFound
	}
	return cloneRecipe(r), nil
}

func (t *MemoryTable) Insert(ctx context.Context, recipe models.NewRecipe) (models.Recipe, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ingredients := append([]string{}, recipe.Ingredients...)
	r := models.Recipe{
		ID:          uuid.NewString(),
		Title:       recipe.Title,
		Description: recipe.Description,
		Ingredients: ingredients,
		ChefID:      recipe.ChefID,
		ImageURL:    cloneString(recipe.ImageURL),
		CreatedAt:   t.tick(),
	}
	t.rows[r.ID] = r
	return cloneRecipe(r), nil
}

func (t *MemoryTable) Update(ctx context.Context, id string, update models.RecipeUpdate) (models.Recipe, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	r, ok := t.rows[id]
	if !ok {
		return models.Recipe{}, ErrNotFound
	}
	update.Apply(&r)
	if r.Ingredients == nil {
		r.Ingredients = []string{}
	}
	t.rows[id] = r
	return cloneRecipe(r), nil
}

func (t *MemoryTable) Delete(ctx context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.rows, id)
	return nil
}

func (t *MemoryTable) filter(keep func(models.Recipe) bool) []models.Recipe {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := []models.Recipe{}
	for _, r := range t.rows {
		if keep(r) {
			out = append(out, cloneRecipe(r))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// tick returns a creation time strictly after the previous one so inserts
// keep their order even within one clock reading.
func (t *MemoryTable) tick() time.Time {
	now := t.now().UTC()
	if !now.After(t.lastNow) {
		now = t.lastNow.Add(time.Microsecond)
	}
	t.lastNow = now
	return now
}

func cloneRecipe(r models.Recipe) models.Recipe {
	r.Ingredients = append([]string{}, r.Ingredients...)
	r.ImageURL = cloneString(r.ImageURL)
	return r
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
