package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"recipe-share/internal/models"
	"recipe-share/internal/recipes"
	"recipe-share/internal/storage/minio"
	"recipe-share/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	objects map[string][]byte
}

func (s *memoryStore) UploadFile(ctx context.Context, bucketName, objectName string, reader io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.objects[objectName] = data
	return nil
}

func (s *memoryStore) PublicURL(bucketName, objectName string) string {
	return minio.PublicObjectURL("http://storage.test", bucketName, objectName)
}

// testAuth trusts the X-User header in place of a Keycloak token.
func testAuth(c *gin.Context) {
	user := c.GetHeader("X-User")
	if user == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
		return
	}
	c.Set(security.UserKey, user)
	c.Next()
}

type fixture struct {
	router *gin.Engine
	table  *recipes.MemoryTable
	store  *memoryStore
	dir    string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	table := recipes.NewMemoryTable()
	store := &memoryStore{objects: map[string][]byte{}}
	repo := recipes.NewRepository(table, store, "recetas-fotos")
	dir := t.TempDir()

	r := gin.New()
	NewHandler(repo, dir).RegisterRoutes(r, testAuth)
	return &fixture{router: r, table: table, store: store, dir: dir}
}

type formFile struct {
	name string
	data []byte
}

func multipartBody(t *testing.T, fields map[string][]string, file *formFile) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for key, values := range fields {
		for _, v := range values {
			require.NoError(t, w.WriteField(key, v))
		}
	}
	if file != nil {
		part, err := w.CreateFormFile("image", file.name)
		require.NoError(t, err)
		_, err = part.Write(file.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func (f *fixture) do(t *testing.T, method, path, user string, fields map[string][]string, file *formFile) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	var contentType string
	if fields != nil || file != nil {
		body, contentType = multipartBody(t, fields, file)
	}
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if user != "" {
		req.Header.Set("X-User", user)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func pastaFields() map[string][]string {
	return map[string][]string{
		"titulo":       {"Pasta"},
		"descripcion":  {"Simple pasta"},
		"ingredientes": {"pasta", "salt"},
	}
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) models.Result {
	t.Helper()
	var res models.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res
}

func TestCreateRecipe(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/recipes", "user1", pastaFields(), nil)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	res := decodeResult(t, rec)
	assert.True(t, res.Success)
	assert.Equal(t, "user1", res.Recipe.ChefID)
	assert.Equal(t, []string{"pasta", "salt"}, res.Recipe.Ingredients)
	assert.Nil(t, res.Recipe.ImageURL)
}

func TestCreateRecipeWithImage(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/recipes", "user1", pastaFields(), &formFile{name: "dish.png", data: []byte("png-bytes")})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	res := decodeResult(t, rec)
	require.NotNil(t, res.Recipe.ImageURL)
	assert.True(t, strings.HasSuffix(*res.Recipe.ImageURL, ".png"))
	require.Len(t, f.store.objects, 1)
	for _, data := range f.store.objects {
		assert.Equal(t, []byte("png-bytes"), data)
	}

	staged, err := os.ReadDir(f.dir)
	require.NoError(t, err)
	assert.Empty(t, staged, "staged uploads are removed")
}

func TestCreateRecipeValidation(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/recipes", "user1", map[string][]string{"titulo": {"Pasta"}}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/recipes", "user1", pastaFields(), &formFile{name: "dish.gif", data: []byte("gif")})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/recipes", "", pastaFields(), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateRecipeTooLarge(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/recipes", "user1", pastaFields(), &formFile{name: "dish.jpg", data: make([]byte, MaxUploadSize+1)})
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/recipes", "user1", pastaFields(), &formFile{name: "dish.jpg", data: make([]byte, recipes.MaxImageSize+1)})
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, rec.Body.String())

	assert.Empty(t, f.store.objects)
}

func TestListAndSearchRecipes(t *testing.T) {
	f := newFixture(t)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	f.table.Seed(
		models.Recipe{ID: "salad", Ingredients: []string{"tomato"}, CreatedAt: base},
		models.Recipe{ID: "sauce", Ingredients: []string{"tomatoes"}, CreatedAt: base.Add(time.Hour)},
	)

	rec := f.do(t, http.MethodGet, "/recipes", "", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var all []models.Recipe
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	require.Len(t, all, 2)
	assert.Equal(t, "sauce", all[0].ID)

	rec = f.do(t, http.MethodGet, "/recipes?ingredient=tomato", "", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var found []models.Recipe
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &found))
	require.Len(t, found, 1)
	assert.Equal(t, "salad", found[0].ID)
}

func TestGetRecipe(t *testing.T) {
	f := newFixture(t)
	f.table.Seed(models.Recipe{ID: "r1", Title: "Soup", ChefID: "user1", Ingredients: []string{"water"}})

	rec := f.do(t, http.MethodGet, "/recipes/r1", "", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"titulo":"Soup"`)

	rec = f.do(t, http.MethodGet, "/recipes/missing", "", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateRecipeOnlyByAuthor(t *testing.T) {
	f := newFixture(t)
	f.table.Seed(models.Recipe{ID: "r1", Title: "Soup", Description: "Hot", ChefID: "user1", Ingredients: []string{"water"}})

	rec := f.do(t, http.MethodPut, "/recipes/r1", "intruder", pastaFields(), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodPut, "/recipes/r1", "user1", pastaFields(), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decodeResult(t, rec)
	assert.Equal(t, "Pasta", res.Recipe.Title)
	assert.Equal(t, "user1", res.Recipe.ChefID)

	rec = f.do(t, http.MethodPut, "/recipes/missing", "user1", pastaFields(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteRecipeOnlyByAuthor(t *testing.T) {
	f := newFixture(t)
	f.table.Seed(models.Recipe{ID: "r1", Title: "Soup", ChefID: "user1", Ingredients: []string{"water"}})

	rec := f.do(t, http.MethodDelete, "/recipes/r1", "intruder", nil, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodDelete, "/recipes/r1", "user1", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeResult(t, rec).Success)

	_, err := f.table.Get(context.Background(), "r1")
	assert.ErrorIs(t, err, recipes.ErrNotFound)
}
