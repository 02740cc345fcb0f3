package media

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"recipe-share/internal/recipes"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeImage(t *testing.T, path string, w, h int) {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 200, G: 80, B: 40, A: 255})
	require.NoError(t, imaging.Save(img, path))
}

func newTerminal(t *testing.T, input string, galleryDir string) (*Terminal, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	term := NewTerminal(strings.NewReader(input), &out, galleryDir, "")
	term.baseDir = t.TempDir()
	return term, &out
}

func pathFromURI(t *testing.T, uri string) string {
	t.Helper()
	u, err := url.Parse(uri)
	require.NoError(t, err)
	require.Equal(t, "file", u.Scheme)
	return u.Path
}

func TestCropToAspect(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		wantW, wantH int
	}{
		{"wide", 1600, 900, 1200, 900},
		{"tall", 900, 1600, 900, 675},
		{"already 4:3", 800, 600, 800, 600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := image.NewNRGBA(image.Rect(0, 0, tt.w, tt.h))
			got := CropToAspect(img, 4, 3).Bounds()
			assert.Equal(t, tt.wantW, got.Dx())
			assert.Equal(t, tt.wantH, got.Dy())
		})
	}
}

func TestJPEGQuality(t *testing.T) {
	assert.Equal(t, 80, JPEGQuality(0.8))
	assert.Equal(t, 100, JPEGQuality(1.5))
	assert.Equal(t, 1, JPEGQuality(0))
}

func TestTerminal_PermissionPrompts(t *testing.T) {
	term, out := newTerminal(t, "y\nno\n", t.TempDir())

	granted, err := term.RequestMediaLibraryPermission(context.Background())
	require.NoError(t, err)
	assert.True(t, granted)

	// Granted access is remembered and not asked again.
	granted, err = term.RequestMediaLibraryPermission(context.Background())
	require.NoError(t, err)
	assert.True(t, granted)

	granted, err = term.RequestCameraPermission(context.Background())
	require.NoError(t, err)
	assert.False(t, granted)

	assert.Equal(t, 1, strings.Count(out.String(), "Allow access to photos"))
}

func TestTerminal_LaunchImageLibraryCropsSelection(t *testing.T) {
	gallery := t.TempDir()
	writeImage(t, filepath.Join(gallery, "a-wide.png"), 1600, 900)
	writeImage(t, filepath.Join(gallery, "b-square.jpg"), 500, 500)
	require.NoError(t, os.WriteFile(filepath.Join(gallery, "notes.txt"), []byte("x"), 0o600))
	term, out := newTerminal(t, "1\n", gallery)

	uri, canceled, err := term.LaunchImageLibrary(context.Background(), recipes.RecipePhotoOptions)

	require.NoError(t, err)
	assert.False(t, canceled)
	assert.True(t, strings.HasSuffix(uri, ".jpg"))
	assert.Contains(t, out.String(), "1) a-wide.png")
	assert.NotContains(t, out.String(), "notes.txt")

	img, err := imaging.Open(pathFromURI(t, uri))
	require.NoError(t, err)
	assert.Equal(t, 1200, img.Bounds().Dx())
	assert.Equal(t, 900, img.Bounds().Dy())
}

func TestTerminal_CloseRemovesPickedPhotos(t *testing.T) {
	gallery := t.TempDir()
	source := filepath.Join(gallery, "a.png")
	writeImage(t, source, 80, 60)
	term, _ := newTerminal(t, "1\n1\n", gallery)

	first, _, err := term.LaunchImageLibrary(context.Background(), recipes.RecipePhotoOptions)
	require.NoError(t, err)
	second, _, err := term.LaunchImageLibrary(context.Background(), recipes.RecipePhotoOptions)
	require.NoError(t, err)
	assert.FileExists(t, pathFromURI(t, first))
	assert.FileExists(t, pathFromURI(t, second))

	require.NoError(t, term.Close())

	assert.NoFileExists(t, pathFromURI(t, first))
	assert.NoFileExists(t, pathFromURI(t, second))
	assert.FileExists(t, source)
	entries, err := os.ReadDir(term.baseDir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	require.NoError(t, term.Close())
}

func TestTerminal_LaunchImageLibraryCancel(t *testing.T) {
	gallery := t.TempDir()
	writeImage(t, filepath.Join(gallery, "a.png"), 40, 30)

	for _, input := range []string{"\n", "7\n", ""} {
		term, _ := newTerminal(t, input, gallery)
		uri, canceled, err := term.LaunchImageLibrary(context.Background(), recipes.RecipePhotoOptions)
		require.NoError(t, err)
		assert.True(t, canceled, "input %q", input)
		assert.Empty(t, uri)
	}
}

func TestTerminal_LaunchImageLibraryWithoutEditing(t *testing.T) {
	gallery := t.TempDir()
	path := filepath.Join(gallery, "a.png")
	writeImage(t, path, 40, 30)
	term, _ := newTerminal(t, "1\n", gallery)

	uri, canceled, err := term.LaunchImageLibrary(context.Background(), recipes.PickerOptions{})

	require.NoError(t, err)
	assert.False(t, canceled)
	assert.Equal(t, path, pathFromURI(t, uri))
}

func TestTerminal_LaunchCameraWithoutCommand(t *testing.T) {
	term, _ := newTerminal(t, "", t.TempDir())

	_, _, err := term.LaunchCamera(context.Background(), recipes.RecipePhotoOptions)

	assert.ErrorIs(t, err, ErrNoCamera)
}

func TestTerminal_Notify(t *testing.T) {
	term, out := newTerminal(t, "", t.TempDir())

	term.Notify("We need permission to use the camera")

	assert.Equal(t, "We need permission to use the camera\n", out.String())
}
