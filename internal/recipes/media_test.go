package recipes

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeMedia struct {
	libraryGranted bool
	cameraGranted  bool
	uri            string
	canceled       bool
	err            error

	notified []string
	lastOpts PickerOptions
	launched string
}

func (m *fakeMedia) RequestMediaLibraryPermission(context.Context) (bool, error) {
	return m.libraryGranted, nil
}

func (m *fakeMedia) RequestCameraPermission(context.Context) (bool, error) {
	return m.cameraGranted, nil
}

func (m *fakeMedia) LaunchImageLibrary(_ context.Context, opts PickerOptions) (string, bool, error) {
	m.launched = "library"
	m.lastOpts = opts
	return m.uri, m.canceled, m.err
}

func (m *fakeMedia) LaunchCamera(_ context.Context, opts PickerOptions) (string, bool, error) {
	m.launched = "camera"
	m.lastOpts = opts
	return m.uri, m.canceled, m.err
}

func (m *fakeMedia) Notify(message string) {
	m.notified = append(m.notified, message)
}

func TestRepository_PickFromGallery(t *testing.T) {
	media := &fakeMedia{libraryGranted: true, uri: "file:///tmp/picked.jpg"}
	repo, _, _ := newTestRepository(t, WithMediaProvider(media))

	uri, ok := repo.PickFromGallery(context.Background())

	assert.True(t, ok)
	assert.Equal(t, "file:///tmp/picked.jpg", uri)
	assert.Equal(t, "library", media.launched)
	assert.Equal(t, RecipePhotoOptions, media.lastOpts)
	assert.Equal(t, [2]int{4, 3}, media.lastOpts.Aspect)
	assert.Equal(t, 0.8, media.lastOpts.Quality)
}

func TestRepository_PickFromGalleryDenied(t *testing.T) {
	media := &fakeMedia{libraryGranted: false, uri: "file:///tmp/picked.jpg"}
	repo, _, _ := newTestRepository(t, WithMediaProvider(media))

	uri, ok := repo.PickFromGallery(context.Background())

	assert.False(t, ok)
	assert.Empty(t, uri)
	assert.Empty(t, media.launched)
	assert.Equal(t, []string{libraryDeniedMessage}, media.notified)
}

func TestRepository_TakePhoto(t *testing.T) {
	media := &fakeMedia{cameraGranted: true, uri: "file:///tmp/shot.jpg"}
	repo, _, _ := newTestRepository(t, WithMediaProvider(media))

	uri, ok := repo.TakePhoto(context.Background())

	assert.True(t, ok)
	assert.Equal(t, "file:///tmp/shot.jpg", uri)
	assert.Equal(t, "camera", media.launched)
}

func TestRepository_TakePhotoDenied(t *testing.T) {
	media := &fakeMedia{libraryGranted: true}
	repo, _, _ := newTestRepository(t, WithMediaProvider(media))

	_, ok := repo.TakePhoto(context.Background())

	assert.False(t, ok)
	assert.Equal(t, []string{cameraDeniedMessage}, media.notified)
}

func TestRepository_PickCanceledOrFailed(t *testing.T) {
	tests := []struct {
		name  string
		media *fakeMedia
	}{
		{"canceled", &fakeMedia{libraryGranted: true, uri: "file:///tmp/x.jpg", canceled: true}},
		{"error", &fakeMedia{libraryGranted: true, err: errors.New("picker crashed")}},
		{"empty uri", &fakeMedia{libraryGranted: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, _, _ := newTestRepository(t, WithMediaProvider(tt.media))
			uri, ok := repo.PickFromGallery(context.Background())
			assert.False(t, ok)
			assert.Empty(t, uri)
			assert.Empty(t, tt.media.notified)
		})
	}
}

func TestRepository_PickWithoutProvider(t *testing.T) {
	repo, _, _ := newTestRepository(t)

	_, ok := repo.PickFromGallery(context.Background())
	assert.False(t, ok)
	_, ok = repo.TakePhoto(context.Background())
	assert.False(t, ok)
}
