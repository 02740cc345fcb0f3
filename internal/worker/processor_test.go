package worker

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type storedObject struct {
	data        []byte
	contentType string
}

type memoryStore struct {
	objects map[string]storedObject
}

func (s *memoryStore) DownloadFile(ctx context.Context, bucketName, objectName string) (io.ReadCloser, error) {
	obj, ok := s.objects[bucketName+"/"+objectName]
	if !ok {
		return nil, errors.New("no such object")
	}
	return io.NopCloser(bytes.NewReader(obj.data)), nil
}

func (s *memoryStore) UploadFile(ctx context.Context, bucketName, objectName string, reader io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.objects[bucketName+"/"+objectName] = storedObject{data: data, contentType: contentType}
	return nil
}

func encodeImage(t *testing.T, w, h int, format imaging.Format) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := imaging.New(w, h, color.NRGBA{R: 10, G: 120, B: 60, A: 255})
	require.NoError(t, imaging.Encode(&buf, img, format))
	return buf.Bytes()
}

func TestProcessImage_ResizesWidePhoto(t *testing.T) {
	store := &memoryStore{objects: map[string]storedObject{
		"recetas-fotos/1700000000000.jpg": {data: encodeImage(t, 1200, 900, imaging.JPEG)},
	}}
	p := NewProcessor(store, "thumbs")

	require.NoError(t, p.ProcessImage(context.Background(), "recetas-fotos", "1700000000000.jpg"))

	thumb, ok := store.objects["thumbs/thumb-1700000000000.jpg"]
	require.True(t, ok)
	assert.Equal(t, "image/jpeg", thumb.contentType)
	img, err := imaging.Decode(bytes.NewReader(thumb.data))
	require.NoError(t, err)
	assert.Equal(t, 400, img.Bounds().Dx())
	assert.Equal(t, 300, img.Bounds().Dy())
}

func TestProcessImage_KeepsSmallPhotoSizeAndFormat(t *testing.T) {
	store := &memoryStore{objects: map[string]storedObject{
		"recetas-fotos/1.png": {data: encodeImage(t, 200, 150, imaging.PNG)},
	}}
	p := NewProcessor(store, "thumbs")

	require.NoError(t, p.ProcessImage(context.Background(), "recetas-fotos", "1.png"))

	thumb := store.objects["thumbs/thumb-1.png"]
	assert.Equal(t, "image/png", thumb.contentType)
	img, err := imaging.Decode(bytes.NewReader(thumb.data))
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
}

func TestProcessImage_UnknownExtensionFallsBackToJPEG(t *testing.T) {
	store := &memoryStore{objects: map[string]storedObject{
		"recetas-fotos/1.heic": {data: encodeImage(t, 80, 60, imaging.PNG)},
	}}
	p := NewProcessor(store, "thumbs")

	require.NoError(t, p.ProcessImage(context.Background(), "recetas-fotos", "1.heic"))

	thumb := store.objects["thumbs/thumb-1.heic"]
	assert.Equal(t, "image/jpeg", thumb.contentType)
	_, format, err := image.Decode(bytes.NewReader(thumb.data))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
}

func TestProcessImage_Errors(t *testing.T) {
	store := &memoryStore{objects: map[string]storedObject{
		"recetas-fotos/broken.jpg": {data: []byte("not an image")},
	}}
	p := NewProcessor(store, "thumbs")

	assert.Error(t, p.ProcessImage(context.Background(), "recetas-fotos", "missing.jpg"))
	assert.Error(t, p.ProcessImage(context.Background(), "recetas-fotos", "broken.jpg"))
}
