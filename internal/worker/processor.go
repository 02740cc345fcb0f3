package worker

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"

	"github.com/disintegration/imaging"
)

const ThumbnailWidth = 400

// ObjectStore reads originals and writes thumbnails.
type ObjectStore interface {
	DownloadFile(ctx context.Context, bucketName, objectName string) (io.ReadCloser, error)
	UploadFile(ctx context.Context, bucketName, objectName string, reader io.Reader, size int64, contentType string) error
}

type Processor struct {
	store           ObjectStore
	thumbnailBucket string
}

func NewProcessor(store ObjectStore, thumbnailBucket string) *Processor {
	return &Processor{
		store:           store,
		thumbnailBucket: thumbnailBucket,
	}
}

// ThumbnailName is the object name of the thumbnail for a recipe photo.
func ThumbnailName(objectName string) string {
	return "thumb-" + objectName
}

// ProcessImage writes a ThumbnailWidth-wide copy of a recipe photo to the
// thumbnail bucket, keeping the photo's format.
func (p *Processor) ProcessImage(ctx context.Context, bucketName, objectName string) error {
	log.Printf("Downloading image from Minio: %s/%s", bucketName, objectName)
	obj, err := p.store.DownloadFile(ctx, bucketName, objectName)
	if err != nil {
		return fmt.Errorf("failed to download image: %w", err)
	}
	defer obj.Close()

	img, err := imaging.Decode(obj, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("failed to decode image: %w", err)
	}

	if img.Bounds().Dx() > ThumbnailWidth {
		img = imaging.Resize(img, ThumbnailWidth, 0, imaging.Lanczos)
	}

	format, err := imaging.FormatFromFilename(objectName)
	if err != nil {
		format = imaging.JPEG
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, imaging.JPEGQuality(80)); err != nil {
		return fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	thumbName := ThumbnailName(objectName)
	log.Printf("Uploading thumbnail to Minio: %s/%s", p.thumbnailBucket, thumbName)
	err = p.store.UploadFile(ctx, p.thumbnailBucket, thumbName, &buf, int64(buf.Len()), contentType(format))
	if err != nil {
		return fmt.Errorf("failed to upload thumbnail: %w", err)
	}
	return nil
}

func contentType(format imaging.Format) string {
	switch format {
	case imaging.PNG:
		return "image/png"
	case imaging.GIF:
		return "image/gif"
	case imaging.BMP:
		return "image/bmp"
	case imaging.TIFF:
		return "image/tiff"
	default:
		return "image/jpeg"
	}
}
