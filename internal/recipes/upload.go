package recipes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"recipe-share/internal/models"
)

var errNoExtension = errors.New("image uri has no file extension")

// uploadImage stores the image behind localURI as <epoch-millis>.<ext> and
// returns its public URL. Any failure is logged and reported as !ok.
func (r *Repository) uploadImage(ctx context.Context, localURI string) (string, bool) {
	objectName, ext, err := r.objectName(localURI)
	if err == nil {
		err = r.putImage(ctx, localURI, objectName, ext)
	}
	if err != nil {
		r.logger.Error("failed to upload image", "uri", localURI, "error", err)
		r.metrics.IncUpload(false)
		return "", false
	}

	r.metrics.IncUpload(true)
	r.publish(ctx, models.ImageUploadedEvent{BucketName: r.bucket, ObjectName: objectName})
	return r.store.PublicURL(r.bucket, objectName), true
}

func (r *Repository) putImage(ctx context.Context, localURI, objectName, ext string) error {
	data, err := r.fetcher.Fetch(ctx, localURI)
	if err != nil {
		return err
	}
	return r.store.UploadFile(ctx, r.bucket, objectName, bytes.NewReader(data), int64(len(data)), "image/"+ext)
}

func (r *Repository) objectName(localURI string) (string, string, error) {
	ext, err := imageExtension(localURI)
	if err != nil {
		return "", "", err
	}
	return fmt.Sprintf("%d.%s", r.now().UnixMilli(), ext), ext, nil
}

// imageExtension returns the text after the last dot of the URI's final path
// segment, e.g. "jpg" for file:///cache/picker/IMG_01.jpg. Bare paths are
// taken literally, so '#' and '?' stay part of the file name.
func imageExtension(uri string) (string, error) {
	p := uri
	if u, err := url.Parse(uri); err == nil && u.Scheme != "" {
		p = u.Path
	}
	base := path.Base(p)
	i := strings.LastIndex(base, ".")
	if i < 0 || i == len(base)-1 {
		return "", fmt.Errorf("%w: %s", errNoExtension, uri)
	}
	return base[i+1:], nil
}
