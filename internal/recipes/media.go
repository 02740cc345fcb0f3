package recipes

import (
	"context"
)

const (
	libraryDeniedMessage = "We need permission to access your photos"
	cameraDeniedMessage  = "We need permission to use the camera"
)

// PickerOptions shape the image the picker hands back.
type PickerOptions struct {
	AllowsEditing bool
	// Aspect is the crop ratio as width, height.
	Aspect [2]int
	// Quality is the compression quality between 0 and 1.
	Quality float64
}

// RecipePhotoOptions is the crop used for every recipe photo.
var RecipePhotoOptions = PickerOptions{
	AllowsEditing: true,
	Aspect:        [2]int{4, 3},
	Quality:       0.8,
}

// MediaProvider is the device gallery and camera. Launch methods return the
// local URI of the chosen image, or canceled when the user backed out.
type MediaProvider interface {
	RequestMediaLibraryPermission(ctx context.Context) (bool, error)
	RequestCameraPermission(ctx context.Context) (bool, error)
	LaunchImageLibrary(ctx context.Context, opts PickerOptions) (uri string, canceled bool, err error)
	LaunchCamera(ctx context.Context, opts PickerOptions) (uri string, canceled bool, err error)
	// Notify shows a message to the user.
	Notify(message string)
}

// PickFromGallery asks for library access and lets the user choose a photo.
func (r *Repository) PickFromGallery(ctx context.Context) (string, bool) {
	if r.media == nil {
		return "", false
	}
	return r.pick(ctx, "gallery", r.media.RequestMediaLibraryPermission, r.media.LaunchImageLibrary, libraryDeniedMessage)
}

// TakePhoto asks for camera access and captures a photo.
func (r *Repository) TakePhoto(ctx context.Context) (string, bool) {
	if r.media == nil {
		return "", false
	}
	return r.pick(ctx, "camera", r.media.RequestCameraPermission, r.media.LaunchCamera, cameraDeniedMessage)
}

func (r *Repository) pick(
	ctx context.Context,
	source string,
	request func(context.Context) (bool, error),
	launch func(context.Context, PickerOptions) (string, bool, error),
	deniedMessage string,
) (string, bool) {
	granted, err := request(ctx)
	if err != nil {
		r.logger.Error("permission request failed", "source", source, "error", err)
		return "", false
	}
	if !granted {
		r.media.Notify(deniedMessage)
		return "", false
	}

	uri, canceled, err := launch(ctx, RecipePhotoOptions)
	if err != nil {
		r.logger.Error("image selection failed", "source", source, "error", err)
		return "", false
	}
	if canceled || uri == "" {
		return "", false
	}
	return uri, true
}
