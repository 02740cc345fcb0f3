// Package media provides a terminal-driven gallery and camera for the recipe
// client.
package media

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"recipe-share/internal/recipes"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// OutputPlaceholder is replaced with the capture path in the camera command.
const OutputPlaceholder = "{output}"

var ErrNoCamera = errors.New("no camera command configured")

var imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

// Terminal asks for permissions and selections on a line-oriented terminal.
// The gallery is a directory of images; the camera is an external command
// that writes a photo to the path substituted for OutputPlaceholder.
type Terminal struct {
	in            *bufio.Reader
	out           io.Writer
	galleryDir    string
	cameraCommand string
	baseDir       string
	workDir       string

	libraryGranted bool
	cameraGranted  bool
}

func NewTerminal(in io.Reader, out io.Writer, galleryDir, cameraCommand string) *Terminal {
	return &Terminal{
		in:            bufio.NewReader(in),
		out:           out,
		galleryDir:    galleryDir,
		cameraCommand: cameraCommand,
		baseDir:       os.TempDir(),
	}
}

func (t *Terminal) RequestMediaLibraryPermission(ctx context.Context) (bool, error) {
	if t.libraryGranted {
		return true, nil
	}
	granted, err := t.confirm(fmt.Sprintf("Allow access to photos in %s? [y/N] ", t.galleryDir))
	t.libraryGranted = granted
	return granted, err
}

func (t *Terminal) RequestCameraPermission(ctx context.Context) (bool, error) {
	if t.cameraGranted {
		return true, nil
	}
	granted, err := t.confirm("Allow access to the camera? [y/N] ")
	t.cameraGranted = granted
	return granted, err
}

func (t *Terminal) LaunchImageLibrary(ctx context.Context, opts recipes.PickerOptions) (string, bool, error) {
	files, err := listImages(t.galleryDir)
	if err != nil {
		return "", false, err
	}
	if len(files) == 0 {
		fmt.Fprintf(t.out, "No images found in %s\n", t.galleryDir)
		return "", true, nil
	}

	for i, f := range files {
		fmt.Fprintf(t.out, "  %d) %s\n", i+1, filepath.Base(f))
	}
	answer, err := t.prompt("Choose a photo (empty to cancel): ")
	if err != nil {
		return "", false, err
	}
	if answer == "" {
		return "", true, nil
	}
	n, err := strconv.Atoi(answer)
	if err != nil || n < 1 || n > len(files) {
		fmt.Fprintln(t.out, "Invalid choice")
		return "", true, nil
	}

	uri, err := t.finish(files[n-1], opts)
	return uri, false, err
}

func (t *Terminal) LaunchCamera(ctx context.Context, opts recipes.PickerOptions) (string, bool, error) {
	args := strings.Fields(t.cameraCommand)
	if len(args) == 0 {
		return "", false, ErrNoCamera
	}

	dir, err := t.scratchDir()
	if err != nil {
		return "", false, err
	}
	capture := filepath.Join(dir, "capture-"+uuid.NewString()+".jpg")
	defer os.Remove(capture)
	for i, a := range args {
		args[i] = strings.ReplaceAll(a, OutputPlaceholder, capture)
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdout = io.Discard
	cmd.Stderr = t.out
	if err := cmd.Run(); err != nil {
		return "", false, fmt.Errorf("failed to run camera command: %w", err)
	}
	if _, err := os.Stat(capture); err != nil {
		// The command exited cleanly without writing a photo.
		return "", true, nil
	}

	uri, err := t.finish(capture, opts)
	return uri, false, err
}

func (t *Terminal) Notify(message string) {
	fmt.Fprintln(t.out, message)
}

// Close removes the photos picked during the session. URIs returned
// earlier stop resolving once it runs.
func (t *Terminal) Close() error {
	if t.workDir == "" {
		return nil
	}
	err := os.RemoveAll(t.workDir)
	t.workDir = ""
	return err
}

// scratchDir holds captures and edited picks until Close.
func (t *Terminal) scratchDir() (string, error) {
	if t.workDir != "" {
		return t.workDir, nil
	}
	dir, err := os.MkdirTemp(t.baseDir, "recipes-picker-")
	if err != nil {
		return "", fmt.Errorf("failed to create picker directory: %w", err)
	}
	t.workDir = dir
	return dir, nil
}

// finish applies the picker edits and returns a file URI for the result.
func (t *Terminal) finish(path string, opts recipes.PickerOptions) (string, error) {
	if !opts.AllowsEditing {
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", err
		}
		return fileURI(abs), nil
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("failed to open image: %w", err)
	}
	img = CropToAspect(img, opts.Aspect[0], opts.Aspect[1])

	dir, err := t.scratchDir()
	if err != nil {
		return "", err
	}
	out := filepath.Join(dir, "picked-"+uuid.NewString()+".jpg")
	if err := imaging.Save(img, out, imaging.JPEGQuality(JPEGQuality(opts.Quality))); err != nil {
		return "", fmt.Errorf("failed to save edited image: %w", err)
	}
	return fileURI(out), nil
}

func (t *Terminal) confirm(question string) (bool, error) {
	answer, err := t.prompt(question)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func (t *Terminal) prompt(question string) (string, error) {
	fmt.Fprint(t.out, question)
	line, err := t.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// CropToAspect cuts the largest centered region with the w:h ratio.
func CropToAspect(img image.Image, w, h int) image.Image {
	if w <= 0 || h <= 0 {
		return img
	}
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	if width*h > height*w {
		width = height * w / h
	} else {
		height = width * h / w
	}
	if width == b.Dx() && height == b.Dy() {
		return img
	}
	return imaging.CropCenter(img, width, height)
}

// JPEGQuality maps a 0..1 picker quality onto the 1..100 JPEG scale.
func JPEGQuality(q float64) int {
	v := int(q*100 + 0.5)
	if v < 1 {
		return 1
	}
	if v > 100 {
		return 100
	}
	return v
}

func listImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read gallery: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !imageExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func fileURI(path string) string {
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}
