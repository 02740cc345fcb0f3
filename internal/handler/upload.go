package handler

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"recipe-share/internal/recipes"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MaxUploadSize caps a whole recipe request: one image plus the text fields.
const MaxUploadSize = recipes.MaxImageSize + formOverhead

const (
	formOverhead    = 1 << 20 // 1MB
	multipartMemory = 32 << 20
)

var allowedImageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

// stageImage writes the optional "image" form file to the upload directory and
// returns its file URI. An absent file yields an empty URI.
func (h *Handler) stageImage(c *gin.Context) (string, func(), bool) {
	noop := func() {}

	file, header, err := c.Request.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return "", noop, true
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to get file from request"})
		return "", noop, false
	}
	defer file.Close()

	if header.Size > recipes.MaxImageSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Image too large"})
		return "", noop, false
	}

	// Validate file extension first
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedImageExtensions[ext] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only .jpg, .jpeg, and .png extensions are allowed"})
		return "", noop, false
	}

	path := filepath.Join(h.uploadDir, uuid.NewString()+ext)
	dst, err := os.Create(path)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to stage upload"})
		return "", noop, false
	}
	_, err = io.Copy(dst, file)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	cleanup := func() { _ = os.Remove(path) }
	if err != nil {
		cleanup()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to stage upload"})
		return "", noop, false
	}

	uri := (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
	return uri, cleanup, true
}
