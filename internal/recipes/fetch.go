package recipes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

// MaxImageSize caps how much of a local image is read into memory.
const MaxImageSize = 10 << 20 // 10MB

// Fetcher reads the bytes behind an image URI.
type Fetcher interface {
	Fetch(ctx context.Context, uri string) ([]byte, error)
}

// URIFetcher resolves file:// URIs, bare paths and http(s) URLs.
type URIFetcher struct {
	HTTPClient *http.Client
}

func NewURIFetcher() *URIFetcher {
	return &URIFetcher{HTTPClient: &http.Client{Timeout: 30 * time.Second}}
}

func (f *URIFetcher) Fetch(ctx context.Context, uri string) ([]byte, error) {
	u, err := url.Parse(uri)
	if err != nil {
		// Not a URI; read it as a plain file path.
		return readLimited(openFile(uri))
	}

	switch u.Scheme {
	case "", "file":
		path := uri
		if u.Scheme == "file" {
			path = u.Path
		}
		return readLimited(openFile(path))
	case "http", "https":
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to build image request: %w", err)
		}
		resp, err := f.HTTPClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch image: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("failed to fetch image: unexpected status %d", resp.StatusCode)
		}
		return readLimited(resp.Body, nil)
	default:
		return nil, fmt.Errorf("unsupported image uri scheme %q", u.Scheme)
	}
}

func openFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	return f, nil
}

func readLimited(rc io.ReadCloser, err error) ([]byte, error) {
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) > MaxImageSize {
		return nil, fmt.Errorf("image exceeds %d bytes", MaxImageSize)
	}
	return data, nil
}
