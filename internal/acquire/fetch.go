// Package acquire fetches a source image and decodes it into an 8-bit RGB
// buffer.
//
// Sources are http(s) URLs, file:// URLs, or plain filesystem paths. PNG,
// JPEG, GIF and TIFF payloads are accepted; whatever the decoded color model,
// the result is 8-bit RGB with any alpha channel dropped.
package acquire

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/tiff" // Register TIFF format decoder

	"github.com/ironsheep/cinegrade-mcp/internal/raster"
)

// Fetch limits used when a Fetcher is built with zero values.
const (
	DefaultTimeout   = 30 * time.Second
	DefaultMaxBytes  = 64 << 20
	DefaultMaxPixels = 100_000_000
)

// ErrTooManyPixels is returned when a payload declares a canvas larger than
// the Fetcher's pixel limit. The check runs on the header, before decoding.
var ErrTooManyPixels = errors.New("image dimensions exceed pixel limit")

// Failure steps reported in Error.Op.
const (
	OpFetch  = "fetch"
	OpStatus = "status"
	OpRead   = "read"
	OpDecode = "decode"
)

// Error reports why a source could not be turned into a raster. It is never
// retried here; retry policy belongs to the caller.
type Error struct {
	Source string
	Op     string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("failed to acquire %s (%s): %v", e.Source, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Fetcher retrieves and decodes source images. A Fetcher is safe for
// concurrent use once constructed.
type Fetcher struct {
	// Client performs HTTP requests. Its Timeout bounds each fetch.
	Client *http.Client

	// MaxBytes caps the payload size. Zero means DefaultMaxBytes.
	MaxBytes int64

	// MaxPixels caps width*height declared by the image header. Zero means
	// DefaultMaxPixels.
	MaxPixels int64
}

// NewFetcher returns a Fetcher whose HTTP requests time out after timeout.
// A non-positive timeout selects DefaultTimeout.
func NewFetcher(timeout time.Duration, maxBytes int64) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Fetcher{
		Client:    &http.Client{Timeout: timeout},
		MaxBytes:  maxBytes,
		MaxPixels: DefaultMaxPixels,
	}
}

// Fetch reads the source and decodes it.
//
// The context bounds the network request; it has no effect on decoding.
// All failures are returned as *Error.
func (f *Fetcher) Fetch(ctx context.Context, source string) (*raster.Buffer8, error) {
	data, err := f.read(ctx, source)
	if err != nil {
		return nil, err
	}

	if err := f.checkDimensions(data); err != nil {
		return nil, &Error{Source: source, Op: OpDecode, Err: err}
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &Error{Source: source, Op: OpDecode, Err: err}
	}
	if b := img.Bounds(); b.Empty() {
		return nil, &Error{Source: source, Op: OpDecode, Err: fmt.Errorf("empty image %dx%d", b.Dx(), b.Dy())}
	}
	return raster.FromImage(img), nil
}

// checkDimensions reads only the image header and rejects canvases over the
// pixel limit, so a small payload cannot force a huge allocation.
func (f *Fetcher) checkDimensions(data []byte) error {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return err
	}
	limit := f.MaxPixels
	if limit <= 0 {
		limit = DefaultMaxPixels
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > limit {
		return fmt.Errorf("%w: %dx%d is over %d", ErrTooManyPixels, cfg.Width, cfg.Height, limit)
	}
	return nil
}

func (f *Fetcher) read(ctx context.Context, source string) ([]byte, error) {
	u, err := url.Parse(source)
	if err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return f.readHTTP(ctx, source)
	}

	path := source
	if err == nil && u.Scheme == "file" {
		path = u.Path
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, &Error{Source: source, Op: OpFetch, Err: err}
	}
	defer file.Close()
	return f.readAll(source, file)
}

func (f *Fetcher) readHTTP(ctx context.Context, source string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, &Error{Source: source, Op: OpFetch, Err: err}
	}

	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &Error{Source: source, Op: OpFetch, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Source: source, Op: OpStatus, Err: fmt.Errorf("unexpected HTTP status %s", resp.Status)}
	}
	return f.readAll(source, resp.Body)
}

func (f *Fetcher) readAll(source string, r io.Reader) ([]byte, error) {
	limit := f.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, &Error{Source: source, Op: OpRead, Err: err}
	}
	if int64(len(data)) > limit {
		return nil, &Error{Source: source, Op: OpRead, Err: fmt.Errorf("payload exceeds %d bytes", limit)}
	}
	return data, nil
}
