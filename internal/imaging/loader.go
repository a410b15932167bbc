package imaging

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"sync"
	"time"

	"github.com/zeebo/blake3"
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
)

// entry is one decoded artifact plus the file state it was decoded from.
type entry struct {
	img     image.Image
	format  string
	digest  string
	size    int64
	modTime time.Time
}

// ImageCache provides thread-safe caching of decoded artifacts.
//
// Entries are keyed by path and revalidated against the file's size and
// modification time on every Load, so a file rewritten in place is decoded
// again rather than served stale.
//
// ImageCache is safe for concurrent use by multiple goroutines.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]*entry
}

// NewImageCache creates an empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]*entry),
	}
}

// Load returns the decoded image at path, reading it from disk if it is not
// cached or has changed since it was cached. PNG, JPEG, GIF and TIFF are
// supported.
func (c *ImageCache) Load(path string) (image.Image, error) {
	e, err := c.load(path)
	if err != nil {
		return nil, err
	}
	return e.img, nil
}

func (c *ImageCache) load(path string) (*entry, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	c.mu.RLock()
	e, ok := c.images[path]
	c.mu.RUnlock()
	if ok && e.size == stat.Size() && e.modTime.Equal(stat.ModTime()) {
		return e, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	sum := blake3.Sum256(data)

	e = &entry{
		img:     img,
		format:  format,
		digest:  hex.EncodeToString(sum[:]),
		size:    int64(len(data)),
		modTime: stat.ModTime(),
	}
	c.mu.Lock()
	c.images[path] = e
	c.mu.Unlock()
	return e, nil
}

// Evict removes the image cached under path, if any.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// Len reports how many images are cached.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// ImageInfo describes an artifact on disk.
type ImageInfo struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	// Format is the decoder that accepted the file: "png", "jpeg", "gif" or
	// "tiff". It comes from the file contents, not the extension.
	Format string `json:"format"`

	// ColorDepth is "8-bit" or "16-bit" per channel.
	ColorDepth string `json:"color_depth"`

	// HasAlpha is true when the decoded color model carries an alpha
	// channel that is not fully opaque.
	HasAlpha bool `json:"has_alpha"`

	FileSizeBytes int64 `json:"file_size_bytes"`

	// BLAKE3 is the hex digest of the file bytes.
	BLAKE3 string `json:"blake3"`
}

// LoadImageInfo loads path through cache and reports its metadata.
//
// Color depth is derived from the decoded type: *image.RGBA64,
// *image.NRGBA64 and *image.Gray16 are 16-bit, everything else is 8-bit.
// Exported masters are written fully opaque, so HasAlpha is false for them
// even though their TIFF encoding stores an alpha sample.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	e, err := cache.load(path)
	if err != nil {
		return nil, err
	}

	colorDepth := "8-bit"
	switch e.img.(type) {
	case *image.RGBA64, *image.NRGBA64, *image.Gray16:
		colorDepth = "16-bit"
	}

	bounds := e.img.Bounds()
	return &ImageInfo{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        e.format,
		ColorDepth:    colorDepth,
		HasAlpha:      !opaque(e.img),
		FileSizeBytes: e.size,
		BLAKE3:        e.digest,
	}, nil
}

// opaque reports whether every pixel of img is fully opaque.
func opaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				return false
			}
		}
	}
	return true
}
