// Package export writes the artifacts of one grading run: a 16-bit TIFF
// master, a 16-bit PNG, a tone-mapped JPEG web preview, and a captioned
// before/after comparison JPEG.
//
// Filenames follow {base}_{YYYYMMDD_HHMMSS}_{suffix}, with one timestamp
// shared by every artifact of a single Export call.
package export

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"github.com/dlecorfec/progjpeg"

	"github.com/ironsheep/cinegrade-mcp/internal/raster"
	"github.com/ironsheep/cinegrade-mcp/internal/tonemap"
)

// TimestampLayout is the time format embedded in artifact filenames.
const TimestampLayout = "20060102_150405"

// DefaultJPEGQuality applies to both JPEG artifacts.
const DefaultJPEGQuality = 95

// ErrInvalidBase is returned when the base identifier is empty or contains a
// path separator.
var ErrInvalidBase = errors.New("base identifier must be a single path element")

// Exporter writes artifacts into Dir. Build one with New and adjust fields
// before first use; an Exporter is safe for concurrent Export calls after
// that.
type Exporter struct {
	// Dir is created on demand.
	Dir string

	// JPEGQuality is used for the preview and the comparison.
	JPEGQuality int

	// PNGCompression is passed to the PNG encoder.
	PNGCompression png.CompressionLevel

	// ProgressivePreview writes the web preview as a progressive JPEG.
	ProgressivePreview bool

	Caption CaptionStyle
	Tonemap tonemap.Reinhard
	Now     func() time.Time
	Logger  *slog.Logger
}

// New returns an Exporter rooted at dir with default settings.
func New(dir string) *Exporter {
	return &Exporter{
		Dir:                dir,
		JPEGQuality:        DefaultJPEGQuality,
		PNGCompression:     png.DefaultCompression,
		ProgressivePreview: true,
		Caption:            DefaultCaptionStyle(),
		Tonemap:            tonemap.Default(),
		Now:                time.Now,
		Logger:             slog.Default(),
	}
}

// Export writes all four artifacts for one graded frame and returns where
// they went. original must be the 8-bit source the graded buffer came from.
//
// On failure the returned error is *Error; artifacts written before the
// failure stay on disk. Failures found before any write carry no Kind.
func (e *Exporter) Export(graded *raster.Buffer16, original *raster.Buffer8, base string) (Manifest, error) {
	if base == "" || filepath.Base(base) != base {
		return Manifest{}, &Error{Path: base, Err: ErrInvalidBase}
	}
	if graded == nil || original == nil {
		return Manifest{}, &Error{Path: e.Dir, Err: raster.ErrDimensions}
	}
	if err := errors.Join(graded.Validate(), original.Validate()); err != nil {
		return Manifest{}, &Error{Path: e.Dir, Err: err}
	}
	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return Manifest{}, &Error{Path: e.Dir, Err: err}
	}

	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	stamp := now().Format(TimestampLayout)

	master := graded.Image()
	preview, err := e.Tonemap.Reduce(graded)
	if err != nil {
		return Manifest{}, &Error{Kind: KindWebPreview, Path: e.Dir, Err: err}
	}

	writers := map[Kind]func(io.Writer) error{
		KindTIFF16: func(w io.Writer) error {
			return imaging.Encode(w, master, imaging.TIFF)
		},
		KindPNG16: func(w io.Writer) error {
			return imaging.Encode(w, master, imaging.PNG, imaging.PNGCompressionLevel(e.PNGCompression))
		},
		KindWebPreview: func(w io.Writer) error {
			return e.encodeJPEG(w, preview.Image(), e.ProgressivePreview)
		},
		KindComparison: func(w io.Writer) error {
			return e.encodeJPEG(w, Compose(original, preview, e.Caption), false)
		},
	}

	var m Manifest
	for _, kind := range Kinds() {
		path := filepath.Join(e.Dir, fmt.Sprintf("%s_%s_%s", base, stamp, kind.suffix()))
		start := time.Now()
		n, err := writeFile(path, writers[kind])
		if err != nil {
			return Manifest{}, &Error{Kind: kind, Path: path, Err: err}
		}
		m.set(kind, path)
		e.logger().Debug("artifact written",
			"kind", kind,
			"path", path,
			"bytes", n,
			"elapsed", time.Since(start))
	}
	return m, nil
}

func (e *Exporter) encodeJPEG(w io.Writer, img image.Image, progressive bool) error {
	quality := e.JPEGQuality
	if quality <= 0 {
		quality = DefaultJPEGQuality
	}
	if progressive {
		return progjpeg.Encode(w, img, &progjpeg.Options{Quality: quality, Progressive: true})
	}
	return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(quality))
}

func (e *Exporter) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

// writeFile creates path and streams write into it, returning the byte count.
func writeFile(path string, write func(io.Writer) error) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	cw := &countingWriter{w: f}
	bw := bufio.NewWriter(cw)
	if err := write(bw); err != nil {
		f.Close()
		return cw.n, err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return cw.n, err
	}
	return cw.n, f.Close()
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
