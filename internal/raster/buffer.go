package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Channels is the number of samples per pixel. Buffers never carry alpha.
const Channels = 3

// ErrDimensions is returned when a buffer's size does not match its pixel data.
var ErrDimensions = errors.New("raster: invalid buffer dimensions")

// Buffer8 is an 8-bit-per-channel RGB raster.
type Buffer8 struct {
	Width  int
	Height int
	Pix    []uint8
}

// Buffer16 is a 16-bit-per-channel RGB raster with samples in [0, 65535].
type Buffer16 struct {
	Width  int
	Height int
	Pix    []uint16
}

// NewBuffer8 allocates a zeroed (black) 8-bit buffer.
func NewBuffer8(width, height int) *Buffer8 {
	return &Buffer8{Width: width, Height: height, Pix: make([]uint8, width*height*Channels)}
}

// NewBuffer16 allocates a zeroed (black) 16-bit buffer.
func NewBuffer16(width, height int) *Buffer16 {
	return &Buffer16{Width: width, Height: height, Pix: make([]uint16, width*height*Channels)}
}

// Validate reports ErrDimensions if the buffer is empty or its Pix slice does
// not hold exactly Width*Height*3 samples.
func (b *Buffer8) Validate() error {
	return validate(b.Width, b.Height, len(b.Pix))
}

// Validate reports ErrDimensions if the buffer is empty or its Pix slice does
// not hold exactly Width*Height*3 samples.
func (b *Buffer16) Validate() error {
	return validate(b.Width, b.Height, len(b.Pix))
}

func validate(w, h, n int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrDimensions, w, h)
	}
	if n != w*h*Channels {
		return fmt.Errorf("%w: %dx%d needs %d samples, have %d", ErrDimensions, w, h, w*h*Channels, n)
	}
	return nil
}

// At returns the R, G, B samples at (x, y).
func (b *Buffer8) At(x, y int) (r, g, bl uint8) {
	i := (y*b.Width + x) * Channels
	return b.Pix[i], b.Pix[i+1], b.Pix[i+2]
}

// Set stores the R, G, B samples at (x, y).
func (b *Buffer8) Set(x, y int, r, g, bl uint8) {
	i := (y*b.Width + x) * Channels
	b.Pix[i], b.Pix[i+1], b.Pix[i+2] = r, g, bl
}

// At returns the R, G, B samples at (x, y).
func (b *Buffer16) At(x, y int) (r, g, bl uint16) {
	i := (y*b.Width + x) * Channels
	return b.Pix[i], b.Pix[i+1], b.Pix[i+2]
}

// Set stores the R, G, B samples at (x, y).
func (b *Buffer16) Set(x, y int, r, g, bl uint16) {
	i := (y*b.Width + x) * Channels
	b.Pix[i], b.Pix[i+1], b.Pix[i+2] = r, g, bl
}

// FromImage converts any decoded image to an 8-bit RGB buffer.
//
// The image is first normalized to non-premultiplied NRGBA, so palette,
// grayscale and 16-bit sources are all accepted. The alpha channel, if
// any, is dropped: the straight RGB values are kept as-is and no
// compositing against a background takes place.
func FromImage(img image.Image) *Buffer8 {
	nrgba := imaging.Clone(img)
	w, h := nrgba.Rect.Dx(), nrgba.Rect.Dy()
	out := NewBuffer8(w, h)
	for y := 0; y < h; y++ {
		row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+w*4]
		dst := out.Pix[y*w*Channels : (y+1)*w*Channels]
		for x := 0; x < w; x++ {
			dst[x*3] = row[x*4]
			dst[x*3+1] = row[x*4+1]
			dst[x*3+2] = row[x*4+2]
		}
	}
	return out
}

// Image returns the buffer as an opaque *image.NRGBA.
func (b *Buffer8) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
	for i, j := 0, 0; i < len(b.Pix); i, j = i+3, j+4 {
		img.Pix[j] = b.Pix[i]
		img.Pix[j+1] = b.Pix[i+1]
		img.Pix[j+2] = b.Pix[i+2]
		img.Pix[j+3] = 0xff
	}
	return img
}

// Image returns the buffer as an opaque *image.RGBA64, which the PNG and TIFF
// encoders write with 16 bits per sample.
func (b *Buffer16) Image() *image.RGBA64 {
	img := image.NewRGBA64(image.Rect(0, 0, b.Width, b.Height))
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			r, g, bl := b.At(x, y)
			img.SetRGBA64(x, y, color.RGBA64{R: r, G: g, B: bl, A: 0xffff})
		}
	}
	return img
}
