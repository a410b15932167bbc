package imaging

import (
	"fmt"
	"image"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// RGBColor holds 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// RGB16Color holds 16-bit components (0-65535).
type RGB16Color struct {
	R uint16 `json:"r"`
	G uint16 `json:"g"`
	B uint16 `json:"b"`
}

// HSLColor is a color in HSL space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees
	S int `json:"s"` // Saturation: 0-100 percent
	L int `json:"l"` // Lightness: 0-100 percent
}

// ColorResult is one sampled pixel in several representations.
//
// RGB16 is the value stored in the file (8-bit sources are scaled by 257),
// RGB is its high byte, which is what an 8-bit viewer would show.
type ColorResult struct {
	Hex   string     `json:"hex"`
	RGB   RGBColor   `json:"rgb"`
	RGB16 RGB16Color `json:"rgb16"`
	Alpha uint16     `json:"alpha"`
	HSL   HSLColor   `json:"hsl"`
}

// SampleColor reads the pixel at (x, y). Coordinates are 0-based from the
// top-left corner of the image bounds.
func SampleColor(img image.Image, x, y int) (*ColorResult, error) {
	bounds := img.Bounds()
	px, py := bounds.Min.X+x, bounds.Min.Y+y
	if x < 0 || y < 0 || px >= bounds.Max.X || py >= bounds.Max.Y {
		return nil, fmt.Errorf("coordinates (%d,%d) outside image bounds %dx%d", x, y, bounds.Dx(), bounds.Dy())
	}

	r, g, b, a := img.At(px, py).RGBA()
	r8, g8, b8 := uint8(r>>8), uint8(g>>8), uint8(b>>8)

	return &ColorResult{
		Hex:   fmt.Sprintf("#%02X%02X%02X", r8, g8, b8),
		RGB:   RGBColor{R: r8, G: g8, B: b8},
		RGB16: RGB16Color{R: uint16(r), G: uint16(g), B: uint16(b)},
		Alpha: uint16(a),
		HSL:   toHSL(r, g, b),
	}, nil
}

// toHSL converts 16-bit components to rounded HSL.
func toHSL(r, g, b uint32) HSLColor {
	c := colorful.Color{R: float64(r) / 0xffff, G: float64(g) / 0xffff, B: float64(b) / 0xffff}
	h, s, l := c.Hsl()
	if math.IsNaN(h) {
		h = 0
	}
	return HSLColor{
		H: int(math.Round(h)) % 360,
		S: int(math.Round(s * 100)),
		L: int(math.Round(l * 100)),
	}
}
