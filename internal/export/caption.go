package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/nfnt/resize"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// CaptionStyle controls how comparison labels are drawn.
type CaptionStyle struct {
	// Fill is the glyph color.
	Fill color.Color
	// Outline is drawn around every glyph so the caption stays readable on
	// both dark and light footage.
	Outline color.Color
	// Scale is the integer magnification applied to the 7x13 bitmap font.
	Scale int
}

// DefaultCaptionStyle returns black text with a white outline at 3x, roughly
// 39 px tall.
func DefaultCaptionStyle() CaptionStyle {
	return CaptionStyle{Fill: color.Black, Outline: color.White, Scale: 3}
}

// ParseCaptionStyle builds a style from "#RRGGBB" hex colors.
func ParseCaptionStyle(fillHex, outlineHex string, scale int) (CaptionStyle, error) {
	fill, err := colorful.Hex(fillHex)
	if err != nil {
		return CaptionStyle{}, fmt.Errorf("failed to parse caption fill %q: %w", fillHex, err)
	}
	outline, err := colorful.Hex(outlineHex)
	if err != nil {
		return CaptionStyle{}, fmt.Errorf("failed to parse caption outline %q: %w", outlineHex, err)
	}
	if scale < 1 {
		return CaptionStyle{}, fmt.Errorf("caption scale must be at least 1, got %d", scale)
	}
	return CaptionStyle{Fill: fill, Outline: outline, Scale: scale}, nil
}

// drawCaption draws text onto dst with the left end of its baseline at
// (x, baseline). Anything falling outside dst is clipped.
func drawCaption(dst draw.Image, x, baseline int, text string, style CaptionStyle) {
	scale := style.Scale
	if scale < 1 {
		scale = 1
	}
	mask := captionMask(text, scale)
	top := baseline - basicfont.Face7x13.Ascent*scale
	r := mask.Bounds().Add(image.Pt(x, top))

	outline := image.NewUniform(style.Outline)
	width := (scale + 1) / 2
	for dy := -width; dy <= width; dy++ {
		for dx := -width; dx <= width; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			draw.DrawMask(dst, r.Add(image.Pt(dx, dy)), outline, image.Point{}, mask, image.Point{}, draw.Over)
		}
	}
	draw.DrawMask(dst, r, image.NewUniform(style.Fill), image.Point{}, mask, image.Point{}, draw.Over)
}

// captionMask renders text in the basic bitmap font and magnifies it with
// nearest-neighbour sampling so glyph edges stay hard.
func captionMask(text string, scale int) *image.Alpha {
	face := basicfont.Face7x13
	w := font.MeasureString(face, text).Ceil()
	h := face.Height
	glyphs := image.NewGray(image.Rect(0, 0, w, h))
	d := font.Drawer{
		Dst:  glyphs,
		Src:  image.White,
		Face: face,
		Dot:  fixed.P(0, face.Ascent),
	}
	d.DrawString(text)

	scaled := resize.Resize(uint(w*scale), uint(h*scale), glyphs, resize.NearestNeighbor)
	b := scaled.Bounds()
	mask := image.NewAlpha(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			v, _, _, _ := scaled.At(b.Min.X+x, b.Min.Y+y).RGBA()
			mask.SetAlpha(x, y, color.Alpha{A: uint8(v >> 8)})
		}
	}
	return mask
}
