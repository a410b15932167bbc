package export

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/cinegrade-mcp/internal/raster"
)

// Comparison layout.
const (
	SeparatorWidth  = 10
	OriginalCaption = "ORIGINAL (8-bit)"
	GradedCaption   = "GRADED (16-bit)"

	captionInsetX   = 30
	captionBaseline = 60
)

// Compose builds the before/after image: original on the left, a black
// separator column, and the graded preview on the right, resized to the
// original's dimensions. Each half carries an outlined caption.
func Compose(original, graded *raster.Buffer8, style CaptionStyle) *image.NRGBA {
	w, h := original.Width, original.Height

	var right image.Image = graded.Image()
	if graded.Width != w || graded.Height != h {
		right = imaging.Resize(right, w, h, imaging.Linear)
	}

	canvas := imaging.New(2*w+SeparatorWidth, h, color.Black)
	canvas = imaging.Paste(canvas, original.Image(), image.Pt(0, 0))
	canvas = imaging.Paste(canvas, right, image.Pt(w+SeparatorWidth, 0))

	drawCaption(canvas, captionInsetX, captionBaseline, OriginalCaption, style)
	drawCaption(canvas, w+SeparatorWidth+captionInsetX, captionBaseline, GradedCaption, style)
	return canvas
}
