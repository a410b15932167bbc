// Package grade implements the photographic grading engine that runs on the
// 16-bit working buffer.
//
// Grading is split in two phases. Params.Resolve combines the caller's
// values with the preset deltas into an immutable Effective value; Apply
// then runs the per-pixel math in a fixed order:
//
//  1. normalize to [0,1] (v / 65535)
//  2. exposure: v * 2^exposure
//  3. contrast: (v - 0.5) * contrast + 0.5
//  4. saturation: L + saturation * (v - L), L = 0.299R + 0.587G + 0.114B
//  5. temperature: R += 0.1*t, B -= 0.1*t
//  6. clip to [0,1]
//  7. round(v * 65535)
//
// Each later step consumes the output of the earlier ones; the order is part
// of the look and must not change. Steps at their neutral value are skipped,
// so neutral grading returns the input samples exactly.
package grade

import (
	"math"

	"github.com/anthonynsimon/bild/math/f64"

	"github.com/ironsheep/cinegrade-mcp/internal/raster"
)

const maxSample = 65535.0

// BT.601 luma weights.
const (
	lumaR = 0.299
	lumaG = 0.587
	lumaB = 0.114
)

// temperatureScale converts the temperature parameter into a channel offset.
const temperatureScale = 0.1

// Grade resolves p and applies it to src. A *ParamError is returned before
// any pixel is touched if p is invalid.
func Grade(src *raster.Buffer16, p Params) (*raster.Buffer16, error) {
	e, err := p.Resolve()
	if err != nil {
		return nil, err
	}
	return Apply(src, e), nil
}

// Apply runs the grading steps with already-resolved settings and returns a
// new buffer. src is not modified.
func Apply(src *raster.Buffer16, e Effective) *raster.Buffer16 {
	out := raster.NewBuffer16(src.Width, src.Height)
	steps := e.steps()
	for i := 0; i < len(src.Pix); i += raster.Channels {
		px := pixel{
			float64(src.Pix[i]) / maxSample,
			float64(src.Pix[i+1]) / maxSample,
			float64(src.Pix[i+2]) / maxSample,
		}
		for _, step := range steps {
			px = step(px)
		}
		out.Pix[i] = quantize(px[0])
		out.Pix[i+1] = quantize(px[1])
		out.Pix[i+2] = quantize(px[2])
	}
	return out
}

// pixel holds normalized R, G, B.
type pixel [3]float64

type step func(pixel) pixel

// steps returns the active adjustments in application order.
func (e Effective) steps() []step {
	var s []step
	if e.Exposure != 0 {
		s = append(s, exposure(e.Exposure))
	}
	if e.Contrast != 1 {
		s = append(s, contrast(e.Contrast))
	}
	if e.Saturation != 1 {
		s = append(s, saturation(e.Saturation))
	}
	if e.Temperature != 0 {
		s = append(s, temperature(e.Temperature))
	}
	return s
}

func exposure(stops float64) step {
	gain := math.Exp2(stops)
	return func(p pixel) pixel {
		return pixel{p[0] * gain, p[1] * gain, p[2] * gain}
	}
}

func contrast(k float64) step {
	return func(p pixel) pixel {
		return pixel{(p[0]-0.5)*k + 0.5, (p[1]-0.5)*k + 0.5, (p[2]-0.5)*k + 0.5}
	}
}

func saturation(s float64) step {
	return func(p pixel) pixel {
		l := luma(p)
		return pixel{l + s*(p[0]-l), l + s*(p[1]-l), l + s*(p[2]-l)}
	}
}

func temperature(t float64) step {
	shift := t * temperatureScale
	return func(p pixel) pixel {
		return pixel{p[0] + shift, p[1], p[2] - shift}
	}
}

func luma(p pixel) float64 {
	return lumaR*p[0] + lumaG*p[1] + lumaB*p[2]
}

// quantize clips to [0,1] and rounds to the nearest 16-bit code. NaN, which
// only extreme finite parameters can produce via Inf-Inf, maps to black.
func quantize(v float64) uint16 {
	if math.IsNaN(v) {
		return 0
	}
	return uint16(math.Round(f64.Clamp(v, 0, 1) * maxSample))
}
