// Package tonemap reduces 16-bit working buffers to 8-bit display buffers.
//
// The operator is the global form of Reinhard and Devlin's photoreceptor
// model ("Dynamic Range Reduction Inspired by Photoreceptor Physiology",
// 2005). Each channel is compressed by c / (c + σ(c)) where the
// semi-saturation σ blends the pixel's own intensity with the image average
// according to the light- and color-adaptation settings. There is no
// spatial (local) adaptation, so the result depends only on the pixel value
// and image-wide statistics.
package tonemap

import (
	"errors"
	"math"

	"github.com/anthonynsimon/bild/math/f64"

	"github.com/ironsheep/cinegrade-mcp/internal/raster"
)

// ErrInvalidBuffer is returned for empty buffers or buffers whose pixel data
// does not match their dimensions.
var ErrInvalidBuffer = errors.New("tonemap: invalid input buffer")

// minLogLuma keeps log() finite for black pixels.
const minLogLuma = 1e-4

// Reinhard holds the operator settings. The zero value is not useful; start
// from Default.
type Reinhard struct {
	// Gamma is applied as c^(1/Gamma) after compression.
	Gamma float64
	// Intensity shifts overall brightness; the operator uses exp(-Intensity).
	Intensity float64
	// LightAdapt in [0,1]: 1 adapts to each pixel's value, 0 to the image mean.
	LightAdapt float64
	// ColorAdapt in [0,1]: 0 adapts to gray for all channels, 1 to each
	// channel independently.
	ColorAdapt float64
}

// Default returns the display preview settings: gamma 2.2, intensity 0,
// light adaptation 0.8, color adaptation 0.
func Default() Reinhard {
	return Reinhard{Gamma: 2.2, Intensity: 0, LightAdapt: 0.8, ColorAdapt: 0}
}

// Reduce tone-maps src to a new 8-bit buffer. src is not modified.
func (op Reinhard) Reduce(src *raster.Buffer16) (*raster.Buffer8, error) {
	if src == nil {
		return nil, ErrInvalidBuffer
	}
	if err := src.Validate(); err != nil {
		return nil, errors.Join(ErrInvalidBuffer, err)
	}

	n := src.Width * src.Height
	img := make([]float64, len(src.Pix))
	for i, v := range src.Pix {
		img[i] = float64(v) / 65535.0
	}
	normalize(img)

	gray := make([]float64, n)
	var logSum, grayMean float64
	logMin, logMax := math.Inf(1), math.Inf(-1)
	for p := 0; p < n; p++ {
		i := p * raster.Channels
		g := 0.299*img[i] + 0.587*img[i+1] + 0.114*img[i+2]
		gray[p] = g
		grayMean += g
		l := math.Log(math.Max(g, minLogLuma))
		logSum += l
		logMin = math.Min(logMin, l)
		logMax = math.Max(logMax, l)
	}
	grayMean /= float64(n)
	logMean := logSum / float64(n)

	var key float64
	if logMax-logMin > 1e-12 {
		key = (logMax - logMean) / (logMax - logMin)
	}
	mapKey := 0.3 + 0.7*math.Pow(key, 1.4)
	intensity := math.Exp(-op.Intensity)

	var chanMean [raster.Channels]float64
	for i, v := range img {
		chanMean[i%raster.Channels] += v
	}
	for c := range chanMean {
		chanMean[c] /= float64(n)
	}

	ca, la := op.ColorAdapt, op.LightAdapt
	for p := 0; p < n; p++ {
		for c := 0; c < raster.Channels; c++ {
			i := p*raster.Channels + c
			v := img[i]
			global := ca*chanMean[c] + (1-ca)*grayMean
			adapt := ca*v + (1-ca)*gray[p]
			adapt = la*adapt + (1-la)*global
			adapt = math.Pow(intensity*adapt, mapKey)
			if d := v + adapt; d > 0 {
				img[i] = v / d
			} else {
				img[i] = 0
			}
		}
	}

	normalize(img)
	invGamma := 1 / op.Gamma
	out := raster.NewBuffer8(src.Width, src.Height)
	for i, v := range img {
		v = math.Pow(v, invGamma)
		out.Pix[i] = uint8(math.Round(f64.Clamp(v, 0, 1) * 255))
	}
	return out, nil
}

// normalize linearly stretches v to [0,1] in place. A constant buffer is left
// unchanged.
func normalize(v []float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, x := range v {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	span := hi - lo
	if span <= 1e-12 {
		return
	}
	for i := range v {
		v[i] = (v[i] - lo) / span
	}
}
