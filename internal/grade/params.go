package grade

import (
	"fmt"
	"math"
)

// MaxExposureStops bounds |exposure|. 2^32 already saturates every non-black
// sample, and larger values push the float math towards Inf.
const MaxExposureStops = 32

// Params is the caller-facing grading request.
type Params struct {
	Preset      Preset  `json:"preset"`
	Exposure    float64 `json:"exposure"`    // stops
	Contrast    float64 `json:"contrast"`    // pivot multiplier, 1.0 = neutral
	Saturation  float64 `json:"saturation"`  // 1.0 = neutral
	Temperature float64 `json:"temperature"` // signed, 0 = neutral
}

// Effective is the resolved adjustment set that the pixel math consumes.
// It is computed once per run by Params.Resolve and never modified.
type Effective struct {
	Exposure    float64 `json:"exposure"`
	Contrast    float64 `json:"contrast"`
	Saturation  float64 `json:"saturation"`
	Temperature float64 `json:"temperature"`
}

// Neutral returns the default parameters: no preset, exposure 0, contrast 1,
// saturation 1, temperature 0.
func Neutral() Params {
	return Params{Contrast: 1, Saturation: 1}
}

// Effective returns p's explicit values without applying the preset.
func (p Params) Effective() Effective {
	return Effective{
		Exposure:    p.Exposure,
		Contrast:    p.Contrast,
		Saturation:  p.Saturation,
		Temperature: p.Temperature,
	}
}

// Resolve validates the caller's values, layers the preset deltas on top and
// validates the result. Unknown presets resolve as if no preset were given.
func (p Params) Resolve() (Effective, error) {
	if err := p.Effective().Validate(); err != nil {
		return Effective{}, err
	}
	e := lookup(p.Preset)(p.Effective())
	if err := e.Validate(); err != nil {
		return Effective{}, err
	}
	return e, nil
}

// Validate rejects non-finite values, negative contrast or saturation, and
// exposure beyond MaxExposureStops.
func (e Effective) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"exposure", e.Exposure},
		{"contrast", e.Contrast},
		{"saturation", e.Saturation},
		{"temperature", e.Temperature},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return &ParamError{Name: f.name, Value: f.value, Reason: "must be finite"}
		}
	}
	if math.Abs(e.Exposure) > MaxExposureStops {
		return &ParamError{Name: "exposure", Value: e.Exposure,
			Reason: fmt.Sprintf("must be within ±%d stops", MaxExposureStops)}
	}
	if e.Contrast < 0 {
		return &ParamError{Name: "contrast", Value: e.Contrast, Reason: "must not be negative"}
	}
	if e.Saturation < 0 {
		return &ParamError{Name: "saturation", Value: e.Saturation, Reason: "must not be negative"}
	}
	return nil
}

// ParamError reports a grading parameter that is non-finite or outside its
// domain.
type ParamError struct {
	Name   string
	Value  float64
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid grading parameter %s=%v: %s", e.Name, e.Value, e.Reason)
}
