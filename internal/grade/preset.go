package grade

import (
	"sort"
	"strings"
)

// Preset names a look that layers fixed deltas on top of the caller's
// adjustments.
type Preset string

// Recognized presets. PresetNone and PresetNeutral leave the caller's values
// untouched.
const (
	PresetNone     Preset = ""
	PresetNeutral  Preset = "neutral"
	PresetWarm     Preset = "warm"
	PresetCool     Preset = "cool"
	PresetDramatic Preset = "dramatic"
	PresetVintage  Preset = "vintage"
	PresetNoir     Preset = "noir"
)

// presetDelta adjusts already-provided values; it never replaces them.
type presetDelta func(Effective) Effective

var presets = map[Preset]presetDelta{
	PresetNone:    func(e Effective) Effective { return e },
	PresetNeutral: func(e Effective) Effective { return e },
	PresetWarm: func(e Effective) Effective {
		e.Exposure += 0.1
		e.Temperature += 0.15
		e.Saturation *= 0.95
		return e
	},
	PresetCool: func(e Effective) Effective {
		e.Temperature -= 0.15
		e.Saturation *= 0.9
		return e
	},
	PresetDramatic: func(e Effective) Effective {
		e.Contrast *= 1.3
		e.Saturation *= 0.85
		e.Exposure -= 0.1
		return e
	},
	PresetVintage: func(e Effective) Effective {
		e.Saturation *= 0.7
		e.Temperature += 0.1
		e.Contrast *= 0.9
		return e
	},
	PresetNoir: func(e Effective) Effective {
		e.Saturation *= 0.3
		e.Contrast *= 1.4
		return e
	},
}

// ParsePreset normalizes a user-supplied preset name. Matching is case
// insensitive and ignores surrounding spaces; "none" is an alias for
// PresetNone. Unknown names are returned normalized but unchanged in meaning.
func ParsePreset(name string) Preset {
	p := Preset(strings.ToLower(strings.TrimSpace(name)))
	if p == "none" {
		return PresetNone
	}
	return p
}

// KnownPreset reports whether p is in the preset table. Resolve treats
// unknown presets as a no-op, so front-ends use this to warn about typos.
func KnownPreset(p Preset) bool {
	_, ok := presets[p]
	return ok
}

// Presets returns the named presets in alphabetical order, excluding
// PresetNone.
func Presets() []Preset {
	out := make([]Preset, 0, len(presets))
	for p := range presets {
		if p != PresetNone {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Deltas reports the effect of p on neutral settings, for display.
func Deltas(p Preset) Effective {
	return lookup(p)(Neutral().Effective())
}

func lookup(p Preset) presetDelta {
	if d, ok := presets[p]; ok {
		return d
	}
	return presets[PresetNone]
}
