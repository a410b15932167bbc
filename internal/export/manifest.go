package export

import "fmt"

// Kind names one of the artifacts a pipeline run writes.
type Kind string

// Artifact kinds, in the order Export writes them.
const (
	KindTIFF16     Kind = "tiff_16bit"
	KindPNG16      Kind = "png_16bit"
	KindWebPreview Kind = "web_preview"
	KindComparison Kind = "comparison"
)

// Kinds lists every artifact kind in write order.
func Kinds() []Kind {
	return []Kind{KindTIFF16, KindPNG16, KindWebPreview, KindComparison}
}

// suffix returns the filename suffix (including extension) for k.
func (k Kind) suffix() string {
	switch k {
	case KindTIFF16:
		return "16bit.tiff"
	case KindPNG16:
		return "16bit.png"
	case KindWebPreview:
		return "preview.jpg"
	case KindComparison:
		return "comparison.jpg"
	}
	return string(k)
}

// Manifest records where one run wrote each artifact. It is a value type:
// Export builds it once and callers receive a copy.
type Manifest struct {
	TIFF16     string `json:"tiff_16bit"`
	PNG16      string `json:"png_16bit"`
	WebPreview string `json:"web_preview"`
	Comparison string `json:"comparison"`
}

// Paths returns a fresh kind-to-path map.
func (m Manifest) Paths() map[Kind]string {
	return map[Kind]string{
		KindTIFF16:     m.TIFF16,
		KindPNG16:      m.PNG16,
		KindWebPreview: m.WebPreview,
		KindComparison: m.Comparison,
	}
}

func (m *Manifest) set(k Kind, path string) {
	switch k {
	case KindTIFF16:
		m.TIFF16 = path
	case KindPNG16:
		m.PNG16 = path
	case KindWebPreview:
		m.WebPreview = path
	case KindComparison:
		m.Comparison = path
	}
}

// Error reports a failed export. Kind names the artifact being written, or is
// empty when the call was rejected before the first write. Files written
// earlier in the same Export call are left on disk.
type Error struct {
	Kind Kind
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("failed to export to %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("failed to export %s to %s: %v", e.Kind, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
