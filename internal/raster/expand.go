package raster

// ExpandFactor maps 8-bit samples onto the full 16-bit range: 255*257 == 65535,
// so 0 and 255 land exactly on 0 and 65535 with no rounding.
const ExpandFactor = 257

// Expand scales every sample of src by ExpandFactor into a new 16-bit buffer.
func Expand(src *Buffer8) *Buffer16 {
	out := NewBuffer16(src.Width, src.Height)
	for i, v := range src.Pix {
		out.Pix[i] = uint16(v) * ExpandFactor
	}
	return out
}
