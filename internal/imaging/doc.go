// Package imaging inspects image files on disk: the sources a grading run
// reads and the artifacts it writes.
//
// Coordinates are 0-based with (0,0) at the top-left corner, X increasing
// rightward and Y increasing downward.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. SampleColor is stateless.
//
// # Color Representation
//
// Samples are reported at the file's native 16-bit precision and as the
// 8-bit value a display would show, plus hex and HSL forms. Telling the two
// apart is the point of inspecting a 16-bit master: a graded value such as
// 12345 has no exact 8-bit equivalent.
package imaging
