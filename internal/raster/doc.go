// Package raster defines the pixel buffers that flow through the grading
// pipeline and the lossless 8-bit to 16-bit expansion between them.
//
// # Layout
//
// Both buffer types store interleaved R,G,B samples in row-major order with
// no alpha channel:
//
//	Pix[(y*Width+x)*3+0] = R
//	Pix[(y*Width+x)*3+1] = G
//	Pix[(y*Width+x)*3+2] = B
//
// # Ownership
//
// Pipeline stages treat their input buffers as read-only and always return a
// freshly allocated buffer. A buffer belongs to exactly one run; nothing in
// this package is shared between goroutines.
package raster
