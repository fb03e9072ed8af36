// Package scrub maps progress onto a frame of the sequence and paints it
// onto a canvas with a cover fit.
package scrub

import (
	"image"
	"math"
)

// FrameIndex maps progress p onto a frame index in [0, n-1] by
// floor(clamp(p,0,1) * (n-1)).
func FrameIndex(p float64, n int) int {
	if n <= 1 || math.IsNaN(p) {
		return 0
	}
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	i := int(math.Floor(p * float64(n-1)))
	if i < 0 {
		return 0
	}
	if i > n-1 {
		return n - 1
	}
	return i
}

// Fit is the placement of a scaled image on the canvas.
type Fit struct {
	Scale float64
	W, H  float64 // drawn size
	X, Y  float64 // top-left offset, negative when cropped
}

// Rect returns the drawn area rounded to whole pixels.
func (f Fit) Rect() image.Rectangle {
	x0 := int(math.Round(f.X))
	y0 := int(math.Round(f.Y))
	return image.Rect(x0, y0, x0+int(math.Round(f.W)), y0+int(math.Round(f.H)))
}

// CoverFit scales an image to fill the canvas, preserving aspect ratio, then
// multiplies by padding (<= 1 leaves breathing room, 1 is a true cover) and
// centres the result. Padding outside (0,1] is treated as 1.
func CoverFit(canvasW, canvasH, imgW, imgH int, padding float64) Fit {
	if imgW <= 0 || imgH <= 0 || canvasW <= 0 || canvasH <= 0 {
		return Fit{}
	}
	if padding <= 0 || padding > 1 {
		padding = 1
	}
	cw, ch := float64(canvasW), float64(canvasH)
	scale := math.Max(cw/float64(imgW), ch/float64(imgH)) * padding
	w := float64(imgW) * scale
	h := float64(imgH) * scale
	return Fit{
		Scale: scale,
		W:     w,
		H:     h,
		X:     (cw - w) / 2,
		Y:     (ch - h) / 2,
	}
}
