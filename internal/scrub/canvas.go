package scrub

import (
	"image"

	"golang.org/x/image/draw"
)

// Canvas is the paint target owned by a Scrubber.
type Canvas interface {
	// Size returns the canvas size in device pixels.
	Size() (w, h int)
	// Resize reallocates the backing store at w x h device pixels.
	Resize(w, h int)
	Clear()
	// Draw paints frame index with image img at placement f.
	Draw(index int, img image.Image, f Fit)
}

// ImageCanvas is a software canvas backed by an *image.RGBA.
type ImageCanvas struct {
	img    *image.RGBA
	Kernel draw.Interpolator
}

func NewImageCanvas(w, h int) *ImageCanvas {
	c := &ImageCanvas{Kernel: draw.ApproxBiLinear}
	c.Resize(w, h)
	return c
}

func (c *ImageCanvas) Size() (int, int) {
	b := c.img.Bounds()
	return b.Dx(), b.Dy()
}

func (c *ImageCanvas) Resize(w, h int) {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	c.img = image.NewRGBA(image.Rect(0, 0, w, h))
}

func (c *ImageCanvas) Clear() {
	draw.Draw(c.img, c.img.Bounds(), image.Transparent, image.Point{}, draw.Src)
}

func (c *ImageCanvas) Draw(_ int, img image.Image, f Fit) {
	dr := f.Rect()
	if dr.Empty() {
		return
	}
	kernel := c.Kernel
	if kernel == nil {
		kernel = draw.ApproxBiLinear
	}
	kernel.Scale(c.img, dr, img, img.Bounds(), draw.Over, nil)
}

// Image exposes the pixels for encoding or compositing.
func (c *ImageCanvas) Image() *image.RGBA {
	return c.img
}
