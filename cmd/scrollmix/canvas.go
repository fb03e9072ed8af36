package main

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/studionf/scrollmix/internal/scrub"
)

// canvas is the scrubber's paint target on the GPU. Decoded frames are
// uploaded once and kept as textures.
type canvas struct {
	img      *ebiten.Image
	w, h     int
	textures map[int]*ebiten.Image
}

func newCanvas() *canvas {
	return &canvas{textures: make(map[int]*ebiten.Image)}
}

func (c *canvas) Size() (int, int) { return c.w, c.h }

func (c *canvas) Resize(w, h int) {
	if w == c.w && h == c.h && c.img != nil {
		return
	}
	if c.img != nil {
		c.img.Deallocate()
	}
	c.w, c.h = w, h
	c.img = ebiten.NewImage(max(1, w), max(1, h))
}

func (c *canvas) Clear() {
	if c.img != nil {
		c.img.Clear()
	}
}

func (c *canvas) Draw(index int, img image.Image, f scrub.Fit) {
	if c.img == nil {
		return
	}
	tex := c.textures[index]
	if tex == nil {
		tex = ebiten.NewImageFromImage(img)
		c.textures[index] = tex
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(f.Scale, f.Scale)
	op.GeoM.Translate(f.X, f.Y)
	op.Filter = ebiten.FilterLinear
	c.img.DrawImage(tex, op)
}

// Image returns the painted canvas, nil before the first Resize.
func (c *canvas) Image() *ebiten.Image { return c.img }
