package scrub

import (
	"image"
	"math"
)

// Frames is the read side of a frame store.
type Frames interface {
	Len() int
	Frame(i int) (image.Image, bool)
}

// Scrubber paints the frame selected by progress. It holds the last progress
// so a resize can repaint at the new scale immediately.
type Scrubber struct {
	frames    Frames
	canvas    Canvas
	padding   float64
	last      float64
	lastIndex int
	paints    int
}

// New returns a scrubber over frames painting onto canvas. padding is the
// cover-fit multiplier, see CoverFit.
func New(frames Frames, canvas Canvas, padding float64) *Scrubber {
	return &Scrubber{
		frames:    frames,
		canvas:    canvas,
		padding:   padding,
		lastIndex: -1,
	}
}

// Render paints the frame for progress p. A frame that is not ready yet is
// skipped and the canvas keeps what it last showed. It reports whether a
// paint happened.
func (s *Scrubber) Render(p float64) bool {
	s.last = p
	return s.paint(FrameIndex(p, s.frames.Len()))
}

func (s *Scrubber) paint(index int) bool {
	img, ok := s.frames.Frame(index)
	if !ok {
		return false
	}
	b := img.Bounds()
	cw, ch := s.canvas.Size()
	fit := CoverFit(cw, ch, b.Dx(), b.Dy(), s.padding)
	s.canvas.Clear()
	s.canvas.Draw(index, img, fit)
	s.lastIndex = index
	s.paints++
	return true
}

// Resize sets the canvas to w x h CSS-style pixels at device pixel ratio dpr
// and repaints with the last known progress. If that frame is not ready the
// previously painted frame is repainted at the new scale instead.
func (s *Scrubber) Resize(w, h int, dpr float64) {
	if dpr <= 0 || math.IsNaN(dpr) {
		dpr = 1
	}
	pw := int(math.Round(float64(w) * dpr))
	ph := int(math.Round(float64(h) * dpr))
	s.canvas.Resize(pw, ph)
	if s.Render(s.last) {
		return
	}
	if s.lastIndex >= 0 {
		s.paint(s.lastIndex)
	}
}

// Handler adapts Render to a progress subscription.
func (s *Scrubber) Handler() func(float64) {
	return func(p float64) { s.Render(p) }
}

// Paints returns how many times the canvas was painted.
func (s *Scrubber) Paints() int {
	return s.paints
}

// LastIndex returns the frame index currently on the canvas, -1 before the
// first paint.
func (s *Scrubber) LastIndex() int {
	return s.lastIndex
}

// Progress returns the last progress passed to Render.
func (s *Scrubber) Progress() float64 {
	return s.last
}

// Len returns the number of frames in the sequence.
func (s *Scrubber) Len() int {
	return s.frames.Len()
}
