package scrub

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/studionf/scrollmix/internal/frames"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

var (
	red  = color.RGBA{255, 0, 0, 255}
	blue = color.RGBA{0, 0, 255, 255}
)

type recordingCanvas struct {
	w, h    int
	clears  int
	draws   []int
	fits    []Fit
	resizes [][2]int
}

func (c *recordingCanvas) Size() (int, int) { return c.w, c.h }
func (c *recordingCanvas) Resize(w, h int) {
	c.w, c.h = w, h
	c.resizes = append(c.resizes, [2]int{w, h})
}
func (c *recordingCanvas) Clear() { c.clears++ }
func (c *recordingCanvas) Draw(i int, _ image.Image, f Fit) {
	c.draws = append(c.draws, i)
	c.fits = append(c.fits, f)
}

func TestScrubberSkipsFailedFrameAndKeepsPixels(t *testing.T) {
	store := frames.NewStore(3)
	store.Put(0, solid(8, 8, red))
	store.Fail(1, errors.New("broken asset"))
	store.Put(2, solid(8, 8, blue))

	canvas := NewImageCanvas(4, 4)
	s := New(store, canvas, 1)

	if !s.Render(0) {
		t.Fatalf("frame 0 should paint")
	}
	if got := canvas.Image().RGBAAt(2, 2); got != red {
		t.Fatalf("pixel after frame 0 = %v, want red", got)
	}
	if s.Render(0.5) {
		t.Fatalf("failed frame must not paint")
	}
	if got := canvas.Image().RGBAAt(2, 2); got != red {
		t.Fatalf("pixel after skipped frame = %v, want previous red", got)
	}
	if s.LastIndex() != 0 {
		t.Fatalf("last index = %d, want 0", s.LastIndex())
	}
	if !s.Render(1) {
		t.Fatalf("frame 2 should paint")
	}
	if got := canvas.Image().RGBAAt(2, 2); got != blue {
		t.Fatalf("pixel after frame 2 = %v, want blue", got)
	}
	if s.Paints() != 2 {
		t.Fatalf("paints = %d, want 2", s.Paints())
	}
}

func TestScrubberSkipsPendingFrame(t *testing.T) {
	store := frames.NewStore(2)
	c := &recordingCanvas{w: 10, h: 10}
	s := New(store, c, 1)
	if s.Render(0) {
		t.Fatalf("pending frame painted")
	}
	if c.clears != 0 || len(c.draws) != 0 {
		t.Fatalf("skipped render touched the canvas: clears=%d draws=%v", c.clears, c.draws)
	}
}

func TestScrubberClearsBeforeEachPaint(t *testing.T) {
	store := frames.NewStore(2)
	store.Put(0, solid(2, 2, red))
	store.Put(1, solid(2, 2, blue))
	c := &recordingCanvas{w: 10, h: 10}
	s := New(store, c, 0.9)
	s.Render(0)
	s.Render(1)
	if c.clears != 2 || len(c.draws) != 2 {
		t.Fatalf("clears=%d draws=%d, want 2 each", c.clears, len(c.draws))
	}
}

func TestResizeAppliesDevicePixelRatioAndRepaints(t *testing.T) {
	store := frames.NewStore(104)
	store.Put(51, solid(1000, 1000, red))
	c := &recordingCanvas{w: 1, h: 1}
	s := New(store, c, 0.9)
	s.Render(0.5)

	s.Resize(960, 540, 2)
	if got := c.resizes[len(c.resizes)-1]; got != [2]int{1920, 1080} {
		t.Fatalf("canvas resized to %v, want 1920x1080", got)
	}
	last := c.fits[len(c.fits)-1]
	if c.draws[len(c.draws)-1] != 51 {
		t.Fatalf("repaint drew frame %d, want 51", c.draws[len(c.draws)-1])
	}
	want := CoverFit(1920, 1080, 1000, 1000, 0.9)
	if last != want {
		t.Fatalf("repaint fit = %+v, want %+v", last, want)
	}
}

func TestResizeFallsBackToLastPaintedFrame(t *testing.T) {
	store := frames.NewStore(3)
	store.Put(0, solid(4, 4, red))
	c := &recordingCanvas{w: 4, h: 4}
	s := New(store, c, 1)
	s.Render(0)
	s.Render(1) // frame 2 still pending
	s.Resize(8, 8, 1)
	if got := c.draws[len(c.draws)-1]; got != 0 {
		t.Fatalf("resize repainted frame %d, want last painted 0", got)
	}
	if s.Progress() != 1 {
		t.Fatalf("progress should stay at the last requested value")
	}
}
