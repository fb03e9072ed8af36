package main

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/studionf/scrollmix"
	"github.com/studionf/scrollmix/internal/frames"
	"github.com/studionf/scrollmix/internal/keyframe"
	"github.com/studionf/scrollmix/internal/progress"
	"github.com/studionf/scrollmix/internal/scrub"
)

const (
	charW = 6
	lineH = 16
)

var (
	textColor   = color.RGBA{235, 235, 235, 255}
	dimColor    = color.RGBA{120, 120, 120, 255}
	accentColor = color.RGBA{210, 180, 120, 255}
	barColor    = color.RGBA{60, 60, 60, 255}

	// the debug font is ASCII only
	asciiText = strings.NewReplacer("Ä", "AE", "Ö", "OE", "Ü", "UE", "ß", "SS")
)

type game struct {
	scene   *scrollmix.Scene
	store   *frames.Store
	canvas  *canvas
	tracker *progress.ScrollTracker
	scope   *scope
	cues    []keyframe.Cue
	fade    keyframe.Track
	bg      color.Color

	pages     float64
	wheelStep float64

	viewW, viewH int
	dpr          float64

	touchID ebiten.TouchID
	touchY  int
	touched bool

	status    string
	textCache map[string]*ebiten.Image
}

func (g *game) Update() error {
	g.handleInput()
	src := g.scene.Source()
	src.SetRaw(g.tracker.Fraction())
	src.Tick()
	g.scene.Refresh()
	return nil
}

func (g *game) handleInput() {
	_, wy := ebiten.Wheel()
	if wy != 0 {
		g.tracker.Scroll(-wy * g.wheelStep)
	}
	page := float64(g.viewH)
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowDown):
		g.tracker.Scroll(g.wheelStep)
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowUp):
		g.tracker.Scroll(-g.wheelStep)
	case inpututil.IsKeyJustPressed(ebiten.KeyPageDown), inpututil.IsKeyJustPressed(ebiten.KeySpace):
		g.tracker.Scroll(page)
	case inpututil.IsKeyJustPressed(ebiten.KeyPageUp):
		g.tracker.Scroll(-page)
	case inpututil.IsKeyJustPressed(ebiten.KeyHome):
		g.tracker.ScrollTo(0)
	case inpututil.IsKeyJustPressed(ebiten.KeyEnd):
		g.tracker.ScrollTo(1)
	case inpututil.IsKeyJustPressed(ebiten.KeyM):
		g.toggleSound()
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		mx, my := ebiten.CursorPosition()
		if g.hitSound(mx, my) {
			g.toggleSound()
		}
	}

	// touch drag scrolls like a page
	if ids := inpututil.AppendJustPressedTouchIDs(nil); len(ids) > 0 {
		g.touchID = ids[0]
		x, y := ebiten.TouchPosition(g.touchID)
		g.touchY, g.touched = y, true
		if g.hitSound(x, y) {
			g.toggleSound()
		}
	}
	if g.touched {
		if inpututil.IsTouchJustReleased(g.touchID) {
			g.touched = false
		} else {
			_, y := ebiten.TouchPosition(g.touchID)
			g.tracker.Scroll(float64(g.touchY-y) / g.dpr)
			g.touchY = y
		}
	}
}

func (g *game) toggleSound() {
	e := g.scene.Engine()
	if err := e.Toggle(); err != nil {
		g.status = "Sound not available yet, try again"
		return
	}
	g.status = ""
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(g.bg)
	p := g.scene.Source().Value()
	fade, cues := g.overlays()

	if img := g.canvas.Image(); img != nil {
		op := &ebiten.DrawImageOptions{}
		op.ColorScale.ScaleAlpha(float32(fade))
		screen.DrawImage(img, op)
	}

	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	for _, st := range cues {
		scale := 4 * g.dpr * st.Scale
		w := float64(len(asciiText.Replace(st.Text))*charW) * scale
		x := (float64(sw) - w) / 2
		y := float64(sh)/2 - lineH*scale/2 + st.OffsetY*g.dpr
		g.drawText(screen, st.Text, x, y, scale, st.Opacity)
	}

	if !g.store.AllLoaded() {
		done, total := g.store.Progress()
		msg := fmt.Sprintf("INITIALIZING %d/%d", done, total)
		scale := 2 * g.dpr
		w := float64(len(msg)*charW) * scale
		g.drawText(screen, msg, (float64(sw)-w)/2, float64(sh)-60*g.dpr, scale, 0.7)
	}

	g.drawProgressBar(screen, p)
	g.drawSoundButton(screen)
	if g.status != "" {
		g.drawText(screen, g.status, 16*g.dpr, 16*g.dpr, 1.5*g.dpr, 0.8)
	}
}

// overlays evaluates the canvas fade and the narrative cues. They follow the
// raw scroll position; only the frames and the audio follow the spring.
func (g *game) overlays() (float64, []keyframe.CueState) {
	raw := g.tracker.Fraction()
	return g.fade.Value(raw), keyframe.Visible(g.cues, raw)
}

func (g *game) drawProgressBar(screen *ebiten.Image, p float64) {
	sh := float64(screen.Bounds().Dy())
	x := float64(screen.Bounds().Dx()) - 6*g.dpr
	ebitenutil.DrawRect(screen, x, 0, 2*g.dpr, sh, barColor)
	ebitenutil.DrawRect(screen, x, 0, 2*g.dpr, sh*p, accentColor)
}

// soundButton is in layout (device independent) pixels for hit testing.
func (g *game) soundButton() image.Rectangle {
	return image.Rect(g.viewW-150, g.viewH-56, g.viewW-24, g.viewH-24)
}

// hitSound tests a point in screen pixels against the sound button.
func (g *game) hitSound(x, y int) bool {
	lx := int(float64(x) / g.dpr)
	ly := int(float64(y) / g.dpr)
	return pointInRect(lx, ly, g.soundButton())
}

func (g *game) drawSoundButton(screen *ebiten.Image) {
	r := g.soundButton()
	x, y := float64(r.Min.X)*g.dpr, float64(r.Min.Y)*g.dpr
	w, h := float64(r.Dx())*g.dpr, float64(r.Dy())*g.dpr
	label, col := "SOUND OFF", dimColor
	if g.scene.Engine().IsActive() {
		label, col = "SOUND ON", accentColor
		g.scope.draw(screen, x-w-8*g.dpr, y, w, h, accentColor)
	}
	ebitenutil.DrawRect(screen, x, y, w, 1, col)
	ebitenutil.DrawRect(screen, x, y+h-1, w, 1, col)
	ebitenutil.DrawRect(screen, x, y, 1, h, col)
	ebitenutil.DrawRect(screen, x+w-1, y, 1, h, col)
	scale := 1.5 * g.dpr
	tw := float64(len(label)*charW) * scale
	g.drawText(screen, label, x+(w-tw)/2, y+(h-lineH*scale)/2, scale, 1)
}

func (g *game) drawText(screen *ebiten.Image, msg string, x, y, scale, alpha float64) {
	msg = asciiText.Replace(msg)
	if msg == "" || alpha <= 0 {
		return
	}
	img := g.textCache[msg]
	if img == nil {
		img = ebiten.NewImage(max(1, len(msg)*charW), lineH)
		ebitenutil.DebugPrintAt(img, msg, 0, 0)
		if len(g.textCache) > 256 {
			g.textCache = make(map[string]*ebiten.Image, 64)
		}
		g.textCache[msg] = img
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(textColor)
	op.ColorScale.ScaleAlpha(float32(alpha))
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(img, op)
}

func (g *game) Layout(outsideW, outsideH int) (int, int) {
	dpr := ebiten.Monitor().DeviceScaleFactor()
	if dpr <= 0 || math.IsNaN(dpr) {
		dpr = 1
	}
	if outsideW != g.viewW || outsideH != g.viewH || dpr != g.dpr {
		g.viewW, g.viewH, g.dpr = outsideW, outsideH, dpr
		// the section is pages screens tall and sticks for all but the last
		g.tracker.SetLength((g.pages - 1) * float64(outsideH))
		g.scene.Scrubber().Resize(outsideW, outsideH, dpr)
	}
	return int(math.Round(float64(outsideW) * dpr)), int(math.Round(float64(outsideH) * dpr))
}

func pointInRect(x, y int, rect image.Rectangle) bool {
	return x >= rect.Min.X && x < rect.Max.X && y >= rect.Min.Y && y < rect.Max.Y
}

var _ scrub.Canvas = (*canvas)(nil)
