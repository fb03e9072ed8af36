package scrollmix

import (
	"image"
	"image/color"
	"testing"

	"github.com/studionf/scrollmix/internal/frames"
	"github.com/studionf/scrollmix/internal/progress"
	"github.com/studionf/scrollmix/internal/scrub"
)

func solid(c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 16, 9))
	for y := 0; y < 9; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func settle(src *progress.Source) {
	for i := 0; i < 600 && !src.Settled(); i++ {
		src.Tick()
	}
}

func newTestScene(t *testing.T, store *frames.Store) (*Scene, *fakeOutput) {
	t.Helper()
	out := &fakeOutput{}
	e := newTestEngine(t, rampMix(), out)
	if err := e.Initialize(); err != nil {
		t.Fatal(err)
	}
	src := progress.NewSource(progress.DefaultParams())
	sc := scrub.New(store, scrub.NewImageCanvas(160, 90), 0.9)
	return NewScene(src, sc, e), out
}

func TestSceneDrivesConsumers(t *testing.T) {
	store := frames.NewStore(4)
	for i := 0; i < 4; i++ {
		store.Put(i, solid(color.Gray{Y: uint8(60 * i)}))
	}
	s, _ := newTestScene(t, store)
	defer s.Close()

	s.Source().SetRaw(1)
	settle(s.Source())
	if s.Scrubber().LastIndex() != 3 {
		t.Fatalf("LastIndex = %d, want 3", s.Scrubber().LastIndex())
	}
	if s.Engine().Progress() != 1 {
		t.Fatalf("engine progress = %v", s.Engine().Progress())
	}
	if s.Scrubber().Paints() == 0 {
		t.Fatal("no paints")
	}
}

func TestSceneCloseSilencesSubscribers(t *testing.T) {
	store := frames.NewStore(4)
	for i := 0; i < 4; i++ {
		store.Put(i, solid(color.White))
	}
	s, out := newTestScene(t, store)
	var extra int
	s.Subscribe(func(float64) { extra++ })

	s.Source().SetRaw(0.5)
	settle(s.Source())
	paints, p, calls := s.Scrubber().Paints(), s.Engine().Progress(), extra

	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if n := s.Source().Subscribers(); n != 0 {
		t.Fatalf("%d subscribers left", n)
	}
	s.Source().SetRaw(1)
	settle(s.Source())
	s.Source().Jump(0.2)

	if s.Scrubber().Paints() != paints {
		t.Fatalf("paints after close: %d -> %d", paints, s.Scrubber().Paints())
	}
	if s.Engine().Progress() != p {
		t.Fatalf("engine progress after close: %v -> %v", p, s.Engine().Progress())
	}
	if extra != calls {
		t.Fatalf("extra handler called after close")
	}
	if out.closes != 1 || s.Engine().IsActive() {
		t.Fatalf("engine not closed: closes=%d", out.closes)
	}
	if s.Refresh() {
		t.Fatal("Refresh painted after close")
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestSceneRefreshPaintsLateFrame(t *testing.T) {
	store := frames.NewStore(3)
	store.Put(0, solid(color.Black))
	s, _ := newTestScene(t, store)
	defer s.Close()

	s.Source().Jump(1)
	if s.Scrubber().LastIndex() != -1 {
		t.Fatalf("painted a missing frame: %d", s.Scrubber().LastIndex())
	}
	if s.Refresh() {
		t.Fatal("Refresh painted a missing frame")
	}
	store.Put(2, solid(color.White))
	if !s.Refresh() || s.Scrubber().LastIndex() != 2 {
		t.Fatalf("late frame not painted, LastIndex=%d", s.Scrubber().LastIndex())
	}
	if s.Refresh() {
		t.Fatal("Refresh repainted an up-to-date canvas")
	}
}
