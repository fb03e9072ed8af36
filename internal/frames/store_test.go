package frames

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"testing/fstest"
)

func encodePNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestPathTemplate(t *testing.T) {
	tmpl := PathTemplate{Prefix: "sequence/ezgif-frame-", Ext: ".jpg"}
	for _, tc := range []struct {
		index int
		want  string
	}{
		{1, "sequence/ezgif-frame-001.jpg"},
		{42, "sequence/ezgif-frame-042.jpg"},
		{104, "sequence/ezgif-frame-104.jpg"},
	} {
		if got := tmpl.Path(tc.index); got != tc.want {
			t.Errorf("Path(%d) = %q, want %q", tc.index, got, tc.want)
		}
	}
	if got := (PathTemplate{Prefix: "f", Ext: "png", Digits: 4}).Path(7); got != "f0007.png" {
		t.Errorf("custom template path = %q", got)
	}
}

func TestLoadToleratesFailures(t *testing.T) {
	tmpl := PathTemplate{Prefix: "seq/f", Ext: ".png"}
	fsys := fstest.MapFS{}
	const n = 6
	for i := 1; i <= n; i++ {
		switch i {
		case 3:
			fsys[tmpl.Path(i)] = &fstest.MapFile{Data: []byte("not an image")}
		case 5:
			// missing on disk
		default:
			fsys[tmpl.Path(i)] = &fstest.MapFile{Data: encodePNG(t, 4, 2, color.White)}
		}
	}

	s := NewStore(n)
	var loadedCalls int
	s.OnLoaded(func() { loadedCalls++ })
	if s.AllLoaded() {
		t.Fatalf("fresh store reports loaded")
	}
	if err := s.Load(context.Background(), fsys, tmpl, LoadOptions{Workers: 3}); err != nil {
		t.Fatalf("load: %v", err)
	}
	if !s.AllLoaded() {
		done, total := s.Progress()
		t.Fatalf("store not loaded: %d/%d", done, total)
	}
	if loadedCalls != 1 {
		t.Fatalf("OnLoaded fired %d times, want 1", loadedCalls)
	}
	for i := 0; i < n; i++ {
		want := Ready
		if i == 2 || i == 4 {
			want = Failed
		}
		if got := s.State(i); got != want {
			t.Errorf("frame %d state = %v, want %v", i, got, want)
		}
	}
	if !errors.Is(s.Err(2), ErrDecode) {
		t.Errorf("corrupt frame error = %v, want ErrDecode", s.Err(2))
	}
	if s.Err(4) == nil {
		t.Errorf("missing frame should carry an error")
	}
	if _, ok := s.Frame(2); ok {
		t.Errorf("failed frame must not be paintable")
	}
	img, ok := s.Frame(0)
	if !ok || img.Bounds().Dx() != 4 {
		t.Errorf("frame 0 = %v, %v", img, ok)
	}
}

func TestLoadCancelled(t *testing.T) {
	tmpl := PathTemplate{Prefix: "f", Ext: ".png"}
	fsys := fstest.MapFS{tmpl.Path(1): &fstest.MapFile{Data: encodePNG(t, 1, 1, color.Black)}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewStore(1)
	if err := s.Load(ctx, fsys, tmpl, LoadOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("load error = %v, want context.Canceled", err)
	}
	if s.State(0) != Pending {
		t.Fatalf("cancelled load should leave frames pending, got %v", s.State(0))
	}
}

func TestSettledEntriesAreImmutable(t *testing.T) {
	s := NewStore(2)
	a := image.NewRGBA(image.Rect(0, 0, 1, 1))
	s.Put(0, a)
	s.Fail(0, errors.New("late failure"))
	s.Put(0, image.NewRGBA(image.Rect(0, 0, 9, 9)))
	img, ok := s.Frame(0)
	if !ok || img != image.Image(a) {
		t.Fatalf("settled frame changed")
	}
	if done, _ := s.Progress(); done != 1 {
		t.Fatalf("progress = %d, want 1", done)
	}
}

func TestOutOfRangeIndices(t *testing.T) {
	s := NewStore(1)
	if s.Ready(-1) || s.Ready(1) {
		t.Fatalf("out of range index reported ready")
	}
	s.Put(5, image.NewRGBA(image.Rect(0, 0, 1, 1)))
	if done, _ := s.Progress(); done != 0 {
		t.Fatalf("out of range put counted")
	}
}

func TestOnLoadedAfterCompletionRunsImmediately(t *testing.T) {
	s := NewStore(0)
	ran := false
	s.OnLoaded(func() { ran = true })
	if !ran {
		t.Fatalf("empty store should be loaded immediately")
	}
}
