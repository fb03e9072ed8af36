package main

import (
	"context"
	"flag"
	"fmt"
	"image/png"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/studionf/scrollmix"
	"github.com/studionf/scrollmix/internal/config"
	"github.com/studionf/scrollmix/internal/frames"
	"github.com/studionf/scrollmix/internal/keyframe"
	"github.com/studionf/scrollmix/internal/mix"
	"github.com/studionf/scrollmix/internal/scrub"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML config file (defaults are built in)")
		mixPath    = flag.String("mix", "", "mix file, empty for the built-in mix")
		assetsDir  = flag.String("assets", "", "audio asset directory, overrides audio.assets")
		pathFile   = flag.String("path", "", "YAML scroll path: list of {at: seconds, value: fraction}")
		seconds    = flag.Float64("seconds", 20, "render length in seconds")
		out        = flag.String("out", "scrollmix.wav", "output WAV file")
		framesOut  = flag.String("frames-out", "", "directory for PNG snapshots of the canvas")
		every      = flag.Float64("every", 0.5, "seconds between PNG snapshots")
		width      = flag.Int("width", 960, "snapshot width")
		height     = flag.Int("height", 540, "snapshot height")
		dumpMix    = flag.String("dump-mix", "", "write the active mix as YAML to this file and exit")
	)
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatal(err)
		}
	}
	if *assetsDir != "" {
		cfg.Audio.Assets = *assetsDir
	}
	if *mixPath == "" {
		*mixPath = cfg.Audio.Mix
	}

	m := mix.Default()
	if *mixPath != "" {
		var err error
		if m, err = mix.Load(*mixPath); err != nil {
			log.Fatal(err)
		}
	}
	if *dumpMix != "" {
		if err := mix.Write(m, *dumpMix); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("wrote %s\n", *dumpMix)
		return
	}

	path := scrollmix.LinearScroll(*seconds)
	if *pathFile != "" {
		var err error
		if path, err = readPath(*pathFile); err != nil {
			log.Fatal(err)
		}
	}

	opts := scrollmix.RenderOptions{
		SampleRate: cfg.Audio.SampleRate,
		Spring:     cfg.SpringParams(),
		Engine: []scrollmix.EngineOption{
			scrollmix.WithTimeConstant(cfg.Audio.TimeConstant),
			scrollmix.WithAssetFS(os.DirFS(cfg.Audio.Assets)),
			scrollmix.WithDirectionalDucking(cfg.Audio.Ducking),
			scrollmix.WithMasterVolume(cfg.Audio.Volume),
		},
	}
	if *framesOut != "" {
		snap, err := newSnapshotter(cfg, *framesOut, *width, *height, *every)
		if err != nil {
			log.Fatal(err)
		}
		opts.OnTick = snap.tick
		defer func() {
			fmt.Printf("wrote %d snapshots to %s\n", snap.count, *framesOut)
		}()
	}

	samples, err := scrollmix.RenderSamples(m, path, *seconds, opts)
	if err != nil {
		log.Fatal(err)
	}
	wav := scrollmix.EncodeWAVFloat32LE(samples, cfg.Audio.SampleRate, 2)
	if err := os.WriteFile(*out, wav, 0o644); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("wrote %s (%.1fs, peak %.3f)\n", *out, *seconds, scrollmix.Peak(samples))
}

func readPath(file string) (keyframe.Track, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return keyframe.Track{}, err
	}
	var pts []keyframe.Point
	if err := yaml.Unmarshal(data, &pts); err != nil {
		return keyframe.Track{}, fmt.Errorf("parse %s: %w", file, err)
	}
	if len(pts) == 0 {
		return keyframe.Track{}, fmt.Errorf("%s: empty scroll path", file)
	}
	return keyframe.NewTrack(pts...), nil
}

// snapshotter paints the scrubber on a software canvas at fixed intervals
// of the render and saves each paint as PNG.
type snapshotter struct {
	dir      string
	scrubber *scrub.Scrubber
	canvas   *scrub.ImageCanvas
	every    float64
	next     float64
	count    int
}

func newSnapshotter(cfg config.Config, dir string, w, h int, every float64) (*snapshotter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	store := frames.NewStore(cfg.Frames.Count)
	opts := frames.LoadOptions{Workers: cfg.Frames.Workers}
	if err := store.Load(context.Background(), os.DirFS(cfg.Frames.Dir), cfg.Template(), opts); err != nil {
		return nil, err
	}
	if done, total := store.Progress(); done != total {
		return nil, fmt.Errorf("frames: %d/%d settled", done, total)
	}
	cv := scrub.NewImageCanvas(w, h)
	if every <= 0 {
		every = 0.5
	}
	return &snapshotter{dir: dir, scrubber: scrub.New(store, cv, cfg.Frames.Padding), canvas: cv, every: every}, nil
}

func (s *snapshotter) tick(t, p float64) {
	if t < s.next {
		return
	}
	s.next += s.every
	s.scrubber.Render(p)
	name := filepath.Join(s.dir, fmt.Sprintf("snapshot-%04d.png", s.count))
	f, err := os.Create(name)
	if err != nil {
		log.Printf("snapshot: %v", err)
		return
	}
	defer f.Close()
	if err := png.Encode(f, s.canvas.Image()); err != nil {
		log.Printf("snapshot: %v", err)
		return
	}
	s.count++
}
