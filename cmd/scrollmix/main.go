package main

import (
	"context"
	"flag"
	"log"
	"os"
	"runtime"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/studionf/scrollmix"
	intaudio "github.com/studionf/scrollmix/internal/audio"
	"github.com/studionf/scrollmix/internal/config"
	"github.com/studionf/scrollmix/internal/frames"
	"github.com/studionf/scrollmix/internal/keyframe"
	"github.com/studionf/scrollmix/internal/mix"
	"github.com/studionf/scrollmix/internal/progress"
	"github.com/studionf/scrollmix/internal/scrub"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML config file (defaults are built in)")
		mixPath    = flag.String("mix", "", "mix file, overrides audio.mix")
		framesDir  = flag.String("frames", "", "frame directory, overrides frames.dir")
		assetsDir  = flag.String("assets", "", "audio asset directory, overrides audio.assets")
		volume     = flag.Float64("volume", -1, "master volume 0..1, overrides audio.volume")
		sound      = flag.Bool("sound", false, "start with sound on")
	)
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatal(err)
		}
	}
	if *mixPath != "" {
		cfg.Audio.Mix = *mixPath
	}
	if *framesDir != "" {
		cfg.Frames.Dir = *framesDir
	}
	if *assetsDir != "" {
		cfg.Audio.Assets = *assetsDir
	}
	if *volume >= 0 {
		cfg.Audio.Volume = *volume
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	m := mix.Default()
	if cfg.Audio.Mix != "" {
		var err error
		if m, err = mix.Load(cfg.Audio.Mix); err != nil {
			log.Fatal(err)
		}
	}

	bg, _ := config.ParseColor(cfg.Window.Background)
	sc := newScope()
	out := intaudio.NewEbiten(cfg.Audio.SampleRate, intaudio.WithRequireReady(runtime.GOOS == "js"))
	engine, err := scrollmix.NewEngine(m,
		scrollmix.WithSampleRate(cfg.Audio.SampleRate),
		scrollmix.WithOutput(out),
		scrollmix.WithTimeConstant(cfg.Audio.TimeConstant),
		scrollmix.WithAssetFS(os.DirFS(cfg.Audio.Assets)),
		scrollmix.WithDirectionalDucking(cfg.Audio.Ducking),
		scrollmix.WithSampleTap(sc.Tap),
	)
	if err != nil {
		log.Fatal(err)
	}
	engine.SetMasterVolume(cfg.Audio.Volume)

	store := frames.NewStore(cfg.Frames.Count)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		opts := frames.LoadOptions{Workers: cfg.Frames.Workers}
		if err := store.Load(ctx, os.DirFS(cfg.Frames.Dir), cfg.Template(), opts); err != nil {
			log.Printf("frames: load stopped: %v", err)
		}
	}()
	store.OnLoaded(func() {
		done, total := store.Progress()
		log.Printf("frames: %d/%d settled", done, total)
	})

	cv := newCanvas()
	source := progress.NewSource(cfg.SpringParams())
	scene := scrollmix.NewScene(source, scrub.New(store, cv, cfg.Frames.Padding), engine)
	defer scene.Close()

	g := &game{
		scene:     scene,
		store:     store,
		canvas:    cv,
		tracker:   progress.NewScrollTracker(0),
		scope:     sc,
		cues:      keyframe.DefaultCues(),
		fade:      keyframe.CanvasFade(),
		bg:        bg,
		pages:     cfg.Window.Pages,
		wheelStep: cfg.Window.WheelStep,
		dpr:       1,
		textCache: make(map[string]*ebiten.Image, 64),
	}
	if *sound {
		g.toggleSound()
	}

	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowTitle(cfg.Window.Title)
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
