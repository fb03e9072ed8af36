// Package config holds the viewer and renderer settings file.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/studionf/scrollmix/internal/frames"
	"github.com/studionf/scrollmix/internal/progress"
)

type Config struct {
	Frames FramesConfig `yaml:"frames"`
	Spring SpringConfig `yaml:"spring"`
	Audio  AudioConfig  `yaml:"audio"`
	Window WindowConfig `yaml:"window"`
}

// FramesConfig locates the image sequence: Dir/Prefix + NNN + Ext.
type FramesConfig struct {
	Dir     string  `yaml:"dir"`
	Prefix  string  `yaml:"prefix"`
	Ext     string  `yaml:"ext"`
	Digits  int     `yaml:"digits"`
	Count   int     `yaml:"count"`
	Padding float64 `yaml:"padding"`
	Workers int     `yaml:"workers"`
}

type SpringConfig struct {
	Mass      float64 `yaml:"mass"`
	Stiffness float64 `yaml:"stiffness"`
	Damping   float64 `yaml:"damping"`
	RestDelta float64 `yaml:"rest_delta"`
	RestSpeed float64 `yaml:"rest_speed"`
	TickRate  int     `yaml:"tick_rate"`
}

type AudioConfig struct {
	SampleRate   int     `yaml:"sample_rate"`
	Mix          string  `yaml:"mix"`    // mix file, empty for the built-in mix
	Assets       string  `yaml:"assets"` // directory for sampled layers
	TimeConstant float64 `yaml:"time_constant"`
	Volume       float64 `yaml:"volume"`
	Ducking      bool    `yaml:"ducking"`
}

type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	// Pages is the scrollable length in screen heights.
	Pages      float64 `yaml:"pages"`
	WheelStep  float64 `yaml:"wheel_step"` // pixels per wheel notch
	Background string  `yaml:"background"` // #rrggbb
}

func Default() Config {
	sp := progress.DefaultParams()
	return Config{
		Frames: FramesConfig{
			Dir:     "public",
			Prefix:  "sequence/ezgif-frame-",
			Ext:     ".jpg",
			Digits:  3,
			Count:   104,
			Padding: 0.9,
			Workers: 8,
		},
		Spring: SpringConfig{
			Mass:      sp.Mass,
			Stiffness: sp.Stiffness,
			Damping:   sp.Damping,
			RestDelta: sp.RestDelta,
			RestSpeed: sp.RestSpeed,
			TickRate:  sp.TickRate,
		},
		Audio: AudioConfig{
			SampleRate:   48000,
			Assets:       "public",
			TimeConstant: 0.1,
			Volume:       1,
			Ducking:      true,
		},
		Window: WindowConfig{
			Title:      "scrollmix",
			Width:      1280,
			Height:     720,
			Pages:      6,
			WheelStep:  80,
			Background: "#050505",
		},
	}
}

// Load reads path on top of Default, so a file only needs the keys it
// changes.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Write saves cfg as YAML.
func Write(cfg Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (c Config) Validate() error {
	var errs []error
	if c.Frames.Count <= 0 {
		errs = append(errs, fmt.Errorf("frames.count must be positive, got %d", c.Frames.Count))
	}
	if c.Frames.Padding <= 0 || c.Frames.Padding > 1 {
		errs = append(errs, fmt.Errorf("frames.padding must be in (0,1], got %g", c.Frames.Padding))
	}
	if c.Spring.Mass <= 0 || c.Spring.Stiffness <= 0 || c.Spring.Damping < 0 {
		errs = append(errs, errors.New("spring needs positive mass and stiffness and non-negative damping"))
	}
	if c.Spring.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("spring.tick_rate must be positive, got %d", c.Spring.TickRate))
	}
	if c.Audio.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("audio.sample_rate must be positive, got %d", c.Audio.SampleRate))
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		errs = append(errs, fmt.Errorf("audio.volume must be in [0,1], got %g", c.Audio.Volume))
	}
	if c.Window.Pages < 1 {
		errs = append(errs, fmt.Errorf("window.pages must be at least 1, got %g", c.Window.Pages))
	}
	if _, err := ParseColor(c.Window.Background); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Template returns the frame path template relative to Frames.Dir.
func (c Config) Template() frames.PathTemplate {
	return frames.PathTemplate{Prefix: c.Frames.Prefix, Ext: c.Frames.Ext, Digits: c.Frames.Digits}
}

// SpringParams converts the spring section for progress.NewSource.
func (c Config) SpringParams() progress.Params {
	return progress.Params{
		Mass:      c.Spring.Mass,
		Stiffness: c.Spring.Stiffness,
		Damping:   c.Spring.Damping,
		RestDelta: c.Spring.RestDelta,
		RestSpeed: c.Spring.RestSpeed,
		TickRate:  c.Spring.TickRate,
	}
}
