// Package effects is the master bus of a mix: a chain of stereo processors
// built from the mix file.
package effects

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

var ErrUnknownEffect = errors.New("effects: unknown effect")

// Effector processes one stereo frame.
type Effector interface {
	Process(l, r float32) (float32, float32)
	Reset()
}

// Chain applies effects in order.
type Chain struct {
	effects []Effector
}

func NewChain(effects ...Effector) *Chain {
	return &Chain{effects: effects}
}

func (c *Chain) Process(l, r float32) (float32, float32) {
	for _, e := range c.effects {
		l, r = e.Process(l, r)
	}
	return l, r
}

func (c *Chain) Reset() {
	for _, e := range c.effects {
		e.Reset()
	}
}

func (c *Chain) Add(e Effector) {
	c.effects = append(c.effects, e)
}

// Len returns the number of stages.
func (c *Chain) Len() int { return len(c.effects) }

// Params are named effect settings. Missing names fall back to defaults.
type Params map[string]float64

func (p Params) get(name string, def float64) float64 {
	if v, ok := p[name]; ok && !math.IsNaN(v) && !math.IsInf(v, 0) {
		return v
	}
	return def
}

// check reports names that the effect does not understand.
func (p Params) check(kind string, known ...string) error {
	var unknown []string
	for k := range p {
		found := false
		for _, n := range known {
			if k == n {
				found = true
				break
			}
		}
		if !found {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return fmt.Errorf("effects: %s: unknown params %s", kind, strings.Join(unknown, ", "))
}

// New builds one effect by name.
func New(kind string, sampleRate int, p Params) (Effector, error) {
	switch strings.ToLower(kind) {
	case "reverb":
		if err := p.check(kind, "room", "damp", "mix", "width"); err != nil {
			return nil, err
		}
		return NewReverb(sampleRate, p.get("room", 0.7), p.get("damp", 0.5), p.get("mix", 0.25), p.get("width", 1)), nil
	case "delay":
		if err := p.check(kind, "time", "feedback", "mix", "tone"); err != nil {
			return nil, err
		}
		return NewDelay(sampleRate, p.get("time", 0.3), p.get("feedback", 0.35), p.get("mix", 0.2), p.get("tone", 4000)), nil
	case "compressor":
		if err := p.check(kind, "threshold", "ratio", "attack", "release", "ceiling"); err != nil {
			return nil, err
		}
		return NewCompressor(sampleRate, p.get("threshold", 0.7), p.get("ratio", 4), p.get("attack", 0.01), p.get("release", 0.2), p.get("ceiling", 1)), nil
	case "drive":
		if err := p.check(kind, "drive", "mix"); err != nil {
			return nil, err
		}
		return NewDrive(p.get("drive", 2), p.get("mix", 0.5)), nil
	case "tone":
		if err := p.check(kind, "low", "mid", "high", "low_freq", "high_freq"); err != nil {
			return nil, err
		}
		return NewTone(sampleRate, p.get("low", 1), p.get("mid", 1), p.get("high", 1), p.get("low_freq", 250), p.get("high_freq", 4000)), nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownEffect, kind)
}

// Spec names an effect and its parameters.
type Spec struct {
	Type   string
	Params Params
}

// Build creates a chain from specs in order.
func Build(sampleRate int, specs []Spec) (*Chain, error) {
	c := NewChain()
	for i, s := range specs {
		e, err := New(s.Type, sampleRate, s.Params)
		if err != nil {
			return nil, fmt.Errorf("effect %d: %w", i, err)
		}
		c.Add(e)
	}
	return c, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// onePole returns the smoothing coefficient of a one-pole low-pass at hz.
func onePole(sampleRate int, hz float64) float32 {
	if hz <= 0 || sampleRate <= 0 {
		return 1
	}
	return float32(1 - math.Exp(-2*math.Pi*hz/float64(sampleRate)))
}
