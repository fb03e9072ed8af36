// Package lfo provides slow modulation for mix layers: a gentle tremolo on
// gain or a drifting filter cutoff.
package lfo

import (
	"fmt"
	"math"
	"strings"
)

// Shape is an LFO waveform.
type Shape int

const (
	Sine Shape = iota
	Triangle
	Saw
	Square
	Random // sample-and-hold, one value per cycle
)

func (s Shape) String() string {
	switch s {
	case Sine:
		return "sine"
	case Triangle:
		return "triangle"
	case Saw:
		return "saw"
	case Square:
		return "square"
	case Random:
		return "random"
	}
	return fmt.Sprintf("Shape(%d)", int(s))
}

// ParseShape maps a shape name to a Shape. The empty name is Sine.
func ParseShape(name string) (Shape, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sine":
		return Sine, nil
	case "triangle", "tri":
		return Triangle, nil
	case "saw":
		return Saw, nil
	case "square":
		return Square, nil
	case "random", "s&h":
		return Random, nil
	}
	return Sine, fmt.Errorf("lfo: unknown shape %q", name)
}

// LFO produces one modulation value per sample in [-depth, depth].
type LFO struct {
	shape Shape
	depth float64
	rate  float64 // Hz
	phase float64 // [0,1)
	held  float64
	seed  uint32
}

// New returns an LFO. A zero depth or rate gives an inactive LFO whose
// output is always 0.
func New(shape Shape, rate, depth float64) *LFO {
	return &LFO{shape: shape, rate: rate, depth: depth, seed: 0x9e3779b9}
}

// Active reports whether the LFO produces any modulation.
func (l *LFO) Active() bool {
	return l != nil && l.depth != 0 && l.rate > 0
}

// Depth returns the modulation depth.
func (l *LFO) Depth() float64 { return l.depth }

// Next advances by one sample and returns the current modulation value.
func (l *LFO) Next(sampleRate float64) float64 {
	if !l.Active() || sampleRate <= 0 {
		return 0
	}
	v := l.shapeAt(l.phase)
	prev := l.phase
	l.phase += l.rate / sampleRate
	l.phase -= math.Floor(l.phase)
	if l.shape == Random && l.phase < prev {
		l.held = l.nextRandom()
	}
	return v * l.depth
}

func (l *LFO) shapeAt(ph float64) float64 {
	switch l.shape {
	case Triangle:
		if ph < 0.5 {
			return 4*ph - 1
		}
		return 3 - 4*ph
	case Saw:
		return 1 - 2*ph
	case Square:
		if ph < 0.5 {
			return 1
		}
		return -1
	case Random:
		return l.held
	default:
		return math.Sin(2 * math.Pi * ph)
	}
}

// xorshift32 mapped to [-1,1).
func (l *LFO) nextRandom() float64 {
	x := l.seed
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	l.seed = x
	return float64(x)/float64(1<<31) - 1
}

// Reset rewinds the phase.
func (l *LFO) Reset() {
	l.phase = 0
	l.held = 0
}

// Gain applies a tremolo value m to gain g. The result stays in [0,1].
func Gain(g, m float64) float64 {
	v := g * (1 + m)
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Cutoff shifts a cutoff frequency by m octaves.
func Cutoff(hz, m float64) float64 {
	return hz * math.Exp2(m)
}
