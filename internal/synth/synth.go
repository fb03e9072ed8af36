// Package synth holds the sound sources of a mix layer: oscillator banks,
// sampled loops and the resonant filter placed after them.
package synth

import (
	"fmt"
	"math"
	"strings"
)

// Generator produces one stereo frame per call.
type Generator interface {
	Next() (l, r float32)
}

// Silence is a Generator that outputs zeros. It stands in for layers whose
// asset failed to load.
type Silence struct{}

func (Silence) Next() (float32, float32) { return 0, 0 }

// Wave is an oscillator waveform.
type Wave int

const (
	WaveSine Wave = iota
	WaveTriangle
	WaveSaw
	WaveSquare
)

// ParseWave maps a waveform name to a Wave. The empty name is sine.
func ParseWave(name string) (Wave, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sine":
		return WaveSine, nil
	case "triangle":
		return WaveTriangle, nil
	case "saw":
		return WaveSaw, nil
	case "square":
		return WaveSquare, nil
	}
	return WaveSine, fmt.Errorf("synth: unknown wave %q", name)
}

// sample returns the waveform value at phase ph in [0,1). Saw and square use
// a polyBLEP correction to keep the drone free of aliasing whistles.
func (w Wave) sample(ph, dt float64) float64 {
	switch w {
	case WaveTriangle:
		if ph < 0.5 {
			return 4*ph - 1
		}
		return 3 - 4*ph
	case WaveSaw:
		return 2*ph - 1 - polyBLEP(ph, dt)
	case WaveSquare:
		v := -1.0
		if ph < 0.5 {
			v = 1
		}
		v += polyBLEP(ph, dt)
		h := ph + 0.5
		if h >= 1 {
			h--
		}
		return v - polyBLEP(h, dt)
	default:
		return math.Sin(2 * math.Pi * ph)
	}
}

func polyBLEP(t, dt float64) float64 {
	switch {
	case dt <= 0:
		return 0
	case t < dt:
		t /= dt
		return t + t - t*t - 1
	case t > 1-dt:
		t = (t - 1) / dt
		return t*t + t + t + 1
	}
	return 0
}
