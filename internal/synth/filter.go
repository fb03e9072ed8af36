package synth

import (
	"fmt"
	"math"
	"strings"
)

// FilterKind selects the filter response.
type FilterKind int

const (
	LowPass FilterKind = iota
	HighPass
	BandPass
)

// ParseFilterKind maps lowpass, highpass or bandpass to a FilterKind.
func ParseFilterKind(name string) (FilterKind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "lowpass", "lp":
		return LowPass, nil
	case "highpass", "hp":
		return HighPass, nil
	case "bandpass", "bp":
		return BandPass, nil
	}
	return LowPass, fmt.Errorf("synth: unknown filter %q", name)
}

// Filter is a stereo topology-preserving state variable filter (Simper).
// The cutoff may change every sample without zipper noise.
type Filter struct {
	kind       FilterKind
	sampleRate float64
	k          float64
	cutoff     float64
	a1, a2, a3 float64
	ic1, ic2   [2]float64
}

// NewFilter returns a filter at cutoff Hz with quality q. q <= 0 selects a
// Butterworth response.
func NewFilter(kind FilterKind, sampleRate int, cutoff, q float64) *Filter {
	if q <= 0 {
		q = math.Sqrt2 / 2
	}
	f := &Filter{kind: kind, sampleRate: float64(sampleRate), k: 1 / q}
	f.SetCutoff(cutoff)
	return f
}

// Cutoff returns the current cutoff frequency.
func (f *Filter) Cutoff() float64 { return f.cutoff }

// SetCutoff moves the cutoff. Values are limited below Nyquist.
func (f *Filter) SetCutoff(hz float64) {
	if hz == f.cutoff && f.a1 != 0 {
		return
	}
	f.cutoff = hz
	ratio := hz / f.sampleRate
	if ratio < 0 || math.IsNaN(ratio) {
		ratio = 0
	}
	if ratio > 0.49 {
		ratio = 0.49
	}
	g := math.Tan(math.Pi * ratio)
	f.a1 = 1 / (1 + g*(g+f.k))
	f.a2 = g * f.a1
	f.a3 = g * f.a2
}

// Process filters one stereo frame.
func (f *Filter) Process(l, r float32) (float32, float32) {
	return float32(f.step(0, float64(l))), float32(f.step(1, float64(r)))
}

func (f *Filter) step(c int, x float64) float64 {
	v3 := x - f.ic2[c]
	v1 := f.a1*f.ic1[c] + f.a2*v3
	v2 := f.ic2[c] + f.a2*f.ic1[c] + f.a3*v3
	f.ic1[c] = 2*v1 - f.ic1[c]
	f.ic2[c] = 2*v2 - f.ic2[c]
	switch f.kind {
	case HighPass:
		return x - f.k*v1 - v2
	case BandPass:
		return v1
	default:
		return v2
	}
}

// Reset clears the integrator state.
func (f *Filter) Reset() {
	f.ic1 = [2]float64{}
	f.ic2 = [2]float64{}
}
