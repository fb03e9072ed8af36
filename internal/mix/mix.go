// Package mix describes an ambient mix as data: layers, the progress zones
// that drive them and the master bus. A new mix is a new configuration, not
// new code.
package mix

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/studionf/scrollmix/internal/lfo"
	"github.com/studionf/scrollmix/internal/synth"
)

const (
	MinFrequency = 20.0
	MaxFrequency = 22000.0

	// DefaultTimeConstant is the smoothing time constant for live parameters.
	DefaultTimeConstant = 0.1
)

var (
	ErrNoLayers = errors.New("mix has no layers")
	ErrZones    = errors.New("invalid zones")
	ErrCurve    = errors.New("invalid curve")
	ErrSource   = errors.New("invalid layer source")
)

// SourceKind is the kind of sound a layer plays.
type SourceKind string

const (
	SourceOscillators SourceKind = "oscillators"
	SourceSample      SourceKind = "sample"
)

// Partial is one oscillator of a bank.
type Partial struct {
	Freq   float64 `yaml:"freq"`
	Level  float64 `yaml:"level"`
	Wave   string  `yaml:"wave"`
	Detune float64 `yaml:"detune,omitempty"` // cents
}

// Filter is the optional filter stage of a layer. Its cutoff comes from the
// zones.
type Filter struct {
	Kind      string  `yaml:"kind"` // lowpass, highpass, bandpass
	Resonance float64 `yaml:"resonance,omitempty"`
}

// Modulation is a slow LFO applied to a layer parameter.
type Modulation struct {
	Target string  `yaml:"target"` // gain or cutoff
	Depth  float64 `yaml:"depth"`  // gain: fraction, cutoff: octaves
	Rate   float64 `yaml:"rate"`   // Hz
	Wave   string  `yaml:"wave"`
}

// Zone is a half-open progress interval [Start, End) with its target
// formulas. The last zone of a layer also covers End.
type Zone struct {
	Start  float64 `yaml:"start"`
	End    float64 `yaml:"end"`
	Gain   Curve   `yaml:"gain"`
	Cutoff *Curve  `yaml:"cutoff,omitempty"`
}

// Layer is one sound source in the mix.
type Layer struct {
	Name        string      `yaml:"name"`
	Source      SourceKind  `yaml:"source"`
	Oscillators []Partial   `yaml:"oscillators,omitempty"`
	Sample      string      `yaml:"sample,omitempty"`
	Pan         float64     `yaml:"pan,omitempty"` // -1 left .. 1 right
	Filter      *Filter     `yaml:"filter,omitempty"`
	LFO         *Modulation `yaml:"lfo,omitempty"`
	Zones       []Zone      `yaml:"zones"`
}

// Effect is one stage of the master bus chain.
type Effect struct {
	Type   string             `yaml:"type"`
	Params map[string]float64 `yaml:"params,omitempty"`
}

// Mix is a complete mix configuration.
type Mix struct {
	Name         string   `yaml:"name"`
	TimeConstant float64  `yaml:"time_constant,omitempty"`
	MasterGain   float64  `yaml:"master_gain,omitempty"`
	Layers       []Layer  `yaml:"layers"`
	Effects      []Effect `yaml:"effects,omitempty"`
}

// Target is the instantaneous parameter set of a layer at some progress.
type Target struct {
	Layer     string
	Zone      int
	Gain      float64
	Cutoff    float64
	HasCutoff bool
}

// ClampGain limits a gain to [0,1]. NaN maps to 0.
func ClampGain(g float64) float64 {
	if math.IsNaN(g) || g < 0 {
		return 0
	}
	if g > 1 {
		return 1
	}
	return g
}

// ClampFrequency limits a frequency to the audible [20, 22000] Hz range.
// NaN maps to the upper bound, which leaves a low-pass filter open.
func ClampFrequency(f float64) float64 {
	if math.IsNaN(f) || f > MaxFrequency {
		return MaxFrequency
	}
	if f < MinFrequency {
		return MinFrequency
	}
	return f
}

// ZoneIndex returns the index of the zone containing p. p is clamped to
// [0,1] first. It returns -1 for a layer without zones.
func (l Layer) ZoneIndex(p float64) int {
	if len(l.Zones) == 0 {
		return -1
	}
	p = clamp01(p)
	for i, z := range l.Zones {
		if p >= z.Start && p < z.End {
			return i
		}
	}
	return len(l.Zones) - 1
}

// Target evaluates the layer's zone formulas at progress p. The result is
// already clamped to the safe gain and frequency ranges.
func (l Layer) Target(p float64) Target {
	t := Target{Layer: l.Name, Zone: l.ZoneIndex(p)}
	if t.Zone < 0 {
		return t
	}
	p = clamp01(p)
	z := l.Zones[t.Zone]
	u := 0.0
	if span := z.End - z.Start; span > 0 {
		u = (p - z.Start) / span
	}
	t.Gain = ClampGain(z.Gain.Eval(u))
	if l.Filter != nil && z.Cutoff != nil {
		t.Cutoff = ClampFrequency(z.Cutoff.Eval(u))
		t.HasCutoff = true
	}
	return t
}

// Targets evaluates every layer at p.
func (m Mix) Targets(p float64) []Target {
	out := make([]Target, len(m.Layers))
	for i, l := range m.Layers {
		out[i] = l.Target(p)
	}
	return out
}

// Validate checks that every layer has a usable source and that its zones
// are contiguous, strictly increasing and cover [0,1] exactly.
func (m Mix) Validate() error {
	if len(m.Layers) == 0 {
		return ErrNoLayers
	}
	seen := make(map[string]bool, len(m.Layers))
	for i, l := range m.Layers {
		name := l.Name
		if name == "" {
			name = fmt.Sprintf("#%d", i)
		}
		if seen[name] {
			return fmt.Errorf("layer %s: duplicate name", name)
		}
		seen[name] = true
		if err := l.validateSource(); err != nil {
			return fmt.Errorf("layer %s: %w", name, err)
		}
		if err := ValidateZones(l.Zones); err != nil {
			return fmt.Errorf("layer %s: %w", name, err)
		}
		for zi, z := range l.Zones {
			if err := z.Gain.validate(); err != nil {
				return fmt.Errorf("layer %s zone %d gain: %w", name, zi, err)
			}
			if z.Cutoff != nil {
				if err := z.Cutoff.validate(); err != nil {
					return fmt.Errorf("layer %s zone %d cutoff: %w", name, zi, err)
				}
			}
			if l.Filter != nil && z.Cutoff == nil {
				return fmt.Errorf("layer %s zone %d: %w: filtered layer needs a cutoff curve", name, zi, ErrCurve)
			}
		}
	}
	return nil
}

func (l Layer) validateSource() error {
	switch l.Source {
	case SourceOscillators:
		if len(l.Oscillators) == 0 {
			return fmt.Errorf("%w: oscillator layer without oscillators", ErrSource)
		}
		for _, p := range l.Oscillators {
			if p.Freq <= 0 {
				return fmt.Errorf("%w: oscillator frequency %g", ErrSource, p.Freq)
			}
			if _, err := synth.ParseWave(p.Wave); err != nil {
				return fmt.Errorf("%w: %v", ErrSource, err)
			}
		}
	case SourceSample:
		if strings.TrimSpace(l.Sample) == "" {
			return fmt.Errorf("%w: sample layer without asset", ErrSource)
		}
	default:
		return fmt.Errorf("%w: unknown source %q", ErrSource, l.Source)
	}
	if l.Filter != nil {
		if _, err := synth.ParseFilterKind(l.Filter.Kind); err != nil {
			return fmt.Errorf("%w: %v", ErrSource, err)
		}
	}
	if l.LFO != nil {
		switch l.LFO.Target {
		case "gain":
		case "cutoff":
			if l.Filter == nil {
				return fmt.Errorf("%w: cutoff lfo on unfiltered layer", ErrSource)
			}
		default:
			return fmt.Errorf("%w: unknown lfo target %q", ErrSource, l.LFO.Target)
		}
		if _, err := lfo.ParseShape(l.LFO.Wave); err != nil {
			return fmt.Errorf("%w: %v", ErrSource, err)
		}
	}
	return nil
}

// ValidateZones checks that zones start at 0, end at 1, and that each zone
// starts where the previous one ended with End > Start.
func ValidateZones(zones []Zone) error {
	if len(zones) == 0 {
		return fmt.Errorf("%w: no zones", ErrZones)
	}
	if zones[0].Start != 0 {
		return fmt.Errorf("%w: first zone starts at %g, want 0", ErrZones, zones[0].Start)
	}
	for i, z := range zones {
		if !(z.End > z.Start) {
			return fmt.Errorf("%w: zone %d is empty or reversed [%g, %g)", ErrZones, i, z.Start, z.End)
		}
		if i > 0 && z.Start != zones[i-1].End {
			if z.Start > zones[i-1].End {
				return fmt.Errorf("%w: gap between %g and %g", ErrZones, zones[i-1].End, z.Start)
			}
			return fmt.Errorf("%w: zones overlap at %g", ErrZones, z.Start)
		}
	}
	if last := zones[len(zones)-1].End; last != 1 {
		return fmt.Errorf("%w: last zone ends at %g, want 1", ErrZones, last)
	}
	return nil
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
