package synth

import (
	"errors"
	"math"
)

// Partial configures one oscillator of a Bank.
type Partial struct {
	Freq   float64
	Level  float64
	Wave   Wave
	Detune float64 // cents
}

type osc struct {
	wave  Wave
	inc   float64
	phase float64
	level float64
}

// Bank is a set of free-running oscillators summed to mono and normalised so
// that the peak never exceeds 1.
type Bank struct {
	oscs []osc
}

// NewBank builds a bank for sampleRate. Partials above Nyquist are dropped.
func NewBank(sampleRate int, partials []Partial) (*Bank, error) {
	if sampleRate <= 0 {
		return nil, errors.New("synth: sample rate must be positive")
	}
	nyquist := float64(sampleRate) / 2
	var total float64
	b := &Bank{}
	for i, p := range partials {
		f := p.Freq * math.Exp2(p.Detune/1200)
		if f <= 0 || f >= nyquist || p.Level <= 0 {
			continue
		}
		b.oscs = append(b.oscs, osc{
			wave:  p.Wave,
			inc:   f / float64(sampleRate),
			phase: float64(i) * 0.173, // spread start phases
			level: p.Level,
		})
		total += p.Level
	}
	if total > 1 {
		for i := range b.oscs {
			b.oscs[i].level /= total
		}
	}
	for i := range b.oscs {
		b.oscs[i].phase -= math.Floor(b.oscs[i].phase)
	}
	return b, nil
}

// Len returns the number of sounding oscillators.
func (b *Bank) Len() int { return len(b.oscs) }

func (b *Bank) Next() (float32, float32) {
	var v float64
	for i := range b.oscs {
		o := &b.oscs[i]
		v += o.wave.sample(o.phase, o.inc) * o.level
		o.phase += o.inc
		if o.phase >= 1 {
			o.phase--
		}
	}
	return float32(v), float32(v)
}
