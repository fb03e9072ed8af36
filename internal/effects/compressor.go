package effects

import "math"

// Compressor is a stereo-linked peak compressor followed by a hard ceiling,
// so the bus never leaves [-ceiling, ceiling].
type Compressor struct {
	threshold float32
	ratio     float32
	attack    float32
	release   float32
	ceiling   float32
	env       float32
}

// NewCompressor returns a compressor. threshold and ceiling are linear
// amplitudes, attack and release are in seconds.
func NewCompressor(sampleRate int, threshold, ratio, attack, release, ceiling float64) *Compressor {
	if ratio < 1 {
		ratio = 1
	}
	return &Compressor{
		threshold: float32(clamp(threshold, 1e-4, 1)),
		ratio:     float32(ratio),
		attack:    envCoef(sampleRate, attack),
		release:   envCoef(sampleRate, release),
		ceiling:   float32(clamp(ceiling, 0.01, 1)),
	}
}

func envCoef(sampleRate int, sec float64) float32 {
	if sec <= 0 || sampleRate <= 0 {
		return 1
	}
	return float32(1 - math.Exp(-1/(sec*float64(sampleRate))))
}

func (c *Compressor) Process(l, r float32) (float32, float32) {
	peak := max(abs32(l), abs32(r))
	if peak > c.env {
		c.env += c.attack * (peak - c.env)
	} else {
		c.env += c.release * (peak - c.env)
	}
	g := c.gain()
	return c.limit(l * g), c.limit(r * g)
}

// GainReduction returns the current gain factor in (0,1].
func (c *Compressor) GainReduction() float32 { return c.gain() }

func (c *Compressor) gain() float32 {
	if c.env <= c.threshold {
		return 1
	}
	over := float64(c.env / c.threshold)
	return float32(math.Pow(over, 1/float64(c.ratio)-1))
}

func (c *Compressor) limit(v float32) float32 {
	if v > c.ceiling {
		return c.ceiling
	}
	if v < -c.ceiling {
		return -c.ceiling
	}
	return v
}

func (c *Compressor) Reset() { c.env = 0 }

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
