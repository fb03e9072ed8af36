package effects

import "math"

// Drive is a tanh saturator blended with the dry signal. Its output is
// normalised so that full scale input stays at full scale.
type Drive struct {
	drive float64
	norm  float64
	mix   float32
}

func NewDrive(drive, mix float64) *Drive {
	if drive < 1 {
		drive = 1
	}
	return &Drive{drive: drive, norm: 1 / math.Tanh(drive), mix: float32(clamp(mix, 0, 1))}
}

func (d *Drive) Process(l, r float32) (float32, float32) {
	return d.shape(l), d.shape(r)
}

func (d *Drive) shape(x float32) float32 {
	w := float32(math.Tanh(float64(x)*d.drive) * d.norm)
	return x*(1-d.mix) + w*d.mix
}

func (d *Drive) Reset() {}
