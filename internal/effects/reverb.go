package effects

// Reverb is a small stereo Schroeder reverb: four damped combs per side
// feeding two allpasses. The right side uses slightly longer lines for
// width.
type Reverb struct {
	left, right reverbSide
	mix         float32
	width       float32
}

type reverbSide struct {
	combs [4]comb
	aps   [2]allpass
}

type comb struct {
	buf   []float32
	pos   int
	fb    float32
	damp  float32
	store float32
}

type allpass struct {
	buf []float32
	pos int
}

var (
	combTuning    = [4]float64{0.0297, 0.0371, 0.0411, 0.0437} // seconds at room 1
	allpassTuning = [2]float64{0.0050, 0.0017}
)

// NewReverb returns a reverb. room in [0,1] sets decay, damp in [0,1] darkens
// the tail, mix is wet/dry and width spreads the tails apart.
func NewReverb(sampleRate int, room, damp, mix, width float64) *Reverb {
	room = clamp(room, 0, 1)
	fb := float32(0.7 + 0.28*room)
	r := &Reverb{mix: float32(clamp(mix, 0, 1)), width: float32(clamp(width, 0, 1))}
	r.left = newReverbSide(sampleRate, 1, fb, float32(clamp(damp, 0, 1)))
	r.right = newReverbSide(sampleRate, 1.023, fb, float32(clamp(damp, 0, 1)))
	return r
}

func newReverbSide(sampleRate int, spread float64, fb, damp float32) reverbSide {
	var s reverbSide
	for i, sec := range combTuning {
		s.combs[i] = comb{buf: make([]float32, delayLen(sampleRate, sec*spread)), fb: fb, damp: damp}
	}
	for i, sec := range allpassTuning {
		s.aps[i] = allpass{buf: make([]float32, delayLen(sampleRate, sec*spread))}
	}
	return s
}

func delayLen(sampleRate int, sec float64) int {
	n := int(sec * float64(sampleRate))
	if n < 1 {
		n = 1
	}
	return n
}

func (r *Reverb) Process(l, rr float32) (float32, float32) {
	in := (l + rr) * 0.5
	wl := r.left.process(in)
	wr := r.right.process(in)
	// width 0 collapses both tails to mono
	mid := (wl + wr) * 0.5
	wl = mid + (wl-mid)*r.width
	wr = mid + (wr-mid)*r.width
	return l*(1-r.mix) + wl*r.mix, rr*(1-r.mix) + wr*r.mix
}

func (r *Reverb) Reset() {
	r.left.reset()
	r.right.reset()
}

func (s *reverbSide) process(in float32) float32 {
	var out float32
	for i := range s.combs {
		out += s.combs[i].process(in)
	}
	out *= 0.25
	for i := range s.aps {
		out = s.aps[i].process(out)
	}
	return out
}

func (s *reverbSide) reset() {
	for i := range s.combs {
		clear(s.combs[i].buf)
		s.combs[i].pos, s.combs[i].store = 0, 0
	}
	for i := range s.aps {
		clear(s.aps[i].buf)
		s.aps[i].pos = 0
	}
}

func (c *comb) process(in float32) float32 {
	out := c.buf[c.pos]
	c.store = out*(1-c.damp) + c.store*c.damp
	c.buf[c.pos] = in + c.store*c.fb
	if c.pos++; c.pos == len(c.buf) {
		c.pos = 0
	}
	return out
}

func (a *allpass) process(in float32) float32 {
	b := a.buf[a.pos]
	a.buf[a.pos] = in + b*0.5
	if a.pos++; a.pos == len(a.buf) {
		a.pos = 0
	}
	return b - in
}
