package effects

// Delay is a ping-pong echo: each repeat crosses to the other side and gets
// darker through a low-pass in the feedback path.
type Delay struct {
	bufL, bufR []float32
	pos        int
	feedback   float32
	mix        float32
	toneCoef   float32
	toneL      float32
	toneR      float32
}

// NewDelay returns a delay of seconds with feedback in [0,0.95], wet mix in
// [0,1] and a feedback low-pass at tone Hz.
func NewDelay(sampleRate int, seconds, feedback, mix, tone float64) *Delay {
	n := delayLen(sampleRate, seconds)
	return &Delay{
		bufL:     make([]float32, n),
		bufR:     make([]float32, n),
		feedback: float32(clamp(feedback, 0, 0.95)),
		mix:      float32(clamp(mix, 0, 1)),
		toneCoef: onePole(sampleRate, tone),
	}
}

func (d *Delay) Process(l, r float32) (float32, float32) {
	dl, dr := d.bufL[d.pos], d.bufR[d.pos]
	d.toneL += d.toneCoef * (dl - d.toneL)
	d.toneR += d.toneCoef * (dr - d.toneR)
	d.bufL[d.pos] = l + d.toneR*d.feedback
	d.bufR[d.pos] = r + d.toneL*d.feedback
	if d.pos++; d.pos == len(d.bufL) {
		d.pos = 0
	}
	return l*(1-d.mix) + dl*d.mix, r*(1-d.mix) + dr*d.mix
}

func (d *Delay) Reset() {
	clear(d.bufL)
	clear(d.bufR)
	d.pos = 0
	d.toneL, d.toneR = 0, 0
}
