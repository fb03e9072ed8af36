package effects

// Tone is a three band shelf EQ for the bus: two one-pole crossovers split
// the signal into low, mid and high, each with its own gain.
type Tone struct {
	low, mid, high float32
	lowCoef        float32
	highCoef       float32
	lpL, lpR       float32
	hpL, hpR       float32
}

// NewTone returns a Tone with band gains (1 is unity) and crossovers in Hz.
func NewTone(sampleRate int, low, mid, high, lowFreq, highFreq float64) *Tone {
	return &Tone{
		low:      float32(clamp(low, 0, 4)),
		mid:      float32(clamp(mid, 0, 4)),
		high:     float32(clamp(high, 0, 4)),
		lowCoef:  onePole(sampleRate, lowFreq),
		highCoef: onePole(sampleRate, highFreq),
	}
}

func (t *Tone) Process(l, r float32) (float32, float32) {
	t.lpL += t.lowCoef * (l - t.lpL)
	t.lpR += t.lowCoef * (r - t.lpR)
	t.hpL += t.highCoef * (l - t.hpL)
	t.hpR += t.highCoef * (r - t.hpR)
	highL, highR := l-t.hpL, r-t.hpR
	midL, midR := l-t.lpL-highL, r-t.lpR-highR
	return t.lpL*t.low + midL*t.mid + highL*t.high,
		t.lpR*t.low + midR*t.mid + highR*t.high
}

func (t *Tone) Reset() {
	t.lpL, t.lpR, t.hpL, t.hpR = 0, 0, 0, 0
}
