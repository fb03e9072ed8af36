package mix

// Default returns the built-in mix: the soundscape loop from the site with
// its four-stage volume curve, a drone bank whose low-pass opens up along
// the scroll, and a shimmer bank that only enters for the climax.
//
// The soundscape layer needs an asset; without one the engine plays it as
// silence and the procedural layers carry the mix alone.
func Default() Mix {
	return Mix{
		Name:         "default",
		TimeConstant: DefaultTimeConstant,
		MasterGain:   0.8,
		Layers: []Layer{
			{
				Name:   "soundscape",
				Source: SourceSample,
				Sample: "audio/soundscape.mp3",
				Zones: []Zone{
					{Start: 0, End: 0.2, Gain: Linear(0, 0.4)},
					{Start: 0.2, End: 0.7, Gain: Linear(0.4, 1)},
					{Start: 0.7, End: 0.9, Gain: Const(1)},
					{Start: 0.9, End: 1, Gain: Linear(1, 0)},
				},
			},
			{
				Name:   "drone",
				Source: SourceOscillators,
				Oscillators: []Partial{
					{Freq: 55, Level: 1, Wave: "sine"},
					{Freq: 82.5, Level: 0.5, Wave: "triangle", Detune: 4},
					{Freq: 110, Level: 0.35, Wave: "saw", Detune: -6},
				},
				Filter: &Filter{Kind: "lowpass", Resonance: 0.9},
				LFO:    &Modulation{Target: "cutoff", Depth: 0.5, Rate: 0.08, Wave: "triangle"},
				Zones: []Zone{
					{Start: 0, End: 0.2, Gain: Linear(0.15, 0.3), Cutoff: ptr(Exp(180, 400))},
					{Start: 0.2, End: 0.7, Gain: Linear(0.3, 0.6), Cutoff: ptr(Exp(400, 3200))},
					{Start: 0.7, End: 0.9, Gain: Const(0.6), Cutoff: ptr(Exp(3200, 6000))},
					{Start: 0.9, End: 1, Gain: Linear(0.6, 0), Cutoff: ptr(Exp(6000, 800))},
				},
			},
			{
				Name:   "shimmer",
				Source: SourceOscillators,
				Pan:    0.2,
				Oscillators: []Partial{
					{Freq: 880, Level: 0.6, Wave: "sine"},
					{Freq: 1320, Level: 0.4, Wave: "sine", Detune: 7},
					{Freq: 1760, Level: 0.25, Wave: "triangle", Detune: -5},
				},
				LFO: &Modulation{Target: "gain", Depth: 0.35, Rate: 0.25, Wave: "sine"},
				Zones: []Zone{
					{Start: 0, End: 0.45, Gain: Const(0)},
					{Start: 0.45, End: 0.7, Gain: Smooth(0, 0.2)},
					{Start: 0.7, End: 0.9, Gain: Linear(0.2, 0.3)},
					{Start: 0.9, End: 1, Gain: Linear(0.3, 0)},
				},
			},
		},
		Effects: []Effect{
			{Type: "reverb", Params: map[string]float64{"room": 0.85, "damp": 0.4, "mix": 0.3}},
			{Type: "delay", Params: map[string]float64{"time": 0.375, "feedback": 0.3, "mix": 0.15}},
			{Type: "compressor", Params: map[string]float64{"threshold": 0.7, "ratio": 4, "attack": 0.01, "release": 0.2}},
		},
	}
}

func ptr(c Curve) *Curve { return &c }
