package keyframe

// Cue is a headline word shown over a progress window.
type Cue struct {
	Text  string  `yaml:"text"`
	Start float64 `yaml:"start"`
	End   float64 `yaml:"end"`
}

// CueState is how a cue is drawn at a given progress.
type CueState struct {
	Text    string
	Opacity float64
	Scale   float64
	OffsetY float64 // pixels, positive is down
}

const cueFade = 0.05

// DefaultCues are the sculpture reveal headlines.
func DefaultCues() []Cue {
	return []Cue{
		{Text: "SCHWERELOS", Start: 0.0, End: 0.15},
		{Text: "AUFSTIEG", Start: 0.2, End: 0.35},
		{Text: "IMPULS", Start: 0.45, End: 0.6},
		{Text: "AUFLÖSUNG", Start: 0.7, End: 0.85},
	}
}

// At evaluates the cue at progress p: it fades in and out over 5% at each
// edge, grows from 0.8x to 1.2x and drifts from +100px to -100px.
func (c Cue) At(p float64) CueState {
	opacity := NewTrack(
		Point{c.Start, 0},
		Point{c.Start + cueFade, 1},
		Point{c.End - cueFade, 1},
		Point{c.End, 0},
	)
	scale := NewTrack(Point{c.Start, 0.8}, Point{c.End, 1.2})
	y := NewTrack(Point{c.Start, 100}, Point{c.End, -100})
	return CueState{
		Text:    c.Text,
		Opacity: opacity.Value(p),
		Scale:   scale.Value(p),
		OffsetY: y.Value(p),
	}
}

// Visible returns the states of cues with non-zero opacity at p.
func Visible(cues []Cue, p float64) []CueState {
	var out []CueState
	for _, c := range cues {
		st := c.At(p)
		if st.Opacity > 0 {
			out = append(out, st)
		}
	}
	return out
}
