// Package keyframe evaluates piecewise tracks over progress, used for the
// narrative overlay and the canvas fade.
package keyframe

import "sort"

// Point is a track value at a progress position.
type Point struct {
	At    float64 `yaml:"at"`
	Value float64 `yaml:"value"`
}

// Track interpolates between points sorted by At. Outside the first and last
// point the end values hold.
type Track struct {
	Points []Point
	Ease   func(t float64) float64 // nil means linear
}

// NewTrack returns a linear track over points, sorted by position.
func NewTrack(points ...Point) Track {
	sorted := make([]Point, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].At < sorted[j].At })
	return Track{Points: sorted}
}

// Value evaluates the track at p.
func (t Track) Value(p float64) float64 {
	pts := t.Points
	if len(pts) == 0 {
		return 0
	}
	if p <= pts[0].At {
		return pts[0].Value
	}
	last := pts[len(pts)-1]
	if p >= last.At {
		return last.Value
	}
	for i := 0; i < len(pts)-1; i++ {
		a, b := pts[i], pts[i+1]
		if p >= a.At && p < b.At {
			span := b.At - a.At
			if span <= 0 {
				return b.Value
			}
			u := (p - a.At) / span
			if t.Ease != nil {
				u = t.Ease(u)
			}
			return lerp(a.Value, b.Value, u)
		}
	}
	return last.Value
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// EaseInOutCubic is a smooth in-out easing curve.
func EaseInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	u := -2*t + 2
	return 1 - u*u*u/2
}

// CanvasFade fades the frame canvas in over the first 5% of the section and
// out over the last 5%.
func CanvasFade() Track {
	return NewTrack(Point{0, 0}, Point{0.05, 1}, Point{0.95, 1}, Point{1, 0})
}
