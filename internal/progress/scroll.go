package progress

// ScrollTracker maps wheel and drag input onto a fraction of a virtual
// scrollable section, the way a sticky section reports how far the page has
// scrolled through it.
type ScrollTracker struct {
	length float64 // scrollable distance in pixels
	pos    float64
}

// NewScrollTracker returns a tracker for a section whose scrollable distance
// is length pixels.
func NewScrollTracker(length float64) *ScrollTracker {
	t := &ScrollTracker{}
	t.SetLength(length)
	return t
}

// SetLength changes the scrollable distance, keeping the current fraction.
func (t *ScrollTracker) SetLength(length float64) {
	if length < 0 {
		length = 0
	}
	f := t.Fraction()
	t.length = length
	t.pos = f * length
}

// Length returns the scrollable distance.
func (t *ScrollTracker) Length() float64 {
	return t.length
}

// Scroll moves by dy pixels (positive scrolls down) and returns the new
// fraction.
func (t *ScrollTracker) Scroll(dy float64) float64 {
	t.pos += dy
	if t.pos < 0 {
		t.pos = 0
	}
	if t.pos > t.length {
		t.pos = t.length
	}
	return t.Fraction()
}

// ScrollTo jumps to a fraction of the section.
func (t *ScrollTracker) ScrollTo(f float64) float64 {
	t.pos = clamp01(f) * t.length
	return t.Fraction()
}

// Fraction returns the position as a fraction in [0,1]. A zero-length
// section has no layout yet and reports 0.
func (t *ScrollTracker) Fraction() float64 {
	if t.length <= 0 {
		return 0
	}
	return clamp01(t.pos / t.length)
}
