package progress

import "testing"

func TestScrollTrackerClampsAndScales(t *testing.T) {
	tr := NewScrollTracker(1000)
	if got := tr.Scroll(250); got != 0.25 {
		t.Fatalf("fraction = %f, want 0.25", got)
	}
	if got := tr.Scroll(-1000); got != 0 {
		t.Fatalf("fraction = %f, want clamp to 0", got)
	}
	if got := tr.Scroll(5000); got != 1 {
		t.Fatalf("fraction = %f, want clamp to 1", got)
	}
}

func TestScrollTrackerResizeKeepsFraction(t *testing.T) {
	tr := NewScrollTracker(1000)
	tr.Scroll(500)
	tr.SetLength(3000)
	if got := tr.Fraction(); got != 0.5 {
		t.Fatalf("fraction after resize = %f, want 0.5", got)
	}
}

func TestScrollTrackerWithoutLayout(t *testing.T) {
	tr := NewScrollTracker(0)
	if got := tr.Scroll(100); got != 0 {
		t.Fatalf("zero-length section should report 0, got %f", got)
	}
}
