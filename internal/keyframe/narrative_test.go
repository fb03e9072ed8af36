package keyframe

import (
	"math"
	"testing"
)

func TestCueEnvelope(t *testing.T) {
	c := Cue{Text: "IMPULS", Start: 0.45, End: 0.6}
	mid := c.At(0.525)
	if mid.Opacity != 1 {
		t.Errorf("opacity mid-cue = %v, want 1", mid.Opacity)
	}
	if math.Abs(mid.Scale-1.0) > 1e-9 || math.Abs(mid.OffsetY) > 1e-9 {
		t.Errorf("mid-cue scale/offset = %v/%v, want 1/0", mid.Scale, mid.OffsetY)
	}
	if got := c.At(0.475).Opacity; math.Abs(got-0.5) > 1e-9 {
		t.Errorf("opacity during fade-in = %v, want 0.5", got)
	}
	if got := c.At(0.3).Opacity; got != 0 {
		t.Errorf("opacity before cue = %v, want 0", got)
	}
}

func TestVisibleCues(t *testing.T) {
	cues := DefaultCues()
	vis := Visible(cues, 0.1)
	if len(vis) != 1 || vis[0].Text != "SCHWERELOS" {
		t.Fatalf("visible at 0.1 = %+v", vis)
	}
	if vis := Visible(cues, 0.9); len(vis) != 0 {
		t.Fatalf("nothing should show after the last cue, got %+v", vis)
	}
}
