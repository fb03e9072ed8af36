package main

import (
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

const scopeRing = 8192

// scope keeps the most recent mono samples of the mix for the level trace.
type scope struct {
	mu       sync.Mutex
	ring     []float32
	writePos int
}

func newScope() *scope {
	return &scope{ring: make([]float32, scopeRing)}
}

// Tap is called from the audio thread. Keep it minimal: just copy into ring.
func (s *scope) Tap(samples []float32) {
	s.mu.Lock()
	for i := 0; i+1 < len(samples); i += 2 {
		s.ring[s.writePos] = (samples[i] + samples[i+1]) * 0.5
		s.writePos = (s.writePos + 1) % scopeRing
	}
	s.mu.Unlock()
}

// Snapshot returns the last n samples, oldest first.
func (s *scope) Snapshot(n int) []float32 {
	if n > scopeRing {
		n = scopeRing
	}
	out := make([]float32, n)
	s.mu.Lock()
	start := (s.writePos - n + scopeRing) % scopeRing
	for i := range out {
		out[i] = s.ring[(start+i)%scopeRing]
	}
	s.mu.Unlock()
	return out
}

func (s *scope) draw(dst *ebiten.Image, x, y, w, h float64, col color.Color) {
	n := min(int(w), scopeRing/4)
	if n < 2 {
		return
	}
	samples := s.Snapshot(n * 4)
	mid := y + h/2
	prevY := mid
	for i := 0; i < n; i++ {
		v := float64(samples[i*4])
		py := mid - v*h/2
		if i > 0 {
			ebitenutil.DrawLine(dst, x+float64(i-1), prevY, x+float64(i), py, col)
		}
		prevY = py
	}
}
