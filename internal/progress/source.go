// Package progress turns a raw, bursty scroll fraction into a smoothed
// progress value in [0,1] and fans it out to subscribers.
package progress

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/harmonica"
)

// Handler receives the latest smoothed progress.
type Handler func(value float64)

// Params configures the spring. Mass, Stiffness and Damping follow the usual
// mass-spring-damper convention; RestDelta and RestSpeed decide when the
// spring is considered at rest and stops emitting.
type Params struct {
	Mass      float64
	Stiffness float64
	Damping   float64
	RestDelta float64
	RestSpeed float64
	TickRate  int // ticks per second
}

func DefaultParams() Params {
	return Params{
		Mass:      0.1,
		Stiffness: 100,
		Damping:   12,
		RestDelta: 0.001,
		RestSpeed: 0.01,
		TickRate:  60,
	}
}

// AngularFrequency returns sqrt(k/m).
func (p Params) AngularFrequency() float64 {
	if p.Mass <= 0 || p.Stiffness <= 0 {
		return 0
	}
	return math.Sqrt(p.Stiffness / p.Mass)
}

// DampingRatio returns c / (2*sqrt(k*m)).
func (p Params) DampingRatio() float64 {
	if p.Mass <= 0 || p.Stiffness <= 0 {
		return 1
	}
	return p.Damping / (2 * math.Sqrt(p.Stiffness*p.Mass))
}

type subscriber struct {
	id      int
	handler Handler
	active  atomic.Bool
}

// Source owns the progress value. It is driven by Tick from the animation
// loop; handlers run synchronously inside Tick.
type Source struct {
	mu        sync.Mutex
	params    Params
	spring    harmonica.Spring
	value     float64
	velocity  float64
	target    float64
	lastRaw   float64
	direction int
	resting   bool
	nextID    int
	subs      []*subscriber
}

func NewSource(params Params) *Source {
	def := DefaultParams()
	if params.TickRate <= 0 {
		params.TickRate = def.TickRate
	}
	if params.RestDelta <= 0 {
		params.RestDelta = def.RestDelta
	}
	if params.RestSpeed <= 0 {
		params.RestSpeed = def.RestSpeed
	}
	s := &Source{params: params, resting: true}
	s.spring = harmonica.NewSpring(harmonica.FPS(params.TickRate), params.AngularFrequency(), params.DampingRatio())
	return s
}

// Params returns the configuration the source was built with.
func (s *Source) Params() Params {
	return s.params
}

// SetRaw feeds a new raw sample. Unavailable values (NaN, Inf) count as 0.
func (s *Source) SetRaw(raw float64) {
	raw = sanitize(raw)
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case raw > s.lastRaw:
		s.direction = 1
	case raw < s.lastRaw:
		s.direction = -1
	}
	s.lastRaw = raw
	if raw != s.target {
		s.target = raw
		s.resting = false
	}
}

// Jump places the value and target at v without animating and notifies
// subscribers once.
func (s *Source) Jump(v float64) {
	v = sanitize(v)
	s.mu.Lock()
	s.value, s.target, s.lastRaw = v, v, v
	s.velocity = 0
	s.resting = true
	subs := s.snapshot()
	s.mu.Unlock()
	dispatch(subs, v)
}

// Tick advances the spring by one tick. It returns true when subscribers
// were notified.
func (s *Source) Tick() bool {
	s.mu.Lock()
	if s.resting {
		s.mu.Unlock()
		return false
	}
	prev := s.value
	s.value, s.velocity = s.spring.Update(s.value, s.velocity, s.target)
	if math.Abs(s.target-s.value) < s.params.RestDelta && math.Abs(s.velocity) < s.params.RestSpeed {
		s.value = s.target
		s.velocity = 0
		s.resting = true
	}
	s.value = clamp01(s.value)
	v := s.value
	changed := v != prev
	var subs []*subscriber
	if changed {
		subs = s.snapshot()
	}
	s.mu.Unlock()
	if changed {
		dispatch(subs, v)
	}
	return changed
}

// Subscribe registers h and returns a function that removes it. The returned
// function is safe to call more than once.
func (s *Source) Subscribe(h Handler) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub := &subscriber{id: s.nextID, handler: h}
	sub.active.Store(true)
	s.nextID++
	s.subs = append(s.subs, sub)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if !sub.active.Swap(false) {
			return
		}
		for i, other := range s.subs {
			if other.id == sub.id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				break
			}
		}
	}
}

// Subscribers returns the number of registered handlers.
func (s *Source) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

func (s *Source) Value() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

func (s *Source) Target() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.target
}

// Settled reports whether the spring is at rest.
func (s *Source) Settled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resting
}

// Direction returns +1 when the raw signal last moved forward, -1 when it
// last moved backward and 0 before any movement.
func (s *Source) Direction() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.direction
}

func (s *Source) snapshot() []*subscriber {
	out := make([]*subscriber, len(s.subs))
	copy(out, s.subs)
	return out
}

// dispatch runs outside the lock so handlers may unsubscribe themselves.
// A handler removed earlier in the same dispatch is skipped.
func dispatch(subs []*subscriber, v float64) {
	for _, sub := range subs {
		if sub.active.Load() {
			sub.handler(v)
		}
	}
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return clamp01(v)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
