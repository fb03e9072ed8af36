package scrollmix

import (
	"sync"

	"github.com/studionf/scrollmix/internal/progress"
	"github.com/studionf/scrollmix/internal/scrub"
)

// Scene wires one progress source to its consumers: the frame scrubber and
// the audio engine. Either consumer may be nil. Close detaches everything;
// after it, progress changes cause no paints and no audio parameter changes.
type Scene struct {
	mu       sync.Mutex
	source   *progress.Source
	scrubber *scrub.Scrubber
	engine   *Engine
	unsubs   []func()
	closed   bool
}

func NewScene(source *progress.Source, scrubber *scrub.Scrubber, engine *Engine) *Scene {
	s := &Scene{source: source, scrubber: scrubber, engine: engine}
	if scrubber != nil {
		s.unsubs = append(s.unsubs, source.Subscribe(scrubber.Handler()))
	}
	if engine != nil {
		s.unsubs = append(s.unsubs, source.Subscribe(engine.OnProgress))
		engine.OnProgress(source.Value())
	}
	return s
}

// Subscribe attaches an extra handler that Close will detach as well.
func (s *Scene) Subscribe(h progress.Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.unsubs = append(s.unsubs, s.source.Subscribe(h))
}

func (s *Scene) Source() *progress.Source   { return s.source }
func (s *Scene) Scrubber() *scrub.Scrubber { return s.scrubber }
func (s *Scene) Engine() *Engine           { return s.engine }

// Refresh repaints when the canvas does not show the frame for the current
// progress, which happens when that frame finished loading after the
// progress settled.
func (s *Scene) Refresh() bool {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed || s.scrubber == nil {
		return false
	}
	p := s.source.Value()
	if s.scrubber.LastIndex() == scrub.FrameIndex(p, s.scrubber.Len()) {
		return false
	}
	return s.scrubber.Render(p)
}

// Close unsubscribes every handler and closes the engine.
func (s *Scene) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	unsubs := s.unsubs
	s.unsubs = nil
	s.mu.Unlock()

	for _, u := range unsubs {
		u()
	}
	if s.engine != nil {
		return s.engine.Close()
	}
	return nil
}
