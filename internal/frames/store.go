// Package frames loads and holds the ordered image sequence that the
// scrubber paints.
package frames

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"log"
	"runtime"
	"sync"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
)

// State is the load state of one frame.
type State int

const (
	Pending State = iota
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var ErrDecode = errors.New("frame decode failed")

type entry struct {
	state State
	img   image.Image
	err   error
}

// Store holds exactly N frames. Entries are immutable once they leave
// Pending. A failed entry counts toward completion but is never ready.
type Store struct {
	mu       sync.RWMutex
	entries  []entry
	settled  int
	onLoaded []func()
}

func NewStore(n int) *Store {
	if n < 0 {
		n = 0
	}
	return &Store{entries: make([]entry, n)}
}

func (s *Store) Len() int {
	return len(s.entries)
}

// State returns the state of the frame at 0-based index i. Out of range
// indices report Failed.
func (s *Store) State(i int) State {
	if i < 0 || i >= len(s.entries) {
		return Failed
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[i].state
}

// Ready reports whether frame i is decoded and paintable.
func (s *Store) Ready(i int) bool {
	return s.State(i) == Ready
}

// Frame returns the decoded image of frame i when it is ready.
func (s *Store) Frame(i int) (image.Image, bool) {
	if i < 0 || i >= len(s.entries) {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	e := s.entries[i]
	if e.state != Ready {
		return nil, false
	}
	return e.img, true
}

// Err returns the load error of a failed frame.
func (s *Store) Err(i int) error {
	if i < 0 || i >= len(s.entries) {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[i].err
}

// Put marks frame i ready with img. A nil image or a frame that already
// settled is ignored.
func (s *Store) Put(i int, img image.Image) {
	if img == nil {
		s.Fail(i, fmt.Errorf("%w: nil image", ErrDecode))
		return
	}
	s.settle(i, entry{state: Ready, img: img})
}

// Fail marks frame i as failed.
func (s *Store) Fail(i int, err error) {
	s.settle(i, entry{state: Failed, err: err})
}

func (s *Store) settle(i int, e entry) {
	if i < 0 || i >= len(s.entries) {
		return
	}
	s.mu.Lock()
	if s.entries[i].state != Pending {
		s.mu.Unlock()
		return
	}
	s.entries[i] = e
	s.settled++
	var fire []func()
	if s.settled == len(s.entries) {
		fire = s.onLoaded
		s.onLoaded = nil
	}
	s.mu.Unlock()
	for _, fn := range fire {
		fn()
	}
}

// AllLoaded reports whether every frame has settled, ready or failed. It
// drives the loading indicator only; painting never waits for it.
func (s *Store) AllLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settled == len(s.entries)
}

// Progress returns how many frames settled out of the total.
func (s *Store) Progress() (done, total int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settled, len(s.entries)
}

// OnLoaded registers fn to run once when the whole set has settled. If it
// already has, fn runs immediately.
func (s *Store) OnLoaded(fn func()) {
	s.mu.Lock()
	if s.settled == len(s.entries) {
		s.mu.Unlock()
		fn()
		return
	}
	s.onLoaded = append(s.onLoaded, fn)
	s.mu.Unlock()
}

type LoadOptions struct {
	Workers int // concurrent decodes, GOMAXPROCS when unset
}

// Load fetches and decodes every frame of tmpl from fsys. Individual
// failures mark the frame Failed and are logged; only cancellation of ctx is
// returned as an error.
func (s *Store) Load(ctx context.Context, fsys fs.FS, tmpl PathTemplate, opts LoadOptions) error {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range s.entries {
		if s.State(i) != Pending {
			continue
		}
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			path := tmpl.Path(i + 1)
			img, err := decodeFile(fsys, path)
			if err != nil {
				log.Printf("frames: %v", err)
				s.Fail(i, err)
				return nil
			}
			s.Put(i, img)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func decodeFile(fsys fs.FS, path string) (image.Image, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, path, err)
	}
	return img, nil
}
