package audio

import (
	"errors"
	"fmt"
	"sync"
	"time"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

var (
	// ErrNotAllowed means the platform has not granted audio playback yet,
	// typically because no user gesture has happened in a browser.
	ErrNotAllowed = errors.New("audio: playback not allowed yet")
	ErrClosed     = errors.New("audio: output closed")
)

// Output is a playback device pulling from a SampleSource.
type Output interface {
	Start(src SampleSource) error
	Suspend() error
	Resume() error
	Close() error
}

var (
	contextOnce       sync.Once
	sharedContext     *ebitaudio.Context
	sharedContextRate int
)

// Context returns the process-wide ebiten audio context, creating it at
// sampleRate on first use. ebiten allows only one context per process.
func Context(sampleRate int) (*ebitaudio.Context, error) {
	contextOnce.Do(func() {
		sharedContextRate = sampleRate
		sharedContext = ebitaudio.NewContext(sampleRate)
	})
	if sharedContextRate != sampleRate {
		return nil, fmt.Errorf("audio context already initialized at %d Hz (requested %d Hz)", sharedContextRate, sampleRate)
	}
	return sharedContext, nil
}

// EbitenOption configures an Ebiten output.
type EbitenOption func(*Ebiten)

// WithRequireReady makes Start and Resume fail with ErrNotAllowed while the
// audio context is not ready. Browsers need this: their context only
// becomes ready after a user gesture.
func WithRequireReady(v bool) EbitenOption {
	return func(o *Ebiten) { o.requireReady = v }
}

// WithBufferSize sets the player buffer. Smaller buffers react faster to
// scroll changes.
func WithBufferSize(d time.Duration) EbitenOption {
	return func(o *Ebiten) { o.bufferSize = d }
}

// Ebiten plays through ebiten/v2/audio.
type Ebiten struct {
	sampleRate   int
	requireReady bool
	bufferSize   time.Duration

	mu     sync.Mutex
	ctx    *ebitaudio.Context
	player *ebitaudio.Player
	reader *StreamReader
	closed bool
}

func NewEbiten(sampleRate int, opts ...EbitenOption) *Ebiten {
	o := &Ebiten{sampleRate: sampleRate, bufferSize: 60 * time.Millisecond}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Ebiten) allowed() error {
	if o.requireReady && !o.ctx.IsReady() {
		return ErrNotAllowed
	}
	return nil
}

func (o *Ebiten) Start(src SampleSource) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return ErrClosed
	}
	if o.ctx == nil {
		ctx, err := Context(o.sampleRate)
		if err != nil {
			return err
		}
		o.ctx = ctx
	}
	if err := o.allowed(); err != nil {
		return err
	}
	if o.player == nil {
		reader := NewStreamReader(src)
		pl, err := o.ctx.NewPlayerF32(reader)
		if err != nil {
			return fmt.Errorf("audio: new player: %w", err)
		}
		if o.bufferSize > 0 {
			pl.SetBufferSize(o.bufferSize)
		}
		o.player, o.reader = pl, reader
	}
	o.player.Play()
	return nil
}

func (o *Ebiten) Suspend() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return ErrClosed
	}
	if o.player != nil {
		o.player.Pause()
	}
	return nil
}

func (o *Ebiten) Resume() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return ErrClosed
	}
	if o.player == nil {
		return errors.New("audio: resume before start")
	}
	if err := o.allowed(); err != nil {
		return err
	}
	o.player.Play()
	return nil
}

// Position returns what the listener has heard so far.
func (o *Ebiten) Position() time.Duration {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.player == nil {
		return 0
	}
	return o.player.Position()
}

func (o *Ebiten) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return nil
	}
	o.closed = true
	if o.player == nil {
		return nil
	}
	o.player.Pause()
	err := o.player.Close()
	o.reader.Close()
	return err
}

// Discard is an Output that never pulls samples. Offline renders drive the
// source directly and use it to satisfy the engine.
type Discard struct{}

func (Discard) Start(SampleSource) error { return nil }
func (Discard) Suspend() error           { return nil }
func (Discard) Resume() error            { return nil }
func (Discard) Close() error             { return nil }
