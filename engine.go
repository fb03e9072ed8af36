package scrollmix

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"math"
	"sync"

	intaudio "github.com/studionf/scrollmix/internal/audio"
	intfx "github.com/studionf/scrollmix/internal/effects"
	"github.com/studionf/scrollmix/internal/lfo"
	"github.com/studionf/scrollmix/internal/mix"
	"github.com/studionf/scrollmix/internal/smooth"
	"github.com/studionf/scrollmix/internal/synth"
)

// Output is the playback device the engine starts, suspends and resumes.
type Output = intaudio.Output

// SampleSource is what an Output pulls interleaved stereo samples from.
type SampleSource = intaudio.SampleSource

// ErrNotAllowed is returned by outputs when the platform refuses to start
// audio, for example before any user gesture in a browser.
var ErrNotAllowed = intaudio.ErrNotAllowed

var ErrClosed = errors.New("scrollmix: engine closed")

// duckStep is how much each upward scroll update lowers the master duck.
const duckStep = 0.05

// State is the lifecycle of the audio engine.
type State int

const (
	StateUninitialized State = iota
	StateSuspended
	StateActive
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateSuspended:
		return "suspended"
	case StateActive:
		return "active"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type EngineOption func(*engineConfig)

type engineConfig struct {
	sampleRate   int
	output       Output
	timeConstant float64
	assets       fs.FS
	ducking      bool
	sampleTap    func([]float32)
	volume       float64
}

func defaultEngineConfig() engineConfig {
	return engineConfig{sampleRate: 48000, volume: 1}
}

func WithSampleRate(rate int) EngineOption {
	return func(cfg *engineConfig) {
		cfg.sampleRate = rate
	}
}

// WithOutput replaces the default ebiten output.
func WithOutput(out Output) EngineOption {
	return func(cfg *engineConfig) {
		cfg.output = out
	}
}

// WithTimeConstant overrides the mix's smoothing time constant in seconds.
func WithTimeConstant(tau float64) EngineOption {
	return func(cfg *engineConfig) {
		cfg.timeConstant = tau
	}
}

// WithAssetFS sets where sampled layers load their audio from.
func WithAssetFS(fsys fs.FS) EngineOption {
	return func(cfg *engineConfig) {
		cfg.assets = fsys
	}
}

// WithDirectionalDucking fades the mix down while the user scrolls back up
// and restores it when they scroll down again.
func WithDirectionalDucking(enabled bool) EngineOption {
	return func(cfg *engineConfig) {
		cfg.ducking = enabled
	}
}

// WithMasterVolume sets the initial user volume, clamped to [0,1].
func WithMasterVolume(v float64) EngineOption {
	return func(cfg *engineConfig) {
		cfg.volume = v
	}
}

// WithSampleTap installs a callback invoked with each generated stereo buffer.
// The callback runs on the audio thread; keep work brief and non-blocking.
func WithSampleTap(tap func([]float32)) EngineOption {
	return func(cfg *engineConfig) {
		cfg.sampleTap = tap
	}
}

// Engine turns progress into a live audio mix. The graph is built once, on
// the first successful or attempted Initialize, and reused after that.
//
// mu guards the lifecycle; audioMu guards the graph, which the output reads
// from its own goroutine through Process. mu is always taken first.
type Engine struct {
	mu       sync.Mutex
	cfg      engineConfig
	mix      mix.Mix
	tau      float64
	state    State
	closed   bool
	builds   int
	progress float64
	seen     bool
	muted    bool
	volume   float64

	audioMu sync.Mutex
	graph   *graph
}

type graph struct {
	sampleRate float64
	voices     []*voice
	bus        *intfx.Chain
	master     smooth.Ramp
	duck       smooth.Ramp
	tap        func([]float32)
}

type voice struct {
	name       string
	gen        synth.Generator
	filter     *synth.Filter
	gain       smooth.Ramp
	cutoff     smooth.Ramp
	mod        *lfo.LFO
	modCutoff  bool
	panL, panR float32
}

// NewEngine validates m and returns an engine in StateUninitialized. No audio
// resources are touched until Initialize.
func NewEngine(m mix.Mix, opts ...EngineOption) (*Engine, error) {
	cfg := defaultEngineConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if _, err := intfx.Build(cfg.sampleRate, effectSpecs(m)); err != nil {
		return nil, err
	}
	if cfg.output == nil {
		cfg.output = intaudio.NewEbiten(cfg.sampleRate)
	}
	tau := cfg.timeConstant
	if tau <= 0 {
		tau = m.TimeConstant
	}
	if tau <= 0 {
		tau = mix.DefaultTimeConstant
	}
	gain := m.MasterGain
	if gain <= 0 {
		gain = 1
	}
	m.MasterGain = mix.ClampGain(gain)
	return &Engine{cfg: cfg, mix: m, tau: tau, volume: mix.ClampGain(cfg.volume)}, nil
}

// Initialize builds the graph if needed and starts or resumes playback. A
// refused start leaves the engine where it was: Uninitialized the first time,
// Suspended after that. The error is logged and returned; it is safe to
// ignore and call again on the next gesture.
func (e *Engine) Initialize() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.initializeLocked()
}

func (e *Engine) initializeLocked() error {
	if e.closed {
		return ErrClosed
	}
	switch e.state {
	case StateActive:
		return nil
	case StateSuspended:
		if err := e.cfg.output.Resume(); err != nil {
			log.Printf("scrollmix: audio resume refused: %v", err)
			return fmt.Errorf("resume audio: %w", err)
		}
		e.state = StateActive
		return nil
	}
	if e.graph == nil {
		g, err := e.build()
		if err != nil {
			return err
		}
		e.audioMu.Lock()
		e.graph = g
		e.audioMu.Unlock()
		e.builds++
	}
	if err := e.cfg.output.Start(e); err != nil {
		log.Printf("scrollmix: audio start refused: %v", err)
		return fmt.Errorf("start audio: %w", err)
	}
	e.state = StateActive
	return nil
}

// Toggle starts the engine when it is not playing and suspends it when it
// is.
func (e *Engine) Toggle() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	if e.state != StateActive {
		return e.initializeLocked()
	}
	if err := e.cfg.output.Suspend(); err != nil {
		log.Printf("scrollmix: audio suspend failed: %v", err)
		return fmt.Errorf("suspend audio: %w", err)
	}
	e.state = StateSuspended
	return nil
}

// OnProgress retargets every layer for progress p. Live values glide toward
// the new targets on the audio thread. Calls after Close are ignored.
func (e *Engine) OnProgress(p float64) {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		p = 0
	}
	p = math.Max(0, math.Min(1, p))

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	prev, seen := e.progress, e.seen
	e.progress, e.seen = p, true
	if e.graph == nil {
		return
	}
	targets := e.mix.Targets(p)

	e.audioMu.Lock()
	defer e.audioMu.Unlock()
	g := e.graph
	for i, v := range g.voices {
		v.gain.Target = targets[i].Gain
		if v.filter != nil {
			v.cutoff.Target = targets[i].Cutoff
		}
	}
	if e.cfg.ducking && seen {
		switch {
		case p < prev:
			g.duck.Target = math.Max(0, g.duck.Target-duckStep)
		case p > prev:
			g.duck.Target = 1
		}
	}
}

// Process renders interleaved stereo samples. Outputs call it from their
// own goroutine; offline renders call it directly.
func (e *Engine) Process(dst []float32) {
	e.audioMu.Lock()
	defer e.audioMu.Unlock()
	g := e.graph
	if g == nil {
		clear(dst)
		return
	}
	for i := 0; i+1 < len(dst); i += 2 {
		var l, r float32
		for _, v := range g.voices {
			a, b := v.next(g.sampleRate)
			l += a
			r += b
		}
		l, r = g.bus.Process(l, r)
		m := float32(g.master.Step() * g.duck.Step())
		dst[i] = intaudio.Sanitize(l * m)
		dst[i+1] = intaudio.Sanitize(r * m)
	}
	if g.tap != nil {
		g.tap(dst)
	}
}

func (v *voice) next(sampleRate float64) (float32, float32) {
	gain := v.gain.Step()
	mod := v.mod.Next(sampleRate)
	l, r := v.gen.Next()
	if v.filter != nil {
		c := v.cutoff.Step()
		if v.modCutoff {
			c = lfo.Cutoff(c, mod)
		}
		v.filter.SetCutoff(mix.ClampFrequency(c))
		l, r = v.filter.Process(l, r)
	}
	if !v.modCutoff && mod != 0 {
		gain = lfo.Gain(gain, mod)
	}
	g := float32(mix.ClampGain(gain))
	return l * g * v.panL, r * g * v.panR
}

func (e *Engine) build() (*graph, error) {
	sr := e.cfg.sampleRate
	bus, err := intfx.Build(sr, effectSpecs(e.mix))
	if err != nil {
		return nil, err
	}
	g := &graph{
		sampleRate: float64(sr),
		bus:        bus,
		master:     smooth.NewRamp(e.masterTarget(), e.tau, float64(sr)),
		duck:       smooth.NewRamp(1, e.tau, float64(sr)),
		tap:        e.cfg.sampleTap,
	}
	targets := e.mix.Targets(e.progress)
	for i, l := range e.mix.Layers {
		v, err := e.buildVoice(l, targets[i])
		if err != nil {
			return nil, fmt.Errorf("layer %s: %w", l.Name, err)
		}
		g.voices = append(g.voices, v)
	}
	return g, nil
}

func (e *Engine) buildVoice(l mix.Layer, t mix.Target) (*voice, error) {
	sr := e.cfg.sampleRate
	v := &voice{
		name: l.Name,
		// layers fade in from silence on first start
		gain: smooth.NewRamp(0, e.tau, float64(sr)),
	}
	v.gain.Target = t.Gain
	v.panL, v.panR = balance(l.Pan)

	switch l.Source {
	case mix.SourceOscillators:
		partials := make([]synth.Partial, 0, len(l.Oscillators))
		for _, p := range l.Oscillators {
			w, err := synth.ParseWave(p.Wave)
			if err != nil {
				return nil, err
			}
			partials = append(partials, synth.Partial{Freq: p.Freq, Level: p.Level, Wave: w, Detune: p.Detune})
		}
		bank, err := synth.NewBank(sr, partials)
		if err != nil {
			return nil, err
		}
		v.gen = bank
	case mix.SourceSample:
		v.gen = e.loadSample(l.Sample)
	}

	if l.Filter != nil {
		kind, err := synth.ParseFilterKind(l.Filter.Kind)
		if err != nil {
			return nil, err
		}
		v.filter = synth.NewFilter(kind, sr, t.Cutoff, l.Filter.Resonance)
		v.cutoff = smooth.NewRamp(t.Cutoff, e.tau, float64(sr))
	}
	if l.LFO != nil {
		shape, err := lfo.ParseShape(l.LFO.Wave)
		if err != nil {
			return nil, err
		}
		v.mod = lfo.New(shape, l.LFO.Rate, l.LFO.Depth)
		v.modCutoff = l.LFO.Target == "cutoff" && v.filter != nil
	}
	return v, nil
}

// loadSample decodes a looped asset. Failures leave the layer silent but
// present, so the layer count never depends on asset availability.
func (e *Engine) loadSample(name string) synth.Generator {
	if e.cfg.assets == nil {
		log.Printf("scrollmix: no asset filesystem for %s, layer is silent", name)
		return synth.Silence{}
	}
	f, err := e.cfg.assets.Open(name)
	if err != nil {
		log.Printf("scrollmix: %v, layer is silent", err)
		return synth.Silence{}
	}
	defer f.Close()
	loop, err := synth.DecodeLoop(name, f, e.cfg.sampleRate)
	if err != nil {
		log.Printf("scrollmix: %v, layer is silent", err)
		return synth.Silence{}
	}
	return loop
}

func balance(pan float64) (float32, float32) {
	pan = math.Max(-1, math.Min(1, pan))
	return float32(math.Min(1, 1-pan)), float32(math.Min(1, 1+pan))
}

func effectSpecs(m mix.Mix) []intfx.Spec {
	specs := make([]intfx.Spec, len(m.Effects))
	for i, fx := range m.Effects {
		specs[i] = intfx.Spec{Type: fx.Type, Params: intfx.Params(fx.Params)}
	}
	return specs
}

func (e *Engine) masterTarget() float64 {
	if e.muted {
		return 0
	}
	return e.volume * e.mix.MasterGain
}

func (e *Engine) applyMaster() {
	e.audioMu.Lock()
	if e.graph != nil {
		e.graph.master.Target = e.masterTarget()
	}
	e.audioMu.Unlock()
}

// SetMuted silences the master stage. Layer state keeps tracking progress
// so unmuting resumes at the right mix.
func (e *Engine) SetMuted(muted bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.muted = muted
	e.applyMaster()
}

func (e *Engine) Muted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.muted
}

// SetMasterVolume sets the user volume, clamped to [0,1].
func (e *Engine) SetMasterVolume(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.volume = mix.ClampGain(v)
	e.applyMaster()
}

func (e *Engine) MasterVolume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volume
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// IsActive reports whether sound is currently playing.
func (e *Engine) IsActive() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state == StateActive && !e.closed
}

// Progress returns the last progress the engine accepted.
func (e *Engine) Progress() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.progress
}

// LayerCount returns the number of layers in the built graph, 0 before the
// first Initialize and after Close.
func (e *Engine) LayerCount() int {
	e.audioMu.Lock()
	defer e.audioMu.Unlock()
	if e.graph == nil {
		return 0
	}
	return len(e.graph.voices)
}

// LayerStatus is a snapshot of one layer for display and tests.
type LayerStatus struct {
	Name       string
	Gain       float64
	LiveGain   float64
	Cutoff     float64
	LiveCutoff float64
	HasCutoff  bool
}

// Targets returns the current target and live values of every layer. Before
// the graph exists the live values are zero.
func (e *Engine) Targets() []LayerStatus {
	e.mu.Lock()
	targets := e.mix.Targets(e.progress)
	e.mu.Unlock()

	out := make([]LayerStatus, len(targets))
	e.audioMu.Lock()
	defer e.audioMu.Unlock()
	for i, t := range targets {
		out[i] = LayerStatus{Name: t.Layer, Gain: t.Gain, Cutoff: t.Cutoff, HasCutoff: t.HasCutoff}
		if e.graph != nil {
			v := e.graph.voices[i]
			out[i].Gain = v.gain.Target
			out[i].LiveGain = v.gain.Value
			if v.filter != nil {
				out[i].Cutoff = v.cutoff.Target
				out[i].LiveCutoff = v.cutoff.Value
			}
		}
	}
	return out
}

// Close stops the output and drops the graph. Later calls are no-ops.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	if e.state == StateActive {
		e.state = StateSuspended
	}
	err := e.cfg.output.Close()
	e.audioMu.Lock()
	e.graph = nil
	e.audioMu.Unlock()
	return err
}
