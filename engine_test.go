package scrollmix

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"
	"testing/fstest"

	intfx "github.com/studionf/scrollmix/internal/effects"
	"github.com/studionf/scrollmix/internal/mix"
	"github.com/studionf/scrollmix/internal/synth"
)

type fakeOutput struct {
	startErr  error
	resumeErr error
	src       SampleSource
	starts    int
	suspends  int
	resumes   int
	closes    int
}

func (o *fakeOutput) Start(src SampleSource) error {
	o.starts++
	if o.startErr != nil {
		return o.startErr
	}
	o.src = src
	return nil
}

func (o *fakeOutput) Suspend() error {
	o.suspends++
	return nil
}

func (o *fakeOutput) Resume() error {
	o.resumes++
	return o.resumeErr
}

func (o *fakeOutput) Close() error {
	o.closes++
	return nil
}

func rampMix() mix.Mix {
	return mix.Mix{
		Name: "ramp",
		Layers: []mix.Layer{{
			Name:        "tone",
			Source:      mix.SourceOscillators,
			Oscillators: []mix.Partial{{Freq: 110, Level: 1}},
			Zones:       []mix.Zone{{Start: 0, End: 1, Gain: mix.Linear(0, 1)}},
		}},
	}
}

func newTestEngine(t *testing.T, m mix.Mix, out *fakeOutput, opts ...EngineOption) *Engine {
	t.Helper()
	e, err := NewEngine(m, append([]EngineOption{WithOutput(out), WithSampleRate(8000)}, opts...)...)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func TestInitializeIsIdempotent(t *testing.T) {
	out := &fakeOutput{}
	e := newTestEngine(t, mix.Default(), out)
	if e.LayerCount() != 0 {
		t.Fatalf("layers before Initialize = %d", e.LayerCount())
	}
	for i := 0; i < 3; i++ {
		if err := e.Initialize(); err != nil {
			t.Fatalf("Initialize #%d: %v", i, err)
		}
		if got := e.LayerCount(); got != 3 {
			t.Fatalf("LayerCount after #%d = %d, want 3", i, got)
		}
	}
	if e.builds != 1 || out.starts != 1 {
		t.Fatalf("builds=%d starts=%d, want 1/1", e.builds, out.starts)
	}
	if !e.IsActive() || e.State() != StateActive {
		t.Fatalf("state = %v", e.State())
	}
}

func TestToggleRejectedStartStaysUninitialized(t *testing.T) {
	out := &fakeOutput{startErr: ErrNotAllowed}
	e := newTestEngine(t, mix.Default(), out)

	err := e.Toggle()
	if !errors.Is(err, ErrNotAllowed) {
		t.Fatalf("Toggle err = %v, want ErrNotAllowed", err)
	}
	if e.State() != StateUninitialized || e.IsActive() {
		t.Fatalf("state after refused start = %v", e.State())
	}

	out.startErr = nil
	if err := e.Toggle(); err != nil {
		t.Fatalf("second Toggle: %v", err)
	}
	if e.State() != StateActive {
		t.Fatalf("state = %v, want active", e.State())
	}
	if e.builds != 1 || e.LayerCount() != 3 {
		t.Fatalf("graph rebuilt: builds=%d layers=%d", e.builds, e.LayerCount())
	}
}

func TestToggleSuspendsAndResumes(t *testing.T) {
	out := &fakeOutput{}
	e := newTestEngine(t, rampMix(), out)
	steps := []State{StateActive, StateSuspended, StateActive, StateSuspended}
	for i, want := range steps {
		if err := e.Toggle(); err != nil {
			t.Fatalf("toggle %d: %v", i, err)
		}
		if got := e.State(); got != want {
			t.Fatalf("toggle %d: state %v, want %v", i, got, want)
		}
	}
	if out.starts != 1 || out.resumes != 1 || out.suspends != 2 {
		t.Fatalf("starts=%d resumes=%d suspends=%d", out.starts, out.resumes, out.suspends)
	}

	out.resumeErr = ErrNotAllowed
	if err := e.Toggle(); !errors.Is(err, ErrNotAllowed) {
		t.Fatalf("refused resume err = %v", err)
	}
	if e.State() != StateSuspended {
		t.Fatalf("refused resume moved state to %v", e.State())
	}
}

func TestTargetsClamped(t *testing.T) {
	m := rampMix()
	m.Layers[0].Filter = &mix.Filter{Kind: "lowpass"}
	m.Layers[0].Zones[0].Gain = mix.Linear(-1, 4)
	cut := mix.Linear(-1000, 50000)
	m.Layers[0].Zones[0].Cutoff = &cut
	e := newTestEngine(t, m, &fakeOutput{})
	if err := e.Initialize(); err != nil {
		t.Fatal(err)
	}
	buf := make([]float32, 256)
	for i := 0; i <= 50; i++ {
		e.OnProgress(float64(i) / 50)
		e.Process(buf)
		for _, ls := range e.Targets() {
			if ls.Gain < 0 || ls.Gain > 1 || ls.LiveGain < 0 || ls.LiveGain > 1 {
				t.Fatalf("gain out of range: %+v", ls)
			}
			if ls.Cutoff < mix.MinFrequency || ls.Cutoff > mix.MaxFrequency {
				t.Fatalf("cutoff out of range: %+v", ls)
			}
		}
	}
	e.OnProgress(math.NaN())
	if e.Progress() != 0 {
		t.Fatalf("NaN progress stored as %v", e.Progress())
	}
}

func TestLiveGainApproachesTarget(t *testing.T) {
	e := newTestEngine(t, rampMix(), &fakeOutput{}, WithSampleRate(1000), WithTimeConstant(0.1))
	if err := e.Initialize(); err != nil {
		t.Fatal(err)
	}
	e.OnProgress(0.5)
	e.Process(make([]float32, 200)) // 100 frames, one time constant
	got := e.Targets()[0]
	want := 0.5 * (1 - math.Exp(-1))
	if got.Gain != 0.5 {
		t.Fatalf("target = %v, want 0.5", got.Gain)
	}
	if math.Abs(got.LiveGain-want) > 1e-6 {
		t.Fatalf("live = %v, want %v", got.LiveGain, want)
	}
}

func TestProgressBeforeInitialize(t *testing.T) {
	e := newTestEngine(t, rampMix(), &fakeOutput{})
	e.OnProgress(0.8)
	ls := e.Targets()[0]
	if ls.Gain != 0.8 || ls.LiveGain != 0 {
		t.Fatalf("before build: %+v", ls)
	}
	if err := e.Initialize(); err != nil {
		t.Fatal(err)
	}
	if ls := e.Targets()[0]; ls.Gain != 0.8 {
		t.Fatalf("graph ignored stored progress: %+v", ls)
	}
}

func TestMuteSilencesOutput(t *testing.T) {
	e := newTestEngine(t, rampMix(), &fakeOutput{}, WithTimeConstant(0.0005))
	e.Initialize()
	e.OnProgress(1)
	buf := make([]float32, 2000)
	e.Process(buf)
	if Peak(buf[1000:]) < 0.1 {
		t.Fatalf("unmuted peak = %v", Peak(buf[1000:]))
	}
	e.SetMuted(true)
	e.Process(buf)
	if p := Peak(buf[1000:]); p > 1e-6 {
		t.Fatalf("muted peak = %v", p)
	}
	if !e.Muted() {
		t.Fatal("Muted() = false")
	}
	// layers keep tracking progress while muted
	e.OnProgress(0.25)
	if g := e.Targets()[0].Gain; g != 0.25 {
		t.Fatalf("target while muted = %v", g)
	}
}

func TestMasterVolumeClamped(t *testing.T) {
	e := newTestEngine(t, rampMix(), &fakeOutput{})
	for in, want := range map[float64]float64{2: 1, -1: 0, 0.4: 0.4} {
		e.SetMasterVolume(in)
		if got := e.MasterVolume(); got != want {
			t.Errorf("SetMasterVolume(%v) -> %v, want %v", in, got, want)
		}
	}
}

func TestWithMasterVolume(t *testing.T) {
	for in, want := range map[float64]float64{0.25: 0.25, 3: 1, -2: 0} {
		e := newTestEngine(t, rampMix(), &fakeOutput{}, WithMasterVolume(in))
		if got := e.MasterVolume(); got != want {
			t.Errorf("WithMasterVolume(%v) -> %v, want %v", in, got, want)
		}
	}
}

func TestDirectionalDucking(t *testing.T) {
	e := newTestEngine(t, rampMix(), &fakeOutput{}, WithDirectionalDucking(true))
	e.Initialize()
	e.OnProgress(0.5)
	e.OnProgress(0.4)
	e.OnProgress(0.3)
	if got := e.graph.duck.Target; math.Abs(got-0.9) > 1e-9 {
		t.Fatalf("duck after two upward updates = %v, want 0.9", got)
	}
	e.OnProgress(0.35)
	if got := e.graph.duck.Target; got != 1 {
		t.Fatalf("duck after scrolling down = %v, want 1", got)
	}
	for i := 0; i < 40; i++ {
		e.OnProgress(0.3 - float64(i)*0.001)
	}
	if got := e.graph.duck.Target; got != 0 {
		t.Fatalf("duck floor = %v, want 0", got)
	}
}

func TestCloseStopsEverything(t *testing.T) {
	out := &fakeOutput{}
	e := newTestEngine(t, rampMix(), out)
	e.Initialize()
	e.OnProgress(0.3)
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}
	e.OnProgress(0.9)
	if e.Progress() != 0.3 {
		t.Fatalf("progress changed after Close: %v", e.Progress())
	}
	if e.IsActive() || e.LayerCount() != 0 {
		t.Fatalf("active=%v layers=%d after Close", e.IsActive(), e.LayerCount())
	}
	if err := e.Initialize(); !errors.Is(err, ErrClosed) {
		t.Fatalf("Initialize after Close = %v", err)
	}
	if err := e.Close(); err != nil || out.closes != 1 {
		t.Fatalf("second Close: err=%v closes=%d", err, out.closes)
	}
	buf := []float32{1, 1, 1, 1}
	e.Process(buf)
	if Peak(buf) != 0 {
		t.Fatal("closed engine produced sound")
	}
}

func testWAV(frames int) []byte {
	var buf bytes.Buffer
	n := uint32(frames * 4)
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, 36+n)
	buf.WriteString("WAVEfmt ")
	binary.Write(&buf, binary.LittleEndian, []uint32{16})
	binary.Write(&buf, binary.LittleEndian, []uint16{1, 2})
	binary.Write(&buf, binary.LittleEndian, []uint32{8000, 8000 * 4})
	binary.Write(&buf, binary.LittleEndian, []uint16{4, 16})
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, n)
	for i := 0; i < frames; i++ {
		v := int16(8000 * math.Sin(float64(i)*0.2))
		binary.Write(&buf, binary.LittleEndian, []int16{v, v})
	}
	return buf.Bytes()
}

func TestSampleLayers(t *testing.T) {
	m := mix.Default()
	assets := fstest.MapFS{"audio/soundscape.mp3": {Data: []byte("not an mp3")}}

	// undecodable asset: layer present but silent
	e := newTestEngine(t, m, &fakeOutput{}, WithAssetFS(assets))
	e.Initialize()
	if e.LayerCount() != 3 {
		t.Fatalf("LayerCount = %d", e.LayerCount())
	}
	if _, ok := e.graph.voices[0].gen.(synth.Silence); !ok {
		t.Fatalf("broken asset gen = %T, want Silence", e.graph.voices[0].gen)
	}

	m.Layers[0].Sample = "audio/loop.wav"
	assets["audio/loop.wav"] = &fstest.MapFile{Data: testWAV(800)}
	e = newTestEngine(t, m, &fakeOutput{}, WithAssetFS(assets))
	e.Initialize()
	if _, ok := e.graph.voices[0].gen.(*synth.Loop); !ok {
		t.Fatalf("wav asset gen = %T, want *synth.Loop", e.graph.voices[0].gen)
	}
}

func TestNewEngineRejects(t *testing.T) {
	if _, err := NewEngine(rampMix(), WithSampleRate(0)); err == nil {
		t.Fatal("zero sample rate accepted")
	}
	bad := rampMix()
	bad.Layers[0].Zones[0].End = 0.8
	if _, err := NewEngine(bad, WithOutput(&fakeOutput{})); !errors.Is(err, mix.ErrZones) {
		t.Fatalf("gap in zones: %v", err)
	}
	fx := rampMix()
	fx.Effects = []mix.Effect{{Type: "phaser"}}
	if _, err := NewEngine(fx, WithOutput(&fakeOutput{})); !errors.Is(err, intfx.ErrUnknownEffect) {
		t.Fatalf("unknown effect: %v", err)
	}
}

func TestSampleTapSeesOutput(t *testing.T) {
	var tapped int
	e := newTestEngine(t, rampMix(), &fakeOutput{}, WithSampleTap(func(buf []float32) { tapped += len(buf) }))
	e.Initialize()
	e.Process(make([]float32, 64))
	if tapped != 64 {
		t.Fatalf("tap saw %d samples", tapped)
	}
}

func TestStateString(t *testing.T) {
	if StateSuspended.String() != "suspended" || State(9).String() != "State(9)" {
		t.Fatal("State.String")
	}
}
