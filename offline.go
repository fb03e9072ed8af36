package scrollmix

import (
	"encoding/binary"
	"errors"
	"math"

	intaudio "github.com/studionf/scrollmix/internal/audio"
	"github.com/studionf/scrollmix/internal/keyframe"
	"github.com/studionf/scrollmix/internal/mix"
	"github.com/studionf/scrollmix/internal/progress"
)

// RenderOptions configures an offline render.
type RenderOptions struct {
	SampleRate int             // 48000 when unset
	Spring     progress.Params // progress.DefaultParams when zero
	Engine     []EngineOption
	// OnTick runs after every progress tick with the render time in seconds
	// and the smoothed progress.
	OnTick func(t, p float64)
}

// LinearScroll is a path scrolling from top to bottom in seconds.
func LinearScroll(seconds float64) keyframe.Track {
	return keyframe.NewTrack(keyframe.Point{At: 0, Value: 0}, keyframe.Point{At: seconds, Value: 1})
}

// RenderSamples plays m along path, a track from seconds to raw scroll
// fraction, and returns interleaved stereo samples. The raw path goes
// through the same spring as the live viewer.
func RenderSamples(m mix.Mix, path keyframe.Track, seconds float64, opts RenderOptions) ([]float32, error) {
	if seconds <= 0 {
		return nil, errors.New("seconds must be positive")
	}
	sr := opts.SampleRate
	if sr <= 0 {
		sr = 48000
	}
	spring := opts.Spring
	if spring.Mass <= 0 || spring.Stiffness <= 0 {
		spring = progress.DefaultParams()
	}
	engOpts := append(append([]EngineOption{}, opts.Engine...),
		WithSampleRate(sr),
		WithOutput(intaudio.Discard{}),
	)
	engine, err := NewEngine(m, engOpts...)
	if err != nil {
		return nil, err
	}
	src := progress.NewSource(spring)
	src.Jump(path.Value(0))
	scene := NewScene(src, nil, engine)
	defer scene.Close()
	if err := engine.Initialize(); err != nil {
		return nil, err
	}

	tickRate := src.Params().TickRate
	block := sr / tickRate
	if block < 1 {
		block = 1
	}
	frames := int(float64(sr) * seconds)
	out := make([]float32, frames*2)
	for start := 0; start < frames; start += block {
		t := float64(start) / float64(sr)
		src.SetRaw(path.Value(t))
		src.Tick()
		if opts.OnTick != nil {
			opts.OnTick(t, src.Value())
		}
		end := min(start+block, frames)
		engine.Process(out[start*2 : end*2])
	}
	return out, nil
}

// Peak returns the largest absolute sample value.
func Peak(samples []float32) float32 {
	var p float32
	for _, s := range samples {
		if s < 0 {
			s = -s
		}
		if s > p {
			p = s
		}
	}
	return p
}

func EncodeWAVFloat32LE(samples []float32, sampleRate int, channels int) []byte {
	dataSize := len(samples) * 4
	byteRate := sampleRate * channels * 4
	blockAlign := channels * 4
	chunkSize := 36 + dataSize
	out := make([]byte, 44+dataSize)
	copy(out[0:], []byte("RIFF"))
	binary.LittleEndian.PutUint32(out[4:], uint32(chunkSize))
	copy(out[8:], []byte("WAVE"))
	copy(out[12:], []byte("fmt "))
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 3) // IEEE float
	binary.LittleEndian.PutUint16(out[22:], uint16(channels))
	binary.LittleEndian.PutUint32(out[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:], 32)
	copy(out[36:], []byte("data"))
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[44+i*4:], math.Float32bits(s))
	}
	return out
}
