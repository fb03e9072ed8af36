package synth

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
)

var (
	ErrFormat = errors.New("synth: unsupported audio format")
	ErrEmpty  = errors.New("synth: empty audio asset")
)

// Loop plays interleaved stereo samples forever.
type Loop struct {
	samples []float32
	pos     int
}

// NewLoop wraps interleaved stereo samples. An odd trailing sample is
// dropped.
func NewLoop(samples []float32) (*Loop, error) {
	n := len(samples) &^ 1
	if n == 0 {
		return nil, ErrEmpty
	}
	return &Loop{samples: samples[:n]}, nil
}

// Frames returns the loop length in stereo frames.
func (l *Loop) Frames() int { return len(l.samples) / 2 }

func (l *Loop) Next() (float32, float32) {
	a, b := l.samples[l.pos], l.samples[l.pos+1]
	l.pos += 2
	if l.pos >= len(l.samples) {
		l.pos = 0
	}
	return a, b
}

// DecodeLoop decodes a wav, mp3 or ogg asset named name, resampled to
// sampleRate, into a Loop.
func DecodeLoop(name string, r io.Reader, sampleRate int) (*Loop, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	var stream io.Reader
	switch strings.ToLower(path.Ext(name)) {
	case ".wav":
		stream, err = wav.DecodeWithSampleRate(sampleRate, bytes.NewReader(data))
	case ".mp3":
		stream, err = mp3.DecodeWithSampleRate(sampleRate, bytes.NewReader(data))
	case ".ogg":
		stream, err = vorbis.DecodeWithSampleRate(sampleRate, bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("%w: %s", ErrFormat, name)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	pcm, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	loop, err := NewLoop(PCM16ToFloat32(pcm))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return loop, nil
}

// PCM16ToFloat32 converts signed 16-bit little-endian PCM to float32 in
// [-1,1).
func PCM16ToFloat32(pcm []byte) []float32 {
	out := make([]float32, len(pcm)/2)
	for i := range out {
		v := int16(binary.LittleEndian.Uint16(pcm[2*i:]))
		out[i] = float32(v) / 32768
	}
	return out
}
