package audio

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"
)

type rampSource struct{ calls int }

func (s *rampSource) Process(dst []float32) {
	s.calls++
	vals := []float32{0.25, -0.5, 2, float32(math.NaN())}
	for i := range dst {
		dst[i] = vals[i%len(vals)]
	}
}

func TestStreamReaderEncodes(t *testing.T) {
	src := &rampSource{}
	r := NewStreamReader(src)
	p := make([]byte, 19) // two frames and a partial one
	n, err := r.Read(p)
	if err != nil {
		t.Fatal(err)
	}
	if n != 16 {
		t.Fatalf("n = %d, want 16", n)
	}
	want := []float32{0.25, -0.5, 1, 0}
	for i, w := range want {
		got := math.Float32frombits(binary.LittleEndian.Uint32(p[i*4:]))
		if got != w {
			t.Errorf("sample %d = %v, want %v", i, got, w)
		}
	}
}

func TestStreamReaderShortBuffer(t *testing.T) {
	src := &rampSource{}
	r := NewStreamReader(src)
	if n, err := r.Read(make([]byte, 7)); n != 0 || err != nil {
		t.Fatalf("Read = %d, %v", n, err)
	}
	if src.calls != 0 {
		t.Fatal("source pulled for an empty read")
	}
}

func TestStreamReaderClose(t *testing.T) {
	r := NewStreamReader(&rampSource{})
	r.Close()
	if _, err := r.Read(make([]byte, 64)); !errors.Is(err, io.EOF) {
		t.Fatalf("err = %v, want EOF", err)
	}
}

func TestSanitize(t *testing.T) {
	cases := map[float32]float32{0.5: 0.5, -3: -1, 3: 1, float32(math.Inf(1)): 1}
	for in, want := range cases {
		if got := Sanitize(in); got != want {
			t.Errorf("Sanitize(%v) = %v", in, got)
		}
	}
}

var _ Output = Discard{}
var _ Output = (*Ebiten)(nil)
