package audioplayer

import (
	"encoding/binary"
	"testing"
)

func TestPCMDecode(t *testing.T) {
	raw := make([]byte, 8)
	binary.LittleEndian.PutUint16(raw[0:], uint16(int16(0)))
	binary.LittleEndian.PutUint16(raw[2:], uint16(int16(16384)))
	negHalf := int16(-16384)
	negFull := int16(-32768)
	binary.LittleEndian.PutUint16(raw[4:], uint16(negHalf))
	binary.LittleEndian.PutUint16(raw[6:], uint16(negFull))

	buf, err := PCMDecoder{}.Decode(raw)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if buf.SampleRate != DefaultSampleRate {
		t.Errorf("default sample rate = %d, want %d", buf.SampleRate, DefaultSampleRate)
	}
	if buf.Len() != 4 {
		t.Fatalf("decoded %d frames, want 4", buf.Len())
	}

	want := []float64{0, 0.5, -0.5, -1}
	for i, w := range want {
		if got := buf.Samples[i][0]; got != w {
			t.Errorf("frame %d = %v, want %v", i, got, w)
		}
		if buf.Samples[i][0] != buf.Samples[i][1] {
			t.Errorf("frame %d: mono source should fill both channels", i)
		}
	}
}

func TestPCMDecodeErrors(t *testing.T) {
	if _, err := (PCMDecoder{}).Decode(nil); err == nil {
		t.Error("decoding empty data should fail")
	}
	if _, err := (PCMDecoder{}).Decode([]byte{1, 2, 3}); err == nil {
		t.Error("decoding odd-length data should fail")
	}
}

func TestBufferDuration(t *testing.T) {
	buf := &Buffer{Samples: make([][2]float64, 48000), SampleRate: 24000}
	if got := buf.Duration(); got != 2 {
		t.Errorf("Duration() = %v, want 2", got)
	}

	empty := &Buffer{}
	if got := empty.Duration(); got != 0 {
		t.Errorf("Duration() of empty buffer = %v, want 0", got)
	}
}
