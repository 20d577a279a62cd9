package audioplayer

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// DefaultSampleRate is the sample rate produced by the TTS providers we talk to.
const DefaultSampleRate = 24000

// Buffer holds decoded audio ready for playback. Samples are stereo pairs in
// the [-1, 1] range; mono sources are duplicated onto both channels.
type Buffer struct {
	Samples    [][2]float64
	SampleRate int
}

// Len returns the number of sample frames in the buffer.
func (b *Buffer) Len() int {
	return len(b.Samples)
}

// Duration returns the playable duration in seconds.
func (b *Buffer) Duration() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(len(b.Samples)) / float64(b.SampleRate)
}

// Decoder turns raw fetched audio bytes into a playable buffer.
type Decoder interface {
	Decode(raw []byte) (*Buffer, error)
}

// PCMDecoder decodes signed 16-bit little-endian mono PCM, the raw format
// returned by speech synthesis endpoints.
type PCMDecoder struct {
	SampleRate int // Defaults to DefaultSampleRate when zero.
}

// Decode converts raw s16le mono bytes into a Buffer.
func (d PCMDecoder) Decode(raw []byte) (*Buffer, error) {
	if len(raw) == 0 {
		return nil, errors.New("no audio data to decode")
	}
	if len(raw)%2 != 0 {
		return nil, fmt.Errorf("pcm data has odd byte count %d", len(raw))
	}

	sampleRate := d.SampleRate
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}

	samples := make([][2]float64, len(raw)/2)
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(raw[2*i:]))
		f := float64(v) / 32768.0
		samples[i] = [2]float64{f, f}
	}

	return &Buffer{Samples: samples, SampleRate: sampleRate}, nil
}
