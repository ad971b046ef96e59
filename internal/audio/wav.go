package audio

import (
	"bytes"
	"fmt"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ParseWAV decodes an in-memory 16-bit PCM WAV and returns mono samples and
// the sample rate.
func ParseWAV(data []byte) ([]int16, int, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("decode wav: %w", err)
	}
	if buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, 0, fmt.Errorf("wav: missing format")
	}
	channels := buf.Format.NumChannels
	frames := len(buf.Data) / channels
	samples := make([]int16, frames)
	for i := range frames {
		samples[i] = int16(buf.Data[i*channels])
	}
	return samples, buf.Format.SampleRate, nil
}

// LoadWAV reads a 16-bit PCM WAV file and returns mono samples and the sample rate.
// Multi-channel files are mixed down by taking the first channel.
func LoadWAV(path string) ([]int16, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open wav: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("decode wav %s: %w", path, err)
	}
	if buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, 0, fmt.Errorf("wav %s: missing format", path)
	}

	channels := buf.Format.NumChannels
	frames := len(buf.Data) / channels
	samples := make([]int16, frames)
	for i := range frames {
		samples[i] = int16(buf.Data[i*channels])
	}
	return samples, buf.Format.SampleRate, nil
}

// WriteWAV encodes mono 16-bit samples as a WAV file at path.
func WriteWAV(path string, samples []int16, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create wav: %w", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err = enc.Write(buf); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	return enc.Close()
}
