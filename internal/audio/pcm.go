package audio

import "encoding/binary"

// DecodePCM converts little-endian 16-bit PCM bytes to samples.
func DecodePCM(data []byte) []int16 {
	n := len(data) / 2
	samples := make([]int16, n)
	for i := range n {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return samples
}

// EncodePCM converts samples to little-endian 16-bit PCM bytes.
func EncodePCM(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}
