package audio

import "testing"

// chunk builds 20 ms of 8 kHz samples at the given amplitude.
func chunk(amplitude int16) []int16 {
	samples := make([]int16, 160)
	for i := range samples {
		samples[i] = amplitude
	}
	return samples
}

func newTestVAD() *VAD {
	cfg := DefaultVADConfig()
	cfg.FastEndChunks = 3
	cfg.SlowEndChunks = 6
	return NewVAD(cfg)
}

func TestVADSpeechDetection(t *testing.T) {
	v := newTestVAD()
	v.ProcessChunk(chunk(3000))
	if v.SpeechChunks() != 1 {
		t.Errorf("speech chunks: want 1, got %d", v.SpeechChunks())
	}

	v = newTestVAD()
	v.ProcessChunk(chunk(0))
	if v.SpeechChunks() != 0 {
		t.Errorf("silence must not count as speech, got %d", v.SpeechChunks())
	}
}

func TestVADFastAndSlowEnd(t *testing.T) {
	v := newTestVAD()

	v.ProcessChunk(chunk(3000))
	if v.FastEnd() {
		t.Error("fast end must be false right after speech")
	}

	// The sliding buffer smears speech into the first silent chunk, so one
	// extra chunk is needed before the flags settle.
	for range 4 {
		v.ProcessChunk(chunk(0))
	}
	if !v.FastEnd() {
		t.Error("fast end after the silence window")
	}
	if v.SlowEnd() {
		t.Error("slow end needs 6 silent chunks")
	}

	for range 3 {
		v.ProcessChunk(chunk(0))
	}
	if !v.SlowEnd() {
		t.Error("slow end after 6 silent chunks")
	}
}

func TestVADThreshold(t *testing.T) {
	v := newTestVAD()

	// Mean absolute amplitude at the default threshold boundary.
	v.ProcessChunk(chunk(999))
	if v.SpeechChunks() != 0 {
		t.Error("amplitude below threshold must be silence")
	}
	v.ProcessChunk(chunk(1500))
	if v.SpeechChunks() != 1 {
		t.Error("amplitude above threshold must be speech")
	}
}

func TestVADReset(t *testing.T) {
	v := newTestVAD()
	v.ProcessChunk(chunk(3000))
	for range 6 {
		v.ProcessChunk(chunk(0))
	}

	v.Reset()
	if v.SpeechChunks() != 0 || v.FastEnd() || v.SlowEnd() {
		t.Error("reset must clear counters and flags")
	}
}
