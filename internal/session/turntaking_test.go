package session

import (
	"testing"
	"time"

	"github.com/kaiwa-ai/reserve-gateway/internal/audio"
	"github.com/kaiwa-ai/reserve-gateway/internal/dialogue"
	"github.com/kaiwa-ai/reserve-gateway/internal/nlu"
)

func testVADConfig() audio.VADConfig {
	cfg := audio.DefaultVADConfig()
	cfg.FastEndChunks = 3
	cfg.SlowEndChunks = 6
	return cfg
}

func testAnalyzer(t *testing.T) *nlu.Analyzer {
	t.Helper()
	norm := &nlu.Normalizer{Now: func() time.Time {
		return time.Date(2024, 10, 23, 10, 0, 0, 0, time.Local)
	}}
	a, err := nlu.NewAnalyzer(norm, dialogue.AllSlots)
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}
	return a
}

func speechChunk() []int16 {
	samples := make([]int16, 160)
	for i := range samples {
		samples[i] = 3000
	}
	return samples
}

func silenceChunk() []int16 {
	return make([]int16, 160)
}

// feed pushes speech then silence chunks. The VAD's sliding buffer smears
// speech into the first silent chunk, so callers add one extra silent chunk
// beyond the configured threshold.
func feed(d *Detector, speech, silence int) {
	for range speech {
		d.VADStep(speechChunk())
	}
	for range silence {
		d.VADStep(silenceChunk())
	}
}

func TestStatusContinueOnSilence(t *testing.T) {
	d := NewDetector(testVADConfig(), testAnalyzer(t))
	feed(d, 0, 6)
	if got := d.Status(false); got != StatusContinue {
		t.Errorf("silence with no transcript: want CONTINUE, got %v", got)
	}
}

func TestStatusEndOfTurnOnTerminalAndFastEnd(t *testing.T) {
	d := NewDetector(testVADConfig(), testAnalyzer(t))
	feed(d, 6, 0)
	d.NLUStep("予約したいです")
	feed(d, 0, 4)

	if got := d.Status(false); got != StatusEndOfTurn {
		t.Errorf("terminal + fast end: want END_OF_TURN, got %v", got)
	}
}

func TestStatusEndOfTurnOnSlotsFilledAndFastEnd(t *testing.T) {
	d := NewDetector(testVADConfig(), testAnalyzer(t))
	feed(d, 6, 0)
	d.NLUStep("来週の土曜日、19時から3名で、山田")
	feed(d, 0, 4)

	if got := d.Status(false); got != StatusEndOfTurn {
		t.Errorf("slots filled + fast end: want END_OF_TURN, got %v", got)
	}
}

func TestStatusBackchannelOnNewEntity(t *testing.T) {
	d := NewDetector(testVADConfig(), testAnalyzer(t))
	feed(d, 6, 0)
	d.NLUStep("明日の")
	feed(d, 0, 4)

	if got := d.Status(false); got != StatusBackchannel {
		t.Errorf("new entity + fast end: want BACKCHANNEL, got %v", got)
	}
}

func TestStatusEndOfTurnOnSlowEnd(t *testing.T) {
	d := NewDetector(testVADConfig(), testAnalyzer(t))
	feed(d, 2, 0)
	d.NLUStep("えっと")
	feed(d, 0, 7)

	if got := d.Status(false); got != StatusEndOfTurn {
		t.Errorf("slow end with transcript: want END_OF_TURN, got %v", got)
	}
}

func TestStatusFastEndNeedsEnoughSpeech(t *testing.T) {
	d := NewDetector(testVADConfig(), testAnalyzer(t))
	// Two speech chunks are below the gate; the fast flag must not fire.
	feed(d, 2, 5)
	d.NLUStep("予約したいです")

	if got := d.Status(false); got == StatusEndOfTurn {
		t.Error("fast end must be gated on accumulated speech")
	}
}

func TestStatusASREnded(t *testing.T) {
	d := NewDetector(testVADConfig(), testAnalyzer(t))
	if got := d.Status(true); got != StatusEndOfTurn {
		t.Errorf("asr ended: want END_OF_TURN, got %v", got)
	}
}

func TestDetectorReset(t *testing.T) {
	d := NewDetector(testVADConfig(), testAnalyzer(t))
	feed(d, 6, 3)
	d.NLUStep("予約したいです")

	d.Reset()
	if d.Transcript() != "" || d.SpeechChunks() != 0 {
		t.Error("reset must clear transcript and speech count")
	}
	if got := d.Status(false); got != StatusContinue {
		t.Errorf("after reset: want CONTINUE, got %v", got)
	}
}
