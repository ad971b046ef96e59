package session

import (
	"github.com/kaiwa-ai/reserve-gateway/internal/audio"
	"github.com/kaiwa-ai/reserve-gateway/internal/nlu"
)

// TurnTakingStatus is the per-frame turn decision.
type TurnTakingStatus int

const (
	StatusContinue TurnTakingStatus = iota
	StatusBackchannel
	StatusEndOfTurn
)

// minSpeechChunksForFastEnd gates the fast silence flag: a turn cannot end
// fast before the caller actually said something.
const minSpeechChunksForFastEnd = 5

// Detector fuses the volume VAD and the streaming NLU into the per-frame
// turn-taking decision.
type Detector struct {
	vad      *audio.VAD
	analyzer *nlu.Analyzer

	preText string
	result  nlu.Result
}

// NewDetector creates a detector over fresh VAD state.
func NewDetector(vadCfg audio.VADConfig, analyzer *nlu.Analyzer) *Detector {
	return &Detector{
		vad:      audio.NewVAD(vadCfg),
		analyzer: analyzer,
	}
}

// VADStep feeds one decoded audio chunk.
func (d *Detector) VADStep(samples []int16) {
	d.vad.ProcessChunk(samples)
}

// NLUStep re-analyzes the transcript when it changed since the last frame.
func (d *Detector) NLUStep(text string) {
	if text == "" || text == d.preText {
		d.preText = text
		return
	}
	d.preText = text
	d.result = d.analyzer.Process(text)
}

// Status decides the turn state for the current frame. asrEnded short-cuts
// everything: the vendor already judged the utterance stable.
func (d *Detector) Status(asrEnded bool) TurnTakingStatus {
	if asrEnded {
		return StatusEndOfTurn
	}

	fastEnd := d.vad.SpeechChunks() > minSpeechChunksForFastEnd && d.vad.FastEnd()

	if d.result.GotTerminalForms && fastEnd {
		return StatusEndOfTurn
	}
	if d.result.IsSlotFilled && fastEnd {
		return StatusEndOfTurn
	}
	if d.vad.SlowEnd() && d.preText != "" {
		return StatusEndOfTurn
	}
	if d.result.GotEntity && fastEnd {
		return StatusBackchannel
	}
	return StatusContinue
}

// Result returns the NLU output for the current transcript.
func (d *Detector) Result() nlu.Result { return d.result }

// Transcript returns the last observed transcript.
func (d *Detector) Transcript() string { return d.preText }

// SpeechChunks exposes the accumulated speech count for barge-in gating.
func (d *Detector) SpeechChunks() int { return d.vad.SpeechChunks() }

// Reset clears VAD and NLU state for a fresh turn.
func (d *Detector) Reset() {
	d.vad.Reset()
	d.preText = ""
	d.result = nlu.Result{}
}
