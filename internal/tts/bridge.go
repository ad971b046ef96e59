package tts

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/kaiwa-ai/reserve-gateway/internal/audio"
	"github.com/kaiwa-ai/reserve-gateway/internal/dialogue"
	"github.com/kaiwa-ai/reserve-gateway/internal/metrics"
)

const carrierSampleRate = 8000

// Engine is the synthesis backend contract. Implementations are vendor
// clients outside the core.
type Engine interface {
	// Synthesize renders SSML to 16-bit mono PCM, returning the sample rate.
	Synthesize(ctx context.Context, ssml string) ([]int16, int, error)
}

// Envelope is one carrier-ready audio payload.
type Envelope struct {
	Label   string // the label or text that produced the audio
	Payload string // base64 μ-law 8 kHz
}

// Config holds bridge settings.
type Config struct {
	CacheDir  string
	QueueSize int    // bounded request FIFO; default 16
	VoiceName string // engine voice, fixed per deployment
	RatePct   int    // speaking rate boost; default +10%
	Style     string // engine speaking style
}

// Bridge turns labels and free text into carrier-framed audio. A single
// worker consumes the bounded request FIFO and produces envelopes in order.
type Bridge struct {
	engine    Engine
	templates *dialogue.Templates
	cache     *Cache
	cfg       Config
	log       *slog.Logger

	requests chan string
	ready    chan Envelope
	pending  atomic.Int64
}

// NewBridge creates a TTS bridge.
func NewBridge(engine Engine, templates *dialogue.Templates, cfg Config, log *slog.Logger) *Bridge {
	if log == nil {
		log = slog.Default()
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 16
	}
	if cfg.RatePct == 0 {
		cfg.RatePct = 10
	}
	return &Bridge{
		engine:    engine,
		templates: templates,
		cache:     NewCache(cfg.CacheDir),
		cfg:       cfg,
		log:       log,
		requests:  make(chan string, cfg.QueueSize),
		ready:     make(chan Envelope, cfg.QueueSize),
	}
}

// AddResponse enqueues a label or formatted text for synthesis. Returns
// false when the bounded queue is full; the caller decides the fallback.
func (b *Bridge) AddResponse(textOrLabel string) bool {
	if textOrLabel == "" {
		return true
	}
	select {
	case b.requests <- textOrLabel:
		b.pending.Add(1)
		return true
	default:
		metrics.Errors.WithLabelValues("tts", "queue_full").Inc()
		return false
	}
}

// Ready exposes the produced envelopes in enqueue order.
func (b *Bridge) Ready() <-chan Envelope { return b.ready }

// IsEmpty reports whether everything enqueued has been synthesized and
// drained; the orchestrator uses it to detect end of conversation.
func (b *Bridge) IsEmpty() bool {
	return b.pending.Load() == 0 && len(b.ready) == 0
}

// Run processes requests until ctx is canceled.
func (b *Bridge) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req := <-b.requests:
			env, err := b.produce(ctx, req)
			if err != nil {
				b.log.Warn("tts synth failed", "input", req, "error", err)
				metrics.Errors.WithLabelValues("tts", "synth").Inc()
				env, err = b.produce(ctx, dialogue.LabelApologize)
				if err != nil {
					b.pending.Add(-1)
					continue
				}
			}
			select {
			case b.ready <- env:
				b.pending.Add(-1)
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

func (b *Bridge) produce(ctx context.Context, textOrLabel string) (Envelope, error) {
	if samples, rate, ok := b.cache.Lookup(textOrLabel); ok {
		metrics.TTSCacheHits.Inc()
		return b.envelope(textOrLabel, samples, rate), nil
	}

	if textOrLabel == dialogue.LabelInitial {
		// A short lead-in of silence lets the carrier open its jitter buffer.
		return b.envelope(textOrLabel, make([]int16, carrierSampleRate/5), carrierSampleRate), nil
	}

	text := dialogue.SpeakableText(b.templates.Text(textOrLabel))
	metrics.TTSSynthTotal.Inc()
	samples, rate, err := b.engine.Synthesize(ctx, b.buildSSML(text))
	if err != nil {
		return Envelope{}, fmt.Errorf("synthesize: %w", err)
	}
	return b.envelope(textOrLabel, samples, rate), nil
}

func (b *Bridge) envelope(label string, samples []int16, rate int) Envelope {
	converted := audio.Resample(samples, rate, carrierSampleRate)
	payload := base64.StdEncoding.EncodeToString(audio.EncodeUlaw(converted))
	return Envelope{Label: label, Payload: payload}
}

// buildSSML wraps text for the engine: sentence pauses on 。 and a slightly
// raised speaking rate for phone audio.
func (b *Bridge) buildSSML(text string) string {
	withBreaks := strings.ReplaceAll(text, "。", "。<break time='500ms'/>")
	styleOpen, styleClose := "", ""
	if b.cfg.Style != "" {
		styleOpen = fmt.Sprintf("<mstts:express-as style='%s'>", b.cfg.Style)
		styleClose = "</mstts:express-as>"
	}
	return fmt.Sprintf(
		"<speak version='1.0' xml:lang='ja-JP'><voice xml:lang='ja-JP' name='%s'>%s<prosody rate='+%d%%'>%s</prosody>%s</voice></speak>",
		b.cfg.VoiceName, styleOpen, b.cfg.RatePct, withBreaks, styleClose,
	)
}
