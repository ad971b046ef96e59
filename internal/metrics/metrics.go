package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CallsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dialogue_calls_active",
		Help: "Currently active call sessions",
	})

	CallsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dialogue_calls_total",
		Help: "Total calls processed",
	})

	TurnsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dialogue_turns_total",
		Help: "User turns committed to the state tracker",
	})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dialogue_stage_duration_seconds",
		Help:    "Per-stage latency",
		Buckets: []float64{0.05, 0.1, 0.2, 0.3, 0.5, 0.8, 1.0, 2.0, 5.0},
	}, []string{"stage"})

	TurnDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dialogue_turn_duration_seconds",
		Help:    "End-of-turn to first outbound audio envelope",
		Buckets: []float64{0.1, 0.2, 0.5, 0.8, 1.0, 1.5, 2.0, 3.0, 5.0},
	})

	Errors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dialogue_errors_total",
		Help: "Error counts by stage",
	}, []string{"stage", "error_type"})

	AudioFrames = promauto.NewCounter(prometheus.CounterOpts{
		Name: "audio_frames_processed_total",
		Help: "Total inbound audio frames received",
	})

	BargeIns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dialogue_barge_ins_total",
		Help: "Barge-ins that triggered a carrier clear",
	})

	TTSCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tts_cache_hits_total",
		Help: "Template labels served from the pre-synthesized cache",
	})

	TTSSynthTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tts_synth_total",
		Help: "Utterances sent to the synthesis engine",
	})

	LLMCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "llm_calls_total",
		Help: "LLM calls by kind and outcome",
	}, []string{"kind", "outcome"})
)
