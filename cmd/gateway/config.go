package main

import (
	"time"

	"github.com/kaiwa-ai/reserve-gateway/internal/audio"
	"github.com/kaiwa-ai/reserve-gateway/internal/env"
	"github.com/kaiwa-ai/reserve-gateway/internal/session"
)

type config struct {
	port string

	vadConfig        audio.VADConfig
	bargeInThreshold int

	asrURL             string
	asrStability       float64
	languageCode       string
	sampleRate         int
	backchannelEnabled bool

	ttsURL      string
	ttsVoice    string
	ttsRatePct  int
	ttsStyle    string
	ttsCacheDir string

	llmAPIKey  string
	llmBaseURL string
	llmModel   string
	llmTimeout time.Duration

	postgresURL string
	subdomain   string
	project     string

	patternsPath string
}

func loadConfig() config {
	vad := audio.DefaultVADConfig()
	vad.VolumeThreshold = env.Float("VOLUME_THRESHOLD", vad.VolumeThreshold)
	vad.FastEndChunks = env.Int("FAST_SPEECH_END_THRESHOLD", vad.FastEndChunks)
	vad.SlowEndChunks = env.Int("SLOW_SPEECH_END_THRESHOLD", vad.SlowEndChunks)
	vad.SampleRate = env.Int("SAMPLE_RATE", vad.SampleRate)

	return config{
		port: env.Str("GATEWAY_PORT", "8000"),

		vadConfig:        vad,
		bargeInThreshold: env.Int("BARGE_IN_THRESHOLD", 20),

		asrURL:             env.Str("ASR_URL", ""),
		asrStability:       env.Float("ASR_STABILITY_THRESHOLD", 0.85),
		languageCode:       env.Str("LANGUAGE_CODE", "ja-JP"),
		sampleRate:         env.Int("SAMPLE_RATE", 8000),
		backchannelEnabled: env.Str("BACKCHANNEL", "") == "on",

		ttsURL:      env.Str("TTS_URL", ""),
		ttsVoice:    env.Str("TTS_VOICE", "ja-JP-NanamiNeural"),
		ttsRatePct:  env.Int("TTS_RATE_PCT", 10),
		ttsStyle:    env.Str("TTS_STYLE", "customerservice"),
		ttsCacheDir: env.Str("TTS_CACHE_DIR", "templates/wav"),

		llmAPIKey:  env.Str("OPENAI_API_KEY", ""),
		llmBaseURL: env.Str("LLM_BASE_URL", ""),
		llmModel:   env.Str("LLM_MODEL", "gpt-4o-mini"),
		llmTimeout: env.Dur("LLM_TIMEOUT", time.Duration(env.Int("LLM_TIMEOUT_SEC", 5))*time.Second),

		postgresURL: env.Str("POSTGRES_URL", ""),
		subdomain:   env.Str("LOG_SUBDOMAIN", "voice"),
		project:     env.Str("LOG_PROJECT", "reserve"),

		patternsPath: env.Str("INTENT_PATTERNS_PATH", ""),
	}
}

func (c config) sessionOptions() session.Options {
	opts := session.DefaultOptions()
	opts.BargeInThreshold = c.bargeInThreshold
	opts.Backchannel = c.backchannelEnabled
	if env.Str("TURN_TAKING_MODE", "") == string(session.TurnTakingASRStability) {
		opts.TurnTaking = session.TurnTakingASRStability
	}
	if env.Str("BARGE_IN_MODE", "") == string(session.BargeInOff) {
		opts.BargeIn = session.BargeInOff
	}
	return opts
}
