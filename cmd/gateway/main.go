package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/kaiwa-ai/reserve-gateway/internal/asr"
	"github.com/kaiwa-ai/reserve-gateway/internal/convlog"
	"github.com/kaiwa-ai/reserve-gateway/internal/dialogue"
	"github.com/kaiwa-ai/reserve-gateway/internal/llm"
	"github.com/kaiwa-ai/reserve-gateway/internal/nlu"
	"github.com/kaiwa-ai/reserve-gateway/internal/reservation"
	"github.com/kaiwa-ai/reserve-gateway/internal/session"
	"github.com/kaiwa-ai/reserve-gateway/internal/tts"
)

func main() {
	_ = godotenv.Load()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	cfg := loadConfig()

	templates := dialogue.DefaultTemplates()
	patterns, err := dialogue.LoadIntentPatterns(cfg.patternsPath)
	if err != nil {
		slog.Error("load intent patterns", "error", err)
		os.Exit(1)
	}

	analyzer, err := nlu.NewAnalyzer(nlu.NewNormalizer(), dialogue.AllSlots)
	if err != nil {
		slog.Error("init nlu analyzer", "error", err)
		os.Exit(1)
	}

	var llmClient *llm.Client
	if cfg.llmAPIKey != "" {
		llmClient = llm.NewClient(llm.Config{
			APIKey:  cfg.llmAPIKey,
			BaseURL: cfg.llmBaseURL,
			Model:   cfg.llmModel,
			Timeout: cfg.llmTimeout,
		}, slog.Default())
	} else {
		slog.Warn("no LLM API key, intent classification and FAQ run rule-only")
	}

	var logStore *convlog.Store
	if cfg.postgresURL != "" {
		logStore, err = convlog.Open(cfg.postgresURL)
		if err != nil {
			// Conversation logging is best-effort; the dialogue runs without it.
			slog.Warn("conversation log store unavailable", "error", err)
			logStore = nil
		} else {
			defer logStore.Close()
		}
	}

	asrVendor := newWSASRVendor(cfg.asrURL)
	ttsEngine := newHTTPTTSEngine(cfg.ttsURL)
	reservations := reservation.NewMemoryManager(slog.Default())

	// The ASR per-call deadline is three silence budgets: a vendor that
	// produces nothing for that long gets restarted.
	silenceBudget := time.Duration(cfg.vadConfig.SlowEndChunks) * 20 * time.Millisecond
	asrConfig := asr.Config{
		Stream: asr.StreamConfig{
			LanguageCode:   cfg.languageCode,
			SampleRate:     cfg.sampleRate,
			Model:          "latest_long",
			InterimResults: true,
		},
		StabilityThreshold: cfg.asrStability,
		Deadline:           3 * silenceBudget,
	}

	ttsConfig := tts.Config{
		CacheDir:  cfg.ttsCacheDir,
		VoiceName: cfg.ttsVoice,
		RatePct:   cfg.ttsRatePct,
		Style:     cfg.ttsStyle,
	}

	d := deps{
		logStore: logStore,
		newTTS: func() *tts.Bridge {
			return tts.NewBridge(ttsEngine, templates, ttsConfig, slog.Default())
		},
		sessionConfig: func() session.Config {
			return session.Config{
				Templates:    templates,
				Patterns:     patterns,
				Analyzer:     analyzer,
				LLM:          llmClient,
				ASRVendor:    asrVendor,
				ASRConfig:    asrConfig,
				VADConfig:    cfg.vadConfig,
				Reservations: reservations,
				LogStore:     logStore,
				Subdomain:    cfg.subdomain,
				Project:      cfg.project,
				Options:      cfg.sessionOptions(),
			}
		},
	}

	mux := http.NewServeMux()
	registerRoutes(mux, d)

	server := &http.Server{
		Addr:              ":" + cfg.port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("gateway listening", "port", cfg.port)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
}
