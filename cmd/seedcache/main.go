// Command seedcache pre-synthesizes every template label into the on-disk
// TTS cache so call sessions can play them without touching the engine.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kaiwa-ai/reserve-gateway/internal/audio"
	"github.com/kaiwa-ai/reserve-gateway/internal/dialogue"
	"github.com/kaiwa-ai/reserve-gateway/internal/env"
)

const cacheSampleRate = 8000

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	outDir := flag.String("out", "templates/wav", "cache output directory")
	ttsURL := flag.String("tts-url", env.Str("TTS_URL", ""), "synthesis sidecar URL")
	voice := flag.String("voice", env.Str("TTS_VOICE", "ja-JP-NanamiNeural"), "engine voice name")
	flag.Parse()

	if *ttsURL == "" {
		slog.Error("tts-url is required")
		os.Exit(1)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		slog.Error("create cache dir", "error", err)
		os.Exit(1)
	}

	templates := dialogue.DefaultTemplates()
	client := &http.Client{Timeout: 60 * time.Second}
	ctx := context.Background()

	synthesized, skipped := 0, 0
	for label, text := range templates.LabelText {
		path := filepath.Join(*outDir, label+".wav")
		if _, err := os.Stat(path); err == nil {
			skipped++
			continue
		}
		if err := synthesizeTo(ctx, client, *ttsURL, *voice, text, path); err != nil {
			slog.Error("synthesize failed", "label", label, "error", err)
			os.Exit(1)
		}
		slog.Info("synthesized", "label", label)
		synthesized++
	}
	slog.Info("cache seeded", "synthesized", synthesized, "skipped", skipped, "dir", *outDir)
}

func synthesizeTo(ctx context.Context, client *http.Client, url, voice, text, path string) error {
	speakable := dialogue.SpeakableText(text)
	withBreaks := strings.ReplaceAll(speakable, "。", "。<break time='500ms'/>")
	ssml := fmt.Sprintf(
		"<speak version='1.0' xml:lang='ja-JP'><voice xml:lang='ja-JP' name='%s'><prosody rate='+10%%'>%s</prosody></voice></speak>",
		voice, withBreaks,
	)

	body, err := json.Marshal(map[string]string{"ssml": ssml})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, "POST", url+"/synthesize", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("tts status %d: %s", resp.StatusCode, errBody)
	}

	wavData, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	samples, rate, err := audio.ParseWAV(wavData)
	if err != nil {
		return err
	}
	return audio.WriteWAV(path, audio.Resample(samples, rate, cacheSampleRate), cacheSampleRate)
}
