package tts

import (
	"context"
	"encoding/base64"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kaiwa-ai/reserve-gateway/internal/audio"
	"github.com/kaiwa-ai/reserve-gateway/internal/dialogue"
)

// fakeEngine renders a fixed tone, or fails for configured inputs.
type fakeEngine struct {
	mu       sync.Mutex
	failFor  map[string]bool
	requests []string
}

func (e *fakeEngine) Synthesize(ctx context.Context, ssml string) ([]int16, int, error) {
	e.mu.Lock()
	e.requests = append(e.requests, ssml)
	e.mu.Unlock()
	for needle := range e.failFor {
		if strings.Contains(ssml, needle) {
			return nil, 0, errors.New("engine unavailable")
		}
	}
	samples := make([]int16, 1600)
	for i := range samples {
		samples[i] = int16(i % 2000)
	}
	return samples, 16000, nil
}

func startBridge(t *testing.T, engine Engine, cacheDir string) *Bridge {
	t.Helper()
	b := NewBridge(engine, dialogue.DefaultTemplates(), Config{
		CacheDir:  cacheDir,
		VoiceName: "ja-JP-NanamiNeural",
	}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go b.Run(ctx)
	return b
}

func nextEnvelope(t *testing.T, b *Bridge) Envelope {
	t.Helper()
	select {
	case env := <-b.Ready():
		return env
	case <-time.After(2 * time.Second):
		t.Fatal("no envelope produced")
		return Envelope{}
	}
}

func TestSynthesizeLabelProducesUlawPayload(t *testing.T) {
	engine := &fakeEngine{}
	b := startBridge(t, engine, "")

	if !b.AddResponse(dialogue.LabelDate1) {
		t.Fatal("enqueue failed")
	}
	env := nextEnvelope(t, b)
	if env.Label != dialogue.LabelDate1 {
		t.Errorf("label: got %q", env.Label)
	}

	raw, err := base64.StdEncoding.DecodeString(env.Payload)
	if err != nil {
		t.Fatalf("payload is not base64: %v", err)
	}
	// 1600 samples at 16 kHz resample to 800 μ-law bytes at 8 kHz.
	if len(raw) != 800 {
		t.Errorf("payload length: want 800, got %d", len(raw))
	}
}

func TestLabelResolvesToTemplateText(t *testing.T) {
	engine := &fakeEngine{}
	b := startBridge(t, engine, "")

	b.AddResponse(dialogue.LabelApologize)
	nextEnvelope(t, b)

	engine.mu.Lock()
	defer engine.mu.Unlock()
	if len(engine.requests) != 1 || !strings.Contains(engine.requests[0], "聞き取れませんでした") {
		t.Errorf("engine must receive the label's text, got %v", engine.requests)
	}
}

func TestSpeakableRewriteBeforeSynthesis(t *testing.T) {
	engine := &fakeEngine{}
	b := startBridge(t, engine, "")

	b.AddResponse("11/02の19:30に3名様ですね")
	nextEnvelope(t, b)

	engine.mu.Lock()
	defer engine.mu.Unlock()
	if !strings.Contains(engine.requests[0], "11月2日の19時半") {
		t.Errorf("dates and times must be rewritten for speech: %v", engine.requests)
	}
}

func TestCacheFirstLookup(t *testing.T) {
	dir := t.TempDir()
	samples := make([]int16, 400)
	if err := audio.WriteWAV(filepath.Join(dir, dialogue.LabelTime1+".wav"), samples, 8000); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	engine := &fakeEngine{failFor: map[string]bool{"時間": true}}
	b := startBridge(t, engine, dir)

	b.AddResponse(dialogue.LabelTime1)
	env := nextEnvelope(t, b)
	if env.Label != dialogue.LabelTime1 {
		t.Errorf("label: got %q", env.Label)
	}

	engine.mu.Lock()
	defer engine.mu.Unlock()
	if len(engine.requests) != 0 {
		t.Error("cached labels must not reach the engine")
	}
}

func TestEngineFailureFallsBackToApologize(t *testing.T) {
	engine := &fakeEngine{failFor: map[string]bool{"日付": true}}
	b := startBridge(t, engine, "")

	b.AddResponse(dialogue.LabelDate1)
	env := nextEnvelope(t, b)
	if env.Label != dialogue.LabelApologize {
		t.Errorf("fallback label: got %q", env.Label)
	}
}

func TestIsEmptyTracksQueue(t *testing.T) {
	engine := &fakeEngine{}
	b := startBridge(t, engine, "")

	if !b.IsEmpty() {
		t.Error("fresh bridge must be empty")
	}
	b.AddResponse(dialogue.LabelDate1)
	if b.IsEmpty() {
		t.Error("pending request must not be empty")
	}
	nextEnvelope(t, b)
	if !b.IsEmpty() {
		t.Error("drained bridge must be empty")
	}
}

func TestEmptyInputIgnored(t *testing.T) {
	engine := &fakeEngine{}
	b := startBridge(t, engine, "")
	if !b.AddResponse("") {
		t.Error("empty input is accepted as a no-op")
	}
	if !b.IsEmpty() {
		t.Error("empty input must not enqueue work")
	}
}
