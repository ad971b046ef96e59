package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kaiwa-ai/reserve-gateway/internal/asr"
	"github.com/kaiwa-ai/reserve-gateway/internal/audio"
)

// wsASRVendor speaks the recognizer sidecar's WebSocket protocol: binary
// frames carry μ-law audio upstream, JSON frames carry transcript updates
// downstream. The core only depends on the asr.Vendor contract.
type wsASRVendor struct {
	url string
}

func newWSASRVendor(url string) *wsASRVendor {
	return &wsASRVendor{url: url}
}

func (v *wsASRVendor) Open(ctx context.Context, cfg asr.StreamConfig) (asr.Stream, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, v.url, nil)
	if err != nil {
		return nil, &asr.TransientError{Err: fmt.Errorf("dial recognizer: %w", err)}
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	setup := map[string]any{
		"language_code":   cfg.LanguageCode,
		"sample_rate":     cfg.SampleRate,
		"model":           cfg.Model,
		"interim_results": cfg.InterimResults,
		"encoding":        "mulaw",
	}
	if err = conn.WriteJSON(setup); err != nil {
		conn.Close()
		return nil, &asr.TransientError{Err: fmt.Errorf("recognizer setup: %w", err)}
	}
	return &wsASRStream{conn: conn}, nil
}

type wsASRStream struct {
	conn *websocket.Conn
}

func (s *wsASRStream) Send(data []byte) error {
	return s.conn.WriteMessage(websocket.BinaryMessage, data)
}

func (s *wsASRStream) Recv() (asr.Update, error) {
	var msg struct {
		Transcript string  `json:"transcript"`
		IsFinal    bool    `json:"is_final"`
		Stability  float64 `json:"stability"`
	}
	if err := s.conn.ReadJSON(&msg); err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
			return asr.Update{}, io.EOF
		}
		return asr.Update{}, &asr.TransientError{Err: err}
	}
	return asr.Update{Transcript: msg.Transcript, IsFinal: msg.IsFinal, Stability: msg.Stability}, nil
}

func (s *wsASRStream) Close() error {
	return s.conn.Close()
}

// httpTTSEngine posts SSML to the synthesis sidecar and decodes the WAV it
// returns.
type httpTTSEngine struct {
	url    string
	client *http.Client
}

func newHTTPTTSEngine(url string) *httpTTSEngine {
	return &httpTTSEngine{
		url:    url,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (e *httpTTSEngine) Synthesize(ctx context.Context, ssml string) ([]int16, int, error) {
	body, err := json.Marshal(map[string]string{"ssml": ssml})
	if err != nil {
		return nil, 0, fmt.Errorf("marshal tts request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", e.url+"/synthesize", bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("create tts request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("tts request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, 0, fmt.Errorf("tts status %d: %s", resp.StatusCode, errBody)
	}

	wavData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read tts response: %w", err)
	}
	return audio.ParseWAV(wavData)
}
