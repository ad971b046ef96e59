package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kaiwa-ai/reserve-gateway/internal/dialogue"
)

// completionServer returns a chat-completions endpoint always answering with
// the given content.
func completionServer(t *testing.T, content string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			http.Error(w, "boom", status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		resp := map[string]any{
			"id":     "chatcmpl-test",
			"object": "chat.completion",
			"model":  "test-model",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func testClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	return NewClient(Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
		Timeout: 2 * time.Second,
	}, nil)
}

func testLabels() map[dialogue.Intent][]string {
	return map[dialogue.Intent][]string{
		dialogue.IntentNewReservation:    {"予約したい"},
		dialogue.IntentCancelReservation: {"予約をキャンセルしたい"},
		dialogue.IntentOther:             {"その他"},
	}
}

func TestClassifyIntentOk(t *testing.T) {
	server := completionServer(t, `{"intent": "NEW_RESERVATION"}`, http.StatusOK)
	defer server.Close()

	intent, kind := testClient(t, server).ClassifyIntent(context.Background(), "予約したいです", testLabels())
	if kind != ResultOk {
		t.Fatalf("kind: want Ok, got %v", kind)
	}
	if intent != dialogue.IntentNewReservation {
		t.Errorf("intent: got %s", intent)
	}
}

func TestClassifyIntentFencedJSON(t *testing.T) {
	server := completionServer(t, "```json\n{\"intent\": \"CANCEL_RESERVATION\"}\n```", http.StatusOK)
	defer server.Close()

	intent, kind := testClient(t, server).ClassifyIntent(context.Background(), "キャンセルで", testLabels())
	if kind != ResultOk || intent != dialogue.IntentCancelReservation {
		t.Errorf("fenced JSON: got %s kind %v", intent, kind)
	}
}

func TestClassifyIntentBadJSONIsEmpty(t *testing.T) {
	server := completionServer(t, "予約だと思います", http.StatusOK)
	defer server.Close()

	intent, kind := testClient(t, server).ClassifyIntent(context.Background(), "...", testLabels())
	if kind != ResultEmpty {
		t.Fatalf("kind: want Empty, got %v", kind)
	}
	if intent != dialogue.IntentNone {
		t.Errorf("intent on decode failure: got %s", intent)
	}
}

func TestClassifyIntentUnknownLabelIsEmpty(t *testing.T) {
	server := completionServer(t, `{"intent": "MAKE_COFFEE"}`, http.StatusOK)
	defer server.Close()

	_, kind := testClient(t, server).ClassifyIntent(context.Background(), "...", testLabels())
	if kind != ResultEmpty {
		t.Errorf("labels outside the candidate set must be empty, got %v", kind)
	}
}

func TestServerErrorIsFailed(t *testing.T) {
	server := completionServer(t, "", http.StatusInternalServerError)
	defer server.Close()

	_, kind := testClient(t, server).ClassifyIntent(context.Background(), "...", testLabels())
	if kind != ResultFailed {
		t.Errorf("server error: want Failed, got %v", kind)
	}
}

func TestAnswerFAQEmptyContent(t *testing.T) {
	server := completionServer(t, "", http.StatusOK)
	defer server.Close()

	answer, kind := testClient(t, server).AnswerFAQ(context.Background(), "駐車場はありますか")
	if kind != ResultEmpty || answer != "" {
		t.Errorf("empty content: got %q kind %v", answer, kind)
	}
}

func TestAnswerFAQOk(t *testing.T) {
	server := completionServer(t, "駐車場はございませんが、近隣にコインパーキングがございます。", http.StatusOK)
	defer server.Close()

	answer, kind := testClient(t, server).AnswerFAQ(context.Background(), "駐車場はありますか")
	if kind != ResultOk || answer == "" {
		t.Errorf("faq answer: got %q kind %v", answer, kind)
	}
}

func TestIntentClassificationPrompt(t *testing.T) {
	prompt := IntentClassificationPrompt(testLabels())
	for _, want := range []string{"NEW_RESERVATION", "CANCEL_RESERVATION", "予約したい", "intent"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestStripCodeFence(t *testing.T) {
	cases := []struct{ in, want string }{
		{`{"intent": "X"}`, `{"intent": "X"}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"``` {\"a\":1} ```", `{"a":1}`},
	}
	for i, tc := range cases {
		if got := stripCodeFence(tc.in); got != tc.want {
			t.Errorf("case %d: want %q, got %q", i, tc.want, got)
		}
	}
}
