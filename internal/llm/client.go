package llm

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/kaiwa-ai/reserve-gateway/internal/dialogue"
	"github.com/kaiwa-ai/reserve-gateway/internal/metrics"
)

// ResultKind classifies an LLM call outcome for policy routing.
type ResultKind int

const (
	ResultOk ResultKind = iota
	ResultEmpty
	ResultFailed
)

// Config holds LLM client settings.
type Config struct {
	APIKey  string
	BaseURL string // empty for the default endpoint
	Model   string
	Timeout time.Duration
}

// Client is a stateless request/response client for intent classification
// and FAQ answering. All calls run at temperature 0 under a hard timeout.
type Client struct {
	api     openai.Client
	model   string
	timeout time.Duration
	log     *slog.Logger
}

// NewClient creates an LLM client.
func NewClient(cfg Config, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		api:     openai.NewClient(opts...),
		model:   cfg.Model,
		timeout: timeout,
		log:     log,
	}
}

func (c *Client) complete(ctx context.Context, system, user string) (string, ResultKind) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	completion, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Temperature: openai.Float(0),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
	})
	if err != nil {
		c.log.Warn("llm call failed", "error", err)
		metrics.Errors.WithLabelValues("llm", "call").Inc()
		return "", ResultFailed
	}
	if len(completion.Choices) == 0 {
		return "", ResultEmpty
	}
	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	if content == "" {
		return "", ResultEmpty
	}
	return content, ResultOk
}

// ClassifyIntent asks the model to pick exactly one label from the candidate
// set. The reply must be a JSON object {"intent": "<label>"}; anything that
// fails strict decoding counts as an empty result.
func (c *Client) ClassifyIntent(ctx context.Context, transcript string, labels map[dialogue.Intent][]string) (dialogue.Intent, ResultKind) {
	start := time.Now()
	content, kind := c.complete(ctx, IntentClassificationPrompt(labels), transcript)
	metrics.StageDuration.WithLabelValues("llm").Observe(time.Since(start).Seconds())
	if kind != ResultOk {
		metrics.LLMCalls.WithLabelValues("intent", outcome(kind)).Inc()
		return dialogue.IntentNone, kind
	}

	var parsed struct {
		Intent string `json:"intent"`
	}
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &parsed); err != nil {
		c.log.Warn("llm intent decode failed", "content", content, "error", err)
		metrics.LLMCalls.WithLabelValues("intent", "empty").Inc()
		return dialogue.IntentNone, ResultEmpty
	}

	intent := dialogue.Intent(parsed.Intent)
	if _, ok := labels[intent]; !ok {
		metrics.LLMCalls.WithLabelValues("intent", "empty").Inc()
		return dialogue.IntentNone, ResultEmpty
	}
	metrics.LLMCalls.WithLabelValues("intent", "ok").Inc()
	return intent, ResultOk
}

// AnswerFAQ answers a store question from the knowledge list. An empty reply
// means the question is outside the list.
func (c *Client) AnswerFAQ(ctx context.Context, question string) (string, ResultKind) {
	start := time.Now()
	answer, kind := c.complete(ctx, FAQPrompt, question)
	metrics.StageDuration.WithLabelValues("llm").Observe(time.Since(start).Seconds())
	metrics.LLMCalls.WithLabelValues("faq", outcome(kind)).Inc()
	return answer, kind
}

func outcome(kind ResultKind) string {
	switch kind {
	case ResultOk:
		return "ok"
	case ResultEmpty:
		return "empty"
	default:
		return "failed"
	}
}

// stripCodeFence unwraps ```json fenced replies some models insist on.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
