package asr

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/kaiwa-ai/reserve-gateway/internal/metrics"
)

// Update is the observable transcript triplet reported by the vendor.
type Update struct {
	Transcript string
	IsFinal    bool
	Stability  float64
}

// StreamConfig is the recognition stream setup.
type StreamConfig struct {
	LanguageCode   string // ja-JP
	SampleRate     int    // 8000, μ-law
	Model          string // long-form
	InterimResults bool
}

// Stream is one open vendor recognition stream.
type Stream interface {
	// Send pushes μ-law audio bytes to the vendor.
	Send(audio []byte) error
	// Recv blocks for the next transcript update. io.EOF ends the stream.
	Recv() (Update, error)
	Close() error
}

// Vendor opens recognition streams. Implementations live outside the core;
// this package owns only the streaming contract.
type Vendor interface {
	Open(ctx context.Context, cfg StreamConfig) (Stream, error)
}

// TransientError wraps vendor failures worth retrying (timeout, out-of-range,
// canceled RPC).
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return "asr transient: " + e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// IsTransient reports whether err is a retryable vendor failure.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// Config controls one client's retry and termination policy.
type Config struct {
	Stream             StreamConfig
	StabilityThreshold float64       // terminal when stability reaches this; default 0.85
	MaxRetries         int           // default 3
	RetryInterval      time.Duration // default 5s
	Deadline           time.Duration // per-call deadline; 0 disables
}

func (c Config) withDefaults() Config {
	if c.StabilityThreshold <= 0 {
		c.StabilityThreshold = 0.85
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.RetryInterval <= 0 {
		c.RetryInterval = 5 * time.Second
	}
	return c
}

// Client feeds audio to a vendor stream and exposes the latest transcript
// snapshot. The session constructs a fresh client per user turn.
type Client struct {
	vendor     Vendor
	cfg        Config
	suppressed func() bool // transcripts observed while true are discarded

	audio chan []byte
	done  chan struct{}
	log   *slog.Logger

	mu     sync.Mutex
	update Update
	ended  bool
	failed bool
}

// NewClient creates a client. suppressed gates transcript intake: while it
// returns true the caller is hearing bot audio and updates are echo.
func NewClient(vendor Vendor, cfg Config, suppressed func() bool, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	if suppressed == nil {
		suppressed = func() bool { return false }
	}
	return &Client{
		vendor:     vendor,
		cfg:        cfg.withDefaults(),
		suppressed: suppressed,
		audio:      make(chan []byte, 256),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Start launches the stream worker. It returns immediately.
func (c *Client) Start(ctx context.Context) {
	go c.run(ctx)
}

func (c *Client) run(ctx context.Context) {
	defer close(c.done)

	if c.cfg.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Deadline)
		defer cancel()
	}
	// Reaching the per-call deadline ends the stream like a vendor close, so
	// the session closes the turn and starts a fresh client.
	defer func() {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			c.markEnded()
		}
	}()

	retries := 0
	for {
		err := c.runStream(ctx)
		if err == nil || ctx.Err() != nil {
			return
		}
		if !IsTransient(err) || retries >= c.cfg.MaxRetries {
			c.log.Error("asr stream failed", "error", err, "retries", retries)
			metrics.Errors.WithLabelValues("asr", "fatal").Inc()
			c.markFailed()
			return
		}
		retries++
		c.log.Warn("asr stream error, retrying", "error", err, "attempt", retries)
		metrics.Errors.WithLabelValues("asr", "transient").Inc()
		select {
		case <-time.After(c.cfg.RetryInterval):
		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) runStream(ctx context.Context) error {
	stream, err := c.vendor.Open(ctx, c.cfg.Stream)
	if err != nil {
		return err
	}
	defer stream.Close()

	feedCtx, stopFeed := context.WithCancel(ctx)
	defer stopFeed()
	go c.feed(feedCtx, stream)

	for {
		update, err := stream.Recv()
		if err == io.EOF {
			c.markEnded()
			return nil
		}
		if err != nil {
			return err
		}
		if c.suppressed() {
			continue
		}
		c.store(update)
		if update.Stability >= c.cfg.StabilityThreshold {
			c.markEnded()
			return nil
		}
	}
}

func (c *Client) feed(ctx context.Context, stream Stream) {
	for {
		select {
		case data, ok := <-c.audio:
			if !ok {
				return
			}
			if err := stream.Send(data); err != nil {
				c.log.Warn("asr send failed", "error", err)
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// Push enqueues μ-law audio for the vendor. Frames are dropped when the
// stream has fallen too far behind; the vendor resynchronizes on silence.
func (c *Client) Push(data []byte) {
	select {
	case c.audio <- data:
	default:
		metrics.Errors.WithLabelValues("asr", "backpressure").Inc()
	}
}

// Snapshot returns the latest transcript triplet.
func (c *Client) Snapshot() Update {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.update
}

// Ended reports whether the stream terminated (stability threshold reached,
// vendor closed, per-call deadline passed, or retries exhausted).
func (c *Client) Ended() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ended
}

// Failed reports whether the vendor exhausted all retries.
func (c *Client) Failed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failed
}

// Reset discards the current transcript; used when a turn is thrown away.
func (c *Client) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.update = Update{}
}

// Terminate stops the audio feed. The stream worker drains and exits.
func (c *Client) Terminate() {
	defer func() { recover() }() // tolerate double close on shutdown races
	close(c.audio)
}

// Done is closed when the stream worker has exited.
func (c *Client) Done() <-chan struct{} { return c.done }

func (c *Client) store(update Update) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.update = update
}

func (c *Client) markEnded() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ended = true
}

func (c *Client) markFailed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ended = true
	c.failed = true
}
