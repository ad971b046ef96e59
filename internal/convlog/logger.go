package convlog

import (
	"log/slog"
	"time"

	"github.com/kaiwa-ai/reserve-gateway/internal/dialogue"
)

// eventChannelBuffer is how many events can queue before the background
// drain goroutine writes them to the store.
const eventChannelBuffer = 64

// Logger appends conversation events asynchronously via a buffered channel.
// Store failures are logged and never block the dialogue. All methods are
// nil-safe (no-op on nil receiver).
type Logger struct {
	store          *Store
	conversationID string
	ch             chan Event
	done           chan struct{}
	seq            int
	log            *slog.Logger
}

// NewLogger creates a logger bound to one conversation. Callers MUST call
// Close when the session ends to flush pending writes.
func NewLogger(store *Store, conversationID, storagePath string, startedAt time.Time, log *slog.Logger) *Logger {
	if store == nil {
		return nil
	}
	if log == nil {
		log = slog.Default()
	}
	if err := store.CreateConversation(conversationID, storagePath, startedAt); err != nil {
		log.Warn("convlog create failed", "error", err)
	}
	l := &Logger{
		store:          store,
		conversationID: conversationID,
		ch:             make(chan Event, eventChannelBuffer),
		done:           make(chan struct{}),
		log:            log,
	}
	go l.drain()
	return l
}

func (l *Logger) drain() {
	defer close(l.done)
	for ev := range l.ch {
		if err := l.store.AppendEvent(l.conversationID, ev); err != nil {
			l.log.Warn("convlog write failed", "seq", ev.Seq, "error", err)
		}
	}
}

// Bot records a bot utterance.
func (l *Logger) Bot(message string, snap *dialogue.Snapshot) {
	l.append("bot", message, snap)
}

// Customer records a caller utterance with the tracker snapshot after the turn.
func (l *Logger) Customer(message string, snap *dialogue.Snapshot) {
	l.append("customer", message, snap)
}

func (l *Logger) append(speaker, message string, snap *dialogue.Snapshot) {
	if l == nil {
		return
	}
	l.seq++
	ev := Event{
		Seq:     l.seq,
		TS:      time.Now(),
		Speaker: speaker,
		Message: message,
	}
	if snap != nil {
		ev.Intent = snap.Intent
		ev.DialogueState = snap.DialogueState
		ev.Snapshot = snap
	}
	select {
	case l.ch <- ev:
	default:
		l.log.Warn("convlog buffer full, dropping event", "seq", ev.Seq)
	}
}

// Close flushes pending writes and stamps the conversation as ended.
func (l *Logger) Close() {
	if l == nil {
		return
	}
	close(l.ch)
	<-l.done
	if err := l.store.EndConversation(l.conversationID); err != nil {
		l.log.Warn("convlog end failed", "error", err)
	}
}
