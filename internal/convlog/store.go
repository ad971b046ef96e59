package convlog

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver

	"github.com/kaiwa-ai/reserve-gateway/internal/dialogue"
)

// Event is one conversation record. Events are ordered by Seq within a
// conversation.
type Event struct {
	Seq           int
	TS            time.Time
	Speaker       string // bot or customer
	Message       string
	Intent        dialogue.Intent
	DialogueState dialogue.State
	Snapshot      *dialogue.Snapshot
}

// Store persists conversation events to PostgreSQL. All writes are
// best-effort; the dialogue never blocks on the store.
type Store struct {
	db *sql.DB
}

// Open connects to the conversation log database at connStr.
func Open(connStr string) (*Store, error) {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("convlog open: %w", err)
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("convlog ping: %w", err)
	}
	if err = migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("convlog migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS conversations (
			id           TEXT PRIMARY KEY,
			storage_path TEXT NOT NULL,
			started_at   TIMESTAMPTZ NOT NULL,
			ended_at     TIMESTAMPTZ
		);
		CREATE TABLE IF NOT EXISTS conversation_events (
			conversation_id TEXT NOT NULL REFERENCES conversations(id),
			seq             INTEGER NOT NULL,
			ts              TIMESTAMPTZ NOT NULL,
			speaker         TEXT NOT NULL,
			message         TEXT NOT NULL,
			intent          TEXT NOT NULL,
			dialogue_state  TEXT NOT NULL,
			snapshot        TEXT,
			PRIMARY KEY (conversation_id, seq)
		)`)
	return err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateConversation inserts the conversation document.
func (s *Store) CreateConversation(id, storagePath string, startedAt time.Time) error {
	_, err := s.db.Exec(
		`INSERT INTO conversations (id, storage_path, started_at) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO NOTHING`,
		id, storagePath, startedAt.UTC(),
	)
	return err
}

// EndConversation stamps the conversation as finished.
func (s *Store) EndConversation(id string) error {
	_, err := s.db.Exec(
		`UPDATE conversations SET ended_at = $1 WHERE id = $2`,
		time.Now().UTC(), id,
	)
	return err
}

// AppendEvent writes one event record.
func (s *Store) AppendEvent(conversationID string, ev Event) error {
	var snapshot any
	if ev.Snapshot != nil {
		data, err := json.Marshal(ev.Snapshot)
		if err != nil {
			return fmt.Errorf("encode snapshot: %w", err)
		}
		snapshot = string(data)
	}
	_, err := s.db.Exec(
		`INSERT INTO conversation_events
		 (conversation_id, seq, ts, speaker, message, intent, dialogue_state, snapshot)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		conversationID, ev.Seq, ev.TS.UTC(), ev.Speaker, ev.Message,
		string(ev.Intent), string(ev.DialogueState), snapshot,
	)
	return err
}

// ListEvents returns a conversation's events in order.
func (s *Store) ListEvents(conversationID string) ([]Event, error) {
	rows, err := s.db.Query(
		`SELECT seq, ts, speaker, message, intent, dialogue_state, snapshot
		 FROM conversation_events WHERE conversation_id = $1 ORDER BY seq`,
		conversationID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var ev Event
		var intent, state string
		var snapshot sql.NullString
		if err = rows.Scan(&ev.Seq, &ev.TS, &ev.Speaker, &ev.Message, &intent, &state, &snapshot); err != nil {
			return nil, err
		}
		ev.Intent = dialogue.Intent(intent)
		ev.DialogueState = dialogue.State(state)
		if snapshot.Valid {
			var snap dialogue.Snapshot
			if json.Unmarshal([]byte(snapshot.String), &snap) == nil {
				ev.Snapshot = &snap
			}
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
