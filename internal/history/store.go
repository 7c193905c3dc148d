package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/avencall/homegrid-core/internal/infrastructure/database"
)

// Category classifies a recorded event by the entity it concerns.
type Category string

// Event categories.
const (
	CategorySensor     Category = "sensor"
	CategoryEquipment  Category = "equipment"
	CategoryGrid       Category = "grid"
	CategoryRule       Category = "rule"
	CategoryPosition   Category = "position"
	CategoryAutomation Category = "automation"
)

// Event is one observed state change, kept locally so the house timeline
// survives backend restarts and realtime gaps.
type Event struct {
	ID         int64           `json:"id"`
	OccurredAt time.Time       `json:"occurred_at"`
	HouseID    int             `json:"house_id"`
	Category   Category        `json:"category"`
	RefID      int             `json:"ref_id,omitempty"`
	Summary    string          `json:"summary"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// Store persists events in the agent's SQLite database.
type Store struct {
	db *database.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	occurred_at TEXT NOT NULL,
	house_id    INTEGER NOT NULL,
	category    TEXT NOT NULL,
	ref_id      INTEGER NOT NULL DEFAULT 0,
	summary     TEXT NOT NULL,
	payload     TEXT
);
CREATE INDEX IF NOT EXISTS idx_events_house_time ON events (house_id, occurred_at DESC);
`

// NewStore prepares the event store, creating its schema when absent.
func NewStore(ctx context.Context, db *database.DB) (*Store, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("creating events schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Record appends one event. A zero OccurredAt is stamped with the current
// time.
func (s *Store) Record(ctx context.Context, ev Event) error {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}

	var payload any
	if len(ev.Payload) > 0 {
		payload = string(ev.Payload)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (occurred_at, house_id, category, ref_id, summary, payload)
		VALUES (?, ?, ?, ?, ?, ?)`,
		ev.OccurredAt.Format(time.RFC3339Nano),
		ev.HouseID,
		string(ev.Category),
		ev.RefID,
		ev.Summary,
		payload,
	)
	if err != nil {
		return fmt.Errorf("recording event: %w", err)
	}
	return nil
}

// Recent returns the newest events of a house, most recent first, capped
// at limit.
func (s *Store) Recent(ctx context.Context, houseID, limit int) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, occurred_at, house_id, category, ref_id, summary, payload
		FROM events
		WHERE house_id = ?
		ORDER BY occurred_at DESC, id DESC
		LIMIT ?`,
		houseID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating events: %w", err)
	}
	return events, nil
}

// ByCategory returns the newest events of one category for a house.
func (s *Store) ByCategory(ctx context.Context, houseID int, cat Category, limit int) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, occurred_at, house_id, category, ref_id, summary, payload
		FROM events
		WHERE house_id = ? AND category = ?
		ORDER BY occurred_at DESC, id DESC
		LIMIT ?`,
		houseID, string(cat), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating events: %w", err)
	}
	return events, nil
}

// Prune deletes events older than the cutoff and reports how many rows
// went away.
func (s *Store) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM events WHERE occurred_at < ?",
		before.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("pruning events: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting pruned events: %w", err)
	}
	return n, nil
}

func scanEvent(rows *sql.Rows) (Event, error) {
	var (
		ev         Event
		occurredAt string
		category   string
		payload    sql.NullString
	)
	if err := rows.Scan(&ev.ID, &occurredAt, &ev.HouseID, &category, &ev.RefID, &ev.Summary, &payload); err != nil {
		return Event{}, fmt.Errorf("scanning event row: %w", err)
	}
	ev.Category = Category(category)
	// Format is controlled by Record.
	ev.OccurredAt, _ = time.Parse(time.RFC3339Nano, occurredAt)
	if payload.Valid {
		ev.Payload = json.RawMessage(payload.String)
	}
	return ev, nil
}
