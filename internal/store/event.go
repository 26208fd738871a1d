package store

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Event is one recorded interaction: a recognized gesture, a grab, a
// layout change. Hand and Subject are empty when they do not apply.
type Event struct {
	ID        int64           `json:"id"`
	Kind      string          `json:"kind"`
	Hand      string          `json:"hand"`
	Subject   string          `json:"subject"`
	Detail    json.RawMessage `json:"detail"`
	CreatedAt time.Time       `json:"createdAt"`
}

// EventRepository records and queries the interaction history.
type EventRepository struct {
	db *sql.DB
}

// Events returns the event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Append records an event.
func (r *EventRepository) Append(e *Event) error {
	e.CreatedAt = time.Now()

	detail := e.Detail
	if detail == nil {
		detail = json.RawMessage("{}")
	}

	result, err := r.db.Exec(
		`INSERT INTO events (kind, hand, subject, detail, created_at) VALUES (?, ?, ?, ?, ?)`,
		e.Kind, e.Hand, e.Subject, string(detail), e.CreatedAt,
	)
	if err != nil {
		return err
	}

	e.ID, err = result.LastInsertId()
	return err
}

// Recent retrieves the latest events, newest first.
func (r *EventRepository) Recent(limit int) ([]Event, error) {
	rows, err := r.db.Query(
		`SELECT id, kind, hand, subject, detail, created_at
		 FROM events ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var detail string
		if err := rows.Scan(&e.ID, &e.Kind, &e.Hand, &e.Subject, &detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Detail = json.RawMessage(detail)
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

// Prune deletes all but the newest keep events, bounding the table for a
// long-running installation.
func (r *EventRepository) Prune(keep int) error {
	_, err := r.db.Exec(
		`DELETE FROM events WHERE id NOT IN (SELECT id FROM events ORDER BY id DESC LIMIT ?)`,
		keep,
	)
	return err
}
