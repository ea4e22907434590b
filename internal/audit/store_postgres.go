package audit

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// PostgresStore persists audit events in the audit_events table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	var cycleID any
	if event.CycleID != uuid.Nil {
		cycleID = event.CycleID
	}
	var dayNumber any
	if event.DayNumber != 0 {
		dayNumber = event.DayNumber
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_events (id, kind, cycle_id, day_number, code, at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		event.ID, event.Kind, cycleID, dayNumber, event.Code, event.At)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, COALESCE(cycle_id, '00000000-0000-0000-0000-000000000000'),
		        COALESCE(day_number, 0), COALESCE(code, ''), at
		 FROM audit_events ORDER BY at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Kind, &e.CycleID, &e.DayNumber, &e.Code, &e.At); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	return events, nil
}
