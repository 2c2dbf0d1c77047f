package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresStore stores events in the widget_events table.
type PostgresStore struct {
	db db
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("events: pgx pool required")
	}
	return &PostgresStore{db: pool}
}

func newPostgresStoreWithDB(d db) *PostgresStore {
	if d == nil {
		panic("events: db required")
	}
	return &PostgresStore{db: d}
}

func (s *PostgresStore) Record(ctx context.Context, e *Event) error {
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return fmt.Errorf("events: marshal payload: %w", err)
	}
	query := `
		INSERT INTO widget_events (id, type, project_id, microsite, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := s.db.Exec(ctx, query, e.ID, e.Type, e.ProjectID, e.Microsite, payload, e.CreatedAt); err != nil {
		return fmt.Errorf("events: insert event: %w", err)
	}
	return nil
}

func (s *PostgresStore) Summary(ctx context.Context) (Summary, error) {
	query := `
		SELECT type, COUNT(*)
		FROM widget_events
		WHERE type = ANY($1)
		GROUP BY type
	`
	rows, err := s.db.Query(ctx, query, []string{TypeChatShown, TypeChatStarted, TypeLeadSubmitted})
	if err != nil {
		return Summary{}, fmt.Errorf("events: summary: %w", err)
	}
	defer rows.Close()

	var out Summary
	for rows.Next() {
		var eventType string
		var count int64
		if err := rows.Scan(&eventType, &count); err != nil {
			return Summary{}, fmt.Errorf("events: scan summary: %w", err)
		}
		out.add(eventType, int(count))
	}
	return out, rows.Err()
}
