package widgetconfig

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps each project's config as a JSON document in
// widget_configs.
type PostgresStore struct {
	db  db
	now func() time.Time
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("widgetconfig: pgx pool required")
	}
	return newPostgresStoreWithDB(pool)
}

func newPostgresStoreWithDB(d db) *PostgresStore {
	return &PostgresStore{db: d, now: func() time.Time { return time.Now().UTC() }}
}

func (s *PostgresStore) Get(ctx context.Context, projectID string) (*Config, error) {
	if projectID == "" {
		return nil, ErrMissingProject
	}
	cfg, err := s.load(ctx, projectID)
	if err != nil || cfg != nil {
		return cfg, err
	}
	cfg = Default(projectID, s.now())
	if err := s.save(ctx, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, projectID string, update Update) (*Config, error) {
	if projectID == "" {
		return nil, ErrMissingProject
	}
	cfg, err := s.load(ctx, projectID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if cfg == nil {
		cfg = Default(projectID, now)
	}
	cfg.Apply(update)
	cfg.ProjectID = projectID
	cfg.UpdatedAt = now
	if err := s.save(ctx, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (s *PostgresStore) load(ctx context.Context, projectID string) (*Config, error) {
	var data []byte
	err := s.db.QueryRow(ctx, `SELECT data FROM widget_configs WHERE project_id = $1`, projectID).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("widgetconfig: load %s: %w", projectID, err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("widgetconfig: decode %s: %w", projectID, err)
	}
	return &cfg, nil
}

func (s *PostgresStore) save(ctx context.Context, cfg *Config) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("widgetconfig: encode %s: %w", cfg.ProjectID, err)
	}
	query := `
		INSERT INTO widget_configs (project_id, data, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (project_id) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at
	`
	if _, err := s.db.Exec(ctx, query, cfg.ProjectID, data, cfg.UpdatedAt); err != nil {
		return fmt.Errorf("widgetconfig: save %s: %w", cfg.ProjectID, err)
	}
	return nil
}
