package leads

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores leads and chat sessions in the relational database.
type PostgresRepository struct {
	db db
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("leads: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

func newPostgresRepositoryWithDB(d db) *PostgresRepository {
	if d == nil {
		panic("leads: db required")
	}
	return &PostgresRepository{db: d}
}

const leadColumns = `id, phone, bhk, bhk_type, microsite, lead_source, status, metadata, conversation, created_at, updated_at`

// Create inserts a new row.
func (r *PostgresRepository) Create(ctx context.Context, lead *Lead) error {
	metadata, conv, err := marshalBlobs(lead.Metadata, lead.Conversation)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO leads (` + leadColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	if _, err := r.db.Exec(ctx, query,
		lead.ID,
		lead.Phone,
		lead.BHK,
		lead.BHKType,
		lead.Microsite,
		lead.LeadSource,
		lead.Status,
		metadata,
		conv,
		lead.CreatedAt,
		lead.UpdatedAt,
	); err != nil {
		return fmt.Errorf("leads: insert failed: %w", err)
	}
	return nil
}

// GetByID fetches a lead by primary key.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`
	lead, err := scanLead(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("leads: get lead: %w", err)
	}
	return lead, nil
}

// List returns leads matching filter, newest first.
func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) (Page[*Lead], error) {
	var (
		where []string
		args  []any
	)
	add := func(clause string, arg any) {
		args = append(args, arg)
		where = append(where, strings.ReplaceAll(clause, "?", fmt.Sprintf("$%d", len(args))))
	}
	if filter.Microsite != "" {
		add("microsite = ?", filter.Microsite)
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		add(`(microsite ILIKE ? OR phone ILIKE ? OR metadata->'visitor'->'utm'->>'source' ILIKE ? OR metadata->'visitor'->'utm'->>'campaign' ILIKE ?)`,
			"%"+escapeLike(term)+"%")
	}
	if filter.StartDate != nil {
		add("created_at >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		add("created_at <= ?", *filter.EndDate)
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM leads`+clause, args...).Scan(&total); err != nil {
		return Page[*Lead]{}, fmt.Errorf("leads: count leads: %w", err)
	}

	skip, limit := pageBounds(filter.Skip, filter.Limit)
	query := fmt.Sprintf(`SELECT %s FROM leads%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		leadColumns, clause, len(args)+1, len(args)+2)
	rows, err := r.db.Query(ctx, query, append(args, limit, skip)...)
	if err != nil {
		return Page[*Lead]{}, fmt.Errorf("leads: list leads: %w", err)
	}
	defer rows.Close()

	items := []*Lead{}
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return Page[*Lead]{}, fmt.Errorf("leads: scan lead: %w", err)
		}
		items = append(items, lead)
	}
	if err := rows.Err(); err != nil {
		return Page[*Lead]{}, fmt.Errorf("leads: list leads: %w", err)
	}
	return Page[*Lead]{Items: items, Total: int(total)}, nil
}

const sessionColumns = `id, microsite, project_id, lead_id, phone, bhk_type, conversation, metadata, created_at, updated_at`

func (r *PostgresRepository) CreateSession(ctx context.Context, s *ChatSession) error {
	metadata, conv, err := marshalBlobs(s.Metadata, s.Conversation)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO chat_sessions (` + sessionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	if _, err := r.db.Exec(ctx, query,
		s.ID, s.Microsite, s.ProjectID, s.LeadID, s.Phone, s.BHKType, conv, metadata, s.CreatedAt, s.UpdatedAt,
	); err != nil {
		return fmt.Errorf("leads: insert chat session: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListSessions(ctx context.Context, filter SessionFilter) (Page[*ChatSession], error) {
	var (
		where []string
		args  []any
	)
	if filter.Microsite != "" {
		args = append(args, filter.Microsite)
		where = append(where, fmt.Sprintf("microsite = $%d", len(args)))
	}
	if filter.LeadID != "" {
		args = append(args, filter.LeadID)
		where = append(where, fmt.Sprintf("lead_id = $%d", len(args)))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM chat_sessions`+clause, args...).Scan(&total); err != nil {
		return Page[*ChatSession]{}, fmt.Errorf("leads: count chat sessions: %w", err)
	}

	skip, limit := pageBounds(filter.Skip, filter.Limit)
	query := fmt.Sprintf(`SELECT %s FROM chat_sessions%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		sessionColumns, clause, len(args)+1, len(args)+2)
	rows, err := r.db.Query(ctx, query, append(args, limit, skip)...)
	if err != nil {
		return Page[*ChatSession]{}, fmt.Errorf("leads: list chat sessions: %w", err)
	}
	defer rows.Close()

	items := []*ChatSession{}
	for rows.Next() {
		var (
			s              ChatSession
			conv, metadata []byte
		)
		if err := rows.Scan(&s.ID, &s.Microsite, &s.ProjectID, &s.LeadID, &s.Phone, &s.BHKType, &conv, &metadata, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return Page[*ChatSession]{}, fmt.Errorf("leads: scan chat session: %w", err)
		}
		if err := unmarshalBlobs(metadata, conv, &s.Metadata, &s.Conversation); err != nil {
			return Page[*ChatSession]{}, err
		}
		items = append(items, &s)
	}
	if err := rows.Err(); err != nil {
		return Page[*ChatSession]{}, fmt.Errorf("leads: list chat sessions: %w", err)
	}
	return Page[*ChatSession]{Items: items, Total: int(total)}, nil
}

func scanLead(row pgx.Row) (*Lead, error) {
	var (
		l              Lead
		metadata, conv []byte
	)
	if err := row.Scan(&l.ID, &l.Phone, &l.BHK, &l.BHKType, &l.Microsite, &l.LeadSource, &l.Status, &metadata, &conv, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	if err := unmarshalBlobs(metadata, conv, &l.Metadata, &l.Conversation); err != nil {
		return nil, err
	}
	return &l, nil
}

func marshalBlobs(metadata map[string]any, conv any) ([]byte, []byte, error) {
	if metadata == nil {
		metadata = map[string]any{}
	}
	m, err := json.Marshal(metadata)
	if err != nil {
		return nil, nil, fmt.Errorf("leads: marshal metadata: %w", err)
	}
	c, err := json.Marshal(conv)
	if err != nil {
		return nil, nil, fmt.Errorf("leads: marshal conversation: %w", err)
	}
	return m, c, nil
}

func unmarshalBlobs(metadata, conv []byte, metadataDst, convDst any) error {
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, metadataDst); err != nil {
			return fmt.Errorf("leads: decode metadata: %w", err)
		}
	}
	if len(conv) > 0 {
		if err := json.Unmarshal(conv, convDst); err != nil {
			return fmt.Errorf("leads: decode conversation: %w", err)
		}
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
