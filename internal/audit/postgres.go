package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS plan_audit_log (
	id          UUID PRIMARY KEY,
	action      TEXT NOT NULL,
	severity    TEXT NOT NULL,
	week_index  INTEGER,
	changes     JSONB,
	sink        TEXT,
	revision    TEXT,
	ip_address  TEXT,
	user_agent  TEXT,
	reason      TEXT,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS plan_audit_log_created_at_idx ON plan_audit_log (created_at DESC);
`

const selectColumns = `id::text, action, severity, week_index, changes, sink, revision, ip_address, user_agent, reason, created_at`

// PostgresStore keeps entries in the plan_audit_log table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore returns a store using pool. Call Migrate once before use.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the audit table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate audit log: %w", err)
	}
	return nil
}

// Record implements Store.
func (s *PostgresStore) Record(ctx context.Context, p Params) (*Entry, error) {
	e := newEntry(ctx, p, time.Now())

	var changesJSON []byte
	if len(e.Changes) > 0 {
		var err error
		changesJSON, err = json.Marshal(e.Changes)
		if err != nil {
			return nil, fmt.Errorf("encode changes: %w", err)
		}
	}

	err := s.pool.QueryRow(ctx, `
		INSERT INTO plan_audit_log
			(id, action, severity, week_index, changes, sink, revision, ip_address, user_agent, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at`,
		e.ID, string(e.Action), string(e.Severity), toPgInt4(e.WeekIndex), changesJSON,
		toPgText(e.Sink), toPgText(e.Revision), toPgText(e.IPAddress), toPgText(e.UserAgent), toPgText(e.Reason),
	).Scan(&e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert audit entry: %w", err)
	}
	return &e, nil
}

// List implements Store.
func (s *PostgresStore) List(ctx context.Context, f Filter) ([]Entry, error) {
	var (
		conditions []string
		args       []any
	)
	if f.Action != "" {
		args = append(args, string(f.Action))
		conditions = append(conditions, fmt.Sprintf("action = $%d", len(args)))
	}
	if !f.Since.IsZero() {
		args = append(args, f.Since)
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	args = append(args, f.limit())

	query := "SELECT " + selectColumns + " FROM plan_audit_log"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}

	entries, err := pgx.CollectRows(rows, scanEntry)
	if err != nil {
		return nil, fmt.Errorf("scan audit log: %w", err)
	}
	return entries, nil
}

// Prune implements Store.
func (s *PostgresStore) Prune(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, "DELETE FROM plan_audit_log WHERE created_at < $1", before)
	if err != nil {
		return 0, fmt.Errorf("prune audit log: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanEntry(row pgx.CollectableRow) (Entry, error) {
	var (
		e                                            Entry
		action, severity                             string
		weekIndex                                    pgtype.Int4
		changes                                      []byte
		sink, revision, ipAddress, userAgent, reason pgtype.Text
	)
	err := row.Scan(&e.ID, &action, &severity, &weekIndex, &changes,
		&sink, &revision, &ipAddress, &userAgent, &reason, &e.CreatedAt)
	if err != nil {
		return Entry{}, err
	}

	e.Action = Action(action)
	e.Severity = Severity(severity)
	if weekIndex.Valid {
		idx := int(weekIndex.Int32)
		e.WeekIndex = &idx
	}
	if len(changes) > 0 {
		if err := json.Unmarshal(changes, &e.Changes); err != nil {
			return Entry{}, fmt.Errorf("decode changes: %w", err)
		}
	}
	e.Sink = sink.String
	e.Revision = revision.String
	e.IPAddress = ipAddress.String
	e.UserAgent = userAgent.String
	e.Reason = reason.String
	e.CreatedAt = e.CreatedAt.UTC()
	return e, nil
}

// Helper functions for type conversion

func toPgText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

func toPgInt4(i *int) pgtype.Int4 {
	if i == nil {
		return pgtype.Int4{Valid: false}
	}
	return pgtype.Int4{Int32: int32(*i), Valid: true}
}
