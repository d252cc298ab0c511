package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s := &PostgresStore{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	// Advisory locks belong to a connection, so lock, DDL and unlock share one.
	const lockID = 724113

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to get migration connection: %w", err)
	}
	defer conn.Close()

	// Blocks while another replica migrates; the IF NOT EXISTS DDL below is then a no-op.
	if _, err := conn.ExecContext(ctx, `SELECT pg_advisory_lock($1)`, lockID); err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}
	defer func() {
		_, _ = conn.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, lockID)
	}()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS rewrites (
			id UUID PRIMARY KEY,
			session_id UUID NOT NULL,
			original TEXT NOT NULL,
			humanized TEXT NOT NULL,
			model TEXT NOT NULL,
			input_words INT NOT NULL,
			output_words INT NOT NULL,
			em_dashes INT NOT NULL,
			banned_phrases TEXT[] NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS rewrites_session_idx ON rewrites (session_id, created_at DESC);`,
	}
	for _, stmt := range stmts {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) SaveRewrite(ctx context.Context, rw Rewrite) (Rewrite, error) {
	rw = prepare(rw)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rewrites(id, session_id, original, humanized, model, input_words, output_words, em_dashes, banned_phrases, created_at)
		VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		rw.ID, rw.SessionID, rw.Original, rw.Humanized, rw.Model,
		rw.Stats.InputWords, rw.Stats.OutputWords, rw.Stats.EmDashes, pq.Array(rw.Stats.BannedPhrases), rw.CreatedAt)
	if err != nil {
		return Rewrite{}, fmt.Errorf("insert rewrite: %w", err)
	}
	return rw, nil
}

const selectRewrite = `SELECT id, session_id, original, humanized, model, input_words, output_words, em_dashes, banned_phrases, created_at FROM rewrites`

type scanner interface {
	Scan(dest ...any) error
}

func scanRewrite(row scanner) (Rewrite, error) {
	var rw Rewrite
	banned := []string{}
	err := row.Scan(&rw.ID, &rw.SessionID, &rw.Original, &rw.Humanized, &rw.Model,
		&rw.Stats.InputWords, &rw.Stats.OutputWords, &rw.Stats.EmDashes, pq.Array(&banned), &rw.CreatedAt)
	rw.Stats.BannedPhrases = banned
	return rw, err
}

func (s *PostgresStore) GetRewrite(ctx context.Context, id uuid.UUID) (Rewrite, error) {
	rw, err := scanRewrite(s.db.QueryRowContext(ctx, selectRewrite+` WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Rewrite{}, ErrRewriteNotFound
		}
		return Rewrite{}, fmt.Errorf("failed to get rewrite %s: %w", id, err)
	}
	return rw, nil
}

func (s *PostgresStore) ListRewrites(ctx context.Context, sessionID uuid.UUID) ([]Rewrite, error) {
	rows, err := s.db.QueryContext(ctx, selectRewrite+` WHERE session_id=$1 ORDER BY created_at DESC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Rewrite{}
	for rows.Next() {
		rw, err := scanRewrite(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rw)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
