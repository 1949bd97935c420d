package store

import (
	"context"
	_ "embed"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agrachev/github-events-stats/internal/models"
)

// schemaSQL is embedded so the service can self-bootstrap its database schema.
//
//go:embed schema.sql
var schemaSQL string

// PostgresStore is the durable persistence layer for repository events.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a connection pool and fails fast if DB is unreachable.
func NewPostgresStore(dbURL string) (*PostgresStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

// EnsureSchema applies schema.sql. Safe to run multiple times.
func (p *PostgresStore) EnsureSchema() error {
	_, err := p.pool.Exec(context.Background(), schemaSQL)
	return err
}

// Ping is used by readiness and the /update gate to validate DB connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close shuts down the connection pool.
func (p *PostgresStore) Close() {
	p.pool.Close()
}

// UpsertEvent persists an event and returns inserted=false when the id is
// already present. The existing row is left untouched on conflict, which makes
// duplicate upserts benign and safe under concurrency.
func (p *PostgresStore) UpsertEvent(ctx context.Context, ev models.Event) (bool, error) {
	if ev.EventID == "" || ev.Repo == "" || ev.Type == "" {
		return false, errors.New("event id/repo/type required")
	}

	payload := ev.Payload
	if len(payload) == 0 {
		payload = []byte("{}")
	}

	// RETURNING 1 only when inserted; duplicates return no rows.
	var one int
	err := p.pool.QueryRow(ctx, `
		INSERT INTO events(event_id, repo, type, occurred_at, payload)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (event_id) DO NOTHING
		RETURNING 1
	`, ev.EventID, ev.Repo, ev.Type, ev.OccurredAt, payload).Scan(&one)

	if err == nil {
		return true, nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	return false, err
}

// ListByRepoAndType returns the stored events for (repo, type) sorted
// ascending by occurred_at, ties broken by event_id so the order is
// deterministic.
func (p *PostgresStore) ListByRepoAndType(ctx context.Context, repo, typ string) ([]models.Event, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT event_id, repo, type, occurred_at, payload
		FROM events
		WHERE repo=$1 AND type=$2
		ORDER BY occurred_at ASC, event_id ASC
	`, repo, typ)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var ev models.Event
		if err := rows.Scan(&ev.EventID, &ev.Repo, &ev.Type, &ev.OccurredAt, &ev.Payload); err != nil {
			return nil, err
		}
		ev.OccurredAt = ev.OccurredAt.UTC()
		events = append(events, ev)
	}
	return events, rows.Err()
}

// ListTypes returns the distinct event types observed for repo, sorted.
func (p *PostgresStore) ListTypes(ctx context.Context, repo string) ([]string, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT DISTINCT type FROM events WHERE repo=$1 ORDER BY type
	`, repo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}
