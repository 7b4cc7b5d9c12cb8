// Package event implements the append-only event log repository using
// PostgreSQL. Events are never updated or deleted.
package event

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"

	postgres "github.com/snappword/snappword-backend/internal/adapter/postgres"
	"github.com/snappword/snappword-backend/internal/domain"
)

// Repo provides event log persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new event repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const insertSQL = `
INSERT INTO events (id, user_id, type, latency_ms, token_count, payload, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

const countSinceSQL = `
SELECT count(*) FROM events
WHERE user_id = $1 AND type = $2 AND created_at >= $3`

const countTypeSinceSQL = `
SELECT count(*) FROM events
WHERE type = $1 AND created_at >= $2`

const listRecentSQL = `
SELECT id, user_id, type, latency_ms, token_count, payload, created_at
FROM events
ORDER BY id DESC
LIMIT $1`

const countByTypeSinceSQL = `
SELECT type, count(*) FROM events
WHERE created_at >= $1
GROUP BY type`

// Insert appends an event. The ID (a ULID) and CreatedAt are assigned here;
// the stored event is returned.
func (r *Repo) Insert(ctx context.Context, e domain.Event) (domain.Event, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	e.ID = ulid.Make().String()
	e.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)

	_, err := querier.Exec(ctx, insertSQL,
		e.ID, e.UserID, string(e.Type), e.LatencyMs, e.TokenCount, e.Payload, e.CreatedAt,
	)
	if err != nil {
		return domain.Event{}, postgres.MapError(err, "event", uuid.Nil)
	}

	return e, nil
}

// CountSince returns how many events of the given type the user produced at
// or after the given instant. Quota windows are counted with this.
func (r *Repo) CountSince(ctx context.Context, userID uuid.UUID, typ domain.EventType, since time.Time) (int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var count int
	if err := querier.QueryRow(ctx, countSinceSQL, userID, string(typ), since).Scan(&count); err != nil {
		return 0, fmt.Errorf("count events since: %w", err)
	}

	return count, nil
}

// CountTypeSince returns how many events of the given type exist across all
// users at or after the given instant.
func (r *Repo) CountTypeSince(ctx context.Context, typ domain.EventType, since time.Time) (int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var count int
	if err := querier.QueryRow(ctx, countTypeSinceSQL, string(typ), since).Scan(&count); err != nil {
		return 0, fmt.Errorf("count type events since: %w", err)
	}

	return count, nil
}

// CountByTypeSince returns per-type event counts at or after the given instant.
func (r *Repo) CountByTypeSince(ctx context.Context, since time.Time) (map[domain.EventType]int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, countByTypeSinceSQL, since)
	if err != nil {
		return nil, fmt.Errorf("count events by type: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.EventType]int)
	for rows.Next() {
		var typ string
		var n int
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, fmt.Errorf("scan event type count: %w", err)
		}
		counts[domain.EventType(typ)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event type counts: %w", err)
	}

	return counts, nil
}

// ListRecent returns the newest events. ULIDs sort by creation time, so
// ordering by id descending is newest-first.
func (r *Repo) ListRecent(ctx context.Context, limit int) ([]domain.Event, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listRecentSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var e domain.Event
		var typ string
		if err := rows.Scan(&e.ID, &e.UserID, &typ, &e.LatencyMs, &e.TokenCount, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Type = domain.EventType(typ)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	if events == nil {
		events = []domain.Event{}
	}

	return events, nil
}
