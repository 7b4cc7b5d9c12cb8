// Package user implements the user repository using PostgreSQL.
package user

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/snappword/snappword-backend/internal/adapter/postgres"
	"github.com/snappword/snappword-backend/internal/domain"
)

// dateLayout matches domain.User.LastReviewDate.
const dateLayout = "2006-01-02"

// Repo provides user persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new user repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const userColumns = `id, line_user_id, display_name, is_premium, subscription_tier,
       stripe_customer_id, current_streak, longest_streak, last_review_date, created_at`

const getByIDSQL = `
SELECT ` + userColumns + ` FROM users WHERE id = $1`

const getByLineIDSQL = `
SELECT ` + userColumns + ` FROM users WHERE line_user_id = $1`

const getByStripeCustomerSQL = `
SELECT ` + userColumns + ` FROM users WHERE stripe_customer_id = $1`

const insertSQL = `
INSERT INTO users (id, line_user_id, display_name, created_at, updated_at)
VALUES ($1, $2, $3, $4, $4)
ON CONFLICT (line_user_id) DO UPDATE
SET display_name = CASE WHEN EXCLUDED.display_name <> '' THEN EXCLUDED.display_name ELSE users.display_name END,
    updated_at = EXCLUDED.updated_at
RETURNING ` + userColumns

const listSQL = `
SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`

const countSQL = `SELECT count(*) FROM users`

const updateTierSQL = `
UPDATE users SET subscription_tier = $2, updated_at = now() WHERE id = $1`

const updateStripeCustomerSQL = `
UPDATE users SET stripe_customer_id = $2, updated_at = now() WHERE id = $1`

const updateStreakSQL = `
UPDATE users
SET current_streak = $2, longest_streak = $3, last_review_date = $4, updated_at = now()
WHERE id = $1 AND last_review_date IS NOT DISTINCT FROM $5`

// GetByID returns a user by primary key.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	u, err := scanUser(querier.QueryRow(ctx, getByIDSQL, id))
	if err != nil {
		return nil, postgres.MapError(err, "user", id)
	}

	return u, nil
}

// GetByLineID returns a user by LINE user ID.
func (r *Repo) GetByLineID(ctx context.Context, lineUserID string) (*domain.User, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	u, err := scanUser(querier.QueryRow(ctx, getByLineIDSQL, lineUserID))
	if err != nil {
		return nil, postgres.MapError(err, "user", uuid.Nil)
	}

	return u, nil
}

// GetByStripeCustomer returns the user owning the given Stripe customer ID.
func (r *Repo) GetByStripeCustomer(ctx context.Context, customerID string) (*domain.User, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	u, err := scanUser(querier.QueryRow(ctx, getByStripeCustomerSQL, customerID))
	if err != nil {
		return nil, postgres.MapError(err, "user", uuid.Nil)
	}

	return u, nil
}

// GetOrCreate returns the user for the given LINE ID, creating the account on
// first contact. A non-empty display name refreshes the stored one.
func (r *Repo) GetOrCreate(ctx context.Context, lineUserID, displayName string) (*domain.User, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	now := time.Now().UTC().Truncate(time.Microsecond)
	u, err := scanUser(querier.QueryRow(ctx, insertSQL, uuid.New(), lineUserID, displayName, now))
	if err != nil {
		return nil, postgres.MapError(err, "user", uuid.Nil)
	}

	return u, nil
}

// List returns users ordered by creation time, newest first.
func (r *Repo) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listSQL, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	if users == nil {
		users = []domain.User{}
	}

	return users, nil
}

// Count returns the total number of users.
func (r *Repo) Count(ctx context.Context) (int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var count int
	if err := querier.QueryRow(ctx, countSQL).Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}

	return count, nil
}

// UpdateTier sets the user's subscription tier.
func (r *Repo) UpdateTier(ctx context.Context, id uuid.UUID, tier domain.Tier) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, updateTierSQL, id, string(tier))
	if err != nil {
		return postgres.MapError(err, "user", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// UpdateStripeCustomer stores the Stripe customer ID on the user.
func (r *Repo) UpdateStripeCustomer(ctx context.Context, id uuid.UUID, customerID string) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, updateStripeCustomerSQL, id, customerID)
	if err != nil {
		return postgres.MapError(err, "user", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// UpdateStreak writes the new streak counters with a compare-and-swap on
// last_review_date: the update applies only if the stored date still equals
// prevReviewDate (empty string means NULL). Returns false when another
// concurrent review won the race; callers should re-read and retry or give up.
func (r *Repo) UpdateStreak(ctx context.Context, id uuid.UUID, next domain.StreakState, prevReviewDate string) (bool, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	nextDate, err := dateToPg(next.LastReviewDate)
	if err != nil {
		return false, fmt.Errorf("user %s: %w", id, err)
	}
	prevDate, err := dateToPg(prevReviewDate)
	if err != nil {
		return false, fmt.Errorf("user %s: %w", id, err)
	}

	tag, err := querier.Exec(ctx, updateStreakSQL, id, next.Current, next.Longest, nextDate, prevDate)
	if err != nil {
		return false, postgres.MapError(err, "user", id)
	}

	return tag.RowsAffected() > 0, nil
}

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	var tier string
	var stripeCustomer *string
	var lastReview *time.Time
	err := row.Scan(
		&u.ID, &u.LineUserID, &u.DisplayName, &u.IsPremium, &tier,
		&stripeCustomer, &u.CurrentStreak, &u.LongestStreak, &lastReview, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	u.Tier = domain.Tier(tier)
	if stripeCustomer != nil {
		u.StripeCustomer = *stripeCustomer
	}
	if lastReview != nil {
		u.LastReviewDate = lastReview.Format(dateLayout)
	}

	return &u, nil
}

// dateToPg converts a calendar date string to a nullable DATE parameter.
func dateToPg(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("parse review date %q: %w", s, err)
	}
	return &t, nil
}
