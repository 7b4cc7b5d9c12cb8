// Package wordlist implements the word list repository using PostgreSQL.
package wordlist

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/snappword/snappword-backend/internal/adapter/postgres"
	"github.com/snappword/snappword-backend/internal/domain"
)

// Repo provides word list persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new word list repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const insertSQL = `
INSERT INTO word_lists (id, user_id, name, created_at, updated_at)
VALUES ($1, $2, $3, $4, $4)`

const getByIDSQL = `
SELECT l.id, l.user_id, l.name, count(c.card_id), l.created_at, l.updated_at
FROM word_lists l
LEFT JOIN word_list_cards c ON c.list_id = l.id
WHERE l.id = $1 AND l.user_id = $2
GROUP BY l.id`

const listByUserSQL = `
SELECT l.id, l.user_id, l.name, count(c.card_id), l.created_at, l.updated_at
FROM word_lists l
LEFT JOIN word_list_cards c ON c.list_id = l.id
WHERE l.user_id = $1
GROUP BY l.id
ORDER BY l.created_at ASC`

const renameSQL = `
UPDATE word_lists SET name = $3, updated_at = now()
WHERE id = $1 AND user_id = $2`

const deleteSQL = `
DELETE FROM word_lists WHERE id = $1 AND user_id = $2`

const addCardSQL = `
INSERT INTO word_list_cards (list_id, card_id, added_at)
VALUES ($1, $2, $3)
ON CONFLICT (list_id, card_id) DO NOTHING`

const removeCardSQL = `
DELETE FROM word_list_cards WHERE list_id = $1 AND card_id = $2`

const listCardIDsSQL = `
SELECT card_id FROM word_list_cards WHERE list_id = $1 ORDER BY added_at ASC`

// Create inserts a new empty word list.
// A duplicate name for the same user results in domain.ErrAlreadyExists.
func (r *Repo) Create(ctx context.Context, userID uuid.UUID, name string) (domain.WordList, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	now := time.Now().UTC().Truncate(time.Microsecond)
	list := domain.WordList{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := querier.Exec(ctx, insertSQL, list.ID, list.UserID, list.Name, now); err != nil {
		return domain.WordList{}, postgres.MapError(err, "word_list", list.ID)
	}

	return list, nil
}

// GetByID returns a word list with its card count, filtered by user_id.
func (r *Repo) GetByID(ctx context.Context, userID, listID uuid.UUID) (domain.WordList, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var list domain.WordList
	err := querier.QueryRow(ctx, getByIDSQL, listID, userID).Scan(
		&list.ID, &list.UserID, &list.Name, &list.CardCount, &list.CreatedAt, &list.UpdatedAt,
	)
	if err != nil {
		return domain.WordList{}, postgres.MapError(err, "word_list", listID)
	}

	return list, nil
}

// ListByUser returns the user's word lists with card counts, oldest first.
func (r *Repo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.WordList, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("list word lists: %w", err)
	}
	defer rows.Close()

	var lists []domain.WordList
	for rows.Next() {
		var list domain.WordList
		if err := rows.Scan(&list.ID, &list.UserID, &list.Name, &list.CardCount, &list.CreatedAt, &list.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan word list: %w", err)
		}
		lists = append(lists, list)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate word lists: %w", err)
	}

	if lists == nil {
		lists = []domain.WordList{}
	}

	return lists, nil
}

// Rename changes the list name.
// Returns domain.ErrNotFound if the list does not exist or belongs to another user.
func (r *Repo) Rename(ctx context.Context, userID, listID uuid.UUID, name string) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, renameSQL, listID, userID, name)
	if err != nil {
		return postgres.MapError(err, "word_list", listID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("word_list %s: %w", listID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes the list and its card memberships. Cards themselves survive.
func (r *Repo) Delete(ctx context.Context, userID, listID uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, deleteSQL, listID, userID)
	if err != nil {
		return postgres.MapError(err, "word_list", listID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("word_list %s: %w", listID, domain.ErrNotFound)
	}

	return nil
}

// AddCard adds a card to the list. Adding a card twice is a no-op.
// A card from another user fails the foreign key path at the service layer,
// which verifies ownership before calling this.
func (r *Repo) AddCard(ctx context.Context, listID, cardID uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	now := time.Now().UTC().Truncate(time.Microsecond)
	if _, err := querier.Exec(ctx, addCardSQL, listID, cardID, now); err != nil {
		return postgres.MapError(err, "word_list_card", cardID)
	}

	return nil
}

// RemoveCard removes a card from the list. Removing an absent card is a no-op.
func (r *Repo) RemoveCard(ctx context.Context, listID, cardID uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	if _, err := querier.Exec(ctx, removeCardSQL, listID, cardID); err != nil {
		return postgres.MapError(err, "word_list_card", cardID)
	}

	return nil
}

// ListCardIDs returns the IDs of the cards in the list, in insertion order.
func (r *Repo) ListCardIDs(ctx context.Context, listID uuid.UUID) ([]uuid.UUID, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listCardIDsSQL, listID)
	if err != nil {
		return nil, fmt.Errorf("list word list cards: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan card id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate card ids: %w", err)
	}

	if ids == nil {
		ids = []uuid.UUID{}
	}

	return ids, nil
}
