// Package card implements the vocab card repository using PostgreSQL.
// Fixed-shape queries use raw SQL constants; the filtered listing is built
// dynamically with squirrel.
package card

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/snappword/snappword-backend/internal/adapter/postgres"
	"github.com/snappword/snappword-backend/internal/domain"
)

// ListFilter narrows the result of List. Zero values mean "no filter".
type ListFilter struct {
	Status     domain.ReviewStatus
	SourceApp  string
	TargetLang string
	Tag        string
	Search     string // matches word or translation, case-insensitive
	Limit      int
	Offset     int
}

// Repo provides vocab card persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new card repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const cardColumns = `id, user_id, word, translation, pronunciation, original_sentence,
       context_trans, ai_example, source_app, target_lang, tags,
       status, next_review_at, created_at, updated_at`

const getByIDSQL = `
SELECT ` + cardColumns + `
FROM vocab_cards
WHERE id = $1 AND user_id = $2`

const getDueSQL = `
SELECT ` + cardColumns + `
FROM vocab_cards
WHERE user_id = $1
  AND (status = 'NEW' OR next_review_at <= $2)
ORDER BY
  CASE WHEN status = 'NEW' THEN 1 ELSE 0 END,
  next_review_at ASC NULLS LAST
LIMIT $3`

const countDueSQL = `
SELECT count(*) FROM vocab_cards
WHERE user_id = $1 AND (status = 'NEW' OR next_review_at <= $2)`

const countByStatusSQL = `
SELECT status, count(*) FROM vocab_cards
WHERE user_id = $1
GROUP BY status`

const listTranslationsSQL = `
SELECT id, translation, target_lang
FROM vocab_cards
WHERE user_id = $1 AND translation <> ''`

const insertSQL = `
INSERT INTO vocab_cards (id, user_id, word, translation, pronunciation, original_sentence,
                         context_trans, ai_example, source_app, target_lang, tags,
                         status, next_review_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

const updateSRSSQL = `
UPDATE vocab_cards
SET status = $3, next_review_at = $4, updated_at = $5
WHERE id = $1 AND user_id = $2`

const deleteSQL = `
DELETE FROM vocab_cards WHERE id = $1 AND user_id = $2`

// GetByID returns a card by primary key filtered by user_id.
func (r *Repo) GetByID(ctx context.Context, userID, cardID uuid.UUID) (domain.Card, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	row := querier.QueryRow(ctx, getByIDSQL, cardID, userID)
	c, err := scanCard(row)
	if err != nil {
		return domain.Card{}, postgres.MapError(err, "card", cardID)
	}

	return c, nil
}

// GetDue returns cards eligible for review: every NEW card plus cards whose
// next_review_at has passed. Overdue cards come first, NEW cards last.
func (r *Repo) GetDue(ctx context.Context, userID uuid.UUID, now time.Time, limit int) ([]domain.Card, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, getDueSQL, userID, now, limit)
	if err != nil {
		return nil, fmt.Errorf("get due cards: %w", err)
	}
	defer rows.Close()

	cards, err := scanCards(rows)
	if err != nil {
		return nil, fmt.Errorf("get due cards: %w", err)
	}

	return cards, nil
}

// CountDue returns the number of cards currently eligible for review.
func (r *Repo) CountDue(ctx context.Context, userID uuid.UUID, now time.Time) (int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var count int
	if err := querier.QueryRow(ctx, countDueSQL, userID, now).Scan(&count); err != nil {
		return 0, fmt.Errorf("count due cards: %w", err)
	}

	return count, nil
}

// CountByStatus returns the user's card counts grouped by review status.
func (r *Repo) CountByStatus(ctx context.Context, userID uuid.UUID) (domain.CardStatusCounts, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, countByStatusSQL, userID)
	if err != nil {
		return domain.CardStatusCounts{}, fmt.Errorf("count cards by status: %w", err)
	}
	defer rows.Close()

	var counts domain.CardStatusCounts
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return domain.CardStatusCounts{}, fmt.Errorf("scan status count: %w", err)
		}
		switch domain.ReviewStatus(status) {
		case domain.ReviewStatusNew:
			counts.New = n
		case domain.ReviewStatusLearning:
			counts.Learning = n
		case domain.ReviewStatusMastered:
			counts.Mastered = n
		}
		counts.Total += n
	}
	if err := rows.Err(); err != nil {
		return domain.CardStatusCounts{}, fmt.Errorf("iterate status counts: %w", err)
	}

	return counts, nil
}

// ListTranslations returns the minimal projection used to build quiz
// distractors. Cards with an empty translation are skipped.
func (r *Repo) ListTranslations(ctx context.Context, userID uuid.UUID) ([]domain.TranslationRef, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listTranslationsSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("list translations: %w", err)
	}
	defer rows.Close()

	var refs []domain.TranslationRef
	for rows.Next() {
		var ref domain.TranslationRef
		if err := rows.Scan(&ref.CardID, &ref.Translation, &ref.TargetLang); err != nil {
			return nil, fmt.Errorf("scan translation ref: %w", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate translation refs: %w", err)
	}

	if refs == nil {
		refs = []domain.TranslationRef{}
	}

	return refs, nil
}

// List returns the user's cards matching the filter, newest first.
func (r *Repo) List(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]domain.Card, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	builder := sq.Select("id", "user_id", "word", "translation", "pronunciation", "original_sentence",
		"context_trans", "ai_example", "source_app", "target_lang", "tags",
		"status", "next_review_at", "created_at", "updated_at").
		From("vocab_cards").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		PlaceholderFormat(sq.Dollar)

	if filter.Status != "" {
		builder = builder.Where(sq.Eq{"status": string(filter.Status)})
	}
	if filter.SourceApp != "" {
		builder = builder.Where(sq.Eq{"source_app": filter.SourceApp})
	}
	if filter.TargetLang != "" {
		builder = builder.Where(sq.Eq{"target_lang": filter.TargetLang})
	}
	if filter.Tag != "" {
		builder = builder.Where("? = ANY(tags)", filter.Tag)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		builder = builder.Where(sq.Or{
			sq.ILike{"word": pattern},
			sq.ILike{"translation": pattern},
		})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		builder = builder.Offset(uint64(filter.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	cards, err := scanCards(rows)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}

	return cards, nil
}

// CreateBatch inserts all cards in a single pgx batch. Each card gets a fresh
// UUID and timestamps; the stored copies are returned in input order.
func (r *Repo) CreateBatch(ctx context.Context, userID uuid.UUID, cards []domain.Card) ([]domain.Card, error) {
	if len(cards) == 0 {
		return []domain.Card{}, nil
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)
	now := time.Now().UTC().Truncate(time.Microsecond)

	stored := make([]domain.Card, len(cards))
	batch := &pgx.Batch{}
	for i, c := range cards {
		c.ID = uuid.New()
		c.UserID = userID
		if c.Status == "" {
			c.Status = domain.ReviewStatusNew
		}
		if c.Tags == nil {
			c.Tags = []string{}
		}
		c.CreatedAt = now
		c.UpdatedAt = now
		stored[i] = c

		batch.Queue(insertSQL,
			c.ID, c.UserID, c.Word, c.Translation, c.Pronunciation, c.OriginalSentence,
			c.ContextTrans, c.AIExample, c.SourceApp, c.TargetLang, c.Tags,
			string(c.Status), c.NextReviewAt, c.CreatedAt, c.UpdatedAt,
		)
	}

	results := querier.SendBatch(ctx, batch)
	defer results.Close()

	for i := range cards {
		if _, err := results.Exec(); err != nil {
			return nil, postgres.MapError(err, "card", stored[i].ID)
		}
	}

	return stored, nil
}

// UpdateSRS sets the review status and next review time on a card.
// Returns domain.ErrNotFound if the card does not exist or belongs to another user.
func (r *Repo) UpdateSRS(ctx context.Context, userID, cardID uuid.UUID, params domain.SRSUpdateParams) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	now := time.Now().UTC().Truncate(time.Microsecond)
	tag, err := querier.Exec(ctx, updateSRSSQL, cardID, userID, string(params.Status), params.NextReviewAt, now)
	if err != nil {
		return postgres.MapError(err, "card", cardID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("card %s: %w", cardID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a card.
// Returns domain.ErrNotFound if the card does not exist or belongs to another user.
func (r *Repo) Delete(ctx context.Context, userID, cardID uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, deleteSQL, cardID, userID)
	if err != nil {
		return postgres.MapError(err, "card", cardID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("card %s: %w", cardID, domain.ErrNotFound)
	}

	return nil
}

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (domain.Card, error) {
	var c domain.Card
	var status string
	err := row.Scan(
		&c.ID, &c.UserID, &c.Word, &c.Translation, &c.Pronunciation, &c.OriginalSentence,
		&c.ContextTrans, &c.AIExample, &c.SourceApp, &c.TargetLang, &c.Tags,
		&status, &c.NextReviewAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return domain.Card{}, err
	}
	c.Status = domain.ReviewStatus(status)
	return c, nil
}

func scanCards(rows pgx.Rows) ([]domain.Card, error) {
	var cards []domain.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cards: %w", err)
	}

	if cards == nil {
		cards = []domain.Card{}
	}

	return cards, nil
}
