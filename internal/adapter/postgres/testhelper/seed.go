package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"

	"github.com/snappword/snappword-backend/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedUser creates a free-tier user with a fresh LINE user ID.
func SeedUser(t *testing.T, pool *pgxpool.Pool) domain.User {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	user := domain.User{
		ID:          uuid.New(),
		LineUserID:  "U" + suffix,
		DisplayName: "Test User " + suffix,
		Tier:        domain.TierFree,
		CreatedAt:   now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO users (id, line_user_id, display_name, subscription_tier, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $5)`,
		user.ID, user.LineUserID, user.DisplayName, string(user.Tier), now,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedUser insert: %v", err)
	}

	return user
}

// SeedCard creates a vocab card for the user. Status and next_review_at come
// from the argument; everything else gets filled with unique test data.
func SeedCard(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID, status domain.ReviewStatus, nextReviewAt *time.Time) domain.Card {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	card := domain.Card{
		ID:               uuid.New(),
		UserID:           userID,
		Word:             "word-" + suffix,
		Translation:      "翻譯-" + suffix,
		Pronunciation:    "/wɜːd/",
		OriginalSentence: "A sentence with word-" + suffix + ".",
		SourceApp:        "General",
		TargetLang:       "en",
		Tags:             []string{"test"},
		Status:           status,
		NextReviewAt:     nextReviewAt,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO vocab_cards (id, user_id, word, translation, pronunciation, original_sentence,
		                          source_app, target_lang, tags, status, next_review_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)`,
		card.ID, card.UserID, card.Word, card.Translation, card.Pronunciation, card.OriginalSentence,
		card.SourceApp, card.TargetLang, card.Tags, string(card.Status), card.NextReviewAt, now,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedCard insert: %v", err)
	}

	return card
}

// SeedEvent appends an event of the given type at the given time.
func SeedEvent(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID, typ domain.EventType, at time.Time) {
	t.Helper()
	ctx := context.Background()

	_, err := pool.Exec(ctx,
		`INSERT INTO events (id, user_id, type, created_at) VALUES ($1, $2, $3, $4)`,
		ulid.Make().String(), userID, string(typ), at,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedEvent insert: %v", err)
	}
}
