package card_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/snappword/snappword-backend/internal/adapter/postgres/card"
	"github.com/snappword/snappword-backend/internal/adapter/postgres/testhelper"
	"github.com/snappword/snappword-backend/internal/domain"
)

// newRepo sets up a test DB and returns a ready Repo + pool.
func newRepo(t *testing.T) (*card.Repo, *pgxpool.Pool) {
	t.Helper()
	pool := testhelper.SetupTestDB(t)
	return card.New(pool), pool
}

func TestRepo_CreateBatch_AndGetByID(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	user := testhelper.SeedUser(t, pool)

	created, err := repo.CreateBatch(ctx, user.ID, []domain.Card{
		{Word: "ephemeral", Translation: "短暫的", SourceApp: "Netflix", TargetLang: "en"},
		{Word: "serendipity", Translation: "機緣", SourceApp: "Netflix", TargetLang: "en"},
	})
	if err != nil {
		t.Fatalf("CreateBatch: unexpected error: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("CreateBatch: got %d cards, want 2", len(created))
	}
	if created[0].Status != domain.ReviewStatusNew {
		t.Errorf("Status mismatch: got %s, want %s", created[0].Status, domain.ReviewStatusNew)
	}
	if created[0].UserID != user.ID {
		t.Errorf("UserID mismatch: got %s, want %s", created[0].UserID, user.ID)
	}

	got, err := repo.GetByID(ctx, user.ID, created[0].ID)
	if err != nil {
		t.Fatalf("GetByID: unexpected error: %v", err)
	}
	if got.Word != "ephemeral" {
		t.Errorf("Word mismatch: got %q, want %q", got.Word, "ephemeral")
	}
	if got.NextReviewAt != nil {
		t.Errorf("NextReviewAt: got %v, want nil", got.NextReviewAt)
	}
}

func TestRepo_GetByID_WrongUser(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	owner := testhelper.SeedUser(t, pool)
	other := testhelper.SeedUser(t, pool)
	c := testhelper.SeedCard(t, pool, owner.ID, domain.ReviewStatusNew, nil)

	_, err := repo.GetByID(ctx, other.ID, c.ID)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRepo_GetDue(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	user := testhelper.SeedUser(t, pool)
	now := time.Now().UTC().Truncate(time.Microsecond)
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	newCard := testhelper.SeedCard(t, pool, user.ID, domain.ReviewStatusNew, nil)
	overdue := testhelper.SeedCard(t, pool, user.ID, domain.ReviewStatusLearning, &past)
	exactlyDue := testhelper.SeedCard(t, pool, user.ID, domain.ReviewStatusLearning, &now)
	notDue := testhelper.SeedCard(t, pool, user.ID, domain.ReviewStatusLearning, &future)

	cards, err := repo.GetDue(ctx, user.ID, now, 20)
	if err != nil {
		t.Fatalf("GetDue: unexpected error: %v", err)
	}

	ids := make(map[uuid.UUID]bool, len(cards))
	for _, c := range cards {
		ids[c.ID] = true
	}

	if !ids[newCard.ID] {
		t.Error("NEW card should be due")
	}
	if !ids[overdue.ID] {
		t.Error("overdue card should be due")
	}
	if !ids[exactlyDue.ID] {
		t.Error("card due exactly now should be due (boundary is inclusive)")
	}
	if ids[notDue.ID] {
		t.Error("future card should not be due")
	}

	// Overdue timed cards come before NEW cards.
	if len(cards) >= 2 && cards[len(cards)-1].ID != newCard.ID {
		t.Errorf("NEW card should sort last, got order ending in %s", cards[len(cards)-1].ID)
	}
}

func TestRepo_GetDue_RespectsLimit(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	user := testhelper.SeedUser(t, pool)
	for i := 0; i < 5; i++ {
		testhelper.SeedCard(t, pool, user.ID, domain.ReviewStatusNew, nil)
	}

	cards, err := repo.GetDue(ctx, user.ID, time.Now().UTC(), 3)
	if err != nil {
		t.Fatalf("GetDue: unexpected error: %v", err)
	}
	if len(cards) != 3 {
		t.Fatalf("GetDue: got %d cards, want 3", len(cards))
	}
}

func TestRepo_UpdateSRS(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	user := testhelper.SeedUser(t, pool)
	c := testhelper.SeedCard(t, pool, user.ID, domain.ReviewStatusNew, nil)

	next := time.Now().UTC().Add(72 * time.Hour).Truncate(time.Microsecond)
	err := repo.UpdateSRS(ctx, user.ID, c.ID, domain.SRSUpdateParams{
		Status:       domain.ReviewStatusLearning,
		NextReviewAt: next,
	})
	if err != nil {
		t.Fatalf("UpdateSRS: unexpected error: %v", err)
	}

	got, err := repo.GetByID(ctx, user.ID, c.ID)
	if err != nil {
		t.Fatalf("GetByID: unexpected error: %v", err)
	}
	if got.Status != domain.ReviewStatusLearning {
		t.Errorf("Status mismatch: got %s, want LEARNING", got.Status)
	}
	if got.NextReviewAt == nil || !got.NextReviewAt.Equal(next) {
		t.Errorf("NextReviewAt mismatch: got %v, want %v", got.NextReviewAt, next)
	}
}

func TestRepo_UpdateSRS_NotFound(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	user := testhelper.SeedUser(t, pool)

	err := repo.UpdateSRS(ctx, user.ID, uuid.New(), domain.SRSUpdateParams{
		Status:       domain.ReviewStatusLearning,
		NextReviewAt: time.Now().UTC(),
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRepo_CountByStatus(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	user := testhelper.SeedUser(t, pool)
	now := time.Now().UTC()
	testhelper.SeedCard(t, pool, user.ID, domain.ReviewStatusNew, nil)
	testhelper.SeedCard(t, pool, user.ID, domain.ReviewStatusNew, nil)
	testhelper.SeedCard(t, pool, user.ID, domain.ReviewStatusLearning, &now)
	testhelper.SeedCard(t, pool, user.ID, domain.ReviewStatusMastered, &now)

	counts, err := repo.CountByStatus(ctx, user.ID)
	if err != nil {
		t.Fatalf("CountByStatus: unexpected error: %v", err)
	}
	want := domain.CardStatusCounts{New: 2, Learning: 1, Mastered: 1, Total: 4}
	if counts != want {
		t.Errorf("CountByStatus mismatch: got %+v, want %+v", counts, want)
	}
}

func TestRepo_List_Filters(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	user := testhelper.SeedUser(t, pool)
	testhelper.SeedCard(t, pool, user.ID, domain.ReviewStatusNew, nil)
	now := time.Now().UTC()
	learning := testhelper.SeedCard(t, pool, user.ID, domain.ReviewStatusLearning, &now)

	got, err := repo.List(ctx, user.ID, card.ListFilter{Status: domain.ReviewStatusLearning})
	if err != nil {
		t.Fatalf("List: unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != learning.ID {
		t.Fatalf("List(status=LEARNING): got %d cards, want only %s", len(got), learning.ID)
	}

	got, err = repo.List(ctx, user.ID, card.ListFilter{Search: learning.Word[:8]})
	if err != nil {
		t.Fatalf("List: unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != learning.ID {
		t.Fatalf("List(search): got %d cards, want only the matching one", len(got))
	}
}

func TestRepo_ListTranslations_SkipsEmpty(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	user := testhelper.SeedUser(t, pool)
	withTranslation := testhelper.SeedCard(t, pool, user.ID, domain.ReviewStatusNew, nil)

	_, err := repo.CreateBatch(ctx, user.ID, []domain.Card{
		{Word: "untranslated", SourceApp: "General", TargetLang: "en"},
	})
	if err != nil {
		t.Fatalf("CreateBatch: unexpected error: %v", err)
	}

	refs, err := repo.ListTranslations(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListTranslations: unexpected error: %v", err)
	}
	if len(refs) != 1 {
		t.Fatalf("ListTranslations: got %d refs, want 1", len(refs))
	}
	if refs[0].CardID != withTranslation.ID {
		t.Errorf("CardID mismatch: got %s, want %s", refs[0].CardID, withTranslation.ID)
	}
}

func TestRepo_Delete(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	user := testhelper.SeedUser(t, pool)
	c := testhelper.SeedCard(t, pool, user.ID, domain.ReviewStatusNew, nil)

	if err := repo.Delete(ctx, user.ID, c.ID); err != nil {
		t.Fatalf("Delete: unexpected error: %v", err)
	}

	_, err := repo.GetByID(ctx, user.ID, c.ID)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
