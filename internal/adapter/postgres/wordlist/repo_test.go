package wordlist_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/snappword/snappword-backend/internal/adapter/postgres/testhelper"
	"github.com/snappword/snappword-backend/internal/adapter/postgres/wordlist"
	"github.com/snappword/snappword-backend/internal/domain"
)

func newRepo(t *testing.T) (*wordlist.Repo, *pgxpool.Pool) {
	t.Helper()
	pool := testhelper.SetupTestDB(t)
	return wordlist.New(pool), pool
}

func TestRepo_Create_DuplicateName(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	user := testhelper.SeedUser(t, pool)

	if _, err := repo.Create(ctx, user.ID, "Netflix words"); err != nil {
		t.Fatalf("Create: unexpected error: %v", err)
	}

	_, err := repo.Create(ctx, user.ID, "Netflix words")
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestRepo_AddRemoveCards(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	user := testhelper.SeedUser(t, pool)
	c1 := testhelper.SeedCard(t, pool, user.ID, domain.ReviewStatusNew, nil)
	c2 := testhelper.SeedCard(t, pool, user.ID, domain.ReviewStatusNew, nil)

	list, err := repo.Create(ctx, user.ID, "drill")
	if err != nil {
		t.Fatalf("Create: unexpected error: %v", err)
	}

	if err := repo.AddCard(ctx, list.ID, c1.ID); err != nil {
		t.Fatalf("AddCard: unexpected error: %v", err)
	}
	if err := repo.AddCard(ctx, list.ID, c2.ID); err != nil {
		t.Fatalf("AddCard: unexpected error: %v", err)
	}
	// Duplicate add is a no-op.
	if err := repo.AddCard(ctx, list.ID, c1.ID); err != nil {
		t.Fatalf("AddCard (dup): unexpected error: %v", err)
	}

	got, err := repo.GetByID(ctx, user.ID, list.ID)
	if err != nil {
		t.Fatalf("GetByID: unexpected error: %v", err)
	}
	if got.CardCount != 2 {
		t.Errorf("CardCount mismatch: got %d, want 2", got.CardCount)
	}

	ids, err := repo.ListCardIDs(ctx, list.ID)
	if err != nil {
		t.Fatalf("ListCardIDs: unexpected error: %v", err)
	}
	if len(ids) != 2 || ids[0] != c1.ID {
		t.Errorf("ListCardIDs: got %v, want [%s %s] in insertion order", ids, c1.ID, c2.ID)
	}

	if err := repo.RemoveCard(ctx, list.ID, c1.ID); err != nil {
		t.Fatalf("RemoveCard: unexpected error: %v", err)
	}

	got, err = repo.GetByID(ctx, user.ID, list.ID)
	if err != nil {
		t.Fatalf("GetByID: unexpected error: %v", err)
	}
	if got.CardCount != 1 {
		t.Errorf("CardCount after remove: got %d, want 1", got.CardCount)
	}
}

func TestRepo_Delete_KeepsCards(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	user := testhelper.SeedUser(t, pool)
	c := testhelper.SeedCard(t, pool, user.ID, domain.ReviewStatusNew, nil)

	list, err := repo.Create(ctx, user.ID, "to-delete")
	if err != nil {
		t.Fatalf("Create: unexpected error: %v", err)
	}
	if err := repo.AddCard(ctx, list.ID, c.ID); err != nil {
		t.Fatalf("AddCard: unexpected error: %v", err)
	}

	if err := repo.Delete(ctx, user.ID, list.ID); err != nil {
		t.Fatalf("Delete: unexpected error: %v", err)
	}

	_, err = repo.GetByID(ctx, user.ID, list.ID)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	// The card itself survives list deletion.
	var count int
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM vocab_cards WHERE id = $1`, c.ID).Scan(&count); err != nil {
		t.Fatalf("count cards: %v", err)
	}
	if count != 1 {
		t.Errorf("card should survive list deletion, got count %d", count)
	}
}
