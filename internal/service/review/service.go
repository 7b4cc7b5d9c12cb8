// Package review implements the spaced-repetition business logic: due decks,
// answer grading, and quiz generation.
package review

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/snappword/snappword-backend/internal/config"
	"github.com/snappword/snappword-backend/internal/domain"
)

type cardRepo interface {
	GetByID(ctx context.Context, userID, cardID uuid.UUID) (domain.Card, error)
	GetDue(ctx context.Context, userID uuid.UUID, now time.Time, limit int) ([]domain.Card, error)
	CountDue(ctx context.Context, userID uuid.UUID, now time.Time) (int, error)
	ListTranslations(ctx context.Context, userID uuid.UUID) ([]domain.TranslationRef, error)
	UpdateSRS(ctx context.Context, userID, cardID uuid.UUID, params domain.SRSUpdateParams) error
}

type eventRepo interface {
	Insert(ctx context.Context, e domain.Event) (domain.Event, error)
	CountSince(ctx context.Context, userID uuid.UUID, typ domain.EventType, since time.Time) (int, error)
}

// activityRecorder maintains the user's daily streak.
type activityRecorder interface {
	RecordReview(ctx context.Context, userID uuid.UUID, now time.Time) (domain.Streak, error)
}

// userGetter resolves the user's tier for the free review cap.
type userGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// Service implements review and quiz operations.
type Service struct {
	cards    cardRepo
	events   eventRepo
	users    userGetter
	activity activityRecorder
	policy   Policy
	srsCfg   config.SRSConfig
	quotaCfg config.QuotaConfig
	log      *slog.Logger
	now      func() time.Time
	shuffle  func(n int, swap func(i, j int))
}

// NewService creates the review service.
func NewService(
	log *slog.Logger,
	cards cardRepo,
	events eventRepo,
	users userGetter,
	activity activityRecorder,
	srsCfg config.SRSConfig,
	quotaCfg config.QuotaConfig,
) *Service {
	return &Service{
		cards:    cards,
		events:   events,
		users:    users,
		activity: activity,
		policy:   NewPolicy(srsCfg.IntervalLadder),
		srsCfg:   srsCfg,
		quotaCfg: quotaCfg,
		log:      log.With("service", "review"),
		now:      time.Now,
		shuffle:  rand.Shuffle,
	}
}

// AnswerResult is the outcome of grading one flashcard answer.
type AnswerResult struct {
	Card   domain.Card
	Streak domain.Streak
}

// GetDeck returns the user's current flashcard deck.
//
// Free-tier users are capped at a fixed number of reviews per day; past the
// cap the deck comes back empty with LimitReached set. A storage failure
// while selecting cards degrades to an empty deck instead of an error so a
// review session never hard-fails in front of the user.
func (s *Service) GetDeck(ctx context.Context, userID uuid.UUID) (domain.FlashcardDeck, error) {
	now := s.now()

	capped, err := s.reviewCapReached(ctx, userID, now)
	if err != nil {
		return domain.FlashcardDeck{}, err
	}
	if capped {
		return domain.FlashcardDeck{Cards: []domain.Card{}, LimitReached: true}, nil
	}

	total, err := s.cards.CountDue(ctx, userID, now)
	if err != nil {
		s.log.ErrorContext(ctx, "count due failed", slog.String("user_id", userID.String()), slog.Any("error", err))
		total = 0
	}

	cards, err := s.cards.GetDue(ctx, userID, now, s.srsCfg.DuePageSize)
	if err != nil {
		s.log.ErrorContext(ctx, "get due cards failed", slog.String("user_id", userID.String()), slog.Any("error", err))
		return domain.FlashcardDeck{Cards: []domain.Card{}, TotalDue: total}, nil
	}

	return domain.FlashcardDeck{Cards: cards, TotalDue: total}, nil
}

// AnswerFlashcard grades one flashcard answer and moves the card along the
// interval ladder. The review counts toward the user's daily streak.
func (s *Service) AnswerFlashcard(ctx context.Context, userID, cardID uuid.UUID, remembered bool) (AnswerResult, error) {
	return s.answer(ctx, userID, cardID, remembered, domain.EventFlashcardReview, nil)
}

// AnswerQuiz grades one quiz answer against the card's stored translation.
// SRS movement is the same as a flashcard answer.
func (s *Service) AnswerQuiz(ctx context.Context, userID, cardID uuid.UUID, selected string) (AnswerResult, bool, error) {
	card, err := s.cards.GetByID(ctx, userID, cardID)
	if err != nil {
		return AnswerResult{}, false, fmt.Errorf("get card: %w", err)
	}

	correct := selected == card.Translation
	result, err := s.answer(ctx, userID, cardID, correct, domain.EventQuizAnswer, map[string]any{
		"selected": selected,
		"correct":  correct,
	})
	return result, correct, err
}

func (s *Service) answer(ctx context.Context, userID, cardID uuid.UUID, success bool, eventType domain.EventType, payload map[string]any) (AnswerResult, error) {
	now := s.now()

	card, err := s.cards.GetByID(ctx, userID, cardID)
	if err != nil {
		return AnswerResult{}, fmt.Errorf("get card: %w", err)
	}

	var params domain.SRSUpdateParams
	if success {
		params = s.policy.Advance(card, now)
	} else {
		params = s.policy.Reset(now)
	}

	if err := s.cards.UpdateSRS(ctx, userID, cardID, params); err != nil {
		return AnswerResult{}, fmt.Errorf("update srs: %w", err)
	}

	card.Status = params.Status
	next := params.NextReviewAt
	card.NextReviewAt = &next
	card.UpdatedAt = now

	if payload == nil {
		payload = map[string]any{}
	}
	payload["card_id"] = cardID.String()
	payload["success"] = success

	if _, err := s.events.Insert(ctx, domain.Event{
		UserID:  &userID,
		Type:    eventType,
		Payload: payload,
	}); err != nil {
		s.log.WarnContext(ctx, "record review event failed", slog.Any("error", err))
	}

	streak, err := s.activity.RecordReview(ctx, userID, now)
	if err != nil {
		s.log.WarnContext(ctx, "record streak failed", slog.String("user_id", userID.String()), slog.Any("error", err))
	}

	return AnswerResult{Card: card, Streak: streak}, nil
}

// reviewCapReached applies the free-tier daily review ceiling.
func (s *Service) reviewCapReached(ctx context.Context, userID uuid.UUID, now time.Time) (bool, error) {
	if s.quotaCfg.DailyReviewFree <= 0 {
		return false, nil
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("get user: %w", err)
	}
	if user.ResolveTier() != domain.TierFree {
		return false, nil
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	count, err := s.events.CountSince(ctx, userID, domain.EventFlashcardReview, dayStart)
	if err != nil {
		s.log.ErrorContext(ctx, "count reviews failed", slog.Any("error", err))
		return false, nil
	}

	return count >= s.quotaCfg.DailyReviewFree, nil
}
