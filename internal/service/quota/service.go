// Package quota enforces per-tier usage ceilings and maintains the daily
// review streak.
package quota

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/snappword/snappword-backend/internal/config"
	"github.com/snappword/snappword-backend/internal/domain"
)

// dateLayout matches domain.User.LastReviewDate.
const dateLayout = "2006-01-02"

// streakRetries bounds the compare-and-swap loop on concurrent reviews.
const streakRetries = 3

type userRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpdateStreak(ctx context.Context, id uuid.UUID, next domain.StreakState, prevReviewDate string) (bool, error)
}

type eventRepo interface {
	CountSince(ctx context.Context, userID uuid.UUID, typ domain.EventType, since time.Time) (int, error)
}

// Service implements quota checks and streak accounting.
type Service struct {
	users  userRepo
	events eventRepo
	cfg    config.QuotaConfig
	log    *slog.Logger
	now    func() time.Time
}

// NewService creates the quota service.
func NewService(log *slog.Logger, users userRepo, events eventRepo, cfg config.QuotaConfig) *Service {
	return &Service{
		users:  users,
		events: events,
		cfg:    cfg,
		log:    log.With("service", "quota"),
		now:    time.Now,
	}
}

// CheckScreenshot decides whether the user may submit another screenshot.
//
// The daily ceiling (an anti-abuse guard on the unlimited tier) is checked
// before the monthly one, so an unlimited-tier user who trips it gets the
// daily reason. Usage is counted from image_received events within the
// current calendar day and month in server-local time.
func (s *Service) CheckScreenshot(ctx context.Context, user *domain.User) (domain.QuotaDecision, error) {
	now := s.now()
	tier := user.ResolveTier()

	decision := domain.QuotaDecision{
		Allowed:      true,
		Tier:         tier,
		MonthlyLimit: s.cfg.MonthlyLimit(string(tier)),
	}

	if daily := s.cfg.DailyLimit(string(tier)); daily > 0 {
		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		used, err := s.events.CountSince(ctx, user.ID, domain.EventImageReceived, dayStart)
		if err != nil {
			return domain.QuotaDecision{}, fmt.Errorf("count daily usage: %w", err)
		}
		if used >= daily {
			decision.Allowed = false
			decision.Reason = domain.QuotaReasonDaily
			return decision, nil
		}
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	used, err := s.events.CountSince(ctx, user.ID, domain.EventImageReceived, monthStart)
	if err != nil {
		return domain.QuotaDecision{}, fmt.Errorf("count monthly usage: %w", err)
	}
	decision.MonthlyUsed = used

	if decision.MonthlyLimit > 0 && used >= decision.MonthlyLimit {
		decision.Allowed = false
		decision.Reason = domain.QuotaReasonMonthly
	}

	return decision, nil
}

// RecordReview counts today toward the user's streak. The operation is
// idempotent per calendar day and safe under concurrent reviews: the write is
// a compare-and-swap on the stored last-review date, retried a few times on
// contention before giving up with the freshest counters.
func (s *Service) RecordReview(ctx context.Context, userID uuid.UUID, now time.Time) (domain.Streak, error) {
	today := now.Format(dateLayout)

	for attempt := 0; attempt < streakRetries; attempt++ {
		user, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return domain.Streak{}, fmt.Errorf("get user: %w", err)
		}

		// Already counted today.
		if user.LastReviewDate == today {
			return domain.Streak{Current: user.CurrentStreak, Longest: user.LongestStreak}, nil
		}

		next := nextStreak(user, today)
		applied, err := s.users.UpdateStreak(ctx, userID, next, user.LastReviewDate)
		if err != nil {
			return domain.Streak{}, fmt.Errorf("update streak: %w", err)
		}
		if applied {
			return domain.Streak{Current: next.Current, Longest: next.Longest}, nil
		}

		s.log.DebugContext(ctx, "streak update lost race, retrying",
			slog.String("user_id", userID.String()),
			slog.Int("attempt", attempt+1),
		)
	}

	// Contention this heavy means another review already recorded today.
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return domain.Streak{}, fmt.Errorf("get user after contention: %w", err)
	}
	return domain.Streak{Current: user.CurrentStreak, Longest: user.LongestStreak}, nil
}

// nextStreak computes the new counters for the first review of a day.
// A review on the day right after the last one extends the run; any gap,
// or an unparseable stored date, restarts it at 1.
func nextStreak(user *domain.User, today string) domain.StreakState {
	current := 1
	if user.LastReviewDate != "" {
		last, lastErr := time.Parse(dateLayout, user.LastReviewDate)
		cur, curErr := time.Parse(dateLayout, today)
		if lastErr == nil && curErr == nil {
			gap := int(cur.Sub(last).Hours() / 24)
			if gap == 1 {
				current = user.CurrentStreak + 1
			}
		}
	}

	longest := user.LongestStreak
	if current > longest {
		longest = current
	}

	return domain.StreakState{
		Current:        current,
		Longest:        longest,
		LastReviewDate: today,
	}
}
