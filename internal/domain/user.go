package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is an account created from a LINE profile on first contact.
type User struct {
	ID             uuid.UUID
	LineUserID     string
	DisplayName    string
	IsPremium      bool // legacy flag, superseded by SubscriptionTier
	Tier           Tier
	StripeCustomer string
	CurrentStreak  int
	LongestStreak  int
	// LastReviewDate is a calendar date string ("2006-01-02"), not a
	// timestamp. Empty until the first recorded review.
	LastReviewDate string
	CreatedAt      time.Time
}

// ResolveTier returns the user's effective subscription tier.
// An explicit non-free tier wins; the legacy is_premium flag maps to sprout;
// everything else is free.
func (u *User) ResolveTier() Tier {
	if u.Tier != "" && u.Tier != TierFree {
		return u.Tier
	}
	if u.IsPremium {
		return TierSprout
	}
	return TierFree
}

// Streak holds a user's consecutive-day review counters.
type Streak struct {
	Current int
	Longest int
}

// StreakState is the persisted streak record read before an update.
type StreakState struct {
	Current        int
	Longest        int
	LastReviewDate string
}
