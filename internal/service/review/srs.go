package review

import (
	"math"
	"time"

	"github.com/snappword/snappword-backend/internal/domain"
)

// Policy is the interval ladder. Index 0 is the first post-NEW interval;
// reaching the last index masters the card.
type Policy struct {
	ladder []int
}

// NewPolicy creates a policy from an ascending ladder of day counts.
func NewPolicy(ladder []int) Policy {
	return Policy{ladder: ladder}
}

// Advance computes the next SRS state after a successful answer.
//
// The card's current interval is estimated from its own timestamps
// (next_review_at minus updated_at, rounded to whole days) rather than stored
// separately, then promoted to the next ladder rung. Landing on the last rung
// masters the card; a mastered card answered again stays mastered at the last
// rung.
func (p Policy) Advance(card domain.Card, now time.Time) domain.SRSUpdateParams {
	if card.Status == domain.ReviewStatusNew {
		return p.rung(0, now)
	}

	next := p.rungIndexAbove(currentIntervalDays(card)) + 1
	if next > len(p.ladder)-1 {
		next = len(p.ladder) - 1
	}

	return p.rung(next, now)
}

// Reset computes the SRS state after a failed answer: back to the first rung,
// regardless of how far the card had progressed. A failed card is LEARNING
// even if it was MASTERED before.
func (p Policy) Reset(now time.Time) domain.SRSUpdateParams {
	return domain.SRSUpdateParams{
		Status:       domain.ReviewStatusLearning,
		NextReviewAt: now.AddDate(0, 0, p.ladder[0]),
	}
}

func (p Policy) rung(idx int, now time.Time) domain.SRSUpdateParams {
	status := domain.ReviewStatusLearning
	if idx == len(p.ladder)-1 {
		status = domain.ReviewStatusMastered
	}

	return domain.SRSUpdateParams{
		Status:       status,
		NextReviewAt: now.AddDate(0, 0, p.ladder[idx]),
	}
}

// rungIndexAbove returns the first ladder index whose interval is >= days,
// or the last index when days exceeds the whole ladder.
func (p Policy) rungIndexAbove(days int) int {
	for i, d := range p.ladder {
		if d >= days {
			return i
		}
	}
	return len(p.ladder) - 1
}

// currentIntervalDays estimates the card's current interval in whole days.
// Clock skew or manual edits can make the estimate negative; floor at 0 so
// the card lands on the first rung.
func currentIntervalDays(card domain.Card) int {
	if card.NextReviewAt == nil {
		return 0
	}

	days := int(math.Round(card.NextReviewAt.Sub(card.UpdatedAt).Hours() / 24))
	if days < 0 {
		return 0
	}
	return days
}
