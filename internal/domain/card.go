package domain

import (
	"time"

	"github.com/google/uuid"
)

// Card is a single vocabulary unit extracted from a screenshot.
type Card struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	Word             string
	Translation      string
	Pronunciation    string
	OriginalSentence string
	ContextTrans     string
	AIExample        string
	SourceApp        string
	TargetLang       string
	Tags             []string
	Status           ReviewStatus
	NextReviewAt     *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsDue returns true if the card is eligible for review at the given time.
//   - NEW cards are always due (NextReviewAt is nil while NEW).
//   - LEARNING/MASTERED cards are due when NextReviewAt <= now (inclusive).
func (c *Card) IsDue(now time.Time) bool {
	if c.Status == ReviewStatusNew {
		return true
	}
	if c.NextReviewAt == nil {
		return true
	}
	return !c.NextReviewAt.After(now)
}

// SRSUpdateParams holds the fields to update on a card after a review answer.
type SRSUpdateParams struct {
	Status       ReviewStatus
	NextReviewAt time.Time
}

// TranslationRef is the minimal card projection used to build quiz distractors.
type TranslationRef struct {
	CardID      uuid.UUID
	Translation string
	TargetLang  string
}

// FlashcardDeck is one review session's worth of due cards.
// LimitReached is set when the free-tier daily review cap cut the session
// short; the deck is empty in that case.
type FlashcardDeck struct {
	Cards        []Card
	TotalDue     int
	LimitReached bool
}

// CardStatusCounts holds the count of a user's cards per review status.
type CardStatusCounts struct {
	New      int
	Learning int
	Mastered int
	Total    int
}
