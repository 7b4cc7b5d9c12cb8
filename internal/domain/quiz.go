package domain

import "github.com/google/uuid"

// QuizQuestion is a multiple-choice question built from a due card.
// Options contains the correct answer plus up to three distractors in
// uniformly random order; it may hold fewer than four entries when the
// user's pool cannot supply enough distinct translations.
type QuizQuestion struct {
	CardID        uuid.UUID
	Word          string
	Pronunciation string
	Language      string
	CorrectAnswer string
	Options       []string
}

// QuizSheet is the result of building a quiz session.
type QuizSheet struct {
	Questions []QuizQuestion
	TotalDue  int
	// NeedMoreCards is set when the user has fewer than the minimum distinct
	// translations required for valid questions. Not an error.
	NeedMoreCards bool
}

// QuotaDecision is the outcome of a screenshot quota check.
type QuotaDecision struct {
	Allowed      bool
	Reason       QuotaReason
	Tier         Tier
	MonthlyUsed  int
	MonthlyLimit int // 0 means unlimited
}

// QuotaReason explains a denied quota check.
type QuotaReason string

const (
	QuotaReasonNone    QuotaReason = ""
	QuotaReasonDaily   QuotaReason = "daily_quota"
	QuotaReasonMonthly QuotaReason = "monthly_quota"
)
