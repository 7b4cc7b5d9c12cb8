package domain

// ReviewStatus represents the spaced-repetition state of a vocab card.
// Transitions: NEW → LEARNING → MASTERED on success; any non-NEW status
// returns to LEARNING on failure. A card never goes back to NEW.
type ReviewStatus string

const (
	ReviewStatusNew      ReviewStatus = "NEW"
	ReviewStatusLearning ReviewStatus = "LEARNING"
	ReviewStatusMastered ReviewStatus = "MASTERED"
)

func (s ReviewStatus) String() string { return string(s) }

func (s ReviewStatus) IsValid() bool {
	switch s {
	case ReviewStatusNew, ReviewStatusLearning, ReviewStatusMastered:
		return true
	}
	return false
}

// Tier represents a user's subscription level.
type Tier string

const (
	TierFree   Tier = "free"
	TierSprout Tier = "sprout"
	TierBloom  Tier = "bloom"
)

func (t Tier) String() string { return string(t) }

func (t Tier) IsValid() bool {
	switch t {
	case TierFree, TierSprout, TierBloom:
		return true
	}
	return false
}

// EventType identifies the kind of operational event recorded in the event log.
type EventType string

const (
	EventImageReceived   EventType = "image_received"
	EventModelCall       EventType = "model_call"
	EventParseSuccess    EventType = "parse_success"
	EventParseFail       EventType = "parse_fail"
	EventFlashcardReview EventType = "flashcard_review"
	EventQuizAnswer      EventType = "quiz_answer"
	EventFollow          EventType = "follow"
	EventAdminAction     EventType = "admin_action"
)

func (e EventType) String() string { return string(e) }
