package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/snappword/snappword-backend/internal/domain"
	"github.com/snappword/snappword-backend/internal/service/review"
)

type flashcardService interface {
	GetDeck(ctx context.Context, userID uuid.UUID) (domain.FlashcardDeck, error)
	AnswerFlashcard(ctx context.Context, userID, cardID uuid.UUID, remembered bool) (review.AnswerResult, error)
}

// FlashcardHandler serves the dashboard flashcard review endpoints.
type FlashcardHandler struct {
	svc flashcardService
	log *slog.Logger
}

// NewFlashcardHandler creates a FlashcardHandler.
func NewFlashcardHandler(svc flashcardService, logger *slog.Logger) *FlashcardHandler {
	return &FlashcardHandler{svc: svc, log: logger.With("handler", "flashcard")}
}

type cardResponse struct {
	ID               string     `json:"id"`
	Word             string     `json:"word"`
	Translation      string     `json:"translation"`
	Pronunciation    string     `json:"pronunciation,omitempty"`
	OriginalSentence string     `json:"originalSentence,omitempty"`
	ContextTrans     string     `json:"contextTrans,omitempty"`
	AIExample        string     `json:"aiExample,omitempty"`
	SourceApp        string     `json:"sourceApp,omitempty"`
	TargetLang       string     `json:"targetLang,omitempty"`
	Tags             []string   `json:"tags,omitempty"`
	Status           string     `json:"status"`
	NextReviewAt     *time.Time `json:"nextReviewAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

type deckResponse struct {
	Cards        []cardResponse `json:"cards"`
	TotalDue     int            `json:"totalDue"`
	LimitReached bool           `json:"limitReached"`
}

type answerRequest struct {
	Remembered *bool `json:"remembered" validate:"required"`
}

type answerResponse struct {
	Card   cardResponse   `json:"card"`
	Streak streakResponse `json:"streak"`
}

type streakResponse struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

// Deck handles GET /api/flashcards/deck.
func (h *FlashcardHandler) Deck(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	deck, err := h.svc.GetDeck(r.Context(), userID)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	resp := deckResponse{
		Cards:        make([]cardResponse, 0, len(deck.Cards)),
		TotalDue:     deck.TotalDue,
		LimitReached: deck.LimitReached,
	}
	for _, c := range deck.Cards {
		resp.Cards = append(resp.Cards, toCardResponse(c))
	}

	writeJSON(w, http.StatusOK, resp)
}

// Answer handles POST /api/flashcards/{id}/answer.
func (h *FlashcardHandler) Answer(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	cardID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid card id")
		return
	}

	var req answerRequest
	if err := decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.AnswerFlashcard(r.Context(), userID, cardID, *req.Remembered)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, answerResponse{
		Card:   toCardResponse(result.Card),
		Streak: streakResponse{Current: result.Streak.Current, Longest: result.Streak.Longest},
	})
}

func toCardResponse(c domain.Card) cardResponse {
	return cardResponse{
		ID:               c.ID.String(),
		Word:             c.Word,
		Translation:      c.Translation,
		Pronunciation:    c.Pronunciation,
		OriginalSentence: c.OriginalSentence,
		ContextTrans:     c.ContextTrans,
		AIExample:        c.AIExample,
		SourceApp:        c.SourceApp,
		TargetLang:       c.TargetLang,
		Tags:             c.Tags,
		Status:           c.Status.String(),
		NextReviewAt:     c.NextReviewAt,
		CreatedAt:        c.CreatedAt,
	}
}
