package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/snappword/snappword-backend/internal/domain"
	"github.com/snappword/snappword-backend/internal/service/review"
)

type quizService interface {
	BuildQuiz(ctx context.Context, userID uuid.UUID) (domain.QuizSheet, error)
	AnswerQuiz(ctx context.Context, userID, cardID uuid.UUID, selected string) (review.AnswerResult, bool, error)
}

// QuizHandler serves the dashboard quiz endpoints.
type QuizHandler struct {
	svc quizService
	log *slog.Logger
}

// NewQuizHandler creates a QuizHandler.
func NewQuizHandler(svc quizService, logger *slog.Logger) *QuizHandler {
	return &QuizHandler{svc: svc, log: logger.With("handler", "quiz")}
}

type quizQuestionResponse struct {
	CardID        string   `json:"cardId"`
	Word          string   `json:"word"`
	Pronunciation string   `json:"pronunciation,omitempty"`
	Language      string   `json:"language,omitempty"`
	Options       []string `json:"options"`
}

type quizResponse struct {
	Questions     []quizQuestionResponse `json:"questions"`
	TotalDue      int                    `json:"totalDue"`
	NeedMoreCards bool                   `json:"needMoreCards"`
}

type quizAnswerRequest struct {
	Selected string `json:"selected" validate:"required"`
}

type quizAnswerResponse struct {
	Correct       bool           `json:"correct"`
	CorrectAnswer string         `json:"correctAnswer"`
	Card          cardResponse   `json:"card"`
	Streak        streakResponse `json:"streak"`
}

// Get handles GET /api/quiz. The correct answer stays server-side; the client
// only sees the shuffled options.
func (h *QuizHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	sheet, err := h.svc.BuildQuiz(r.Context(), userID)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	resp := quizResponse{
		Questions:     make([]quizQuestionResponse, 0, len(sheet.Questions)),
		TotalDue:      sheet.TotalDue,
		NeedMoreCards: sheet.NeedMoreCards,
	}
	for _, q := range sheet.Questions {
		resp.Questions = append(resp.Questions, quizQuestionResponse{
			CardID:        q.CardID.String(),
			Word:          q.Word,
			Pronunciation: q.Pronunciation,
			Language:      q.Language,
			Options:       q.Options,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// Answer handles POST /api/quiz/{id}/answer.
func (h *QuizHandler) Answer(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	cardID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid card id")
		return
	}

	var req quizAnswerRequest
	if err := decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, correct, err := h.svc.AnswerQuiz(r.Context(), userID, cardID, req.Selected)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, quizAnswerResponse{
		Correct:       correct,
		CorrectAnswer: result.Card.Translation,
		Card:          toCardResponse(result.Card),
		Streak:        streakResponse{Current: result.Streak.Current, Longest: result.Streak.Longest},
	})
}
