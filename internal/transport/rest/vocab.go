package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/snappword/snappword-backend/internal/adapter/postgres/card"
	"github.com/snappword/snappword-backend/internal/domain"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

type vocabStore interface {
	List(ctx context.Context, userID uuid.UUID, filter card.ListFilter) ([]domain.Card, error)
	Delete(ctx context.Context, userID, cardID uuid.UUID) error
	CountByStatus(ctx context.Context, userID uuid.UUID) (domain.CardStatusCounts, error)
	CountDue(ctx context.Context, userID uuid.UUID, now time.Time) (int, error)
}

type usageCounter interface {
	CountSince(ctx context.Context, userID uuid.UUID, typ domain.EventType, since time.Time) (int, error)
}

type profileGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// VocabHandler serves the dashboard vocabulary and stats endpoints.
type VocabHandler struct {
	cards  vocabStore
	events usageCounter
	users  profileGetter
	log    *slog.Logger

	now func() time.Time
}

// NewVocabHandler creates a VocabHandler.
func NewVocabHandler(cards vocabStore, events usageCounter, users profileGetter, logger *slog.Logger) *VocabHandler {
	return &VocabHandler{
		cards:  cards,
		events: events,
		users:  users,
		log:    logger.With("handler", "vocab"),
		now:    time.Now,
	}
}

// List handles GET /api/vocab with optional filters:
// status, sourceApp, lang, tag, search, limit, offset.
func (h *VocabHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := card.ListFilter{
		SourceApp:  q.Get("sourceApp"),
		TargetLang: q.Get("lang"),
		Tag:        q.Get("tag"),
		Search:     q.Get("search"),
		Limit:      queryInt(q.Get("limit"), defaultListLimit),
		Offset:     queryInt(q.Get("offset"), 0),
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if s := q.Get("status"); s != "" {
		status := domain.ReviewStatus(s)
		if !status.IsValid() {
			writeError(w, http.StatusBadRequest, "invalid status filter")
			return
		}
		filter.Status = status
	}

	cards, err := h.cards.List(r.Context(), userID, filter)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	resp := make([]cardResponse, 0, len(cards))
	for _, c := range cards {
		resp = append(resp, toCardResponse(c))
	}

	writeJSON(w, http.StatusOK, map[string]any{"cards": resp})
}

// Delete handles DELETE /api/vocab/{id}.
func (h *VocabHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	cardID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid card id")
		return
	}

	if err := h.cards.Delete(r.Context(), userID, cardID); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type statsResponse struct {
	Cards       cardStatsResponse `json:"cards"`
	DueCount    int               `json:"dueCount"`
	MonthlyUsed int               `json:"monthlyUsed"`
	Streak      streakResponse    `json:"streak"`
	Tier        string            `json:"tier"`
}

type cardStatsResponse struct {
	New      int `json:"new"`
	Learning int `json:"learning"`
	Mastered int `json:"mastered"`
	Total    int `json:"total"`
}

// Stats handles GET /api/stats: the dashboard home widgets.
func (h *VocabHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	counts, err := h.cards.CountByStatus(r.Context(), userID)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	now := h.now()
	dueCount, err := h.cards.CountDue(r.Context(), userID, now)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthlyUsed, err := h.events.CountSince(r.Context(), userID, domain.EventImageReceived, monthStart)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, statsResponse{
		Cards: cardStatsResponse{
			New:      counts.New,
			Learning: counts.Learning,
			Mastered: counts.Mastered,
			Total:    counts.Total,
		},
		DueCount:    dueCount,
		MonthlyUsed: monthlyUsed,
		Streak:      streakResponse{Current: user.CurrentStreak, Longest: user.LongestStreak},
		Tier:        user.ResolveTier().String(),
	})
}

func queryInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
