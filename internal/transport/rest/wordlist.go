package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/snappword/snappword-backend/internal/domain"
)

type wordListStore interface {
	Create(ctx context.Context, userID uuid.UUID, name string) (domain.WordList, error)
	GetByID(ctx context.Context, userID, listID uuid.UUID) (domain.WordList, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.WordList, error)
	Rename(ctx context.Context, userID, listID uuid.UUID, name string) error
	Delete(ctx context.Context, userID, listID uuid.UUID) error
	AddCard(ctx context.Context, listID, cardID uuid.UUID) error
	RemoveCard(ctx context.Context, listID, cardID uuid.UUID) error
	ListCardIDs(ctx context.Context, listID uuid.UUID) ([]uuid.UUID, error)
}

// WordListHandler serves the named word list endpoints.
type WordListHandler struct {
	lists wordListStore
	log   *slog.Logger
}

// NewWordListHandler creates a WordListHandler.
func NewWordListHandler(lists wordListStore, logger *slog.Logger) *WordListHandler {
	return &WordListHandler{lists: lists, log: logger.With("handler", "wordlist")}
}

type wordListRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type addCardRequest struct {
	CardID string `json:"cardId" validate:"required,uuid"`
}

type wordListResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CardCount int       `json:"cardCount"`
	CreatedAt time.Time `json:"createdAt"`
}

type wordListDetailResponse struct {
	wordListResponse
	CardIDs []string `json:"cardIds"`
}

// Create handles POST /api/wordlists.
func (h *WordListHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req wordListRequest
	if err := decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	list, err := h.lists.Create(r.Context(), userID, req.Name)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toWordListResponse(list))
}

// List handles GET /api/wordlists.
func (h *WordListHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	lists, err := h.lists.ListByUser(r.Context(), userID)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	resp := make([]wordListResponse, 0, len(lists))
	for _, l := range lists {
		resp = append(resp, toWordListResponse(l))
	}

	writeJSON(w, http.StatusOK, map[string]any{"lists": resp})
}

// Get handles GET /api/wordlists/{id} and includes card membership.
func (h *WordListHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	listID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid list id")
		return
	}

	list, err := h.lists.GetByID(r.Context(), userID, listID)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	cardIDs, err := h.lists.ListCardIDs(r.Context(), listID)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	resp := wordListDetailResponse{
		wordListResponse: toWordListResponse(list),
		CardIDs:          make([]string, 0, len(cardIDs)),
	}
	for _, id := range cardIDs {
		resp.CardIDs = append(resp.CardIDs, id.String())
	}

	writeJSON(w, http.StatusOK, resp)
}

// Rename handles PUT /api/wordlists/{id}.
func (h *WordListHandler) Rename(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	listID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid list id")
		return
	}

	var req wordListRequest
	if err := decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.lists.Rename(r.Context(), userID, listID, req.Name); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Delete handles DELETE /api/wordlists/{id}. Cards themselves survive.
func (h *WordListHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	listID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid list id")
		return
	}

	if err := h.lists.Delete(r.Context(), userID, listID); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddCard handles POST /api/wordlists/{id}/cards. Ownership is checked before
// touching the junction table, which has no user column.
func (h *WordListHandler) AddCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	listID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid list id")
		return
	}

	var req addCardRequest
	if err := decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	cardID, err := uuid.Parse(req.CardID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid card id")
		return
	}

	if _, err := h.lists.GetByID(r.Context(), userID, listID); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	if err := h.lists.AddCard(r.Context(), listID, cardID); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// RemoveCard handles DELETE /api/wordlists/{id}/cards/{cardID}.
func (h *WordListHandler) RemoveCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	listID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid list id")
		return
	}
	cardID, err := pathUUID(r, "cardID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid card id")
		return
	}

	if _, err := h.lists.GetByID(r.Context(), userID, listID); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	if err := h.lists.RemoveCard(r.Context(), listID, cardID); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toWordListResponse(l domain.WordList) wordListResponse {
	return wordListResponse{
		ID:        l.ID.String(),
		Name:      l.Name,
		CardCount: l.CardCount,
		CreatedAt: l.CreatedAt,
	}
}
