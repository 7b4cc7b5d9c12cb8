package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/snappword/snappword-backend/internal/domain"
	"github.com/snappword/snappword-backend/internal/transport/middleware"
)

type adminUserRepo interface {
	List(ctx context.Context, limit, offset int) ([]domain.User, error)
	Count(ctx context.Context) (int, error)
	UpdateTier(ctx context.Context, id uuid.UUID, tier domain.Tier) error
}

type adminEventRepo interface {
	Insert(ctx context.Context, e domain.Event) (domain.Event, error)
	CountByTypeSince(ctx context.Context, since time.Time) (map[domain.EventType]int, error)
	ListRecent(ctx context.Context, limit int) ([]domain.Event, error)
}

// AdminHandler serves the admin console endpoints.
type AdminHandler struct {
	users  adminUserRepo
	events adminEventRepo
	log    *slog.Logger

	now func() time.Time
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(users adminUserRepo, events adminEventRepo, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		users:  users,
		events: events,
		log:    logger.With("handler", "admin"),
		now:    time.Now,
	}
}

type adminUserResponse struct {
	ID            string    `json:"id"`
	LineUserID    string    `json:"lineUserId"`
	DisplayName   string    `json:"displayName"`
	Tier          string    `json:"tier"`
	CurrentStreak int       `json:"currentStreak"`
	CreatedAt     time.Time `json:"createdAt"`
}

type setTierRequest struct {
	Tier string `json:"tier" validate:"required,oneof=free sprout bloom"`
}

type adminStatsResponse struct {
	TotalUsers   int            `json:"totalUsers"`
	EventsToday  map[string]int `json:"eventsToday"`
	RecentEvents []eventSummary `json:"recentEvents"`
}

type eventSummary struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	UserID    string    `json:"userId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Users handles GET /admin/users?limit=&offset=.
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	q := r.URL.Query()
	limit := queryInt(q.Get("limit"), defaultListLimit)
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := queryInt(q.Get("offset"), 0)

	users, err := h.users.List(r.Context(), limit, offset)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	total, err := h.users.Count(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	resp := make([]adminUserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, adminUserResponse{
			ID:            u.ID.String(),
			LineUserID:    u.LineUserID,
			DisplayName:   u.DisplayName,
			Tier:          u.ResolveTier().String(),
			CurrentStreak: u.CurrentStreak,
			CreatedAt:     u.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"users": resp, "total": total})
}

// SetTier handles POST /admin/users/{id}/tier. The override is recorded in
// the event log for the audit trail.
func (h *AdminHandler) SetTier(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	userID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req setTierRequest
	if err := decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.users.UpdateTier(r.Context(), userID, domain.Tier(req.Tier)); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	if _, err := h.events.Insert(r.Context(), domain.Event{
		UserID:  &userID,
		Type:    domain.EventAdminAction,
		Payload: map[string]any{"action": "set_tier", "tier": req.Tier},
	}); err != nil {
		h.log.WarnContext(r.Context(), "record admin action failed", slog.String("error", err.Error()))
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Stats handles GET /admin/stats.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	total, err := h.users.Count(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	now := h.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	byType, err := h.events.CountByTypeSince(r.Context(), dayStart)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	recent, err := h.events.ListRecent(r.Context(), 20)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	resp := adminStatsResponse{
		TotalUsers:   total,
		EventsToday:  make(map[string]int, len(byType)),
		RecentEvents: make([]eventSummary, 0, len(recent)),
	}
	for typ, count := range byType {
		resp.EventsToday[typ.String()] = count
	}
	for _, e := range recent {
		s := eventSummary{ID: e.ID, Type: e.Type.String(), CreatedAt: e.CreatedAt}
		if e.UserID != nil {
			s.UserID = e.UserID.String()
		}
		resp.RecentEvents = append(resp.RecentEvents, s)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *AdminHandler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if err := middleware.RequireAdmin(r.Context()); err != nil {
		writeError(w, http.StatusForbidden, "admin access required")
		return false
	}
	return true
}
