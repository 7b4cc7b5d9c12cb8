package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/snappword/snappword-backend/internal/auth"
	"github.com/snappword/snappword-backend/internal/domain"
)

type sessionUserRepo interface {
	GetByLineID(ctx context.Context, lineUserID string) (*domain.User, error)
}

type tokenIssuer interface {
	GenerateAccessToken(userID uuid.UUID, role string) (string, error)
}

// AuthHandler issues dashboard and admin console access tokens.
type AuthHandler struct {
	users             sessionUserRepo
	tokens            tokenIssuer
	adminPasswordHash string
	log               *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(users sessionUserRepo, tokens tokenIssuer, adminPasswordHash string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		users:             users,
		tokens:            tokens,
		adminPasswordHash: adminPasswordHash,
		log:               logger.With("handler", "auth"),
	}
}

type sessionRequest struct {
	LineUserID string `json:"lineUserId" validate:"required"`
}

type adminLoginRequest struct {
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	AccessToken string       `json:"accessToken"`
	User        userResponse `json:"user,omitempty"`
}

type userResponse struct {
	ID          string `json:"id,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	Tier        string `json:"tier,omitempty"`
}

// Session handles POST /auth/session: exchanges a LINE user ID for a
// dashboard access token. The ID is taken on trust from the LIFF frontend,
// which obtained it from the LINE login flow; the server does not verify it.
// The account must already exist; accounts are only created through the bot
// itself.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.users.GetByLineID(r.Context(), req.LineUserID)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	token, err := h.tokens.GenerateAccessToken(user.ID, auth.RoleUser)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		User: userResponse{
			ID:          user.ID.String(),
			DisplayName: user.DisplayName,
			Tier:        user.ResolveTier().String(),
		},
	})
}

// AdminLogin handles POST /auth/admin/login: console password to admin token.
func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if err := decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if h.adminPasswordHash == "" {
		writeError(w, http.StatusForbidden, "admin console disabled")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(h.adminPasswordHash), []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	// The console admin is not a LINE user; the nil subject carries only the
	// admin role.
	token, err := h.tokens.GenerateAccessToken(uuid.Nil, auth.RoleAdmin)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token})
}
