package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/snappword/snappword-backend/internal/domain"
)

type sessionUserRepoMock struct {
	GetByLineIDFunc func(ctx context.Context, lineUserID string) (*domain.User, error)
}

func (m *sessionUserRepoMock) GetByLineID(ctx context.Context, lineUserID string) (*domain.User, error) {
	return m.GetByLineIDFunc(ctx, lineUserID)
}

type tokenIssuerMock struct {
	GenerateAccessTokenFunc func(userID uuid.UUID, role string) (string, error)
}

func (m *tokenIssuerMock) GenerateAccessToken(userID uuid.UUID, role string) (string, error) {
	if m.GenerateAccessTokenFunc != nil {
		return m.GenerateAccessTokenFunc(userID, role)
	}
	return "token-" + role, nil
}

func TestSession_KnownUser(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	users := &sessionUserRepoMock{
		GetByLineIDFunc: func(_ context.Context, lineUserID string) (*domain.User, error) {
			if lineUserID != "U123" {
				t.Errorf("line user id: got %q, want U123", lineUserID)
			}
			return &domain.User{ID: userID, LineUserID: lineUserID, DisplayName: "Mei", Tier: domain.TierSprout}, nil
		},
	}
	h := NewAuthHandler(users, &tokenIssuerMock{}, "", discardLogger())

	body := []byte(`{"lineUserId":"U123"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/session", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Session(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp tokenResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.AccessToken != "token-user" {
		t.Errorf("access token = %q, want token-user", resp.AccessToken)
	}
	if resp.User.Tier != "sprout" {
		t.Errorf("tier = %q, want sprout", resp.User.Tier)
	}
}

func TestSession_UnknownUser(t *testing.T) {
	t.Parallel()

	users := &sessionUserRepoMock{
		GetByLineIDFunc: func(context.Context, string) (*domain.User, error) {
			return nil, domain.ErrNotFound
		},
	}
	h := NewAuthHandler(users, &tokenIssuerMock{}, "", discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/auth/session", bytes.NewReader([]byte(`{"lineUserId":"U404"}`)))
	rec := httptest.NewRecorder()

	h.Session(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestSession_MissingLineUserID(t *testing.T) {
	t.Parallel()

	h := NewAuthHandler(&sessionUserRepoMock{}, &tokenIssuerMock{}, "", discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/auth/session", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()

	h.Session(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestAdminLogin_CorrectPassword(t *testing.T) {
	t.Parallel()

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("generate hash: %v", err)
	}

	var gotRole string
	tokens := &tokenIssuerMock{
		GenerateAccessTokenFunc: func(userID uuid.UUID, role string) (string, error) {
			if userID != uuid.Nil {
				t.Errorf("admin token subject = %v, want nil UUID", userID)
			}
			gotRole = role
			return "admin-token", nil
		},
	}
	h := NewAuthHandler(&sessionUserRepoMock{}, tokens, string(hash), discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/auth/admin/login", bytes.NewReader([]byte(`{"password":"hunter2"}`)))
	rec := httptest.NewRecorder()

	h.AdminLogin(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotRole != "admin" {
		t.Errorf("role = %q, want admin", gotRole)
	}
}

func TestAdminLogin_WrongPassword(t *testing.T) {
	t.Parallel()

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("generate hash: %v", err)
	}
	h := NewAuthHandler(&sessionUserRepoMock{}, &tokenIssuerMock{}, string(hash), discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/auth/admin/login", bytes.NewReader([]byte(`{"password":"guess"}`)))
	rec := httptest.NewRecorder()

	h.AdminLogin(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestAdminLogin_ConsoleDisabled(t *testing.T) {
	t.Parallel()

	h := NewAuthHandler(&sessionUserRepoMock{}, &tokenIssuerMock{}, "", discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/auth/admin/login", bytes.NewReader([]byte(`{"password":"anything"}`)))
	rec := httptest.NewRecorder()

	h.AdminLogin(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rec.Code)
	}
}
