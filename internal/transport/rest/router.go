package rest

import (
	"net/http"

	"github.com/snappword/snappword-backend/internal/transport/middleware"
)

// Handlers collects the route handlers assembled by the application.
type Handlers struct {
	Health    *HealthHandler
	Webhook   *WebhookHandler
	Auth      *AuthHandler
	Flashcard *FlashcardHandler
	Quiz      *QuizHandler
	Vocab     *VocabHandler
	WordList  *WordListHandler
	Billing   *BillingHandler
	Admin     *AdminHandler
}

// NewRouter wires all routes behind the shared middleware chain. The LINE and
// billing webhooks authenticate by payload signature, so the bearer-token
// middleware leaves them anonymous and the probes stay open.
func NewRouter(h Handlers, chain middleware.Middleware) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /live", h.Health.Live)
	mux.HandleFunc("GET /ready", h.Health.Ready)
	mux.HandleFunc("GET /health", h.Health.Health)

	mux.HandleFunc("POST /webhook", h.Webhook.Receive)
	mux.HandleFunc("POST /billing/webhook", h.Billing.Webhook)

	mux.HandleFunc("POST /auth/session", h.Auth.Session)
	mux.HandleFunc("POST /auth/admin/login", h.Auth.AdminLogin)

	mux.HandleFunc("GET /api/flashcards/deck", h.Flashcard.Deck)
	mux.HandleFunc("POST /api/flashcards/{id}/answer", h.Flashcard.Answer)

	mux.HandleFunc("GET /api/quiz", h.Quiz.Get)
	mux.HandleFunc("POST /api/quiz/{id}/answer", h.Quiz.Answer)

	mux.HandleFunc("GET /api/vocab", h.Vocab.List)
	mux.HandleFunc("DELETE /api/vocab/{id}", h.Vocab.Delete)
	mux.HandleFunc("GET /api/stats", h.Vocab.Stats)

	mux.HandleFunc("POST /api/wordlists", h.WordList.Create)
	mux.HandleFunc("GET /api/wordlists", h.WordList.List)
	mux.HandleFunc("GET /api/wordlists/{id}", h.WordList.Get)
	mux.HandleFunc("PUT /api/wordlists/{id}", h.WordList.Rename)
	mux.HandleFunc("DELETE /api/wordlists/{id}", h.WordList.Delete)
	mux.HandleFunc("POST /api/wordlists/{id}/cards", h.WordList.AddCard)
	mux.HandleFunc("DELETE /api/wordlists/{id}/cards/{cardID}", h.WordList.RemoveCard)

	mux.HandleFunc("GET /admin/users", h.Admin.Users)
	mux.HandleFunc("POST /admin/users/{id}/tier", h.Admin.SetTier)
	mux.HandleFunc("GET /admin/stats", h.Admin.Stats)

	return chain(mux)
}
