package rest

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/snappword/snappword-backend/internal/adapter/line"
)

// maxWebhookBody bounds a webhook delivery payload.
const maxWebhookBody = 1 << 20

// eventProcessTimeout bounds background processing of one delivery. The
// webhook response itself returns immediately so LINE does not redeliver.
const eventProcessTimeout = 5 * time.Minute

type ingestService interface {
	HandleEvents(ctx context.Context, events []line.WebhookEvent)
}

// WebhookHandler receives LINE platform webhook deliveries.
type WebhookHandler struct {
	ingest        ingestService
	channelSecret string
	log           *slog.Logger

	// process runs event handling; replaced in tests to run synchronously.
	process func(events []line.WebhookEvent)
}

// NewWebhookHandler creates a WebhookHandler.
func NewWebhookHandler(ingest ingestService, channelSecret string, logger *slog.Logger) *WebhookHandler {
	h := &WebhookHandler{
		ingest:        ingest,
		channelSecret: channelSecret,
		log:           logger.With("handler", "webhook"),
	}
	h.process = func(events []line.WebhookEvent) {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), eventProcessTimeout)
			defer cancel()
			h.ingest.HandleEvents(ctx, events)
		}()
	}
	return h
}

// Receive handles POST /webhook. The signature covers the raw body, so the
// body is read before decoding.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "cannot read body")
		return
	}

	if !line.ValidateSignature(h.channelSecret, body, r.Header.Get("X-Line-Signature")) {
		writeError(w, http.StatusForbidden, "invalid signature")
		return
	}

	var req line.WebhookRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(req.Events) > 0 {
		h.process(req.Events)
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
