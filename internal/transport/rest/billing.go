package rest

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/snappword/snappword-backend/internal/config"
	"github.com/snappword/snappword-backend/internal/domain"
)

type billingUserRepo interface {
	GetByStripeCustomer(ctx context.Context, customerID string) (*domain.User, error)
	UpdateTier(ctx context.Context, id uuid.UUID, tier domain.Tier) error
	UpdateStripeCustomer(ctx context.Context, id uuid.UUID, customerID string) error
}

// BillingHandler consumes payment-processor webhook deliveries and applies
// subscription lifecycle changes to user records.
type BillingHandler struct {
	users billingUserRepo
	cfg   config.BillingConfig
	log   *slog.Logger

	now func() time.Time
}

// NewBillingHandler creates a BillingHandler.
func NewBillingHandler(users billingUserRepo, cfg config.BillingConfig, logger *slog.Logger) *BillingHandler {
	return &BillingHandler{
		users: users,
		cfg:   cfg,
		log:   logger.With("handler", "billing"),
		now:   time.Now,
	}
}

// billingEvent is the subset of the processor's event envelope we act on.
type billingEvent struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID       string `json:"id"`
			Customer string `json:"customer"`
			Status   string `json:"status"`
			Metadata struct {
				UserID string `json:"userId"`
				Tier   string `json:"tier"`
			} `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// Webhook handles POST /billing/webhook. Events with unknown types are
// acknowledged and ignored so the processor does not retry them.
func (h *BillingHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "cannot read body")
		return
	}

	if err := h.verifySignature(body, r.Header.Get("Stripe-Signature")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid signature")
		return
	}

	var event billingEvent
	if err := json.Unmarshal(body, &event); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		err = h.handleCheckoutCompleted(r.Context(), event)
	case "customer.subscription.updated":
		err = h.handleSubscriptionUpdated(r.Context(), event)
	case "customer.subscription.deleted":
		err = h.handleSubscriptionEnded(r.Context(), event)
	}
	if err != nil {
		h.log.ErrorContext(r.Context(), "billing event failed",
			slog.String("type", event.Type),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "handler failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}

func (h *BillingHandler) handleCheckoutCompleted(ctx context.Context, event billingEvent) error {
	obj := event.Data.Object
	userID, err := uuid.Parse(obj.Metadata.UserID)
	if err != nil {
		h.log.WarnContext(ctx, "checkout session missing user metadata", slog.String("session_id", obj.ID))
		return nil
	}
	tier := domain.Tier(obj.Metadata.Tier)
	if !tier.IsValid() {
		h.log.WarnContext(ctx, "checkout session missing tier metadata", slog.String("session_id", obj.ID))
		return nil
	}

	if obj.Customer != "" {
		if err := h.users.UpdateStripeCustomer(ctx, userID, obj.Customer); err != nil {
			return fmt.Errorf("link customer: %w", err)
		}
	}
	if err := h.users.UpdateTier(ctx, userID, tier); err != nil {
		return fmt.Errorf("update tier: %w", err)
	}

	h.log.InfoContext(ctx, "user upgraded",
		slog.String("user_id", userID.String()),
		slog.String("tier", tier.String()),
	)
	return nil
}

func (h *BillingHandler) handleSubscriptionUpdated(ctx context.Context, event billingEvent) error {
	obj := event.Data.Object
	user, err := h.users.GetByStripeCustomer(ctx, obj.Customer)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.log.WarnContext(ctx, "no user for customer", slog.String("customer", obj.Customer))
			return nil
		}
		return err
	}

	switch obj.Status {
	case "active", "trialing":
		tier := domain.Tier(obj.Metadata.Tier)
		if !tier.IsValid() {
			tier = domain.TierSprout
		}
		return h.users.UpdateTier(ctx, user.ID, tier)
	case "canceled", "unpaid", "past_due":
		return h.users.UpdateTier(ctx, user.ID, domain.TierFree)
	}
	return nil
}

func (h *BillingHandler) handleSubscriptionEnded(ctx context.Context, event billingEvent) error {
	obj := event.Data.Object
	user, err := h.users.GetByStripeCustomer(ctx, obj.Customer)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.log.WarnContext(ctx, "no user for customer", slog.String("customer", obj.Customer))
			return nil
		}
		return err
	}
	return h.users.UpdateTier(ctx, user.ID, domain.TierFree)
}

// verifySignature checks the processor's "t=...,v1=..." signature scheme:
// HMAC-SHA256 of "<timestamp>.<body>" with the webhook secret.
func (h *BillingHandler) verifySignature(body []byte, header string) error {
	if h.cfg.WebhookSecret == "" {
		return errors.New("webhook secret not configured")
	}

	var ts string
	var sigs []string
	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			ts = v
		case "v1":
			sigs = append(sigs, v)
		}
	}
	if ts == "" || len(sigs) == 0 {
		return errors.New("malformed signature header")
	}

	sent, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return errors.New("malformed timestamp")
	}
	if age := h.now().Sub(time.Unix(sent, 0)); age > h.cfg.SignatureTolerance || age < -h.cfg.SignatureTolerance {
		return errors.New("timestamp outside tolerance")
	}

	mac := hmac.New(sha256.New, []byte(h.cfg.WebhookSecret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, sig := range sigs {
		if hmac.Equal([]byte(expected), []byte(sig)) {
			return nil
		}
	}
	return errors.New("no matching signature")
}
