// Package ingest handles LINE webhook events: account creation on follow,
// screenshot intake, quota enforcement, and the vision extraction pipeline.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/snappword/snappword-backend/internal/adapter/line"
	"github.com/snappword/snappword-backend/internal/adapter/vision"
	"github.com/snappword/snappword-backend/internal/domain"
)

// loadingSeconds is how long the typing indicator stays up while the model works.
const loadingSeconds = 60

type lineClient interface {
	Reply(ctx context.Context, replyToken string, messages ...line.Message) error
	Push(ctx context.Context, to string, messages ...line.Message) error
	ShowLoading(ctx context.Context, chatID string, loadingSeconds int)
	GetProfile(ctx context.Context, userID string) (*line.Profile, error)
	GetMessageContent(ctx context.Context, messageID string) ([]byte, string, error)
}

type visionClient interface {
	ExtractWords(ctx context.Context, imageData []byte, mediaType string) (domain.ParseResult, vision.Outcome, error)
}

type userRepo interface {
	GetOrCreate(ctx context.Context, lineUserID, displayName string) (*domain.User, error)
}

type cardRepo interface {
	CreateBatch(ctx context.Context, userID uuid.UUID, cards []domain.Card) ([]domain.Card, error)
}

type eventRepo interface {
	Insert(ctx context.Context, e domain.Event) (domain.Event, error)
}

type quotaChecker interface {
	CheckScreenshot(ctx context.Context, user *domain.User) (domain.QuotaDecision, error)
}

// txManager defines the transaction manager interface needed by the ingest service.
type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service processes webhook events.
type Service struct {
	line   lineClient
	vision visionClient
	users  userRepo
	cards  cardRepo
	events eventRepo
	quota  quotaChecker
	tx     txManager
	log    *slog.Logger
}

// NewService creates the ingest service.
func NewService(
	log *slog.Logger,
	lineClient lineClient,
	visionClient visionClient,
	users userRepo,
	cards cardRepo,
	events eventRepo,
	quota quotaChecker,
	tx txManager,
) *Service {
	return &Service{
		line:   lineClient,
		vision: visionClient,
		users:  users,
		cards:  cards,
		events: events,
		quota:  quota,
		tx:     tx,
		log:    log.With("service", "ingest"),
	}
}

// HandleEvents processes a webhook delivery. Event failures are logged per
// event; the delivery as a whole always succeeds so LINE does not redeliver.
func (s *Service) HandleEvents(ctx context.Context, events []line.WebhookEvent) {
	for _, ev := range events {
		if ev.Source.UserID == "" {
			continue
		}
		var err error
		switch {
		case ev.Type == line.EventTypeFollow:
			err = s.handleFollow(ctx, ev)
		case ev.Type == line.EventTypeMessage && ev.Message != nil && ev.Message.Type == line.MessageTypeImage:
			err = s.handleImage(ctx, ev)
		case ev.Type == line.EventTypeMessage && ev.Message != nil && ev.Message.Type == line.MessageTypeText:
			err = s.handleText(ctx, ev)
		default:
			continue
		}

		if err != nil {
			s.log.ErrorContext(ctx, "webhook event failed",
				slog.String("event_type", ev.Type),
				slog.String("line_user_id", ev.Source.UserID),
				slog.Any("error", err),
			)
		}
	}
}

func (s *Service) handleFollow(ctx context.Context, ev line.WebhookEvent) error {
	displayName := ""
	if profile, err := s.line.GetProfile(ctx, ev.Source.UserID); err == nil {
		displayName = profile.DisplayName
	} else {
		s.log.WarnContext(ctx, "get profile failed", slog.Any("error", err))
	}

	user, err := s.users.GetOrCreate(ctx, ev.Source.UserID, displayName)
	if err != nil {
		return fmt.Errorf("get or create user: %w", err)
	}

	s.record(ctx, &user.ID, domain.EventFollow, nil)

	return s.line.Reply(ctx, ev.ReplyToken, line.NewTextMessage(welcomeMessage))
}

func (s *Service) handleImage(ctx context.Context, ev line.WebhookEvent) error {
	user, err := s.users.GetOrCreate(ctx, ev.Source.UserID, "")
	if err != nil {
		return fmt.Errorf("get or create user: %w", err)
	}

	decision, err := s.quota.CheckScreenshot(ctx, user)
	if err != nil {
		return fmt.Errorf("check quota: %w", err)
	}
	if !decision.Allowed {
		return s.line.Reply(ctx, ev.ReplyToken, line.NewTextMessage(quotaMessage(decision)))
	}

	s.line.ShowLoading(ctx, ev.Source.UserID, loadingSeconds)

	// The screenshot counts against quota from this point, even if the
	// pipeline fails downstream.
	s.record(ctx, &user.ID, domain.EventImageReceived, map[string]any{
		"message_id": ev.Message.ID,
	})

	imageData, mediaType, err := s.line.GetMessageContent(ctx, ev.Message.ID)
	if err != nil {
		s.recordParseFail(ctx, &user.ID, err)
		s.replyBestEffort(ctx, ev.ReplyToken, downloadFailedMessage)
		return fmt.Errorf("download image: %w", err)
	}

	result, outcome, err := s.vision.ExtractWords(ctx, imageData, mediaType)

	s.recordEvent(ctx, domain.Event{
		UserID:     &user.ID,
		Type:       domain.EventModelCall,
		LatencyMs:  &outcome.LatencyMs,
		TokenCount: &outcome.TokenCount,
		Payload: map[string]any{
			"model":    outcome.Model,
			"attempts": outcome.Attempts,
			"error":    err != nil,
		},
	})

	if err != nil {
		s.recordParseFail(ctx, &user.ID, err)
		switch {
		case errors.Is(err, vision.ErrQuotaExhausted):
			s.replyBestEffort(ctx, ev.ReplyToken, aiQuotaMessage)
		default:
			s.replyBestEffort(ctx, ev.ReplyToken, aiUnavailableMessage)
		}
		return fmt.Errorf("extract words: %w", err)
	}

	if outcome.ParseFailed || len(result.Words) == 0 {
		s.record(ctx, &user.ID, domain.EventParseFail, nil)
		return s.line.Reply(ctx, ev.ReplyToken, line.NewTextMessage(noWordsMessage))
	}

	// The batch and its success event commit together; a failed save must
	// not leave a parse_success record behind.
	var saved []domain.Card
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.events.Insert(txCtx, domain.Event{
			UserID:  &user.ID,
			Type:    domain.EventParseSuccess,
			Payload: map[string]any{"words": len(result.Words)},
		}); err != nil {
			return fmt.Errorf("record parse success: %w", err)
		}
		batch, err := s.cards.CreateBatch(txCtx, user.ID, cardsFromParseResult(result))
		if err != nil {
			return err
		}
		saved = batch
		return nil
	})
	if err != nil {
		s.recordParseFail(ctx, &user.ID, err)
		s.replyBestEffort(ctx, ev.ReplyToken, saveFailedMessage)
		return fmt.Errorf("save cards: %w", err)
	}

	return s.line.Reply(ctx, ev.ReplyToken,
		vocabCarousel(saved),
		line.NewTextMessage(savedMessage(saved, decision)),
	)
}

func (s *Service) handleText(ctx context.Context, ev line.WebhookEvent) error {
	user, err := s.users.GetOrCreate(ctx, ev.Source.UserID, "")
	if err != nil {
		return fmt.Errorf("get or create user: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(ev.Message.Text)) {
	case "help", "幫助", "說明":
		return s.line.Reply(ctx, ev.ReplyToken, line.NewTextMessage(helpMessage))
	case "quota", "額度":
		decision, err := s.quota.CheckScreenshot(ctx, user)
		if err != nil {
			return fmt.Errorf("check quota: %w", err)
		}
		return s.line.Reply(ctx, ev.ReplyToken, line.NewTextMessage(usageMessage(decision)))
	default:
		return s.line.Reply(ctx, ev.ReplyToken, line.NewTextMessage(fallbackMessage))
	}
}

// cardsFromParseResult maps a parse result onto NEW cards.
func cardsFromParseResult(result domain.ParseResult) []domain.Card {
	cards := make([]domain.Card, 0, len(result.Words))
	for _, w := range result.Words {
		if w.Word == "" {
			continue
		}
		cards = append(cards, domain.Card{
			Word:             w.Word,
			Translation:      w.Translation,
			Pronunciation:    w.Pronunciation,
			OriginalSentence: w.ContextSentence,
			ContextTrans:     w.ContextTrans,
			AIExample:        w.AIExample,
			SourceApp:        result.SourceApp,
			TargetLang:       result.TargetLang,
			Tags:             w.Tags,
			Status:           domain.ReviewStatusNew,
		})
	}
	return cards
}

// record appends an event, logging instead of failing: the pipeline never
// stops because telemetry could not be written.
func (s *Service) record(ctx context.Context, userID *uuid.UUID, typ domain.EventType, payload map[string]any) {
	s.recordEvent(ctx, domain.Event{UserID: userID, Type: typ, Payload: payload})
}

// recordParseFail marks any pipeline failure after intake, carrying the
// cause so the admin stats can break failures down.
func (s *Service) recordParseFail(ctx context.Context, userID *uuid.UUID, cause error) {
	s.record(ctx, userID, domain.EventParseFail, map[string]any{"error": cause.Error()})
}

func (s *Service) recordEvent(ctx context.Context, e domain.Event) {
	if _, err := s.events.Insert(ctx, e); err != nil {
		s.log.WarnContext(ctx, "record event failed", slog.String("type", string(e.Type)), slog.Any("error", err))
	}
}

func (s *Service) replyBestEffort(ctx context.Context, replyToken, text string) {
	if err := s.line.Reply(ctx, replyToken, line.NewTextMessage(text)); err != nil {
		s.log.WarnContext(ctx, "reply failed", slog.Any("error", err))
	}
}
