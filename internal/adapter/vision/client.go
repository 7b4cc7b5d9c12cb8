// Package vision extracts vocabulary words from screenshots using the
// Anthropic API. A ladder of models is tried in order; transient failures are
// retried with backoff, quota exhaustion aborts the whole ladder.
package vision

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/snappword/snappword-backend/internal/config"
	"github.com/snappword/snappword-backend/internal/domain"
)

// Outcome describes the model call that produced the result, for event logging.
type Outcome struct {
	Model       string
	Attempts    int
	LatencyMs   int
	TokenCount  int
	ParseFailed bool
}

// modelCaller abstracts the single provider round-trip so the retry logic can
// be tested without the network.
type modelCaller interface {
	createMessage(ctx context.Context, model, prompt string, imageData []byte, mediaType string) (text string, outputTokens int, err error)
}

// Client runs the extraction pipeline.
type Client struct {
	caller      modelCaller
	models      []string
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
	callTimeout time.Duration
	log         *slog.Logger

	// sleep is replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a vision client backed by the Anthropic API.
func New(cfg config.VisionConfig, log *slog.Logger) *Client {
	caller := &anthropicCaller{
		client:    anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		maxTokens: int64(cfg.MaxTokens),
	}
	return newClient(caller, cfg, log)
}

func newClient(caller modelCaller, cfg config.VisionConfig, log *slog.Logger) *Client {
	return &Client{
		caller:      caller,
		models:      cfg.Models,
		maxAttempts: cfg.MaxAttempts,
		baseDelay:   cfg.BaseDelay,
		maxDelay:    cfg.MaxDelay,
		callTimeout: cfg.CallTimeout,
		log:         log.With("adapter", "vision"),
		sleep:       sleepCtx,
	}
}

// ExtractWords analyzes a screenshot and returns the vocabulary found in it.
//
// Models are tried in configured order. Per model, transient errors are
// retried up to the attempt limit with backoff; fatal errors skip straight to
// the next model. A quota error aborts everything and returns
// ErrQuotaExhausted. When every model fails, ErrAllModelsFailed is returned.
//
// An unparseable response from a model that did answer is NOT an error: the
// empty result is returned with Outcome.ParseFailed set.
func (c *Client) ExtractWords(ctx context.Context, imageData []byte, mediaType string) (domain.ParseResult, Outcome, error) {
	prompt := extractionPrompt()

	outcome := Outcome{}
	var lastErr error

	for _, model := range c.models {
		for attempt := 0; attempt < c.maxAttempts; attempt++ {
			outcome.Attempts++

			text, tokens, callMs, err := c.callOnce(ctx, model, prompt, imageData, mediaType)
			if err == nil {
				outcome.Model = model
				outcome.LatencyMs = callMs
				outcome.TokenCount = tokens

				result, ok := parseResponse(text)
				if !ok {
					outcome.ParseFailed = true
					c.log.Warn("unparseable model response",
						slog.String("model", model),
						slog.Int("response_len", len(text)),
					)
				}
				return result, outcome, nil
			}

			lastErr = err

			switch classify(err) {
			case classQuota:
				c.log.Error("provider quota exhausted", slog.String("model", model), slog.Any("error", err))
				return domain.ParseResult{}, outcome, fmt.Errorf("%w: %w", ErrQuotaExhausted, err)

			case classFatal:
				c.log.Warn("fatal model error, moving to next model",
					slog.String("model", model),
					slog.Any("error", err),
				)
			case classRetryable:
				if attempt < c.maxAttempts-1 {
					delay := retryDelay(err, attempt, c.baseDelay, c.maxDelay)
					c.log.Warn("retryable model error",
						slog.String("model", model),
						slog.Int("attempt", attempt+1),
						slog.Duration("delay", delay),
						slog.Any("error", err),
					)
					if serr := c.sleep(ctx, delay); serr != nil {
						return domain.ParseResult{}, outcome, serr
					}
					continue
				}
				c.log.Warn("retries exhausted, moving to next model",
					slog.String("model", model),
					slog.Any("error", err),
				)
			}
			break
		}
	}

	return domain.ParseResult{}, outcome, fmt.Errorf("%w after %d attempts: %w", ErrAllModelsFailed, outcome.Attempts, lastErr)
}

func (c *Client) callOnce(ctx context.Context, model, prompt string, imageData []byte, mediaType string) (string, int, int, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	start := time.Now()
	text, tokens, err := c.caller.createMessage(callCtx, model, prompt, imageData, mediaType)
	return text, tokens, int(time.Since(start).Milliseconds()), err
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// anthropicCaller is the real provider round-trip.
type anthropicCaller struct {
	client    anthropic.Client
	maxTokens int64
}

func (a *anthropicCaller) createMessage(ctx context.Context, model, prompt string, imageData []byte, mediaType string) (string, int, error) {
	msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: a.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewImageBlockBase64(mediaType, base64.StdEncoding.EncodeToString(imageData)),
				anthropic.NewTextBlock(prompt),
			),
		},
	})
	if err != nil {
		return "", 0, err
	}
	if len(msg.Content) == 0 {
		return "", 0, fmt.Errorf("empty response from %s", model)
	}

	return msg.Content[0].Text, int(msg.Usage.OutputTokens), nil
}

// extractionPrompt asks the model for the exact JSON envelope the parser expects.
func extractionPrompt() string {
	return `You are a language-learning assistant. The user sends a screenshot taken while
reading or watching content in a foreign language (subtitles, articles, chat, e-books).

Identify the vocabulary words a learner would want to study from this screenshot.

Output ONLY a valid JSON object matching this exact schema:
{
  "source_app": "<app or context the screenshot is from, e.g. Netflix, YouTube, General>",
  "target_lang": "<BCP-47 code of the language being learned, e.g. en, ja, ko>",
  "source_lang": "<BCP-47 code of the learner's native language, default zh-TW>",
  "words": [
    {
      "word": "<the word or phrase as shown>",
      "pronunciation": "<IPA or reading, empty if not applicable>",
      "translation": "<translation into the learner's native language>",
      "context_sentence": "<the sentence the word appeared in, from the screenshot>",
      "context_trans": "<translation of that sentence>",
      "tags": ["<topic tags, e.g. business, slang>"],
      "ai_example": "<one new example sentence using the word>"
    }
  ]
}

Rules:
- Pick at most 8 words, prioritizing ones worth memorizing (skip trivial words)
- If the screenshot contains no foreign-language text, return an empty words array
- Output ONLY the JSON, no markdown, no explanations`
}
