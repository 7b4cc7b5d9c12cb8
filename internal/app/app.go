package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/snappword/snappword-backend/internal/adapter/line"
	"github.com/snappword/snappword-backend/internal/adapter/postgres"
	cardrepo "github.com/snappword/snappword-backend/internal/adapter/postgres/card"
	eventrepo "github.com/snappword/snappword-backend/internal/adapter/postgres/event"
	userrepo "github.com/snappword/snappword-backend/internal/adapter/postgres/user"
	wordlistrepo "github.com/snappword/snappword-backend/internal/adapter/postgres/wordlist"
	"github.com/snappword/snappword-backend/internal/adapter/vision"
	"github.com/snappword/snappword-backend/internal/auth"
	"github.com/snappword/snappword-backend/internal/config"
	"github.com/snappword/snappword-backend/internal/service/ingest"
	"github.com/snappword/snappword-backend/internal/service/quota"
	"github.com/snappword/snappword-backend/internal/service/review"
	"github.com/snappword/snappword-backend/internal/transport/middleware"
	"github.com/snappword/snappword-backend/internal/transport/rest"
)

// rateLimitPerMinute bounds requests per client IP.
const rateLimitPerMinute = 120

// Run is the application entry point: configuration, logger, database pool,
// repositories, services, adapters, and the HTTP server with graceful
// shutdown on context cancellation.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	// Repositories.
	users := userrepo.New(pool)
	cards := cardrepo.New(pool)
	events := eventrepo.New(pool)
	wordLists := wordlistrepo.New(pool)
	txManager := postgres.NewTxManager(pool)

	// Adapters.
	lineClient := line.New(cfg.Line, logger)
	visionClient := vision.New(cfg.Vision, logger)
	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)

	// Services.
	quotaSvc := quota.NewService(logger, users, events, cfg.Quota)
	reviewSvc := review.NewService(logger, cards, events, users, quotaSvc, cfg.SRS, cfg.Quota)
	ingestSvc := ingest.NewService(logger, lineClient, visionClient, users, cards, events, quotaSvc, txManager)

	// HTTP surface.
	handlers := rest.Handlers{
		Health:    rest.NewHealthHandler(pool, BuildVersion()),
		Webhook:   rest.NewWebhookHandler(ingestSvc, cfg.Line.ChannelSecret, logger),
		Auth:      rest.NewAuthHandler(users, jwtManager, cfg.Auth.AdminPasswordHash, logger),
		Flashcard: rest.NewFlashcardHandler(reviewSvc, logger),
		Quiz:      rest.NewQuizHandler(reviewSvc, logger),
		Vocab:     rest.NewVocabHandler(cards, events, users, logger),
		WordList:  rest.NewWordListHandler(wordLists, logger),
		Billing:   rest.NewBillingHandler(users, cfg.Billing, logger),
		Admin:     rest.NewAdminHandler(users, events, logger),
	}

	rateLimiter := middleware.NewRateLimiter(time.Minute)
	defer rateLimiter.Stop()

	chain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.CORS(cfg.CORS),
		rateLimiter.Limit(rateLimitPerMinute),
		middleware.Auth(jwtManager),
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      rest.NewRouter(handlers, chain),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}
