// Command server runs the SnappWord backend: the LINE webhook receiver, the
// dashboard JSON API, and the admin console API.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/snappword/snappword-backend/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		log.Fatalf("application error: %v", err)
	}
}
