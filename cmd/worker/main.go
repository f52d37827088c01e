package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clipsense/retrieval/internal/bootstrap"
	"github.com/clipsense/retrieval/internal/config"
)

// The worker drops locally cached chunk and embedding sets when
// another process announces a transcript refresh.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, "worker")
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	if app.Queue == nil {
		log.Fatalf("worker requires NATS_URL to be set")
	}

	log.Printf("worker subscribed to %s", cfg.NATSSubject)
	err = app.Queue.SubscribeCachePurge(ctx, func(handlerCtx context.Context, documentID string) error {
		purgeCtx, cancel := context.WithTimeout(handlerCtx, 10*time.Second)
		defer cancel()
		return app.Cache.Purge(purgeCtx, documentID)
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}
