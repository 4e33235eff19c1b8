package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"carepath/internal/notify"
	"carepath/internal/platform/config"
	"carepath/internal/platform/logger"
	platformredis "carepath/internal/platform/redis"
	"carepath/internal/recommendation/events"
)

// The worker consumes recommendation events from the pub/sub channel and
// sends patient notifications. It only sees events published while it is
// subscribed; missed events are not replayed.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	inbox := make(chan events.Event)
	subscriber := notify.NewSubscriber(redisClient.Client, cfg.EventChannel, log)
	worker := notify.NewWorker(inbox, log)

	log.Info("starting notification worker", "channel", cfg.EventChannel)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return subscriber.Run(gctx, inbox) })
	g.Go(func() error { return worker.Run(gctx) })

	if err := g.Wait(); err != nil && err != context.Canceled {
		log.Error("worker stopped", "error", err)
		os.Exit(1)
	}
	log.Info("worker shut down")
}
