package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"github.com/collabhub-dev/collab-backend/config"
	authrepo "github.com/collabhub-dev/collab-backend/internal/auth/repository"
	"github.com/collabhub-dev/collab-backend/internal/bootstrap"
	"github.com/collabhub-dev/collab-backend/internal/events"
	"github.com/collabhub-dev/collab-backend/internal/notifications/dispatcher"
	notifrepo "github.com/collabhub-dev/collab-backend/internal/notifications/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := bootstrap.OpenDB(&cfg.Database)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	rdb, err := bootstrap.OpenRedis(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer rdb.Close()

	d := dispatcher.New(
		events.NewSubscriber(rdb),
		notifrepo.NewNotificationRepository(db),
		authrepo.NewUserRepository(db),
		dispatcher.NewRedisFeed(rdb),
	)

	log.Printf("dispatcher listening on %s", events.Channel)
	if err := d.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("dispatcher: %v", err)
	}
	log.Println("dispatcher stopped")
}
