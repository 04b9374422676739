package main

import (
	"context"
	"log"

	"github.com/collabhub-dev/collab-backend/config"
	"github.com/collabhub-dev/collab-backend/internal/auth"
	"github.com/collabhub-dev/collab-backend/internal/bootstrap"
	"github.com/collabhub-dev/collab-backend/internal/storage/s3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	bootstrap.SetGinMode(cfg.App.Environment)

	ctx := context.Background()

	db, err := bootstrap.OpenDB(&cfg.Database)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	if err := bootstrap.RunMigrations(ctx, db); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	rdb, err := bootstrap.OpenRedis(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer rdb.Close()

	blobs, err := s3.New(ctx, &cfg.Storage)
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}

	authClient, err := auth.InitializeFirebase(&cfg.Firebase)
	if err != nil {
		log.Fatalf("firebase: %v", err)
	}

	r := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: "collab-backend",
		Version:     cfg.App.Version,
		DB:          db,
		Redis:       rdb,
		Blobs:       blobs,
		AuthClient:  authClient,
	})

	log.Printf("listening on :%s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
