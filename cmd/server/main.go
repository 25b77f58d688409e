package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mkozhevn/photocards/internal/auth"
	"github.com/mkozhevn/photocards/internal/cards"
	"github.com/mkozhevn/photocards/internal/config"
	"github.com/mkozhevn/photocards/internal/logger"
	"github.com/mkozhevn/photocards/internal/router"
	"github.com/mkozhevn/photocards/internal/store"
	"github.com/mkozhevn/photocards/internal/users"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Sync()

	ctx := context.Background()

	// ── MongoDB ──────────────────────────────────────────────
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		zl.Fatalw("mongo connect", "error", err)
	}
	defer mongoClient.Disconnect(ctx)
	st := store.NewMongoStore(mongoClient.Database(cfg.MongoDB))
	if err := st.EnsureIndexes(ctx); err != nil {
		zl.Fatalw("mongo indexes", "error", err)
	}

	// ── Services ─────────────────────────────────────────────
	tokens := auth.NewTokenService([]byte(cfg.TokenSecret), cfg.TokenTTL)
	usersHandler := users.NewHandler(st, tokens, zl)
	cardsHandler := cards.NewHandler(st, st, zl)

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:         cfg.RunAddr,
		Handler:      router.New(cfg, zl, tokens, usersHandler, cardsHandler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		zl.Infow("listening", "addr", cfg.RunAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zl.Fatalw("server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Infow("shutting down")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	srv.Shutdown(shutCtx)
}
