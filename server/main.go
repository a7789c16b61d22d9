// server/main.go
package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"net/http"

	"go.uber.org/zap"

	"github.com/rexlx/socialite/social"
)

func main() {
	logger, err := zap.NewProductionConfig().Build()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := social.LoadConfig()
	if err != nil {
		logger.Fatal("could not load configuration", zap.Error(err))
	}
	if cfg.JWTSecret == "" {
		// Tokens minted with an ephemeral secret die with the process.
		logger.Warn("SOCIALITE_JWT_SECRET is not set, using an ephemeral secret")
		cfg.JWTSecret = ephemeralSecret()
	}

	ctx := context.Background()

	var (
		users social.UserStore
		posts social.PostStore
		graph social.GraphStore
	)
	if cfg.DatabaseURL == "" {
		logger.Warn("SOCIALITE_DATABASE_URL is not set, using the in-memory store")
		mem := social.NewMemoryStore()
		users, posts, graph = mem, mem, mem
	} else {
		db, err := social.NewDatabase(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("could not initialize database", zap.Error(err))
		}
		defer db.Close()
		if err := db.CreateTables(ctx); err != nil {
			logger.Fatal("could not create tables", zap.Error(err))
		}
		logger.Info("successfully connected to the database")
		users, posts, graph = db, db, db
	}

	tokens := social.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	svc := social.NewService(users, posts, graph, social.NewFeedCache(), tokens, logger)
	handlers := social.NewHandlers(svc, logger)

	svr := &http.Server{
		Addr:    cfg.Addr,
		Handler: handlers.Routes(),
	}
	logger.Info("starting server", zap.String("addr", cfg.Addr))
	if err := svr.ListenAndServe(); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func ephemeralSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return base64.StdEncoding.EncodeToString(buf)
}
