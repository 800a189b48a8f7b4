package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/readnest/readnest-server/internal/catalog"
	"github.com/readnest/readnest-server/internal/learner"
	"github.com/readnest/readnest-server/internal/match"
	"github.com/readnest/readnest-server/internal/platform/cache"
	"github.com/readnest/readnest-server/internal/platform/config"
	"github.com/readnest/readnest-server/internal/platform/database"
	"github.com/readnest/readnest-server/internal/speech"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	setupLogger(cfg.Log)
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	app, cleanup, err := buildApp(ctx, cfg)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      newMux(app),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

// buildApp wires stores, engine and speech gateway from config. With no
// database URL the server runs on in-memory stores seeded from the content
// directory (dev mode).
func buildApp(ctx context.Context, cfg *config.Config) (*app, func(), error) {
	a := &app{}
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	if cfg.Database.URL != "" {
		db, err := database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to database: %w", err)
		}
		cleanups = append(cleanups, db.Close)
		a.db = db

		catalogStore, err := catalog.NewPostgresStore(db.Pool)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		a.lessons = catalogStore

		learnerStore, err := learner.NewPostgresStore(db.Pool)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		a.learners = learnerStore
	} else {
		slog.Warn("no database configured, using in-memory stores")
		memCatalog := catalog.NewMemoryStore()
		a.lessons = memCatalog
		a.learners = learner.NewMemoryStore()

		loader, err := catalog.NewLoader(cfg.ContentPath, memCatalog)
		if err != nil {
			return nil, nil, err
		}
		if _, err := loader.LoadAll(ctx); err != nil {
			slog.Warn("content load incomplete", "error", err)
		}
	}

	if cfg.Cache.URL != "" {
		c, err := cache.New(ctx, cfg.Cache.URL)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("connecting to cache: %w", err)
		}
		cleanups = append(cleanups, func() { _ = c.Close() })
		a.cache = c
		a.lessons = catalog.NewCachedStore(a.lessons, c.Client, 0)
	}

	a.engine = match.NewEngine(a.learners, a.lessons)

	a.speech = speech.NewRouter()
	if cfg.Speech.OpenAIAPIKey != "" {
		a.speech.Register("openai", speech.NewOpenAIProvider(cfg.Speech.OpenAIAPIKey))
	}
	if cfg.Speech.ElevenLabsAPIKey != "" {
		a.speech.Register("elevenlabs", speech.NewElevenLabsProvider(cfg.Speech.ElevenLabsAPIKey))
	}
	if !cfg.HasSpeechProvider() {
		slog.Warn("no speech provider configured, /api/v1/speech will return 503")
	}
	a.budget = speech.NewInMemoryBudget(cfg.Speech.DailyCharBudget)

	return a, cleanup, nil
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
