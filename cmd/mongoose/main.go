package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/vigilhq/mongoose/internal/api"
	"github.com/vigilhq/mongoose/internal/config"
	"github.com/vigilhq/mongoose/internal/engine"
	"github.com/vigilhq/mongoose/internal/generate"
	"github.com/vigilhq/mongoose/internal/qlearn"
	"github.com/vigilhq/mongoose/internal/report"
	"github.com/vigilhq/mongoose/internal/session"
	"github.com/vigilhq/mongoose/internal/session/drivers"
	"github.com/vigilhq/mongoose/internal/store"
)

// sweepInterval is how often idle sessions are checked for expiry.
const sweepInterval = time.Minute

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("mongoose starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Session repository: Redis when configured, in-memory otherwise.
	var sessions session.Repository
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			slog.Error("invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		sessions = drivers.NewRedisStore(redis.NewClient(opts), 0)
		slog.Info("redis session store ready")
	} else {
		sessions = drivers.NewMemoryStore()
		slog.Warn("REDIS_URL not set — sessions held in memory only")
	}
	defer sessions.Close()

	// Archive database, optional: mongoose runs without history.
	var archiver engine.Archiver
	if cfg.DatabaseURL != "" {
		db, err := store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		archiver = db
		slog.Info("database connected")
	} else {
		slog.Warn("DATABASE_URL not set — completed sessions will not be archived")
	}

	// Reporting over NATS.
	var reporter report.Reporter = report.Nop{}
	if cfg.NatsURL != "" {
		natsClient, err := report.NewClient(cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer natsClient.Close()
		reporter = natsClient
		slog.Info("NATS connected", "url", cfg.NatsURL)
	}

	// Generation collaborator, always wrapped so failures degrade to the
	// persona fallback lines.
	var inner generate.Generator
	if cfg.OpenAIAPIKey != "" {
		inner = generate.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIModel, slog.Default())
		slog.Info("openai client ready", "model", cfg.OpenAIModel)
	} else {
		slog.Warn("OPENAI_API_KEY not set — replies use persona fallback lines")
	}
	gen := generate.NewWithFallback(inner, cfg.GenTimeout, slog.Default())

	table := qlearn.NewTable(cfg.Alpha, cfg.Gamma, cfg.Epsilon, nil)

	limits := session.Limits{
		MaxTurns:     cfg.MaxTurns,
		Timeout:      cfg.SessionTimeout,
		MinHighValue: cfg.MinHighValue,
	}
	eng := engine.New(slog.Default(), sessions, table, gen, reporter, archiver, limits)

	// Expire idle sessions so the timeout fires without waiting for a turn.
	go sweepExpired(ctx, eng, sessions)

	srv := api.NewServer(cfg.Port, cfg.APIToken, eng, table, slog.Default())
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	slog.Info("mongoose ready", "port", cfg.Port, "max_turns", cfg.MaxTurns)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
	cancel()
	slog.Info("mongoose stopped")
}

func sweepExpired(ctx context.Context, eng *engine.Engine, sessions session.Repository) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			aggs, err := sessions.List(ctx)
			if err != nil {
				slog.Warn("session sweep failed", "error", err)
				continue
			}
			for _, agg := range aggs {
				if agg.IsComplete() {
					continue
				}
				if _, finalized, err := eng.EvaluateCompletion(ctx, agg.ID); err != nil {
					slog.Warn("session expiry check failed", "session_id", agg.ID, "error", err)
				} else if finalized {
					slog.Info("idle session expired", "session_id", agg.ID)
				}
			}
		}
	}
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
