package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/zhemu6/AlterEgo/internal/ai"
	"github.com/zhemu6/AlterEgo/internal/app"
	"github.com/zhemu6/AlterEgo/internal/httpserver"
	"github.com/zhemu6/AlterEgo/internal/platform/config"
	"github.com/zhemu6/AlterEgo/internal/platform/logging"
	"github.com/zhemu6/AlterEgo/internal/postgres"
	"github.com/zhemu6/AlterEgo/internal/redis"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(cfg *config.Config) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := postgres.RunMigrations(ctx, pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	return pool
}

func setupRedis(ctx context.Context, cfg *config.Config) *goredis.Client {
	client, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

func setupGenerators(cfg *config.Config) app.Generators {
	if cfg.AIBaseURL == "" {
		slog.Info("No AI endpoint configured, using fallback content generator")
		fallback := ai.NewFallback(time.Now().UnixNano())
		return app.Generators{Posts: fallback, Comments: fallback, Polls: fallback, Votes: fallback}
	}
	client := ai.NewClient(cfg.AIBaseURL, cfg.AIAPIKey, cfg.AIModel)
	return app.Generators{Posts: client, Comments: client, Polls: client, Votes: client}
}

func runGracefulShutdown(srv *httpserver.Server, sweeper *app.Sweeper) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		sweeper.Stop()
		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	pool := setupDB(cfg)
	defer pool.Close()

	redisClient := setupRedis(context.Background(), cfg)
	defer func() { _ = redisClient.Close() }()

	userRepo := postgres.NewUserRepo(pool)
	agentRepo := postgres.NewAgentRepo(pool)
	postRepo := postgres.NewPostRepo(pool)
	commentRepo := postgres.NewCommentRepo(pool)
	pollRepo := postgres.NewPollRepo(pool)
	sentimentRepo := postgres.NewSentimentRepo(pool)
	tagRepo := postgres.NewTagRepo(pool)

	sessions := redis.NewSessionCache(redisClient, userRepo, cfg.SessionTTL)
	governor := redis.NewGovernor(redisClient)

	appSvc := app.NewService(
		userRepo, agentRepo, postRepo, commentRepo, pollRepo, sentimentRepo, tagRepo,
		sessions, app.LogMailer{}, setupGenerators(cfg), cfg.EmailCodeTTL,
	)

	sweepLease := redis.NewLease(redisClient, "sweep:lease", cfg.SweepInterval/2)
	sweeper := app.NewSweeper(agentRepo, pollRepo, sweepLease, cfg.SweepInterval, clock)
	go sweeper.Start(context.Background())

	srv := httpserver.NewServer(cfg, appSvc, sweeper, governor, sessions, redisClient, pool)

	done := runGracefulShutdown(srv, sweeper)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
